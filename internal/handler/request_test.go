//go:build unit

package handler

import (
	"context"
	"errors"
	"fmt"
	"go-blog-admin/internal/data"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"
)

func TestToAppError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid input", fmt.Errorf("%w: title is required", data.ErrInvalidInput), http.StatusBadRequest},
		{"unknown category", &data.UnknownCategoryError{IDs: []int64{9}}, http.StatusBadRequest},
		{"not found", fmt.Errorf("post 3: %w", data.ErrNotFound), http.StatusNotFound},
		{"timeout", fmt.Errorf("sync: %w", data.ErrTimeout), http.StatusGatewayTimeout},
		{"sync failed", &data.SyncError{PostID: 1, Err: errors.New("insert failed")}, http.StatusConflict},
		{"storage unavailable", data.ErrStorageUnavailable, http.StatusServiceUnavailable},
		{"unknown category inside sync error", &data.SyncError{PostID: 1, Err: &data.UnknownCategoryError{IDs: []int64{4}}}, http.StatusBadRequest},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			appErr := toAppError(tt.err, "Failed")
			require.Equal(t, tt.want, appErr.Code)
			require.True(t, strings.HasPrefix(appErr.Message, "Failed"))
			require.Equal(t, tt.err, appErr.Error)
		})
	}
}

func TestInternalErrorsDoNotLeakDetails(t *testing.T) {
	appErr := toAppError(errors.New("dial tcp 10.0.0.5:3306: refused"), "Failed to list posts")
	require.Equal(t, "Failed to list posts", appErr.Message)
}

func TestIDParam(t *testing.T) {
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("postID", v)
		req := httptest.NewRequest(http.MethodGet, "/posts/"+v, nil)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, appErr := idParam(withParam("12"), "postID")
	require.Nil(t, appErr)
	require.Equal(t, int64(12), id)

	for _, bad := range []string{"", "abc", "0", "-3", "1.5"} {
		_, appErr := idParam(withParam(bad), "postID")
		require.NotNil(t, appErr, "expected %q to be rejected", bad)
		require.Equal(t, http.StatusBadRequest, appErr.Code)
	}
}

func TestDecodeJSON(t *testing.T) {
	decode := func(body string) (map[string]string, int) {
		var dst struct {
			Name string `json:"name"`
		}
		req := httptest.NewRequest(http.MethodPost, "/categories", strings.NewReader(body))
		if appErr := decodeJSON(httptest.NewRecorder(), req, &dst); appErr != nil {
			return nil, appErr.Code
		}
		return map[string]string{"name": dst.Name}, http.StatusOK
	}

	got, code := decode(`{"name":"Go"}`)
	require.Equal(t, http.StatusOK, code)
	require.Equal(t, "Go", got["name"])

	_, code = decode(`{"name":"Go"}{"name":"Rust"}`)
	require.Equal(t, http.StatusBadRequest, code)

	_, code = decode(`{"nome":"Go"}`)
	require.Equal(t, http.StatusBadRequest, code)

	_, code = decode(`{"name":"` + strings.Repeat("x", maxBodyBytes) + `"}`)
	require.Equal(t, http.StatusRequestEntityTooLarge, code)
}
