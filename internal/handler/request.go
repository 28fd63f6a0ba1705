package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go-blog-admin/internal/data"
	"go-blog-admin/internal/middleware"

	"github.com/go-chi/chi/v5"
)

// maxBodyBytes caps request bodies; posts carry long-form content.
const maxBodyBytes = 1 << 20

// decodeJSON strictly decodes the request body into dst.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) *middleware.AppError {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return &middleware.AppError{Error: err, Message: "Request body too large", Code: http.StatusRequestEntityTooLarge}
		case errors.Is(err, io.EOF):
			return &middleware.AppError{Error: err, Message: "Request body is required", Code: http.StatusBadRequest}
		default:
			return &middleware.AppError{Error: err, Message: fmt.Sprintf("Malformed request body: %v", err), Code: http.StatusBadRequest}
		}
	}
	if dec.More() {
		return &middleware.AppError{Error: errors.New("trailing data"), Message: "Request body must hold a single JSON object", Code: http.StatusBadRequest}
	}
	return nil
}

// idParam parses a positive integer URL parameter.
func idParam(r *http.Request, name string) (int64, *middleware.AppError) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, &middleware.AppError{
			Error:   fmt.Errorf("%w: bad %s %q", data.ErrInvalidInput, name, raw),
			Message: fmt.Sprintf("Invalid %s", name),
			Code:    http.StatusBadRequest,
		}
	}
	return id, nil
}

// toAppError maps the storage and validation error taxonomy onto HTTP.
func toAppError(err error, action string) *middleware.AppError {
	appErr := &middleware.AppError{Error: err, Message: action + ": " + err.Error()}
	switch {
	case errors.Is(err, data.ErrInvalidInput):
		appErr.Code = http.StatusBadRequest
	case errors.Is(err, data.ErrUnknownCategory):
		appErr.Code = http.StatusBadRequest
	case errors.Is(err, data.ErrNotFound):
		appErr.Code = http.StatusNotFound
	case errors.Is(err, data.ErrTimeout):
		appErr.Code = http.StatusGatewayTimeout
		appErr.Message = action + ": the request timed out, please retry"
	case errors.Is(err, data.ErrSyncFailed):
		appErr.Code = http.StatusConflict
		appErr.Message = action + ": categories could not be saved, please retry"
	case errors.Is(err, data.ErrStorageUnavailable):
		appErr.Code = http.StatusServiceUnavailable
		appErr.Message = action + ": storage is unavailable"
	default:
		appErr.Code = http.StatusInternalServerError
		appErr.Message = action
	}
	return appErr
}

// respond writes a success body. Once headers are out an encoding failure
// can no longer change the response, so it is dropped.
func respond(w http.ResponseWriter, status int, body interface{}) *middleware.AppError {
	_ = middleware.WriteJSON(w, status, body)
	return nil
}
