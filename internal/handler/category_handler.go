package handler

import (
	"fmt"
	"go-blog-admin/internal/data"
	"go-blog-admin/internal/logger"
	"go-blog-admin/internal/middleware"
	"go-blog-admin/internal/service"
	"net/http"
)

// CategoryHandler holds the dependencies for the category handlers.
type CategoryHandler struct {
	categoryService service.CategoryServicer
	log             logger.Logger
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(cs service.CategoryServicer, log logger.Logger) *CategoryHandler {
	return &CategoryHandler{categoryService: cs, log: log}
}

type categoryListResponse struct {
	Status     string           `json:"status"`
	Categories []*data.Category `json:"categories"`
}

type categoryResponse struct {
	Status   string         `json:"status"`
	Category *data.Category `json:"category"`
}

type categoryCreatedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	ID      int64  `json:"id"`
}

func (h *CategoryHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	categories, err := h.categoryService.ListCategories(r.Context())
	if err != nil {
		return toAppError(err, "Failed to retrieve categories")
	}
	return respond(w, http.StatusOK, categoryListResponse{Status: "OK", Categories: categories})
}

func (h *CategoryHandler) getHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r, "categoryID")
	if appErr != nil {
		return appErr
	}
	category, err := h.categoryService.GetCategory(r.Context(), id)
	if err != nil {
		return toAppError(err, "Failed to retrieve category")
	}
	return respond(w, http.StatusOK, categoryResponse{Status: "OK", Category: category})
}

func (h *CategoryHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var in service.CategoryInput
	if appErr := decodeJSON(w, r, &in); appErr != nil {
		return appErr
	}
	category, err := h.categoryService.CreateCategory(r.Context(), in)
	if err != nil {
		return toAppError(err, "Failed to create category")
	}
	return respond(w, http.StatusCreated, categoryCreatedResponse{Status: "OK", Message: "Category created", ID: category.ID})
}

func (h *CategoryHandler) renameHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r, "categoryID")
	if appErr != nil {
		return appErr
	}
	var in service.CategoryInput
	if appErr := decodeJSON(w, r, &in); appErr != nil {
		return appErr
	}
	category, err := h.categoryService.RenameCategory(r.Context(), id, in)
	if err != nil {
		return toAppError(err, fmt.Sprintf("Failed to update category %d", id))
	}
	return respond(w, http.StatusOK, categoryResponse{Status: "OK", Category: category})
}

// deleteHandler removes a category; posts carrying it lose it.
func (h *CategoryHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r, "categoryID")
	if appErr != nil {
		return appErr
	}
	if err := h.categoryService.DeleteCategory(r.Context(), id); err != nil {
		return toAppError(err, fmt.Sprintf("Failed to delete category %d", id))
	}
	h.log.With(map[string]interface{}{"category_id": id}).Info("Category deleted")
	return respond(w, http.StatusOK, statusResponse{Status: "OK", Message: "Category deleted"})
}
