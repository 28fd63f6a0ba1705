package handler

import (
	"fmt"
	"go-blog-admin/internal/data"
	"go-blog-admin/internal/logger"
	"go-blog-admin/internal/middleware"
	"go-blog-admin/internal/service"
	"net/http"
)

// PostHandler holds the dependencies for the post handlers.
type PostHandler struct {
	postService service.PostServicer
	log         logger.Logger
}

// NewPostHandler creates a new PostHandler with the given dependencies.
func NewPostHandler(ps service.PostServicer, log logger.Logger) *PostHandler {
	return &PostHandler{postService: ps, log: log}
}

type postListResponse struct {
	Status string           `json:"status"`
	Posts  []*data.PostView `json:"posts"`
}

type postResponse struct {
	Status string         `json:"status"`
	Post   *data.PostView `json:"post"`
}

type postCreatedResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	PostID  int64  `json:"postId"`
}

type statusResponse struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// listHandler returns every post, newest first.
func (h *PostHandler) listHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	posts, err := h.postService.ListPosts(r.Context())
	if err != nil {
		return toAppError(err, "Failed to retrieve posts")
	}
	return respond(w, http.StatusOK, postListResponse{Status: "OK", Posts: posts})
}

// getHandler returns one post with its categories.
func (h *PostHandler) getHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r, "postID")
	if appErr != nil {
		return appErr
	}
	post, err := h.postService.GetPost(r.Context(), id)
	if err != nil {
		return toAppError(err, "Failed to retrieve post")
	}
	return respond(w, http.StatusOK, postResponse{Status: "OK", Post: post})
}

// createHandler stores a new post and attaches its categories.
func (h *PostHandler) createHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	var in service.PostInput
	if appErr := decodeJSON(w, r, &in); appErr != nil {
		return appErr
	}
	id, err := h.postService.CreatePost(r.Context(), in)
	if err != nil {
		return toAppError(err, "Failed to create post")
	}
	h.log.With(map[string]interface{}{
		"post_id": id,
		"subject": middleware.GetUserInfo(r.Context()).Subject,
	}).Info("Post created")
	return respond(w, http.StatusCreated, postCreatedResponse{Status: "OK", Message: "Post created", PostID: id})
}

// updateHandler replaces a post's fields and its whole category set.
func (h *PostHandler) updateHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r, "postID")
	if appErr != nil {
		return appErr
	}
	var in service.PostInput
	if appErr := decodeJSON(w, r, &in); appErr != nil {
		return appErr
	}
	post, err := h.postService.UpdatePost(r.Context(), id, in)
	if err != nil {
		return toAppError(err, fmt.Sprintf("Failed to update post %d", id))
	}
	h.log.With(map[string]interface{}{
		"post_id":    id,
		"categories": len(post.Categories),
		"subject":    middleware.GetUserInfo(r.Context()).Subject,
	}).Info("Post updated")
	return respond(w, http.StatusOK, postResponse{Status: "OK", Post: post})
}

// deleteHandler removes a post and its category associations.
func (h *PostHandler) deleteHandler(w http.ResponseWriter, r *http.Request) *middleware.AppError {
	id, appErr := idParam(r, "postID")
	if appErr != nil {
		return appErr
	}
	if err := h.postService.DeletePost(r.Context(), id); err != nil {
		return toAppError(err, fmt.Sprintf("Failed to delete post %d", id))
	}
	h.log.With(map[string]interface{}{"post_id": id}).Info("Post deleted")
	return respond(w, http.StatusOK, statusResponse{Status: "OK"})
}
