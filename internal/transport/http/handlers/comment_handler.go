package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	threadssvc "github.com/pkazlouski/devfolio/backend/internal/services/threads"
	"github.com/pkazlouski/devfolio/backend/internal/transport/http/dto"
	httperrors "github.com/pkazlouski/devfolio/backend/internal/transport/http/errors"
)

type CommentHandler struct {
	service *threadssvc.Service
}

func NewCommentHandler(service *threadssvc.Service) *CommentHandler {
	return &CommentHandler{service: service}
}

func (h *CommentHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "THREADS_SERVICE_UNAVAILABLE", "threads service is unavailable")
		return
	}

	id, ok := threadID(w, r)
	if !ok {
		return
	}

	var req dto.CommentCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	created, err := h.service.AddComment(r.Context(), id, req.Author, req.Body)
	if err != nil {
		handleThreadError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, commentToDTO(created))
}

func (h *CommentHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "THREADS_SERVICE_UNAVAILABLE", "threads service is unavailable")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "comment id must be a positive integer")
		return
	}

	if err := h.service.DeleteComment(r.Context(), id); err != nil {
		handleThreadError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
