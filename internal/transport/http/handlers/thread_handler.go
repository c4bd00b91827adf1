package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	threadssvc "github.com/pkazlouski/devfolio/backend/internal/services/threads"
	"github.com/pkazlouski/devfolio/backend/internal/transport/http/dto"
	httperrors "github.com/pkazlouski/devfolio/backend/internal/transport/http/errors"
)

type ThreadHandler struct {
	service *threadssvc.Service
}

func NewThreadHandler(service *threadssvc.Service) *ThreadHandler {
	return &ThreadHandler{service: service}
}

func (h *ThreadHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "THREADS_SERVICE_UNAVAILABLE", "threads service is unavailable")
		return
	}

	filter := threadssvc.Filter{
		Language: r.URL.Query().Get("language"),
		Category: r.URL.Query().Get("category"),
	}

	threads, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleThreadError(w, err)
		return
	}

	items := make([]dto.ThreadResponse, 0, len(threads))
	for _, t := range threads {
		items = append(items, threadToDTO(t))
	}

	httperrors.Write(w, http.StatusOK, dto.ThreadsListResponse{Items: items})
}

func (h *ThreadHandler) Detail(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "THREADS_SERVICE_UNAVAILABLE", "threads service is unavailable")
		return
	}

	id, ok := threadID(w, r)
	if !ok {
		return
	}

	detail, err := h.service.Detail(r.Context(), id)
	if err != nil {
		handleThreadError(w, err)
		return
	}

	languages := make([]dto.LanguageResponse, 0, len(detail.Languages))
	for _, l := range detail.Languages {
		languages = append(languages, dto.LanguageResponse{ID: l.ID, Name: l.Name})
	}
	media := make([]dto.MediaResponse, 0, len(detail.Media))
	for _, m := range detail.Media {
		media = append(media, mediaToDTO(m))
	}
	comments := make([]dto.CommentResponse, 0, len(detail.Comments))
	for _, c := range detail.Comments {
		comments = append(comments, commentToDTO(c))
	}

	httperrors.Write(w, http.StatusOK, dto.ThreadDetailResponse{
		Thread:    threadToDTO(detail.Thread),
		Languages: languages,
		Media:     media,
		Comments:  comments,
	})
}

func (h *ThreadHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "THREADS_SERVICE_UNAVAILABLE", "threads service is unavailable")
		return
	}

	var req dto.ThreadCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), threadssvc.CreateInput{
		Title:       req.Title,
		Body:        req.Body,
		RepoURL:     req.RepoURL,
		Categories:  req.Categories,
		LanguageIDs: req.LanguageIDs,
	})
	if err != nil {
		handleThreadError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, threadToDTO(created))
}

func (h *ThreadHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "THREADS_SERVICE_UNAVAILABLE", "threads service is unavailable")
		return
	}

	id, ok := threadID(w, r)
	if !ok {
		return
	}

	var req dto.ThreadUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	updated, err := h.service.Update(r.Context(), id, threadssvc.UpdateInput{
		Title:       req.Title,
		Body:        req.Body,
		RepoURL:     req.RepoURL,
		Categories:  req.Categories,
		LanguageIDs: req.LanguageIDs,
	})
	if err != nil {
		handleThreadError(w, err)
		return
	}

	httperrors.Write(w, http.StatusOK, threadToDTO(updated))
}

func (h *ThreadHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "THREADS_SERVICE_UNAVAILABLE", "threads service is unavailable")
		return
	}

	id, ok := threadID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleThreadError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func threadID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "thread id must be a positive integer")
		return 0, false
	}
	return id, true
}

func threadToDTO(t model.Thread) dto.ThreadResponse {
	categories := t.Categories
	if categories == nil {
		categories = []string{}
	}
	return dto.ThreadResponse{
		ID:         t.ID,
		Title:      t.Title,
		Body:       t.Body,
		RepoURL:    t.RepoURL,
		Categories: categories,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}

func commentToDTO(c model.Comment) dto.CommentResponse {
	return dto.CommentResponse{
		ID:        c.ID,
		ThreadID:  c.ThreadID,
		Author:    c.Author,
		Body:      c.Body,
		CreatedAt: c.CreatedAt,
	}
}

func handleThreadError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, threadssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, threadssvc.ErrNotFound):
		writeNotFound(w, "THREAD_NOT_FOUND", "thread not found")
	case errors.Is(err, threadssvc.ErrCommentNotFound):
		writeNotFound(w, "COMMENT_NOT_FOUND", "comment not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "threads operation failed")
	}
}
