package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	languagessvc "github.com/pkazlouski/devfolio/backend/internal/services/languages"
	"github.com/pkazlouski/devfolio/backend/internal/transport/http/dto"
	httperrors "github.com/pkazlouski/devfolio/backend/internal/transport/http/errors"
)

type LanguageHandler struct {
	service *languagessvc.Service
}

func NewLanguageHandler(service *languagessvc.Service) *LanguageHandler {
	return &LanguageHandler{service: service}
}

func (h *LanguageHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LANGUAGES_SERVICE_UNAVAILABLE", "languages service is unavailable")
		return
	}

	languages, err := h.service.List(r.Context())
	if err != nil {
		handleLanguageError(w, err)
		return
	}

	items := make([]dto.LanguageResponse, 0, len(languages))
	for _, l := range languages {
		items = append(items, dto.LanguageResponse{ID: l.ID, Name: l.Name})
	}

	httperrors.Write(w, http.StatusOK, dto.LanguagesListResponse{Items: items})
}

func (h *LanguageHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LANGUAGES_SERVICE_UNAVAILABLE", "languages service is unavailable")
		return
	}

	var req dto.LanguageCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	created, err := h.service.Create(r.Context(), req.Name)
	if err != nil {
		handleLanguageError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.LanguageResponse{ID: created.ID, Name: created.Name})
}

func (h *LanguageHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "LANGUAGES_SERVICE_UNAVAILABLE", "languages service is unavailable")
		return
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", "language id must be a positive integer")
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleLanguageError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func handleLanguageError(w http.ResponseWriter, err error) {
	var inUse *languagessvc.InUseError
	switch {
	case errors.As(err, &inUse):
		httperrors.Write(w, http.StatusConflict, httperrors.InUseError{
			Code:         "LANGUAGE_IN_USE",
			Message:      inUse.Error(),
			ThreadsCount: inUse.ThreadsCount,
		})
	case errors.Is(err, languagessvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, languagessvc.ErrNotFound):
		writeNotFound(w, "LANGUAGE_NOT_FOUND", "language not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "languages operation failed")
	}
}
