package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	skillssvc "github.com/pkazlouski/devfolio/backend/internal/services/skills"
	"github.com/pkazlouski/devfolio/backend/internal/transport/http/dto"
	httperrors "github.com/pkazlouski/devfolio/backend/internal/transport/http/errors"
)

type SkillHandler struct {
	service *skillssvc.Service
}

func NewSkillHandler(service *skillssvc.Service) *SkillHandler {
	return &SkillHandler{service: service}
}

func (h *SkillHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SKILLS_SERVICE_UNAVAILABLE", "skills service is unavailable")
		return
	}

	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		handleSkillError(w, err)
		return
	}

	items := make([]dto.SkillCategoryResponse, 0, len(categories))
	for _, c := range categories {
		items = append(items, dto.SkillCategoryResponse{ID: c.ID, Name: c.Name})
	}

	httperrors.Write(w, http.StatusOK, dto.SkillCategoriesListResponse{Items: items})
}

func (h *SkillHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SKILLS_SERVICE_UNAVAILABLE", "skills service is unavailable")
		return
	}

	var req dto.SkillCategoryCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	created, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		handleSkillError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SkillCategoryResponse{ID: created.ID, Name: created.Name})
}

func (h *SkillHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SKILLS_SERVICE_UNAVAILABLE", "skills service is unavailable")
		return
	}

	id, ok := pathID(w, r, "category id")
	if !ok {
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		handleSkillError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *SkillHandler) ListSkills(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SKILLS_SERVICE_UNAVAILABLE", "skills service is unavailable")
		return
	}

	skills, err := h.service.ListSkills(r.Context())
	if err != nil {
		handleSkillError(w, err)
		return
	}

	items := make([]dto.SkillResponse, 0, len(skills))
	for _, s := range skills {
		items = append(items, dto.SkillResponse{
			ID:         s.ID,
			CategoryID: s.CategoryID,
			Name:       s.Name,
			Level:      s.Level,
		})
	}

	httperrors.Write(w, http.StatusOK, dto.SkillsListResponse{Items: items})
}

func (h *SkillHandler) CreateSkill(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SKILLS_SERVICE_UNAVAILABLE", "skills service is unavailable")
		return
	}

	var req dto.SkillCreateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "INVALID_REQUEST", "invalid request body")
		return
	}

	created, err := h.service.CreateSkill(r.Context(), req.CategoryID, req.Name, req.Level)
	if err != nil {
		handleSkillError(w, err)
		return
	}

	httperrors.Write(w, http.StatusCreated, dto.SkillResponse{
		ID:         created.ID,
		CategoryID: created.CategoryID,
		Name:       created.Name,
		Level:      created.Level,
	})
}

func (h *SkillHandler) DeleteSkill(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "SKILLS_SERVICE_UNAVAILABLE", "skills service is unavailable")
		return
	}

	id, ok := pathID(w, r, "skill id")
	if !ok {
		return
	}

	if err := h.service.DeleteSkill(r.Context(), id); err != nil {
		handleSkillError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func pathID(w http.ResponseWriter, r *http.Request, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeBadRequest(w, "VALIDATION_ERROR", label+" must be a positive integer")
		return 0, false
	}
	return id, true
}

func handleSkillError(w http.ResponseWriter, err error) {
	var inUse *skillssvc.CategoryInUseError
	switch {
	case errors.As(err, &inUse):
		httperrors.Write(w, http.StatusConflict, httperrors.InUseError{
			Code:        "CATEGORY_IN_USE",
			Message:     inUse.Error(),
			SkillsCount: inUse.SkillsCount,
		})
	case errors.Is(err, skillssvc.ErrValidation):
		writeBadRequest(w, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, skillssvc.ErrCategoryNotFound):
		writeNotFound(w, "CATEGORY_NOT_FOUND", "skill category not found")
	case errors.Is(err, skillssvc.ErrNotFound):
		writeNotFound(w, "SKILL_NOT_FOUND", "skill not found")
	default:
		writeInternal(w, "INTERNAL_ERROR", "skills operation failed")
	}
}
