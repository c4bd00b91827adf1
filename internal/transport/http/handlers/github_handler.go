package handlers

import (
	"net/http"
	"strings"

	ghstatssvc "github.com/pkazlouski/devfolio/backend/internal/services/ghstats"
	"github.com/pkazlouski/devfolio/backend/internal/transport/http/dto"
	httperrors "github.com/pkazlouski/devfolio/backend/internal/transport/http/errors"
)

type GitHubHandler struct {
	service *ghstatssvc.Service
}

func NewGitHubHandler(service *ghstatssvc.Service) *GitHubHandler {
	return &GitHubHandler{service: service}
}

func (h *GitHubHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if h.service == nil {
		writeInternal(w, "GITHUB_SERVICE_UNAVAILABLE", "github stats service is unavailable")
		return
	}

	repo := strings.TrimSpace(r.URL.Query().Get("repo"))
	if repo == "" {
		writeBadRequest(w, "VALIDATION_ERROR", "repo query parameter is required")
		return
	}

	stats := h.service.Stats(r.Context(), repo)

	activity := make([]dto.WeeklyActivityResponse, 0, len(stats.CommitActivity))
	for _, week := range stats.CommitActivity {
		activity = append(activity, dto.WeeklyActivityResponse{Week: week.Week, Commits: week.Commits})
	}

	httperrors.Write(w, http.StatusOK, dto.RepoStatsResponse{
		Owner:          stats.Owner,
		Name:           stats.Name,
		Stars:          stats.Stars,
		Watchers:       stats.Watchers,
		OwnerAvatarURL: stats.OwnerAvatarURL,
		Languages:      stats.Languages,
		Readme:         stats.Readme,
		Files:          stats.Files,
		CommitActivity: activity,
	})
}
