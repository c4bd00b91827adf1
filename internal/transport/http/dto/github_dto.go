package dto

import "time"

type WeeklyActivityResponse struct {
	Week    time.Time `json:"week"`
	Commits int       `json:"commits"`
}

type RepoStatsResponse struct {
	Owner          string                   `json:"owner"`
	Name           string                   `json:"name"`
	Stars          int                      `json:"stars"`
	Watchers       int                      `json:"watchers"`
	OwnerAvatarURL string                   `json:"owner_avatar_url,omitempty"`
	Languages      map[string]int           `json:"languages,omitempty"`
	Readme         string                   `json:"readme,omitempty"`
	Files          []string                 `json:"files,omitempty"`
	CommitActivity []WeeklyActivityResponse `json:"commit_activity,omitempty"`
}
