package dto

import "time"

type ThreadResponse struct {
	ID         int64     `json:"id"`
	Title      string    `json:"title"`
	Body       string    `json:"body"`
	RepoURL    string    `json:"repo_url,omitempty"`
	Categories []string  `json:"categories"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

type ThreadsListResponse struct {
	Items []ThreadResponse `json:"items"`
}

type ThreadDetailResponse struct {
	Thread    ThreadResponse     `json:"thread"`
	Languages []LanguageResponse `json:"languages"`
	Media     []MediaResponse    `json:"media"`
	Comments  []CommentResponse  `json:"comments"`
}

type ThreadCreateRequest struct {
	Title       string   `json:"title"`
	Body        string   `json:"body"`
	RepoURL     string   `json:"repo_url"`
	Categories  []string `json:"categories"`
	LanguageIDs []int64  `json:"language_ids"`
}

type ThreadUpdateRequest struct {
	Title       *string  `json:"title"`
	Body        *string  `json:"body"`
	RepoURL     *string  `json:"repo_url"`
	Categories  []string `json:"categories"`
	LanguageIDs []int64  `json:"language_ids"`
}
