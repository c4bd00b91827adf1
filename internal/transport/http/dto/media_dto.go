package dto

import "time"

type MediaResponse struct {
	ID          string    `json:"id"`
	Kind        string    `json:"kind"`
	FileName    string    `json:"file_name"`
	MimeType    string    `json:"mime_type"`
	Size        int64     `json:"size"`
	Alt         string    `json:"alt,omitempty"`
	IsMain      bool      `json:"is_main"`
	ThumbnailID *string   `json:"thumbnail_id,omitempty"`
	ThreadID    *int64    `json:"thread_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

type MediaUploadResponse struct {
	Media     MediaResponse  `json:"media"`
	Thumbnail *MediaResponse `json:"thumbnail,omitempty"`
}

type MediaListResponse struct {
	Items []MediaResponse `json:"items"`
}

type MediaUpdateRequest struct {
	Alt    *string `json:"alt"`
	IsMain *bool   `json:"is_main"`
}

type MediaURLResponse struct {
	URL string `json:"url"`
}
