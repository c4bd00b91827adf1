package model

import (
	"time"

	"github.com/pkazlouski/devfolio/backend/internal/domain/enums"
)

// Media is one stored binary asset. A record referenced by a video's
// ThumbnailID is addressable only through that video and never appears in
// thread listings.
type Media struct {
	ID          string          `json:"id"`
	Kind        enums.MediaKind `json:"kind"`
	FileName    string          `json:"file_name"`
	MimeType    string          `json:"mime_type"`
	Size        int64           `json:"size"`
	Alt         string          `json:"alt,omitempty"`
	IsMain      bool            `json:"is_main"`
	ThumbnailID *string         `json:"thumbnail_id,omitempty"`
	ThreadID    *int64          `json:"thread_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
