package enums

import "strings"

type MediaKind string

const (
	MediaKindImage MediaKind = "image"
	MediaKindGIF   MediaKind = "gif"
	MediaKindVideo MediaKind = "video"
	MediaKindAudio MediaKind = "audio"
)

// KindFromMime derives the asset kind from a MIME type. Unknown types fall
// back to image.
func KindFromMime(mimeType string) MediaKind {
	switch {
	case mimeType == "image/gif":
		return MediaKindGIF
	case strings.HasPrefix(mimeType, "image/"):
		return MediaKindImage
	case strings.HasPrefix(mimeType, "video/"):
		return MediaKindVideo
	case strings.HasPrefix(mimeType, "audio/"):
		return MediaKindAudio
	default:
		return MediaKindImage
	}
}
