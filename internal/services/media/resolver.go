package media

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/pkazlouski/devfolio/backend/internal/domain/enums"
	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
)

// ErrUnavailable means the URL could not be resolved right now. It does not
// mean the asset is gone; callers should retry later.
var ErrUnavailable = errors.New("url resolution failed")

var videoExtensions = map[string]struct{}{
	".mp4":  {},
	".webm": {},
	".mov":  {},
}

// Resolver maps a stored file name to a client-usable URL. Non-video assets
// get a deterministic public URL with no expiry; videos get a time-limited
// presigned URL that changes on every call.
type Resolver struct {
	storage       ObjectStorage
	publicBaseURL string
	bucket        string
	presignTTL    time.Duration
}

func NewResolver(storage ObjectStorage, publicBaseURL, bucket string, presignTTL time.Duration) *Resolver {
	if presignTTL <= 0 {
		presignTTL = defaultPresignTTL
	}
	return &Resolver{
		storage:       storage,
		publicBaseURL: strings.TrimRight(strings.TrimSpace(publicBaseURL), "/"),
		bucket:        strings.TrimSpace(bucket),
		presignTTL:    presignTTL,
	}
}

// Resolve decides video-ness from the file extension. Use ResolveMedia when
// the metadata record is at hand.
func (r *Resolver) Resolve(ctx context.Context, fileName string) (string, error) {
	fileName = strings.TrimSpace(fileName)
	if fileName == "" {
		return "", fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if isVideoFileName(fileName) {
		return r.presign(ctx, fileName)
	}
	return r.publicURL(fileName), nil
}

func (r *Resolver) ResolveMedia(ctx context.Context, rec model.Media) (string, error) {
	if strings.TrimSpace(rec.FileName) == "" {
		return "", fmt.Errorf("%w: file name is required", ErrValidation)
	}
	if rec.Kind == enums.MediaKindVideo {
		return r.presign(ctx, rec.FileName)
	}
	return r.publicURL(rec.FileName), nil
}

func (r *Resolver) presign(ctx context.Context, fileName string) (string, error) {
	if r.storage == nil {
		return "", fmt.Errorf("%w: object storage is not configured", ErrUnavailable)
	}
	url, err := r.storage.PresignGet(ctx, fileName, r.presignTTL)
	if err != nil {
		return "", fmt.Errorf("%w: presign %q: %v", ErrUnavailable, fileName, err)
	}
	return url, nil
}

func (r *Resolver) publicURL(fileName string) string {
	return fmt.Sprintf("%s/%s/%s", r.publicBaseURL, r.bucket, fileName)
}

func isVideoFileName(name string) bool {
	_, ok := videoExtensions[strings.ToLower(path.Ext(name))]
	return ok
}
