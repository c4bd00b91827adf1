package media

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/pkazlouski/devfolio/backend/internal/domain/enums"
	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
)

var (
	ErrValidation        = errors.New("validation error")
	ErrNotFound          = errors.New("media not found")
	ErrThumbnailRequired = errors.New("video requires a thumbnail")
)

const (
	maxFileSize       = 100 << 20 // 100 MiB
	defaultPresignTTL = time.Hour
)

var allowedMimeTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/gif":  {},
	"image/webp": {},
	"video/mp4":  {},
	"video/webm": {},
	"audio/mpeg": {},
	"audio/wav":  {},
}

type Store interface {
	Insert(ctx context.Context, rec model.Media) error
	Get(ctx context.Context, id string) (model.Media, error)
	ListByThread(ctx context.Context, threadID int64) ([]model.Media, error)
	SetThumbnail(ctx context.Context, id string, thumbnailID *string) error
	ClearThumbnailRefs(ctx context.Context, thumbnailID string) (int64, error)
	Update(ctx context.Context, id string, alt *string, isMain *bool) (model.Media, error)
	Delete(ctx context.Context, id string) error
}

type ObjectStorage interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	PresignGet(ctx context.Context, key string, ttl time.Duration) (string, error)
	Delete(ctx context.Context, key string) error
}

type Invalidator interface {
	InvalidateTags(ctx context.Context, tags ...string) error
}

// Service is the only component that mutates the object store and the
// metadata store together.
type Service struct {
	store       Store
	storage     ObjectStorage
	invalidator Invalidator
	now         func() time.Time
}

type UploadInput struct {
	FileName    string
	ContentType string
	Size        int64
	Body        io.Reader
	ThreadID    *int64
	IsMain      bool
	Alt         string
}

func NewService(store Store, storage ObjectStorage) *Service {
	return &Service{
		store:   store,
		storage: storage,
		now:     time.Now,
	}
}

// AttachInvalidator wires an optional cache invalidation hook fired after
// every successful mutation.
func (s *Service) AttachInvalidator(inv Invalidator) {
	s.invalidator = inv
}

// Upload stores a non-video asset: validate, put the binary, insert the
// metadata row. Videos must go through UploadVideo so the thumbnail pairing
// invariant holds.
func (s *Service) Upload(ctx context.Context, in UploadInput) (model.Media, error) {
	if err := validateUpload(in); err != nil {
		return model.Media{}, err
	}
	if enums.KindFromMime(in.ContentType) == enums.MediaKindVideo {
		return model.Media{}, ErrThumbnailRequired
	}
	return s.create(ctx, in)
}

// UploadVideo creates a video and its thumbnail, thumbnail first. The
// thumbnail is created with the primary flag forced off; the video row is
// then updated to reference it. A failure after the thumbnail was created
// may leave an orphaned thumbnail row; the cleanup job sweeps those.
func (s *Service) UploadVideo(ctx context.Context, video UploadInput, thumbnail *UploadInput) (model.Media, model.Media, error) {
	if err := validateUpload(video); err != nil {
		return model.Media{}, model.Media{}, err
	}
	if enums.KindFromMime(video.ContentType) != enums.MediaKindVideo {
		return model.Media{}, model.Media{}, fmt.Errorf("%w: %q is not a video type", ErrValidation, video.ContentType)
	}
	if thumbnail == nil {
		return model.Media{}, model.Media{}, ErrThumbnailRequired
	}

	thumb := *thumbnail
	thumb.IsMain = false
	if err := validateUpload(thumb); err != nil {
		return model.Media{}, model.Media{}, err
	}
	if !strings.HasPrefix(thumb.ContentType, "image/") {
		return model.Media{}, model.Media{}, fmt.Errorf("%w: thumbnail must be an image, got %q", ErrValidation, thumb.ContentType)
	}

	thumbRec, err := s.create(ctx, thumb)
	if err != nil {
		return model.Media{}, model.Media{}, fmt.Errorf("create thumbnail: %w", err)
	}

	videoRec, err := s.create(ctx, video)
	if err != nil {
		return model.Media{}, model.Media{}, err
	}

	if err := s.store.SetThumbnail(ctx, videoRec.ID, &thumbRec.ID); err != nil {
		return model.Media{}, model.Media{}, fmt.Errorf("link thumbnail: %w", err)
	}
	videoRec.ThumbnailID = &thumbRec.ID

	return videoRec, thumbRec, nil
}

func (s *Service) create(ctx context.Context, in UploadInput) (model.Media, error) {
	if s.store == nil || s.storage == nil {
		return model.Media{}, fmt.Errorf("media dependencies are not configured")
	}

	if err := s.storage.EnsureBucket(ctx); err != nil {
		return model.Media{}, fmt.Errorf("ensure bucket: %w", err)
	}

	id, err := s.newID()
	if err != nil {
		return model.Media{}, fmt.Errorf("build media id: %w", err)
	}

	rec := model.Media{
		ID:        id,
		Kind:      enums.KindFromMime(in.ContentType),
		FileName:  buildFileName(id, in.FileName),
		MimeType:  in.ContentType,
		Size:      in.Size,
		Alt:       strings.TrimSpace(in.Alt),
		IsMain:    in.IsMain,
		ThreadID:  in.ThreadID,
		CreatedAt: s.now().UTC(),
	}

	if err := s.storage.Put(ctx, rec.FileName, in.Body, in.Size, in.ContentType); err != nil {
		return model.Media{}, fmt.Errorf("put object: %w", err)
	}

	if err := s.store.Insert(ctx, rec); err != nil {
		_ = s.storage.Delete(ctx, rec.FileName)
		return model.Media{}, fmt.Errorf("insert media record: %w", err)
	}

	s.invalidate(ctx, rec.ThreadID)
	return rec, nil
}

func (s *Service) Get(ctx context.Context, id string) (model.Media, error) {
	if strings.TrimSpace(id) == "" {
		return model.Media{}, ErrValidation
	}
	if s.store == nil {
		return model.Media{}, fmt.Errorf("media dependencies are not configured")
	}
	return s.store.Get(ctx, id)
}

// ListByThread returns the assets belonging to a thread. Rows referenced as
// another record's thumbnail are excluded by the store.
func (s *Service) ListByThread(ctx context.Context, threadID int64) ([]model.Media, error) {
	if threadID <= 0 {
		return nil, ErrValidation
	}
	if s.store == nil {
		return nil, fmt.Errorf("media dependencies are not configured")
	}
	return s.store.ListByThread(ctx, threadID)
}

func (s *Service) Update(ctx context.Context, id string, alt *string, isMain *bool) (model.Media, error) {
	if strings.TrimSpace(id) == "" {
		return model.Media{}, ErrValidation
	}
	if alt == nil && isMain == nil {
		return model.Media{}, fmt.Errorf("%w: nothing to update", ErrValidation)
	}

	rec, err := s.store.Update(ctx, id, alt, isMain)
	if err != nil {
		return model.Media{}, err
	}

	s.invalidate(ctx, rec.ThreadID)
	return rec, nil
}

// Delete removes an asset and cascades per the pairing rules: videos that
// used this record as their thumbnail are detached, an owned thumbnail is
// deleted recursively, then the object and the row are removed. A partial
// failure leaves the stores inconsistent and is surfaced to the caller.
func (s *Service) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrValidation
	}
	if s.store == nil || s.storage == nil {
		return fmt.Errorf("media dependencies are not configured")
	}

	rec, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}

	if _, err := s.store.ClearThumbnailRefs(ctx, id); err != nil {
		return fmt.Errorf("detach thumbnail references: %w", err)
	}

	if rec.ThumbnailID != nil {
		if err := s.Delete(ctx, *rec.ThumbnailID); err != nil && !errors.Is(err, ErrNotFound) {
			return fmt.Errorf("delete owned thumbnail: %w", err)
		}
	}

	if err := s.storage.Delete(ctx, rec.FileName); err != nil {
		return fmt.Errorf("delete object: %w", err)
	}

	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete media record: %w", err)
	}

	s.invalidate(ctx, rec.ThreadID)
	return nil
}

// DeleteByThread removes every non-thumbnail asset of a thread, each with
// the full delete cascade.
func (s *Service) DeleteByThread(ctx context.Context, threadID int64) error {
	items, err := s.ListByThread(ctx, threadID)
	if err != nil {
		return err
	}
	for _, item := range items {
		if err := s.Delete(ctx, item.ID); err != nil && !errors.Is(err, ErrNotFound) {
			return err
		}
	}
	return nil
}

func (s *Service) invalidate(ctx context.Context, threadID *int64) {
	if s.invalidator == nil {
		return
	}
	tags := []string{"threads"}
	if threadID != nil {
		tags = append(tags, fmt.Sprintf("thread:%d", *threadID))
	}
	_ = s.invalidator.InvalidateTags(ctx, tags...)
}

func validateUpload(in UploadInput) error {
	if in.Body == nil || strings.TrimSpace(in.FileName) == "" {
		return fmt.Errorf("%w: file is required", ErrValidation)
	}
	if _, ok := allowedMimeTypes[in.ContentType]; !ok {
		return fmt.Errorf("%w: unsupported file type %q", ErrValidation, in.ContentType)
	}
	if in.Size <= 0 {
		return fmt.Errorf("%w: file is empty", ErrValidation)
	}
	if in.Size > maxFileSize {
		return fmt.Errorf("%w: file size %.1fMB exceeds the 100MB limit", ErrValidation, float64(in.Size)/(1<<20))
	}
	return nil
}

func (s *Service) newID() (string, error) {
	rnd := make([]byte, 6)
	if _, err := rand.Read(rnd); err != nil {
		return "", err
	}
	return s.now().UTC().Format("20060102150405") + "-" + hex.EncodeToString(rnd), nil
}

func buildFileName(id, original string) string {
	ext := strings.ToLower(path.Ext(strings.TrimSpace(original)))
	if ext == "" {
		ext = ".bin"
	}
	return id + ext
}

func MaxFileSize() int64 {
	return maxFileSize
}
