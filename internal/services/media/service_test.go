package media

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/pkazlouski/devfolio/backend/internal/domain/enums"
	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
)

type fakeStore struct {
	records     map[string]model.Media
	order       []string
	insertErr   error
	setThumbErr error
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]model.Media)}
}

func (f *fakeStore) Insert(_ context.Context, rec model.Media) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.records[rec.ID] = rec
	f.order = append(f.order, rec.ID)
	return nil
}

func (f *fakeStore) Get(_ context.Context, id string) (model.Media, error) {
	rec, ok := f.records[id]
	if !ok {
		return model.Media{}, ErrNotFound
	}
	return rec, nil
}

func (f *fakeStore) ListByThread(_ context.Context, threadID int64) ([]model.Media, error) {
	thumbIDs := make(map[string]struct{})
	for _, rec := range f.records {
		if rec.ThumbnailID != nil {
			thumbIDs[*rec.ThumbnailID] = struct{}{}
		}
	}

	var out []model.Media
	for _, id := range f.order {
		rec, ok := f.records[id]
		if !ok {
			continue
		}
		if rec.ThreadID == nil || *rec.ThreadID != threadID {
			continue
		}
		if _, isThumb := thumbIDs[rec.ID]; isThumb {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (f *fakeStore) SetThumbnail(_ context.Context, id string, thumbnailID *string) error {
	if f.setThumbErr != nil {
		return f.setThumbErr
	}
	rec, ok := f.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.ThumbnailID = thumbnailID
	f.records[id] = rec
	return nil
}

func (f *fakeStore) ClearThumbnailRefs(_ context.Context, thumbnailID string) (int64, error) {
	var cleared int64
	for id, rec := range f.records {
		if rec.ThumbnailID != nil && *rec.ThumbnailID == thumbnailID {
			rec.ThumbnailID = nil
			f.records[id] = rec
			cleared++
		}
	}
	return cleared, nil
}

func (f *fakeStore) Update(_ context.Context, id string, alt *string, isMain *bool) (model.Media, error) {
	rec, ok := f.records[id]
	if !ok {
		return model.Media{}, ErrNotFound
	}
	if alt != nil {
		rec.Alt = *alt
	}
	if isMain != nil {
		rec.IsMain = *isMain
	}
	f.records[id] = rec
	return rec, nil
}

func (f *fakeStore) Delete(_ context.Context, id string) error {
	delete(f.records, id)
	return nil
}

type fakeStorage struct {
	objects     map[string]struct{}
	putCalls    int
	deleteCalls int
	presignSeq  int
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: make(map[string]struct{})}
}

func (f *fakeStorage) EnsureBucket(_ context.Context) error { return nil }

func (f *fakeStorage) Put(_ context.Context, key string, _ io.Reader, _ int64, _ string) error {
	f.putCalls++
	f.objects[key] = struct{}{}
	return nil
}

func (f *fakeStorage) PresignGet(_ context.Context, key string, _ time.Duration) (string, error) {
	f.presignSeq++
	return fmt.Sprintf("https://store.local/%s?sig=%d", key, f.presignSeq), nil
}

func (f *fakeStorage) Delete(_ context.Context, key string) error {
	f.deleteCalls++
	delete(f.objects, key)
	return nil
}

func upload(name, contentType string, size int64) UploadInput {
	return UploadInput{
		FileName:    name,
		ContentType: contentType,
		Size:        size,
		Body:        strings.NewReader("payload"),
	}
}

func TestUploadKindMatchesMimeType(t *testing.T) {
	cases := []struct {
		contentType string
		want        enums.MediaKind
	}{
		{"image/jpeg", enums.MediaKindImage},
		{"image/png", enums.MediaKindImage},
		{"image/webp", enums.MediaKindImage},
		{"image/gif", enums.MediaKindGIF},
		{"audio/mpeg", enums.MediaKindAudio},
		{"audio/wav", enums.MediaKindAudio},
	}

	for _, tc := range cases {
		store := newFakeStore()
		svc := NewService(store, newFakeStorage())

		rec, err := svc.Upload(context.Background(), upload("asset.bin", tc.contentType, 1024))
		if err != nil {
			t.Fatalf("upload %s: %v", tc.contentType, err)
		}
		if rec.Kind != tc.want {
			t.Errorf("kind for %s: got %q want %q", tc.contentType, rec.Kind, tc.want)
		}
		if _, ok := store.records[rec.ID]; !ok {
			t.Errorf("record for %s was not persisted", tc.contentType)
		}
	}
}

func TestUploadRejectsDisallowedMimeType(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	svc := NewService(store, storage)

	_, err := svc.Upload(context.Background(), upload("doc.pdf", "application/pdf", 1024))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "application/pdf") {
		t.Errorf("error should name the offending type: %v", err)
	}
	if storage.putCalls != 0 {
		t.Errorf("no object must be written on rejection, got %d puts", storage.putCalls)
	}
	if len(store.records) != 0 {
		t.Errorf("no metadata row must be created on rejection, got %d", len(store.records))
	}
}

func TestUploadRejectsOversizedFile(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	svc := NewService(store, storage)

	_, err := svc.Upload(context.Background(), upload("big.png", "image/png", 150<<20))
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if !strings.Contains(err.Error(), "150.0MB") || !strings.Contains(err.Error(), "100MB") {
		t.Errorf("error should state the computed size and the limit: %v", err)
	}
	if storage.putCalls != 0 || len(store.records) != 0 {
		t.Error("oversized upload must be rejected before any store write")
	}
}

func TestUploadRejectsVideoWithoutThumbnail(t *testing.T) {
	svc := NewService(newFakeStore(), newFakeStorage())

	_, err := svc.Upload(context.Background(), upload("clip.mp4", "video/mp4", 10<<20))
	if !errors.Is(err, ErrThumbnailRequired) {
		t.Fatalf("expected ErrThumbnailRequired, got %v", err)
	}

	_, _, err = svc.UploadVideo(context.Background(), upload("clip.mp4", "video/mp4", 10<<20), nil)
	if !errors.Is(err, ErrThumbnailRequired) {
		t.Fatalf("expected ErrThumbnailRequired from UploadVideo, got %v", err)
	}
}

func TestUploadVideoCreatesPairedRecords(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newFakeStorage())

	threadID := int64(7)
	video := upload("clip.mp4", "video/mp4", 10<<20)
	video.ThreadID = &threadID
	video.IsMain = true
	thumb := upload("thumbnail.jpg", "image/jpeg", 50<<10)
	thumb.IsMain = true // must be forced off

	videoRec, thumbRec, err := svc.UploadVideo(context.Background(), video, &thumb)
	if err != nil {
		t.Fatalf("upload video: %v", err)
	}

	if len(store.records) != 2 {
		t.Fatalf("expected exactly two records, got %d", len(store.records))
	}
	if videoRec.ThumbnailID == nil || *videoRec.ThumbnailID != thumbRec.ID {
		t.Fatalf("video thumbnail reference = %v, want %q", videoRec.ThumbnailID, thumbRec.ID)
	}
	if videoRec.ThreadID == nil || *videoRec.ThreadID != threadID {
		t.Errorf("video thread id = %v, want %d", videoRec.ThreadID, threadID)
	}
	if thumbRec.ThreadID != nil {
		t.Errorf("thumbnail thread id should be absent, got %v", *thumbRec.ThreadID)
	}
	if thumbRec.IsMain {
		t.Error("thumbnail primary flag must be forced off")
	}
	if thumbRec.Kind != enums.MediaKindImage {
		t.Errorf("thumbnail kind = %q, want image", thumbRec.Kind)
	}
}

func TestListByThreadExcludesThumbnails(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newFakeStorage())

	threadID := int64(3)
	photo := upload("photo.png", "image/png", 2<<20)
	photo.ThreadID = &threadID
	if _, err := svc.Upload(context.Background(), photo); err != nil {
		t.Fatalf("upload photo: %v", err)
	}

	video := upload("clip.mp4", "video/mp4", 5<<20)
	video.ThreadID = &threadID
	thumb := upload("thumb.jpg", "image/jpeg", 10<<10)
	videoRec, thumbRec, err := svc.UploadVideo(context.Background(), video, &thumb)
	if err != nil {
		t.Fatalf("upload video: %v", err)
	}

	items, err := svc.ListByThread(context.Background(), threadID)
	if err != nil {
		t.Fatalf("list by thread: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected photo and video only, got %d items", len(items))
	}
	for _, item := range items {
		if item.ID == thumbRec.ID {
			t.Errorf("thumbnail %q must not appear in thread listings", thumbRec.ID)
		}
	}
	_ = videoRec
}

func TestDeleteThumbnailDetachesVideos(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	svc := NewService(store, storage)

	_, thumbRec, err := svc.UploadVideo(context.Background(),
		upload("a.mp4", "video/mp4", 1<<20),
		ptr(upload("t.jpg", "image/jpeg", 1<<10)))
	if err != nil {
		t.Fatalf("upload first video: %v", err)
	}

	// Point two more videos at the same thumbnail.
	for i := 0; i < 2; i++ {
		v, _, err := svc.UploadVideo(context.Background(),
			upload(fmt.Sprintf("v%d.mp4", i), "video/mp4", 1<<20),
			ptr(upload(fmt.Sprintf("t%d.jpg", i), "image/jpeg", 1<<10)))
		if err != nil {
			t.Fatalf("upload video %d: %v", i, err)
		}
		// Drop the auto thumbnail and reuse the shared one.
		if err := store.SetThumbnail(context.Background(), v.ID, &thumbRec.ID); err != nil {
			t.Fatalf("relink thumbnail: %v", err)
		}
	}

	if err := svc.Delete(context.Background(), thumbRec.ID); err != nil {
		t.Fatalf("delete thumbnail: %v", err)
	}

	if _, ok := store.records[thumbRec.ID]; ok {
		t.Error("thumbnail row must be deleted")
	}
	if _, ok := storage.objects[thumbRec.FileName]; ok {
		t.Error("thumbnail object must be deleted")
	}
	for _, rec := range store.records {
		if rec.ThumbnailID != nil && *rec.ThumbnailID == thumbRec.ID {
			t.Errorf("video %q still references the deleted thumbnail", rec.ID)
		}
	}
}

func TestDeleteVideoCascadesToThumbnail(t *testing.T) {
	store := newFakeStore()
	storage := newFakeStorage()
	svc := NewService(store, storage)

	videoRec, thumbRec, err := svc.UploadVideo(context.Background(),
		upload("clip.mp4", "video/mp4", 1<<20),
		ptr(upload("thumb.jpg", "image/jpeg", 1<<10)))
	if err != nil {
		t.Fatalf("upload video: %v", err)
	}

	if err := svc.Delete(context.Background(), videoRec.ID); err != nil {
		t.Fatalf("delete video: %v", err)
	}

	if len(store.records) != 0 {
		t.Fatalf("expected no rows left, got %d", len(store.records))
	}
	if len(storage.objects) != 0 {
		t.Fatalf("expected no objects left, got %d", len(storage.objects))
	}
	_ = thumbRec
}

func TestUploadCompensatesObjectOnInsertFailure(t *testing.T) {
	store := newFakeStore()
	store.insertErr = errors.New("insert failed")
	storage := newFakeStorage()
	svc := NewService(store, storage)

	_, err := svc.Upload(context.Background(), upload("photo.png", "image/png", 1<<20))
	if err == nil {
		t.Fatal("expected upload to fail")
	}
	if storage.deleteCalls != 1 {
		t.Errorf("expected one compensating object delete, got %d", storage.deleteCalls)
	}
	if len(storage.objects) != 0 {
		t.Error("object must not linger after a failed insert")
	}
}

func TestUploadPlainAssetWithoutThread(t *testing.T) {
	store := newFakeStore()
	svc := NewService(store, newFakeStorage())

	rec, err := svc.Upload(context.Background(), upload("photo.png", "image/png", 2<<20))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if rec.Kind != enums.MediaKindImage {
		t.Errorf("kind = %q, want image", rec.Kind)
	}
	if rec.ThumbnailID != nil {
		t.Error("plain asset must not carry a thumbnail reference")
	}
	if rec.ThreadID != nil {
		t.Error("thread reference should be absent")
	}
	if !strings.HasSuffix(rec.FileName, ".png") {
		t.Errorf("stored file name should keep the extension, got %q", rec.FileName)
	}
}

func ptr(in UploadInput) *UploadInput { return &in }
