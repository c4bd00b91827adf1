package threads

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
)

type fakeStore struct {
	threads   map[int64]model.Thread
	languages map[int64][]model.Language
	nextID    int64
	listCalls int
	lastFilter Filter
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		threads:   make(map[int64]model.Thread),
		languages: make(map[int64][]model.Language),
	}
}

func (f *fakeStore) List(_ context.Context, filter Filter) ([]model.Thread, error) {
	f.listCalls++
	f.lastFilter = filter
	out := make([]model.Thread, 0, len(f.threads))
	for _, t := range f.threads {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeStore) Get(_ context.Context, id int64) (model.Thread, error) {
	t, ok := f.threads[id]
	if !ok {
		return model.Thread{}, ErrNotFound
	}
	return t, nil
}

func (f *fakeStore) Insert(_ context.Context, t model.Thread, _ []int64) (model.Thread, error) {
	f.nextID++
	t.ID = f.nextID
	t.CreatedAt = time.Now().UTC()
	t.UpdatedAt = t.CreatedAt
	f.threads[t.ID] = t
	return t, nil
}

func (f *fakeStore) Update(_ context.Context, id int64, in UpdateInput) (model.Thread, error) {
	t, ok := f.threads[id]
	if !ok {
		return model.Thread{}, ErrNotFound
	}
	if in.Title != nil {
		t.Title = *in.Title
	}
	if in.Body != nil {
		t.Body = *in.Body
	}
	f.threads[id] = t
	return t, nil
}

func (f *fakeStore) Delete(_ context.Context, id int64) error {
	delete(f.threads, id)
	return nil
}

func (f *fakeStore) ListLanguages(_ context.Context, threadID int64) ([]model.Language, error) {
	return f.languages[threadID], nil
}

type fakeComments struct {
	comments map[int64]model.Comment
	nextID   int64
}

func newFakeComments() *fakeComments {
	return &fakeComments{comments: make(map[int64]model.Comment)}
}

func (f *fakeComments) Insert(_ context.Context, c model.Comment) (model.Comment, error) {
	f.nextID++
	c.ID = f.nextID
	c.CreatedAt = time.Now().UTC()
	f.comments[c.ID] = c
	return c, nil
}

func (f *fakeComments) ListByThread(_ context.Context, threadID int64) ([]model.Comment, error) {
	var out []model.Comment
	for _, c := range f.comments {
		if c.ThreadID == threadID {
			out = append(out, c)
		}
	}
	return out, nil
}

func (f *fakeComments) Delete(_ context.Context, id int64) error {
	delete(f.comments, id)
	return nil
}

type fakeMedia struct {
	byThread    map[int64][]model.Media
	deleteCalls []int64
}

func newFakeMedia() *fakeMedia {
	return &fakeMedia{byThread: make(map[int64][]model.Media)}
}

func (f *fakeMedia) ListByThread(_ context.Context, threadID int64) ([]model.Media, error) {
	return f.byThread[threadID], nil
}

func (f *fakeMedia) DeleteByThread(_ context.Context, threadID int64) error {
	f.deleteCalls = append(f.deleteCalls, threadID)
	delete(f.byThread, threadID)
	return nil
}

type fakeCache struct {
	entries     map[string][]byte
	tags        map[string][]string
	invalidated []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string][]byte),
		tags:    make(map[string][]string),
	}
}

func (f *fakeCache) Get(_ context.Context, key string) ([]byte, bool) {
	raw, ok := f.entries[key]
	return raw, ok
}

func (f *fakeCache) Set(_ context.Context, key string, value []byte, tags ...string) {
	f.entries[key] = value
	for _, tag := range tags {
		f.tags[tag] = append(f.tags[tag], key)
	}
}

func (f *fakeCache) InvalidateTags(_ context.Context, tags ...string) error {
	f.invalidated = append(f.invalidated, tags...)
	for _, tag := range tags {
		for _, key := range f.tags[tag] {
			delete(f.entries, key)
		}
		delete(f.tags, tag)
	}
	return nil
}

func TestListCachesResultsPerFilter(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	svc := NewService(store, newFakeComments(), newFakeMedia())
	svc.AttachCache(cache)

	if _, err := svc.Create(context.Background(), CreateInput{Title: "first"}); err != nil {
		t.Fatalf("create: %v", err)
	}

	filter := Filter{Language: "Go", Category: "web"}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.List(context.Background(), filter); err != nil {
		t.Fatalf("list again: %v", err)
	}

	if store.listCalls != 1 {
		t.Fatalf("second list should be served from cache, store hit %d times", store.listCalls)
	}
	if store.lastFilter != filter {
		t.Errorf("filter was not passed through: %+v", store.lastFilter)
	}

	// A different filter combination is a different cache key.
	if _, err := svc.List(context.Background(), Filter{Language: "Rust"}); err != nil {
		t.Fatalf("list other filter: %v", err)
	}
	if store.listCalls != 2 {
		t.Fatalf("distinct filters must not share cache entries, store hit %d times", store.listCalls)
	}
}

func TestWritesInvalidateListCache(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	svc := NewService(store, newFakeComments(), newFakeMedia())
	svc.AttachCache(cache)

	if _, err := svc.List(context.Background(), Filter{}); err != nil {
		t.Fatalf("list: %v", err)
	}
	if _, err := svc.Create(context.Background(), CreateInput{Title: "new thread"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.List(context.Background(), Filter{}); err != nil {
		t.Fatalf("list after create: %v", err)
	}

	if store.listCalls != 2 {
		t.Fatalf("create must invalidate the list cache, store hit %d times", store.listCalls)
	}
}

func TestDetailAggregatesRelations(t *testing.T) {
	store := newFakeStore()
	comments := newFakeComments()
	media := newFakeMedia()
	svc := NewService(store, comments, media)

	thread, err := svc.Create(context.Background(), CreateInput{Title: "project"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	store.languages[thread.ID] = []model.Language{{ID: 1, Name: "Go"}}
	media.byThread[thread.ID] = []model.Media{{ID: "m1", FileName: "photo.png"}}
	if _, err := svc.AddComment(context.Background(), thread.ID, "reader", "nice work"); err != nil {
		t.Fatalf("add comment: %v", err)
	}

	detail, err := svc.Detail(context.Background(), thread.ID)
	if err != nil {
		t.Fatalf("detail: %v", err)
	}
	if len(detail.Languages) != 1 || detail.Languages[0].Name != "Go" {
		t.Errorf("unexpected languages: %+v", detail.Languages)
	}
	if len(detail.Media) != 1 || detail.Media[0].ID != "m1" {
		t.Errorf("unexpected media: %+v", detail.Media)
	}
	if len(detail.Comments) != 1 || detail.Comments[0].Body != "nice work" {
		t.Errorf("unexpected comments: %+v", detail.Comments)
	}
}

func TestDeleteCascadesToMedia(t *testing.T) {
	store := newFakeStore()
	media := newFakeMedia()
	svc := NewService(store, newFakeComments(), media)

	thread, err := svc.Create(context.Background(), CreateInput{Title: "doomed"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if err := svc.Delete(context.Background(), thread.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	if len(media.deleteCalls) != 1 || media.deleteCalls[0] != thread.ID {
		t.Errorf("thread delete must cascade to media, calls: %v", media.deleteCalls)
	}
	if _, err := svc.Detail(context.Background(), thread.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestAddCommentRejectsUnknownThread(t *testing.T) {
	svc := NewService(newFakeStore(), newFakeComments(), newFakeMedia())

	if _, err := svc.AddComment(context.Background(), 42, "a", "b"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCachedPayloadRoundTrips(t *testing.T) {
	store := newFakeStore()
	cache := newFakeCache()
	svc := NewService(store, newFakeComments(), newFakeMedia())
	svc.AttachCache(cache)

	created, err := svc.Create(context.Background(), CreateInput{Title: "roundtrip", Categories: []string{"go", "go", " web "}})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if len(created.Categories) != 2 {
		t.Fatalf("categories must be trimmed and deduplicated, got %v", created.Categories)
	}

	first, err := svc.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	second, err := svc.List(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("cached list: %v", err)
	}

	a, _ := json.Marshal(first)
	b, _ := json.Marshal(second)
	if string(a) != string(b) {
		t.Fatalf("cached listing differs from fresh listing:\n%s\n%s", a, b)
	}
}
