package threads

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
)

var (
	ErrValidation      = errors.New("validation error")
	ErrNotFound        = errors.New("thread not found")
	ErrCommentNotFound = errors.New("comment not found")
)

const listCacheTag = "threads"

type Filter struct {
	Language string
	Category string
}

func (f Filter) cacheKey() string {
	return fmt.Sprintf("threads:list:language=%s&category=%s",
		url.QueryEscape(strings.TrimSpace(f.Language)),
		url.QueryEscape(strings.TrimSpace(f.Category)))
}

type Store interface {
	List(ctx context.Context, f Filter) ([]model.Thread, error)
	Get(ctx context.Context, id int64) (model.Thread, error)
	Insert(ctx context.Context, t model.Thread, languageIDs []int64) (model.Thread, error)
	Update(ctx context.Context, id int64, in UpdateInput) (model.Thread, error)
	Delete(ctx context.Context, id int64) error
	ListLanguages(ctx context.Context, threadID int64) ([]model.Language, error)
}

type CommentStore interface {
	Insert(ctx context.Context, c model.Comment) (model.Comment, error)
	ListByThread(ctx context.Context, threadID int64) ([]model.Comment, error)
	Delete(ctx context.Context, id int64) error
}

type MediaStore interface {
	ListByThread(ctx context.Context, threadID int64) ([]model.Media, error)
	DeleteByThread(ctx context.Context, threadID int64) error
}

// Cache is an advisory short-TTL byte cache with tag invalidation. A miss or
// a cache failure is never an error; readers fall through to the store.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, bool)
	Set(ctx context.Context, key string, value []byte, tags ...string)
	InvalidateTags(ctx context.Context, tags ...string) error
}

type Service struct {
	store    Store
	comments CommentStore
	media    MediaStore
	cache    Cache
}

type CreateInput struct {
	Title       string
	Body        string
	RepoURL     string
	Categories  []string
	LanguageIDs []int64
}

type UpdateInput struct {
	Title       *string
	Body        *string
	RepoURL     *string
	Categories  []string
	LanguageIDs []int64
}

// Detail is a thread with everything the page needs joined in.
type Detail struct {
	Thread    model.Thread     `json:"thread"`
	Languages []model.Language `json:"languages"`
	Media     []model.Media    `json:"media"`
	Comments  []model.Comment  `json:"comments"`
}

func NewService(store Store, comments CommentStore, media MediaStore) *Service {
	return &Service{
		store:    store,
		comments: comments,
		media:    media,
	}
}

func (s *Service) AttachCache(cache Cache) {
	s.cache = cache
}

func (s *Service) List(ctx context.Context, f Filter) ([]model.Thread, error) {
	if s.store == nil {
		return nil, fmt.Errorf("thread store is not configured")
	}

	key := f.cacheKey()
	if s.cache != nil {
		if raw, ok := s.cache.Get(ctx, key); ok {
			var cached []model.Thread
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	items, err := s.store.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}

	if s.cache != nil {
		if raw, err := json.Marshal(items); err == nil {
			s.cache.Set(ctx, key, raw, listCacheTag)
		}
	}

	return items, nil
}

func (s *Service) Detail(ctx context.Context, id int64) (Detail, error) {
	if id <= 0 {
		return Detail{}, ErrValidation
	}

	thread, err := s.store.Get(ctx, id)
	if err != nil {
		return Detail{}, err
	}

	detail := Detail{Thread: thread}

	if detail.Languages, err = s.store.ListLanguages(ctx, id); err != nil {
		return Detail{}, fmt.Errorf("list thread languages: %w", err)
	}
	if s.media != nil {
		if detail.Media, err = s.media.ListByThread(ctx, id); err != nil {
			return Detail{}, fmt.Errorf("list thread media: %w", err)
		}
	}
	if s.comments != nil {
		if detail.Comments, err = s.comments.ListByThread(ctx, id); err != nil {
			return Detail{}, fmt.Errorf("list thread comments: %w", err)
		}
	}

	return detail, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (model.Thread, error) {
	if strings.TrimSpace(in.Title) == "" {
		return model.Thread{}, fmt.Errorf("%w: title is required", ErrValidation)
	}

	thread, err := s.store.Insert(ctx, model.Thread{
		Title:      strings.TrimSpace(in.Title),
		Body:       in.Body,
		RepoURL:    strings.TrimSpace(in.RepoURL),
		Categories: normalizeCategories(in.Categories),
	}, in.LanguageIDs)
	if err != nil {
		return model.Thread{}, fmt.Errorf("insert thread: %w", err)
	}

	s.invalidate(ctx, thread.ID)
	return thread, nil
}

func (s *Service) Update(ctx context.Context, id int64, in UpdateInput) (model.Thread, error) {
	if id <= 0 {
		return model.Thread{}, ErrValidation
	}
	if in.Title != nil && strings.TrimSpace(*in.Title) == "" {
		return model.Thread{}, fmt.Errorf("%w: title must not be empty", ErrValidation)
	}
	if in.Categories != nil {
		in.Categories = normalizeCategories(in.Categories)
	}

	thread, err := s.store.Update(ctx, id, in)
	if err != nil {
		return model.Thread{}, err
	}

	s.invalidate(ctx, id)
	return thread, nil
}

// Delete removes the thread and cascades to its media (object store
// included) and comments.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}

	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}

	if s.media != nil {
		if err := s.media.DeleteByThread(ctx, id); err != nil {
			return fmt.Errorf("delete thread media: %w", err)
		}
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}

	s.invalidate(ctx, id)
	return nil
}

func (s *Service) AddComment(ctx context.Context, threadID int64, author, body string) (model.Comment, error) {
	if threadID <= 0 || strings.TrimSpace(body) == "" {
		return model.Comment{}, fmt.Errorf("%w: comment body is required", ErrValidation)
	}
	if s.comments == nil {
		return model.Comment{}, fmt.Errorf("comment store is not configured")
	}

	if _, err := s.store.Get(ctx, threadID); err != nil {
		return model.Comment{}, err
	}

	author = strings.TrimSpace(author)
	if author == "" {
		author = "anonymous"
	}

	comment, err := s.comments.Insert(ctx, model.Comment{
		ThreadID: threadID,
		Author:   author,
		Body:     strings.TrimSpace(body),
	})
	if err != nil {
		return model.Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	s.invalidate(ctx, threadID)
	return comment, nil
}

func (s *Service) DeleteComment(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}
	if s.comments == nil {
		return fmt.Errorf("comment store is not configured")
	}
	return s.comments.Delete(ctx, id)
}

func (s *Service) invalidate(ctx context.Context, threadID int64) {
	if s.cache == nil {
		return
	}
	_ = s.cache.InvalidateTags(ctx, listCacheTag, fmt.Sprintf("thread:%d", threadID))
}

func normalizeCategories(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, c := range in {
		c = strings.TrimSpace(c)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	return out
}
