package languages

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	"github.com/pkazlouski/devfolio/backend/internal/pkg/validate"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = errors.New("language not found")
)

// InUseError reports how many threads still reference the language; deletion
// is refused while the count is non-zero.
type InUseError struct {
	ThreadsCount int64
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("language is referenced by %d threads", e.ThreadsCount)
}

type Store interface {
	List(ctx context.Context) ([]model.Language, error)
	Get(ctx context.Context, id int64) (model.Language, error)
	Insert(ctx context.Context, name string) (model.Language, error)
	Delete(ctx context.Context, id int64) error
	CountThreads(ctx context.Context, id int64) (int64, error)
	EnsureByName(ctx context.Context, names []string) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) List(ctx context.Context) ([]model.Language, error) {
	if s.store == nil {
		return nil, fmt.Errorf("language store is not configured")
	}
	return s.store.List(ctx)
}

func (s *Service) Create(ctx context.Context, name string) (model.Language, error) {
	name = strings.TrimSpace(name)
	if !validate.Required(name) {
		return model.Language{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	return s.store.Insert(ctx, name)
}

func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}

	if _, err := s.store.Get(ctx, id); err != nil {
		return err
	}

	count, err := s.store.CountThreads(ctx, id)
	if err != nil {
		return fmt.Errorf("count dependent threads: %w", err)
	}
	if count > 0 {
		return &InUseError{ThreadsCount: count}
	}

	return s.store.Delete(ctx, id)
}

// EnsureByName opportunistically creates records for language names seen in
// GitHub repo metadata. Failures here are the caller's to swallow.
func (s *Service) EnsureByName(ctx context.Context, names []string) error {
	cleaned := make([]string, 0, len(names))
	for _, name := range names {
		name = strings.TrimSpace(name)
		if name != "" {
			cleaned = append(cleaned, name)
		}
	}
	if len(cleaned) == 0 {
		return nil
	}
	return s.store.EnsureByName(ctx, cleaned)
}
