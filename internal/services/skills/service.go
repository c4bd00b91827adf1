package skills

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	"github.com/pkazlouski/devfolio/backend/internal/pkg/validate"
)

var (
	ErrValidation       = errors.New("validation error")
	ErrNotFound         = errors.New("skill not found")
	ErrCategoryNotFound = errors.New("skill category not found")
)

// CategoryInUseError refuses category deletion while skills depend on it.
type CategoryInUseError struct {
	SkillsCount int64
}

func (e *CategoryInUseError) Error() string {
	return fmt.Sprintf("category is referenced by %d skills", e.SkillsCount)
}

type Store interface {
	ListCategories(ctx context.Context) ([]model.SkillCategory, error)
	GetCategory(ctx context.Context, id int64) (model.SkillCategory, error)
	InsertCategory(ctx context.Context, name string) (model.SkillCategory, error)
	DeleteCategory(ctx context.Context, id int64) error
	CountSkills(ctx context.Context, categoryID int64) (int64, error)

	ListSkills(ctx context.Context) ([]model.Skill, error)
	InsertSkill(ctx context.Context, s model.Skill) (model.Skill, error)
	DeleteSkill(ctx context.Context, id int64) error
}

type Service struct {
	store Store
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

func (s *Service) ListCategories(ctx context.Context) ([]model.SkillCategory, error) {
	return s.store.ListCategories(ctx)
}

func (s *Service) CreateCategory(ctx context.Context, name string) (model.SkillCategory, error) {
	name = strings.TrimSpace(name)
	if !validate.Required(name) {
		return model.SkillCategory{}, fmt.Errorf("%w: name is required", ErrValidation)
	}
	return s.store.InsertCategory(ctx, name)
}

func (s *Service) DeleteCategory(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}

	if _, err := s.store.GetCategory(ctx, id); err != nil {
		return err
	}

	count, err := s.store.CountSkills(ctx, id)
	if err != nil {
		return fmt.Errorf("count dependent skills: %w", err)
	}
	if count > 0 {
		return &CategoryInUseError{SkillsCount: count}
	}

	return s.store.DeleteCategory(ctx, id)
}

func (s *Service) ListSkills(ctx context.Context) ([]model.Skill, error) {
	return s.store.ListSkills(ctx)
}

func (s *Service) CreateSkill(ctx context.Context, categoryID int64, name string, level int) (model.Skill, error) {
	name = strings.TrimSpace(name)
	if name == "" || !validate.PositiveID(categoryID) {
		return model.Skill{}, fmt.Errorf("%w: category and name are required", ErrValidation)
	}
	if !validate.SkillLevel(level) {
		return model.Skill{}, fmt.Errorf("%w: level must be between 0 and 100", ErrValidation)
	}

	if _, err := s.store.GetCategory(ctx, categoryID); err != nil {
		return model.Skill{}, err
	}

	return s.store.InsertSkill(ctx, model.Skill{
		CategoryID: categoryID,
		Name:       name,
		Level:      level,
	})
}

func (s *Service) DeleteSkill(ctx context.Context, id int64) error {
	if id <= 0 {
		return ErrValidation
	}
	return s.store.DeleteSkill(ctx, id)
}
