package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	skillssvc "github.com/pkazlouski/devfolio/backend/internal/services/skills"
)

type SkillRepo struct {
	pool *pgxpool.Pool
}

func NewSkillRepo(pool *pgxpool.Pool) *SkillRepo {
	return &SkillRepo{pool: pool}
}

func (r *SkillRepo) ListCategories(ctx context.Context) ([]model.SkillCategory, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name
FROM skill_categories
ORDER BY name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list skill categories: %w", err)
	}
	defer rows.Close()

	categories := make([]model.SkillCategory, 0)
	for rows.Next() {
		var c model.SkillCategory
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan skill category: %w", err)
		}
		categories = append(categories, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate skill categories: %w", rows.Err())
	}

	return categories, nil
}

func (r *SkillRepo) GetCategory(ctx context.Context, id int64) (model.SkillCategory, error) {
	if r.pool == nil {
		return model.SkillCategory{}, fmt.Errorf("postgres pool is nil")
	}

	var c model.SkillCategory
	err := r.pool.QueryRow(ctx, `
SELECT id, name
FROM skill_categories
WHERE id = $1
`, id).Scan(&c.ID, &c.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.SkillCategory{}, skillssvc.ErrCategoryNotFound
		}
		return model.SkillCategory{}, fmt.Errorf("get skill category: %w", err)
	}

	return c, nil
}

func (r *SkillRepo) InsertCategory(ctx context.Context, name string) (model.SkillCategory, error) {
	if r.pool == nil {
		return model.SkillCategory{}, fmt.Errorf("postgres pool is nil")
	}

	var c model.SkillCategory
	err := r.pool.QueryRow(ctx, `
INSERT INTO skill_categories (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name
`, name).Scan(&c.ID, &c.Name)
	if err != nil {
		return model.SkillCategory{}, fmt.Errorf("insert skill category: %w", err)
	}

	return c, nil
}

func (r *SkillRepo) DeleteCategory(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM skill_categories WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("delete skill category: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return skillssvc.ErrCategoryNotFound
	}

	return nil
}

func (r *SkillRepo) CountSkills(ctx context.Context, categoryID int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM skills
WHERE category_id = $1
`, categoryID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count category skills: %w", err)
	}

	return count, nil
}

func (r *SkillRepo) ListSkills(ctx context.Context) ([]model.Skill, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, category_id, name, level
FROM skills
ORDER BY category_id ASC, name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list skills: %w", err)
	}
	defer rows.Close()

	skills := make([]model.Skill, 0)
	for rows.Next() {
		var s model.Skill
		if err := rows.Scan(&s.ID, &s.CategoryID, &s.Name, &s.Level); err != nil {
			return nil, fmt.Errorf("scan skill: %w", err)
		}
		skills = append(skills, s)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate skills: %w", rows.Err())
	}

	return skills, nil
}

func (r *SkillRepo) InsertSkill(ctx context.Context, s model.Skill) (model.Skill, error) {
	if r.pool == nil {
		return model.Skill{}, fmt.Errorf("postgres pool is nil")
	}

	var created model.Skill
	err := r.pool.QueryRow(ctx, `
INSERT INTO skills (category_id, name, level)
VALUES ($1, $2, $3)
RETURNING id, category_id, name, level
`, s.CategoryID, s.Name, s.Level).Scan(&created.ID, &created.CategoryID, &created.Name, &created.Level)
	if err != nil {
		return model.Skill{}, fmt.Errorf("insert skill: %w", err)
	}

	return created, nil
}

func (r *SkillRepo) DeleteSkill(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM skills WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("delete skill: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return skillssvc.ErrNotFound
	}

	return nil
}
