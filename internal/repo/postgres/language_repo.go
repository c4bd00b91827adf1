package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	languagessvc "github.com/pkazlouski/devfolio/backend/internal/services/languages"
)

type LanguageRepo struct {
	pool *pgxpool.Pool
}

func NewLanguageRepo(pool *pgxpool.Pool) *LanguageRepo {
	return &LanguageRepo{pool: pool}
}

func (r *LanguageRepo) List(ctx context.Context) ([]model.Language, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, name
FROM languages
ORDER BY name ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list languages: %w", err)
	}
	defer rows.Close()

	languages := make([]model.Language, 0)
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan language: %w", err)
		}
		languages = append(languages, l)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate languages: %w", rows.Err())
	}

	return languages, nil
}

func (r *LanguageRepo) Get(ctx context.Context, id int64) (model.Language, error) {
	if r.pool == nil {
		return model.Language{}, fmt.Errorf("postgres pool is nil")
	}

	var l model.Language
	err := r.pool.QueryRow(ctx, `
SELECT id, name
FROM languages
WHERE id = $1
`, id).Scan(&l.ID, &l.Name)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Language{}, languagessvc.ErrNotFound
		}
		return model.Language{}, fmt.Errorf("get language: %w", err)
	}

	return l, nil
}

func (r *LanguageRepo) Insert(ctx context.Context, name string) (model.Language, error) {
	if r.pool == nil {
		return model.Language{}, fmt.Errorf("postgres pool is nil")
	}

	var l model.Language
	err := r.pool.QueryRow(ctx, `
INSERT INTO languages (name)
VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name
RETURNING id, name
`, name).Scan(&l.ID, &l.Name)
	if err != nil {
		return model.Language{}, fmt.Errorf("insert language: %w", err)
	}

	return l, nil
}

func (r *LanguageRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM languages WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("delete language: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return languagessvc.ErrNotFound
	}

	return nil
}

func (r *LanguageRepo) CountThreads(ctx context.Context, id int64) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	var count int64
	err := r.pool.QueryRow(ctx, `
SELECT COUNT(*)
FROM thread_languages
WHERE language_id = $1
`, id).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count language threads: %w", err)
	}

	return count, nil
}

// EnsureByName creates any missing languages, leaving existing ones alone.
func (r *LanguageRepo) EnsureByName(ctx context.Context, names []string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	for _, name := range names {
		if _, err := r.pool.Exec(ctx, `
INSERT INTO languages (name)
VALUES ($1)
ON CONFLICT (name) DO NOTHING
`, name); err != nil {
			return fmt.Errorf("ensure language %q: %w", name, err)
		}
	}

	return nil
}
