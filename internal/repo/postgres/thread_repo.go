package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	threadssvc "github.com/pkazlouski/devfolio/backend/internal/services/threads"
)

type ThreadRepo struct {
	pool *pgxpool.Pool
}

func NewThreadRepo(pool *pgxpool.Pool) *ThreadRepo {
	return &ThreadRepo{pool: pool}
}

const threadColumns = `t.id, t.title, t.body, t.repo_url, t.categories, t.created_at, t.updated_at`

func scanThread(row pgx.Row) (model.Thread, error) {
	var t model.Thread
	err := row.Scan(&t.ID, &t.Title, &t.Body, &t.RepoURL, &t.Categories, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *ThreadRepo) List(ctx context.Context, f threadssvc.Filter) ([]model.Thread, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	query := `
SELECT DISTINCT ` + threadColumns + `
FROM threads t
`
	args := make([]any, 0, 2)
	conditions := make([]string, 0, 2)

	if lang := strings.TrimSpace(f.Language); lang != "" {
		query += `
JOIN thread_languages tl ON tl.thread_id = t.id
JOIN languages l ON l.id = tl.language_id
`
		args = append(args, lang)
		conditions = append(conditions, fmt.Sprintf("l.name = $%d", len(args)))
	}
	if cat := strings.TrimSpace(f.Category); cat != "" {
		args = append(args, cat)
		conditions = append(conditions, fmt.Sprintf("$%d = ANY(t.categories)", len(args)))
	}

	if len(conditions) > 0 {
		query += "WHERE " + strings.Join(conditions, " AND ") + "\n"
	}
	query += "ORDER BY t.created_at DESC, t.id DESC\n"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list threads: %w", err)
	}
	defer rows.Close()

	threads := make([]model.Thread, 0)
	for rows.Next() {
		t, err := scanThread(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thread: %w", err)
		}
		threads = append(threads, t)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate threads: %w", rows.Err())
	}

	return threads, nil
}

func (r *ThreadRepo) Get(ctx context.Context, id int64) (model.Thread, error) {
	if r.pool == nil {
		return model.Thread{}, fmt.Errorf("postgres pool is nil")
	}

	t, err := scanThread(r.pool.QueryRow(ctx, `
SELECT `+threadColumns+`
FROM threads t
WHERE t.id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Thread{}, threadssvc.ErrNotFound
		}
		return model.Thread{}, fmt.Errorf("get thread: %w", err)
	}

	return t, nil
}

func (r *ThreadRepo) Insert(ctx context.Context, t model.Thread, languageIDs []int64) (model.Thread, error) {
	if r.pool == nil {
		return model.Thread{}, fmt.Errorf("postgres pool is nil")
	}

	var created model.Thread
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		created, err = scanThread(tx.QueryRow(ctx, `
INSERT INTO threads (title, body, repo_url, categories, created_at, updated_at)
VALUES ($1, $2, $3, $4, NOW(), NOW())
RETURNING id, title, body, repo_url, categories, created_at, updated_at
`, t.Title, t.Body, t.RepoURL, t.Categories))
		if err != nil {
			return fmt.Errorf("insert thread: %w", err)
		}
		return setThreadLanguages(ctx, tx, created.ID, languageIDs)
	})
	if err != nil {
		return model.Thread{}, err
	}

	return created, nil
}

func (r *ThreadRepo) Update(ctx context.Context, id int64, in threadssvc.UpdateInput) (model.Thread, error) {
	if r.pool == nil {
		return model.Thread{}, fmt.Errorf("postgres pool is nil")
	}

	var updated model.Thread
	err := WithTx(ctx, r.pool, func(ctx context.Context, tx pgx.Tx) error {
		var err error
		updated, err = scanThread(tx.QueryRow(ctx, `
UPDATE threads t
SET title = COALESCE($2, title),
    body = COALESCE($3, body),
    repo_url = COALESCE($4, repo_url),
    categories = COALESCE($5, categories),
    updated_at = NOW()
WHERE id = $1
RETURNING `+threadColumns+`
`, id, in.Title, in.Body, in.RepoURL, in.Categories))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return threadssvc.ErrNotFound
			}
			return fmt.Errorf("update thread: %w", err)
		}

		if in.LanguageIDs == nil {
			return nil
		}
		if _, err := tx.Exec(ctx, `DELETE FROM thread_languages WHERE thread_id = $1`, id); err != nil {
			return fmt.Errorf("clear thread languages: %w", err)
		}
		return setThreadLanguages(ctx, tx, id, in.LanguageIDs)
	})
	if err != nil {
		return model.Thread{}, err
	}

	return updated, nil
}

func (r *ThreadRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM threads WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("delete thread: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return threadssvc.ErrNotFound
	}

	return nil
}

func (r *ThreadRepo) ListLanguages(ctx context.Context, threadID int64) ([]model.Language, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT l.id, l.name
FROM languages l
JOIN thread_languages tl ON tl.language_id = l.id
WHERE tl.thread_id = $1
ORDER BY l.name ASC
`, threadID)
	if err != nil {
		return nil, fmt.Errorf("list thread languages: %w", err)
	}
	defer rows.Close()

	languages := make([]model.Language, 0)
	for rows.Next() {
		var l model.Language
		if err := rows.Scan(&l.ID, &l.Name); err != nil {
			return nil, fmt.Errorf("scan thread language: %w", err)
		}
		languages = append(languages, l)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate thread languages: %w", rows.Err())
	}

	return languages, nil
}

func setThreadLanguages(ctx context.Context, tx pgx.Tx, threadID int64, languageIDs []int64) error {
	for _, langID := range languageIDs {
		if _, err := tx.Exec(ctx, `
INSERT INTO thread_languages (thread_id, language_id)
VALUES ($1, $2)
ON CONFLICT DO NOTHING
`, threadID, langID); err != nil {
			return fmt.Errorf("link thread language: %w", err)
		}
	}
	return nil
}
