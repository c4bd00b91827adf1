package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	threadssvc "github.com/pkazlouski/devfolio/backend/internal/services/threads"
)

type CommentRepo struct {
	pool *pgxpool.Pool
}

func NewCommentRepo(pool *pgxpool.Pool) *CommentRepo {
	return &CommentRepo{pool: pool}
}

func (r *CommentRepo) Insert(ctx context.Context, c model.Comment) (model.Comment, error) {
	if r.pool == nil {
		return model.Comment{}, fmt.Errorf("postgres pool is nil")
	}

	var created model.Comment
	err := r.pool.QueryRow(ctx, `
INSERT INTO comments (thread_id, author, body, created_at)
VALUES ($1, $2, $3, NOW())
RETURNING id, thread_id, author, body, created_at
`, c.ThreadID, c.Author, c.Body).Scan(&created.ID, &created.ThreadID, &created.Author, &created.Body, &created.CreatedAt)
	if err != nil {
		return model.Comment{}, fmt.Errorf("insert comment: %w", err)
	}

	return created, nil
}

func (r *CommentRepo) ListByThread(ctx context.Context, threadID int64) ([]model.Comment, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT id, thread_id, author, body, created_at
FROM comments
WHERE thread_id = $1
ORDER BY created_at ASC, id ASC
`, threadID)
	if err != nil {
		return nil, fmt.Errorf("list thread comments: %w", err)
	}
	defer rows.Close()

	comments := make([]model.Comment, 0)
	for rows.Next() {
		var c model.Comment
		if err := rows.Scan(&c.ID, &c.ThreadID, &c.Author, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		comments = append(comments, c)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate comments: %w", rows.Err())
	}

	return comments, nil
}

func (r *CommentRepo) Delete(ctx context.Context, id int64) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM comments WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return threadssvc.ErrCommentNotFound
	}

	return nil
}
