package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
	mediasvc "github.com/pkazlouski/devfolio/backend/internal/services/media"
)

type MediaRepo struct {
	pool *pgxpool.Pool
}

func NewMediaRepo(pool *pgxpool.Pool) *MediaRepo {
	return &MediaRepo{pool: pool}
}

const mediaColumns = `id, kind, file_name, mime_type, size, alt, is_main, thumbnail_id, thread_id, created_at`

func scanMedia(row pgx.Row) (model.Media, error) {
	var rec model.Media
	err := row.Scan(
		&rec.ID, &rec.Kind, &rec.FileName, &rec.MimeType, &rec.Size,
		&rec.Alt, &rec.IsMain, &rec.ThumbnailID, &rec.ThreadID, &rec.CreatedAt,
	)
	return rec, err
}

func (r *MediaRepo) Insert(ctx context.Context, rec model.Media) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	_, err := r.pool.Exec(ctx, `
INSERT INTO media (id, kind, file_name, mime_type, size, alt, is_main, thumbnail_id, thread_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
`, rec.ID, rec.Kind, rec.FileName, rec.MimeType, rec.Size, rec.Alt, rec.IsMain, rec.ThumbnailID, rec.ThreadID, rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert media: %w", err)
	}

	return nil
}

func (r *MediaRepo) Get(ctx context.Context, id string) (model.Media, error) {
	if r.pool == nil {
		return model.Media{}, fmt.Errorf("postgres pool is nil")
	}

	rec, err := scanMedia(r.pool.QueryRow(ctx, `
SELECT `+mediaColumns+`
FROM media
WHERE id = $1
`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Media{}, mediasvc.ErrNotFound
		}
		return model.Media{}, fmt.Errorf("get media: %w", err)
	}

	return rec, nil
}

// ListByThread returns the thread's assets in upload order. Records that
// serve as another asset's thumbnail are left out; they surface through
// the owning video instead.
func (r *MediaRepo) ListByThread(ctx context.Context, threadID int64) ([]model.Media, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+mediaColumns+`
FROM media m
WHERE m.thread_id = $1
  AND NOT EXISTS (
    SELECT 1 FROM media v WHERE v.thumbnail_id = m.id
  )
ORDER BY m.created_at ASC, m.id ASC
`, threadID)
	if err != nil {
		return nil, fmt.Errorf("list thread media: %w", err)
	}
	defer rows.Close()

	items := make([]model.Media, 0)
	for rows.Next() {
		rec, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan thread media: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate thread media: %w", rows.Err())
	}

	return items, nil
}

func (r *MediaRepo) SetThumbnail(ctx context.Context, id string, thumbnailID *string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE media SET thumbnail_id = $2 WHERE id = $1
`, id, thumbnailID)
	if err != nil {
		return fmt.Errorf("set media thumbnail: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mediasvc.ErrNotFound
	}

	return nil
}

func (r *MediaRepo) ClearThumbnailRefs(ctx context.Context, thumbnailID string) (int64, error) {
	if r.pool == nil {
		return 0, fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
UPDATE media SET thumbnail_id = NULL WHERE thumbnail_id = $1
`, thumbnailID)
	if err != nil {
		return 0, fmt.Errorf("clear thumbnail refs: %w", err)
	}

	return tag.RowsAffected(), nil
}

func (r *MediaRepo) Update(ctx context.Context, id string, alt *string, isMain *bool) (model.Media, error) {
	if r.pool == nil {
		return model.Media{}, fmt.Errorf("postgres pool is nil")
	}

	rec, err := scanMedia(r.pool.QueryRow(ctx, `
UPDATE media
SET alt = COALESCE($2, alt),
    is_main = COALESCE($3, is_main)
WHERE id = $1
RETURNING `+mediaColumns+`
`, id, alt, isMain))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Media{}, mediasvc.ErrNotFound
		}
		return model.Media{}, fmt.Errorf("update media: %w", err)
	}

	return rec, nil
}

func (r *MediaRepo) Delete(ctx context.Context, id string) error {
	if r.pool == nil {
		return fmt.Errorf("postgres pool is nil")
	}

	tag, err := r.pool.Exec(ctx, `
DELETE FROM media WHERE id = $1
`, id)
	if err != nil {
		return fmt.Errorf("delete media: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return mediasvc.ErrNotFound
	}

	return nil
}

// ListOrphanThumbnails finds still images that belong to no thread, are not
// referenced as any video's thumbnail and have sat unused past the cutoff.
func (r *MediaRepo) ListOrphanThumbnails(ctx context.Context, olderThan time.Time) ([]model.Media, error) {
	if r.pool == nil {
		return nil, fmt.Errorf("postgres pool is nil")
	}

	rows, err := r.pool.Query(ctx, `
SELECT `+mediaColumns+`
FROM media m
WHERE m.thread_id IS NULL
  AND m.thumbnail_id IS NULL
  AND m.is_main = FALSE
  AND m.kind IN ('image', 'gif')
  AND m.created_at < $1
  AND NOT EXISTS (
    SELECT 1 FROM media v WHERE v.thumbnail_id = m.id
  )
ORDER BY m.created_at ASC
`, olderThan.UTC())
	if err != nil {
		return nil, fmt.Errorf("list orphan thumbnails: %w", err)
	}
	defer rows.Close()

	items := make([]model.Media, 0)
	for rows.Next() {
		rec, err := scanMedia(rows)
		if err != nil {
			return nil, fmt.Errorf("scan orphan thumbnail: %w", err)
		}
		items = append(items, rec)
	}

	if rows.Err() != nil {
		return nil, fmt.Errorf("iterate orphan thumbnails: %w", rows.Err())
	}

	return items, nil
}
