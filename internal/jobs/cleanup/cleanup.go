package cleanup

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/pkazlouski/devfolio/backend/internal/domain/model"
)

// OrphanStore lists still images that never got attached to a video or a
// thread, so a failed second phase of a video upload eventually gets
// reconciled here.
type OrphanStore interface {
	ListOrphanThumbnails(ctx context.Context, olderThan time.Time) ([]model.Media, error)
	Delete(ctx context.Context, id string) error
}

type ObjectStorage interface {
	Delete(ctx context.Context, key string) error
}

type Job struct {
	store     OrphanStore
	storage   ObjectStorage
	orphanAge time.Duration
	now       func() time.Time
	logger    *zap.Logger
}

func NewOrphanThumbnailJob(store OrphanStore, storage ObjectStorage, orphanAge time.Duration, logger *zap.Logger) *Job {
	if orphanAge <= 0 {
		orphanAge = 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Job{
		store:     store,
		storage:   storage,
		orphanAge: orphanAge,
		now:       time.Now,
		logger:    logger,
	}
}

func (j *Job) Run(ctx context.Context) error {
	if j.store == nil || j.storage == nil {
		return nil
	}

	cutoff := j.now().Add(-j.orphanAge)
	orphans, err := j.store.ListOrphanThumbnails(ctx, cutoff)
	if err != nil {
		return fmt.Errorf("list orphan thumbnails: %w", err)
	}

	if len(orphans) == 0 {
		return nil
	}

	deleted := 0
	for _, orphan := range orphans {
		if err := j.storage.Delete(ctx, orphan.FileName); err != nil {
			j.logger.Warn("failed to delete orphan object from storage",
				zap.Error(err), zap.String("file_name", orphan.FileName))
			continue
		}
		if err := j.store.Delete(ctx, orphan.ID); err != nil {
			return fmt.Errorf("delete orphan media record: %w", err)
		}
		deleted++
	}

	j.logger.Info("orphan thumbnail cleanup completed", zap.Int("deleted", deleted))
	return nil
}
