package jobs

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/basit/bucketstore-backend/storage"
	"github.com/basit/bucketstore-backend/store"
)

// Cleanup removes files whose retention has lapsed: the physical object via
// the owning backend, then the metadata row.
type Cleanup struct {
	files  *store.FileStore
	engine *storage.Engine
	every  time.Duration
	log    zerolog.Logger
}

func NewCleanup(files *store.FileStore, engine *storage.Engine, log zerolog.Logger) *Cleanup {
	return &Cleanup{
		files:  files,
		engine: engine,
		every:  time.Hour,
		log:    log.With().Str("component", "jobs.cleanup").Logger(),
	}
}

// Start runs the cleanup loop until ctx is cancelled.
func (j *Cleanup) Start(ctx context.Context) {
	ticker := time.NewTicker(j.every)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				j.Run(ctx)
			}
		}
	}()
}

// Run performs one cleanup pass.
func (j *Cleanup) Run(ctx context.Context) {
	expired, err := j.files.ListExpired(ctx, time.Now().UTC())
	if err != nil {
		j.log.Error().Err(err).Msg("failed to list expired files")
		return
	}

	for i := range expired {
		file := &expired[i]
		if err := j.engine.DeleteObject(ctx, file); err != nil {
			j.log.Error().Err(err).Str("file_id", file.ID.String()).Msg("failed to delete expired object")
			continue
		}
		if err := j.files.Delete(ctx, file); err != nil {
			j.log.Error().Err(err).Str("file_id", file.ID.String()).Msg("failed to delete expired record")
			continue
		}
		j.log.Info().Str("file_id", file.ID.String()).Str("bucket", file.Bucket).Msg("expired file removed")
	}
}
