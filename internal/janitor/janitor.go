// Package janitor removes generated objects once they are past their retention age.
package janitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/glizzus/sound-stego/internal/datalayer"
	"github.com/glizzus/sound-stego/internal/generator"
	"github.com/glizzus/sound-stego/internal/schedule"
)

// DefaultPrefixes are the key prefixes of objects the service creates.
var DefaultPrefixes = []string{
	generator.EmbeddedAudioPrefix,
	generator.ExtractedImagePrefix,
}

type Janitor struct {
	Storage  datalayer.BlobStorage
	Prefixes []string
	MaxAge   time.Duration
	Now      func() time.Time
}

// Sweep purges every prefix once and returns the number of objects removed.
// It keeps going after a failing prefix and reports the first error.
func (j *Janitor) Sweep(ctx context.Context) (int, error) {
	now := time.Now
	if j.Now != nil {
		now = j.Now
	}
	prefixes := j.Prefixes
	if len(prefixes) == 0 {
		prefixes = DefaultPrefixes
	}

	cutoff := now().Add(-j.MaxAge)
	total := 0
	var firstErr error
	for _, prefix := range prefixes {
		removed, err := j.Storage.Purge(ctx, prefix, cutoff)
		total += removed
		if err != nil {
			slog.ErrorContext(ctx, "failed to purge objects", "prefix", prefix, "error", err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return total, firstErr
}

// Run sweeps on the cron cadence until ctx is cancelled.
func (j *Janitor) Run(ctx context.Context, cron string) error {
	return schedule.Every(ctx, cron, func(ctx context.Context) {
		removed, err := j.Sweep(ctx)
		if err != nil {
			return
		}
		slog.InfoContext(ctx, "retention sweep finished", "removed", removed, "maxAge", j.MaxAge)
	})
}
