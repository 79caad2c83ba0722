package schedule

import (
	"context"
	"time"
)

// Every calls execute at each run time of cron until ctx is cancelled.
// Runs are sequential; a slow run delays the next one rather than overlapping it.
func Every(ctx context.Context, cron string, execute func(ctx context.Context)) error {
	return every(ctx, cron, time.Now, execute)
}

func every(ctx context.Context, cron string, now func() time.Time, execute func(ctx context.Context)) error {
	for {
		next, err := NextRunAfter(cron, now())
		if err != nil {
			return err
		}

		timer := time.NewTimer(time.Until(next))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		execute(ctx)
	}
}
