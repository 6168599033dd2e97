package utils

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// StaleGenerationStore resets in-progress flags of runs that never finished.
type StaleGenerationStore interface {
	ClearStaleGenerations(ctx context.Context, cutoff time.Time) (int64, error)
}

// logScheduler logs scheduler events with timestamp
func logScheduler(message string) {
	log.Printf("[GENERATION-SWEEPER %s] %s", time.Now().Format(time.RFC3339), message)
}

// SweepStaleGenerations clears flags of runs started more than staleAfter
// before now.
func SweepStaleGenerations(ctx context.Context, store StaleGenerationStore, staleAfter time.Duration, now time.Time) (int64, error) {
	cleared, err := store.ClearStaleGenerations(ctx, now.Add(-staleAfter))
	if err != nil {
		return 0, err
	}
	if cleared > 0 {
		logScheduler(fmt.Sprintf("Cleared %d stale generation flag(s)", cleared))
	}
	return cleared, nil
}

// InitializeGenerationSweeper starts a cron job that runs
// SweepStaleGenerations on schedule. The caller stops the returned cron.
func InitializeGenerationSweeper(store StaleGenerationStore, schedule string, staleAfter time.Duration) (*cron.Cron, error) {
	logScheduler("Initializing generation sweeper...")

	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if _, err := SweepStaleGenerations(ctx, store, staleAfter, time.Now()); err != nil {
			logScheduler("Error clearing stale generations: " + err.Error())
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid sweeper schedule %q: %w", schedule, err)
	}

	c.Start()

	logScheduler("Generation sweeper scheduled: " + schedule)
	return c, nil
}
