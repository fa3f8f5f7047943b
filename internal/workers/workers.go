// Package workers runs the periodic background jobs of the API.
package workers

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/go-co-op/gocron/v2"
)

const (
	RankInterval    = 10 * time.Minute
	CleanupInterval = 1 * time.Minute
	VisitorMaxIdle  = 3 * time.Minute
)

type RankRecomputer interface {
	RecomputeRanks(ctx context.Context) (int64, error)
}

// VisitorCleaner drops rate limiter entries idle for longer than maxIdle
// and returns how many were removed.
type VisitorCleaner func(maxIdle time.Duration) int

type Scheduler struct {
	sched gocron.Scheduler
}

// Start schedules leaderboard rank recomputation (also once at boot) and
// rate limiter cleanup.
func Start(ranks RankRecomputer, cleanVisitors VisitorCleaner) (*Scheduler, error) {
	return start(ranks, cleanVisitors, RankInterval, CleanupInterval)
}

func start(ranks RankRecomputer, cleanVisitors VisitorCleaner, rankEvery, cleanupEvery time.Duration) (*Scheduler, error) {
	sched, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(rankEvery),
		gocron.NewTask(func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()

			n, err := ranks.RecomputeRanks(ctx)
			if err != nil {
				log.Printf("[Scheduler] Rank recompute failed: %v", err)
				return
			}
			log.Printf("[Scheduler] Recomputed %d leaderboard ranks", n)
		}),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule rank job: %w", err)
	}

	_, err = sched.NewJob(
		gocron.DurationJob(cleanupEvery),
		gocron.NewTask(func() {
			if n := cleanVisitors(VisitorMaxIdle); n > 0 {
				log.Printf("[Scheduler] Removed %d idle rate limiter visitors", n)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule cleanup job: %w", err)
	}

	sched.Start()
	return &Scheduler{sched: sched}, nil
}

func (s *Scheduler) Shutdown() error {
	return s.sched.Shutdown()
}
