// Package jobs contains implementations of scheduled jobs for the community puzzle bot.
package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/wordler-hub/wordler-community-hub/internal/application/command"
	"github.com/wordler-hub/wordler-community-hub/internal/application/query"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
	"github.com/wordler-hub/wordler-community-hub/pkg/retry"
)

// ══════════════════════════════════════════════════════════════════════════════
// DAILY LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardGateway posts a rendered leaderboard to the chat platform.
type LeaderboardGateway interface {
	PostLeaderboard(ctx context.Context, entries []leaderboard.Entry, movements map[string]leaderboard.Movement) error
}

// DailyLeaderboardConfig contains configuration for the daily leaderboard job.
type DailyLeaderboardConfig struct {
	// Limit is the number of entries to include in the post.
	Limit int

	// PostTimeout bounds a single posting attempt.
	PostTimeout time.Duration
}

// DefaultDailyLeaderboardConfig returns sensible defaults.
func DefaultDailyLeaderboardConfig() DailyLeaderboardConfig {
	return DailyLeaderboardConfig{
		Limit:       leaderboard.DefaultLimit,
		PostTimeout: 30 * time.Second,
	}
}

// DailyLeaderboardJob posts the current standings to the configured channel
// once per day and persists the posted order so the next post can show
// rank movement.
type DailyLeaderboardJob struct {
	getLeaderboard *query.GetLeaderboardHandler
	getSnapshot    *query.GetLeaderboardSnapshotHandler
	updateSnapshot *command.UpdateLeaderboardSnapshotHandler
	gateway        LeaderboardGateway
	logger         *slog.Logger
	config         DailyLeaderboardConfig
}

// NewDailyLeaderboardJob creates the job with its dependencies.
func NewDailyLeaderboardJob(
	getLeaderboard *query.GetLeaderboardHandler,
	getSnapshot *query.GetLeaderboardSnapshotHandler,
	updateSnapshot *command.UpdateLeaderboardSnapshotHandler,
	gateway LeaderboardGateway,
	logger *slog.Logger,
	config DailyLeaderboardConfig,
) *DailyLeaderboardJob {
	if config.Limit <= 0 {
		config.Limit = leaderboard.DefaultLimit
	}
	if config.PostTimeout <= 0 {
		config.PostTimeout = 30 * time.Second
	}
	return &DailyLeaderboardJob{
		getLeaderboard: getLeaderboard,
		getSnapshot:    getSnapshot,
		updateSnapshot: updateSnapshot,
		gateway:        gateway,
		logger:         logger.With(slog.String("job", "daily_leaderboard")),
		config:         config,
	}
}

// Name implements scheduler.Job.
func (j *DailyLeaderboardJob) Name() string {
	return "daily_leaderboard"
}

// Description implements scheduler.Job.
func (j *DailyLeaderboardJob) Description() string {
	return "Posts the daily leaderboard and records the posted rank order"
}

// Run implements scheduler.Job.
func (j *DailyLeaderboardJob) Run(ctx context.Context) error {
	start := time.Now()
	correlationID := uuid.New().String()

	result, err := j.getLeaderboard.Handle(ctx, query.GetLeaderboardQuery{
		Limit:     j.config.Limit,
		SkipCache: true,
	})
	if err != nil {
		return fmt.Errorf("daily leaderboard: load standings: %w", err)
	}

	if len(result.Entries) == 0 {
		j.logger.Info("no results recorded yet, skipping leaderboard post",
			slog.String("correlation_id", correlationID))
		return nil
	}

	previousOrder, err := j.getSnapshot.Handle(ctx)
	if err != nil {
		return fmt.Errorf("daily leaderboard: load previous order: %w", err)
	}
	movements := leaderboard.Movements(previousOrder, result.Entries)

	postCtx, cancel := context.WithTimeout(ctx, j.config.PostTimeout)
	defer cancel()

	err = retry.Do(postCtx, func(ctx context.Context) error {
		return j.gateway.PostLeaderboard(ctx, result.Entries, movements)
	},
		retry.WithMaxAttempts(3),
		retry.WithInitialDelay(500*time.Millisecond),
		retry.WithOnRetry(func(attempt int, err error, delay time.Duration) {
			j.logger.Warn("leaderboard post attempt failed, retrying",
				slog.Int("attempt", attempt),
				slog.Duration("delay", delay),
				slog.String("error", err.Error()))
		}),
	)
	if err != nil {
		return fmt.Errorf("daily leaderboard: post: %w", err)
	}

	// Persist the posted order only after a successful post; a failed post
	// must not consume the movement baseline.
	err = j.updateSnapshot.Handle(ctx, command.UpdateLeaderboardSnapshotCommand{
		OrderedUserIDs: leaderboard.Order(result.Entries),
		CorrelationID:  correlationID,
	})
	if err != nil {
		return fmt.Errorf("daily leaderboard: record posted order: %w", err)
	}

	j.logger.Info("daily leaderboard posted",
		slog.Int("entries", len(result.Entries)),
		slog.Duration("duration", time.Since(start)),
		slog.String("correlation_id", correlationID))
	return nil
}
