package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/wordler-hub/wordler-community-hub/internal/application/query"
)

// ══════════════════════════════════════════════════════════════════════════════
// REFRESH LEADERBOARD JOB
// ══════════════════════════════════════════════════════════════════════════════

// RefreshLeaderboardJob periodically rebuilds the cached ranking so that
// leaderboard commands stay fast even when the cache entry has expired.
type RefreshLeaderboardJob struct {
	getLeaderboard *query.GetLeaderboardHandler
	logger         *slog.Logger
}

// NewRefreshLeaderboardJob creates the job.
func NewRefreshLeaderboardJob(getLeaderboard *query.GetLeaderboardHandler, logger *slog.Logger) *RefreshLeaderboardJob {
	return &RefreshLeaderboardJob{
		getLeaderboard: getLeaderboard,
		logger:         logger.With(slog.String("job", "refresh_leaderboard")),
	}
}

// Name implements scheduler.Job.
func (j *RefreshLeaderboardJob) Name() string {
	return "refresh_leaderboard"
}

// Description implements scheduler.Job.
func (j *RefreshLeaderboardJob) Description() string {
	return "Rebuilds the cached leaderboard from the stats store"
}

// Run implements scheduler.Job.
func (j *RefreshLeaderboardJob) Run(ctx context.Context) error {
	start := time.Now()

	// SkipCache forces a rebuild from the store; the handler repopulates
	// the cache with the fresh ranking as a side effect.
	result, err := j.getLeaderboard.Handle(ctx, query.GetLeaderboardQuery{SkipCache: true})
	if err != nil {
		return fmt.Errorf("refresh leaderboard: %w", err)
	}

	j.logger.Debug("leaderboard cache refreshed",
		slog.Int("entries", len(result.Entries)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
