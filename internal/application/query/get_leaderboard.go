// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD QUERY
// Builds the ranked leaderboard from the stored aggregates, cache-aside
// through the optional Redis-backed ranking cache.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardQuery contains the query parameters.
type GetLeaderboardQuery struct {
	// Limit is the maximum number of entries (0 means the default).
	Limit int

	// SkipCache forces a rebuild from the store.
	SkipCache bool
}

// GetLeaderboardResult contains the ranked entries.
type GetLeaderboardResult struct {
	Entries []leaderboard.Entry

	// FromCache reports whether the entries came from the cache.
	FromCache bool
}

// GetLeaderboardHandler handles the GetLeaderboardQuery.
type GetLeaderboardHandler struct {
	store  stats.Store
	cache  leaderboard.Cache
	logger *slog.Logger
}

// NewGetLeaderboardHandler creates a new handler. The cache may be nil.
func NewGetLeaderboardHandler(store stats.Store, cache leaderboard.Cache, logger *slog.Logger) *GetLeaderboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetLeaderboardHandler{
		store:  store,
		cache:  cache,
		logger: logger.With("component", "get_leaderboard"),
	}
}

// Handle executes the query.
func (h *GetLeaderboardHandler) Handle(ctx context.Context, q GetLeaderboardQuery) (*GetLeaderboardResult, error) {
	limit := q.Limit
	if limit <= 0 {
		limit = leaderboard.DefaultLimit
	}

	if h.cache != nil && !q.SkipCache {
		entries, err := h.cache.GetTop(ctx, limit)
		if err == nil {
			if len(entries) > limit {
				entries = entries[:limit]
			}
			return &GetLeaderboardResult{Entries: entries, FromCache: true}, nil
		}
		if !errors.Is(err, leaderboard.ErrCacheMiss) {
			h.logger.Warn("leaderboard cache read failed, rebuilding", "error", err)
		}
	}

	aggregates, err := h.store.Aggregates(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard: %w", err)
	}

	summaries := make([]stats.UserSummary, 0, len(aggregates))
	for userID, agg := range aggregates {
		summaries = append(summaries, agg.Summary(userID))
	}

	// The cache keeps the full ranking so it can serve any limit.
	full := leaderboard.BuildRanking(summaries, len(summaries))

	if h.cache != nil {
		if err := h.cache.SetTop(ctx, full); err != nil {
			h.logger.Warn("leaderboard cache write failed", "error", err)
		}
	}

	if len(full) > limit {
		full = full[:limit]
	}
	return &GetLeaderboardResult{Entries: full}, nil
}
