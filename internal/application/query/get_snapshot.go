package query

import (
	"context"
	"fmt"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET LEADERBOARD SNAPSHOT QUERY
// Returns the rank order stored at the last published leaderboard, used by
// presentation code to compute movement indicators.
// ══════════════════════════════════════════════════════════════════════════════

// GetLeaderboardSnapshotHandler returns the previously published rank order.
type GetLeaderboardSnapshotHandler struct {
	store stats.Store
}

// NewGetLeaderboardSnapshotHandler creates a new handler.
func NewGetLeaderboardSnapshotHandler(store stats.Store) *GetLeaderboardSnapshotHandler {
	return &GetLeaderboardSnapshotHandler{store: store}
}

// Handle executes the query. An empty slice means no post happened yet.
func (h *GetLeaderboardSnapshotHandler) Handle(ctx context.Context) ([]string, error) {
	order, err := h.store.LeaderboardSnapshot(ctx)
	if err != nil {
		return nil, fmt.Errorf("get_leaderboard_snapshot: %w", err)
	}
	return order, nil
}
