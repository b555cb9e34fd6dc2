package handler

import (
	"context"

	"github.com/wordler-hub/wordler-community-hub/internal/application/query"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
	"github.com/wordler-hub/wordler-community-hub/internal/interface/discord/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD HANDLER
// Shows the ranked standings with movement against the last posted order.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardHandler handles the leaderboard command.
type LeaderboardHandler struct {
	leaderboardQuery *query.GetLeaderboardHandler
	snapshotQuery    *query.GetLeaderboardSnapshotHandler
	boards           *presenter.LeaderboardPresenter

	// DefaultLimit caps the entries shown when the command gives none.
	DefaultLimit int
}

// NewLeaderboardHandler creates a new LeaderboardHandler.
func NewLeaderboardHandler(
	leaderboardQuery *query.GetLeaderboardHandler,
	snapshotQuery *query.GetLeaderboardSnapshotHandler,
	boards *presenter.LeaderboardPresenter,
	defaultLimit int,
) *LeaderboardHandler {
	if defaultLimit <= 0 {
		defaultLimit = leaderboard.DefaultLimit
	}
	return &LeaderboardHandler{
		leaderboardQuery: leaderboardQuery,
		snapshotQuery:    snapshotQuery,
		boards:           boards,
		DefaultLimit:     defaultLimit,
	}
}

// LeaderboardRequest contains the parsed leaderboard command data.
type LeaderboardRequest struct {
	// Args is the raw argument text; an optional number overrides the
	// entry count.
	Args string
}

// LeaderboardResponse contains the reply to send back.
type LeaderboardResponse struct {
	Text    string
	IsError bool
}

// Handle processes the leaderboard command.
func (h *LeaderboardHandler) Handle(ctx context.Context, req LeaderboardRequest) (*LeaderboardResponse, error) {
	limit := ParseLimitArg(req.Args)
	if limit <= 0 {
		limit = h.DefaultLimit
	}

	result, err := h.leaderboardQuery.Handle(ctx, query.GetLeaderboardQuery{Limit: limit})
	if err != nil {
		return &LeaderboardResponse{
			Text:    "❌ Could not load the leaderboard right now, try again later.",
			IsError: true,
		}, nil
	}

	// Movement is best effort; a snapshot read failure only hides arrows.
	var movements map[string]leaderboard.Movement
	if previousOrder, err := h.snapshotQuery.Handle(ctx); err == nil {
		movements = leaderboard.Movements(previousOrder, result.Entries)
	}

	return &LeaderboardResponse{Text: h.boards.Format(result.Entries, movements)}, nil
}
