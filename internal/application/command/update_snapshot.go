package command

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// UPDATE LEADERBOARD SNAPSHOT COMMAND
// Stores the rank order that was just published so the next post can show
// movement. Pure storage: no diffing happens here.
// ══════════════════════════════════════════════════════════════════════════════

// UpdateLeaderboardSnapshotCommand replaces the stored rank order.
type UpdateLeaderboardSnapshotCommand struct {
	// OrderedUserIDs is the published order, best rank first.
	OrderedUserIDs []string

	// CorrelationID for tracing.
	CorrelationID string
}

// UpdateLeaderboardSnapshotHandler handles the command.
type UpdateLeaderboardSnapshotHandler struct {
	store  stats.Store
	logger *slog.Logger
}

// NewUpdateLeaderboardSnapshotHandler creates a new handler.
func NewUpdateLeaderboardSnapshotHandler(store stats.Store, logger *slog.Logger) *UpdateLeaderboardSnapshotHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &UpdateLeaderboardSnapshotHandler{
		store:  store,
		logger: logger.With("component", "update_leaderboard_snapshot"),
	}
}

// Handle replaces the stored order durably.
func (h *UpdateLeaderboardSnapshotHandler) Handle(ctx context.Context, cmd UpdateLeaderboardSnapshotCommand) error {
	err := h.store.Update(ctx, func(tx stats.Tx) error {
		tx.SetSnapshotOrder(cmd.OrderedUserIDs)
		return nil
	})
	if err != nil {
		return fmt.Errorf("update_leaderboard_snapshot: %w", err)
	}

	h.logger.Debug("leaderboard snapshot updated", "entries", len(cmd.OrderedUserIDs))
	return nil
}
