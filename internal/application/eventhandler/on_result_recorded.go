// Package eventhandler contains domain event subscribers.
package eventhandler

import (
	"context"
	"log/slog"
	"time"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// ON RESULT RECORDED HANDLER
// Every recorded result can reshuffle the ranking, so the cached leaderboard
// is dropped and rebuilt lazily on the next read.
// ══════════════════════════════════════════════════════════════════════════════

// OnResultRecordedHandler invalidates the leaderboard cache after a recording.
type OnResultRecordedHandler struct {
	cache   leaderboard.Cache
	logger  *slog.Logger
	timeout time.Duration
}

// NewOnResultRecordedHandler creates a new handler.
func NewOnResultRecordedHandler(cache leaderboard.Cache, logger *slog.Logger) *OnResultRecordedHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OnResultRecordedHandler{
		cache:   cache,
		logger:  logger.With("component", "on_result_recorded"),
		timeout: 3 * time.Second,
	}
}

// Register subscribes the handler on the bus.
func (h *OnResultRecordedHandler) Register(bus shared.EventSubscriber) error {
	return bus.Subscribe(shared.EventResultRecorded, h.Handle)
}

// Handle implements shared.EventHandler.
func (h *OnResultRecordedHandler) Handle(event shared.Event) error {
	if h.cache == nil {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	if err := h.cache.Invalidate(ctx); err != nil {
		h.logger.Warn("failed to invalidate leaderboard cache",
			"user_id", event.AggregateID(),
			"error", err)
		return err
	}

	h.logger.Debug("leaderboard cache invalidated", "user_id", event.AggregateID())
	return nil
}
