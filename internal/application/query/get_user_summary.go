package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET USER SUMMARY QUERY
// Point lookup of one user's standing. An unknown user is reported with a
// sentinel, never with invented zero-value stats.
// ══════════════════════════════════════════════════════════════════════════════

// GetUserSummaryQuery contains the query parameters.
type GetUserSummaryQuery struct {
	// UserID is the canonical user ID to look up.
	UserID string
}

// GetUserSummaryHandler handles the GetUserSummaryQuery.
type GetUserSummaryHandler struct {
	store  stats.Store
	logger *slog.Logger
}

// NewGetUserSummaryHandler creates a new handler.
func NewGetUserSummaryHandler(store stats.Store, logger *slog.Logger) *GetUserSummaryHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &GetUserSummaryHandler{
		store:  store,
		logger: logger.With("component", "get_user_summary"),
	}
}

// Handle executes the query. Returns shared.ErrUserNotFound for users with
// no recorded results.
func (h *GetUserSummaryHandler) Handle(ctx context.Context, q GetUserSummaryQuery) (*stats.UserSummary, error) {
	if q.UserID == "" {
		return nil, errors.New("get_user_summary: user_id is required")
	}

	agg, err := h.store.Aggregate(ctx, q.UserID)
	if err != nil {
		if shared.IsNotFound(err) {
			return nil, err
		}
		return nil, fmt.Errorf("get_user_summary: %w", err)
	}

	summary := agg.Summary(q.UserID)
	return &summary, nil
}
