// Package command contains write operations (CQRS - Commands).
package command

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/puzzle"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// RECORD RESULT COMMAND
// Records one parsed puzzle result against a resolved user identity.
// Recording is idempotent: the dedupe key decides whether a submission was
// already counted, and a duplicate is an outcome, not an error.
// ══════════════════════════════════════════════════════════════════════════════

// RecordResultCommand contains the data to record a puzzle result.
type RecordResultCommand struct {
	// UserID is the canonical user ID resolved by the caller.
	UserID string

	// DisplayName is the name observed alongside the message. The stored
	// name is refreshed on every recording.
	DisplayName string

	// Result is the parsed puzzle result.
	Result puzzle.Result

	// DedupeKey uniquely identifies this submission, typically the message
	// ID, or message ID plus participant for recap summaries.
	DedupeKey string

	// Timestamp is when the result was observed (defaults to now if zero).
	Timestamp time.Time

	// CorrelationID for tracing.
	CorrelationID string
}

// Validate validates the command.
func (c RecordResultCommand) Validate() error {
	if c.UserID == "" {
		return errors.New("record_result: user_id is required")
	}
	if c.DedupeKey == "" {
		return errors.New("record_result: dedupe_key is required")
	}
	if err := c.Result.Validate(); err != nil {
		return fmt.Errorf("record_result: %w", err)
	}
	return nil
}

// RecordResultResult contains the outcome of a recording attempt.
type RecordResultResult struct {
	// Recorded is true when the result was durably counted.
	Recorded bool

	// Duplicate is true when the dedupe key was already processed.
	Duplicate bool

	// UserID is the user the result was recorded for.
	UserID string

	// Summary is the user's standing after the recording (nil on duplicate).
	Summary *stats.UserSummary

	// RecordedAt is when the result was recorded.
	RecordedAt time.Time
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// RecordResultHandler handles the RecordResultCommand.
type RecordResultHandler struct {
	store     stats.Store
	publisher shared.EventPublisher
	logger    *slog.Logger
}

// NewRecordResultHandler creates a new RecordResultHandler. The publisher
// may be nil when no event bus is wired.
func NewRecordResultHandler(store stats.Store, publisher shared.EventPublisher, logger *slog.Logger) *RecordResultHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &RecordResultHandler{
		store:     store,
		publisher: publisher,
		logger:    logger.With("component", "record_result"),
	}
}

// Handle executes the record result command. Recorded is reported only
// after the store committed the mutation durably; a persistence failure
// leaves the submission unrecorded and is returned to the caller.
func (h *RecordResultHandler) Handle(ctx context.Context, cmd RecordResultCommand) (*RecordResultResult, error) {
	if err := cmd.Validate(); err != nil {
		return nil, fmt.Errorf("record_result: validation failed: %w", err)
	}

	timestamp := cmd.Timestamp
	if timestamp.IsZero() {
		timestamp = time.Now().UTC()
	}

	result := &RecordResultResult{UserID: cmd.UserID}

	err := h.store.Update(ctx, func(tx stats.Tx) error {
		if tx.IsProcessed(cmd.DedupeKey) {
			result.Duplicate = true
			return nil
		}

		agg, ok := tx.Aggregate(cmd.UserID)
		if !ok {
			agg = stats.NewUserAggregate(cmd.DisplayName)
		}
		agg.Apply(cmd.Result, cmd.DisplayName, timestamp)
		tx.PutAggregate(cmd.UserID, agg)
		tx.MarkProcessed(cmd.DedupeKey)

		summary := agg.Summary(cmd.UserID)
		result.Summary = &summary
		return nil
	})
	if err != nil {
		h.logger.Error("failed to record result",
			"user_id", cmd.UserID,
			"dedupe_key", cmd.DedupeKey,
			"error", err)
		return nil, fmt.Errorf("record_result: %w", err)
	}

	if result.Duplicate {
		h.logger.Debug("duplicate submission ignored",
			"user_id", cmd.UserID,
			"dedupe_key", cmd.DedupeKey)
		return result, nil
	}

	result.Recorded = true
	result.RecordedAt = timestamp

	h.logger.Info("result recorded",
		"user_id", cmd.UserID,
		"success", cmd.Result.Success,
		"dedupe_key", cmd.DedupeKey)

	if h.publisher != nil {
		event := stats.NewResultRecordedEvent(cmd.UserID, cmd.DisplayName, cmd.DedupeKey, cmd.Result)
		event.BaseEvent = event.BaseEvent.WithCorrelationID(cmd.CorrelationID)
		if err := h.publisher.Publish(event); err != nil {
			h.logger.Warn("failed to publish result recorded event", "error", err)
		}
	}

	return result, nil
}
