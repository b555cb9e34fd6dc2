package stats

import (
	"github.com/wordler-hub/wordler-community-hub/internal/domain/puzzle"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
)

// ResultRecordedEvent is emitted after a result was durably recorded.
// Duplicate submissions do not emit it.
type ResultRecordedEvent struct {
	shared.BaseEvent
	UserID       string `json:"user_id"`
	DisplayName  string `json:"display_name"`
	PuzzleNumber *int   `json:"puzzle_number"`
	Success      bool   `json:"success"`
	Attempts     *int   `json:"attempts"`
	HardMode     bool   `json:"hard_mode"`
	DedupeKey    string `json:"dedupe_key"`
}

// Payload implements shared.Event.
func (e ResultRecordedEvent) Payload() map[string]interface{} {
	p := map[string]interface{}{
		"user_id":      e.UserID,
		"display_name": e.DisplayName,
		"success":      e.Success,
		"hard_mode":    e.HardMode,
		"dedupe_key":   e.DedupeKey,
	}
	if e.PuzzleNumber != nil {
		p["puzzle_number"] = *e.PuzzleNumber
	}
	if e.Attempts != nil {
		p["attempts"] = *e.Attempts
	}
	return p
}

// NewResultRecordedEvent creates a ResultRecordedEvent for one recording.
func NewResultRecordedEvent(userID, displayName, dedupeKey string, result puzzle.Result) ResultRecordedEvent {
	return ResultRecordedEvent{
		BaseEvent:    shared.NewBaseEvent(shared.EventResultRecorded, userID),
		UserID:       userID,
		DisplayName:  displayName,
		PuzzleNumber: result.PuzzleNumber,
		Success:      result.Success,
		Attempts:     result.Attempts,
		HardMode:     result.HardMode,
		DedupeKey:    dedupeKey,
	}
}
