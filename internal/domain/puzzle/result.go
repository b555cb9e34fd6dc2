// Package puzzle contains the pure parsing logic for daily word-puzzle
// share messages and recap summaries. The package never touches storage
// or the chat platform: text in, structured results out.
package puzzle

import (
	"strings"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
)

// MaxAttempts is the number of guesses a puzzle allows.
const MaxAttempts = 6

// MaxBoardRows caps how many emoji grid rows are kept from a share message.
const MaxBoardRows = 6

// Result is one puzzle outcome extracted from chat text.
type Result struct {
	// PuzzleNumber is the daily puzzle index from the share header.
	// Nil for results reconstructed from a recap summary, which carries none.
	PuzzleNumber *int

	// Success reports whether the puzzle was solved.
	Success bool

	// Attempts is the guess count for a solved puzzle. Nil on a loss.
	// Share headers allow a literal 0 score token, which counts as a win
	// with zero attempts.
	Attempts *int

	// HardMode reports the trailing asterisk on the share header.
	HardMode bool

	// Board holds the emoji grid rows following the header, right-trimmed,
	// at most MaxBoardRows entries.
	Board []string
}

// Validate checks the score shape invariants.
func (r Result) Validate() error {
	if r.Success {
		if r.Attempts == nil {
			return shared.ErrInvalidAttempts
		}
		if *r.Attempts < 0 || *r.Attempts > MaxAttempts {
			return shared.ErrInvalidAttempts
		}
		return nil
	}
	if r.Attempts != nil {
		return shared.ErrInvalidScore
	}
	return nil
}

// SummaryEntry is one participant resolved from a recap summary line.
// Exactly one of UserID and Handle is set: UserID when the line mentioned
// the participant with a platform mention token, Handle when it used a
// plain @handle.
type SummaryEntry struct {
	Result Result

	// UserID is the platform-native numeric ID, empty when unknown.
	UserID string

	// Handle is the plain handle as written (original casing), empty when
	// the participant was resolved by mention.
	Handle string
}

// DedupeKey returns the message-wide deduplication key for this entry.
// Mentions dedupe by ID, handles case-insensitively by name.
func (e SummaryEntry) DedupeKey() string {
	if e.UserID != "" {
		return "id:" + e.UserID
	}
	return "handle:" + strings.ToLower(e.Handle)
}
