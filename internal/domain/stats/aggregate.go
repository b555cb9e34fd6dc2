// Package stats contains the per-user aggregate model and the persistence
// contract for the puzzle leaderboard. Aggregates are plain accumulating
// counters; all derived metrics live on the UserSummary projection.
package stats

import (
	"fmt"
	"strconv"
	"time"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/puzzle"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
)

// DefaultDisplayName is used when no display name was ever observed.
const DefaultDisplayName = "Unknown Player"

// LastResult captures the most recently recorded result for a user.
type LastResult struct {
	PuzzleNumber *int      `json:"puzzle_number"`
	Success      bool      `json:"success"`
	Attempts     *int      `json:"attempts"`
	HardMode     bool      `json:"hard_mode"`
	RecordedAt   time.Time `json:"recorded_at"`
}

// UserAggregate is the durable per-user state. Counters only accumulate;
// GamesPlayed is always Wins + Losses and TotalAttempts only counts
// attempts from wins.
type UserAggregate struct {
	DisplayName       string         `json:"display_name"`
	GamesPlayed       int            `json:"games_played"`
	Wins              int            `json:"wins"`
	Losses            int            `json:"losses"`
	TotalAttempts     int            `json:"total_attempts"`
	GuessDistribution map[string]int `json:"guess_distribution"`
	LastPuzzle        *int           `json:"last_puzzle"`
	LastResult        *LastResult    `json:"last_result"`
}

// NewUserAggregate creates a blank aggregate for a first-seen user.
func NewUserAggregate(displayName string) *UserAggregate {
	if displayName == "" {
		displayName = DefaultDisplayName
	}
	return &UserAggregate{
		DisplayName:       displayName,
		GuessDistribution: make(map[string]int),
	}
}

// Apply folds one recorded result into the aggregate. The display name is
// refreshed on every application so renames propagate.
func (a *UserAggregate) Apply(result puzzle.Result, displayName string, now time.Time) {
	if displayName != "" {
		a.DisplayName = displayName
	}
	if a.GuessDistribution == nil {
		a.GuessDistribution = make(map[string]int)
	}

	if result.Success && result.Attempts != nil {
		a.Wins++
		a.TotalAttempts += *result.Attempts
		a.GuessDistribution[strconv.Itoa(*result.Attempts)]++
	} else {
		a.Losses++
	}
	a.GamesPlayed = a.Wins + a.Losses

	if result.PuzzleNumber != nil {
		n := *result.PuzzleNumber
		a.LastPuzzle = &n
	}
	a.LastResult = &LastResult{
		PuzzleNumber: copyIntPtr(result.PuzzleNumber),
		Success:      result.Success,
		Attempts:     copyIntPtr(result.Attempts),
		HardMode:     result.HardMode,
		RecordedAt:   now.UTC(),
	}
}

// Validate checks the counter invariants, used when loading persisted state.
func (a *UserAggregate) Validate() error {
	if a.Wins < 0 || a.Losses < 0 || a.TotalAttempts < 0 {
		return fmt.Errorf("%w: negative counter", shared.ErrInvalidAggregate)
	}
	if a.GamesPlayed != a.Wins+a.Losses {
		return fmt.Errorf("%w: games_played %d != wins %d + losses %d",
			shared.ErrInvalidAggregate, a.GamesPlayed, a.Wins, a.Losses)
	}
	return nil
}

// Clone returns a deep copy of the aggregate.
func (a *UserAggregate) Clone() *UserAggregate {
	clone := *a
	clone.GuessDistribution = make(map[string]int, len(a.GuessDistribution))
	for k, v := range a.GuessDistribution {
		clone.GuessDistribution[k] = v
	}
	clone.LastPuzzle = copyIntPtr(a.LastPuzzle)
	if a.LastResult != nil {
		lr := *a.LastResult
		lr.PuzzleNumber = copyIntPtr(a.LastResult.PuzzleNumber)
		lr.Attempts = copyIntPtr(a.LastResult.Attempts)
		clone.LastResult = &lr
	}
	return &clone
}

// Summary produces the read-side projection for the given user ID.
func (a *UserAggregate) Summary(userID string) UserSummary {
	s := UserSummary{
		UserID:            userID,
		DisplayName:       a.DisplayName,
		GamesPlayed:       a.GamesPlayed,
		Wins:              a.Wins,
		Losses:            a.Losses,
		TotalAttempts:     a.TotalAttempts,
		GuessDistribution: make(map[string]int, puzzle.MaxAttempts),
		LastPuzzle:        copyIntPtr(a.LastPuzzle),
	}
	if s.DisplayName == "" {
		s.DisplayName = DefaultDisplayName
	}
	for i := 1; i <= puzzle.MaxAttempts; i++ {
		key := strconv.Itoa(i)
		s.GuessDistribution[key] = a.GuessDistribution[key]
	}
	if a.GamesPlayed > 0 {
		s.WinRate = float64(a.Wins) / float64(a.GamesPlayed)
	}
	if a.Wins > 0 {
		avg := float64(a.TotalAttempts) / float64(a.Wins)
		s.AverageAttempts = &avg
	}
	if a.LastResult != nil {
		lr := *a.LastResult
		lr.PuzzleNumber = copyIntPtr(a.LastResult.PuzzleNumber)
		lr.Attempts = copyIntPtr(a.LastResult.Attempts)
		s.LastResult = &lr
	}
	return s
}

// UserSummary is the derived, read-only view of one user's standing.
type UserSummary struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	GamesPlayed int    `json:"games_played"`
	Wins        int    `json:"wins"`
	Losses      int    `json:"losses"`

	// WinRate is Wins / GamesPlayed, 0 when no games were played.
	WinRate float64 `json:"win_rate"`

	// AverageAttempts is TotalAttempts / Wins, nil when there are no wins.
	AverageAttempts *float64 `json:"average_attempts"`

	TotalAttempts int `json:"total_attempts"`

	// GuessDistribution always carries all keys "1".."6".
	GuessDistribution map[string]int `json:"guess_distribution"`

	LastPuzzle *int        `json:"last_puzzle"`
	LastResult *LastResult `json:"last_result"`
}

func copyIntPtr(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
