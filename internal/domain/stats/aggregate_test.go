package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/puzzle"
)

func intPtr(v int) *int { return &v }

func TestApply_Win(t *testing.T) {
	agg := NewUserAggregate("Alice")
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	agg.Apply(puzzle.Result{
		PuzzleNumber: intPtr(1307),
		Success:      true,
		Attempts:     intPtr(4),
		HardMode:     true,
	}, "Alice", now)

	assert.Equal(t, 1, agg.Wins)
	assert.Equal(t, 0, agg.Losses)
	assert.Equal(t, 1, agg.GamesPlayed)
	assert.Equal(t, 4, agg.TotalAttempts)
	assert.Equal(t, 1, agg.GuessDistribution["4"])
	require.NotNil(t, agg.LastPuzzle)
	assert.Equal(t, 1307, *agg.LastPuzzle)
	require.NotNil(t, agg.LastResult)
	assert.True(t, agg.LastResult.HardMode)
	assert.Equal(t, now, agg.LastResult.RecordedAt)
}

func TestApply_Loss(t *testing.T) {
	agg := NewUserAggregate("Bob")
	agg.Apply(puzzle.Result{PuzzleNumber: intPtr(9)}, "Bob", time.Now())

	assert.Equal(t, 0, agg.Wins)
	assert.Equal(t, 1, agg.Losses)
	assert.Equal(t, 1, agg.GamesPlayed)
	assert.Equal(t, 0, agg.TotalAttempts)
	assert.Empty(t, agg.GuessDistribution)
}

func TestApply_RefreshesDisplayName(t *testing.T) {
	agg := NewUserAggregate("OldName")
	agg.Apply(puzzle.Result{Success: true, Attempts: intPtr(2)}, "NewName", time.Now())
	assert.Equal(t, "NewName", agg.DisplayName)

	// An empty name keeps the previous one.
	agg.Apply(puzzle.Result{}, "", time.Now())
	assert.Equal(t, "NewName", agg.DisplayName)
}

func TestApply_SummaryResultKeepsLastPuzzle(t *testing.T) {
	agg := NewUserAggregate("Alice")
	agg.Apply(puzzle.Result{PuzzleNumber: intPtr(100), Success: true, Attempts: intPtr(3)}, "Alice", time.Now())
	agg.Apply(puzzle.Result{Success: true, Attempts: intPtr(5)}, "Alice", time.Now())

	require.NotNil(t, agg.LastPuzzle)
	assert.Equal(t, 100, *agg.LastPuzzle)
	require.NotNil(t, agg.LastResult)
	assert.Nil(t, agg.LastResult.PuzzleNumber)
}

func TestSummary_DerivedMetrics(t *testing.T) {
	agg := NewUserAggregate("Alice")
	now := time.Now()
	agg.Apply(puzzle.Result{Success: true, Attempts: intPtr(3)}, "Alice", now)
	agg.Apply(puzzle.Result{Success: true, Attempts: intPtr(5)}, "Alice", now)
	agg.Apply(puzzle.Result{}, "Alice", now)

	s := agg.Summary("42")
	assert.Equal(t, "42", s.UserID)
	assert.Equal(t, 3, s.GamesPlayed)
	assert.InDelta(t, 2.0/3.0, s.WinRate, 1e-9)
	require.NotNil(t, s.AverageAttempts)
	assert.InDelta(t, 4.0, *s.AverageAttempts, 1e-9)

	// All six buckets are present even when empty.
	assert.Len(t, s.GuessDistribution, 6)
	assert.Equal(t, 1, s.GuessDistribution["3"])
	assert.Equal(t, 0, s.GuessDistribution["1"])
}

func TestSummary_NoGames(t *testing.T) {
	s := NewUserAggregate("").Summary("7")
	assert.Equal(t, DefaultDisplayName, s.DisplayName)
	assert.Zero(t, s.WinRate)
	assert.Nil(t, s.AverageAttempts)
}

func TestSummary_AllLossesHasNoAverage(t *testing.T) {
	agg := NewUserAggregate("Bob")
	agg.Apply(puzzle.Result{}, "Bob", time.Now())
	agg.Apply(puzzle.Result{}, "Bob", time.Now())

	s := agg.Summary("7")
	assert.Zero(t, s.WinRate)
	assert.Nil(t, s.AverageAttempts)
	assert.Equal(t, 2, s.GamesPlayed)
}

func TestValidate(t *testing.T) {
	agg := NewUserAggregate("Alice")
	agg.Apply(puzzle.Result{Success: true, Attempts: intPtr(2)}, "Alice", time.Now())
	assert.NoError(t, agg.Validate())

	agg.GamesPlayed = 5
	assert.Error(t, agg.Validate())

	agg = &UserAggregate{Wins: -1, GamesPlayed: -1}
	assert.Error(t, agg.Validate())
}

func TestClone_IsIndependent(t *testing.T) {
	agg := NewUserAggregate("Alice")
	agg.Apply(puzzle.Result{PuzzleNumber: intPtr(1), Success: true, Attempts: intPtr(2)}, "Alice", time.Now())

	clone := agg.Clone()
	clone.Wins = 99
	clone.GuessDistribution["2"] = 99
	*clone.LastPuzzle = 99

	assert.Equal(t, 1, agg.Wins)
	assert.Equal(t, 1, agg.GuessDistribution["2"])
	assert.Equal(t, 1, *agg.LastPuzzle)
}
