// Package leaderboard contains the deterministic ranking logic and the
// rank-movement value objects used when publishing a leaderboard.
package leaderboard

import (
	"sort"
	"strings"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// DefaultLimit is the number of entries shown when the caller gives none.
const DefaultLimit = 10

// Entry is one ranked leaderboard row.
type Entry struct {
	Rank        int     `json:"rank"`
	UserID      string  `json:"user_id"`
	DisplayName string  `json:"display_name"`
	GamesPlayed int     `json:"games_played"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	WinRate     float64 `json:"win_rate"`

	// AverageAttempts is nil for players without a single win.
	AverageAttempts *float64 `json:"average_attempts"`
}

// BuildRanking orders user summaries into leaderboard entries. Players with
// zero recorded games never appear. Ordering is total and deterministic:
//
//  1. win rate, descending
//  2. average attempts, ascending, players without one after all others
//  3. wins, descending
//  4. display name, case-insensitive ascending
//
// The result is truncated to limit; a non-positive limit means DefaultLimit.
func BuildRanking(summaries []stats.UserSummary, limit int) []Entry {
	if limit <= 0 {
		limit = DefaultLimit
	}

	ranked := make([]stats.UserSummary, 0, len(summaries))
	for _, s := range summaries {
		if s.GamesPlayed > 0 {
			ranked = append(ranked, s)
		}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return less(ranked[i], ranked[j])
	})

	if len(ranked) > limit {
		ranked = ranked[:limit]
	}

	entries := make([]Entry, len(ranked))
	for i, s := range ranked {
		entries[i] = Entry{
			Rank:            i + 1,
			UserID:          s.UserID,
			DisplayName:     s.DisplayName,
			GamesPlayed:     s.GamesPlayed,
			Wins:            s.Wins,
			Losses:          s.Losses,
			WinRate:         s.WinRate,
			AverageAttempts: s.AverageAttempts,
		}
	}
	return entries
}

func less(a, b stats.UserSummary) bool {
	if a.WinRate != b.WinRate {
		return a.WinRate > b.WinRate
	}
	aAvg, bAvg := avgOrWorst(a.AverageAttempts), avgOrWorst(b.AverageAttempts)
	if aAvg != bAvg {
		return aAvg < bAvg
	}
	if a.Wins != b.Wins {
		return a.Wins > b.Wins
	}
	return strings.ToLower(a.DisplayName) < strings.ToLower(b.DisplayName)
}

// avgOrWorst maps a missing average behind every real one. Real averages
// are bounded by the attempt cap, so any larger constant works.
func avgOrWorst(avg *float64) float64 {
	if avg == nil {
		return 99
	}
	return *avg
}

// Order returns the user IDs of entries in rank order, the shape stored as
// the published-leaderboard snapshot.
func Order(entries []Entry) []string {
	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.UserID
	}
	return ids
}
