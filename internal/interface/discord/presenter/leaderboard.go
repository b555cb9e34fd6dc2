// Package presenter formats query results into Discord messages.
package presenter

import (
	"fmt"
	"strings"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD PRESENTER
// Renders the ranked standings as a Discord markdown message, with movement
// arrows against the previously posted order.
// ══════════════════════════════════════════════════════════════════════════════

// LeaderboardPresenter formats leaderboard entries for Discord.
type LeaderboardPresenter struct {
	// ShowMovement controls the movement arrows column.
	ShowMovement bool
}

// NewLeaderboardPresenter creates a presenter.
func NewLeaderboardPresenter(showMovement bool) *LeaderboardPresenter {
	return &LeaderboardPresenter{ShowMovement: showMovement}
}

// Format renders the leaderboard. Movements may be nil.
func (p *LeaderboardPresenter) Format(entries []leaderboard.Entry, movements map[string]leaderboard.Movement) string {
	if len(entries) == 0 {
		return "🏆 **Wordle Leaderboard**\n\nNo results recorded yet. Share a puzzle to get on the board!"
	}

	var b strings.Builder
	b.WriteString("🏆 **Wordle Leaderboard**\n\n")

	for _, entry := range entries {
		b.WriteString(p.formatEntry(entry, movements))
		b.WriteString("\n")
	}

	return strings.TrimRight(b.String(), "\n")
}

func (p *LeaderboardPresenter) formatEntry(entry leaderboard.Entry, movements map[string]leaderboard.Movement) string {
	glyph := ""
	if p.ShowMovement && movements != nil {
		if m, ok := movements[entry.UserID]; ok {
			glyph = m.Direction.Glyph()
		}
	}

	avg := "n/a"
	if entry.AverageAttempts != nil {
		avg = fmt.Sprintf("%.2f", *entry.AverageAttempts)
	}

	line := fmt.Sprintf("%s **%s** · %.0f%% wins · %d played · avg %s",
		positionEmoji(entry.Rank), entry.DisplayName, entry.WinRate*100, entry.GamesPlayed, avg)
	if glyph != "" {
		line += " " + glyph
	}
	return line
}

func positionEmoji(position int) string {
	switch position {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("`%2d.`", position)
	}
}
