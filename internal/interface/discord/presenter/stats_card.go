package presenter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/puzzle"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS CARD PRESENTER
// Renders a single player's record, including the guess distribution as a
// bar chart built from block characters.
// ══════════════════════════════════════════════════════════════════════════════

const distributionBarWidth = 12

// StatsCardPresenter formats a player summary for Discord.
type StatsCardPresenter struct{}

// NewStatsCardPresenter creates a presenter.
func NewStatsCardPresenter() *StatsCardPresenter {
	return &StatsCardPresenter{}
}

// Format renders the stats card.
func (p *StatsCardPresenter) Format(summary *stats.UserSummary) string {
	var b strings.Builder

	fmt.Fprintf(&b, "📊 **%s**\n\n", summary.DisplayName)
	fmt.Fprintf(&b, "Games played: **%d**\n", summary.GamesPlayed)
	fmt.Fprintf(&b, "Wins: **%d** · Losses: **%d**\n", summary.Wins, summary.Losses)
	fmt.Fprintf(&b, "Win rate: **%.0f%%**\n", summary.WinRate*100)

	if summary.AverageAttempts != nil {
		fmt.Fprintf(&b, "Average attempts: **%.2f**\n", *summary.AverageAttempts)
	}

	if summary.GamesPlayed > 0 {
		b.WriteString("\n**Guess distribution**\n")
		b.WriteString(p.formatDistribution(summary.GuessDistribution))
	}

	return strings.TrimRight(b.String(), "\n")
}

// formatDistribution renders one bar per attempt bucket, scaled so the
// largest bucket fills the full width.
func (p *StatsCardPresenter) formatDistribution(distribution map[string]int) string {
	max := 0
	for _, count := range distribution {
		if count > max {
			max = count
		}
	}

	var b strings.Builder
	for attempts := 1; attempts <= puzzle.MaxAttempts; attempts++ {
		count := distribution[strconv.Itoa(attempts)]
		fmt.Fprintf(&b, "`%d: %s %d`\n", attempts, bar(count, max), count)
	}
	return b.String()
}

func bar(count, max int) string {
	if max == 0 || count == 0 {
		return strings.Repeat("░", distributionBarWidth)
	}
	filled := count * distributionBarWidth / max
	if filled == 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("░", distributionBarWidth-filled)
}
