package handler

import (
	"context"
	"fmt"
)

// HelpHandler handles the help command.
type HelpHandler struct {
	prefix string
}

// NewHelpHandler creates a new HelpHandler.
func NewHelpHandler(prefix string) *HelpHandler {
	return &HelpHandler{prefix: prefix}
}

// Handle returns the command overview.
func (h *HelpHandler) Handle(_ context.Context) string {
	p := h.prefix
	return fmt.Sprintf(`🧩 **Wordle Bot**

Share your Wordle result in this channel and it is counted automatically.
Daily recap messages from other bots are counted too.

Commands:
`+"`%swordle_stats [@user]`"+` · personal record card
`+"`%swordle_leaderboard [n]`"+` · current standings
`+"`%swordle_backfill [limit]`"+` · (admin) re-scan channel history
`+"`%swordle_help`"+` · this message`, p, p, p, p)
}
