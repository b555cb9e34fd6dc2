// Package handler contains the chat command handlers. Handlers are
// transport-free: they take a parsed request and return the reply text, so
// they can be tested without a gateway connection.
package handler

import (
	"context"
	"regexp"
	"strings"

	"github.com/wordler-hub/wordler-community-hub/internal/application/query"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
	"github.com/wordler-hub/wordler-community-hub/internal/interface/discord/presenter"
)

// ══════════════════════════════════════════════════════════════════════════════
// STATS HANDLER
// Shows a player's personal record card.
// ══════════════════════════════════════════════════════════════════════════════

var mentionArgPattern = regexp.MustCompile(`<@!?(\d+)>`)

// StatsHandler handles the stats command.
type StatsHandler struct {
	summaryQuery *query.GetUserSummaryHandler
	cards        *presenter.StatsCardPresenter
}

// NewStatsHandler creates a new StatsHandler.
func NewStatsHandler(summaryQuery *query.GetUserSummaryHandler, cards *presenter.StatsCardPresenter) *StatsHandler {
	return &StatsHandler{
		summaryQuery: summaryQuery,
		cards:        cards,
	}
}

// StatsRequest contains the parsed stats command data.
type StatsRequest struct {
	// RequesterID is the user who issued the command.
	RequesterID string

	// Args is the raw argument text; an optional mention selects another
	// player's card.
	Args string
}

// StatsResponse contains the reply to send back.
type StatsResponse struct {
	Text    string
	IsError bool
}

// Handle processes the stats command.
func (h *StatsHandler) Handle(ctx context.Context, req StatsRequest) (*StatsResponse, error) {
	targetID := req.RequesterID
	if match := mentionArgPattern.FindStringSubmatch(req.Args); match != nil {
		targetID = match[1]
	}

	summary, err := h.summaryQuery.Handle(ctx, query.GetUserSummaryQuery{UserID: targetID})
	if err != nil {
		if shared.IsNotFound(err) {
			text := "No results recorded yet. Share a puzzle to start your record!"
			if targetID != req.RequesterID {
				text = "No results recorded for that player yet."
			}
			return &StatsResponse{Text: text}, nil
		}
		return &StatsResponse{
			Text:    "❌ Could not load stats right now, try again later.",
			IsError: true,
		}, nil
	}

	return &StatsResponse{Text: h.cards.Format(summary)}, nil
}

// ParseLimitArg extracts a positive number from command arguments.
// Returns 0 when the arguments carry none.
func ParseLimitArg(args string) int {
	fields := strings.Fields(args)
	if len(fields) == 0 {
		return 0
	}
	n := 0
	for _, r := range fields[0] {
		if r < '0' || r > '9' {
			return 0
		}
		n = n*10 + int(r-'0')
		if n > 1000 {
			return 1000
		}
	}
	return n
}
