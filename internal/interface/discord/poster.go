package discord

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
	"github.com/wordler-hub/wordler-community-hub/internal/interface/discord/presenter"
)

// channelSender is the slice of the gateway used for outbound posts.
type channelSender interface {
	ChannelMessageSend(channelID, content string, options ...discordgo.RequestOption) (*discordgo.Message, error)
}

// LeaderboardPoster renders and posts standings to a fixed channel. It is
// the gateway behind the scheduled daily post.
type LeaderboardPoster struct {
	sender    channelSender
	boards    *presenter.LeaderboardPresenter
	channelID string
}

// NewLeaderboardPoster creates a poster for the given channel.
func NewLeaderboardPoster(sender channelSender, boards *presenter.LeaderboardPresenter, channelID string) *LeaderboardPoster {
	return &LeaderboardPoster{
		sender:    sender,
		boards:    boards,
		channelID: channelID,
	}
}

// PostLeaderboard implements the scheduler gateway.
func (p *LeaderboardPoster) PostLeaderboard(ctx context.Context, entries []leaderboard.Entry, movements map[string]leaderboard.Movement) error {
	text := p.boards.Format(entries, movements)
	if _, err := p.sender.ChannelMessageSend(p.channelID, text, discordgo.WithContext(ctx)); err != nil {
		return fmt.Errorf("post leaderboard: %w", err)
	}
	return nil
}
