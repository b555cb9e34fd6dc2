package discord

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/wordler-hub/wordler-community-hub/config"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
	"github.com/wordler-hub/wordler-community-hub/internal/interface/discord/handler"
)

// ══════════════════════════════════════════════════════════════════════════════
// BOT
// Owns the gateway session and glues the router and the ingestion pipeline
// to incoming messages.
// ══════════════════════════════════════════════════════════════════════════════

// confirmationEmoji is added to messages whose results were counted.
const confirmationEmoji = "✅"

// messageTimeout bounds the handling of one incoming message.
const messageTimeout = 30 * time.Second

// Dependencies contains the handlers behind the chat commands.
type Dependencies struct {
	Stats       *handler.StatsHandler
	Leaderboard *handler.LeaderboardHandler
	Help        *handler.HelpHandler
	Backfiller  *Backfiller
}

// Bot is the Discord bot controller.
type Bot struct {
	session  *discordgo.Session
	cfg      config.DiscordConfig
	features *config.FeatureFlags
	router   *Router
	ingestor *Ingestor
	logger   *slog.Logger

	running   bool
	runningMu sync.Mutex
	wg        sync.WaitGroup
}

// NewBot creates the bot and its gateway session. The session is not opened
// until Start.
func NewBot(cfg config.DiscordConfig, features *config.FeatureFlags, router *Router, ingestor *Ingestor, logger *slog.Logger) (*Bot, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("%w: missing token", shared.ErrDiscordAPIFailed)
	}
	if logger == nil {
		logger = slog.Default()
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMessages |
		discordgo.IntentMessageContent

	return &Bot{
		session:  session,
		cfg:      cfg,
		features: features,
		router:   router,
		ingestor: ingestor,
		logger:   logger.With(slog.String("component", "bot")),
	}, nil
}

// Session exposes the gateway session for wiring collaborators that need
// direct API access (identity resolver, poster, backfiller).
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// SetIngestor wires the ingestion pipeline. The ingestor depends on the
// session for identity resolution, so it is attached after construction.
func (b *Bot) SetIngestor(ingestor *Ingestor) {
	b.ingestor = ingestor
}

// RegisterCommands registers the chat commands on the router.
func (b *Bot) RegisterCommands(deps Dependencies) {
	b.router.Register("wordle_stats", func(ctx context.Context, cmdCtx CommandContext) (string, error) {
		resp, err := deps.Stats.Handle(ctx, handler.StatsRequest{
			RequesterID: cmdCtx.AuthorID,
			Args:        cmdCtx.Args,
		})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})

	b.router.Register("wordle_leaderboard", func(ctx context.Context, cmdCtx CommandContext) (string, error) {
		resp, err := deps.Leaderboard.Handle(ctx, handler.LeaderboardRequest{Args: cmdCtx.Args})
		if err != nil {
			return "", err
		}
		return resp.Text, nil
	})

	b.router.Register("wordle_help", func(ctx context.Context, _ CommandContext) (string, error) {
		return deps.Help.Handle(ctx), nil
	})

	b.router.Register("wordle_backfill", func(ctx context.Context, cmdCtx CommandContext) (string, error) {
		if !cmdCtx.IsAdmin {
			return "This command is restricted to admins.", nil
		}
		featureCtx := &config.FeatureContext{UserID: cmdCtx.AuthorID, IsAdmin: cmdCtx.IsAdmin}
		if !b.features.IsEnabled(config.FeatureCommandBackfill, featureCtx) {
			return "Backfill is currently disabled.", nil
		}

		report, err := deps.Backfiller.Run(ctx, cmdCtx.ChannelID, handler.ParseLimitArg(cmdCtx.Args))
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("Backfill done: scanned %d messages, recorded %d results, %d already counted.",
			report.Scanned, report.Recorded, report.Duplicates), nil
	})
}

// Start opens the gateway connection.
func (b *Bot) Start() error {
	b.runningMu.Lock()
	defer b.runningMu.Unlock()
	if b.running {
		return nil
	}

	b.session.AddHandler(b.onMessageCreate)
	if err := b.session.Open(); err != nil {
		return fmt.Errorf("open gateway: %w", err)
	}
	b.running = true
	b.logger.Info("bot started", slog.String("watched_channel", b.cfg.ChannelID))
	return nil
}

// Stop closes the gateway connection and waits for in-flight messages.
func (b *Bot) Stop() error {
	b.runningMu.Lock()
	defer b.runningMu.Unlock()
	if !b.running {
		return nil
	}

	err := b.session.Close()
	b.wg.Wait()
	b.running = false
	b.logger.Info("bot stopped")
	return err
}

func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}
	if s.State != nil && s.State.User != nil && m.Author.ID == s.State.User.ID {
		return
	}
	if b.cfg.ChannelID != "" && m.ChannelID != b.cfg.ChannelID {
		return
	}

	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), messageTimeout)
		defer cancel()
		b.handleMessage(ctx, m.Message)
	}()
}

func (b *Bot) handleMessage(ctx context.Context, m *discordgo.Message) {
	cmdCtx := CommandContext{
		AuthorID:  m.Author.ID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		GuildID:   m.GuildID,
		IsAdmin:   b.cfg.IsAdmin(m.Author.ID),
		Author:    m.Author,
	}

	if reply, handled := b.router.Dispatch(ctx, m.Content, cmdCtx); handled {
		if reply != "" {
			b.reply(ctx, m.ChannelID, reply)
		}
		return
	}

	if b.ingestor == nil {
		return
	}
	outcome, err := b.ingestor.ProcessMessage(ctx, m)
	if err != nil {
		b.logger.Error("failed to ingest message",
			slog.String("message_id", m.ID),
			slog.String("error", err.Error()))
		return
	}

	if outcome.Recorded > 0 {
		b.confirm(ctx, m)
	}
}

func (b *Bot) reply(ctx context.Context, channelID, text string) {
	if _, err := b.session.ChannelMessageSend(channelID, text, discordgo.WithContext(ctx)); err != nil {
		b.logger.Warn("failed to send reply",
			slog.String("channel_id", channelID),
			slog.String("error", err.Error()))
	}
}

// confirm reacts to a counted message. Reaction failures are logged, never
// surfaced: the result is already recorded.
func (b *Bot) confirm(ctx context.Context, m *discordgo.Message) {
	featureCtx := &config.FeatureContext{UserID: m.Author.ID}
	if !b.features.IsEnabled(config.FeatureReactConfirmation, featureCtx) {
		return
	}
	err := b.session.MessageReactionAdd(m.ChannelID, m.ID, confirmationEmoji, discordgo.WithContext(ctx))
	if err != nil && !strings.Contains(err.Error(), "Unknown Message") {
		b.logger.Warn("failed to add confirmation reaction",
			slog.String("message_id", m.ID),
			slog.String("error", err.Error()))
	}
}
