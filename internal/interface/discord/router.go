package discord

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/bwmarrin/discordgo"
)

// ══════════════════════════════════════════════════════════════════════════════
// COMMAND ROUTER
// Routes prefix commands to their handlers. Messages that carry no known
// command fall through to the ingestion pipeline.
// ══════════════════════════════════════════════════════════════════════════════

// CommandContext carries the request data a command handler needs.
type CommandContext struct {
	// AuthorID is the user who issued the command.
	AuthorID string

	// ChannelID is where the command was sent.
	ChannelID string

	// MessageID is the command message.
	MessageID string

	// GuildID is the server, empty in DMs.
	GuildID string

	// Args is the text after the command name.
	Args string

	// IsAdmin reports whether the author is a configured admin.
	IsAdmin bool

	// Author is the original author.
	Author *discordgo.User
}

// CommandFunc handles one command and returns the reply text.
// An empty reply sends nothing.
type CommandFunc func(ctx context.Context, cmdCtx CommandContext) (string, error)

// Router dispatches prefix commands.
type Router struct {
	prefix string
	logger *slog.Logger

	mu       sync.RWMutex
	commands map[string]CommandFunc
}

// NewRouter creates a router for the given command prefix.
func NewRouter(prefix string, logger *slog.Logger) *Router {
	if prefix == "" {
		prefix = "!"
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Router{
		prefix:   prefix,
		logger:   logger.With(slog.String("component", "router")),
		commands: make(map[string]CommandFunc),
	}
}

// Register registers a handler for a command name (without the prefix).
func (r *Router) Register(name string, fn CommandFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.commands[strings.ToLower(name)] = fn
}

// Dispatch routes the message content to a registered command. It reports
// handled=false when the content is not a known command, so the caller can
// try the ingestion pipeline instead.
func (r *Router) Dispatch(ctx context.Context, content string, cmdCtx CommandContext) (string, bool) {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, r.prefix) {
		return "", false
	}

	rest := trimmed[len(r.prefix):]
	name := rest
	args := ""
	if idx := strings.IndexAny(rest, " \t\n"); idx >= 0 {
		name = rest[:idx]
		args = strings.TrimSpace(rest[idx+1:])
	}
	name = strings.ToLower(name)

	r.mu.RLock()
	fn, ok := r.commands[name]
	r.mu.RUnlock()
	if !ok {
		return "", false
	}

	cmdCtx.Args = args
	reply, err := fn(ctx, cmdCtx)
	if err != nil {
		r.logger.Error("command failed",
			slog.String("command", name),
			slog.String("user_id", cmdCtx.AuthorID),
			slog.String("error", err.Error()))
		return "❌ Something went wrong, try again later.", true
	}
	return reply, true
}
