// Package discord implements the Discord surface of the bot: the gateway
// session, the message ingestion pipeline and the prefix command router.
package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"

	"github.com/wordler-hub/wordler-community-hub/config"
	"github.com/wordler-hub/wordler-community-hub/internal/application/command"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/puzzle"
)

// ══════════════════════════════════════════════════════════════════════════════
// MESSAGE INGESTION
// Every non-command message in the watched channel is tried first as a
// third-party daily summary, then as the author's own share message. Both
// paths funnel into the same idempotent record command.
// ══════════════════════════════════════════════════════════════════════════════

// IngestOutcome reports what a message produced.
type IngestOutcome struct {
	// Recorded is the number of newly counted results.
	Recorded int

	// Duplicates is the number of submissions already counted.
	Duplicates int

	// Matched is true when the message parsed as a share or summary.
	Matched bool
}

// Ingestor feeds parsed messages into the record pipeline.
type Ingestor struct {
	recordResult *command.RecordResultHandler
	resolver     IdentityResolver
	features     *config.FeatureFlags
	logger       *slog.Logger
}

// NewIngestor creates an ingestor.
func NewIngestor(
	recordResult *command.RecordResultHandler,
	resolver IdentityResolver,
	features *config.FeatureFlags,
	logger *slog.Logger,
) *Ingestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Ingestor{
		recordResult: recordResult,
		resolver:     resolver,
		features:     features,
		logger:       logger.With(slog.String("component", "ingestor")),
	}
}

// ProcessMessage parses one message and records every result it carries.
// Bot authors are ignored. The returned outcome counts new recordings and
// duplicates separately; a duplicate is not an error.
func (in *Ingestor) ProcessMessage(ctx context.Context, m *discordgo.Message) (IngestOutcome, error) {
	var outcome IngestOutcome

	if m == nil || m.Author == nil || m.Author.Bot {
		return outcome, nil
	}

	featureCtx := &config.FeatureContext{UserID: m.Author.ID}

	if in.features.IsEnabled(config.FeatureParseSummary, featureCtx) {
		entries := puzzle.ParseDailySummary(m.Content)
		if handled, err := in.recordSummary(ctx, m, entries, &outcome); handled || err != nil {
			return outcome, err
		}
	}

	if in.features.IsEnabled(config.FeatureParseShare, featureCtx) {
		if result, ok := puzzle.ParseShareMessage(m.Content); ok {
			outcome.Matched = true
			if err := in.record(ctx, command.RecordResultCommand{
				UserID:      m.Author.ID,
				DisplayName: in.resolver.DisplayName(m.GuildID, m.Author),
				Result:      *result,
				DedupeKey:   m.ID,
			}, &outcome); err != nil {
				return outcome, err
			}
		}
	}

	return outcome, nil
}

// recordSummary records the participants of a recap summary. The author's
// own entries are skipped; their result arrives through their share message.
// Returns handled=true when at least one foreign participant was found, in
// which case the share path is not attempted.
func (in *Ingestor) recordSummary(ctx context.Context, m *discordgo.Message, entries []puzzle.SummaryEntry, outcome *IngestOutcome) (bool, error) {
	handled := false
	for _, entry := range entries {
		userID, displayName := in.resolveParticipant(m, entry)
		if userID == m.Author.ID {
			continue
		}
		handled = true
		outcome.Matched = true

		err := in.record(ctx, command.RecordResultCommand{
			UserID:      userID,
			DisplayName: displayName,
			Result:      entry.Result,
			DedupeKey:   m.ID + ":" + entry.DedupeKey(),
		}, outcome)
		if err != nil {
			return handled, err
		}
	}
	return handled, nil
}

func (in *Ingestor) resolveParticipant(m *discordgo.Message, entry puzzle.SummaryEntry) (string, string) {
	if entry.UserID != "" {
		for _, user := range m.Mentions {
			if user.ID == entry.UserID {
				return entry.UserID, in.resolver.DisplayName(m.GuildID, user)
			}
		}
		return entry.UserID, ""
	}
	return in.resolver.ResolveHandle(m.GuildID, entry.Handle)
}

func (in *Ingestor) record(ctx context.Context, cmd command.RecordResultCommand, outcome *IngestOutcome) error {
	result, err := in.recordResult.Handle(ctx, cmd)
	if err != nil {
		return fmt.Errorf("ingest: %w", err)
	}
	if result.Duplicate {
		outcome.Duplicates++
		return nil
	}
	outcome.Recorded++
	return nil
}
