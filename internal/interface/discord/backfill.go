package discord

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/bwmarrin/discordgo"
)

// ══════════════════════════════════════════════════════════════════════════════
// HISTORY BACKFILL
// Walks channel history newest-first and re-feeds every message through the
// normal ingestion path. Dedupe keys make the walk idempotent, so repeated
// backfills never double count.
// ══════════════════════════════════════════════════════════════════════════════

const maxHistoryPageSize = 100

// historyAPI is the slice of the gateway used for history paging.
type historyAPI interface {
	ChannelMessages(channelID string, limit int, beforeID, afterID, aroundID string, options ...discordgo.RequestOption) ([]*discordgo.Message, error)
}

// BackfillReport summarizes a backfill run.
type BackfillReport struct {
	Scanned    int
	Recorded   int
	Duplicates int
}

// Backfiller re-scans channel history.
type Backfiller struct {
	history     historyAPI
	ingestor    *Ingestor
	logger      *slog.Logger
	pageSize    int
	maxMessages int
}

// NewBackfiller creates a backfiller. pageSize is clamped to the API page
// limit; maxMessages bounds a single run.
func NewBackfiller(history historyAPI, ingestor *Ingestor, logger *slog.Logger, pageSize, maxMessages int) *Backfiller {
	if pageSize <= 0 || pageSize > maxHistoryPageSize {
		pageSize = maxHistoryPageSize
	}
	if maxMessages <= 0 {
		maxMessages = 5000
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Backfiller{
		history:     history,
		ingestor:    ingestor,
		logger:      logger.With(slog.String("component", "backfiller")),
		pageSize:    pageSize,
		maxMessages: maxMessages,
	}
}

// Run walks the channel. limit bounds the number of messages scanned;
// non-positive means the configured maximum.
func (b *Backfiller) Run(ctx context.Context, channelID string, limit int) (BackfillReport, error) {
	var report BackfillReport

	if limit <= 0 || limit > b.maxMessages {
		limit = b.maxMessages
	}

	beforeID := ""
	for report.Scanned < limit {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		pageSize := b.pageSize
		if remaining := limit - report.Scanned; remaining < pageSize {
			pageSize = remaining
		}

		page, err := b.history.ChannelMessages(channelID, pageSize, beforeID, "", "", discordgo.WithContext(ctx))
		if err != nil {
			return report, fmt.Errorf("backfill: fetch history: %w", err)
		}
		if len(page) == 0 {
			break
		}

		for _, msg := range page {
			report.Scanned++
			outcome, err := b.ingestor.ProcessMessage(ctx, msg)
			if err != nil {
				return report, err
			}
			report.Recorded += outcome.Recorded
			report.Duplicates += outcome.Duplicates
		}

		beforeID = page[len(page)-1].ID
	}

	b.logger.Info("backfill completed",
		slog.String("channel_id", channelID),
		slog.Int("scanned", report.Scanned),
		slog.Int("recorded", report.Recorded),
		slog.Int("duplicates", report.Duplicates))
	return report, nil
}
