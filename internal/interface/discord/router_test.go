package discord

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouter_DispatchesRegisteredCommand(t *testing.T) {
	r := NewRouter("!", slog.Default())

	var gotArgs string
	r.Register("wordle_stats", func(_ context.Context, cmdCtx CommandContext) (string, error) {
		gotArgs = cmdCtx.Args
		return "stats here", nil
	})

	reply, handled := r.Dispatch(context.Background(), "!wordle_stats <@200>", CommandContext{AuthorID: "100"})
	assert.True(t, handled)
	assert.Equal(t, "stats here", reply)
	assert.Equal(t, "<@200>", gotArgs)
}

func TestRouter_CommandNameIsCaseInsensitive(t *testing.T) {
	r := NewRouter("!", slog.Default())
	r.Register("wordle_help", func(context.Context, CommandContext) (string, error) {
		return "help", nil
	})

	_, handled := r.Dispatch(context.Background(), "!WORDLE_HELP", CommandContext{})
	assert.True(t, handled)
}

func TestRouter_UnknownCommandFallsThrough(t *testing.T) {
	r := NewRouter("!", slog.Default())

	_, handled := r.Dispatch(context.Background(), "!unknown", CommandContext{})
	assert.False(t, handled)
}

func TestRouter_NonCommandFallsThrough(t *testing.T) {
	r := NewRouter("!", slog.Default())
	r.Register("wordle_stats", func(context.Context, CommandContext) (string, error) {
		return "", nil
	})

	_, handled := r.Dispatch(context.Background(), "Wordle 1128 4/6", CommandContext{})
	assert.False(t, handled)
}

func TestRouter_HandlerErrorProducesGenericReply(t *testing.T) {
	r := NewRouter("!", slog.Default())
	r.Register("wordle_backfill", func(context.Context, CommandContext) (string, error) {
		return "", errors.New("boom")
	})

	reply, handled := r.Dispatch(context.Background(), "!wordle_backfill", CommandContext{})
	assert.True(t, handled)
	assert.Contains(t, reply, "❌")
}

type pagedHistory struct {
	pages [][]*discordgo.Message
	calls int
}

func (h *pagedHistory) ChannelMessages(_ string, _ int, beforeID, _, _ string, _ ...discordgo.RequestOption) ([]*discordgo.Message, error) {
	if h.calls >= len(h.pages) {
		return nil, nil
	}
	page := h.pages[h.calls]
	h.calls++
	if beforeID != "" && len(page) > 0 {
		// Paging contract: pages are returned strictly before the cursor.
		if page[0].ID >= beforeID {
			return nil, errors.New("page not before cursor")
		}
	}
	return page, nil
}

func TestBackfiller_WalksPagesAndRecords(t *testing.T) {
	ing, store := newTestIngestor(t)

	history := &pagedHistory{pages: [][]*discordgo.Message{
		{
			message("m9", "100", "alice", shareText),
			message("m8", "200", "bob", "no puzzle here"),
		},
		{
			message("m7", "300", "carol", "Wordle 1127 X/6\n\n⬛⬛⬛⬛⬛"),
		},
	}}

	b := NewBackfiller(history, ing, slog.Default(), 2, 100)
	report, err := b.Run(context.Background(), "chan", 0)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 2, report.Recorded)
	assert.Zero(t, report.Duplicates)

	carol, err := store.Aggregate(context.Background(), "300")
	require.NoError(t, err)
	assert.Equal(t, 1, carol.Losses)
}

func TestBackfiller_SecondRunOnlyFindsDuplicates(t *testing.T) {
	ing, _ := newTestIngestor(t)

	pages := [][]*discordgo.Message{{message("m9", "100", "alice", shareText)}}

	first := NewBackfiller(&pagedHistory{pages: pages}, ing, slog.Default(), 100, 100)
	_, err := first.Run(context.Background(), "chan", 0)
	require.NoError(t, err)

	second := NewBackfiller(&pagedHistory{pages: pages}, ing, slog.Default(), 100, 100)
	report, err := second.Run(context.Background(), "chan", 0)
	require.NoError(t, err)
	assert.Zero(t, report.Recorded)
	assert.Equal(t, 1, report.Duplicates)
}

func TestBackfiller_RespectsLimit(t *testing.T) {
	ing, _ := newTestIngestor(t)

	history := &pagedHistory{pages: [][]*discordgo.Message{
		{message("m9", "100", "alice", "x"), message("m8", "100", "alice", "y")},
		{message("m7", "100", "alice", "z")},
	}}

	b := NewBackfiller(history, ing, slog.Default(), 2, 100)
	report, err := b.Run(context.Background(), "chan", 2)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Scanned)
	assert.Equal(t, 1, history.calls)
}
