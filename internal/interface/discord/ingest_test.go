package discord

import (
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordler-hub/wordler-community-hub/config"
	"github.com/wordler-hub/wordler-community-hub/internal/application/command"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
	"github.com/wordler-hub/wordler-community-hub/internal/infrastructure/persistence/jsonfile"
)

const shareText = "Wordle 1128 4/6\n\n⬛🟨⬛⬛⬛\n🟨🟩⬛⬛⬛\n🟩🟩🟩⬛⬛\n🟩🟩🟩🟩🟩"

type fakeResolver struct{}

func (fakeResolver) DisplayName(_ string, user *discordgo.User) string {
	if user == nil {
		return ""
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

func (fakeResolver) ResolveHandle(_, handle string) (string, string) {
	if handle == "KnownPlayer" {
		return "900", "Known Player"
	}
	return SyntheticHandlePrefix + "unknownplayer", handle
}

func newTestIngestor(t *testing.T) (*Ingestor, stats.Store) {
	t.Helper()
	store := jsonfile.New(filepath.Join(t.TempDir(), "stats.json"), slog.Default())
	require.NoError(t, store.Load(context.Background()))
	t.Cleanup(func() { store.Close() })

	recorder := command.NewRecordResultHandler(store, nil, slog.Default())
	return NewIngestor(recorder, fakeResolver{}, config.LoadFeatureFlags(), slog.Default()), store
}

func message(id, authorID, authorName, content string) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: "chan",
		GuildID:   "guild",
		Content:   content,
		Author:    &discordgo.User{ID: authorID, Username: authorName},
	}
}

func TestIngestor_RecordsShareMessage(t *testing.T) {
	ing, store := newTestIngestor(t)

	outcome, err := ing.ProcessMessage(context.Background(), message("m1", "100", "alice", shareText))
	require.NoError(t, err)

	assert.True(t, outcome.Matched)
	assert.Equal(t, 1, outcome.Recorded)
	assert.Zero(t, outcome.Duplicates)

	agg, err := store.Aggregate(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, 1, agg.Wins)
	assert.Equal(t, "alice", agg.DisplayName)
}

func TestIngestor_SameMessageTwiceIsDuplicate(t *testing.T) {
	ing, _ := newTestIngestor(t)

	msg := message("m1", "100", "alice", shareText)
	_, err := ing.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)

	outcome, err := ing.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Zero(t, outcome.Recorded)
	assert.Equal(t, 1, outcome.Duplicates)
}

func TestIngestor_RecordsSummaryParticipants(t *testing.T) {
	ing, store := newTestIngestor(t)

	msg := message("m2", "100", "alice", "Daily recap:\n4/6: <@200>\nX/6: @KnownPlayer")
	msg.Mentions = []*discordgo.User{{ID: "200", Username: "bob"}}

	outcome, err := ing.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Recorded)

	bob, err := store.Aggregate(context.Background(), "200")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.Wins)
	assert.Equal(t, "bob", bob.DisplayName)

	known, err := store.Aggregate(context.Background(), "900")
	require.NoError(t, err)
	assert.Equal(t, 1, known.Losses)
	assert.Equal(t, "Known Player", known.DisplayName)
}

func TestIngestor_SummaryZeroScoreLineCountsAndOthersFollow(t *testing.T) {
	ing, store := newTestIngestor(t)

	msg := message("m8", "100", "alice", "0/6: <@200>\n5/6: <@300>")
	msg.Mentions = []*discordgo.User{{ID: "200", Username: "bob"}, {ID: "300", Username: "carol"}}

	outcome, err := ing.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Recorded)

	bob, err := store.Aggregate(context.Background(), "200")
	require.NoError(t, err)
	assert.Equal(t, 1, bob.Wins)
	assert.Equal(t, 0, bob.TotalAttempts)

	carol, err := store.Aggregate(context.Background(), "300")
	require.NoError(t, err)
	assert.Equal(t, 1, carol.Wins)
	assert.Equal(t, 5, carol.TotalAttempts)
}

func TestIngestor_UnresolvedHandleGetsSyntheticID(t *testing.T) {
	ing, store := newTestIngestor(t)

	msg := message("m3", "100", "alice", "3/6: @UnknownPlayer")
	outcome, err := ing.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Recorded)

	agg, err := store.Aggregate(context.Background(), SyntheticHandlePrefix+"unknownplayer")
	require.NoError(t, err)
	assert.Equal(t, "UnknownPlayer", agg.DisplayName)
}

func TestIngestor_SummarySkipsAuthor(t *testing.T) {
	ing, store := newTestIngestor(t)

	// The author listing themselves in a recap is not counted; their own
	// share message carries that result.
	msg := message("m4", "100", "alice", "5/6: <@100>\n2/6: <@200>")
	msg.Mentions = []*discordgo.User{{ID: "100", Username: "alice"}, {ID: "200", Username: "bob"}}

	outcome, err := ing.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Recorded)

	_, err = store.Aggregate(context.Background(), "100")
	assert.Error(t, err)
}

func TestIngestor_IgnoresBots(t *testing.T) {
	ing, _ := newTestIngestor(t)

	msg := message("m5", "100", "bot", shareText)
	msg.Author.Bot = true

	outcome, err := ing.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.False(t, outcome.Matched)
	assert.Zero(t, outcome.Recorded)
}

func TestIngestor_PlainChatterIsNotMatched(t *testing.T) {
	ing, _ := newTestIngestor(t)

	outcome, err := ing.ProcessMessage(context.Background(), message("m6", "100", "alice", "nice weather today"))
	require.NoError(t, err)
	assert.False(t, outcome.Matched)
}

func TestIngestor_SummaryFeatureDisabledFallsBackToShare(t *testing.T) {
	ing, store := newTestIngestor(t)
	require.NoError(t, ing.features.DisableFeature(config.FeatureParseSummary))

	msg := message("m7", "100", "alice", "2/6: <@200>\n"+shareText)
	msg.Mentions = []*discordgo.User{{ID: "200", Username: "bob"}}

	outcome, err := ing.ProcessMessage(context.Background(), msg)
	require.NoError(t, err)
	assert.Equal(t, 1, outcome.Recorded)

	_, err = store.Aggregate(context.Background(), "200")
	assert.Error(t, err)

	agg, err := store.Aggregate(context.Background(), "100")
	require.NoError(t, err)
	assert.Equal(t, 1, agg.GamesPlayed)
}
