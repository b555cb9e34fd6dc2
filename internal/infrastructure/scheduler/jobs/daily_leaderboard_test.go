package jobs

import (
	"context"
	"errors"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wordler-hub/wordler-community-hub/internal/application/command"
	"github.com/wordler-hub/wordler-community-hub/internal/application/query"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/puzzle"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
	"github.com/wordler-hub/wordler-community-hub/internal/infrastructure/persistence/jsonfile"
)

type fakeGateway struct {
	posts     int
	entries   []leaderboard.Entry
	movements map[string]leaderboard.Movement
	err       error
}

func (g *fakeGateway) PostLeaderboard(_ context.Context, entries []leaderboard.Entry, movements map[string]leaderboard.Movement) error {
	g.posts++
	if g.err != nil {
		return g.err
	}
	g.entries = entries
	g.movements = movements
	return nil
}

func newJobStore(t *testing.T) stats.Store {
	t.Helper()
	store := jsonfile.New(filepath.Join(t.TempDir(), "stats.json"), slog.Default())
	require.NoError(t, store.Load(context.Background()))
	return store
}

func seedResult(t *testing.T, store stats.Store, userID, name string, attempts int) {
	t.Helper()
	err := store.Update(context.Background(), func(tx stats.Tx) error {
		agg, ok := tx.Aggregate(userID)
		if !ok {
			agg = stats.NewUserAggregate(name)
		}
		agg.Apply(puzzle.Result{Success: true, Attempts: &attempts}, name, time.Now().UTC())
		tx.PutAggregate(userID, agg)
		return nil
	})
	require.NoError(t, err)
}

func newDailyJob(store stats.Store, gateway LeaderboardGateway) *DailyLeaderboardJob {
	logger := slog.Default()
	return NewDailyLeaderboardJob(
		query.NewGetLeaderboardHandler(store, nil, logger),
		query.NewGetLeaderboardSnapshotHandler(store),
		command.NewUpdateLeaderboardSnapshotHandler(store, logger),
		gateway,
		logger,
		DefaultDailyLeaderboardConfig(),
	)
}

func TestDailyLeaderboardJob_PostsAndRecordsOrder(t *testing.T) {
	store := newJobStore(t)
	defer store.Close()

	seedResult(t, store, "100", "Alice", 3)
	seedResult(t, store, "200", "Bob", 5)

	gateway := &fakeGateway{}
	job := newDailyJob(store, gateway)

	require.NoError(t, job.Run(context.Background()))

	require.Len(t, gateway.entries, 2)
	assert.Equal(t, "100", gateway.entries[0].UserID)
	assert.Equal(t, "200", gateway.entries[1].UserID)

	order, err := store.LeaderboardSnapshot(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"100", "200"}, order)
}

func TestDailyLeaderboardJob_MovementsAgainstPreviousPost(t *testing.T) {
	store := newJobStore(t)
	defer store.Close()

	seedResult(t, store, "100", "Alice", 3)
	seedResult(t, store, "200", "Bob", 5)

	// Previous post had Bob on top.
	err := store.Update(context.Background(), func(tx stats.Tx) error {
		tx.SetSnapshotOrder([]string{"200", "100"})
		return nil
	})
	require.NoError(t, err)

	gateway := &fakeGateway{}
	job := newDailyJob(store, gateway)
	require.NoError(t, job.Run(context.Background()))

	require.Contains(t, gateway.movements, "100")
	assert.Equal(t, leaderboard.RankDirectionUp, gateway.movements["100"].Direction)
	assert.Equal(t, leaderboard.RankDirectionDown, gateway.movements["200"].Direction)
}

func TestDailyLeaderboardJob_SkipsWhenNoResults(t *testing.T) {
	store := newJobStore(t)
	defer store.Close()

	gateway := &fakeGateway{}
	job := newDailyJob(store, gateway)

	require.NoError(t, job.Run(context.Background()))
	assert.Zero(t, gateway.posts)
}

func TestDailyLeaderboardJob_FailedPostKeepsBaseline(t *testing.T) {
	store := newJobStore(t)
	defer store.Close()

	seedResult(t, store, "100", "Alice", 3)

	gateway := &fakeGateway{err: errors.New("channel unavailable")}
	job := newDailyJob(store, gateway)

	err := job.Run(context.Background())
	require.Error(t, err)

	order, snapErr := store.LeaderboardSnapshot(context.Background())
	require.NoError(t, snapErr)
	assert.Empty(t, order)
}

func TestRefreshLeaderboardJob_Runs(t *testing.T) {
	store := newJobStore(t)
	defer store.Close()

	seedResult(t, store, "100", "Alice", 4)

	job := NewRefreshLeaderboardJob(query.NewGetLeaderboardHandler(store, nil, slog.Default()), slog.Default())
	require.NoError(t, job.Run(context.Background()))
}
