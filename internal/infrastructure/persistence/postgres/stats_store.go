package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// SCHEMA
// Bootstrapped on Load. Three tables mirror the JSON snapshot document:
// per-user aggregates, the dedupe key set, and the published rank order.
// ══════════════════════════════════════════════════════════════════════════════

const schemaSQL = `
CREATE TABLE IF NOT EXISTS wordle_users (
	user_id            TEXT PRIMARY KEY,
	display_name       TEXT NOT NULL DEFAULT '',
	games_played       INTEGER NOT NULL DEFAULT 0,
	wins               INTEGER NOT NULL DEFAULT 0,
	losses             INTEGER NOT NULL DEFAULT 0,
	total_attempts     INTEGER NOT NULL DEFAULT 0,
	guess_distribution JSONB NOT NULL DEFAULT '{}'::jsonb,
	last_puzzle        INTEGER,
	last_result        JSONB,
	updated_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS processed_messages (
	dedupe_key  TEXT PRIMARY KEY,
	recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS leaderboard_snapshot (
	position INTEGER PRIMARY KEY,
	user_id  TEXT NOT NULL
);
`

// ══════════════════════════════════════════════════════════════════════════════
// QUERIES
// ══════════════════════════════════════════════════════════════════════════════

const (
	selectUserSQL = `
		SELECT display_name, games_played, wins, losses, total_attempts,
		       guess_distribution, last_puzzle, last_result
		FROM wordle_users
		WHERE user_id = $1`

	selectUserForUpdateSQL = selectUserSQL + ` FOR UPDATE`

	selectAllUsersSQL = `
		SELECT user_id, display_name, games_played, wins, losses, total_attempts,
		       guess_distribution, last_puzzle, last_result
		FROM wordle_users`

	upsertUserSQL = `
		INSERT INTO wordle_users (
			user_id, display_name, games_played, wins, losses, total_attempts,
			guess_distribution, last_puzzle, last_result, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now())
		ON CONFLICT (user_id) DO UPDATE SET
			display_name       = EXCLUDED.display_name,
			games_played       = EXCLUDED.games_played,
			wins               = EXCLUDED.wins,
			losses             = EXCLUDED.losses,
			total_attempts     = EXCLUDED.total_attempts,
			guess_distribution = EXCLUDED.guess_distribution,
			last_puzzle        = EXCLUDED.last_puzzle,
			last_result        = EXCLUDED.last_result,
			updated_at         = now()`

	existsProcessedSQL = `SELECT EXISTS (SELECT 1 FROM processed_messages WHERE dedupe_key = $1)`
	insertProcessedSQL = `INSERT INTO processed_messages (dedupe_key) VALUES ($1) ON CONFLICT DO NOTHING`

	selectSnapshotSQL = `SELECT user_id FROM leaderboard_snapshot ORDER BY position`
	clearSnapshotSQL  = `DELETE FROM leaderboard_snapshot`
	insertSnapshotSQL = `INSERT INTO leaderboard_snapshot (position, user_id) VALUES ($1, $2)`
)

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// StatsStore is a PostgreSQL-backed stats.Store. Mutations run inside a
// database transaction with row locking, serialized additionally by an
// in-process mutex so the single-writer discipline matches the file store.
type StatsStore struct {
	conn         *Connection
	queryTimeout time.Duration
	logger       *slog.Logger
	mu           sync.Mutex
}

// NewStatsStore creates a StatsStore over an established connection.
// A positive queryTimeout bounds every store operation; zero disables
// the bound and defers to the caller's context.
func NewStatsStore(conn *Connection, queryTimeout time.Duration, logger *slog.Logger) *StatsStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &StatsStore{
		conn:         conn,
		queryTimeout: queryTimeout,
		logger:       logger.With("component", "postgres_store"),
	}
}

// opCtx applies the configured query timeout to an operation context.
func (s *StatsStore) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.queryTimeout <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, s.queryTimeout)
}

// Load bootstraps the schema. Postgres guards its own document integrity,
// so unlike the file backend there is no corruption-reset path here.
func (s *StatsStore) Load(ctx context.Context) error {
	if _, err := s.conn.Pool().Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("postgres: bootstrap schema: %w", err)
	}
	s.logger.Info("stats schema ready")
	return nil
}

// Update implements stats.Store.
func (s *StatsStore) Update(ctx context.Context, fn func(tx stats.Tx) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.conn.IsClosed() {
		return shared.ErrStoreClosed
	}

	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	dbTx, err := s.conn.Pool().BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return fmt.Errorf("%w: begin: %v", ErrTransactionFailed, err)
	}
	defer func() { _ = dbTx.Rollback(ctx) }()

	tx := &pgTx{ctx: ctx, tx: dbTx}
	if err := fn(tx); err != nil {
		return err
	}
	if tx.err != nil {
		return fmt.Errorf("%w: %v", ErrTransactionFailed, tx.err)
	}

	if err := dbTx.Commit(ctx); err != nil {
		return shared.WrapError("stats", "Persist", shared.ErrStorageWrite, "transaction commit failed", err)
	}
	return nil
}

// Aggregate implements stats.Store.
func (s *StatsStore) Aggregate(ctx context.Context, userID string) (*stats.UserAggregate, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	row := s.conn.Pool().QueryRow(ctx, selectUserSQL, userID)
	agg, err := scanAggregate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, shared.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("postgres: get aggregate: %w", err)
	}
	return agg, nil
}

// Aggregates implements stats.Store.
func (s *StatsStore) Aggregates(ctx context.Context) (map[string]*stats.UserAggregate, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.Pool().Query(ctx, selectAllUsersSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: list aggregates: %w", err)
	}
	defer rows.Close()

	out := make(map[string]*stats.UserAggregate)
	for rows.Next() {
		var userID string
		agg, err := scanAggregateWithID(rows, &userID)
		if err != nil {
			return nil, fmt.Errorf("postgres: scan aggregate: %w", err)
		}
		out[userID] = agg
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("postgres: list aggregates: %w", err)
	}
	return out, nil
}

// LeaderboardSnapshot implements stats.Store.
func (s *StatsStore) LeaderboardSnapshot(ctx context.Context) ([]string, error) {
	ctx, cancel := s.opCtx(ctx)
	defer cancel()

	rows, err := s.conn.Pool().Query(ctx, selectSnapshotSQL)
	if err != nil {
		return nil, fmt.Errorf("postgres: read snapshot order: %w", err)
	}
	defer rows.Close()

	var order []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("postgres: scan snapshot order: %w", err)
		}
		order = append(order, id)
	}
	return order, rows.Err()
}

// Close implements stats.Store.
func (s *StatsStore) Close() error {
	s.conn.Close()
	return nil
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION
// ══════════════════════════════════════════════════════════════════════════════

// pgTx adapts a pgx transaction to the stats.Tx surface. The interface has
// no error returns, so database failures stick to the transaction and fail
// the whole Update after the callback finishes.
type pgTx struct {
	ctx context.Context
	tx  pgx.Tx
	err error
}

func (t *pgTx) fail(err error) {
	if t.err == nil {
		t.err = err
	}
}

func (t *pgTx) Aggregate(userID string) (*stats.UserAggregate, bool) {
	if t.err != nil {
		return nil, false
	}
	row := t.tx.QueryRow(t.ctx, selectUserForUpdateSQL, userID)
	agg, err := scanAggregate(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false
	}
	if err != nil {
		t.fail(err)
		return nil, false
	}
	return agg, true
}

func (t *pgTx) PutAggregate(userID string, agg *stats.UserAggregate) {
	if t.err != nil {
		return
	}

	dist, err := json.Marshal(agg.GuessDistribution)
	if err != nil {
		t.fail(err)
		return
	}
	var lastResult []byte
	if agg.LastResult != nil {
		if lastResult, err = json.Marshal(agg.LastResult); err != nil {
			t.fail(err)
			return
		}
	}

	_, err = t.tx.Exec(t.ctx, upsertUserSQL,
		userID,
		agg.DisplayName,
		agg.GamesPlayed,
		agg.Wins,
		agg.Losses,
		agg.TotalAttempts,
		dist,
		agg.LastPuzzle,
		lastResult,
	)
	if err != nil {
		t.fail(err)
	}
}

func (t *pgTx) IsProcessed(key string) bool {
	if t.err != nil {
		return false
	}
	var exists bool
	if err := t.tx.QueryRow(t.ctx, existsProcessedSQL, key).Scan(&exists); err != nil {
		t.fail(err)
		return false
	}
	return exists
}

func (t *pgTx) MarkProcessed(key string) {
	if t.err != nil {
		return
	}
	if _, err := t.tx.Exec(t.ctx, insertProcessedSQL, key); err != nil {
		t.fail(err)
	}
}

func (t *pgTx) SnapshotOrder() []string {
	if t.err != nil {
		return nil
	}
	rows, err := t.tx.Query(t.ctx, selectSnapshotSQL)
	if err != nil {
		t.fail(err)
		return nil
	}
	defer rows.Close()

	var order []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			t.fail(err)
			return nil
		}
		order = append(order, id)
	}
	if err := rows.Err(); err != nil {
		t.fail(err)
	}
	return order
}

func (t *pgTx) SetSnapshotOrder(userIDs []string) {
	if t.err != nil {
		return
	}
	if _, err := t.tx.Exec(t.ctx, clearSnapshotSQL); err != nil {
		t.fail(err)
		return
	}
	for i, id := range userIDs {
		if _, err := t.tx.Exec(t.ctx, insertSnapshotSQL, i+1, id); err != nil {
			t.fail(err)
			return
		}
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SCANNING
// ══════════════════════════════════════════════════════════════════════════════

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAggregate(row rowScanner) (*stats.UserAggregate, error) {
	agg := &stats.UserAggregate{}
	var dist, lastResult []byte

	err := row.Scan(
		&agg.DisplayName,
		&agg.GamesPlayed,
		&agg.Wins,
		&agg.Losses,
		&agg.TotalAttempts,
		&dist,
		&agg.LastPuzzle,
		&lastResult,
	)
	if err != nil {
		return nil, err
	}
	return finishAggregate(agg, dist, lastResult)
}

func scanAggregateWithID(row rowScanner, userID *string) (*stats.UserAggregate, error) {
	agg := &stats.UserAggregate{}
	var dist, lastResult []byte

	err := row.Scan(
		userID,
		&agg.DisplayName,
		&agg.GamesPlayed,
		&agg.Wins,
		&agg.Losses,
		&agg.TotalAttempts,
		&dist,
		&agg.LastPuzzle,
		&lastResult,
	)
	if err != nil {
		return nil, err
	}
	return finishAggregate(agg, dist, lastResult)
}

func finishAggregate(agg *stats.UserAggregate, dist, lastResult []byte) (*stats.UserAggregate, error) {
	agg.GuessDistribution = make(map[string]int)
	if len(dist) > 0 {
		if err := json.Unmarshal(dist, &agg.GuessDistribution); err != nil {
			return nil, fmt.Errorf("decode guess_distribution: %w", err)
		}
	}
	if len(lastResult) > 0 {
		var lr stats.LastResult
		if err := json.Unmarshal(lastResult, &lr); err != nil {
			return nil, fmt.Errorf("decode last_result: %w", err)
		}
		agg.LastResult = &lr
	}
	return agg, nil
}
