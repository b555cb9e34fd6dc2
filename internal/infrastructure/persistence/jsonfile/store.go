// Package jsonfile implements the stats.Store contract on a single JSON
// snapshot document. Writes go through a temp file in the same directory
// followed by an atomic rename, so a crash mid-write leaves the previous
// snapshot intact.
package jsonfile

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/shared"
	"github.com/wordler-hub/wordler-community-hub/internal/domain/stats"
)

// ══════════════════════════════════════════════════════════════════════════════
// SNAPSHOT DOCUMENT
// ══════════════════════════════════════════════════════════════════════════════

// document is the on-disk shape of the snapshot.
type document struct {
	Users               map[string]*stats.UserAggregate `json:"users"`
	ProcessedMessages   []string                        `json:"processed_messages"`
	LeaderboardSnapshot []string                        `json:"leaderboard_snapshot,omitempty"`
	UpdatedAt           time.Time                       `json:"updated_at"`
}

// probe mirrors document with raw fields so a wrong-shaped file is caught
// field by field instead of with a bare decode failure.
type probe struct {
	Users               json.RawMessage `json:"users"`
	ProcessedMessages   json.RawMessage `json:"processed_messages"`
	LeaderboardSnapshot json.RawMessage `json:"leaderboard_snapshot"`
}

// state is the in-memory working set.
type state struct {
	users         map[string]*stats.UserAggregate
	processed     map[string]struct{}
	snapshotOrder []string
}

func newState() *state {
	return &state{
		users:     make(map[string]*stats.UserAggregate),
		processed: make(map[string]struct{}),
	}
}

func (s *state) clone() *state {
	c := &state{
		users:         make(map[string]*stats.UserAggregate, len(s.users)),
		processed:     make(map[string]struct{}, len(s.processed)),
		snapshotOrder: append([]string(nil), s.snapshotOrder...),
	}
	for id, agg := range s.users {
		c.users[id] = agg.Clone()
	}
	for key := range s.processed {
		c.processed[key] = struct{}{}
	}
	return c
}

// ══════════════════════════════════════════════════════════════════════════════
// STORE
// ══════════════════════════════════════════════════════════════════════════════

// Store is a file-backed stats.Store. The internal mutex serializes every
// mutation in the process; Update works on a deep copy that is swapped in
// only after the snapshot hit disk.
type Store struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	state  *state
	closed bool
}

// New creates a Store persisting to path. Call Load before use.
func New(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		path:   path,
		logger: logger.With("component", "jsonfile_store"),
		state:  newState(),
	}
}

// Load reads the snapshot from disk. A missing file starts an empty store.
// A snapshot that cannot be decoded or fails validation is logged and
// replaced with an empty store; the file itself is only overwritten by the
// next successful persist.
func (s *Store) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return shared.ErrStoreClosed
	}

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("no stats snapshot found, starting empty", "path", s.path)
		s.state = newState()
		return nil
	}
	if err != nil {
		return fmt.Errorf("jsonfile: read snapshot: %w", err)
	}

	st, err := decodeSnapshot(data)
	if err != nil {
		s.logger.Warn("stats snapshot is corrupt, resetting to empty",
			"path", s.path,
			"error", err)
		s.state = newState()
		return nil
	}

	s.state = st
	s.logger.Info("stats snapshot loaded",
		"path", s.path,
		"users", len(st.users),
		"processed_messages", len(st.processed))
	return nil
}

// decodeSnapshot parses and validates the on-disk document.
func decodeSnapshot(data []byte) (*state, error) {
	var p probe
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSnapshotCorrupt, err)
	}

	var doc document
	if len(p.Users) > 0 {
		if err := json.Unmarshal(p.Users, &doc.Users); err != nil {
			return nil, fmt.Errorf("%w: users is not a mapping: %v", shared.ErrSnapshotCorrupt, err)
		}
	}
	if len(p.ProcessedMessages) > 0 {
		if err := json.Unmarshal(p.ProcessedMessages, &doc.ProcessedMessages); err != nil {
			return nil, fmt.Errorf("%w: processed_messages is not a list: %v", shared.ErrSnapshotCorrupt, err)
		}
	}
	if len(p.LeaderboardSnapshot) > 0 {
		if err := json.Unmarshal(p.LeaderboardSnapshot, &doc.LeaderboardSnapshot); err != nil {
			return nil, fmt.Errorf("%w: leaderboard_snapshot is not a list: %v", shared.ErrSnapshotCorrupt, err)
		}
	}

	st := newState()
	for id, agg := range doc.Users {
		if agg == nil {
			return nil, fmt.Errorf("%w: user %q is not an object", shared.ErrSnapshotCorrupt, id)
		}
		if err := agg.Validate(); err != nil {
			return nil, fmt.Errorf("%w: user %q: %v", shared.ErrSnapshotCorrupt, id, err)
		}
		st.users[id] = agg
	}
	for _, key := range doc.ProcessedMessages {
		st.processed[key] = struct{}{}
	}
	st.snapshotOrder = doc.LeaderboardSnapshot
	return st, nil
}

// Update implements stats.Store.
func (s *Store) Update(ctx context.Context, fn func(tx stats.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return shared.ErrStoreClosed
	}

	working := s.state.clone()
	tx := &fileTx{state: working}
	if err := fn(tx); err != nil {
		return err
	}
	if !tx.dirty {
		return nil
	}
	if err := s.persist(working); err != nil {
		return shared.WrapError("stats", "Persist", shared.ErrStorageWrite, "snapshot write failed", err)
	}
	s.state = working
	return nil
}

// persist writes the working state to a sibling temp file and renames it
// over the snapshot path.
func (s *Store) persist(st *state) error {
	doc := document{
		Users:               st.users,
		ProcessedMessages:   make([]string, 0, len(st.processed)),
		LeaderboardSnapshot: st.snapshotOrder,
		UpdatedAt:           time.Now().UTC(),
	}
	for key := range st.processed {
		doc.ProcessedMessages = append(doc.ProcessedMessages, key)
	}
	sort.Strings(doc.ProcessedMessages)

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("jsonfile: marshal snapshot: %w", err)
	}

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("jsonfile: create snapshot dir: %w", err)
		}
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("jsonfile: write temp snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("jsonfile: replace snapshot: %w", err)
	}
	return nil
}

// Aggregate implements stats.Store.
func (s *Store) Aggregate(ctx context.Context, userID string) (*stats.UserAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, shared.ErrStoreClosed
	}

	agg, ok := s.state.users[userID]
	if !ok {
		return nil, shared.ErrUserNotFound
	}
	return agg.Clone(), nil
}

// Aggregates implements stats.Store.
func (s *Store) Aggregates(ctx context.Context) (map[string]*stats.UserAggregate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, shared.ErrStoreClosed
	}

	out := make(map[string]*stats.UserAggregate, len(s.state.users))
	for id, agg := range s.state.users {
		out[id] = agg.Clone()
	}
	return out, nil
}

// LeaderboardSnapshot implements stats.Store.
func (s *Store) LeaderboardSnapshot(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, shared.ErrStoreClosed
	}
	return append([]string(nil), s.state.snapshotOrder...), nil
}

// Close implements stats.Store.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Path returns the snapshot file path.
func (s *Store) Path() string {
	return s.path
}

// ══════════════════════════════════════════════════════════════════════════════
// TRANSACTION
// ══════════════════════════════════════════════════════════════════════════════

// fileTx exposes a working-copy state as a stats.Tx. The copy is private to
// one Update call, so handing out direct pointers is safe. The dirty flag
// tracks whether any mutator ran; a read-only Update skips the disk write.
type fileTx struct {
	state *state
	dirty bool
}

func (t *fileTx) Aggregate(userID string) (*stats.UserAggregate, bool) {
	agg, ok := t.state.users[userID]
	return agg, ok
}

func (t *fileTx) PutAggregate(userID string, agg *stats.UserAggregate) {
	t.state.users[userID] = agg
	t.dirty = true
}

func (t *fileTx) IsProcessed(key string) bool {
	_, ok := t.state.processed[key]
	return ok
}

func (t *fileTx) MarkProcessed(key string) {
	t.state.processed[key] = struct{}{}
	t.dirty = true
}

func (t *fileTx) SnapshotOrder() []string {
	return append([]string(nil), t.state.snapshotOrder...)
}

func (t *fileTx) SetSnapshotOrder(userIDs []string) {
	t.state.snapshotOrder = append([]string(nil), userIDs...)
	t.dirty = true
}
