package stats

import "context"

// Tx is the mutation surface handed to Store.Update callbacks. All methods
// operate on uncommitted working state; nothing becomes visible or durable
// until the callback returns nil and the store commits.
type Tx interface {
	// Aggregate returns the working copy of a user's aggregate, or
	// (nil, false) for an unknown user. Mutations to the returned value
	// must be published with PutAggregate.
	Aggregate(userID string) (*UserAggregate, bool)

	// PutAggregate stages a user's aggregate.
	PutAggregate(userID string, agg *UserAggregate)

	// IsProcessed reports whether a deduplication key was already recorded.
	IsProcessed(key string) bool

	// MarkProcessed stages a deduplication key.
	MarkProcessed(key string)

	// SnapshotOrder returns the staged leaderboard snapshot order.
	SnapshotOrder() []string

	// SetSnapshotOrder replaces the staged leaderboard snapshot order.
	SetSnapshotOrder(userIDs []string)
}

// Store is the persistence contract for puzzle statistics. Implementations
// serialize Update calls internally; that mutex is the single critical
// section every mutation in the system flows through. Reads return copies
// and never observe a half-applied mutation.
type Store interface {
	// Load initializes the store from durable state. A missing snapshot is
	// an empty store, a corrupt one is reset to empty with a warning.
	Load(ctx context.Context) error

	// Update runs fn against working state under the store's mutation lock.
	// When fn returns nil the staged changes are persisted durably and then
	// committed in memory; any error (from fn or from persistence) discards
	// them entirely.
	Update(ctx context.Context, fn func(tx Tx) error) error

	// Aggregate returns a copy of one user's aggregate.
	// Returns shared.ErrUserNotFound for unknown users.
	Aggregate(ctx context.Context, userID string) (*UserAggregate, error)

	// Aggregates returns copies of every user's aggregate keyed by user ID.
	Aggregates(ctx context.Context) (map[string]*UserAggregate, error)

	// LeaderboardSnapshot returns the stored rank order, empty if never set.
	LeaderboardSnapshot(ctx context.Context) ([]string, error)

	// Close releases underlying resources.
	Close() error
}
