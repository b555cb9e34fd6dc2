package leaderboard

import (
	"context"
	"errors"
)

// ErrCacheMiss is returned when the cache holds no usable ranking.
var ErrCacheMiss = errors.New("leaderboard: cache miss")

// Cache is an optional read-side accelerator for the ranked leaderboard.
// Implementations must treat the store as the source of truth; a miss or
// a cache failure always falls back to a full rebuild.
type Cache interface {
	// GetTop returns the best limit entries of the cached ranking, or the
	// whole ranking when it is shorter. Returns ErrCacheMiss when nothing
	// usable is cached.
	GetTop(ctx context.Context, limit int) ([]Entry, error)

	// SetTop replaces the cached ranking.
	SetTop(ctx context.Context, entries []Entry) error

	// Invalidate drops the cached ranking.
	Invalidate(ctx context.Context) error
}
