package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wordler-hub/wordler-community-hub/internal/domain/leaderboard"
)

// ══════════════════════════════════════════════════════════════════════════════
// LEADERBOARD CACHE
// Caches the full computed ranking so reads skip rebuilding it from every
// stored aggregate.
//
// Architecture:
//   - Sorted Set "wordle:leaderboard:rank" stores userID -> rank (score)
//   - Hash "wordle:leaderboard:info" stores userID -> Entry JSON
//   - String "wordle:leaderboard:meta" stores metadata (last update, size)
//
// Rank order travels in the sorted-set score, so any prefix of the ranking
// can be served with one ZRANGE + HMGET.
// ══════════════════════════════════════════════════════════════════════════════

// Key names for the leaderboard cache.
const (
	keyLeaderboardRank = "wordle:leaderboard:rank"
	keyLeaderboardInfo = "wordle:leaderboard:info"
	keyLeaderboardMeta = "wordle:leaderboard:meta"
)

// leaderboardMeta describes the cached ranking.
type leaderboardMeta struct {
	UpdatedAt time.Time `json:"updated_at"`
	Size      int       `json:"size"`
}

// LeaderboardCache implements leaderboard.Cache on Redis sorted sets.
type LeaderboardCache struct {
	cache *Cache
}

// NewLeaderboardCache creates a new LeaderboardCache instance.
func NewLeaderboardCache(cache *Cache) *LeaderboardCache {
	return &LeaderboardCache{cache: cache}
}

// GetTop implements leaderboard.Cache. When the cached population is
// smaller than limit the whole ranking is returned; the cache always holds
// the complete ranking, so short results are authoritative.
func (l *LeaderboardCache) GetTop(ctx context.Context, limit int) ([]leaderboard.Entry, error) {
	if limit <= 0 {
		limit = leaderboard.DefaultLimit
	}

	var meta leaderboardMeta
	if err := l.cache.Get(ctx, keyLeaderboardMeta, &meta); err != nil {
		if errors.Is(err, ErrCacheMiss) {
			return nil, leaderboard.ErrCacheMiss
		}
		return nil, fmt.Errorf("leaderboard_cache: read meta: %w", err)
	}

	ids, err := l.cache.Client().ZRange(ctx, keyLeaderboardRank, 0, int64(limit)-1).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard_cache: read ranks: %w", err)
	}
	if len(ids) == 0 {
		if meta.Size == 0 {
			// An empty community ranks nobody; the empty ranking is valid.
			return []leaderboard.Entry{}, nil
		}
		return nil, leaderboard.ErrCacheMiss
	}

	raw, err := l.cache.Client().HMGet(ctx, keyLeaderboardInfo, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("leaderboard_cache: read entries: %w", err)
	}

	entries := make([]leaderboard.Entry, 0, len(ids))
	for i, v := range raw {
		s, ok := v.(string)
		if !ok {
			// The hash and the sorted set drifted apart; treat as a miss
			// so the read path rebuilds both.
			return nil, leaderboard.ErrCacheMiss
		}
		var entry leaderboard.Entry
		if err := json.Unmarshal([]byte(s), &entry); err != nil {
			return nil, fmt.Errorf("%w: entry %s: %v", ErrCacheSerialization, ids[i], err)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

// SetTop implements leaderboard.Cache, replacing the cached ranking in one
// pipeline so readers never observe a partial ranking.
func (l *LeaderboardCache) SetTop(ctx context.Context, entries []leaderboard.Entry) error {
	pipe := l.cache.Client().TxPipeline()
	pipe.Del(ctx, keyLeaderboardRank, keyLeaderboardInfo)

	for _, entry := range entries {
		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("%w: entry %s: %v", ErrCacheSerialization, entry.UserID, err)
		}
		pipe.ZAdd(ctx, keyLeaderboardRank, redis.Z{
			Score:  float64(entry.Rank),
			Member: entry.UserID,
		})
		pipe.HSet(ctx, keyLeaderboardInfo, entry.UserID, data)
	}

	meta, err := json.Marshal(leaderboardMeta{
		UpdatedAt: time.Now().UTC(),
		Size:      len(entries),
	})
	if err != nil {
		return fmt.Errorf("%w: meta: %v", ErrCacheSerialization, err)
	}
	pipe.Set(ctx, keyLeaderboardMeta, meta, TTLLeaderboard)

	if len(entries) > 0 {
		pipe.Expire(ctx, keyLeaderboardRank, TTLLeaderboard)
		pipe.Expire(ctx, keyLeaderboardInfo, TTLLeaderboard)
	}

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("leaderboard_cache: write ranking: %w", err)
	}
	return nil
}

// Invalidate implements leaderboard.Cache.
func (l *LeaderboardCache) Invalidate(ctx context.Context) error {
	if err := l.cache.Delete(ctx, keyLeaderboardRank, keyLeaderboardInfo, keyLeaderboardMeta); err != nil {
		return fmt.Errorf("leaderboard_cache: invalidate: %w", err)
	}
	return nil
}
