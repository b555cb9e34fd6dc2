package leaderboard

// RankChange is the signed position delta against the previously published
// order. Positive values mean the player climbed.
type RankChange int

// Direction returns the movement direction.
func (rc RankChange) Direction() RankDirection {
	switch {
	case rc > 0:
		return RankDirectionUp
	case rc < 0:
		return RankDirectionDown
	default:
		return RankDirectionStable
	}
}

// Abs returns the absolute delta.
func (rc RankChange) Abs() int {
	if rc < 0 {
		return int(-rc)
	}
	return int(rc)
}

// RankDirection describes how a player moved between two published orders.
type RankDirection string

const (
	// RankDirectionUp - the player climbed since the last post.
	RankDirectionUp RankDirection = "up"
	// RankDirectionDown - the player dropped since the last post.
	RankDirectionDown RankDirection = "down"
	// RankDirectionStable - the position did not change.
	RankDirectionStable RankDirection = "stable"
	// RankDirectionNew - the player was absent from the last post.
	RankDirectionNew RankDirection = "new"
)

// Glyph returns the indicator shown next to a leaderboard row.
func (d RankDirection) Glyph() string {
	switch d {
	case RankDirectionUp:
		return "⬆️"
	case RankDirectionDown:
		return "⬇️"
	case RankDirectionNew:
		return "🆕"
	default:
		return ""
	}
}

// Movement describes one player's change against the previous order.
type Movement struct {
	Direction RankDirection
	Change    RankChange
}

// Movements compares the current entries with the previously published
// rank order. Players absent from the previous order are new; an empty
// previous order (first ever post) marks everyone stable, matching the
// quiet first post of the original leaderboard.
func Movements(previousOrder []string, entries []Entry) map[string]Movement {
	result := make(map[string]Movement, len(entries))
	if len(previousOrder) == 0 {
		for _, e := range entries {
			result[e.UserID] = Movement{Direction: RankDirectionStable}
		}
		return result
	}

	previous := make(map[string]int, len(previousOrder))
	for i, id := range previousOrder {
		previous[id] = i + 1
	}

	for _, e := range entries {
		prevRank, ok := previous[e.UserID]
		if !ok {
			result[e.UserID] = Movement{Direction: RankDirectionNew}
			continue
		}
		change := RankChange(prevRank - e.Rank)
		result[e.UserID] = Movement{Direction: change.Direction(), Change: change}
	}
	return result
}
