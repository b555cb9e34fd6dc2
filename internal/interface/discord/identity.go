package discord

import (
	"strings"

	"github.com/bwmarrin/discordgo"
)

// ══════════════════════════════════════════════════════════════════════════════
// IDENTITY RESOLUTION
// Maps the people appearing in messages (authors, mentions, bare handles in
// recap summaries) onto canonical user IDs and display names.
// ══════════════════════════════════════════════════════════════════════════════

// SyntheticHandlePrefix marks user IDs minted for handles that could not be
// matched to a guild member. Results recorded under them are kept rather
// than dropped; a later rename can merge them manually.
const SyntheticHandlePrefix = "handle:"

// IdentityResolver resolves message participants to user identities.
type IdentityResolver interface {
	// DisplayName returns the preferred name for a known user:
	// guild nick, then global name, then username.
	DisplayName(guildID string, user *discordgo.User) string

	// ResolveHandle maps a bare handle from a recap summary to a guild
	// member. Unresolvable handles get a synthetic "handle:<lower>" ID
	// with the handle itself as display name.
	ResolveHandle(guildID, handle string) (userID, displayName string)
}

// memberAPI is the slice of the gateway used for identity lookups.
type memberAPI interface {
	GuildMember(guildID, userID string, options ...discordgo.RequestOption) (*discordgo.Member, error)
	GuildMembersSearch(guildID, query string, limit int, options ...discordgo.RequestOption) ([]*discordgo.Member, error)
}

// GuildResolver resolves identities against the Discord member API.
type GuildResolver struct {
	api memberAPI
}

// NewGuildResolver creates a resolver backed by the given session.
func NewGuildResolver(api memberAPI) *GuildResolver {
	return &GuildResolver{api: api}
}

// DisplayName implements IdentityResolver.
func (r *GuildResolver) DisplayName(guildID string, user *discordgo.User) string {
	if user == nil {
		return ""
	}
	if guildID != "" {
		if member, err := r.api.GuildMember(guildID, user.ID); err == nil && member.Nick != "" {
			return member.Nick
		}
	}
	if user.GlobalName != "" {
		return user.GlobalName
	}
	return user.Username
}

// ResolveHandle implements IdentityResolver.
func (r *GuildResolver) ResolveHandle(guildID, handle string) (string, string) {
	lower := strings.ToLower(handle)

	if guildID != "" {
		members, err := r.api.GuildMembersSearch(guildID, handle, 10)
		if err == nil {
			for _, member := range members {
				if member.User == nil {
					continue
				}
				if strings.EqualFold(member.User.Username, handle) ||
					strings.EqualFold(member.User.GlobalName, handle) ||
					strings.EqualFold(member.Nick, handle) {
					return member.User.ID, r.memberDisplayName(member)
				}
			}
		}
	}

	return SyntheticHandlePrefix + lower, handle
}

func (r *GuildResolver) memberDisplayName(member *discordgo.Member) string {
	if member.Nick != "" {
		return member.Nick
	}
	if member.User.GlobalName != "" {
		return member.User.GlobalName
	}
	return member.User.Username
}
