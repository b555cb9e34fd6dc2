package discord

import (
	"errors"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
)

type fakeMemberAPI struct {
	members map[string]*discordgo.Member // userID -> member
	err     error
}

func (f *fakeMemberAPI) GuildMember(_, userID string, _ ...discordgo.RequestOption) (*discordgo.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	member, ok := f.members[userID]
	if !ok {
		return nil, errors.New("unknown member")
	}
	return member, nil
}

func (f *fakeMemberAPI) GuildMembersSearch(_, query string, _ int, _ ...discordgo.RequestOption) ([]*discordgo.Member, error) {
	if f.err != nil {
		return nil, f.err
	}
	var result []*discordgo.Member
	for _, member := range f.members {
		result = append(result, member)
	}
	return result, nil
}

func TestGuildResolver_DisplayNamePrecedence(t *testing.T) {
	api := &fakeMemberAPI{members: map[string]*discordgo.Member{
		"100": {Nick: "Ace", User: &discordgo.User{ID: "100", Username: "alice", GlobalName: "Alice"}},
	}}
	r := NewGuildResolver(api)

	// Nick wins inside a guild.
	name := r.DisplayName("guild", &discordgo.User{ID: "100", Username: "alice", GlobalName: "Alice"})
	assert.Equal(t, "Ace", name)

	// Global name when no nick is set.
	api.members["100"].Nick = ""
	name = r.DisplayName("guild", &discordgo.User{ID: "100", Username: "alice", GlobalName: "Alice"})
	assert.Equal(t, "Alice", name)

	// Username as last resort, also outside guilds.
	name = r.DisplayName("", &discordgo.User{ID: "100", Username: "alice"})
	assert.Equal(t, "alice", name)
}

func TestGuildResolver_DisplayNameSurvivesAPIFailure(t *testing.T) {
	r := NewGuildResolver(&fakeMemberAPI{err: errors.New("api down")})

	name := r.DisplayName("guild", &discordgo.User{ID: "100", Username: "alice", GlobalName: "Alice"})
	assert.Equal(t, "Alice", name)
}

func TestGuildResolver_ResolveHandleMatchesMember(t *testing.T) {
	api := &fakeMemberAPI{members: map[string]*discordgo.Member{
		"200": {Nick: "Bobby", User: &discordgo.User{ID: "200", Username: "bob", GlobalName: "Bob"}},
	}}
	r := NewGuildResolver(api)

	// Case-insensitive match against username.
	userID, name := r.ResolveHandle("guild", "BOB")
	assert.Equal(t, "200", userID)
	assert.Equal(t, "Bobby", name)

	// Match against nick.
	userID, _ = r.ResolveHandle("guild", "bobby")
	assert.Equal(t, "200", userID)
}

func TestGuildResolver_UnresolvableHandleGetsSyntheticID(t *testing.T) {
	r := NewGuildResolver(&fakeMemberAPI{members: map[string]*discordgo.Member{}})

	userID, name := r.ResolveHandle("guild", "Stranger")
	assert.Equal(t, SyntheticHandlePrefix+"stranger", userID)
	assert.Equal(t, "Stranger", name)
}

func TestGuildResolver_NoGuildSkipsLookup(t *testing.T) {
	r := NewGuildResolver(&fakeMemberAPI{err: errors.New("must not be called")})

	userID, name := r.ResolveHandle("", "loner")
	assert.Equal(t, SyntheticHandlePrefix+"loner", userID)
	assert.Equal(t, "loner", name)
}
