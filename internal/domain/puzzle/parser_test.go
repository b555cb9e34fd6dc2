package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseShareMessage_Win(t *testing.T) {
	text := "Wordle 1307 4/6\n\n⬛🟨⬛⬛⬛\n🟨🟩⬛⬛⬛\n🟩🟩🟩🟩⬛\n🟩🟩🟩🟩🟩"

	result, ok := ParseShareMessage(text)
	require.True(t, ok)
	require.NotNil(t, result.PuzzleNumber)
	assert.Equal(t, 1307, *result.PuzzleNumber)
	assert.True(t, result.Success)
	require.NotNil(t, result.Attempts)
	assert.Equal(t, 4, *result.Attempts)
	assert.False(t, result.HardMode)
	assert.Len(t, result.Board, 4)
	assert.Equal(t, "🟩🟩🟩🟩🟩", result.Board[3])
}

func TestParseShareMessage_Loss(t *testing.T) {
	result, ok := ParseShareMessage("Wordle 900 X/6")
	require.True(t, ok)
	assert.False(t, result.Success)
	assert.Nil(t, result.Attempts)

	result, ok = ParseShareMessage("Wordle 900 x/6")
	require.True(t, ok)
	assert.False(t, result.Success)
}

func TestParseShareMessage_ZeroScoreIsValidWin(t *testing.T) {
	result, ok := ParseShareMessage("Wordle 123 0/6")
	require.True(t, ok)
	assert.True(t, result.Success)
	require.NotNil(t, result.Attempts)
	assert.Equal(t, 0, *result.Attempts)
	assert.NoError(t, result.Validate())
}

func TestParseShareMessage_HardMode(t *testing.T) {
	result, ok := ParseShareMessage("Wordle 42 3/6*")
	require.True(t, ok)
	assert.True(t, result.HardMode)
	require.NotNil(t, result.Attempts)
	assert.Equal(t, 3, *result.Attempts)
}

func TestParseShareMessage_HeaderMidMessage(t *testing.T) {
	text := "look at this!\nWordle 10 2/6\n🟩🟩🟩🟩🟩\n🟩🟩🟩🟩🟩\nnice"

	result, ok := ParseShareMessage(text)
	require.True(t, ok)
	require.NotNil(t, result.PuzzleNumber)
	assert.Equal(t, 10, *result.PuzzleNumber)
	// Everything after the header line counts as board content, capped later.
	assert.Equal(t, []string{"🟩🟩🟩🟩🟩", "🟩🟩🟩🟩🟩", "nice"}, result.Board)
}

func TestParseShareMessage_HeaderMustStartLine(t *testing.T) {
	_, ok := ParseShareMessage("I played Wordle 10 2/6 today")
	assert.False(t, ok)
}

func TestParseShareMessage_NoMatch(t *testing.T) {
	for _, text := range []string{
		"",
		"hello there",
		"Wordle 123 7/6",
		"Wordle 4/6",
	} {
		result, ok := ParseShareMessage(text)
		assert.False(t, ok, "text %q", text)
		assert.Nil(t, result)
	}
}

func TestParseShareMessage_BoardCappedAtSixRows(t *testing.T) {
	text := "Wordle 5 6/6\nr1\nr2\nr3\nr4\nr5\nr6\nr7\nr8"

	result, ok := ParseShareMessage(text)
	require.True(t, ok)
	assert.Len(t, result.Board, 6)
	assert.Equal(t, "r6", result.Board[5])
}

func TestParseShareMessage_BoardSkipsBlankLinesTrimsTrailing(t *testing.T) {
	text := "Wordle 5 1/6\n\n  🟩🟩🟩🟩🟩  \n\n"

	result, ok := ParseShareMessage(text)
	require.True(t, ok)
	require.Len(t, result.Board, 1)
	assert.Equal(t, "  🟩🟩🟩🟩🟩", result.Board[0])
}

func TestParseDailySummary_MentionsAndHandles(t *testing.T) {
	text := "Daily recap\n" +
		"3/6: <@111> <@!222>\n" +
		"chit chat in between\n" +
		"X/6: @slow.solver\n"

	entries := ParseDailySummary(text)
	require.Len(t, entries, 3)

	assert.Equal(t, "111", entries[0].UserID)
	assert.True(t, entries[0].Result.Success)
	require.NotNil(t, entries[0].Result.Attempts)
	assert.Equal(t, 3, *entries[0].Result.Attempts)
	assert.Nil(t, entries[0].Result.PuzzleNumber)

	assert.Equal(t, "222", entries[1].UserID)

	assert.Empty(t, entries[2].UserID)
	assert.Equal(t, "slow.solver", entries[2].Handle)
	assert.False(t, entries[2].Result.Success)
	assert.Nil(t, entries[2].Result.Attempts)
}

func TestParseDailySummary_DedupAcrossLines(t *testing.T) {
	text := "2/6: <@111> @Alice\n" +
		"5/6: <@111> @alice @bob"

	entries := ParseDailySummary(text)
	require.Len(t, entries, 3)

	// First occurrence wins for both the mention and the handle.
	assert.Equal(t, "111", entries[0].UserID)
	assert.Equal(t, 2, *entries[0].Result.Attempts)
	assert.Equal(t, "Alice", entries[1].Handle)
	assert.Equal(t, 2, *entries[1].Result.Attempts)
	assert.Equal(t, "bob", entries[2].Handle)
	assert.Equal(t, 5, *entries[2].Result.Attempts)
}

func TestParseDailySummary_MentionShadowsInnerHandle(t *testing.T) {
	// The mention token must not additionally produce a plain-handle entry.
	entries := ParseDailySummary("4/6: <@777>")
	require.Len(t, entries, 1)
	assert.Equal(t, "777", entries[0].UserID)
	assert.Empty(t, entries[0].Handle)
}

func TestParseDailySummary_NoParticipants(t *testing.T) {
	assert.Empty(t, ParseDailySummary("4/6: nobody here"))
	assert.Empty(t, ParseDailySummary("just narrative text"))
	assert.Empty(t, ParseDailySummary(""))
}

func TestSummaryEntryDedupeKey(t *testing.T) {
	assert.Equal(t, "id:42", SummaryEntry{UserID: "42"}.DedupeKey())
	assert.Equal(t, "handle:alice", SummaryEntry{Handle: "ALICE"}.DedupeKey())
}
