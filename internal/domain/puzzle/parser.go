package puzzle

import (
	"regexp"
	"strconv"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// PATTERNS
// Share headers look like "Wordle 1307 4/6*"; recap summaries carry one line
// per score bucket, e.g. "4/6: <@123456> @somebody".
// ══════════════════════════════════════════════════════════════════════════════

var (
	shareHeaderPattern = regexp.MustCompile(`(?m)^Wordle\s+(\d+)\s+([0-6Xx])/6(\*?)`)
	summaryLinePattern = regexp.MustCompile(`([0-6Xx])/6:\s*(.+)`)
	mentionPattern     = regexp.MustCompile(`<@!?(\d+)>`)
	plainHandlePattern = regexp.MustCompile(`@([A-Za-z0-9_.-]+)`)
)

// ParseShareMessage extracts a puzzle result from a share message.
// The header may appear on any line of the message. Returns (nil, false)
// when the text contains no share header; a miss is not an error, most
// chat traffic is unrelated.
func ParseShareMessage(text string) (*Result, bool) {
	loc := shareHeaderPattern.FindStringSubmatchIndex(text)
	if loc == nil {
		return nil, false
	}

	number, _ := strconv.Atoi(text[loc[2]:loc[3]])
	score := text[loc[4]:loc[5]]
	hardMode := loc[6] != loc[7]

	result := &Result{
		PuzzleNumber: &number,
		HardMode:     hardMode,
	}
	if score != "X" && score != "x" {
		attempts, _ := strconv.Atoi(score)
		result.Success = true
		result.Attempts = &attempts
	}

	result.Board = parseBoard(text, loc[1])
	return result, true
}

// parseBoard collects the emoji grid rows that follow the header line.
// Blank lines are skipped, content is kept verbatim apart from trailing
// whitespace, and at most MaxBoardRows rows are retained.
func parseBoard(text string, headerEnd int) []string {
	rest := text[headerEnd:]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[idx+1:]
	} else {
		return nil
	}

	var rows []string
	for _, line := range strings.Split(rest, "\n") {
		line = strings.TrimRight(line, " \t\r")
		if line == "" {
			continue
		}
		rows = append(rows, line)
		if len(rows) == MaxBoardRows {
			break
		}
	}
	return rows
}

// ParseDailySummary extracts per-participant results from a recap summary
// message, one entry per distinct participant. Lines not shaped like
// "<score>/6: <participants>" are ignored, as are score lines naming nobody
// recognizable. Deduplication spans the whole message: mentions dedupe by
// ID, plain handles case-insensitively, and the first occurrence wins.
func ParseDailySummary(text string) []SummaryEntry {
	entries := []SummaryEntry{}
	seen := make(map[string]struct{})

	for _, line := range strings.Split(text, "\n") {
		m := summaryLinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		result := summaryResult(m[1])
		body := m[2]

		for _, mention := range mentionPattern.FindAllStringSubmatch(body, -1) {
			entry := SummaryEntry{Result: result, UserID: mention[1]}
			if _, dup := seen[entry.DedupeKey()]; dup {
				continue
			}
			seen[entry.DedupeKey()] = struct{}{}
			entries = append(entries, entry)
		}

		// Plain handles are matched only after mention tokens are removed,
		// otherwise "<@123>" would not shadow an "@name" inside it.
		stripped := mentionPattern.ReplaceAllString(body, " ")
		for _, handle := range plainHandlePattern.FindAllStringSubmatch(stripped, -1) {
			entry := SummaryEntry{Result: result, Handle: handle[1]}
			if _, dup := seen[entry.DedupeKey()]; dup {
				continue
			}
			seen[entry.DedupeKey()] = struct{}{}
			entries = append(entries, entry)
		}
	}

	return entries
}

// summaryResult builds the score-only result a summary line conveys.
// Summaries carry no puzzle number and no board.
func summaryResult(score string) Result {
	if score == "X" || score == "x" {
		return Result{}
	}
	attempts, _ := strconv.Atoi(score)
	return Result{Success: true, Attempts: &attempts}
}
