package snapshot

import (
	"strings"

	"github.com/SJMakin/even-better-playwright-mcp/internal/outline"
)

// DiffLine is one added or removed outline line.
type DiffLine struct {
	LineNum int    `json:"line"`
	Line    string `json:"text"`
	Ref     string `json:"ref,omitempty"`
}

// DiffResult lists the lines present in only one of two snapshots.
type DiffResult struct {
	Added   []DiffLine `json:"added,omitempty"`
	Removed []DiffLine `json:"removed,omitempty"`
}

// Empty reports whether the two snapshots had identical line content.
func (d *DiffResult) Empty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0
}

// Diff compares two snapshots line by line, ignoring indentation changes.
// It is a multiset comparison, not an alignment: a line counts as added
// when it occurs more often in the current snapshot than in the previous
// one, and as removed in the opposite case. Good enough to answer "what
// appeared or disappeared since the last capture" without quadratic cost.
func Diff(prev, curr string) *DiffResult {
	prevCounts := lineCounts(prev)
	currCounts := lineCounts(curr)

	result := &DiffResult{}

	remaining := make(map[string]int, len(prevCounts))
	for k, v := range prevCounts {
		remaining[k] = v
	}
	for i, line := range splitLines(curr) {
		key := strings.TrimSpace(line)
		if key == "" {
			continue
		}
		if remaining[key] > 0 {
			remaining[key]--
			continue
		}
		result.Added = append(result.Added, DiffLine{
			LineNum: i,
			Line:    line,
			Ref:     outline.ExtractRef(line),
		})
	}

	gone := make(map[string]int, len(currCounts))
	for k, v := range currCounts {
		gone[k] = v
	}
	for i, line := range splitLines(prev) {
		key := strings.TrimSpace(line)
		if key == "" {
			continue
		}
		if gone[key] > 0 {
			gone[key]--
			continue
		}
		result.Removed = append(result.Removed, DiffLine{
			LineNum: i,
			Line:    line,
			Ref:     outline.ExtractRef(line),
		})
	}

	return result
}

func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func lineCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, line := range splitLines(text) {
		key := strings.TrimSpace(line)
		if key == "" {
			continue
		}
		counts[key]++
	}
	return counts
}
