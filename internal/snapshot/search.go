package snapshot

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/SJMakin/even-better-playwright-mcp/internal/outline"
)

// Match is one search hit: the matching line, its position, and the
// reference token it carries, if any.
type Match struct {
	LineNum int    `json:"line"`
	Line    string `json:"text"`
	Ref     string `json:"ref,omitempty"`
}

// Search runs a regex over a snapshot, one line at a time. An
// uncompilable pattern returns ErrInvalidPattern wrapped around the
// compiler's message; this is a reported condition, not a crash.
func Search(text, pattern string) ([]Match, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}

	var matches []Match
	for i, line := range strings.Split(text, "\n") {
		if re.MatchString(line) {
			matches = append(matches, Match{
				LineNum: i,
				Line:    line,
				Ref:     outline.ExtractRef(line),
			})
		}
	}
	return matches, nil
}
