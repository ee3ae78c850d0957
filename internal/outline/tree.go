package outline

import (
	"regexp"
	"strings"
)

var (
	refPattern  = regexp.MustCompile(`\[ref=([^\]]+)\]`)
	textPattern = regexp.MustCompile(`"((?:[^"\\]|\\.)*)"`)
)

// ExtractRef returns the [ref=...] token carried by a line, or "" when the
// line has none.
func ExtractRef(line string) string {
	if m := refPattern.FindStringSubmatch(line); m != nil {
		return m[1]
	}
	return ""
}

// BuildTree parses raw outline text into a PageStructure. One node per line;
// a line's leading whitespace encodes its depth (two columns per level,
// tolerant of odd widths). A line at depth D attaches as the last child of
// the most recently seen node at depth D-1. Malformed depth jumps clamp to
// the nearest valid ancestor instead of failing; a line with no ancestor
// becomes a new root. Blank lines are skipped.
//
// The verbatim source line is kept on every node because later stages
// re-emit it unchanged unless the node is folded or its text truncated.
func BuildTree(raw string) *PageStructure {
	page := &PageStructure{
		ByRef:  make(map[string]*Node),
		ByLine: make(map[int]*Node),
	}
	if raw == "" {
		return page
	}

	lines := strings.Split(raw, "\n")
	page.TotalLines = len(lines)

	// lastAt[d] is the most recently attached node at depth d.
	var lastAt []*Node

	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}

		depth := indentDepth(line)
		node := parseLine(line, i, depth)
		node.ID = len(page.Nodes)
		page.Nodes = append(page.Nodes, node)
		page.ByLine[i] = node
		if node.Ref != "" {
			page.ByRef[node.Ref] = node
		}

		// Attach to the nearest ancestor: the deepest tracked node
		// strictly above this depth. Clamps non-monotonic jumps.
		var parent *Node
		for d := depth - 1; d >= 0; d-- {
			if d < len(lastAt) && lastAt[d] != nil {
				parent = lastAt[d]
				break
			}
		}
		if parent != nil {
			node.parent = parent
			parent.Children = append(parent.Children, node)
		} else {
			page.Roots = append(page.Roots, node)
		}

		// Record this node at its depth and invalidate deeper slots so
		// later lines cannot attach under a closed subtree.
		for len(lastAt) <= depth {
			lastAt = append(lastAt, nil)
		}
		lastAt[depth] = node
		for d := depth + 1; d < len(lastAt); d++ {
			lastAt[d] = nil
		}
	}

	return page
}

// indentDepth derives nesting depth from a line's leading whitespace.
// Tabs count as one level each, spaces as half a level (snapshots indent
// with two spaces per level).
func indentDepth(line string) int {
	cols := 0
	for _, r := range line {
		switch r {
		case ' ':
			cols++
		case '\t':
			cols += 2
		default:
			return cols / 2
		}
	}
	return cols / 2
}

// parseLine extracts the type label, text excerpt, and reference token from
// one outline line. Unrecognized lines still become nodes; they just carry
// an empty type or ref and pass through the pipeline verbatim.
func parseLine(line string, lineNum, depth int) *Node {
	node := &Node{
		Depth:   depth,
		Line:    line,
		LineNum: lineNum,
	}

	content := strings.TrimSpace(line)
	content = strings.TrimPrefix(content, "- ")

	// Type is the first bare token, stripped of a trailing colon.
	if end := strings.IndexAny(content, " \t"); end >= 0 {
		node.Type = content[:end]
	} else {
		node.Type = content
	}
	node.Type = strings.TrimSuffix(node.Type, ":")

	if m := textPattern.FindStringSubmatch(content); m != nil {
		node.Text = m[1]
	}
	node.Ref = ExtractRef(content)

	return node
}
