package outline

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Generator runs the full compression pipeline: wrapper removal, text
// truncation, run folding, and line-budget enforcement. It is stateless
// across calls; every Generate builds its own PageStructure and
// Fingerprinter.
type Generator struct {
	logger *zap.Logger
}

// NewGenerator returns a Generator logging through the given logger.
// A nil logger disables logging.
func NewGenerator(logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{logger: logger}
}

// Generate compresses one raw outline snapshot. It never fails: malformed
// input degrades to verbatim pass-through of unrecognized lines, and every
// degenerate input (empty string, single line, broken indentation) produces
// a best-effort result.
func (g *Generator) Generate(raw string, opts Options) *Result {
	opts.ApplyDefaults()

	page := BuildTree(raw)
	page.Roots = spliceWrappers(page.Roots, nil)

	fp := NewFingerprinter()
	if opts.Mode == ModeSmart {
		g.foldLevel(page, fp, page.Roots, opts.FoldThreshold)
	}

	scorePriorities(page)

	entries := serialize(page, opts)
	live := enforceBudget(entries, opts.MaxLines)

	lines := make([]string, 0, live)
	for _, e := range entries {
		if !e.dropped {
			lines = append(lines, e.text)
		}
	}
	if len(lines) > opts.MaxLines {
		lines = lines[:opts.MaxLines]
	}

	result := &Result{
		Output:   strings.Join(lines, "\n"),
		Page:     page,
		LinesIn:  page.TotalLines,
		LinesOut: len(lines),
		Groups:   len(page.Groups),
	}
	for _, grp := range page.Groups {
		result.FoldedRefs += len(grp.Refs)
	}

	g.logger.Debug("snapshot compressed",
		zap.Int("lines_in", result.LinesIn),
		zap.Int("lines_out", result.LinesOut),
		zap.Int("groups", result.Groups),
		zap.String("mode", string(opts.Mode)))

	return result
}

// isWrapper reports whether a node is structurally vacuous: no own text, a
// role with no significance of its own, and exactly one child.
func isWrapper(n *Node) bool {
	return n.Text == "" && len(n.Children) == 1 && vacuousTypes[n.Type]
}

// spliceWrappers elides vacuous wrapper nodes from a child list, splicing
// each wrapper's single child into its position. The pass repeats until the
// level is stable (a wrapper's child may itself be a wrapper), then recurses.
func spliceWrappers(list []*Node, parent *Node) []*Node {
	for {
		changed := false
		for i, n := range list {
			if isWrapper(n) {
				child := n.Children[0]
				child.parent = parent
				list[i] = child
				changed = true
			}
		}
		if !changed {
			break
		}
	}
	for _, n := range list {
		n.Children = spliceWrappers(n.Children, n)
	}
	return list
}

// foldLevel runs the run detector over one sibling level, records the
// resulting groups on the page, and recurses into unfolded children.
// Folded subtrees are not descended into: the fold line replaces them
// entirely.
func (g *Generator) foldLevel(page *PageStructure, fp *Fingerprinter, list []*Node, threshold int) {
	for _, run := range fp.FindAllSimilarSequences(list, threshold) {
		first := run.Members[0]
		last := run.Members[len(run.Members)-1]
		grp := &Group{
			ID:        fmt.Sprintf("g%d", len(page.Groups)+1),
			Type:      first.Type,
			Depth:     first.Depth,
			Count:     len(run.Members),
			FirstLine: first.LineNum,
			LastLine:  last.LineNum,
		}
		for i, m := range run.Members {
			m.Folded = true
			m.GroupID = grp.ID
			if i < maxGroupSamples {
				grp.Samples = append(grp.Samples, m)
			}
			if m.Ref != "" {
				grp.Refs = append(grp.Refs, m.Ref)
			}
		}
		page.Groups = append(page.Groups, grp)
	}

	for _, n := range list {
		if !n.Folded {
			g.foldLevel(page, fp, n.Children, threshold)
		}
	}
}

// scorePriorities assigns every node its budget-enforcement score and
// records the ascending priority order on the page. Folded members score
// zero; their group line carries the priority instead.
func scorePriorities(page *PageStructure) {
	for _, n := range page.Nodes {
		n.Priority = priorityOf(n)
	}
	page.ByPriority = append([]*Node(nil), page.Nodes...)
	sort.SliceStable(page.ByPriority, func(i, j int) bool {
		return page.ByPriority[i].Priority < page.ByPriority[j].Priority
	})
}

// priorityOf scores a node 0-10. Interactivity and text raise the score,
// depth lowers it.
func priorityOf(n *Node) int {
	if n.Folded {
		return 0
	}
	p := 4
	if n.IsInteractive() || strings.Contains(n.Line, cursorMarker) {
		p += 3
	}
	if n.Text != "" {
		p += 2
	}
	p -= n.Depth / 2
	if p < 0 {
		p = 0
	}
	if p > 10 {
		p = 10
	}
	return p
}

// groupPriority protects fold lines from budget drops. Groups are already
// compressed; dropping one loses every member's reference token at once.
const groupPriority = 10

// emitEntry is one candidate output line during serialization and budget
// enforcement.
type emitEntry struct {
	node     *Node
	group    *Group
	text     string
	parent   *emitEntry
	children int // live child entries; a parent is droppable only at zero
	priority int
	dropped  bool
}

// serialize walks the tree top-down and renders one entry per surviving
// node, plus one synthetic fold line per group at the position of its first
// member. Folded members and their subtrees emit nothing else.
func serialize(page *PageStructure, opts Options) []*emitEntry {
	groups := make(map[string]*Group, len(page.Groups))
	for _, grp := range page.Groups {
		groups[grp.ID] = grp
	}

	var entries []*emitEntry
	emitted := make(map[string]bool, len(page.Groups))

	var walk func(list []*Node, level int, parent *emitEntry)
	walk = func(list []*Node, level int, parent *emitEntry) {
		for _, n := range list {
			if n.Folded {
				if emitted[n.GroupID] {
					continue
				}
				emitted[n.GroupID] = true
				grp := groups[n.GroupID]
				e := &emitEntry{
					group:    grp,
					text:     renderFoldLine(grp, level, opts),
					parent:   parent,
					priority: groupPriority,
				}
				entries = append(entries, e)
				if parent != nil {
					parent.children++
				}
				continue
			}

			e := &emitEntry{
				node:     n,
				text:     renderLine(n, level, opts),
				parent:   parent,
				priority: n.Priority,
			}
			entries = append(entries, e)
			if parent != nil {
				parent.children++
			}
			walk(n.Children, level+1, e)
		}
	}
	walk(page.Roots, 0, nil)

	return entries
}

// renderLine re-emits a node's source line, re-indented for its effective
// level unless PreserveStructure keeps the original indentation, with text
// beyond the limit truncated in place. The reference token is never touched.
func renderLine(n *Node, level int, opts Options) string {
	content := strings.TrimLeft(n.Line, " \t")
	if text := []rune(n.Text); len(text) > opts.TextLimit {
		truncated := string(text[:opts.TextLimit])
		marker := fmt.Sprintf(" (+%d more chars)", len(text)-opts.TextLimit)
		content = strings.Replace(content, `"`+n.Text+`"`, `"`+truncated+`"`+marker, 1)
	}
	return indentFor(n.Depth, level, opts) + content
}

// renderFoldLine produces the synthetic line replacing a folded run:
//
//	- <type> "<sample text>" (... and <N-1> more similar) [refs: t1, t2, ...]
//
// The quoted sample text is omitted when the first sample has none, and the
// refs block is omitted when no member carried a reference token.
func renderFoldLine(grp *Group, level int, opts Options) string {
	var sb strings.Builder
	sb.WriteString(indentFor(grp.Depth, level, opts))
	sb.WriteString("- ")
	sb.WriteString(grp.Type)

	if len(grp.Samples) > 0 && grp.Samples[0].Text != "" {
		text := []rune(grp.Samples[0].Text)
		if len(text) > opts.TextLimit {
			text = text[:opts.TextLimit]
		}
		fmt.Fprintf(&sb, " %q", string(text))
	}

	fmt.Fprintf(&sb, " (... and %d more similar)", grp.Count-1)

	if len(grp.Refs) > 0 {
		sb.WriteString(" [refs: ")
		sb.WriteString(strings.Join(grp.Refs, ", "))
		sb.WriteString("]")
	}

	return sb.String()
}

// indentFor picks the output indentation: the original depth when structure
// is preserved, otherwise the node's effective level after splicing.
func indentFor(depth, level int, opts Options) string {
	if opts.PreserveStructure {
		return strings.Repeat("  ", depth)
	}
	return strings.Repeat("  ", level)
}

// enforceBudget drops entries in ascending priority order until the live
// count fits maxLines. A parent is droppable only once all of its emitted
// children are dropped, and group lines are never dropped. Returns the live
// entry count.
func enforceBudget(entries []*emitEntry, maxLines int) int {
	live := len(entries)
	for live > maxLines {
		var victim *emitEntry
		for _, e := range entries {
			if e.dropped || e.group != nil || e.children > 0 {
				continue
			}
			if victim == nil || e.priority < victim.priority {
				victim = e
			}
		}
		if victim == nil {
			break
		}
		victim.dropped = true
		if victim.parent != nil {
			victim.parent.children--
		}
		live--
	}
	return live
}
