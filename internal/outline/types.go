package outline

// Mode selects how much of the compression pipeline runs.
type Mode string

const (
	// ModeSmart runs the full pipeline: wrapper removal, truncation,
	// run folding, and budget enforcement.
	ModeSmart Mode = "smart"

	// ModeSimple runs only wrapper removal and truncation. Fold detection
	// is skipped, which also makes ModeSimple safe to re-run on already
	// compressed output.
	ModeSimple Mode = "simple"
)

// Default pipeline limits.
const (
	DefaultMaxLines      = 400
	DefaultFoldThreshold = 3
	DefaultTextLimit     = 50

	// minRunLength is the smallest sibling run that is ever folded.
	minRunLength = 3

	// maxGroupSamples is how many member nodes a Group keeps verbatim.
	maxGroupSamples = 3
)

// Options configures one compression pass.
type Options struct {
	// MaxLines is the hard cap on emitted lines. Zero means DefaultMaxLines.
	MaxLines int `json:"max_lines,omitempty"`

	// Mode is "smart" or "simple". Empty means smart.
	Mode Mode `json:"mode,omitempty"`

	// PreserveStructure keeps the original indentation of every emitted
	// line, even for lines whose ancestors were elided or folded.
	PreserveStructure bool `json:"preserve_structure,omitempty"`

	// FoldThreshold is the maximum Hamming distance (bits out of 32)
	// between two fingerprints that still counts as similar.
	// Zero means DefaultFoldThreshold.
	FoldThreshold int `json:"fold_threshold,omitempty"`

	// TextLimit is the longest text excerpt emitted before truncation.
	// Zero means DefaultTextLimit.
	TextLimit int `json:"text_limit,omitempty"`
}

// ApplyDefaults fills zero-valued fields with pipeline defaults.
func (o *Options) ApplyDefaults() {
	if o.MaxLines <= 0 {
		o.MaxLines = DefaultMaxLines
	}
	if o.Mode == "" {
		o.Mode = ModeSmart
	}
	if o.FoldThreshold <= 0 {
		o.FoldThreshold = DefaultFoldThreshold
	}
	if o.TextLimit <= 0 {
		o.TextLimit = DefaultTextLimit
	}
}

// Node is one parsed outline entry. Nodes are owned top-down: a parent owns
// its Children slice, and the parent pointer is a non-owning back-reference
// used only for contextual lookups such as wrapper splicing.
type Node struct {
	// ID is the node's index in the PageStructure arena. Stable for the
	// lifetime of one snapshot; used as the fingerprint cache key.
	ID int

	// Depth is the nesting depth derived from the source indentation.
	Depth int

	// Type is the element role label, e.g. "listitem" or "button".
	Type string

	// Ref is the stable reference token from the [ref=...] marker,
	// empty when the line carries none.
	Ref string

	// Text is the quoted text excerpt from the line, if any.
	Text string

	// Line is the verbatim source line. Later stages re-emit it
	// unchanged unless the node is folded or its text truncated.
	Line string

	// LineNum is the zero-based line number in the raw snapshot.
	LineNum int

	// Children in document order. Order is meaningful: run detection
	// relies on sibling adjacency.
	Children []*Node

	// Priority is the budget-enforcement score, 0 (first to drop)
	// through 10 (last to drop).
	Priority int

	// Folded marks a node absorbed into a Group.
	Folded bool

	// GroupID is set once the node belongs to a fold group.
	GroupID string

	parent *Node
}

// Parent returns the node's parent, or nil for roots.
func (n *Node) Parent() *Node { return n.parent }

// Group is the result of folding one detected run of similar siblings.
type Group struct {
	// ID identifies the group within one snapshot.
	ID string

	// Type is the members' shared element type.
	Type string

	// Depth is the members' shared nesting depth.
	Depth int

	// Count is the total number of folded members.
	Count int

	// Samples holds up to maxGroupSamples member nodes kept verbatim.
	Samples []*Node

	// Refs is the ordered list of reference tokens of all members that
	// carried one. Members without a [ref=...] marker fold silently.
	Refs []string

	// FirstLine and LastLine are the source line span the run occupied.
	FirstLine int
	LastLine  int
}

// PageStructure is one parsed-and-analyzed snapshot. It is built fresh per
// compression call, read-only once built, and discarded afterwards.
type PageStructure struct {
	// Roots are the top-level nodes in document order.
	Roots []*Node

	// Nodes is the arena: every node indexed by its ID.
	Nodes []*Node

	// ByRef maps reference tokens to nodes.
	ByRef map[string]*Node

	// ByLine maps original line numbers to nodes.
	ByLine map[int]*Node

	// Groups holds the fold groups detected during generation.
	Groups []*Group

	// ByPriority lists nodes in ascending priority order, computed
	// before budget enforcement.
	ByPriority []*Node

	// TotalLines is the raw snapshot's line count.
	TotalLines int
}

// Result is the outcome of one Generate call.
type Result struct {
	// Output is the compressed outline, newline-delimited.
	Output string `json:"output"`

	// Page is the analyzed snapshot backing the output.
	Page *PageStructure `json:"-"`

	// LinesIn and LinesOut measure the compression.
	LinesIn  int `json:"lines_in"`
	LinesOut int `json:"lines_out"`

	// Groups is the number of fold groups produced.
	Groups int `json:"groups"`

	// FoldedRefs is the total number of reference tokens absorbed into
	// fold lines.
	FoldedRefs int `json:"folded_refs"`
}

// interactiveTypes are roles that can be acted on. They weigh into both the
// fingerprint's interactive feature and the priority score.
var interactiveTypes = map[string]bool{
	"button":     true,
	"link":       true,
	"checkbox":   true,
	"radio":      true,
	"textbox":    true,
	"searchbox":  true,
	"combobox":   true,
	"listbox":    true,
	"slider":     true,
	"spinbutton": true,
	"switch":     true,
	"tab":        true,
	"menuitem":   true,
	"option":     true,
}

// vacuousTypes are structural wrappers with no role of their own. A vacuous
// node with no text and exactly one child is elided during generation.
var vacuousTypes = map[string]bool{
	"generic":      true,
	"group":        true,
	"none":         true,
	"presentation": true,
	"div":          true,
	"span":         true,
	"section":      true,
	"container":    true,
}

// IsInteractive reports whether the node's own type is actionable.
func (n *Node) IsInteractive() bool { return interactiveTypes[n.Type] }
