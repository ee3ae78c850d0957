package outline

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var refsBlock = regexp.MustCompile(`\[refs: ([^\]]+)\]`)

func foldedRefs(t *testing.T, line string) []string {
	t.Helper()
	m := refsBlock.FindStringSubmatch(line)
	require.NotNil(t, m, "no refs block in %q", line)
	return strings.Split(m[1], ", ")
}

func TestGenerate_FoldsProductList(t *testing.T) {
	g := NewGenerator(nil)
	res := g.Generate(productList(50), Options{})

	lines := strings.Split(res.Output, "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "- list [ref=e1]:", lines[0])

	fold := lines[1]
	assert.Contains(t, fold, "- listitem")
	assert.Contains(t, fold, `"Product 1"`)
	assert.Contains(t, fold, "(... and 49 more similar)")

	refs := foldedRefs(t, fold)
	require.Len(t, refs, 50)
	assert.Equal(t, "e2", refs[0])
	assert.Equal(t, "e51", refs[49])

	require.Len(t, res.Page.Groups, 1)
	grp := res.Page.Groups[0]
	assert.Equal(t, 50, grp.Count)
	assert.Equal(t, "listitem", grp.Type)
	assert.Len(t, grp.Samples, 3)
	assert.Equal(t, 50, res.FoldedRefs)
}

func TestGenerate_TwoGroupsDisjoint(t *testing.T) {
	raw := `- list [ref=e0]:
  - listitem "a1" [ref=e1]
  - listitem "a2" [ref=e2]
  - listitem "a3" [ref=e3]
  - separator [ref=e4]
  - listitem "b1" [ref=e5]
  - listitem "b2" [ref=e6]
  - listitem "b3" [ref=e7]`

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{})

	require.Len(t, res.Page.Groups, 2)
	seen := make(map[string]bool)
	for _, grp := range res.Page.Groups {
		assert.Equal(t, 3, grp.Count)
		for _, ref := range grp.Refs {
			assert.False(t, seen[ref], "ref %s in two groups", ref)
			seen[ref] = true
		}
	}

	// Separator line survives unfolded between the two fold lines.
	assert.Contains(t, res.Output, "- separator [ref=e4]")
}

func TestGenerate_ShortSiblingListsNeverFold(t *testing.T) {
	raw := `- list [ref=e1]:
  - listitem "a" [ref=e2]
  - listitem "b" [ref=e3]`

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{})

	assert.Empty(t, res.Page.Groups)
	assert.Equal(t, 3, res.LinesOut)
}

func TestGenerate_SimpleModeSkipsFolding(t *testing.T) {
	g := NewGenerator(nil)
	res := g.Generate(productList(50), Options{Mode: ModeSimple})

	assert.Empty(t, res.Page.Groups)
	assert.Equal(t, 51, res.LinesOut)
}

func TestGenerate_IdempotentOnOwnOutput(t *testing.T) {
	g := NewGenerator(nil)
	first := g.Generate(productList(50), Options{})

	second := g.Generate(first.Output, Options{Mode: ModeSimple})
	assert.Equal(t, first.Output, second.Output,
		"simple-mode pass over compressed output must not shrink it")
}

func TestGenerate_WrapperRemoval(t *testing.T) {
	raw := `- generic [ref=e1]:
  - generic [ref=e2]:
    - button "Go" [ref=e3]`

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{})

	// Both wrappers elide; the button surfaces as a root.
	assert.Equal(t, `- button "Go" [ref=e3]`, res.Output)
}

func TestGenerate_WrapperWithTextKept(t *testing.T) {
	raw := `- generic "labelled" [ref=e1]:
  - button "Go" [ref=e2]`

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{})

	lines := strings.Split(res.Output, "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "labelled")
}

func TestGenerate_PreserveStructureKeepsIndentation(t *testing.T) {
	raw := `- generic [ref=e1]:
  - button "Go" [ref=e2]`

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{PreserveStructure: true})

	// The wrapper elides but the button keeps its original depth.
	assert.Equal(t, `  - button "Go" [ref=e2]`, res.Output)
}

func TestGenerate_TextTruncation(t *testing.T) {
	long := strings.Repeat("A", 60)
	raw := `- text "` + long + `" [ref=e9]`

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{})

	assert.Contains(t, res.Output, `"`+strings.Repeat("A", 50)+`" (+10 more chars)`)
	assert.NotContains(t, res.Output, strings.Repeat("A", 51))
	assert.Contains(t, res.Output, "[ref=e9]", "truncation must not touch the ref token")
}

func TestGenerate_BudgetCap(t *testing.T) {
	raw := `- heading "Title" [ref=e1]
- button "Save" [ref=e2]
- text "filler one" [ref=e3]
- text "filler two" [ref=e4]`

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{MaxLines: 2})

	lines := strings.Split(res.Output, "\n")
	assert.LessOrEqual(t, len(lines), 2)
	assert.Contains(t, res.Output, "- button", "highest-priority node must survive")
}

func TestGenerate_BudgetKeepsParentsOfLiveChildren(t *testing.T) {
	raw := `- list [ref=e1]:
  - button "A" [ref=e2]
  - button "B" [ref=e3]`

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{MaxLines: 2})

	lines := strings.Split(res.Output, "\n")
	require.Len(t, lines, 2)
	// The low-priority list line is not droppable while a child remains.
	assert.Contains(t, lines[0], "- list")
	assert.Contains(t, lines[1], "- button")
}

func TestGenerate_BudgetNeverDropsGroups(t *testing.T) {
	raw := productList(50) + "\n- text \"footer\" [ref=e99]"

	g := NewGenerator(nil)
	res := g.Generate(raw, Options{MaxLines: 2})

	assert.Contains(t, res.Output, "[refs: ", "fold line is protected from budget drops")
	assert.LessOrEqual(t, res.LinesOut, 2)
}

func TestGenerate_DegenerateInputs(t *testing.T) {
	g := NewGenerator(nil)

	tests := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"whitespace", "   \n  \n"},
		{"garbage", "<<<not an outline>>>"},
		{"broken indent", "      - text \"floating\" [ref=e1]\n- text \"root\" [ref=e2]"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.NotPanics(t, func() {
				res := g.Generate(tt.raw, Options{})
				assert.NotNil(t, res)
			})
		})
	}
}

func TestGenerate_PassthroughVerbatim(t *testing.T) {
	raw := "some unrecognized line"
	g := NewGenerator(nil)
	res := g.Generate(raw, Options{})

	assert.Equal(t, raw, res.Output)
}

func TestGenerate_Stats(t *testing.T) {
	g := NewGenerator(nil)
	res := g.Generate(productList(50), Options{})

	assert.Equal(t, 51, res.LinesIn)
	assert.Equal(t, 2, res.LinesOut)
	assert.Equal(t, 1, res.Groups)
	assert.Equal(t, 50, res.FoldedRefs)
}
