package outline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTree_Basic(t *testing.T) {
	raw := `- navigation [ref=e1]:
  - link "Home" [ref=e2] [cursor=pointer]
  - link "About" [ref=e3]
- main [ref=e4]:
  - heading "Welcome" [ref=e5]`

	page := BuildTree(raw)

	require.Len(t, page.Roots, 2)
	nav := page.Roots[0]
	assert.Equal(t, "navigation", nav.Type)
	assert.Equal(t, "e1", nav.Ref)
	require.Len(t, nav.Children, 2)
	assert.Equal(t, "Home", nav.Children[0].Text)
	assert.Equal(t, "e2", nav.Children[0].Ref)
	assert.Equal(t, "About", nav.Children[1].Text)

	main := page.Roots[1]
	require.Len(t, main.Children, 1)
	assert.Equal(t, "heading", main.Children[0].Type)
	assert.Same(t, main, main.Children[0].Parent())

	assert.Equal(t, 5, page.TotalLines)
	assert.Same(t, nav, page.ByRef["e1"])
	assert.Same(t, main.Children[0], page.ByLine[4])
}

func TestBuildTree_VerbatimLines(t *testing.T) {
	raw := "- list [ref=e1]:\n  - listitem \"x\" [ref=e2]"
	page := BuildTree(raw)

	require.Len(t, page.Nodes, 2)
	assert.Equal(t, "- list [ref=e1]:", page.Nodes[0].Line)
	assert.Equal(t, "  - listitem \"x\" [ref=e2]", page.Nodes[1].Line)
}

func TestBuildTree_DepthJumpClamps(t *testing.T) {
	// Depth jumps from 0 straight to 3: the deep line attaches to the
	// nearest valid ancestor instead of failing.
	raw := `- list [ref=e1]:
      - listitem "orphan" [ref=e2]`

	page := BuildTree(raw)

	require.Len(t, page.Roots, 1)
	require.Len(t, page.Roots[0].Children, 1)
	assert.Equal(t, "e2", page.Roots[0].Children[0].Ref)
}

func TestBuildTree_SiblingAfterDeepSubtree(t *testing.T) {
	raw := `- list [ref=e1]:
  - listitem [ref=e2]:
    - text "deep" [ref=e3]
  - listitem [ref=e4]`

	page := BuildTree(raw)

	require.Len(t, page.Roots, 1)
	require.Len(t, page.Roots[0].Children, 2)
	assert.Equal(t, "e4", page.Roots[0].Children[1].Ref)
}

func TestBuildTree_DegenerateInputs(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		roots int
	}{
		{"empty", "", 0},
		{"single line", `- button "OK" [ref=e1]`, 1},
		{"blank lines", "- text \"a\" [ref=e1]\n\n- text \"b\" [ref=e2]", 2},
		{"no ref marker", `- text "unreferenced"`, 1},
		{"free text", "something that is not an outline", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			page := BuildTree(tt.raw)
			assert.Len(t, page.Roots, tt.roots)
		})
	}
}

func TestBuildTree_NoRefStillParsed(t *testing.T) {
	page := BuildTree(`- text "unreferenced"`)

	require.Len(t, page.Roots, 1)
	assert.Equal(t, "text", page.Roots[0].Type)
	assert.Empty(t, page.Roots[0].Ref)
	assert.Empty(t, page.ByRef)
}
