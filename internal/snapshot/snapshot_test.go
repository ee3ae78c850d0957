package snapshot

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_PutAndGet(t *testing.T) {
	store, err := NewStore(4)
	require.NoError(t, err)

	entry, prev := store.Put("tab-1", "- text \"a\" [ref=e1]", "- text \"a\" [ref=e1]")
	assert.Nil(t, prev)
	assert.NotEmpty(t, entry.ID)

	got, ok := store.Get("tab-1")
	require.True(t, ok)
	assert.Equal(t, entry.ID, got.ID)
}

func TestStore_PutReturnsPrevious(t *testing.T) {
	store, err := NewStore(4)
	require.NoError(t, err)

	first, _ := store.Put("tab-1", "v1", "v1")
	second, prev := store.Put("tab-1", "v2", "v2")

	require.NotNil(t, prev)
	assert.Equal(t, first.ID, prev.ID)
	assert.NotEqual(t, first.ID, second.ID)
	assert.Equal(t, "v1", prev.Raw)
}

func TestStore_EvictsOldSessions(t *testing.T) {
	store, err := NewStore(2)
	require.NoError(t, err)

	store.Put("a", "x", "x")
	store.Put("b", "x", "x")
	store.Put("c", "x", "x")

	_, ok := store.Get("a")
	assert.False(t, ok)
	assert.Equal(t, 2, store.Len())
}

func TestSearch_Basic(t *testing.T) {
	text := `- button "Save" [ref=e1]
- button "Cancel" [ref=e2]
- text "unrelated"`

	matches, err := Search(text, `button "(Save|Cancel)"`)
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, 0, matches[0].LineNum)
	assert.Equal(t, "e1", matches[0].Ref)
	assert.Equal(t, "e2", matches[1].Ref)
}

func TestSearch_NoRefOnMatch(t *testing.T) {
	matches, err := Search(`- text "hello"`, "hello")
	require.NoError(t, err)
	require.Len(t, matches, 1)
	assert.Empty(t, matches[0].Ref)
}

func TestSearch_InvalidPatternIsReported(t *testing.T) {
	_, err := Search("- text", "([unclosed")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidPattern))
	assert.Contains(t, err.Error(), "invalid search pattern")
}

func TestDiff_AddedAndRemoved(t *testing.T) {
	prev := `- list [ref=e1]:
  - listitem "a" [ref=e2]
  - listitem "b" [ref=e3]`
	curr := `- list [ref=e1]:
  - listitem "a" [ref=e2]
  - listitem "c" [ref=e4]`

	d := Diff(prev, curr)

	require.Len(t, d.Added, 1)
	assert.Equal(t, "e4", d.Added[0].Ref)
	require.Len(t, d.Removed, 1)
	assert.Equal(t, "e3", d.Removed[0].Ref)
}

func TestDiff_IgnoresIndentation(t *testing.T) {
	d := Diff(`    - text "x" [ref=e1]`, `- text "x" [ref=e1]`)
	assert.True(t, d.Empty())
}

func TestDiff_Identical(t *testing.T) {
	text := "- text \"x\" [ref=e1]\n- text \"y\" [ref=e2]"
	assert.True(t, Diff(text, text).Empty())
}

func TestDiff_EmptyPrevious(t *testing.T) {
	d := Diff("", `- text "x" [ref=e1]`)
	require.Len(t, d.Added, 1)
	assert.Empty(t, d.Removed)
}
