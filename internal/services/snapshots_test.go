package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SJMakin/even-better-playwright-mcp/internal/outline"
	"github.com/SJMakin/even-better-playwright-mcp/internal/snapshot"
)

func testService(t *testing.T) *Snapshots {
	t.Helper()
	svc, err := NewSnapshots(outline.Options{}, 16, nil)
	require.NoError(t, err)
	return svc
}

func rowSnapshot(rows int) string {
	var sb strings.Builder
	sb.WriteString("- list [ref=e1]:\n")
	for i := 1; i <= rows; i++ {
		fmt.Fprintf(&sb, "  - listitem \"Row %d\" [ref=e%d]\n", i, i+1)
	}
	return strings.TrimRight(sb.String(), "\n")
}

func TestCompress_FoldsAndStores(t *testing.T) {
	svc := testService(t)

	res, err := svc.Compress(context.Background(), CompressRequest{
		Snapshot:   rowSnapshot(10),
		SessionKey: "tab-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.SnapshotID)
	assert.Equal(t, 11, res.LinesIn)
	assert.Equal(t, 2, res.LinesOut)
	assert.Equal(t, 1, res.Groups)
	assert.Equal(t, 10, res.FoldedRefs)

	entry, ok := svc.Store().Get("tab-1")
	require.True(t, ok)
	assert.Equal(t, res.SnapshotID, entry.ID)
	assert.Equal(t, res.Outline, entry.Compressed)
}

func TestCompress_EmptySnapshot(t *testing.T) {
	svc := testService(t)
	_, err := svc.Compress(context.Background(), CompressRequest{})
	assert.Error(t, err)
}

func TestCompress_OverridesDefaults(t *testing.T) {
	svc, err := NewSnapshots(outline.Options{MaxLines: 100}, 16, nil)
	require.NoError(t, err)

	res, err := svc.Compress(context.Background(), CompressRequest{
		Snapshot: rowSnapshot(10),
		MaxLines: 5,
		Mode:     "simple",
	})
	require.NoError(t, err)
	assert.Zero(t, res.Groups)
	assert.LessOrEqual(t, res.LinesOut, 5)
}

func TestSearch_StoredSnapshot(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.Compress(ctx, CompressRequest{
		Snapshot:   rowSnapshot(5),
		SessionKey: "tab-1",
	})
	require.NoError(t, err)

	matches, err := svc.Search(ctx, SearchRequest{
		Pattern:    `Row [23]`,
		SessionKey: "tab-1",
	})
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "e3", matches[0].Ref)
}

func TestSearch_MissingSession(t *testing.T) {
	svc := testService(t)

	_, err := svc.Search(context.Background(), SearchRequest{
		Pattern:    "anything",
		SessionKey: "never-seen",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, snapshot.ErrNotFound))
}

func TestSearch_InvalidPattern(t *testing.T) {
	svc := testService(t)

	_, err := svc.Search(context.Background(), SearchRequest{
		Pattern:  "([unclosed",
		Snapshot: "- text",
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, snapshot.ErrInvalidPattern))
}

func TestDiff_FirstCaptureThenChanges(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	res, err := svc.Diff(ctx, DiffRequest{
		Snapshot:   "- text \"a\" [ref=e1]\n- text \"b\" [ref=e2]",
		SessionKey: "tab-1",
	})
	require.NoError(t, err)
	assert.True(t, res.FirstSnapshot)

	res, err = svc.Diff(ctx, DiffRequest{
		Snapshot:   "- text \"a\" [ref=e1]\n- text \"c\" [ref=e3]",
		SessionKey: "tab-1",
	})
	require.NoError(t, err)
	assert.False(t, res.FirstSnapshot)
	require.Len(t, res.Added, 1)
	assert.Equal(t, "e3", res.Added[0].Ref)
	require.Len(t, res.Removed, 1)
	assert.Equal(t, "e2", res.Removed[0].Ref)
}

func TestDiff_SessionsAreIsolated(t *testing.T) {
	svc := testService(t)
	ctx := context.Background()

	_, err := svc.Diff(ctx, DiffRequest{Snapshot: "- text \"a\"", SessionKey: "tab-1"})
	require.NoError(t, err)

	res, err := svc.Diff(ctx, DiffRequest{Snapshot: "- text \"a\"", SessionKey: "tab-2"})
	require.NoError(t, err)
	assert.True(t, res.FirstSnapshot)
}
