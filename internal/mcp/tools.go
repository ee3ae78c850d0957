package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/SJMakin/even-better-playwright-mcp/internal/services"
	"github.com/SJMakin/even-better-playwright-mcp/internal/snapshot"
)

type compressInput struct {
	Snapshot          string `json:"snapshot" jsonschema:"Raw outline snapshot text, one element per line with [ref=...] markers"`
	SessionKey        string `json:"session_key,omitempty" jsonschema:"Session key grouping successive snapshots of one page (default: 'default')"`
	MaxLines          int    `json:"max_lines,omitempty" jsonschema:"Hard cap on emitted lines (default from server config)"`
	Mode              string `json:"mode,omitempty" jsonschema:"Compression mode: 'smart' (full pipeline) or 'simple' (wrapper removal and truncation only)"`
	PreserveStructure bool   `json:"preserve_structure,omitempty" jsonschema:"Keep original indentation in output"`
	FoldThreshold     int    `json:"fold_threshold,omitempty" jsonschema:"Similarity threshold in bits, 0-32 (default 3)"`
}

type compressOutput struct {
	Outline    string `json:"outline" jsonschema:"Compressed outline text"`
	SnapshotID string `json:"snapshot_id" jsonschema:"Identifier of the stored snapshot capture"`
	LinesIn    int    `json:"lines_in" jsonschema:"Raw snapshot line count"`
	LinesOut   int    `json:"lines_out" jsonschema:"Emitted line count"`
	Groups     int    `json:"groups" jsonschema:"Number of fold groups produced"`
	FoldedRefs int    `json:"folded_refs" jsonschema:"Reference tokens absorbed into fold lines"`
}

type searchInput struct {
	Pattern    string `json:"pattern" jsonschema:"Regular expression matched against each snapshot line"`
	SessionKey string `json:"session_key,omitempty" jsonschema:"Session whose stored snapshot to search (default: 'default')"`
	Snapshot   string `json:"snapshot,omitempty" jsonschema:"Inline snapshot text to search instead of the stored one"`
}

type searchOutput struct {
	Matches []snapshot.Match `json:"matches" jsonschema:"Matching lines with line numbers and reference tokens"`
	Count   int              `json:"count" jsonschema:"Number of matches"`
}

type diffInput struct {
	Snapshot   string `json:"snapshot" jsonschema:"Current raw snapshot to compare against the session's previous capture"`
	SessionKey string `json:"session_key,omitempty" jsonschema:"Session key (default: 'default')"`
}

type diffOutput struct {
	FirstSnapshot bool                `json:"first_snapshot,omitempty" jsonschema:"True when the session had no previous capture to compare with"`
	Added         []snapshot.DiffLine `json:"added,omitempty" jsonschema:"Lines present now but not in the previous capture"`
	Removed       []snapshot.DiffLine `json:"removed,omitempty" jsonschema:"Lines present in the previous capture but gone now"`
}

func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "snapshot_compress",
		Description: "Compress an accessibility-tree outline snapshot into a token-efficient outline. Runs of structurally similar siblings fold into one representative line carrying every member's reference token, so folded elements stay targetable.",
	}, s.handleCompress)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "snapshot_search",
		Description: "Search a snapshot with a regular expression, line by line. Returns matching lines with their reference tokens. Searches the session's stored snapshot unless inline text is supplied.",
	}, s.handleSearch)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "snapshot_diff",
		Description: "Compare a snapshot against the session's previous capture and report added and removed lines. Stores the supplied snapshot as the session's latest.",
	}, s.handleDiff)
}

func (s *Server) handleCompress(ctx context.Context, req *mcp.CallToolRequest, args compressInput) (*mcp.CallToolResult, compressOutput, error) {
	res, err := s.svc.Compress(ctx, services.CompressRequest{
		Snapshot:          args.Snapshot,
		SessionKey:        args.SessionKey,
		MaxLines:          args.MaxLines,
		Mode:              args.Mode,
		PreserveStructure: args.PreserveStructure,
		FoldThreshold:     args.FoldThreshold,
	})
	if err != nil {
		return nil, compressOutput{}, err
	}
	return nil, compressOutput{
		Outline:    res.Outline,
		SnapshotID: res.SnapshotID,
		LinesIn:    res.LinesIn,
		LinesOut:   res.LinesOut,
		Groups:     res.Groups,
		FoldedRefs: res.FoldedRefs,
	}, nil
}

func (s *Server) handleSearch(ctx context.Context, req *mcp.CallToolRequest, args searchInput) (*mcp.CallToolResult, searchOutput, error) {
	matches, err := s.svc.Search(ctx, services.SearchRequest{
		Pattern:    args.Pattern,
		SessionKey: args.SessionKey,
		Snapshot:   args.Snapshot,
	})
	if err != nil {
		return nil, searchOutput{}, err
	}
	return nil, searchOutput{Matches: matches, Count: len(matches)}, nil
}

func (s *Server) handleDiff(ctx context.Context, req *mcp.CallToolRequest, args diffInput) (*mcp.CallToolResult, diffOutput, error) {
	res, err := s.svc.Diff(ctx, services.DiffRequest{
		Snapshot:   args.Snapshot,
		SessionKey: args.SessionKey,
	})
	if err != nil {
		return nil, diffOutput{}, err
	}
	return nil, diffOutput{
		FirstSnapshot: res.FirstSnapshot,
		Added:         res.Added,
		Removed:       res.Removed,
	}, nil
}
