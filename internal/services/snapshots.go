// Package services wires the compression engine, snapshot history, metrics,
// and tracing into one service shared by the MCP and HTTP surfaces.
package services

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/SJMakin/even-better-playwright-mcp/internal/logging"
	"github.com/SJMakin/even-better-playwright-mcp/internal/metrics"
	"github.com/SJMakin/even-better-playwright-mcp/internal/outline"
	"github.com/SJMakin/even-better-playwright-mcp/internal/snapshot"
)

// DefaultSessionKey groups snapshots of callers that do not name a session.
const DefaultSessionKey = "default"

// Snapshots is the shared snapshot service.
type Snapshots struct {
	gen      *outline.Generator
	store    *snapshot.Store
	defaults outline.Options
	logger   *logging.Logger
	tracer   trace.Tracer
}

// NewSnapshots builds the service. A nil logger disables logging.
func NewSnapshots(defaults outline.Options, historySize int, logger *logging.Logger) (*Snapshots, error) {
	if logger == nil {
		logger = logging.NewNop()
	}
	if historySize <= 0 {
		historySize = 64
	}
	store, err := snapshot.NewStore(historySize)
	if err != nil {
		return nil, fmt.Errorf("create snapshot store: %w", err)
	}
	return &Snapshots{
		gen:      outline.NewGenerator(logger.Underlying().Named("outline")),
		store:    store,
		defaults: defaults,
		logger:   logger,
		tracer:   otel.Tracer("snapshotd/services"),
	}, nil
}

// Store exposes the underlying history store.
func (s *Snapshots) Store() *snapshot.Store { return s.store }

// CompressRequest asks for one compression pass.
type CompressRequest struct {
	Snapshot          string `json:"snapshot"`
	SessionKey        string `json:"session_key,omitempty"`
	MaxLines          int    `json:"max_lines,omitempty"`
	Mode              string `json:"mode,omitempty"`
	PreserveStructure bool   `json:"preserve_structure,omitempty"`
	FoldThreshold     int    `json:"fold_threshold,omitempty"`
}

// CompressResult is the compressed outline plus pass statistics.
type CompressResult struct {
	Outline    string `json:"outline"`
	SnapshotID string `json:"snapshot_id"`
	LinesIn    int    `json:"lines_in"`
	LinesOut   int    `json:"lines_out"`
	Groups     int    `json:"groups"`
	FoldedRefs int    `json:"folded_refs"`
}

// Compress runs the pipeline, records metrics, and stores the snapshot as
// the session's latest capture.
func (s *Snapshots) Compress(ctx context.Context, req CompressRequest) (*CompressResult, error) {
	if req.Snapshot == "" {
		return nil, fmt.Errorf("snapshot is required")
	}
	sessionKey := sessionOrDefault(req.SessionKey)
	ctx = logging.WithSessionID(ctx, sessionKey)

	ctx, span := s.tracer.Start(ctx, "snapshots.compress")
	defer span.End()

	opts := s.defaults
	if req.MaxLines > 0 {
		opts.MaxLines = req.MaxLines
	}
	if req.Mode != "" {
		opts.Mode = outline.Mode(req.Mode)
	}
	if req.PreserveStructure {
		opts.PreserveStructure = true
	}
	if req.FoldThreshold > 0 {
		opts.FoldThreshold = req.FoldThreshold
	}
	opts.ApplyDefaults()

	start := time.Now()
	res := s.gen.Generate(req.Snapshot, opts)
	metrics.RecordCompression(string(opts.Mode), res.LinesIn, res.LinesOut, res.Groups, time.Since(start).Seconds())

	entry, _ := s.store.Put(sessionKey, req.Snapshot, res.Output)

	s.logger.Info(ctx, "snapshot compressed",
		zap.String("snapshot_id", entry.ID),
		zap.Int("lines_in", res.LinesIn),
		zap.Int("lines_out", res.LinesOut),
		zap.Int("groups", res.Groups))

	return &CompressResult{
		Outline:    res.Output,
		SnapshotID: entry.ID,
		LinesIn:    res.LinesIn,
		LinesOut:   res.LinesOut,
		Groups:     res.Groups,
		FoldedRefs: res.FoldedRefs,
	}, nil
}

// SearchRequest searches a stored or inline snapshot.
type SearchRequest struct {
	Pattern    string `json:"pattern"`
	SessionKey string `json:"session_key,omitempty"`
	Snapshot   string `json:"snapshot,omitempty"`
}

// Search matches a regex against snapshot lines. An invalid pattern is a
// reported error carrying the compiler's message, never a panic.
func (s *Snapshots) Search(ctx context.Context, req SearchRequest) ([]snapshot.Match, error) {
	if req.Pattern == "" {
		return nil, fmt.Errorf("pattern is required")
	}
	sessionKey := sessionOrDefault(req.SessionKey)
	ctx = logging.WithSessionID(ctx, sessionKey)

	ctx, span := s.tracer.Start(ctx, "snapshots.search")
	defer span.End()

	text := req.Snapshot
	if text == "" {
		entry, ok := s.store.Get(sessionKey)
		if !ok {
			metrics.Searches.WithLabelValues("not_found").Inc()
			return nil, fmt.Errorf("%w %q; supply snapshot text or compress one first", snapshot.ErrNotFound, sessionKey)
		}
		text = entry.Raw
	}

	matches, err := snapshot.Search(text, req.Pattern)
	if err != nil {
		metrics.Searches.WithLabelValues("invalid_pattern").Inc()
		return nil, err
	}
	metrics.Searches.WithLabelValues("ok").Inc()

	s.logger.Debug(ctx, "snapshot searched",
		zap.String("pattern", req.Pattern),
		zap.Int("matches", len(matches)))
	return matches, nil
}

// DiffRequest compares a snapshot against the session's previous capture.
type DiffRequest struct {
	Snapshot   string `json:"snapshot"`
	SessionKey string `json:"session_key,omitempty"`
}

// DiffResult reports the changed lines, or that this was the session's
// first capture.
type DiffResult struct {
	FirstSnapshot bool                `json:"first_snapshot,omitempty"`
	Added         []snapshot.DiffLine `json:"added,omitempty"`
	Removed       []snapshot.DiffLine `json:"removed,omitempty"`
}

// Diff stores the supplied snapshot as the session's latest capture and
// reports line changes since the previous one. A first capture is a normal
// result, not an error.
func (s *Snapshots) Diff(ctx context.Context, req DiffRequest) (*DiffResult, error) {
	if req.Snapshot == "" {
		return nil, fmt.Errorf("snapshot is required")
	}
	sessionKey := sessionOrDefault(req.SessionKey)
	ctx = logging.WithSessionID(ctx, sessionKey)

	ctx, span := s.tracer.Start(ctx, "snapshots.diff")
	defer span.End()

	_, prev := s.store.Put(sessionKey, req.Snapshot, "")
	if prev == nil {
		metrics.Diffs.WithLabelValues("first_snapshot").Inc()
		return &DiffResult{FirstSnapshot: true}, nil
	}
	metrics.Diffs.WithLabelValues("ok").Inc()

	d := snapshot.Diff(prev.Raw, req.Snapshot)
	s.logger.Debug(ctx, "snapshot diffed",
		zap.Int("added", len(d.Added)),
		zap.Int("removed", len(d.Removed)))

	return &DiffResult{Added: d.Added, Removed: d.Removed}, nil
}

func sessionOrDefault(key string) string {
	if key == "" {
		return DefaultSessionKey
	}
	return key
}
