// Package main implements the snapctl CLI for manual operations against the
// snapshotd HTTP server.
package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	// serverURL is the base URL for the snapshotd HTTP server
	serverURL string
	// sessionKey names the snapshot session commands operate on
	sessionKey string
	// version information
	version = "dev"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snapctl",
	Short: "CLI for snapshotd HTTP server operations",
	Long: `snapctl is a command-line interface for the snapshotd HTTP server.
It compresses, searches, and diffs accessibility-tree outline snapshots.`,
	Version: version,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:9180", "snapshotd server URL")
	rootCmd.PersistentFlags().StringVar(&sessionKey, "session", "", "session key grouping successive snapshots")
	rootCmd.AddCommand(compressCmd)
	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(diffCmd)
	rootCmd.AddCommand(healthCmd)
}

// compressCmd compresses a snapshot from a file or stdin
var compressCmd = &cobra.Command{
	Use:   "compress [file]",
	Short: "Compress an outline snapshot from a file or stdin",
	Long: `Compress an accessibility-tree outline snapshot using the snapshotd server.
Runs of similar siblings fold into single lines carrying every member's
reference token.

Examples:
  # Compress a saved snapshot
  snapctl compress page.txt

  # Compress from stdin with a line cap
  cat page.txt | snapctl compress --max-lines 200 -

  # Keep original indentation
  snapctl compress --preserve-structure page.txt`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCompress,
}

// searchCmd searches the session's stored snapshot
var searchCmd = &cobra.Command{
	Use:   "search <pattern>",
	Short: "Search the session's stored snapshot with a regex",
	Long: `Search the stored snapshot of a session line by line with a regular
expression. Matching lines print with their line numbers and reference tokens.

Examples:
  # Search the default session
  snapctl search 'button "Save'

  # Search a named session
  snapctl search --session tab-1 'Row \d+'`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,
}

// diffCmd diffs a snapshot against the session's previous capture
var diffCmd = &cobra.Command{
	Use:   "diff [file]",
	Short: "Diff a snapshot against the session's previous capture",
	Long: `Compare a snapshot from a file or stdin against the session's previous
capture and print added and removed lines. The supplied snapshot becomes the
session's latest.

Examples:
  # Diff against the last capture of the default session
  snapctl diff page.txt

  # Diff from stdin against a named session
  cat page.txt | snapctl diff --session tab-1 -`,
	Args: cobra.MaximumNArgs(1),
	RunE: runDiff,
}

// healthCmd checks server health
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check snapshotd server health",
	RunE:  runHealth,
}

var (
	flagMaxLines          int
	flagMode              string
	flagFoldThreshold     int
	flagPreserveStructure bool
	flagStats             bool
)

func init() {
	compressCmd.Flags().IntVar(&flagMaxLines, "max-lines", 0, "hard cap on emitted lines (0 = server default)")
	compressCmd.Flags().StringVar(&flagMode, "mode", "", "compression mode: smart or simple")
	compressCmd.Flags().IntVar(&flagFoldThreshold, "fold-threshold", 0, "similarity threshold in bits (0 = server default)")
	compressCmd.Flags().BoolVar(&flagPreserveStructure, "preserve-structure", false, "keep original indentation")
	compressCmd.Flags().BoolVar(&flagStats, "stats", false, "print compression statistics to stderr")
}

// CompressRequest matches internal/services CompressRequest.
type CompressRequest struct {
	Snapshot          string `json:"snapshot"`
	SessionKey        string `json:"session_key,omitempty"`
	MaxLines          int    `json:"max_lines,omitempty"`
	Mode              string `json:"mode,omitempty"`
	PreserveStructure bool   `json:"preserve_structure,omitempty"`
	FoldThreshold     int    `json:"fold_threshold,omitempty"`
}

// CompressResponse matches internal/services CompressResult.
type CompressResponse struct {
	Outline    string `json:"outline"`
	SnapshotID string `json:"snapshot_id"`
	LinesIn    int    `json:"lines_in"`
	LinesOut   int    `json:"lines_out"`
	Groups     int    `json:"groups"`
	FoldedRefs int    `json:"folded_refs"`
}

// SearchRequest matches internal/services SearchRequest.
type SearchRequest struct {
	Pattern    string `json:"pattern"`
	SessionKey string `json:"session_key,omitempty"`
}

// SearchResponse matches internal/server SearchResponse.
type SearchResponse struct {
	Matches []struct {
		LineNum int    `json:"line"`
		Line    string `json:"text"`
		Ref     string `json:"ref,omitempty"`
	} `json:"matches"`
	Count int `json:"count"`
}

// DiffRequest matches internal/services DiffRequest.
type DiffRequest struct {
	Snapshot   string `json:"snapshot"`
	SessionKey string `json:"session_key,omitempty"`
}

// DiffResponse matches internal/services DiffResult.
type DiffResponse struct {
	FirstSnapshot bool `json:"first_snapshot,omitempty"`
	Added         []struct {
		Line string `json:"text"`
		Ref  string `json:"ref,omitempty"`
	} `json:"added,omitempty"`
	Removed []struct {
		Line string `json:"text"`
		Ref  string `json:"ref,omitempty"`
	} `json:"removed,omitempty"`
}

// HealthResponse matches internal/server HealthResponse.
type HealthResponse struct {
	Status   string `json:"status"`
	Sessions int    `json:"sessions"`
}

func readInput(args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		content, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read from stdin: %w", err)
		}
		return content, nil
	}
	content, err := os.ReadFile(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", args[0], err)
	}
	return content, nil
}

func postJSON(path string, reqBody, respBody any) error {
	reqJSON, err := json.Marshal(reqBody)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := serverURL + path
	httpReq, err := http.NewRequest("POST", url, bytes.NewReader(reqJSON))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// runCompress handles the compress command
func runCompress(cmd *cobra.Command, args []string) error {
	content, err := readInput(args)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return fmt.Errorf("no snapshot to compress")
	}

	var resp CompressResponse
	err = postJSON("/v1/compress", CompressRequest{
		Snapshot:          string(content),
		SessionKey:        sessionKey,
		MaxLines:          flagMaxLines,
		Mode:              flagMode,
		PreserveStructure: flagPreserveStructure,
		FoldThreshold:     flagFoldThreshold,
	}, &resp)
	if err != nil {
		return err
	}

	fmt.Println(resp.Outline)
	if flagStats {
		fmt.Fprintf(os.Stderr, "[snapctl] %d -> %d lines, %d group(s), %d ref(s) folded\n",
			resp.LinesIn, resp.LinesOut, resp.Groups, resp.FoldedRefs)
	}
	return nil
}

// runSearch handles the search command
func runSearch(cmd *cobra.Command, args []string) error {
	var resp SearchResponse
	err := postJSON("/v1/search", SearchRequest{
		Pattern:    args[0],
		SessionKey: sessionKey,
	}, &resp)
	if err != nil {
		return err
	}

	for _, m := range resp.Matches {
		if m.Ref != "" {
			fmt.Printf("%d: %s [ref=%s]\n", m.LineNum, m.Line, m.Ref)
		} else {
			fmt.Printf("%d: %s\n", m.LineNum, m.Line)
		}
	}
	fmt.Fprintf(os.Stderr, "[snapctl] %d match(es)\n", resp.Count)
	return nil
}

// runDiff handles the diff command
func runDiff(cmd *cobra.Command, args []string) error {
	content, err := readInput(args)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return fmt.Errorf("no snapshot to diff")
	}

	var resp DiffResponse
	err = postJSON("/v1/diff", DiffRequest{
		Snapshot:   string(content),
		SessionKey: sessionKey,
	}, &resp)
	if err != nil {
		return err
	}

	if resp.FirstSnapshot {
		fmt.Fprintln(os.Stderr, "[snapctl] first snapshot for this session, nothing to compare")
		return nil
	}
	for _, l := range resp.Added {
		fmt.Printf("+ %s\n", l.Line)
	}
	for _, l := range resp.Removed {
		fmt.Printf("- %s\n", l.Line)
	}
	if len(resp.Added) == 0 && len(resp.Removed) == 0 {
		fmt.Fprintln(os.Stderr, "[snapctl] no changes")
	}
	return nil
}

// runHealth handles the health command
func runHealth(cmd *cobra.Command, args []string) error {
	url := serverURL + "/health"

	client := &http.Client{Timeout: 5 * time.Second}
	resp, err := client.Get(url)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: Failed to connect to %s: %v\n", url, err)
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, readErr := io.ReadAll(resp.Body)
		if readErr != nil {
			return fmt.Errorf("server returned status %d (failed to read response body: %w)", resp.StatusCode, readErr)
		}
		return fmt.Errorf("server returned status %d: %s", resp.StatusCode, string(body))
	}

	var healthResp HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&healthResp); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	fmt.Printf("Server Status: %s\n", healthResp.Status)
	fmt.Printf("Sessions:      %d\n", healthResp.Sessions)
	fmt.Printf("Server URL:    %s\n", serverURL)
	return nil
}
