// Package snapshot keeps the most recent outline snapshot per session and
// provides the regex search and diff-since-last-call operations that sit
// alongside the compression engine. Both operations are best-effort: an
// invalid search pattern is a reported error, never a crash, and a diff
// with no prior snapshot is a normal first-call result.
package snapshot

import (
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
)

// Entry is one stored snapshot.
type Entry struct {
	// ID uniquely identifies this snapshot capture.
	ID string `json:"id"`

	// SessionKey groups successive snapshots of the same page session.
	SessionKey string `json:"session_key"`

	// Raw is the uncompressed outline text.
	Raw string `json:"-"`

	// Compressed is the outline as last emitted to the caller.
	Compressed string `json:"-"`

	// TakenAt is the capture time.
	TakenAt time.Time `json:"taken_at"`
}

// Store retains the latest snapshot per session key in an LRU, bounding
// memory to the configured number of concurrently tracked sessions.
type Store struct {
	entries *lru.Cache[string, *Entry]
}

// NewStore creates a store tracking up to size sessions.
func NewStore(size int) (*Store, error) {
	entries, err := lru.New[string, *Entry](size)
	if err != nil {
		return nil, err
	}
	return &Store{entries: entries}, nil
}

// Put records the latest snapshot for a session and returns the new entry
// together with the entry it replaced (nil on the session's first capture).
func (s *Store) Put(sessionKey, raw, compressed string) (entry, prev *Entry) {
	prev, _ = s.entries.Get(sessionKey)
	entry = &Entry{
		ID:         uuid.New().String(),
		SessionKey: sessionKey,
		Raw:        raw,
		Compressed: compressed,
		TakenAt:    time.Now(),
	}
	s.entries.Add(sessionKey, entry)
	return entry, prev
}

// Get returns the latest snapshot for a session.
func (s *Store) Get(sessionKey string) (*Entry, bool) {
	return s.entries.Get(sessionKey)
}

// Len returns the number of tracked sessions.
func (s *Store) Len() int {
	return s.entries.Len()
}
