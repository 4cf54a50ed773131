// Package session tracks repository viewing sessions.
//
// A session records one repository the user has opened: where it lives,
// which view options were active, and when it was last used. Sessions feed
// the recent-repository picker and let the server restore a view without
// re-asking for options.
//
// # Architecture
//
// Storage is behind the Store interface with two implementations:
//   - memory: In-memory storage for development/testing
//   - file: File-based storage for the CLI and local server
//
// The Store interface supports:
//   - Get/Set/Delete/List operations
//   - Cleanup of sessions idle longer than a cutoff
//
// # Usage
//
// Create a session store:
//
//	// Development
//	store := session.NewMemoryStore()
//
//	// CLI
//	store, err := session.NewFileStore("")  // Uses ~/.config/gitlanes/sessions/
//
// Record repository opens through the Recents wrapper:
//
//	recents := session.NewRecents(store)
//	sess, err := recents.RecordOpen(ctx, "/work/repo")
//	if err != nil {
//	    return err
//	}
//	last, err := recents.Recent(ctx, 10)
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("not found")
)

// Session records one opened repository and its view options.
type Session struct {
	ID         string    `json:"id"`
	Repo       string    `json:"repo"`
	Backend    string    `json:"backend,omitempty"`
	Palette    string    `json:"palette,omitempty"`
	Limit      int       `json:"limit,omitempty"`
	OpenCount  int       `json:"open_count"`
	LastOpened time.Time `json:"last_opened"`
	CreatedAt  time.Time `json:"created_at"`
}

// Touch marks the session as used now.
func (s *Session) Touch() {
	s.LastOpened = time.Now()
	s.OpenCount++
}

// IdleSince returns how long ago the session was last used.
func (s *Session) IdleSince(now time.Time) time.Duration {
	return now.Sub(s.LastOpened)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID.
	// Returns nil, nil if the session doesn't exist.
	Get(ctx context.Context, sessionID string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, session *Session) error

	// Delete removes a session.
	Delete(ctx context.Context, sessionID string) error

	// List returns all stored sessions in unspecified order.
	List(ctx context.Context) ([]*Session, error)

	// Cleanup removes sessions idle longer than maxIdle.
	Cleanup(ctx context.Context, maxIdle time.Duration) error
}

// DefaultMaxIdle is the cutoff after which Cleanup drops a session.
const DefaultMaxIdle = 90 * 24 * time.Hour

// New creates a session for a repository.
func New(repo string) (*Session, error) {
	id, err := uuid.NewRandom()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &Session{
		ID:         id.String(),
		Repo:       repo,
		OpenCount:  1,
		LastOpened: now,
		CreatedAt:  now,
	}, nil
}
