package session

import (
	"sync/atomic"

	"github.com/JosephGleason/moveright-backend/internal/analysis"
)

// Stream is the control handle for one user's streaming task. The loop
// itself lives elsewhere; this only carries the identity and the active
// flag the loop polls. A stale loop observing a cleared flag exits quietly.
type Stream struct {
	UserID   string
	Exercise analysis.Exercise

	active atomic.Bool
}

// NewStream creates an active stream handle.
func NewStream(userID string, exercise analysis.Exercise) *Stream {
	s := &Stream{
		UserID:   userID,
		Exercise: exercise,
	}
	s.active.Store(true)
	return s
}

// Active reports whether the stream should keep running.
func (s *Stream) Active() bool {
	return s.active.Load()
}

// Deactivate clears the active flag. Idempotent.
func (s *Stream) Deactivate() {
	s.active.Store(false)
}
