// Package types defines the cached editor session structure.
package types

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
)

// EditorSession is one open document. Mu serializes every command, render
// and save against Document. Deleted is set under Mu when the document is
// deleted; such a session is never written again.
type EditorSession struct {
	Mu       sync.Mutex
	Document *document.Document
	Dirty    bool
	Deleted  bool
	Opened   time.Time
	SavedAt  time.Time

	generating atomic.Bool
	lastAccess atomic.Int64
}

// NewEditorSession wraps a loaded document.
func NewEditorSession(doc *document.Document) *EditorSession {
	now := time.Now().UTC()
	s := &EditorSession{Document: doc, Opened: now}
	s.lastAccess.Store(now.UnixNano())
	return s
}

// Touch records activity.
func (s *EditorSession) Touch() {
	s.lastAccess.Store(time.Now().UTC().UnixNano())
}

// LastAccess returns the time of the last recorded activity.
func (s *EditorSession) LastAccess() time.Time {
	return time.Unix(0, s.lastAccess.Load()).UTC()
}

// BeginGeneration claims the single generation slot. It returns false when a
// generation is already running.
func (s *EditorSession) BeginGeneration() bool {
	return s.generating.CompareAndSwap(false, true)
}

// EndGeneration releases the generation slot.
func (s *EditorSession) EndGeneration() {
	s.generating.Store(false)
}

// Generating reports whether a generation is in flight.
func (s *EditorSession) Generating() bool {
	return s.generating.Load()
}
