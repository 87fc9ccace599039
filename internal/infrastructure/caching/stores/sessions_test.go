package stores

import (
	"errors"
	"testing"
	"time"

	"github.com/AtRiskMedia/flexibuilder-go/internal/domain/entities/document"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/flexibuilder-go/internal/infrastructure/observability/logging"
)

func session(id string) *types.EditorSession {
	return types.NewEditorSession(document.New(id))
}

func TestAddEvictsLeastRecentlyUsedCleanSession(t *testing.T) {
	ss := NewSessionsStore(2, logging.NewDiscardLogger())
	a, _ := ss.Add("a", session("a"))
	time.Sleep(2 * time.Millisecond)
	ss.Add("b", session("b"))
	time.Sleep(2 * time.Millisecond)
	ss.Get("a")

	if _, err := ss.Add("c", session("c")); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if _, ok := ss.Get("b"); ok {
		t.Fatal("b should have been evicted")
	}
	if got, ok := ss.Get("a"); !ok || got != a {
		t.Fatal("a should survive eviction")
	}
}

func TestAddRefusesWhenAllDirty(t *testing.T) {
	ss := NewSessionsStore(1, logging.NewDiscardLogger())
	s := session("a")
	s.Dirty = true
	ss.Add("a", s)
	if _, err := ss.Add("b", session("b")); !errors.Is(err, ErrSessionLimit) {
		t.Fatalf("expected ErrSessionLimit, got %v", err)
	}
}

func TestAddReturnsExisting(t *testing.T) {
	ss := NewSessionsStore(0, nil)
	first, _ := ss.Add("a", session("a"))
	second, _ := ss.Add("a", session("a"))
	if first != second || ss.Len() != 1 {
		t.Fatal("duplicate add should return the cached session")
	}
}

func TestIdle(t *testing.T) {
	ss := NewSessionsStore(0, nil)
	ss.Add("a", session("a"))
	if ids := ss.Idle(time.Hour); len(ids) != 0 {
		t.Fatalf("nothing should be idle yet: %v", ids)
	}
	time.Sleep(5 * time.Millisecond)
	if ids := ss.Idle(time.Millisecond); len(ids) != 1 || ids[0] != "a" {
		t.Fatalf("expected a to be idle, got %v", ids)
	}
}

func TestGenerationSlot(t *testing.T) {
	s := session("a")
	if !s.BeginGeneration() || s.BeginGeneration() {
		t.Fatal("generation slot should be exclusive")
	}
	s.EndGeneration()
	if !s.BeginGeneration() {
		t.Fatal("slot should be free after EndGeneration")
	}
}
