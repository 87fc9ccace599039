package document

// DefaultHistoryCapacity is the number of snapshots kept before the oldest is evicted.
const DefaultHistoryCapacity = 20

// History is a bounded linear log of forest snapshots with a cursor.
// Entries are deep copies and never alias the live tree.
type History struct {
	entries  [][]*Node
	index    int
	capacity int
}

// NewHistory creates a log seeded with the initial forest as its only entry.
func NewHistory(capacity int, initial []*Node) *History {
	if capacity < 1 {
		capacity = DefaultHistoryCapacity
	}
	return &History{
		entries:  [][]*Node{CloneForest(initial)},
		index:    0,
		capacity: capacity,
	}
}

// Push discards any redo tail, appends a snapshot of forest and evicts the
// oldest entry when over capacity. The cursor ends on the new entry.
func (h *History) Push(forest []*Node) {
	h.entries = h.entries[:h.index+1]
	h.entries = append(h.entries, CloneForest(forest))
	if len(h.entries) > h.capacity {
		drop := len(h.entries) - h.capacity
		for i := 0; i < drop; i++ {
			h.entries[i] = nil
		}
		h.entries = h.entries[drop:]
	}
	h.index = len(h.entries) - 1
}

// Undo moves the cursor back and returns a copy of that entry.
func (h *History) Undo() ([]*Node, bool) {
	if h.index <= 0 {
		return nil, false
	}
	h.index--
	return CloneForest(h.entries[h.index]), true
}

// Redo moves the cursor forward and returns a copy of that entry.
func (h *History) Redo() ([]*Node, bool) {
	if h.index >= len(h.entries)-1 {
		return nil, false
	}
	h.index++
	return CloneForest(h.entries[h.index]), true
}

// Current returns the entry under the cursor without copying. Callers must not mutate it.
func (h *History) Current() []*Node {
	return h.entries[h.index]
}

func (h *History) CanUndo() bool { return h.index > 0 }
func (h *History) CanRedo() bool { return h.index < len(h.entries)-1 }
func (h *History) Len() int      { return len(h.entries) }
func (h *History) Index() int    { return h.index }
func (h *History) Capacity() int { return h.capacity }

// Reset replaces the log with a single entry.
func (h *History) Reset(forest []*Node) {
	h.entries = [][]*Node{CloneForest(forest)}
	h.index = 0
}
