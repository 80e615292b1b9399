package matrixview

// Selection is the user's current choice in the label list.
type Selection struct {
	Label string
	// Index is the absolute collection position the user picked, or -1 when
	// the selection was made by label only.
	Index int
	Set   bool
}

// SelectionStore holds the current Selection. It is mutated only by
// explicit user action.
type SelectionStore struct {
	cur        Selection
	generation uint64
}

// Select chooses a matrix by label. It resolves to the earliest snapshot
// carrying that label.
func (s *SelectionStore) Select(label string) {
	s.set(Selection{Label: label, Index: -1, Set: true})
}

// SelectEntry chooses a specific list entry. Duplicate labels are told
// apart by position.
func (s *SelectionStore) SelectEntry(e LabelEntry) {
	s.set(Selection{Label: e.Label, Index: e.Index, Set: true})
}

// Clear removes the selection.
func (s *SelectionStore) Clear() {
	s.set(Selection{Index: -1})
}

func (s *SelectionStore) set(sel Selection) {
	s.cur = sel
	s.generation++
}

// Current returns the current selection.
func (s *SelectionStore) Current() Selection {
	return s.cur
}

// Generation increases on every selection change, including re-selecting
// the same entry.
func (s *SelectionStore) Generation() uint64 {
	return s.generation
}

// Resolve finds the selected snapshot in coll. A positional selection wins
// while that entry still holds the selected label; otherwise the first
// snapshot with the label is used. An unknown label resolves to nothing.
func (s *SelectionStore) Resolve(coll *Collection) (Snapshot, int, bool) {
	if !s.cur.Set {
		return Snapshot{}, -1, false
	}
	if s.cur.Index >= 0 {
		if snap, ok := coll.AtAbsolute(s.cur.Index); ok && snap.Label == s.cur.Label {
			return snap, s.cur.Index, true
		}
	}
	return coll.FindFirst(s.cur.Label)
}
