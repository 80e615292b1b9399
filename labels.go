package matrixview

import (
	"fmt"

	"github.com/samber/lo"
)

// LabelEntry is one row of the label list: a snapshot's label and size.
type LabelEntry struct {
	// Index is the snapshot's absolute position in the collection.
	Index int
	Label string
	Rows  int
	Cols  int
}

// String renders the entry as "<label> <rows> X <cols>".
func (e LabelEntry) String() string {
	return fmt.Sprintf("%s %d X %d", e.Label, e.Rows, e.Cols)
}

// BuildLabelIndex projects snapshots onto list entries, keeping their order.
// base is added to every position; pass Collection.Evicted for absolute
// positions.
func BuildLabelIndex(snaps []Snapshot, base int) []LabelEntry {
	return lo.Map(snaps, func(s Snapshot, i int) LabelEntry {
		return LabelEntry{Index: base + i, Label: s.Label, Rows: s.Rows(), Cols: s.Cols()}
	})
}

// LabelIndex re-derives the entries of a Collection whenever its version
// changes and hands out the same slice otherwise.
type LabelIndex struct {
	coll    *Collection
	version uint64
	built   bool
	entries []LabelEntry
}

// NewLabelIndex creates an index over coll.
func NewLabelIndex(coll *Collection) *LabelIndex {
	return &LabelIndex{coll: coll}
}

// Entries returns the current entries and whether they changed since the
// previous call.
func (x *LabelIndex) Entries() ([]LabelEntry, bool) {
	if x.built && x.coll.Version() == x.version {
		return x.entries, false
	}
	snaps, version, evicted := x.coll.Window()
	x.entries = BuildLabelIndex(snaps, evicted)
	x.version = version
	x.built = true
	return x.entries, true
}
