package matrixview

import (
	"encoding/json"
	"fmt"
	"sync"
)

// Snapshot is one labeled matrix received from the stream. Snapshots are
// never mutated after they are appended to a Collection.
type Snapshot struct {
	Label  string      `json:"label"`
	Matrix [][]float64 `json:"matrix"`
}

// Rows returns the number of rows.
func (s *Snapshot) Rows() int {
	return len(s.Matrix)
}

// Cols returns the number of columns, or 0 for an empty matrix.
func (s *Snapshot) Cols() int {
	if len(s.Matrix) == 0 {
		return 0
	}
	return len(s.Matrix[0])
}

// Validate checks that the matrix is rectangular and holds only finite
// values. An empty matrix is valid.
func (s *Snapshot) Validate() error {
	cols := s.Cols()
	for i, row := range s.Matrix {
		if len(row) != cols {
			return fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), cols, ErrRaggedMatrix)
		}
		for j, v := range row {
			if !isFinite(v) {
				return fmt.Errorf("cell (%d,%d): %w", i, j, ErrNonFiniteCell)
			}
		}
	}
	return nil
}

// wireSnapshot is the payload shape with every field optional, so missing
// and null values can be told apart from zeros.
type wireSnapshot struct {
	Label  *string       `json:"label"`
	Matrix *[][]*float64 `json:"matrix"`
}

// ParseSnapshot decodes and validates one stream payload. The payload must
// be an object carrying both "label" and "matrix"; null cells are
// rejected.
func ParseSnapshot(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: %w: %w", ErrMalformedSnapshot, err)
	}
	if w.Label == nil {
		return Snapshot{}, fmt.Errorf("parse snapshot: missing label: %w", ErrMalformedSnapshot)
	}
	if w.Matrix == nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %q: missing matrix: %w", *w.Label, ErrMalformedSnapshot)
	}

	s := Snapshot{Label: *w.Label, Matrix: make([][]float64, len(*w.Matrix))}
	for i, row := range *w.Matrix {
		s.Matrix[i] = make([]float64, len(row))
		for j, v := range row {
			if v == nil {
				return Snapshot{}, fmt.Errorf("parse snapshot %q: cell (%d,%d) is null: %w", s.Label, i, j, ErrMalformedSnapshot)
			}
			s.Matrix[i][j] = *v
		}
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("parse snapshot %q: %w", s.Label, err)
	}
	return s, nil
}

// Collection is the ordered, append-only list of received snapshots.
// Duplicate labels coexist and are told apart by position.
//
// The ingestor appends from its own goroutine while the viewer reads from
// the game loop, so all access is guarded.
type Collection struct {
	mu      sync.RWMutex
	snaps   []Snapshot
	version uint64
	offset  int // number of snapshots evicted from the front

	// MaxSnapshots caps the collection; the oldest entries are evicted once
	// it is exceeded. Zero means unbounded.
	MaxSnapshots int
}

// NewCollection creates an empty collection.
func NewCollection() *Collection {
	return &Collection{}
}

// Append adds s to the end of the collection.
func (c *Collection) Append(s Snapshot) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.snaps = append(c.snaps, s)
	if c.MaxSnapshots > 0 && len(c.snaps) > c.MaxSnapshots {
		drop := len(c.snaps) - c.MaxSnapshots
		clear(c.snaps[:drop])
		c.snaps = c.snaps[drop:]
		c.offset += drop
	}
	c.version++
}

// Len returns the number of snapshots currently held.
func (c *Collection) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.snaps)
}

// Version increases every time the collection changes.
func (c *Collection) Version() uint64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.version
}

// Evicted returns how many snapshots have been dropped from the front.
func (c *Collection) Evicted() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.offset
}

// Window returns a copy of the current list together with its version and
// the number of evicted entries, read under a single lock so absolute
// positions stay consistent. The matrices themselves are shared; they are
// immutable.
func (c *Collection) Window() (snaps []Snapshot, version uint64, evicted int) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	snaps = make([]Snapshot, len(c.snaps))
	copy(snaps, c.snaps)
	return snaps, c.version, c.offset
}

// AtAbsolute returns the snapshot that was the pos-th ever appended, if it
// has not been evicted.
func (c *Collection) AtAbsolute(pos int) (Snapshot, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i := pos - c.offset
	if i < 0 || i >= len(c.snaps) {
		return Snapshot{}, false
	}
	return c.snaps[i], true
}

// FindFirst returns the earliest snapshot carrying label and its absolute
// position.
func (c *Collection) FindFirst(label string) (Snapshot, int, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for i := range c.snaps {
		if c.snaps[i].Label == label {
			return c.snaps[i], c.offset + i, true
		}
	}
	return Snapshot{}, -1, false
}
