package config

import "sync"

// Row is one configured board line.
type Row struct {
	Title    string `yaml:"title" json:"title"`
	Variable string `yaml:"variable" json:"variable"`
}

// RowSet is the ordered row list shared by every viewer's refresh.
//
// Rows are only ever removed, when their variable turns out to be unknown.
// Removal swaps in a new slice, so a Snapshot taken before the removal stays
// valid and iteration never races with mutation.
//
// Thread-safety: all methods are safe for concurrent use.
type RowSet struct {
	mu   sync.RWMutex
	rows []Row
}

// NewRowSet copies rows into a new set.
func NewRowSet(rows []Row) *RowSet {
	cp := make([]Row, len(rows))
	copy(cp, rows)
	return &RowSet{rows: cp}
}

// Snapshot returns the current rows in display order. Callers must not
// modify the returned slice.
func (s *RowSet) Snapshot() []Row {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.rows
}

// Len returns the number of rows.
func (s *RowSet) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}

// Remove drops the row with the given title. It reports true only for the
// call that actually removed it, so concurrent callers racing on the same
// row see exactly one success.
func (s *RowSet) Remove(title string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, r := range s.rows {
		if r.Title != title {
			continue
		}
		next := make([]Row, 0, len(s.rows)-1)
		next = append(next, s.rows[:i]...)
		next = append(next, s.rows[i+1:]...)
		s.rows = next
		return true
	}
	return false
}
