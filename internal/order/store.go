package order

// Store is the ordered collection of order lines and the single source of
// truth for the grid. It is only ever mutated from the UI loop, so it has
// no locking; readers get copies, never the backing slice.
type Store struct {
	lines []Line
	subs  []func()
}

// NewStore returns a store seeded with one placeholder row.
func NewStore() *Store {
	s := &Store{}
	s.lines = append(s.lines, Line{Serial: 1})
	return s
}

// NewStoreFromLines seeds the store from a previously persisted order and
// appends the trailing placeholder.
func NewStoreFromLines(lines []Line) *Store {
	s := &Store{lines: append([]Line(nil), lines...)}
	s.Reindex()
	s.EnsureTrailingPlaceholder()
	return s
}

// Subscribe registers fn to run after every mutation. The UI re-renders
// from a snapshot when notified.
func (s *Store) Subscribe(fn func()) {
	s.subs = append(s.subs, fn)
}

func (s *Store) notify() {
	for _, fn := range s.subs {
		fn()
	}
}

// Len returns the number of rows, placeholder included.
func (s *Store) Len() int { return len(s.lines) }

// Line returns a copy of the row at index i.
func (s *Store) Line(i int) (Line, bool) {
	if i < 0 || i >= len(s.lines) {
		return Line{}, false
	}
	return s.lines[i], true
}

// Snapshot returns a copy of every row.
func (s *Store) Snapshot() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// ResolvedLines returns copies of the rows that refer to a catalog item,
// which is the set of rows that validation and persistence see.
func (s *Store) ResolvedLines() []Line {
	var out []Line
	for _, l := range s.lines {
		if l.Resolved() {
			out = append(out, l)
		}
	}
	return out
}

// InsertOrUpdateAt upserts by position: an index past the end appends a
// fresh row, otherwise patch mutates the existing row in place. The line
// amount is recomputed after every patch so the derived-field invariant
// holds without the caller's help.
func (s *Store) InsertOrUpdateAt(index int, patch func(*Line)) {
	if index < 0 {
		index = 0
	}
	if index >= len(s.lines) {
		s.lines = append(s.lines, Line{})
		index = len(s.lines) - 1
	}
	patch(&s.lines[index])
	l := &s.lines[index]
	l.LineAmount = LineAmount(l.Quantity, l.UnitPrice, l.LineDiscount)
	s.Reindex()
	s.notify()
}

// DeleteAt removes the row at index and re-sequences serials. Emptying the
// store leaves exactly one placeholder row.
func (s *Store) DeleteAt(index int) {
	if index < 0 || index >= len(s.lines) {
		return
	}
	s.lines = append(s.lines[:index], s.lines[index+1:]...)
	if len(s.lines) == 0 {
		s.lines = append(s.lines, Line{})
	}
	s.Reindex()
	s.notify()
}

// Reindex rewrites serials to the contiguous sequence 1..N.
func (s *Store) Reindex() {
	for i := range s.lines {
		s.lines[i].Serial = i + 1
	}
}

// EnsureTrailingPlaceholder appends an unresolved row when the last row is
// resolved, keeping the insertion point for the next item available.
func (s *Store) EnsureTrailingPlaceholder() {
	if len(s.lines) == 0 || s.lines[len(s.lines)-1].Resolved() {
		s.lines = append(s.lines, Line{Serial: len(s.lines) + 1})
		s.notify()
	}
}
