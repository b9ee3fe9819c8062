package order

import "testing"

func resolvedLine(code string, qty string) func(*Line) {
	return func(l *Line) {
		l.ItemID = int64(len(code)) // any non-zero id
		l.ItemCode = code
		l.Quantity = dec(qty)
		l.UnitPrice = dec("10")
	}
}

func checkSerials(t *testing.T, s *Store) {
	t.Helper()
	for i, l := range s.Snapshot() {
		if l.Serial != i+1 {
			t.Fatalf("serial at index %d is %d, want %d", i, l.Serial, i+1)
		}
	}
}

func TestNewStoreSeedsPlaceholder(t *testing.T) {
	s := NewStore()
	if s.Len() != 1 {
		t.Fatalf("new store has %d rows, want 1", s.Len())
	}
	l, _ := s.Line(0)
	if l.Resolved() {
		t.Error("seed row should be unresolved")
	}
	if l.Serial != 1 {
		t.Errorf("seed serial = %d, want 1", l.Serial)
	}
}

func TestInsertOrUpdateAt(t *testing.T) {
	s := NewStore()

	// Update in place.
	s.InsertOrUpdateAt(0, resolvedLine("P001", "3"))
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	l, _ := s.Line(0)
	if !l.LineAmount.Equal(dec("30")) {
		t.Errorf("line amount = %s, want 30 (recomputed on patch)", l.LineAmount)
	}

	// Index past the end appends.
	s.InsertOrUpdateAt(7, resolvedLine("P002", "1"))
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	checkSerials(t, s)
}

func TestDeleteAt(t *testing.T) {
	s := NewStore()
	s.InsertOrUpdateAt(0, resolvedLine("P001", "1"))
	s.InsertOrUpdateAt(1, resolvedLine("P002", "1"))
	s.InsertOrUpdateAt(2, resolvedLine("P003", "1"))

	s.DeleteAt(1)
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	checkSerials(t, s)
	l, _ := s.Line(1)
	if l.ItemCode != "P003" {
		t.Errorf("row 1 code = %q, want P003", l.ItemCode)
	}
}

// Deleting the only resolved row leaves exactly one placeholder.
func TestDeleteLastResolvedLeavesPlaceholder(t *testing.T) {
	s := NewStore()
	s.InsertOrUpdateAt(0, resolvedLine("P001", "2"))

	s.DeleteAt(0)
	if s.Len() != 1 {
		t.Fatalf("len = %d, want 1", s.Len())
	}
	l, _ := s.Line(0)
	if l.Resolved() {
		t.Error("remaining row should be an unresolved placeholder")
	}
	if l.Serial != 1 {
		t.Errorf("serial = %d, want 1", l.Serial)
	}
}

func TestEnsureTrailingPlaceholder(t *testing.T) {
	s := NewStore()
	s.InsertOrUpdateAt(0, resolvedLine("P001", "2"))

	s.EnsureTrailingPlaceholder()
	if s.Len() != 2 {
		t.Fatalf("len = %d, want 2", s.Len())
	}
	// Idempotent while the trailing row stays unresolved.
	s.EnsureTrailingPlaceholder()
	if s.Len() != 2 {
		t.Fatalf("len after second call = %d, want 2", s.Len())
	}
	checkSerials(t, s)
}

func TestResolvedLinesExcludesPlaceholder(t *testing.T) {
	s := NewStore()
	s.InsertOrUpdateAt(0, resolvedLine("P001", "2"))
	s.EnsureTrailingPlaceholder()

	got := s.ResolvedLines()
	if len(got) != 1 {
		t.Fatalf("resolved lines = %d, want 1", len(got))
	}
	if got[0].ItemCode != "P001" {
		t.Errorf("code = %q, want P001", got[0].ItemCode)
	}
}

func TestSubscribeNotifiesOnMutation(t *testing.T) {
	s := NewStore()
	calls := 0
	s.Subscribe(func() { calls++ })

	s.InsertOrUpdateAt(0, resolvedLine("P001", "1"))
	s.DeleteAt(0)
	if calls != 2 {
		t.Errorf("observer ran %d times, want 2", calls)
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewStore()
	s.InsertOrUpdateAt(0, resolvedLine("P001", "1"))

	snap := s.Snapshot()
	snap[0].ItemCode = "mutated"
	l, _ := s.Line(0)
	if l.ItemCode != "P001" {
		t.Error("mutating the snapshot changed the store")
	}
}
