package roster

import "testing"

func TestLookup(t *testing.T) {
	r := New([]Participant{
		{ID: "RA-001", DisplayName: "سارة"},
		{ID: "RA-007", DisplayName: "ليلى"},
	})

	p, ok := r.Lookup("RA-001")
	if !ok || p.DisplayName != "سارة" {
		t.Errorf("Lookup(RA-001) = %+v, %v", p, ok)
	}

	if _, ok := r.Lookup("RA-002"); ok {
		t.Error("Lookup(RA-002) should miss")
	}

	if r.Size() != 2 {
		t.Errorf("Size = %d, want 2", r.Size())
	}
}

func TestEmptyRoster(t *testing.T) {
	r := New(nil)
	if _, ok := r.Lookup("anyone"); ok {
		t.Error("empty roster should miss every id")
	}
	if r.Size() != 0 {
		t.Errorf("Size = %d, want 0", r.Size())
	}
}
