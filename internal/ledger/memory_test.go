package ledger

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestMemoryLedgerContract(t *testing.T) {
	ctx := context.Background()
	in := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	out := time.Date(2024, 1, 1, 13, 30, 0, 0, time.UTC)

	t.Run("find on empty ledger returns nil", func(t *testing.T) {
		m := NewMemory()
		rec, err := m.FindRecord(ctx, "RA-001", "2024-01-01")
		if err != nil || rec != nil {
			t.Fatalf("FindRecord = %v, %v, want nil, nil", rec, err)
		}
	})

	t.Run("create then find", func(t *testing.T) {
		m := NewMemory()
		created, err := m.CreateRecord(ctx, "RA-001", in, "2024-01-01")
		if err != nil {
			t.Fatalf("CreateRecord: %v", err)
		}
		if created.RowID == "" {
			t.Fatal("expected a row handle")
		}

		rec, err := m.FindRecord(ctx, "RA-001", "2024-01-01")
		if err != nil || rec == nil {
			t.Fatalf("FindRecord = %v, %v", rec, err)
		}
		if rec.RowID != created.RowID || !rec.InTime.Equal(in) || rec.CheckedOut() {
			t.Errorf("unexpected record %+v", rec)
		}
	})

	t.Run("duplicate create rejected", func(t *testing.T) {
		m := NewMemory()
		if _, err := m.CreateRecord(ctx, "RA-001", in, "2024-01-01"); err != nil {
			t.Fatalf("CreateRecord: %v", err)
		}
		if _, err := m.CreateRecord(ctx, "RA-001", in, "2024-01-01"); !errors.Is(err, ErrDuplicateRecord) {
			t.Errorf("second create err = %v, want ErrDuplicateRecord", err)
		}
		// Same user, different day is a new logical record.
		if _, err := m.CreateRecord(ctx, "RA-001", in.AddDate(0, 0, 1), "2024-01-02"); err != nil {
			t.Errorf("next-day create err = %v", err)
		}
	})

	t.Run("checkout set exactly once", func(t *testing.T) {
		m := NewMemory()
		created, _ := m.CreateRecord(ctx, "RA-001", in, "2024-01-01")

		if err := m.SetCheckout(ctx, created.RowID, out); err != nil {
			t.Fatalf("SetCheckout: %v", err)
		}
		if err := m.SetCheckout(ctx, created.RowID, out.Add(time.Hour)); !errors.Is(err, ErrAlreadyCheckedOut) {
			t.Errorf("second SetCheckout err = %v, want ErrAlreadyCheckedOut", err)
		}

		rec, _ := m.FindRecord(ctx, "RA-001", "2024-01-01")
		if rec.OutTime == nil || !rec.OutTime.Equal(out) {
			t.Errorf("out_time = %v, want first write %v", rec.OutTime, out)
		}
	})

	t.Run("stale handle", func(t *testing.T) {
		m := NewMemory()
		if err := m.SetCheckout(ctx, "no-such-row", out); !errors.Is(err, ErrRecordNotFound) {
			t.Errorf("SetCheckout err = %v, want ErrRecordNotFound", err)
		}
	})

	t.Run("find returns a copy", func(t *testing.T) {
		m := NewMemory()
		created, _ := m.CreateRecord(ctx, "RA-001", in, "2024-01-01")
		rec, _ := m.FindRecord(ctx, "RA-001", "2024-01-01")
		rec.UserID = "tampered"

		again, _ := m.FindRecord(ctx, "RA-001", "2024-01-01")
		if again.UserID != "RA-001" || again.RowID != created.RowID {
			t.Errorf("stored record mutated through returned copy: %+v", again)
		}
	})
}
