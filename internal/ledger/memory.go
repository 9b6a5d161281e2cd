package ledger

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Memory is a map-backed ledger for dev and tests.
type Memory struct {
	mu   sync.Mutex
	rows map[string]*Record // keyed by row id
}

// NewMemory creates an empty in-memory ledger.
func NewMemory() *Memory {
	return &Memory{rows: make(map[string]*Record)}
}

// FindRecord scans rows for (userID, day).
func (m *Memory) FindRecord(ctx context.Context, userID, day string) (*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.Day == day {
			cp := *r
			if r.OutTime != nil {
				t := *r.OutTime
				cp.OutTime = &t
			}
			return &cp, nil
		}
	}
	return nil, nil
}

// CreateRecord appends a row unless one already exists for (userID, day).
func (m *Memory) CreateRecord(ctx context.Context, userID string, inTime time.Time, day string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.rows {
		if r.UserID == userID && r.Day == day {
			return Record{}, ErrDuplicateRecord
		}
	}
	rec := Record{
		RowID:  uuid.NewString(),
		UserID: userID,
		Day:    day,
		InTime: inTime,
	}
	m.rows[rec.RowID] = &rec
	return rec, nil
}

// SetCheckout sets out_time on the addressed row exactly once.
func (m *Memory) SetCheckout(ctx context.Context, rowID string, outTime time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rows[rowID]
	if !ok {
		return ErrRecordNotFound
	}
	if r.OutTime != nil {
		return ErrAlreadyCheckedOut
	}
	r.OutTime = &outTime
	return nil
}
