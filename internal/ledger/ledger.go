package ledger

import (
	"context"
	"errors"
	"time"
)

// Record is one day's check-in/check-out pair for one participant.
// RowID is the stable handle used to address the row on checkout; it stays
// valid for the lifetime of the row regardless of how the backing store
// orders or rewrites its pages.
type Record struct {
	RowID   string
	UserID  string
	Day     string // ISO date, e.g. 2024-01-01
	InTime  time.Time
	OutTime *time.Time
}

// CheckedOut reports whether the departure time has been recorded.
func (r Record) CheckedOut() bool {
	return r.OutTime != nil
}

var (
	// ErrDuplicateRecord is returned when a record for (user, day) already exists.
	ErrDuplicateRecord = errors.New("attendance record already exists for this day")
	// ErrAlreadyCheckedOut is returned when the row's out_time is already set.
	ErrAlreadyCheckedOut = errors.New("attendance record already checked out")
	// ErrRecordNotFound is returned when a row handle no longer resolves.
	ErrRecordNotFound = errors.New("attendance record not found")
)

// Ledger is the store of daily attendance rows. Implementations are expected
// to reflect this process's own writes on subsequent reads; the engine treats
// a missing record conservatively because the backing store may be eventually
// consistent across processes.
type Ledger interface {
	// FindRecord returns the record for (userID, day), or nil when absent.
	FindRecord(ctx context.Context, userID, day string) (*Record, error)
	// CreateRecord appends a new row with in_time set. It fails with
	// ErrDuplicateRecord when a row for (userID, day) is already visible.
	CreateRecord(ctx context.Context, userID string, inTime time.Time, day string) (Record, error)
	// SetCheckout sets out_time on exactly one existing row. It fails with
	// ErrAlreadyCheckedOut when out_time is already set and ErrRecordNotFound
	// when the handle is stale.
	SetCheckout(ctx context.Context, rowID string, outTime time.Time) error
}
