package ledger

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres persists attendance rows in Postgres.
type Postgres struct {
	db *sql.DB
}

// NewPostgres creates a ledger backed by the given connection.
func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

// FindRecord returns the row for (userID, day), or nil when absent.
func (p *Postgres) FindRecord(ctx context.Context, userID, day string) (*Record, error) {
	row := p.db.QueryRowContext(ctx, `
		SELECT row_id, user_id, day::text, in_time, out_time
		FROM attendance_records
		WHERE user_id = $1 AND day = $2::date
	`, userID, day)
	var rec Record
	if err := row.Scan(&rec.RowID, &rec.UserID, &rec.Day, &rec.InTime, &rec.OutTime); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

// CreateRecord appends a new row. The unique index on (user_id, day) is the
// store-side backstop against a race between two concurrent check-ins.
func (p *Postgres) CreateRecord(ctx context.Context, userID string, inTime time.Time, day string) (Record, error) {
	rec := Record{
		RowID:  uuid.NewString(),
		UserID: userID,
		Day:    day,
		InTime: inTime,
	}
	_, err := p.db.ExecContext(ctx, `
		INSERT INTO attendance_records (row_id, user_id, day, in_time)
		VALUES ($1, $2, $3::date, $4)
	`, rec.RowID, rec.UserID, rec.Day, rec.InTime)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return Record{}, ErrDuplicateRecord
		}
		return Record{}, err
	}
	return rec, nil
}

// SetCheckout sets out_time on exactly one row, refusing to overwrite.
func (p *Postgres) SetCheckout(ctx context.Context, rowID string, outTime time.Time) error {
	res, err := p.db.ExecContext(ctx, `
		UPDATE attendance_records
		SET out_time = $2
		WHERE row_id = $1 AND out_time IS NULL
	`, rowID, outTime)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 1 {
		return nil
	}

	// Nothing updated: distinguish a stale handle from a completed checkout.
	var checkedOut bool
	row := p.db.QueryRowContext(ctx, `SELECT out_time IS NOT NULL FROM attendance_records WHERE row_id = $1`, rowID)
	if err := row.Scan(&checkedOut); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrRecordNotFound
		}
		return err
	}
	return ErrAlreadyCheckedOut
}
