package transcript

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// MessageType is the queue message type carrying a transcript event.
const MessageType = "interaction"

// Event is one user message and the reply it produced. The transcript is an
// append-only log; events are never updated or deleted.
type Event struct {
	ID     string    `json:"id"`
	ChatID string    `json:"chat_id"`
	Text   string    `json:"text"`
	Reply  string    `json:"reply"`
	At     time.Time `json:"at"`
}

// NewEvent builds an event with a fresh id.
func NewEvent(chatID, text, reply string, at time.Time) Event {
	return Event{
		ID:     uuid.NewString(),
		ChatID: chatID,
		Text:   text,
		Reply:  reply,
		At:     at,
	}
}

// Repository persists transcript events in Postgres.
type Repository struct {
	db *sql.DB
}

// NewRepository creates a repo.
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// Append inserts one event.
func (r *Repository) Append(ctx context.Context, evt Event) error {
	if evt.ID == "" {
		evt.ID = uuid.NewString()
	}
	if evt.At.IsZero() {
		evt.At = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO transcripts (id, chat_id, user_text, reply, at)
		VALUES ($1, $2, $3, $4, $5)
	`, evt.ID, evt.ChatID, evt.Text, evt.Reply, evt.At)
	return err
}

// Recent returns the latest events, newest first.
func (r *Repository) Recent(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, chat_id, user_text, reply, at
		FROM transcripts
		ORDER BY at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var evt Event
		if err := rows.Scan(&evt.ID, &evt.ChatID, &evt.Text, &evt.Reply, &evt.At); err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, rows.Err()
}
