package roster

import (
	"context"
	"database/sql"
)

// Participant is a registered member of the space.
type Participant struct {
	ID          string
	DisplayName string
}

// Roster is the read-only membership directory, loaded once at startup.
// Refreshing it is an administrative action (restart); nothing mutates it
// after Load returns.
type Roster struct {
	byID map[string]Participant
}

// New builds a roster from a fixed participant list. Used in tests and when
// the directory is supplied inline.
func New(participants []Participant) *Roster {
	byID := make(map[string]Participant, len(participants))
	for _, p := range participants {
		byID[p.ID] = p
	}
	return &Roster{byID: byID}
}

// Load reads the participants table once.
func Load(ctx context.Context, db *sql.DB) (*Roster, error) {
	rows, err := db.QueryContext(ctx, `SELECT user_id, display_name FROM participants`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var participants []Participant
	for rows.Next() {
		var p Participant
		if err := rows.Scan(&p.ID, &p.DisplayName); err != nil {
			return nil, err
		}
		participants = append(participants, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return New(participants), nil
}

// Lookup resolves a membership code to a participant.
func (r *Roster) Lookup(userID string) (Participant, bool) {
	p, ok := r.byID[userID]
	return p, ok
}

// Size returns the number of registered participants.
func (r *Roster) Size() int {
	return len(r.byID)
}
