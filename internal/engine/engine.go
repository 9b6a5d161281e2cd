package engine

import (
	"context"
	"errors"
	"log"
	"strings"

	"rewaq/internal/clock"
	"rewaq/internal/ledger"
	"rewaq/internal/lock"
	"rewaq/internal/roster"
)

// Command verbs as typed by participants.
const (
	VerbCheckIn  = "/in"
	VerbCheckOut = "/out"
)

// Kind tags the result of an attendance operation. The engine never produces
// presentation text; the router renders kinds into replies.
type Kind int

const (
	KindCheckedIn Kind = iota
	KindCheckedOut
	KindAlreadyCheckedIn
	KindAlreadyCheckedOut
	KindNotCheckedIn
	KindNotRegistered
	KindMalformed
	KindStoreError
)

// String returns a stable label for logs and metrics.
func (k Kind) String() string {
	switch k {
	case KindCheckedIn:
		return "checked_in"
	case KindCheckedOut:
		return "checked_out"
	case KindAlreadyCheckedIn:
		return "already_checked_in"
	case KindAlreadyCheckedOut:
		return "already_checked_out"
	case KindNotCheckedIn:
		return "not_checked_in"
	case KindNotRegistered:
		return "not_registered"
	case KindMalformed:
		return "malformed"
	case KindStoreError:
		return "store_error"
	}
	return "unknown"
}

// Outcome is the tagged result of an engine operation. Name carries the
// participant's display name when the roster resolved it.
type Outcome struct {
	Kind Kind
	Name string
}

// Engine runs the per-(user, day) attendance state machine:
// NoRecord -> CheckedIn -> CheckedOut, terminal for the day.
type Engine struct {
	roster *roster.Roster
	ledger ledger.Ledger
	locker lock.Locker
	clock  clock.Clock
}

// New wires the engine to its collaborators. locker may be nil, in which case
// read-decide-write sequences run unserialized (the documented race window of
// a store without transactions).
func New(r *roster.Roster, l ledger.Ledger, lk lock.Locker, c clock.Clock) *Engine {
	if c == nil {
		c = clock.NewSystem()
	}
	return &Engine{roster: r, ledger: l, locker: lk, clock: c}
}

// parseCommand validates "<verb> <user_id>" with exactly two tokens. It runs
// before any roster or ledger access.
func parseCommand(verb, line string) (string, bool) {
	parts := strings.Fields(strings.TrimSpace(line))
	if len(parts) != 2 || parts[0] != verb || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// CheckIn handles a "/in <user_id>" line.
func (e *Engine) CheckIn(ctx context.Context, line string) Outcome {
	userID, ok := parseCommand(VerbCheckIn, line)
	if !ok {
		return Outcome{Kind: KindMalformed}
	}
	p, ok := e.roster.Lookup(userID)
	if !ok {
		return Outcome{Kind: KindNotRegistered}
	}

	now := e.clock.Now()
	day := now.Format("2006-01-02")
	defer e.serialize(ctx, userID, day)()

	rec, err := e.ledger.FindRecord(ctx, userID, day)
	if err != nil {
		log.Printf("ledger find failed for %s: %v", userID, err)
		return Outcome{Kind: KindStoreError, Name: p.DisplayName}
	}
	if rec != nil {
		return Outcome{Kind: KindAlreadyCheckedIn, Name: p.DisplayName}
	}

	if _, err := e.ledger.CreateRecord(ctx, userID, now, day); err != nil {
		if errors.Is(err, ledger.ErrDuplicateRecord) {
			// Lost a race with another check-in for the same user; the row
			// that won is the valid one.
			return Outcome{Kind: KindAlreadyCheckedIn, Name: p.DisplayName}
		}
		log.Printf("ledger create failed for %s: %v", userID, err)
		return Outcome{Kind: KindStoreError, Name: p.DisplayName}
	}
	return Outcome{Kind: KindCheckedIn, Name: p.DisplayName}
}

// CheckOut handles a "/out <user_id>" line.
func (e *Engine) CheckOut(ctx context.Context, line string) Outcome {
	userID, ok := parseCommand(VerbCheckOut, line)
	if !ok {
		return Outcome{Kind: KindMalformed}
	}
	p, ok := e.roster.Lookup(userID)
	if !ok {
		return Outcome{Kind: KindNotRegistered}
	}

	now := e.clock.Now()
	day := now.Format("2006-01-02")
	defer e.serialize(ctx, userID, day)()

	rec, err := e.ledger.FindRecord(ctx, userID, day)
	if err != nil {
		log.Printf("ledger find failed for %s: %v", userID, err)
		return Outcome{Kind: KindStoreError, Name: p.DisplayName}
	}
	if rec == nil {
		return Outcome{Kind: KindNotCheckedIn, Name: p.DisplayName}
	}
	if rec.CheckedOut() {
		return Outcome{Kind: KindAlreadyCheckedOut, Name: p.DisplayName}
	}

	if err := e.ledger.SetCheckout(ctx, rec.RowID, now); err != nil {
		if errors.Is(err, ledger.ErrAlreadyCheckedOut) {
			return Outcome{Kind: KindAlreadyCheckedOut, Name: p.DisplayName}
		}
		log.Printf("ledger checkout failed for %s: %v", userID, err)
		return Outcome{Kind: KindStoreError, Name: p.DisplayName}
	}
	return Outcome{Kind: KindCheckedOut, Name: p.DisplayName}
}

// serialize takes the per-(user, day) lock and returns its release. A locker
// failure degrades to the unserialized path rather than failing the command.
func (e *Engine) serialize(ctx context.Context, userID, day string) func() {
	if e.locker == nil {
		return func() {}
	}
	release, err := e.locker.Acquire(ctx, userID+"|"+day)
	if err != nil {
		log.Printf("lock acquire failed for %s: %v", userID, err)
		return func() {}
	}
	return release
}
