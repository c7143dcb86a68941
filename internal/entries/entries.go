package entries

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/Marczeeee/allianz-calendar-app/internal/calendar"
	"github.com/Marczeeee/allianz-calendar-app/internal/db"
)

// createLockKey is the advisory lock key serializing every
// validate-then-insert sequence. A single service-wide key: the overlap rule
// spans all reservations, so nothing finer can be locked.
const createLockKey = 815114

// ErrNoReservation is returned when no reservation covers a queried instant.
var ErrNoReservation = db.ErrNotFound

const overlapCondition = `(start_at<=$1 AND end_at>$1) OR (start_at<$2 AND end_at>=$2) OR (start_at<=$1 AND end_at>=$2)`

type Repo struct{ db *db.DB }

func NewRepo(d *db.DB) *Repo { return &Repo{db: d} }

// Save inserts the reservation and returns it with its assigned id. It does
// not validate; use CreateValidated for the full checked create path.
func (r *Repo) Save(ctx context.Context, e calendar.Reservation) (calendar.Reservation, error) {
	return save(ctx, r.db, e)
}

func save(ctx context.Context, q db.Tx, e calendar.Reservation) (calendar.Reservation, error) {
	e.ID = uuid.New()
	err := q.Exec(ctx, `
INSERT INTO calendar_entries(id, booking_person_name, start_at, end_at)
VALUES ($1,$2,$3,$4)`,
		e.ID, e.BookingPersonName, e.StartAt, e.EndAt,
	)
	if err != nil {
		return calendar.Reservation{}, fmt.Errorf("insert calendar entry: %w", err)
	}
	return e, nil
}

// ListByStartBetween returns reservations whose start falls in [from, to],
// ordered by start ascending.
func (r *Repo) ListByStartBetween(ctx context.Context, from, to time.Time) ([]calendar.Reservation, error) {
	rows, err := r.db.Query(ctx, `
SELECT id, booking_person_name, start_at, end_at
FROM calendar_entries
WHERE start_at BETWEEN $1 AND $2
ORDER BY start_at ASC`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.Reservation
	for rows.Next() {
		var e calendar.Reservation
		if err := rows.Scan(&e.ID, &e.BookingPersonName, &e.StartAt, &e.EndAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// CountOverlapping counts existing reservations intersecting [start, end)
// under the calendar.OverlapCounter predicate.
func (r *Repo) CountOverlapping(ctx context.Context, start, end time.Time) (int64, error) {
	return countOverlapping(ctx, r.db, start, end)
}

func countOverlapping(ctx context.Context, q db.Tx, start, end time.Time) (int64, error) {
	var n int64
	err := q.QueryRow(ctx,
		`SELECT count(*) FROM calendar_entries WHERE `+overlapCondition,
		start, end,
	).Scan(&n)
	return n, err
}

// FindContaining returns the reservation whose interval covers instant
// (start <= instant <= end), or ErrNoReservation.
func (r *Repo) FindContaining(ctx context.Context, instant time.Time) (calendar.Reservation, error) {
	var e calendar.Reservation
	err := r.db.QueryRow(ctx, `
SELECT id, booking_person_name, start_at, end_at
FROM calendar_entries
WHERE start_at<=$1 AND end_at>=$1
LIMIT 1`, instant).
		Scan(&e.ID, &e.BookingPersonName, &e.StartAt, &e.EndAt)
	if err != nil {
		return calendar.Reservation{}, db.WrapNotFound(err)
	}
	return e, nil
}

// CreateValidated truncates the candidate to second precision, validates it
// against the business rules and inserts it, all inside one transaction
// holding an advisory lock. Concurrent creates serialize on the lock, so two
// overlapping candidates can never both pass the overlap check. Rule
// violations come back as *calendar.ValidationError.
func (r *Repo) CreateValidated(ctx context.Context, candidate calendar.Reservation, now time.Time) (calendar.Reservation, error) {
	candidate = candidate.Truncated()

	var created calendar.Reservation
	err := r.db.InTx(ctx, func(tx db.Tx) error {
		if err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, createLockKey); err != nil {
			return err
		}

		counter := calendar.OverlapCounterFunc(func(ctx context.Context, start, end time.Time) (int64, error) {
			return countOverlapping(ctx, tx, start, end)
		})
		if err := calendar.Validate(ctx, candidate, now, counter); err != nil {
			return err
		}

		var err error
		created, err = save(ctx, tx, candidate)
		return err
	})
	if err != nil {
		return calendar.Reservation{}, err
	}
	return created, nil
}
