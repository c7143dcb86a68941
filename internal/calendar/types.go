package calendar

import (
	"time"

	"github.com/google/uuid"
)

// Work-week policy. Reservations live on weekdays between opening and closing
// hour, in 30-minute slots of at least one and at most MaxSlots slots.
const (
	OpeningHour = 9
	ClosingHour = 17

	SlotMinutes  = 30
	SlotDuration = SlotMinutes * time.Minute
	MaxSlots     = 6
)

// Reservation is a booked interval in the room calendar. The ID is assigned
// by the store on insert; StartAt/EndAt carry second precision.
type Reservation struct {
	ID                uuid.UUID `json:"id"`
	BookingPersonName string    `json:"bookingPersonName"`
	StartAt           time.Time `json:"startDate"`
	EndAt             time.Time `json:"endDate"`
}

// Truncated returns a copy with both timestamps truncated to whole seconds.
// Sub-second components are discarded before any rule check.
func (r Reservation) Truncated() Reservation {
	r.StartAt = r.StartAt.Truncate(time.Second)
	r.EndAt = r.EndAt.Truncate(time.Second)
	return r
}

// OpenSlot is an unbooked interval within a working day. Derived on each
// query, never persisted.
type OpenSlot struct {
	StartAt time.Time `json:"slotStartDate"`
	EndAt   time.Time `json:"slotEndDate"`
}

// IsWorkday reports whether t falls on Monday through Friday.
func IsWorkday(t time.Time) bool {
	wd := t.Weekday()
	return wd != time.Saturday && wd != time.Sunday
}

// EndOfWorkWeek returns Friday 23:59:59.999999999 of the ISO week containing t
// (weeks start on Monday, so a Sunday belongs to the week of the preceding
// Friday).
func EndOfWorkWeek(t time.Time) time.Time {
	friday := t.AddDate(0, 0, 5-isoWeekday(t))
	y, m, d := friday.Date()
	return time.Date(y, m, d, 23, 59, 59, int(time.Second-time.Nanosecond), t.Location())
}

// StartOfWorkWeek returns Monday 00:00 of the ISO week containing t.
func StartOfWorkWeek(t time.Time) time.Time {
	monday := t.AddDate(0, 0, 1-isoWeekday(t))
	y, m, d := monday.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
