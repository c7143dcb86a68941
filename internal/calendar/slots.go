package calendar

import (
	"context"
	"time"
)

// DayBounds returns the scan window for open slots on the day containing t.
// The start is t clamped to minute precision and snapped forward to the next
// slot boundary, never earlier than the opening hour; the end is the same
// date at the closing hour.
func DayBounds(t time.Time) (start, end time.Time) {
	start = t.Truncate(time.Minute)
	y, m, d := start.Date()
	switch {
	case start.Hour() < OpeningHour:
		start = time.Date(y, m, d, OpeningHour, 0, 0, 0, t.Location())
	case start.Minute() > 0 && start.Minute() <= SlotMinutes:
		start = time.Date(y, m, d, start.Hour(), SlotMinutes, 0, 0, t.Location())
	case start.Minute() > SlotMinutes:
		start = time.Date(y, m, d, start.Hour()+1, 0, 0, 0, t.Location())
	}
	end = time.Date(y, m, d, ClosingHour, 0, 0, 0, t.Location())
	return start, end
}

// OpenSlotsForDay computes the free intervals of the day containing day,
// within working hours, in chronological order. entries must hold the day's
// reservations with start inside the scan window, sorted by start. Open
// intervals are maximal: consecutive free slots merge, and a fully booked day
// yields none.
func OpenSlotsForDay(day time.Time, entries []Reservation) ([]OpenSlot, error) {
	if !IsWorkday(day) {
		return nil, ErrNotAWeekday
	}

	dayStart, dayEnd := DayBounds(day)

	byStart := make(map[int64]Reservation, len(entries))
	for _, e := range entries {
		byStart[e.StartAt.Unix()] = e
	}

	var (
		slots   []OpenSlot
		pending time.Time
		open    bool
	)
	cursor := dayStart
	for !cursor.After(dayEnd) {
		if e, booked := byStart[cursor.Unix()]; booked {
			if open {
				slots = append(slots, OpenSlot{StartAt: pending, EndAt: cursor})
				open = false
			}
			cursor = e.EndAt
			continue
		}
		if !open {
			pending = cursor
			open = true
		}
		cursor = cursor.Add(SlotDuration)
	}
	// A pending interval reaching dayEnd is always emitted; the loop's own
	// termination must not drop it. Zero-length tails are skipped.
	if open && pending.Before(dayEnd) {
		slots = append(slots, OpenSlot{StartAt: pending, EndAt: dayEnd})
	}
	return slots, nil
}

// DayEntries supplies a day's reservations for the slot scan, ordered by
// start ascending and filtered to [from, to].
type DayEntries interface {
	ListByStartBetween(ctx context.Context, from, to time.Time) ([]Reservation, error)
}

// OpenSlotsForWeek concatenates the per-day open slots from the day
// containing now through Friday of the same week, ascending by day then time.
// Days after the current one scan from the opening hour.
func OpenSlotsForWeek(ctx context.Context, now time.Time, store DayEntries) ([]OpenSlot, error) {
	slots, err := OpenSlotsAt(ctx, now, store)
	if err != nil {
		return nil, err
	}

	y, m, d := now.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	for wd := isoWeekday(now) + 1; wd <= 5; wd++ {
		dayStart = dayStart.AddDate(0, 0, 1)
		daySlots, err := OpenSlotsAt(ctx, dayStart, store)
		if err != nil {
			return nil, err
		}
		slots = append(slots, daySlots...)
	}
	return slots, nil
}

// OpenSlotsAt fetches the scan window's reservations from store and computes
// the open slots of the day containing day.
func OpenSlotsAt(ctx context.Context, day time.Time, store DayEntries) ([]OpenSlot, error) {
	if !IsWorkday(day) {
		return nil, ErrNotAWeekday
	}
	from, to := DayBounds(day)
	entries, err := store.ListByStartBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return OpenSlotsForDay(day, entries)
}

func isoWeekday(t time.Time) int {
	wd := int(t.Weekday())
	if wd == 0 {
		return 7
	}
	return wd
}
