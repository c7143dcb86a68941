package calendar

import (
	"context"
	"errors"
	"testing"
	"time"
)

func entry(start, end time.Time) Reservation {
	return Reservation{BookingPersonName: "Jane Doe", StartAt: start, EndAt: end}
}

func expectSlots(t *testing.T, got []OpenSlot, want [][2]time.Time) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d slots, got %d: %v", len(want), len(got), got)
	}
	for i, w := range want {
		if !got[i].StartAt.Equal(w[0]) || !got[i].EndAt.Equal(w[1]) {
			t.Fatalf("slot %d: expected [%v, %v), got [%v, %v)", i, w[0], w[1], got[i].StartAt, got[i].EndAt)
		}
	}
}

func TestDayBounds_Snap(t *testing.T) {
	cases := []struct {
		name     string
		in       time.Time
		wantHour int
		wantMin  int
	}{
		{"before opening", at(8, 7, 45), 9, 0},
		{"midnight", time.Date(2025, 1, 8, 0, 0, 0, 0, time.Local), 9, 0},
		{"on the hour", at(8, 10, 0), 10, 0},
		{"just past the hour", at(8, 9, 10), 9, 30},
		{"on the half hour", at(8, 9, 30), 9, 30},
		{"past the half hour", at(8, 9, 40), 10, 0},
	}
	for _, c := range cases {
		start, end := DayBounds(c.in)
		if start.Hour() != c.wantHour || start.Minute() != c.wantMin {
			t.Fatalf("%s: expected %02d:%02d, got %02d:%02d", c.name, c.wantHour, c.wantMin, start.Hour(), start.Minute())
		}
		if end.Hour() != ClosingHour || end.Minute() != 0 || end.Day() != c.in.Day() {
			t.Fatalf("%s: unexpected day end %v", c.name, end)
		}
	}
}

func TestOpenSlotsForDay_EmptyDay(t *testing.T) {
	slots, err := OpenSlotsForDay(at(8, 8, 0), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectSlots(t, slots, [][2]time.Time{{at(8, 9, 0), at(8, 17, 0)}})
}

func TestOpenSlotsForDay_SingleReservation(t *testing.T) {
	slots, err := OpenSlotsForDay(at(8, 8, 0), []Reservation{
		entry(at(8, 10, 0), at(8, 12, 0)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectSlots(t, slots, [][2]time.Time{
		{at(8, 9, 0), at(8, 10, 0)},
		{at(8, 12, 0), at(8, 17, 0)},
	})
}

func TestOpenSlotsForDay_FullyBooked(t *testing.T) {
	slots, err := OpenSlotsForDay(at(8, 8, 0), []Reservation{
		entry(at(8, 9, 0), at(8, 17, 0)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("expected no open slots, got %v", slots)
	}
}

func TestOpenSlotsForDay_AdjacentReservations(t *testing.T) {
	slots, err := OpenSlotsForDay(at(8, 8, 0), []Reservation{
		entry(at(8, 10, 0), at(8, 11, 0)),
		entry(at(8, 11, 0), at(8, 12, 0)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectSlots(t, slots, [][2]time.Time{
		{at(8, 9, 0), at(8, 10, 0)},
		{at(8, 12, 0), at(8, 17, 0)},
	})
}

func TestOpenSlotsForDay_ReservationTouchingClose(t *testing.T) {
	// Ends exactly at 17:00: no zero-length tail slot.
	slots, err := OpenSlotsForDay(at(8, 8, 0), []Reservation{
		entry(at(8, 16, 30), at(8, 17, 0)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectSlots(t, slots, [][2]time.Time{{at(8, 9, 0), at(8, 16, 30)}})
}

func TestOpenSlotsForDay_MidDayScanStart(t *testing.T) {
	slots, err := OpenSlotsForDay(at(8, 10, 5), []Reservation{
		entry(at(8, 11, 0), at(8, 11, 30)),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectSlots(t, slots, [][2]time.Time{
		{at(8, 10, 30), at(8, 11, 0)},
		{at(8, 11, 30), at(8, 17, 0)},
	})
}

func TestOpenSlotsForDay_Weekend(t *testing.T) {
	if _, err := OpenSlotsForDay(at(11, 10, 0), nil); !errors.Is(err, ErrNotAWeekday) {
		t.Fatalf("expected ErrNotAWeekday, got %v", err)
	}
	if _, err := OpenSlotsForDay(at(12, 10, 0), nil); !errors.Is(err, ErrNotAWeekday) {
		t.Fatalf("expected ErrNotAWeekday, got %v", err)
	}
}

// Open slots plus reservations must exactly tile the scanned window.
func TestOpenSlotsForDay_Tiling(t *testing.T) {
	reservations := []Reservation{
		entry(at(8, 9, 30), at(8, 10, 30)),
		entry(at(8, 13, 0), at(8, 13, 30)),
		entry(at(8, 16, 30), at(8, 17, 0)),
	}
	slots, err := OpenSlotsForDay(at(8, 8, 0), reservations)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	type interval struct {
		start, end time.Time
	}
	var all []interval
	for _, r := range reservations {
		all = append(all, interval{r.StartAt, r.EndAt})
	}
	for _, s := range slots {
		all = append(all, interval{s.StartAt, s.EndAt})
	}
	// Sort by start (insertion sort keeps the test dependency-free).
	for i := 1; i < len(all); i++ {
		for j := i; j > 0 && all[j].start.Before(all[j-1].start); j-- {
			all[j], all[j-1] = all[j-1], all[j]
		}
	}

	cursor := at(8, 9, 0)
	for _, iv := range all {
		if !iv.start.Equal(cursor) {
			t.Fatalf("gap or overlap at %v: next interval starts %v", cursor, iv.start)
		}
		cursor = iv.end
	}
	if !cursor.Equal(at(8, 17, 0)) {
		t.Fatalf("tiling ends at %v, expected 17:00", cursor)
	}
}

type stubDayEntries map[int][]Reservation

func (s stubDayEntries) ListByStartBetween(ctx context.Context, from, to time.Time) ([]Reservation, error) {
	return s[from.Day()], nil
}

func TestOpenSlotsForWeek(t *testing.T) {
	// Thursday 08:00; one booking on Friday morning.
	now := time.Date(2025, 1, 9, 8, 0, 0, 0, time.Local)
	store := stubDayEntries{
		10: {entry(at(10, 9, 0), at(10, 10, 0))},
	}

	slots, err := OpenSlotsForWeek(context.Background(), now, store)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectSlots(t, slots, [][2]time.Time{
		{at(9, 9, 0), at(9, 17, 0)},
		{at(10, 10, 0), at(10, 17, 0)},
	})
}

func TestOpenSlotsForWeek_Friday(t *testing.T) {
	now := time.Date(2025, 1, 10, 8, 0, 0, 0, time.Local)
	slots, err := OpenSlotsForWeek(context.Background(), now, stubDayEntries{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	expectSlots(t, slots, [][2]time.Time{{at(10, 9, 0), at(10, 17, 0)}})
}

func TestOpenSlotsForWeek_Weekend(t *testing.T) {
	now := time.Date(2025, 1, 11, 10, 0, 0, 0, time.Local)
	if _, err := OpenSlotsForWeek(context.Background(), now, stubDayEntries{}); !errors.Is(err, ErrNotAWeekday) {
		t.Fatalf("expected ErrNotAWeekday, got %v", err)
	}
}
