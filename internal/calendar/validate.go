package calendar

import (
	"context"
	"fmt"
	"time"
)

// OverlapCounter reports how many existing reservations intersect the
// candidate interval. Two intervals overlap when
//
//	existing.start <= start AND existing.end > start, OR
//	existing.start <  end   AND existing.end >= end,  OR
//	existing.start <= start AND existing.end >= end.
type OverlapCounter interface {
	CountOverlapping(ctx context.Context, start, end time.Time) (int64, error)
}

// OverlapCounterFunc adapts a function to the OverlapCounter interface.
type OverlapCounterFunc func(ctx context.Context, start, end time.Time) (int64, error)

func (f OverlapCounterFunc) CountOverlapping(ctx context.Context, start, end time.Time) (int64, error) {
	return f(ctx, start, end)
}

// Validate decides whether candidate may be created. It is pure over its
// inputs: now is the caller's clock, counter the caller's view of existing
// reservations. Rules run in fixed order and the first failing rule wins,
// returned as a *ValidationError. The candidate timestamps must already be
// truncated to whole seconds (Reservation.Truncated).
func Validate(ctx context.Context, candidate Reservation, now time.Time, counter OverlapCounter) error {
	start := candidate.StartAt
	end := candidate.EndAt

	if !start.Before(end) {
		return newValidationError(ReasonEndBeforeStart)
	}
	if start.Before(now) {
		return newValidationError(ReasonStartNotInFuture)
	}
	if start.After(EndOfWorkWeek(now)) {
		return newValidationError(ReasonNotWithinWorkWeek)
	}
	if start.Hour() < OpeningHour {
		return newValidationError(ReasonStartTooEarly)
	}
	if end.Hour() > ClosingHour {
		return newValidationError(ReasonEndTooLate)
	}

	minutes := int64(end.Sub(start) / time.Minute)
	if minutes/SlotMinutes <= 0 {
		return newValidationError(ReasonTooShort)
	}
	if minutes/SlotMinutes > MaxSlots {
		return newValidationError(ReasonTooLong)
	}
	if minutes%SlotMinutes != 0 {
		return newValidationError(ReasonNotSlotAligned)
	}
	if start.Minute()%SlotMinutes != 0 {
		return newValidationError(ReasonStartNotOnHalfHour)
	}

	n, err := counter.CountOverlapping(ctx, start, end)
	if err != nil {
		return fmt.Errorf("count overlapping: %w", err)
	}
	if n > 0 {
		return newValidationError(ReasonOverlapsExisting)
	}
	return nil
}
