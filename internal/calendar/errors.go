package calendar

import "errors"

// Reason identifies the business rule a rejected reservation violated. The
// codes are stable and machine-matchable; callers branch on them, the HTTP
// boundary reports the matching message.
type Reason string

const (
	ReasonEndBeforeStart     Reason = "END_BEFORE_START"
	ReasonStartNotInFuture   Reason = "START_NOT_IN_FUTURE"
	ReasonNotWithinWorkWeek  Reason = "NOT_WITHIN_WORKWEEK"
	ReasonStartTooEarly      Reason = "START_TOO_EARLY"
	ReasonEndTooLate         Reason = "END_TOO_LATE"
	ReasonTooShort           Reason = "TOO_SHORT"
	ReasonTooLong            Reason = "TOO_LONG"
	ReasonNotSlotAligned     Reason = "NOT_SLOT_ALIGNED"
	ReasonStartNotOnHalfHour Reason = "START_NOT_ON_HALF_HOUR"
	ReasonOverlapsExisting   Reason = "OVERLAPS_EXISTING"
)

var reasonMessages = map[Reason]string{
	ReasonEndBeforeStart:     "Start date must be before end date!",
	ReasonStartNotInFuture:   "Start date must be in the future!",
	ReasonNotWithinWorkWeek:  "Reservation must be on a weekday!",
	ReasonStartTooEarly:      "Reservation must start after 9:00!",
	ReasonEndTooLate:         "Reservation must end before 17:00!",
	ReasonTooShort:           "Reservation length should be at least 30 minutes!",
	ReasonTooLong:            "Reservation can't be longer than 3 hours!",
	ReasonNotSlotAligned:     "Reservation should use 30 minutes long slots!",
	ReasonStartNotOnHalfHour: "Reservation must start at 00 or 30 minutes!",
	ReasonOverlapsExisting:   "Reservation dates overlapping with existing reservation(s)!",
}

// ValidationError is a typed rejection of a candidate reservation. It is the
// only error Validate returns for rule violations; internal faults (a failing
// overlap query) surface as ordinary wrapped errors.
type ValidationError struct {
	Code Reason
}

func (e *ValidationError) Error() string {
	if msg, ok := reasonMessages[e.Code]; ok {
		return msg
	}
	return string(e.Code)
}

func newValidationError(code Reason) *ValidationError {
	return &ValidationError{Code: code}
}

// ErrNotAWeekday is returned by the slot finder when asked about a Saturday
// or Sunday. Caller-usage error, not a rule rejection.
var ErrNotAWeekday = errors.New("Today is not weekday, reservation is not available!")
