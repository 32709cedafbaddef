package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-WorkshopBooking/pkg/types"
)

var (
	ErrInvalidTimeFormat     = errors.New("domain: invalid time format")
	ErrInPast                = errors.New("domain: booking time is in the past")
	ErrTooFarAhead           = errors.New("domain: booking time is beyond the booking horizon")
	ErrClosedDay             = errors.New("domain: workshop is closed on this day")
	ErrOutsideOperatingHours = errors.New("domain: booking time is outside operating hours")
)

// ScheduleRules are the calendar constraints a booking must satisfy at creation time.
type ScheduleRules struct {
	HorizonMonths int
	ClosedWeekday time.Weekday
	OpenTime      types.TimeString
	CloseTime     types.TimeString // inclusive
	Location      *time.Location
}

// DefaultScheduleRules: three months ahead, closed on Sunday, open 08:00-16:30 local time.
func DefaultScheduleRules() ScheduleRules {
	return ScheduleRules{
		HorizonMonths: DefaultHorizonMonths,
		ClosedWeekday: time.Sunday,
		OpenTime:      types.MustTimeString(DefaultOpenTime),
		CloseTime:     types.MustTimeString(DefaultCloseTime),
		Location:      time.Local,
	}
}

func (r ScheduleRules) location() *time.Location {
	if r.Location == nil {
		return time.Local
	}
	return r.Location
}

// At combines a calendar date and a time of day in the workshop's location.
func (r ScheduleRules) At(date time.Time, t types.TimeString) time.Time {
	return t.On(date, r.location())
}

// ValidateSchedule checks a candidate date and time of day against the rules.
// Rules are evaluated in order and the first violation is returned:
// time format, in the past, beyond the horizon, closed weekday, operating hours.
// On success the normalized "HH:MM" time is returned.
func ValidateSchedule(date time.Time, rawTime string, now time.Time, rules ScheduleRules) (types.TimeString, error) {
	t, err := types.NewTimeStringFromString(rawTime)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, rawTime)
	}

	at := rules.At(date, t)

	if !at.After(now) {
		return "", ErrInPast
	}

	if at.After(now.AddDate(0, rules.HorizonMonths, 0)) {
		return "", fmt.Errorf("%w: at most %d months ahead", ErrTooFarAhead, rules.HorizonMonths)
	}

	if at.Weekday() == rules.ClosedWeekday {
		return "", fmt.Errorf("%w: %s", ErrClosedDay, at.Weekday())
	}

	if t.IsBefore(rules.OpenTime) || t.IsAfter(rules.CloseTime) {
		return "", fmt.Errorf("%w: %s-%s", ErrOutsideOperatingHours, rules.OpenTime, rules.CloseTime)
	}

	return t, nil
}
