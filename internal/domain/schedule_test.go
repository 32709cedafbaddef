package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Wednesday 2026-10-14 09:00 UTC
var testNow = time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)

func testRules() ScheduleRules {
	rules := DefaultScheduleRules()
	rules.Location = time.UTC
	return rules
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestValidateSchedule(t *testing.T) {
	thursday := day(2026, 10, 15)

	tests := []struct {
		name    string
		date    time.Time
		time    string
		want    string
		wantErr error
	}{
		{name: "regular slot", date: thursday, time: "10:00", want: "10:00"},
		{name: "normalizes short hour", date: thursday, time: "9:05", want: "09:05"},
		{name: "opening time", date: thursday, time: "08:00", want: "08:00"},
		{name: "closing time is inclusive", date: thursday, time: "16:30", want: "16:30"},
		{name: "one minute after closing", date: thursday, time: "16:31", wantErr: ErrOutsideOperatingHours},
		{name: "five pm", date: thursday, time: "17:00", wantErr: ErrOutsideOperatingHours},
		{name: "before opening", date: thursday, time: "07:59", wantErr: ErrOutsideOperatingHours},
		{name: "garbage time", date: thursday, time: "ten", wantErr: ErrInvalidTimeFormat},
		{name: "hour out of range", date: thursday, time: "24:00", wantErr: ErrInvalidTimeFormat},
		{name: "minute out of range", date: thursday, time: "10:60", wantErr: ErrInvalidTimeFormat},
		{name: "earlier today", date: day(2026, 10, 14), time: "08:30", wantErr: ErrInPast},
		{name: "exactly now", date: day(2026, 10, 14), time: "09:00", wantErr: ErrInPast},
		{name: "later today", date: day(2026, 10, 14), time: "09:01", want: "09:01"},
		{name: "yesterday", date: day(2026, 10, 13), time: "10:00", wantErr: ErrInPast},
		{name: "exactly three months ahead", date: day(2027, 1, 14), time: "09:00", want: "09:00"},
		{name: "just beyond horizon", date: day(2027, 1, 14), time: "09:01", wantErr: ErrTooFarAhead},
		{name: "sunday", date: day(2026, 10, 18), time: "10:00", wantErr: ErrClosedDay},
		{name: "sunday outside hours reports closed day", date: day(2026, 10, 18), time: "20:00", wantErr: ErrClosedDay},
		{name: "saturday is open", date: day(2026, 10, 17), time: "10:00", want: "10:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateSchedule(tt.date, tt.time, testNow, testRules())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.True(t, got.IsZero())
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestValidateSchedule_RuleOrder(t *testing.T) {
	// In the past and on a Sunday outside hours: the past check wins.
	_, err := ValidateSchedule(day(2026, 10, 11), "20:00", testNow, testRules())
	assert.ErrorIs(t, err, ErrInPast)

	// Beyond the horizon and on a Sunday: the horizon check wins.
	_, err = ValidateSchedule(day(2027, 2, 7), "10:00", testNow, testRules())
	assert.ErrorIs(t, err, ErrTooFarAhead)
}

func TestValidateSchedule_CustomRules(t *testing.T) {
	rules := testRules()
	rules.ClosedWeekday = time.Monday
	rules.CloseTime = "18:00"

	_, err := ValidateSchedule(day(2026, 10, 19), "10:00", testNow, rules)
	assert.ErrorIs(t, err, ErrClosedDay)

	got, err := ValidateSchedule(day(2026, 10, 18), "17:45", testNow, rules)
	require.NoError(t, err)
	assert.Equal(t, "17:45", got.String())
}

func TestHasCapacity(t *testing.T) {
	assert.True(t, HasCapacity(0, DefaultDailyCapacity))
	assert.True(t, HasCapacity(9, DefaultDailyCapacity))
	assert.False(t, HasCapacity(10, DefaultDailyCapacity))
	assert.False(t, HasCapacity(11, DefaultDailyCapacity))

	a := NewAvailability(4, 10)
	assert.Equal(t, Availability{Count: 4, Capacity: 10, Available: true}, a)
}
