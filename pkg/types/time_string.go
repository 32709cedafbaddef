package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

var (
	// ErrInvalidTimeString возвращается, когда строка не соответствует формату HH:MM
	ErrInvalidTimeString = errors.New("invalid time string format")
)

// TimeString время суток с точностью до минуты в формате "HH:MM"
type TimeString string

// NewTimeString создает TimeString из time.Time (секунды отбрасываются)
func NewTimeString(t time.Time) TimeString {
	return TimeString(fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute()))
}

// NewTimeStringFromString парсит строку "H:MM", "HH:MM" или "HH:MM:SS" и нормализует её к "HH:MM"
func NewTimeStringFromString(s string) (TimeString, error) {
	hour, minute, err := parseClock(s)
	if err != nil {
		return "", err
	}
	return TimeString(fmt.Sprintf("%02d:%02d", hour, minute)), nil
}

// MustTimeString как NewTimeStringFromString, но паникует на ошибке (для констант и тестов)
func MustTimeString(s string) TimeString {
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		panic(err)
	}
	return ts
}

func parseClock(s string) (int, int, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, 0, ErrInvalidTimeString
	}

	hour, err := strconv.Atoi(parts[0])
	if err != nil || len(parts[0]) == 0 || len(parts[0]) > 2 || hour < 0 || hour > 23 {
		return 0, 0, ErrInvalidTimeString
	}

	minute, err := strconv.Atoi(parts[1])
	if err != nil || len(parts[1]) == 0 || len(parts[1]) > 2 || minute < 0 || minute > 59 {
		return 0, 0, ErrInvalidTimeString
	}

	if len(parts) == 3 {
		sec, err := strconv.Atoi(parts[2])
		if err != nil || sec < 0 || sec > 59 {
			return 0, 0, ErrInvalidTimeString
		}
	}

	return hour, minute, nil
}

// String возвращает строковое представление
func (t TimeString) String() string {
	return string(t)
}

// IsZero true, если время не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// Hour возвращает часы (0 при некорректном значении)
func (t TimeString) Hour() int {
	h, _, _ := parseClock(string(t))
	return h
}

// Minute возвращает минуты (0 при некорректном значении)
func (t TimeString) Minute() int {
	_, m, _ := parseClock(string(t))
	return m
}

// Minutes возвращает количество минут от начала суток
func (t TimeString) Minutes() int {
	h, m, _ := parseClock(string(t))
	return h*60 + m
}

// IsBefore true, если t строго раньше other
func (t TimeString) IsBefore(other TimeString) bool {
	return t.Minutes() < other.Minutes()
}

// IsAfter true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.Minutes() > other.Minutes()
}

// On возвращает момент времени на указанную дату в указанной локации
func (t TimeString) On(date time.Time, loc *time.Location) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc)
}

// Value реализует driver.Valuer (Postgres TIME принимает "HH:MM")
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	return string(t), nil
}

// Scan реализует sql.Scanner. lib/pq отдает TIME как строку "HH:MM:SS" ([]byte или string)
func (t *TimeString) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*t = ""
		return nil
	case []byte:
		return t.scanString(string(v))
	case string:
		return t.scanString(v)
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidTimeString, src)
	}
}

func (t *TimeString) scanString(s string) error {
	parsed, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
