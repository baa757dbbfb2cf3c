// Package biztime provides calendar arithmetic in the business timezone.
// Cycle dates, renewal windows and bucket expirations are all interpreted on the
// business calendar; storage may hold any offset.
package biztime

import (
	"fmt"
	"sync"
	"time"
)

const (
	// DefaultTimezone is the default business timezone.
	DefaultTimezone = "Asia/Colombo"

	// DateLayout is the yyyy-MM-dd layout used in notifications and audit rows.
	DateLayout = "2006-01-02"
)

var (
	bizLocation     *time.Location
	bizLocationOnce sync.Once
	initErr         error

	// nowFunc is replaced in tests to pin the clock.
	nowFunc = time.Now
)

// Init initializes the business timezone. Should be called once at startup.
// If tz is empty, defaults to Asia/Colombo.
func Init(tz string) error {
	bizLocationOnce.Do(func() {
		if tz == "" {
			tz = DefaultTimezone
		}
		bizLocation, initErr = time.LoadLocation(tz)
	})
	return initErr
}

// MustInit initializes the business timezone and panics on error.
func MustInit(tz string) {
	if err := Init(tz); err != nil {
		panic(fmt.Sprintf("failed to initialize business timezone %q: %v", tz, err))
	}
}

// Location returns the business timezone location, initializing the default on first use.
func Location() *time.Location {
	if bizLocation == nil {
		if err := Init(""); err != nil {
			panic(fmt.Sprintf("biztime: failed to auto-initialize with default timezone: %v", err))
		}
	}
	return bizLocation
}

// Now returns the current instant in the business timezone.
func Now() time.Time {
	return nowFunc().In(Location())
}

// SetClock pins Now to fn and returns a function restoring the real clock.
func SetClock(fn func() time.Time) (restore func()) {
	prev := nowFunc
	nowFunc = fn
	return func() { nowFunc = prev }
}

// StartOfDay returns local midnight of the business day containing t.
func StartOfDay(t time.Time) time.Time {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, Location())
}

// StartOfDayUTC is StartOfDay converted to UTC for queries.
func StartOfDayUTC(t time.Time) time.Time {
	return StartOfDay(t).UTC()
}

// DayWindow returns [start, start+1 day) of the business day containing t.
func DayWindow(t time.Time) (start, end time.Time) {
	start = StartOfDay(t)
	return start, AddDays(start, 1)
}

// TomorrowWindow returns the half-open window covering the business day after now.
func TomorrowWindow(now time.Time) (start, end time.Time) {
	return DayWindow(AddDays(StartOfDay(now), 1))
}

// SameDate reports whether a and b fall on the same business calendar date.
func SameDate(a, b time.Time) bool {
	ay, am, ad := a.In(Location()).Date()
	by, bm, bd := b.In(Location()).Date()
	return ay == by && am == bm && ad == bd
}

// AddDays moves t by n calendar days keeping its local wall clock.
func AddDays(t time.Time, n int) time.Time {
	return t.In(Location()).AddDate(0, 0, n)
}

// AddMonthsClamped moves t by n calendar months, clamping the day to the last day of the
// target month instead of overflowing into the next one (Jan 31 + 1 month = Feb 28/29).
func AddMonthsClamped(t time.Time, n int) time.Time {
	b := t.In(Location())
	first := time.Date(b.Year(), b.Month(), 1, b.Hour(), b.Minute(), b.Second(), b.Nanosecond(), Location())
	target := first.AddDate(0, n, 0)
	day := b.Day()
	if last := DaysInMonth(target); day > last {
		day = last
	}
	return time.Date(target.Year(), target.Month(), day, b.Hour(), b.Minute(), b.Second(), b.Nanosecond(), Location())
}

// DaysInMonth returns the length of the calendar month containing t.
func DaysInMonth(t time.Time) int {
	b := t.In(Location())
	return time.Date(b.Year(), b.Month()+1, 0, 0, 0, 0, 0, Location()).Day()
}

// DaysBetween counts whole calendar days from the date of a to the date of b.
func DaysBetween(a, b time.Time) int {
	da := StartOfDay(a)
	db := StartOfDay(b)
	ay, am, ad := da.Date()
	by, bm, bd := db.Date()
	ua := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	ub := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(ub.Sub(ua).Hours() / 24)
}

// ToLocal converts t to the business timezone.
func ToLocal(t time.Time) time.Time {
	return t.In(Location())
}

// FormatDate renders t as yyyy-MM-dd on the business calendar.
func FormatDate(t time.Time) string {
	return t.In(Location()).Format(DateLayout)
}

// ParseDate parses yyyy-MM-dd as business-timezone midnight.
func ParseDate(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout, s, Location())
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date format %q: %w", s, err)
	}
	return t, nil
}
