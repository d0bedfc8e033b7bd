// Package places turns Google Places records into the text block the bot
// feeds back into its answers: open/closed status, formatting, and the
// lookup adapter that normalises the places API result.
package places

import (
	"fmt"
	"strconv"
	"time"
	_ "time/tzdata"

	"github.com/indigobot/server/internal/agent/model"
)

const (
	StatusOpen         = "Open"
	StatusClosed       = "Closed"
	StatusHoursUnknown = "Hours unknown"
)

// DefaultTimezone is the operating timezone of the reference deployment.
const DefaultTimezone = "America/Los_Angeles"

// Clock yields the evaluation instant in the operating timezone.
type Clock struct {
	Location *time.Location
	Now      func() time.Time
}

// NewClock returns a wall clock in the named IANA timezone.
func NewClock(tz string) (Clock, error) {
	if tz == "" {
		tz = DefaultTimezone
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Clock{}, fmt.Errorf("load timezone %q: %w", tz, err)
	}
	return Clock{Location: loc, Now: time.Now}, nil
}

// FixedClock always reports at.
func FixedClock(at time.Time) Clock {
	return Clock{Location: at.Location(), Now: func() time.Time { return at }}
}

// Instant returns the current time in the clock's location.
func (c Clock) Instant() time.Time {
	now := time.Now
	if c.Now != nil {
		now = c.Now
	}
	t := now()
	if c.Location != nil {
		t = t.In(c.Location)
	}
	return t
}

// ClockTime is minutes since local midnight.
type ClockTime int

func (t ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// ParseTime parses a 4-digit 24-hour "HHMM" string.
func ParseTime(s string) (ClockTime, error) {
	if len(s) != 4 {
		return 0, fmt.Errorf("invalid time %q: want HHMM", s)
	}
	hour, err := strconv.Atoi(s[:2])
	if err != nil {
		return 0, fmt.Errorf("invalid hour in %q: %w", s, err)
	}
	minute, err := strconv.Atoi(s[2:])
	if err != nil {
		return 0, fmt.Errorf("invalid minute in %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("time %q out of range", s)
	}
	return ClockTime(hour*60 + minute), nil
}

// Weekday maps time.Weekday (Sunday=0) to the Monday=0 numbering periods use.
func Weekday(d time.Weekday) int {
	return (int(d) + 6) % 7
}

// CurrentStatus reports whether a place with the given hours is open at at.
// It never panics; malformed data yields "Hours unknown (Error: ...)".
func CurrentStatus(hours *model.OpeningHours, at time.Time) (status string) {
	defer func() {
		if r := recover(); r != nil {
			status = fmt.Sprintf("%s (Error: %v)", StatusHoursUnknown, r)
		}
	}()

	status, err := currentStatus(hours, at)
	if err != nil {
		return fmt.Sprintf("%s (Error: %s)", StatusHoursUnknown, err.Error())
	}
	return status
}

func currentStatus(hours *model.OpeningHours, at time.Time) (string, error) {
	if hours == nil || len(hours.Periods) == 0 {
		switch {
		case hours == nil || hours.OpenNow == nil:
			return StatusHoursUnknown, nil
		case *hours.OpenNow:
			return StatusOpen, nil
		default:
			return StatusClosed, nil
		}
	}

	today := Weekday(at.Weekday())
	tomorrow := (today + 1) % 7
	yesterday := (today + 6) % 7
	now := ClockTime(at.Hour()*60 + at.Minute())

	for _, p := range hours.Periods {
		if p.Open == nil || p.Close == nil {
			continue
		}
		openAt, err := ParseTime(p.Open.Time)
		if err != nil {
			return "", err
		}
		closeAt, err := ParseTime(p.Close.Time)
		if err != nil {
			return "", err
		}

		if p.Open.Day == today {
			if openAt <= now && now < closeAt {
				return fmt.Sprintf("Open (Closes at %s)", closeAt), nil
			}
			if now < openAt {
				return fmt.Sprintf("Closed (Opens at %s)", openAt), nil
			}
		}

		if p.Open.Day == today && p.Close.Day == tomorrow && now >= openAt {
			return fmt.Sprintf("Open (Closes tomorrow at %s)", closeAt), nil
		}

		if p.Open.Day == yesterday && p.Close.Day == today && now < closeAt {
			return fmt.Sprintf("Open (Closes at %s)", closeAt), nil
		}
	}

	return StatusClosed, nil
}
