package duration

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Seconds per unit.
const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour
)

// ErrUnknownUnit is returned by ParseUnit for unrecognized unit names.
var ErrUnknownUnit = errors.New("unknown time unit")

// Empty is the value used when no saved state exists: a one second timer.
var Empty = Duration{Seconds: 1}

// Duration is a countdown span split into days, hours, minutes and seconds.
type Duration struct {
	Days    int `cbor:"1,keyasint" json:"days"`
	Hours   int `cbor:"2,keyasint" json:"hours"`
	Minutes int `cbor:"3,keyasint" json:"minutes"`
	Seconds int `cbor:"4,keyasint" json:"seconds"`
}

// New creates a Duration from its components.
func New(days, hours, minutes, seconds int) Duration {
	return Duration{Days: days, Hours: hours, Minutes: minutes, Seconds: seconds}
}

// FromSpan decomposes a number of elapsed seconds into a normalized Duration.
// Negative spans clamp every component to zero.
func FromSpan(totalSeconds int64) Duration {
	if totalSeconds <= 0 {
		return Duration{}
	}
	return Duration{
		Days:    int(totalSeconds / SecondsPerDay),
		Hours:   int(totalSeconds % SecondsPerDay / SecondsPerHour),
		Minutes: int(totalSeconds % SecondsPerHour / SecondsPerMinute),
		Seconds: int(totalSeconds % SecondsPerMinute),
	}
}

// FromTimeDuration converts d, rounded to the nearest second, into a Duration.
func FromTimeDuration(d time.Duration) Duration {
	return FromSpan(int64(d.Round(time.Second) / time.Second))
}

// TotalSeconds returns the whole span in seconds.
func (d Duration) TotalSeconds() int64 {
	return int64(d.Days)*SecondsPerDay +
		int64(d.Hours)*SecondsPerHour +
		int64(d.Minutes)*SecondsPerMinute +
		int64(d.Seconds)
}

// TimeDuration returns the span as a time.Duration.
func (d Duration) TimeDuration() time.Duration {
	return time.Duration(d.TotalSeconds()) * time.Second
}

// IsZero returns true if no time remains.
func (d Duration) IsZero() bool {
	return d.TotalSeconds() <= 0
}

// Normalize returns the same span in normal form.
func (d Duration) Normalize() Duration {
	return FromSpan(d.TotalSeconds())
}

// ToSeconds converts the full span to the given unit.
func (d Duration) ToSeconds(unit Unit) float64 {
	return ToSeconds(d, unit)
}

// ToSeconds converts the full span of d to the given unit.
func ToSeconds(d Duration, unit Unit) float64 {
	sec := float64(d.Days)*SecondsPerDay +
		float64(d.Hours)*SecondsPerHour +
		float64(d.Minutes)*SecondsPerMinute +
		float64(d.Seconds)
	return sec / float64(unit.seconds())
}

// Borrow prepares the value for the next tick. When Seconds has run out it
// takes one unit from the smallest non-zero larger field and spreads it over
// the smaller ones. The total is unchanged: Seconds may transiently hold 60
// until the caller decrements it.
//
// Returns true if at least one second remains.
func (d *Duration) Borrow() bool {
	if d.Seconds <= 0 {
		switch {
		case d.Minutes > 0:
			d.Minutes--
			d.Seconds += 60
		case d.Hours > 0:
			d.Hours--
			d.Minutes += 59
			d.Seconds += 60
		case d.Days > 0:
			d.Days--
			d.Hours += 23
			d.Minutes += 59
			d.Seconds += 60
		}
	}
	return d.Seconds > 0
}

// Format renders the value as zero-padded HH:MM:SS. Days are not shown.
func (d Duration) Format() string {
	return fmt.Sprintf("%02d:%02d:%02d", d.Hours, d.Minutes, d.Seconds)
}

// String renders the value including days, e.g. "2d03:04:05".
func (d Duration) String() string {
	if d.Days > 0 {
		return fmt.Sprintf("%dd%s", d.Days, d.Format())
	}
	return d.Format()
}

// Unit selects the unit for ToSeconds.
type Unit uint8

const (
	// UnitSeconds converts to seconds.
	UnitSeconds Unit = iota

	// UnitMinutes converts to minutes.
	UnitMinutes

	// UnitHours converts to hours.
	UnitHours

	// UnitDays converts to days.
	UnitDays
)

func (u Unit) seconds() int {
	switch u {
	case UnitMinutes:
		return SecondsPerMinute
	case UnitHours:
		return SecondsPerHour
	case UnitDays:
		return SecondsPerDay
	default:
		return 1
	}
}

// String returns the unit name.
func (u Unit) String() string {
	switch u {
	case UnitSeconds:
		return "seconds"
	case UnitMinutes:
		return "minutes"
	case UnitHours:
		return "hours"
	case UnitDays:
		return "days"
	default:
		return "unknown"
	}
}

// ParseUnit parses a unit name such as "s", "min" or "hours".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "s", "sec", "secs", "second", "seconds":
		return UnitSeconds, nil
	case "m", "min", "mins", "minute", "minutes":
		return UnitMinutes, nil
	case "h", "hour", "hours":
		return UnitHours, nil
	case "d", "day", "days":
		return UnitDays, nil
	default:
		return UnitSeconds, fmt.Errorf("%w: %q", ErrUnknownUnit, s)
	}
}
