// Package duration implements the countdown value used by tickdown timers.
//
// A Duration is kept as separate day, hour, minute and second fields rather
// than a single time.Duration so that the tick loop can count down the way a
// clock face does: the seconds field is decremented once per tick and, when
// it reaches zero, a unit is borrowed from the next larger field.
//
// # Normal Form
//
// At every tick boundary a Duration satisfies:
//   - Seconds in [0, 59]
//   - Minutes in [0, 59]
//   - Hours in [0, 23]
//   - Days >= 0
//
// Values built from spans clamp negative components to zero, so an end time
// that is already in the past yields the zero Duration.
//
// # Empty
//
// Empty is the one second value used when a timer is resumed without any
// saved state.
//
// # Display
//
// Format renders HH:MM:SS and does not show days. String includes days and
// is meant for logs.
package duration
