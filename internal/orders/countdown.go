package orders

import (
	"fmt"
	"time"
)

// ExpiredCountdown is the canonical rendering of a deadline that has
// passed. An expired order stays in the remaining status; there is no
// automatic transition on expiry.
const ExpiredCountdown = "00:00:00:00"

// RemainingTime renders the time left until start + deadline days, as of
// now. The result is derived on every call, never persisted: a live view
// re-invokes it on its own timer. Units are floored, largest first, so the
// exact one-day boundary reads "1d 0h 0m 0s".
func RemainingTime(start time.Time, deadlineDays int, now time.Time) string {
	deadline := start.Add(time.Duration(deadlineDays) * 24 * time.Hour)
	remaining := deadline.Sub(now)
	if remaining <= 0 {
		return ExpiredCountdown
	}

	days := remaining / (24 * time.Hour)
	remaining -= days * 24 * time.Hour
	hours := remaining / time.Hour
	remaining -= hours * time.Hour
	minutes := remaining / time.Minute
	remaining -= minutes * time.Minute
	seconds := remaining / time.Second

	return fmt.Sprintf("%dd %dh %dm %ds", days, hours, minutes, seconds)
}
