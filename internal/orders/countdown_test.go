package orders

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRemainingTime_ExactDayBoundary(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// One day into a two-day deadline: exactly one day left, no rounding.
	now := start.Add(24 * time.Hour)
	assert.Equal(t, "1d 0h 0m 0s", RemainingTime(start, 2, now))
}

func TestRemainingTime_Expired(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// One second past the deadline instant.
	now := start.Add(2*24*time.Hour + time.Second)
	assert.Equal(t, ExpiredCountdown, RemainingTime(start, 2, now))
}

func TestRemainingTime_ExactDeadlineInstant(t *testing.T) {
	start := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	// Zero remaining renders as expired too.
	now := start.Add(2 * 24 * time.Hour)
	assert.Equal(t, ExpiredCountdown, RemainingTime(start, 2, now))
}

func TestRemainingTime_Decomposition(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	now := start.Add(24*time.Hour + 30*time.Minute + 15*time.Second)
	// 7 days minus (1d 0h 30m 15s) = 5d 23h 29m 45s
	assert.Equal(t, "5d 23h 29m 45s", RemainingTime(start, 7, now))
}

func TestRemainingTime_OneSecondLeft(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	now := start.Add(24*time.Hour - time.Second)
	assert.Equal(t, "0d 0h 0m 1s", RemainingTime(start, 1, now))
}
