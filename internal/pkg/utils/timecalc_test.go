package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func clock(h, m int) time.Time {
	return time.Date(0, 1, 1, h, m, 0, 0, time.UTC)
}

func TestShiftDurationMinutes_DayShift(t *testing.T) {
	assert.Equal(t, 540, ShiftDurationMinutes(clock(9, 0), clock(18, 0), false))
	assert.Equal(t, 510, ShiftDurationMinutes(clock(9, 30), clock(18, 0), false))
}

func TestShiftDurationMinutes_Overnight(t *testing.T) {
	assert.Equal(t, 480, ShiftDurationMinutes(clock(22, 0), clock(6, 0), true))
	// end <= start implies overnight even without the flag
	assert.Equal(t, 480, ShiftDurationMinutes(clock(22, 0), clock(6, 0), false))
}

func TestShiftDurationMinutes_OvernightFlagInvariance(t *testing.T) {
	// Whenever end <= start both flag values must agree.
	cases := [][2]time.Time{
		{clock(22, 0), clock(6, 0)},
		{clock(23, 45), clock(0, 15)},
		{clock(8, 0), clock(8, 0)},
	}
	for _, c := range cases {
		assert.Equal(t,
			ShiftDurationMinutes(c[0], c[1], false),
			ShiftDurationMinutes(c[0], c[1], true),
		)
	}
}

func TestRoundToNearest(t *testing.T) {
	assert.Equal(t, 5, RoundToNearest(7, 5))
	assert.Equal(t, 10, RoundToNearest(8, 5))
	assert.Equal(t, 10, RoundToNearest(10, 5))
	// ties round up
	assert.Equal(t, 10, RoundToNearest(5, 10))
	// bucket <= 1 is a no-op
	assert.Equal(t, 7, RoundToNearest(7, 1))
	assert.Equal(t, 7, RoundToNearest(7, 0))
}

func TestShiftBounds_DayShift(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	assert.NoError(t, err)

	date := time.Date(2025, 8, 11, 0, 0, 0, 0, loc)
	start, end := ShiftBounds(date, clock(9, 0), clock(18, 0), false, loc)

	assert.Equal(t, time.Date(2025, 8, 11, 9, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 8, 11, 18, 0, 0, 0, loc), end)
}

func TestShiftBounds_OvernightEndsNextDay(t *testing.T) {
	loc := time.UTC
	date := time.Date(2025, 8, 11, 0, 0, 0, 0, loc)
	start, end := ShiftBounds(date, clock(22, 0), clock(6, 0), true, loc)

	assert.Equal(t, time.Date(2025, 8, 11, 22, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2025, 8, 12, 6, 0, 0, 0, loc), end)
}

func TestEndOfDay(t *testing.T) {
	loc := time.UTC
	date := time.Date(2025, 8, 11, 13, 37, 0, 0, loc)
	assert.Equal(t, time.Date(2025, 8, 11, 23, 59, 59, 0, loc), EndOfDay(date, loc))
}
