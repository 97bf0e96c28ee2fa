package utils

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTicketID(t *testing.T) {
	seen := map[string]bool{}
	for range 100 {
		id, err := NewTicketID()
		require.NoError(t, err)
		assert.Regexp(t, regexp.MustCompile(`^TKT-[0-9A-F]{16}$`), id)
		assert.False(t, seen[id])
		seen[id] = true
	}
}

func TestEventDayBoundaries(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	end, err := EndOfEventDay("2026-10-20", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 23, 59, 59, 999999000, loc), end)
	assert.True(t, end.Before(time.Date(2026, 10, 21, 0, 0, 0, 0, loc)))
	assert.Equal(t, end, end.Truncate(time.Microsecond))

	delivery, err := AtHourOnEventDay("2026-10-20", 6, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 20, 6, 0, 0, 0, loc), delivery)

	_, err = EndOfEventDay("20/10/2026", loc)
	assert.Error(t, err)
}

func TestCalendarDateUsesLocation(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Manila")
	require.NoError(t, err)

	// 20:00 UTC on the 19th is already the 20th in Manila.
	instant := time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-10-20", CalendarDate(instant, loc))
	assert.Equal(t, "2026-10-19", CalendarDate(instant, time.UTC))
}
