package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPartitionAlerts(t *testing.T) {
	now := at(10, 30)
	bookings := []Booking{
		{ID: 1, StartTime: at(10, 0), EndTime: at(11, 0)},   // ongoing
		{ID: 2, StartTime: at(11, 0), EndTime: at(11, 30)},  // upcoming within lookahead
		{ID: 3, StartTime: at(12, 30), EndTime: at(13, 0)},  // beyond lookahead
		{ID: 4, StartTime: at(11, 15), EndTime: at(12, 0), Cancelled: true},
		{ID: 5, StartTime: at(8, 0), EndTime: at(9, 0)},     // already finished
	}

	alerts := PartitionAlerts(bookings, now, DefaultLookahead)

	require.Len(t, alerts.Ongoing, 1)
	assert.Equal(t, int64(1), alerts.Ongoing[0].ID)
	require.Len(t, alerts.Upcoming, 1)
	assert.Equal(t, int64(2), alerts.Upcoming[0].ID)
}

func TestPartitionAlerts_Boundaries(t *testing.T) {
	now := at(10, 0)

	t.Run("booking starting exactly now is ongoing", func(t *testing.T) {
		alerts := PartitionAlerts([]Booking{{ID: 1, StartTime: at(10, 0), EndTime: at(11, 0)}}, now, DefaultLookahead)
		assert.Len(t, alerts.Ongoing, 1)
		assert.Empty(t, alerts.Upcoming)
	})

	t.Run("booking ending exactly now is ongoing", func(t *testing.T) {
		alerts := PartitionAlerts([]Booking{{ID: 1, StartTime: at(9, 0), EndTime: at(10, 0)}}, now, DefaultLookahead)
		assert.Len(t, alerts.Ongoing, 1)
	})

	t.Run("booking starting exactly at the horizon is upcoming", func(t *testing.T) {
		alerts := PartitionAlerts([]Booking{{ID: 1, StartTime: at(11, 0), EndTime: at(12, 0)}}, now, DefaultLookahead)
		assert.Len(t, alerts.Upcoming, 1)
	})

	t.Run("booking just past the horizon is neither", func(t *testing.T) {
		alerts := PartitionAlerts([]Booking{{ID: 1, StartTime: at(11, 1), EndTime: at(12, 0)}}, now, DefaultLookahead)
		assert.Empty(t, alerts.Ongoing)
		assert.Empty(t, alerts.Upcoming)
	})
}

func TestPartitionAlerts_DisjointAndOrdered(t *testing.T) {
	now := at(10, 30)
	bookings := []Booking{
		{ID: 1, StartTime: at(11, 20), EndTime: at(11, 30)},
		{ID: 2, StartTime: at(10, 15), EndTime: at(11, 0)},
		{ID: 3, StartTime: at(10, 45), EndTime: at(11, 10)},
		{ID: 4, StartTime: at(10, 0), EndTime: at(10, 40)},
	}

	alerts := PartitionAlerts(bookings, now, DefaultLookahead)

	seen := map[int64]bool{}
	for _, b := range alerts.Ongoing {
		seen[b.ID] = true
	}
	for _, b := range alerts.Upcoming {
		assert.False(t, seen[b.ID], "booking %d appears in both sets", b.ID)
	}

	for _, set := range [][]Booking{alerts.Ongoing, alerts.Upcoming} {
		for i := 1; i < len(set); i++ {
			assert.False(t, set[i].StartTime.Before(set[i-1].StartTime),
				"set must be non-decreasing by start time")
		}
	}
}

func TestPartitionAlerts_Defaults(t *testing.T) {
	now := at(10, 0)
	bookings := []Booking{{ID: 1, StartTime: at(10, 45), EndTime: at(11, 0)}}

	t.Run("non-positive lookahead falls back to the default", func(t *testing.T) {
		alerts := PartitionAlerts(bookings, now, 0)
		assert.Len(t, alerts.Upcoming, 1)
	})

	t.Run("empty input yields empty non-nil sets", func(t *testing.T) {
		alerts := PartitionAlerts(nil, now, time.Hour)
		assert.NotNil(t, alerts.Ongoing)
		assert.NotNil(t, alerts.Upcoming)
		assert.Empty(t, alerts.Ongoing)
		assert.Empty(t, alerts.Upcoming)
	})
}
