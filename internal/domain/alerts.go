package domain

import (
	"sort"
	"time"
)

// DefaultLookahead is the window used to classify bookings as upcoming
// when the caller does not specify one.
const DefaultLookahead = 60 * time.Minute

// Alerts partitions a set of bookings relative to a reference instant.
// The two sets are disjoint: a booking cannot satisfy start <= now and
// now < start at the same time.
type Alerts struct {
	Ongoing  []Booking `json:"ongoing"`
	Upcoming []Booking `json:"upcoming"`
}

// PartitionAlerts classifies active bookings as ongoing
// (start <= now <= end) or upcoming (now < start <= now+lookahead).
// Both sets are ordered ascending by start time. The reference instant is
// passed in explicitly so results are deterministic.
func PartitionAlerts(bookings []Booking, now time.Time, lookahead time.Duration) Alerts {
	if lookahead <= 0 {
		lookahead = DefaultLookahead
	}
	horizon := now.Add(lookahead)

	alerts := Alerts{Ongoing: []Booking{}, Upcoming: []Booking{}}
	for _, b := range bookings {
		if b.Cancelled {
			continue
		}
		switch {
		case !b.StartTime.After(now) && !b.EndTime.Before(now):
			alerts.Ongoing = append(alerts.Ongoing, b)
		case b.StartTime.After(now) && !b.StartTime.After(horizon):
			alerts.Upcoming = append(alerts.Upcoming, b)
		}
	}

	byStart := func(s []Booking) func(i, j int) bool {
		return func(i, j int) bool { return s[i].StartTime.Before(s[j].StartTime) }
	}
	sort.SliceStable(alerts.Ongoing, byStart(alerts.Ongoing))
	sort.SliceStable(alerts.Upcoming, byStart(alerts.Upcoming))
	return alerts
}
