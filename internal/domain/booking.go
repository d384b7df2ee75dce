package domain

import "time"

// Booking represents a time-bound reservation owned by a single user.
// Cancellation is logical: records are never deleted.
type Booking struct {
	ID         int64     `json:"id" db:"id"`
	UserID     int64     `json:"user_id" db:"user_id"`
	StartTime  time.Time `json:"start_time" db:"start_time"`
	EndTime    time.Time `json:"end_time" db:"end_time"`
	Country    string    `json:"country" db:"country"`
	City       string    `json:"city" db:"city"`
	Department string    `json:"department" db:"department"`
	House      string    `json:"house" db:"house"`
	Cancelled  bool      `json:"cancelled" db:"cancelled"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// ValidateInterval enforces the strict start < end invariant.
func ValidateInterval(start, end time.Time) error {
	if !end.After(start) {
		return &ValidationError{Field: "end_time", Message: "must be after start_time"}
	}
	return nil
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching boundaries do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return bStart.Before(aEnd) && aStart.Before(bEnd)
}

// FindOverlap returns the first active booking whose interval overlaps
// [start, end), skipping the booking identified by excludeID. Pass
// excludeID = 0 when admitting a new booking. The slice is expected to be
// scoped to a single owner already; other owners' timelines are
// independent.
func FindOverlap(bookings []Booking, start, end time.Time, excludeID int64) *Booking {
	for i := range bookings {
		b := &bookings[i]
		if b.Cancelled || b.ID == excludeID {
			continue
		}
		if Overlaps(start, end, b.StartTime, b.EndTime) {
			return b
		}
	}
	return nil
}

// BookingFilter narrows booking queries. Nil fields are not applied.
// From and To bound the start_time column.
type BookingFilter struct {
	UserID    *int64
	Cancelled *bool
	From      *time.Time
	To        *time.Time
}
