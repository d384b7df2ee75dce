package domain

import "time"

// NotificationType represents the kind of notification.
type NotificationType string

const (
	NotificationBookingCreated   NotificationType = "BOOKING_CREATED"
	NotificationBookingCancelled NotificationType = "BOOKING_CANCELLED"
	NotificationBookingUpdated   NotificationType = "BOOKING_UPDATED"
	NotificationBookingReminder  NotificationType = "BOOKING_REMINDER"
)

// Notification represents an in-app notification for a user. BookingID is
// a back-reference only; cancelling a booking does not remove its
// notifications.
type Notification struct {
	ID           int64            `json:"id" db:"id"`
	UserID       int64            `json:"user_id" db:"user_id"`
	BookingID    *int64           `json:"booking_id,omitempty" db:"booking_id"`
	Type         NotificationType `json:"type" db:"type"`
	Title        string           `json:"title" db:"title"`
	Body         string           `json:"body" db:"body"`
	ScheduledFor *time.Time       `json:"scheduled_for,omitempty" db:"scheduled_for"`
	Read         bool             `json:"read" db:"read"`
	ReadAt       *time.Time       `json:"read_at,omitempty" db:"read_at"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
}

// NotificationParams carries the fields needed to record a notification
// for a booking lifecycle transition. ScheduledFor is set when the
// notification refers to a future event rather than something immediate.
type NotificationParams struct {
	UserID       int64
	BookingID    *int64
	Type         NotificationType
	Title        string
	Body         string
	ScheduledFor *time.Time
}
