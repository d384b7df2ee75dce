package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-co-op/gocron/v2"

	"github.com/agendahq/agenda/internal/domain"
)

// BookingSource provides the bookings the reminder sweep inspects.
type BookingSource interface {
	FindMany(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
}

// NotificationSink records reminder notifications and answers whether a
// booking was already reminded.
type NotificationSink interface {
	ExistsForBooking(ctx context.Context, bookingID int64, typ domain.NotificationType) (bool, error)
	CreateForBooking(ctx context.Context, p domain.NotificationParams) error
}

// Reminder periodically emits BOOKING_REMINDER notifications for active
// bookings entering the lookahead window. Each booking is reminded at
// most once.
type Reminder struct {
	bookings      BookingSource
	notifications NotificationSink
	interval      time.Duration
	lookahead     time.Duration
	scheduler     gocron.Scheduler
}

// NewReminder creates a reminder worker. Non-positive durations fall back
// to a 1 minute interval and the default alert lookahead.
func NewReminder(bookings BookingSource, notifications NotificationSink, interval, lookahead time.Duration) *Reminder {
	if interval <= 0 {
		interval = time.Minute
	}
	if lookahead <= 0 {
		lookahead = domain.DefaultLookahead
	}
	return &Reminder{
		bookings:      bookings,
		notifications: notifications,
		interval:      interval,
		lookahead:     lookahead,
	}
}

// Start schedules the periodic sweep. It returns once the scheduler is
// running; sweeps happen on the scheduler's goroutine.
func (r *Reminder) Start(ctx context.Context) error {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return fmt.Errorf("create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() {
			if err := r.Sweep(ctx, time.Now().UTC()); err != nil {
				slog.Error("reminder sweep", "error", err)
			}
		}),
	)
	if err != nil {
		return fmt.Errorf("schedule reminder job: %w", err)
	}

	scheduler.Start()
	r.scheduler = scheduler
	slog.Info("reminder worker started", "interval", r.interval, "lookahead", r.lookahead)
	return nil
}

// Stop shuts the scheduler down and waits for a running sweep to finish.
func (r *Reminder) Stop() error {
	if r.scheduler == nil {
		return nil
	}
	return r.scheduler.Shutdown()
}

// Sweep emits a reminder for every active booking that starts within
// (now, now+lookahead] and has not been reminded yet. The reference
// instant is a parameter so the sweep is deterministic under test.
func (r *Reminder) Sweep(ctx context.Context, now time.Time) error {
	active := false
	horizon := now.Add(r.lookahead)
	bookings, err := r.bookings.FindMany(ctx, domain.BookingFilter{
		Cancelled: &active,
		From:      &now,
		To:        &horizon,
	})
	if err != nil {
		return fmt.Errorf("list upcoming bookings: %w", err)
	}

	for _, b := range bookings {
		if !b.StartTime.After(now) {
			continue
		}

		reminded, err := r.notifications.ExistsForBooking(ctx, b.ID, domain.NotificationBookingReminder)
		if err != nil {
			return fmt.Errorf("check reminder for booking %d: %w", b.ID, err)
		}
		if reminded {
			continue
		}

		bookingID := b.ID
		start := b.StartTime
		err = r.notifications.CreateForBooking(ctx, domain.NotificationParams{
			UserID:       b.UserID,
			BookingID:    &bookingID,
			Type:         domain.NotificationBookingReminder,
			Title:        "Upcoming booking",
			Body:         fmt.Sprintf("Your booking starts at %s.", start.Format(time.RFC3339)),
			ScheduledFor: &start,
		})
		if err != nil {
			return fmt.Errorf("create reminder for booking %d: %w", b.ID, err)
		}
	}
	return nil
}
