package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/agendahq/agenda/internal/domain"
)

// BookingStore defines the booking data access interface consumed by
// BookingService.
type BookingStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Booking, error)
	FindMany(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error)
	ActiveForUser(ctx context.Context, userID int64) ([]domain.Booking, error)
	Create(ctx context.Context, b domain.Booking) (*domain.Booking, error)
	Update(ctx context.Context, b domain.Booking) (*domain.Booking, error)
}

// NotificationDispatcher receives lifecycle events after the booking
// write has committed. Delivery is best-effort; a dispatch failure never
// rolls back the booking change.
type NotificationDispatcher interface {
	CreateForBooking(ctx context.Context, p domain.NotificationParams) error
}

// CreateBookingInput carries the fields for a new booking.
type CreateBookingInput struct {
	UserID     int64
	StartTime  time.Time
	EndTime    time.Time
	Country    string
	City       string
	Department string
	House      string
}

// UpdateBookingInput carries a partial booking update. Nil fields retain
// their current values.
type UpdateBookingInput struct {
	StartTime  *time.Time
	EndTime    *time.Time
	Country    *string
	City       *string
	Department *string
	House      *string
}

// BookingService orchestrates the booking lifecycle: validation,
// authorization, overlap admission, persistence and notification events.
type BookingService struct {
	store      BookingStore
	dispatcher NotificationDispatcher
}

// NewBookingService creates a new BookingService.
func NewBookingService(store BookingStore, dispatcher NotificationDispatcher) *BookingService {
	return &BookingService{store: store, dispatcher: dispatcher}
}

// Create admits a new booking for the owner named in the input. The
// interval must be strictly positive and must not overlap any of the
// owner's active bookings; touching boundaries are allowed.
func (s *BookingService) Create(ctx context.Context, actor domain.Actor, in CreateBookingInput) (*domain.Booking, error) {
	if err := domain.AuthorizeOwner(actor, in.UserID); err != nil {
		return nil, err
	}

	start, end := in.StartTime.UTC(), in.EndTime.UTC()
	if err := domain.ValidateInterval(start, end); err != nil {
		return nil, err
	}

	existing, err := s.store.ActiveForUser(ctx, in.UserID)
	if err != nil {
		return nil, err
	}
	if conflict := domain.FindOverlap(existing, start, end, 0); conflict != nil {
		return nil, fmt.Errorf("%w: booking %d occupies the interval", domain.ErrConflict, conflict.ID)
	}

	created, err := s.store.Create(ctx, domain.Booking{
		UserID:     in.UserID,
		StartTime:  start,
		EndTime:    end,
		Country:    in.Country,
		City:       in.City,
		Department: in.Department,
		House:      in.House,
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, domain.NotificationBookingCreated, created)
	return created, nil
}

// Cancel marks a booking as cancelled. The record is kept; only the flag
// changes. NotFound is checked before Forbidden.
func (s *BookingService) Cancel(ctx context.Context, actor domain.Actor, id int64) (*domain.Booking, error) {
	booking, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeOwner(actor, booking.UserID); err != nil {
		return nil, err
	}

	booking.Cancelled = true
	updated, err := s.store.Update(ctx, *booking)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, domain.NotificationBookingCancelled, updated)
	return updated, nil
}

// Update merges the partial input onto the booking and re-admits it. The
// overlap check always runs against the owner's other active bookings,
// excluding the booking itself, even when the interval did not change:
// skipping it could mask a conflict committed by a concurrent writer.
func (s *BookingService) Update(ctx context.Context, actor domain.Actor, id int64, in UpdateBookingInput) (*domain.Booking, error) {
	booking, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeOwner(actor, booking.UserID); err != nil {
		return nil, err
	}

	if in.StartTime != nil {
		booking.StartTime = in.StartTime.UTC()
	}
	if in.EndTime != nil {
		booking.EndTime = in.EndTime.UTC()
	}
	if in.Country != nil {
		booking.Country = *in.Country
	}
	if in.City != nil {
		booking.City = *in.City
	}
	if in.Department != nil {
		booking.Department = *in.Department
	}
	if in.House != nil {
		booking.House = *in.House
	}

	if err := domain.ValidateInterval(booking.StartTime, booking.EndTime); err != nil {
		return nil, err
	}

	existing, err := s.store.ActiveForUser(ctx, booking.UserID)
	if err != nil {
		return nil, err
	}
	if conflict := domain.FindOverlap(existing, booking.StartTime, booking.EndTime, booking.ID); conflict != nil {
		return nil, fmt.Errorf("%w: booking %d occupies the interval", domain.ErrConflict, conflict.ID)
	}

	updated, err := s.store.Update(ctx, *booking)
	if err != nil {
		return nil, err
	}

	s.notify(ctx, domain.NotificationBookingUpdated, updated)
	return updated, nil
}

// FindForUser lists a user's active bookings ascending by start time,
// optionally bounded by a start-time range. Users see their own bookings;
// anyone else's require the admin role.
func (s *BookingService) FindForUser(ctx context.Context, actor domain.Actor, userID int64, from, to *time.Time) ([]domain.Booking, error) {
	if err := domain.AuthorizeOwner(actor, userID); err != nil {
		return nil, err
	}
	active := false
	return s.store.FindMany(ctx, domain.BookingFilter{
		UserID:    &userID,
		Cancelled: &active,
		From:      from,
		To:        to,
	})
}

// FindAll lists every active booking. Admin only.
func (s *BookingService) FindAll(ctx context.Context, actor domain.Actor, from, to *time.Time) ([]domain.Booking, error) {
	if err := domain.AuthorizeAdmin(actor); err != nil {
		return nil, err
	}
	active := false
	return s.store.FindMany(ctx, domain.BookingFilter{
		Cancelled: &active,
		From:      from,
		To:        to,
	})
}

// AlertsForUser partitions a user's active bookings into ongoing and
// upcoming sets relative to now.
func (s *BookingService) AlertsForUser(ctx context.Context, actor domain.Actor, userID int64, now time.Time, lookahead time.Duration) (domain.Alerts, error) {
	if err := domain.AuthorizeOwner(actor, userID); err != nil {
		return domain.Alerts{}, err
	}
	bookings, err := s.store.ActiveForUser(ctx, userID)
	if err != nil {
		return domain.Alerts{}, err
	}
	return domain.PartitionAlerts(bookings, now, lookahead), nil
}

// AlertsForAll partitions every user's active bookings. Admin only.
func (s *BookingService) AlertsForAll(ctx context.Context, actor domain.Actor, now time.Time, lookahead time.Duration) (domain.Alerts, error) {
	if err := domain.AuthorizeAdmin(actor); err != nil {
		return domain.Alerts{}, err
	}
	active := false
	bookings, err := s.store.FindMany(ctx, domain.BookingFilter{Cancelled: &active})
	if err != nil {
		return domain.Alerts{}, err
	}
	return domain.PartitionAlerts(bookings, now, lookahead), nil
}

// notify shapes the lifecycle event for the committed transition and
// hands it to the dispatcher. Failures are logged and swallowed: booking
// durability must not depend on notification delivery.
func (s *BookingService) notify(ctx context.Context, typ domain.NotificationType, b *domain.Booking) {
	params := domain.NotificationParams{
		UserID:    b.UserID,
		BookingID: &b.ID,
		Type:      typ,
	}

	interval := fmt.Sprintf("%s to %s",
		b.StartTime.Format(time.RFC3339), b.EndTime.Format(time.RFC3339))

	switch typ {
	case domain.NotificationBookingCreated:
		params.Title = "Booking confirmed"
		params.Body = fmt.Sprintf("Your booking from %s is confirmed.", interval)
		params.ScheduledFor = &b.StartTime
	case domain.NotificationBookingUpdated:
		params.Title = "Booking updated"
		params.Body = fmt.Sprintf("Your booking now runs from %s.", interval)
		params.ScheduledFor = &b.StartTime
	case domain.NotificationBookingCancelled:
		params.Title = "Booking cancelled"
		params.Body = fmt.Sprintf("Your booking from %s was cancelled.", interval)
	}

	if err := s.dispatcher.CreateForBooking(ctx, params); err != nil {
		slog.Error("dispatch booking notification",
			"booking_id", b.ID, "type", typ, "error", err)
	}
}
