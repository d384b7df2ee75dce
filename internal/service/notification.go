package service

import (
	"context"
	"time"

	"github.com/agendahq/agenda/internal/domain"
)

// NotificationStore defines the notification data access interface
// consumed by NotificationService.
type NotificationStore interface {
	FindByID(ctx context.Context, id int64) (*domain.Notification, error)
	FindForUser(ctx context.Context, userID int64, onlyUnread bool) ([]domain.Notification, error)
	FindAll(ctx context.Context, onlyUnread bool) ([]domain.Notification, error)
	Create(ctx context.Context, p domain.NotificationParams) (*domain.Notification, error)
	MarkRead(ctx context.Context, id int64, at time.Time) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error)
	ExistsForBooking(ctx context.Context, bookingID int64, typ domain.NotificationType) (bool, error)
}

// NotificationService manages in-app notifications and acts as the
// dispatcher for booking lifecycle events.
type NotificationService struct {
	store NotificationStore
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(store NotificationStore) *NotificationService {
	return &NotificationService{store: store}
}

// FindForUser lists the actor's own notifications, newest first.
func (s *NotificationService) FindForUser(ctx context.Context, actor domain.Actor, onlyUnread bool) ([]domain.Notification, error) {
	return s.store.FindForUser(ctx, actor.ID, onlyUnread)
}

// FindAll lists every notification. Admin only.
func (s *NotificationService) FindAll(ctx context.Context, actor domain.Actor, onlyUnread bool) ([]domain.Notification, error) {
	if err := domain.AuthorizeAdmin(actor); err != nil {
		return nil, err
	}
	return s.store.FindAll(ctx, onlyUnread)
}

// MarkRead marks a notification as read. NotFound is checked before
// Forbidden.
func (s *NotificationService) MarkRead(ctx context.Context, actor domain.Actor, id int64) (*domain.Notification, error) {
	notification, err := s.store.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := domain.AuthorizeOwner(actor, notification.UserID); err != nil {
		return nil, err
	}
	return s.store.MarkRead(ctx, id, time.Now().UTC())
}

// MarkAllRead marks every unread notification of the actor as read and
// returns the number affected.
func (s *NotificationService) MarkAllRead(ctx context.Context, actor domain.Actor) (int64, error) {
	return s.store.MarkAllRead(ctx, actor.ID, time.Now().UTC())
}

// ExistsForBooking reports whether a notification of the given type has
// already been recorded for the booking.
func (s *NotificationService) ExistsForBooking(ctx context.Context, bookingID int64, typ domain.NotificationType) (bool, error) {
	return s.store.ExistsForBooking(ctx, bookingID, typ)
}

// CreateForBooking records a notification for a booking lifecycle
// transition. It implements the dispatcher contract consumed by
// BookingService and the reminder worker.
func (s *NotificationService) CreateForBooking(ctx context.Context, p domain.NotificationParams) error {
	_, err := s.store.Create(ctx, p)
	return err
}
