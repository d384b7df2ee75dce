package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/agendahq/agenda/internal/domain"
)

const notificationColumns = "id, user_id, booking_id, type, title, body, scheduled_for, read, read_at, created_at"

// NotificationRepository handles notification data access operations.
type NotificationRepository struct {
	db *sqlx.DB
}

// NewNotificationRepository creates a new NotificationRepository.
func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// FindByID retrieves a notification by its ID.
func (r *NotificationRepository) FindByID(ctx context.Context, id int64) (*domain.Notification, error) {
	var n domain.Notification
	err := r.db.GetContext(ctx, &n,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find notification by id %d: %w", id, err)
	}
	return &n, nil
}

// FindForUser retrieves a user's notifications, newest first. When
// onlyUnread is true, read notifications are filtered out.
func (r *NotificationRepository) FindForUser(ctx context.Context, userID int64, onlyUnread bool) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications WHERE user_id = $1`
	if onlyUnread {
		query += ` AND read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID); err != nil {
		return nil, fmt.Errorf("find notifications for user %d: %w", userID, err)
	}
	return notifications, nil
}

// FindAll retrieves every notification, newest first.
func (r *NotificationRepository) FindAll(ctx context.Context, onlyUnread bool) ([]domain.Notification, error) {
	query := `SELECT ` + notificationColumns + ` FROM notifications`
	if onlyUnread {
		query += ` WHERE read = FALSE`
	}
	query += ` ORDER BY created_at DESC`

	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query); err != nil {
		return nil, fmt.Errorf("find all notifications: %w", err)
	}
	return notifications, nil
}

// Create inserts a new notification and returns it.
func (r *NotificationRepository) Create(ctx context.Context, p domain.NotificationParams) (*domain.Notification, error) {
	var created domain.Notification
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO notifications (user_id, booking_id, type, title, body, scheduled_for)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+notificationColumns,
		p.UserID, p.BookingID, p.Type, p.Title, p.Body, p.ScheduledFor,
	).StructScan(&created)
	if err != nil {
		return nil, fmt.Errorf("create notification: %w", err)
	}
	return &created, nil
}

// MarkRead marks a single notification as read.
func (r *NotificationRepository) MarkRead(ctx context.Context, id int64, at time.Time) (*domain.Notification, error) {
	var updated domain.Notification
	err := r.db.QueryRowxContext(ctx,
		`UPDATE notifications SET read = TRUE, read_at = $1 WHERE id = $2
		 RETURNING `+notificationColumns,
		at, id,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("mark notification %d read: %w", id, err)
	}
	return &updated, nil
}

// MarkAllRead marks every unread notification of the user as read and
// returns how many rows changed.
func (r *NotificationRepository) MarkAllRead(ctx context.Context, userID int64, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE, read_at = $1 WHERE user_id = $2 AND read = FALSE`,
		at, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read for user %d: %w", userID, err)
	}
	count, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return count, nil
}

// ExistsForBooking reports whether a notification of the given type has
// already been recorded for the booking. Used by the reminder sweep to
// stay idempotent.
func (r *NotificationRepository) ExistsForBooking(ctx context.Context, bookingID int64, typ domain.NotificationType) (bool, error) {
	var exists bool
	err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM notifications WHERE booking_id = $1 AND type = $2)`,
		bookingID, typ)
	if err != nil {
		return false, fmt.Errorf("notification exists for booking %d: %w", bookingID, err)
	}
	return exists, nil
}
