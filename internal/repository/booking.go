package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"

	"github.com/agendahq/agenda/internal/domain"
)

const bookingColumns = "id, user_id, start_time, end_time, country, city, department, house, cancelled, created_at"

// BookingRepository handles booking data access operations.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository creates a new BookingRepository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// FindByID retrieves a booking by its ID, cancelled or not.
func (r *BookingRepository) FindByID(ctx context.Context, id int64) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.GetContext(ctx, &booking,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = $1`, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find booking by id %d: %w", id, err)
	}
	return &booking, nil
}

// FindMany retrieves bookings matching the filter, ordered ascending by
// start time.
func (r *BookingRepository) FindMany(ctx context.Context, filter domain.BookingFilter) ([]domain.Booking, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}
	if filter.UserID != nil {
		add("user_id =", *filter.UserID)
	}
	if filter.Cancelled != nil {
		add("cancelled =", *filter.Cancelled)
	}
	if filter.From != nil {
		add("start_time >=", *filter.From)
	}
	if filter.To != nil {
		add("start_time <=", *filter.To)
	}

	query := `SELECT ` + bookingColumns + ` FROM bookings`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY start_time"

	bookings := []domain.Booking{}
	if err := r.db.SelectContext(ctx, &bookings, query, args...); err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	return bookings, nil
}

// ActiveForUser retrieves the owner's non-cancelled bookings ordered by
// start time.
func (r *BookingRepository) ActiveForUser(ctx context.Context, userID int64) ([]domain.Booking, error) {
	active := false
	return r.FindMany(ctx, domain.BookingFilter{UserID: &userID, Cancelled: &active})
}

// Create inserts a new booking and returns it with its store-assigned ID
// and creation time. A concurrent insert that violates the owner interval
// exclusion constraint surfaces as domain.ErrConflict, identical to a
// pre-write overlap detection.
func (r *BookingRepository) Create(ctx context.Context, b domain.Booking) (*domain.Booking, error) {
	var created domain.Booking
	err := r.db.QueryRowxContext(ctx,
		`INSERT INTO bookings (user_id, start_time, end_time, country, city, department, house, cancelled)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, FALSE)
		 RETURNING `+bookingColumns,
		b.UserID, b.StartTime, b.EndTime, b.Country, b.City, b.Department, b.House,
	).StructScan(&created)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("create booking: %w", err)
	}
	return &created, nil
}

// Update persists the mutable fields of an existing booking. The interval
// exclusion constraint applies here as well, so a racing overlap comes
// back as domain.ErrConflict.
func (r *BookingRepository) Update(ctx context.Context, b domain.Booking) (*domain.Booking, error) {
	var updated domain.Booking
	err := r.db.QueryRowxContext(ctx,
		`UPDATE bookings
		 SET start_time = $1, end_time = $2, country = $3, city = $4, department = $5, house = $6, cancelled = $7
		 WHERE id = $8
		 RETURNING `+bookingColumns,
		b.StartTime, b.EndTime, b.Country, b.City, b.Department, b.House, b.Cancelled, b.ID,
	).StructScan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		if isExclusionViolation(err) {
			return nil, domain.ErrConflict
		}
		return nil, fmt.Errorf("update booking %d: %w", b.ID, err)
	}
	return &updated, nil
}

// isExclusionViolation reports whether err is a Postgres exclusion or
// unique constraint violation (codes 23P01 and 23505).
func isExclusionViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23P01" || pgErr.Code == "23505"
}
