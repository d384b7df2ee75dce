package handler

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/agendahq/agenda/internal/domain"
	"github.com/agendahq/agenda/internal/service"
)

// BookingHandler handles booking endpoints.
type BookingHandler struct {
	bookings *service.BookingService
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	return &BookingHandler{bookings: bookings}
}

type createBookingRequest struct {
	UserID     *int64    `json:"user_id" validate:"omitempty,gt=0"`
	StartTime  time.Time `json:"start_time" validate:"required"`
	EndTime    time.Time `json:"end_time" validate:"required"`
	Country    string    `json:"country" validate:"required"`
	City       string    `json:"city" validate:"required"`
	Department string    `json:"department" validate:"required"`
	House      string    `json:"house" validate:"required"`
}

type updateBookingRequest struct {
	StartTime  *time.Time `json:"start_time"`
	EndTime    *time.Time `json:"end_time"`
	Country    *string    `json:"country" validate:"omitempty,min=1"`
	City       *string    `json:"city" validate:"omitempty,min=1"`
	Department *string    `json:"department" validate:"omitempty,min=1"`
	House      *string    `json:"house" validate:"omitempty,min=1"`
}

// Create admits a new booking. Booking on behalf of another user requires
// the admin role; the default owner is the caller.
func (h *BookingHandler) Create(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	var req createBookingRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	ownerID := actor.ID
	if req.UserID != nil {
		ownerID = *req.UserID
	}

	booking, err := h.bookings.Create(c.Request().Context(), actor, service.CreateBookingInput{
		UserID:     ownerID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Country:    req.Country,
		City:       req.City,
		Department: req.Department,
		House:      req.House,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusCreated, booking)
}

// Cancel marks a booking as cancelled.
func (h *BookingHandler) Cancel(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	booking, err := h.bookings.Cancel(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, booking)
}

// Update applies a partial update to a booking.
func (h *BookingHandler) Update(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	var req updateBookingRequest
	if err := c.Bind(&req); err != nil {
		return fmt.Errorf("%w: invalid request body", domain.ErrInvalidInput)
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	booking, err := h.bookings.Update(c.Request().Context(), actor, id, service.UpdateBookingInput{
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Country:    req.Country,
		City:       req.City,
		Department: req.Department,
		House:      req.House,
	})
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, booking)
}

// ListMine returns the caller's active bookings, optionally bounded by a
// start-time range.
func (h *BookingHandler) ListMine(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	from, to, err := timeRange(c)
	if err != nil {
		return err
	}

	bookings, err := h.bookings.FindForUser(c.Request().Context(), actor, actor.ID, from, to)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, bookings)
}

// ListAll returns every active booking, or one user's when user_id is
// given. Admin only either way; the service enforces it.
func (h *BookingHandler) ListAll(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	from, to, err := timeRange(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid user_id", domain.ErrInvalidInput)
		}
		bookings, err := h.bookings.FindForUser(ctx, actor, userID, from, to)
		if err != nil {
			return err
		}
		return JSON(c, http.StatusOK, bookings)
	}

	bookings, err := h.bookings.FindAll(ctx, actor, from, to)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, bookings)
}

// MyAlerts partitions the caller's active bookings into ongoing and
// upcoming sets relative to the current instant.
func (h *BookingHandler) MyAlerts(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	lookahead, err := lookaheadParam(c)
	if err != nil {
		return err
	}

	alerts, err := h.bookings.AlertsForUser(c.Request().Context(), actor, actor.ID, time.Now().UTC(), lookahead)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, alerts)
}

// AllAlerts partitions every user's active bookings, or one user's when
// user_id is given. Admin only either way; the service enforces it.
func (h *BookingHandler) AllAlerts(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	lookahead, err := lookaheadParam(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	if raw := c.QueryParam("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: invalid user_id", domain.ErrInvalidInput)
		}
		alerts, err := h.bookings.AlertsForUser(ctx, actor, userID, time.Now().UTC(), lookahead)
		if err != nil {
			return err
		}
		return JSON(c, http.StatusOK, alerts)
	}

	alerts, err := h.bookings.AlertsForAll(ctx, actor, time.Now().UTC(), lookahead)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, alerts)
}

func pathID(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: invalid id", domain.ErrInvalidInput)
	}
	return id, nil
}

func timeRange(c echo.Context) (*time.Time, *time.Time, error) {
	parse := func(name string) (*time.Time, error) {
		raw := c.QueryParam(name)
		if raw == "" {
			return nil, nil
		}
		t, err := time.Parse(time.RFC3339, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be RFC3339", domain.ErrInvalidInput, name)
		}
		utc := t.UTC()
		return &utc, nil
	}

	from, err := parse("from")
	if err != nil {
		return nil, nil, err
	}
	to, err := parse("to")
	if err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func lookaheadParam(c echo.Context) (time.Duration, error) {
	raw := c.QueryParam("lookahead_minutes")
	if raw == "" {
		return domain.DefaultLookahead, nil
	}
	minutes, err := strconv.Atoi(raw)
	if err != nil || minutes <= 0 {
		return 0, fmt.Errorf("%w: lookahead_minutes must be a positive integer", domain.ErrInvalidInput)
	}
	return time.Duration(minutes) * time.Minute, nil
}
