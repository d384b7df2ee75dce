package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/agendahq/agenda/internal/domain"
	"github.com/agendahq/agenda/internal/service"
)

// NotificationHandler handles notification endpoints.
type NotificationHandler struct {
	notifications *service.NotificationService
}

// NewNotificationHandler creates a new NotificationHandler.
func NewNotificationHandler(notifications *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

// ListMine returns the caller's notifications, newest first.
func (h *NotificationHandler) ListMine(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	onlyUnread := c.QueryParam("only_unread") == "true"
	notifications, err := h.notifications.FindForUser(c.Request().Context(), actor, onlyUnread)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, notifications)
}

// ListAll returns every notification. Admin only.
func (h *NotificationHandler) ListAll(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	onlyUnread := c.QueryParam("only_unread") == "true"
	notifications, err := h.notifications.FindAll(c.Request().Context(), actor, onlyUnread)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, notifications)
}

// MarkRead marks a single notification as read.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	id, err := pathID(c)
	if err != nil {
		return err
	}

	notification, err := h.notifications.MarkRead(c.Request().Context(), actor, id)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, notification)
}

// MarkAllRead marks all of the caller's notifications as read.
func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	actor, ok := GetActor(c)
	if !ok {
		return domain.ErrUnauthorized
	}

	count, err := h.notifications.MarkAllRead(c.Request().Context(), actor)
	if err != nil {
		return err
	}
	return JSON(c, http.StatusOK, map[string]int64{"updated": count})
}
