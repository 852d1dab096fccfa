package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/daily-motivation/internal/adapters/http/dto"
	"github.com/jsamuelsen/daily-motivation/internal/domain"
)

// NotificationSource yields pending notices. Implemented by *notify.Feed.
type NotificationSource interface {
	Drain() []domain.Notification
}

// NotificationHandler serves the toast feed.
type NotificationHandler struct {
	source NotificationSource
}

// NewNotificationHandler creates a new notification handler.
func NewNotificationHandler(source NotificationSource) *NotificationHandler {
	return &NotificationHandler{source: source}
}

// ListNotifications handles GET /api/v1/notifications
// Returns and clears the pending notices, oldest first.
//
// @Summary Drain pending notices
// @Tags notifications
// @Produce json
// @Success 200 {object} dto.NotificationsResponse
// @Router /api/v1/notifications [get]
func (h *NotificationHandler) ListNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, dto.NewNotificationsResponse(h.source.Drain()))
}

// RegisterNotificationRoutes registers the notification route.
func (h *NotificationHandler) RegisterNotificationRoutes(rg *gin.RouterGroup) {
	rg.GET("/notifications", h.ListNotifications)
}
