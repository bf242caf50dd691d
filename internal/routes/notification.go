package routes

import (
	"net/http"

	"Wanderfund/internal/contracts"

	"github.com/gin-gonic/gin"
)

func (h *Handler) GetNotificationSettings(c *gin.Context) {
	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	settings, err := h.Notifications.GetSettings(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.NotificationSettingsResponse{Settings: settings})
}

func (h *Handler) UpdateNotificationSettings(c *gin.Context) {
	var body contracts.NotificationSettingsRequest
	if err := h.bindJSON(c, &body); err != nil {
		h.respondError(c, err)
		return
	}

	userID, err := h.GetUserIDFromContext(c)
	if err != nil {
		h.respondError(c, err)
		return
	}

	settings, err := h.Notifications.GetSettings(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	settings.AchievementCelebrations = *body.AchievementCelebrations

	if err := h.Notifications.SaveSettings(c.Request.Context(), settings); err != nil {
		h.respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, contracts.NotificationSettingsResponse{Settings: settings})
}
