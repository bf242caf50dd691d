package contracts

import "Wanderfund/internal/domain/notification"

type NotificationSettingsRequest struct {
	AchievementCelebrations *bool `json:"achievementCelebrations" binding:"required"`
}

type NotificationSettingsResponse struct {
	Settings *notification.Settings `json:"settings"`
}
