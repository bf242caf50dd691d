package notification

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

const TypeAchievement = "achievement"

type Notification struct {
	Id        ulid.ULID `json:"id"`
	UserId    ulid.ULID `json:"userId"`
	SavingId  ulid.ULID `json:"savingId"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	IsRead    bool      `json:"isRead"`
	CreatedAt time.Time `json:"createdAt"`
}

type Settings struct {
	UserId                  ulid.ULID `json:"userId"`
	AchievementCelebrations bool      `json:"achievementCelebrations"`
}

func DefaultSettings(userID ulid.ULID) *Settings {
	return &Settings{UserId: userID, AchievementCelebrations: true}
}

// Event is the achievement trigger handed to delivery.
type Event struct {
	UserId      ulid.ULID        `json:"userId"`
	GoalId      ulid.ULID        `json:"goalId"`
	Achievement EventAchievement `json:"achievement"`
}

type EventAchievement struct {
	Title   string `json:"title"`
	Message string `json:"message"`
}

type Repository interface {
	Create(ctx context.Context, n *Notification) error
	// GetSettings returns DefaultSettings when the user has none stored.
	GetSettings(ctx context.Context, userID ulid.ULID) (*Settings, error)
}

type SettingsStore interface {
	GetSettings(ctx context.Context, userID ulid.ULID) (*Settings, error)
	SaveSettings(ctx context.Context, s *Settings) error
}
