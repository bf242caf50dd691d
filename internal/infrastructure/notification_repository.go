package infrastructure

import (
	"context"
	"time"

	"Wanderfund/internal/domain/notification"
	appErrors "Wanderfund/internal/errors"

	"github.com/oklog/ulid/v2"
	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

var (
	_ notification.Repository    = (*NotificationRepository)(nil)
	_ notification.SettingsStore = (*NotificationRepository)(nil)
)

type notificationDB struct {
	Id        string    `gorm:"type:varchar(26);primaryKey"`
	UserId    string    `gorm:"type:varchar(26);index;not null"`
	SavingId  string    `gorm:"type:varchar(26);index"`
	Type      string    `gorm:"type:varchar(30);not null"`
	Title     string    `gorm:"type:varchar(120);not null"`
	Message   string    `gorm:"type:text;not null"`
	IsRead    bool      `gorm:"not null;default:false"`
	CreatedAt time.Time `gorm:"not null"`
}

func (notificationDB) TableName() string {
	return "notifications"
}

type notificationSettingsDB struct {
	UserId                  string `gorm:"type:varchar(26);primaryKey"`
	AchievementCelebrations bool   `gorm:"not null;default:true"`
	UpdatedAt               time.Time
}

func (notificationSettingsDB) TableName() string {
	return "notification_settings"
}

func (r *NotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	row := &notificationDB{
		Id:        n.Id.String(),
		UserId:    n.UserId.String(),
		SavingId:  n.SavingId.String(),
		Type:      n.Type,
		Title:     n.Title,
		Message:   n.Message,
		IsRead:    n.IsRead,
		CreatedAt: n.CreatedAt,
	}
	if err := r.DB.WithContext(ctx).Create(row).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}

func (r *NotificationRepository) GetSettings(ctx context.Context, userID ulid.ULID) (*notification.Settings, error) {
	var rows []notificationSettingsDB
	if err := r.DB.WithContext(ctx).Where("user_id = ?", userID.String()).Limit(1).Find(&rows).Error; err != nil {
		return nil, appErrors.NewDatabaseError(err)
	}
	if len(rows) == 0 {
		return notification.DefaultSettings(userID), nil
	}
	return &notification.Settings{
		UserId:                  userID,
		AchievementCelebrations: rows[0].AchievementCelebrations,
	}, nil
}

// SaveSettings upserts the user's preferences.
func (r *NotificationRepository) SaveSettings(ctx context.Context, s *notification.Settings) error {
	row := &notificationSettingsDB{
		UserId:                  s.UserId.String(),
		AchievementCelebrations: s.AchievementCelebrations,
		UpdatedAt:               time.Now().UTC(),
	}
	if err := r.DB.WithContext(ctx).Save(row).Error; err != nil {
		return appErrors.NewDatabaseError(err)
	}
	return nil
}
