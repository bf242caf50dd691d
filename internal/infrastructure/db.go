package infrastructure

import (
	"fmt"

	"Wanderfund/config"
	"Wanderfund/internal/logger"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

func NewDb(cfg *config.Config) (*gorm.DB, error) {
	dialector, err := dialectorFor(cfg.Database)
	if err != nil {
		return nil, err
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogLevel(cfg)),
	})
	if err != nil {
		logger.Error().
			Err(err).
			Str("driver", cfg.Database.Driver).
			Str("host", cfg.Database.Host).
			Int("port", cfg.Database.Port).
			Str("database", cfg.Database.DBName).
			Msg("Failed to connect to the database")
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		logger.Error().Err(err).Msg("Failed to get the database handle")
		return nil, err
	}

	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)

	logger.Info().
		Str("driver", cfg.Database.Driver).
		Str("host", cfg.Database.Host).
		Int("port", cfg.Database.Port).
		Str("database", cfg.Database.DBName).
		Msg("Database connection established")

	if cfg.Database.AutoMigrate {
		if err := RunMigrations(db); err != nil {
			return nil, err
		}
	}

	return db, nil
}

func dialectorFor(cfg config.DatabaseConfig) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "", "postgres":
		return postgres.Open(cfg.DSN), nil
	case "sqlite":
		return sqlite.Open(cfg.DSN), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

func gormLogLevel(cfg *config.Config) gormLogger.LogLevel {
	if cfg.Log.Level == "debug" {
		return gormLogger.Info
	}
	return gormLogger.Warn
}

func RunMigrations(db *gorm.DB) error {
	logger.Info().Msg("Running migrations...")

	entities := []interface{}{
		&savingsGoalDB{},
		&savingsContributionDB{},
		&transactionDB{},
		&bookingDB{},
		&notificationDB{},
		&notificationSettingsDB{},
		&webhookDeliveryDB{},
	}

	for _, entity := range entities {
		if err := db.AutoMigrate(entity); err != nil {
			logger.Error().
				Err(err).
				Str("entity", getEntityName(entity)).
				Msg("Failed to migrate entity")
			return err
		}
	}

	logger.Info().Msg("Migrations completed")
	return nil
}

func getEntityName(entity interface{}) string {
	switch entity.(type) {
	case *savingsGoalDB:
		return "SavingsGoal"
	case *savingsContributionDB:
		return "SavingsContribution"
	case *transactionDB:
		return "Transaction"
	case *bookingDB:
		return "Booking"
	case *notificationDB:
		return "Notification"
	case *notificationSettingsDB:
		return "NotificationSettings"
	case *webhookDeliveryDB:
		return "WebhookDelivery"
	default:
		return "Unknown"
	}
}
