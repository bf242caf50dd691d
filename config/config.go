package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App           AppConfig
	Server        ServerConfig
	Database      DatabaseConfig
	Log           LogConfig
	JWT           JWTConfig
	Scheduler     SchedulerConfig
	Webhooks      WebhookConfig
	Ledger        LedgerConfig
	Notifications NotificationConfig
	Internal      InternalConfig
}

type AppConfig struct {
	Name        string
	Environment string
}

type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

type DatabaseConfig struct {
	Driver          string
	DSN             string
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	AutoMigrate     bool
}

type LogConfig struct {
	Level string
	JSON  bool
}

type JWTConfig struct {
	Secret string
	Issuer string
}

type SchedulerConfig struct {
	Enabled  bool
	Interval time.Duration
	PageSize int
}

// WebhookConfig holds per-provider secrets. An empty secret disables the
// signature check for that provider.
type WebhookConfig struct {
	MpesaSecret     string
	StripeSecret    string
	FlutterwaveHash string
	BankAPIKey      string
	RateLimit       int
	RateLimitWindow time.Duration
	StripeTolerance time.Duration
}

type LedgerConfig struct {
	Timeout time.Duration
}

type NotificationConfig struct {
	Workers int
	Buffer  int
}

type InternalConfig struct {
	Token string
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.App.Environment, "production")
}

func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "wanderfund"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port:           getEnv("PORT", "8080"),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", []string{"*"}),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "postgres"),
			DSN:             getEnv("DATABASE_URL", ""),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnvInt("DB_PORT", 5432),
			User:            getEnv("DB_USER", "postgres"),
			Password:        getEnv("DB_PASSWORD", ""),
			DBName:          getEnv("DB_NAME", "wanderfund"),
			SSLMode:         getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:    getEnvInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getEnvDuration("DB_CONN_MAX_LIFETIME", 5*time.Minute),
			AutoMigrate:     getEnvBool("DB_AUTO_MIGRATE", true),
		},
		Log: LogConfig{
			Level: getEnv("LOG_LEVEL", "info"),
			JSON:  getEnvBool("LOG_JSON", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			Issuer: getEnv("JWT_ISSUER", "wanderfund"),
		},
		Scheduler: SchedulerConfig{
			Enabled:  getEnvBool("SCHEDULER_ENABLED", true),
			Interval: getEnvDuration("SCHEDULER_INTERVAL", time.Hour),
			PageSize: getEnvInt("SCHEDULER_PAGE_SIZE", 100),
		},
		Webhooks: WebhookConfig{
			MpesaSecret:     getEnv("MPESA_WEBHOOK_SECRET", ""),
			StripeSecret:    getEnv("STRIPE_WEBHOOK_SECRET", ""),
			FlutterwaveHash: getEnv("FLUTTERWAVE_WEBHOOK_HASH", ""),
			BankAPIKey:      getEnv("BANK_WEBHOOK_API_KEY", ""),
			RateLimit:       getEnvInt("WEBHOOK_RATE_LIMIT", 300),
			RateLimitWindow: getEnvDuration("WEBHOOK_RATE_LIMIT_WINDOW", time.Minute),
			StripeTolerance: getEnvDuration("STRIPE_SIGNATURE_TOLERANCE", 5*time.Minute),
		},
		Ledger: LedgerConfig{
			Timeout: getEnvDuration("LEDGER_TIMEOUT", 10*time.Second),
		},
		Notifications: NotificationConfig{
			Workers: getEnvInt("NOTIFY_WORKERS", 2),
			Buffer:  getEnvInt("NOTIFY_BUFFER", 256),
		},
		Internal: InternalConfig{
			Token: getEnv("INTERNAL_API_TOKEN", ""),
		},
	}

	if cfg.Database.DSN == "" && cfg.Database.Driver == "postgres" {
		cfg.Database.DSN = fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.DBName,
			cfg.Database.SSLMode,
		)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Database.Driver == "sqlite" && c.Database.DSN == "" {
		return fmt.Errorf("DATABASE_URL is required for the sqlite driver")
	}
	if c.IsProduction() && c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required in production")
	}
	if c.Scheduler.Interval <= 0 {
		return fmt.Errorf("SCHEDULER_INTERVAL must be positive")
	}
	if c.Ledger.Timeout <= 0 {
		return fmt.Errorf("LEDGER_TIMEOUT must be positive")
	}
	if c.Notifications.Workers < 1 {
		c.Notifications.Workers = 1
	}
	if c.Notifications.Buffer < 1 {
		c.Notifications.Buffer = 1
	}
	if c.Scheduler.PageSize < 1 {
		c.Scheduler.PageSize = 100
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func getEnvBool(key string, fallback bool) bool {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}

func getEnvList(key string, fallback []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
