package config

import (
	"time"

	"github.com/spf13/viper"
)

type (
	Config struct {
		HTTP
		Global
		Database
		Tasks
		Auth
		Mail
		Audit
	}

	HTTP struct {
		Port         int32
		Host         string
		MaxBodyBytes int64
	}

	Global struct {
		ShutdownTimeoutInSeconds int
	}
	Database struct {
		Driver string // "sqlite" or "postgres"
		Path   string // SQLite file, the task queue database lives next to it
		DSN    string // PostgreSQL connection string
		Debug  bool
	}
	Tasks struct {
		Enabled           bool
		Workers           int
		MaxRetries        int
		RetryDelay        time.Duration
		TaskTimeout       time.Duration
		ReleaseAfter      time.Duration
		CleanupInterval   time.Duration
		RetentionDuration time.Duration

		// Cron format: "0 3 * * *" = daily at 03:00
		MaintenanceSchedule string
	}
	Auth struct {
		BcryptCost int

		// TokenExpiry of zero means tokens live until logout
		TokenExpiry time.Duration

		// Rate limiting configuration
		MaxLoginAttempts int           // Max failed attempts before lockout (default: 5)
		RateLimitWindow  time.Duration // Time window for counting attempts (default: 15m)
		LockoutDuration  time.Duration // How long to lock out (default: 30m)
	}
	Mail struct {
		Backend  string // "log" or "smtp"
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	Audit struct {
		Enabled   bool
		Retention time.Duration // zero keeps events forever
	}
)

func NewConfig() *Config {
	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("port", 8000)
	v.SetDefault("host", "0.0.0.0")
	v.SetDefault("max_body_bytes", 1<<20)
	v.SetDefault("shutdown_timeout_in_seconds", 5)

	v.SetDefault("database_driver", DriverSQLite)
	v.SetDefault("database_path", DefaultDatabasePath)
	v.SetDefault("database_dsn", "")
	v.SetDefault("database_debug", false)

	// Task queue defaults
	v.SetDefault("tasks_enabled", true)
	v.SetDefault("task_workers", 2)
	v.SetDefault("task_max_retries", 3)
	v.SetDefault("task_retry_delay", "1m")
	v.SetDefault("task_timeout", "1m")
	v.SetDefault("task_release_after", "15m")
	v.SetDefault("task_cleanup_interval", "1h")
	v.SetDefault("task_retention_duration", "24h")
	v.SetDefault("maintenance_schedule", "0 3 * * *")

	// Auth defaults
	v.SetDefault("auth_bcrypt_cost", 12)
	v.SetDefault("auth_token_expiry", "0s")
	v.SetDefault("auth_max_login_attempts", 5)
	v.SetDefault("auth_rate_limit_window", "15m")
	v.SetDefault("auth_lockout_duration", "30m")

	// Mail defaults
	v.SetDefault("mail_backend", MailBackendLog)
	v.SetDefault("mail_host", "localhost")
	v.SetDefault("mail_port", 25)
	v.SetDefault("mail_username", "")
	v.SetDefault("mail_password", "")
	v.SetDefault("mail_from", DefaultMailFrom)

	// Audit defaults
	v.SetDefault("audit_enabled", true)
	v.SetDefault("audit_retention", "2160h")

	return &Config{
		HTTP: HTTP{
			Port:         v.GetInt32("PORT"),
			Host:         v.GetString("HOST"),
			MaxBodyBytes: v.GetInt64("MAX_BODY_BYTES"),
		},
		Global: Global{
			ShutdownTimeoutInSeconds: v.GetInt("SHUTDOWN_TIMEOUT_IN_SECONDS"),
		},
		Database: Database{
			Driver: v.GetString("DATABASE_DRIVER"),
			Path:   v.GetString("DATABASE_PATH"),
			DSN:    v.GetString("DATABASE_DSN"),
			Debug:  v.GetBool("DATABASE_DEBUG"),
		},
		Tasks: Tasks{
			Enabled:           v.GetBool("TASKS_ENABLED"),
			Workers:           v.GetInt("TASK_WORKERS"),
			MaxRetries:        v.GetInt("TASK_MAX_RETRIES"),
			RetryDelay:        v.GetDuration("TASK_RETRY_DELAY"),
			TaskTimeout:       v.GetDuration("TASK_TIMEOUT"),
			ReleaseAfter:      v.GetDuration("TASK_RELEASE_AFTER"),
			CleanupInterval:   v.GetDuration("TASK_CLEANUP_INTERVAL"),
			RetentionDuration: v.GetDuration("TASK_RETENTION_DURATION"),

			MaintenanceSchedule: v.GetString("MAINTENANCE_SCHEDULE"),
		},
		Auth: Auth{
			BcryptCost:       v.GetInt("AUTH_BCRYPT_COST"),
			TokenExpiry:      v.GetDuration("AUTH_TOKEN_EXPIRY"),
			MaxLoginAttempts: v.GetInt("AUTH_MAX_LOGIN_ATTEMPTS"),
			RateLimitWindow:  v.GetDuration("AUTH_RATE_LIMIT_WINDOW"),
			LockoutDuration:  v.GetDuration("AUTH_LOCKOUT_DURATION"),
		},
		Mail: Mail{
			Backend:  v.GetString("MAIL_BACKEND"),
			Host:     v.GetString("MAIL_HOST"),
			Port:     v.GetInt("MAIL_PORT"),
			Username: v.GetString("MAIL_USERNAME"),
			Password: v.GetString("MAIL_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
		},
		Audit: Audit{
			Enabled:   v.GetBool("AUDIT_ENABLED"),
			Retention: v.GetDuration("AUDIT_RETENTION"),
		},
	}
}
