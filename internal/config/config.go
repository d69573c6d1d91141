package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the service reads from the environment.
type Config struct {
	App      AppConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Email    EmailConfig
	Mail     MailConfig
	Admin    AdminConfig
	Cleanup  CleanupConfig
	RabbitMQ RabbitMQConfig
	Payment  PaymentConfig
	Log      LogConfig
}

type AppConfig struct {
	Port        string
	Env         string
	BaseURL     string
	FrontendURL string
}

// IsDevelopment reports whether the service runs in the development environment.
func (a AppConfig) IsDevelopment() bool {
	return strings.EqualFold(a.Env, "development")
}

// PublicURL is the externally reachable base URL, derived from the port when APP_BASE_URL is unset.
func (a AppConfig) PublicURL() string {
	if a.BaseURL != "" {
		return strings.TrimRight(a.BaseURL, "/")
	}
	if strings.HasPrefix(a.Port, ":") {
		return "http://localhost" + a.Port
	}
	return "http://localhost:" + a.Port
}

type DatabaseConfig struct {
	Driver string // "postgres" or "sqlite"
	DSN    string
}

type JWTConfig struct {
	Key    string
	Issuer string
	TTL    time.Duration
}

// EmailConfig points at the external notification service.
type EmailConfig struct {
	ServiceURL string
	Timeout    time.Duration
}

// MailConfig configures direct mail delivery through SendGrid.
type MailConfig struct {
	Enabled        bool
	SendGridAPIKey string
	From           string
}

type AdminConfig struct {
	AllowDeleteAll bool
	Secret         string
}

type CleanupConfig struct {
	DeleteOrphanedBusinesses bool
}

type RabbitMQConfig struct {
	URL string
}

type PaymentConfig struct {
	Currency string
}

type LogConfig struct {
	Level  string
	Pretty bool
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromViper(viper.New())
}

// FromViper builds a Config from an already prepared viper instance.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Port:        v.GetString("APP_PORT"),
			Env:         v.GetString("APP_ENV"),
			BaseURL:     v.GetString("APP_BASE_URL"),
			FrontendURL: v.GetString("FRONTEND_URL"),
		},
		Database: DatabaseConfig{
			Driver: strings.ToLower(v.GetString("DATABASE_DRIVER")),
			DSN:    v.GetString("DATABASE_DSN"),
		},
		JWT: JWTConfig{
			Key:    v.GetString("JWT_KEY"),
			Issuer: v.GetString("JWT_ISSUER"),
			TTL:    v.GetDuration("JWT_TTL"),
		},
		Email: EmailConfig{
			ServiceURL: strings.TrimRight(v.GetString("EMAIL_SERVICE_URL"), "/"),
			Timeout:    v.GetDuration("EMAIL_SERVICE_TIMEOUT"),
		},
		Mail: MailConfig{
			Enabled:        v.GetBool("MAIL_ENABLED"),
			SendGridAPIKey: v.GetString("SENDGRID_API_KEY"),
			From:           v.GetString("MAIL_FROM"),
		},
		Admin: AdminConfig{
			AllowDeleteAll: v.GetBool("ADMIN_ALLOW_DELETE_ALL"),
			Secret:         v.GetString("ADMIN_SECRET"),
		},
		Cleanup: CleanupConfig{
			DeleteOrphanedBusinesses: v.GetBool("CLEANUP_DELETE_ORPHANED_BUSINESSES"),
		},
		RabbitMQ: RabbitMQConfig{
			URL: v.GetString("RABBITMQ_URL"),
		},
		Payment: PaymentConfig{
			Currency: strings.ToUpper(v.GetString("PAYMENT_CURRENCY")),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Pretty: v.GetBool("LOG_PRETTY"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_BASE_URL", "")
	v.SetDefault("FRONTEND_URL", "http://localhost:5173")
	v.SetDefault("DATABASE_DRIVER", "postgres")
	v.SetDefault("DATABASE_DSN", "host=127.0.0.1 user=postgres password=postgres dbname=petitshop port=5432 sslmode=disable")
	v.SetDefault("JWT_KEY", "dev_secret_key_change_me")
	v.SetDefault("JWT_ISSUER", "petitshop")
	v.SetDefault("JWT_TTL", "168h")
	v.SetDefault("EMAIL_SERVICE_URL", "http://localhost:4000")
	v.SetDefault("EMAIL_SERVICE_TIMEOUT", "10s")
	v.SetDefault("MAIL_ENABLED", false)
	v.SetDefault("MAIL_FROM", "no-reply@localhost")
	v.SetDefault("ADMIN_ALLOW_DELETE_ALL", false)
	v.SetDefault("CLEANUP_DELETE_ORPHANED_BUSINESSES", false)
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PAYMENT_CURRENCY", "USD")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_PRETTY", false)
}

func (c *Config) validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return fmt.Errorf("unsupported DATABASE_DRIVER %q", c.Database.Driver)
	}
	if c.JWT.Key == "" {
		return fmt.Errorf("JWT_KEY must not be empty")
	}
	if c.JWT.TTL <= 0 {
		return fmt.Errorf("JWT_TTL must be positive")
	}
	if c.Email.Timeout <= 0 {
		return fmt.Errorf("EMAIL_SERVICE_TIMEOUT must be positive")
	}
	if c.Mail.Enabled && c.Mail.SendGridAPIKey == "" {
		return fmt.Errorf("SENDGRID_API_KEY is required when MAIL_ENABLED is true")
	}
	return nil
}
