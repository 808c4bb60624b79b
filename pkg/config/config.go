package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	NATS     NATSConfig
	JWT      JWTConfig
	Sentry   SentryConfig
	Stripe   StripeConfig
	SMTP     SMTPConfig
	Twilio   TwilioConfig
	Maps     MapsConfig
	Payments PaymentsConfig
	Tax      TaxConfig
	Partner  PartnerConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	Environment  string
	ServiceName  string
	ReadTimeout  int
	WriteTimeout int
	CORSOrigins  string
}

// DatabaseConfig holds PostgreSQL settings.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	MaxConns int
	MinConns int
}

// RedisConfig holds Redis settings.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// NATSConfig holds event bus settings.
type NATSConfig struct {
	URL        string
	StreamName string
}

// JWTConfig holds token verification settings for edge auth.
type JWTConfig struct {
	Secret string
}

// SentryConfig holds error tracking settings.
type SentryConfig struct {
	DSN     string
	Enabled bool
}

// StripeConfig holds payment gateway settings.
type StripeConfig struct {
	APIKey        string
	WebhookSecret string
	Currency      string
}

// SMTPConfig holds outbound e-mail settings.
type SMTPConfig struct {
	Host       string
	Port       string
	Username   string
	Password   string
	FromEmail  string
	FromName   string
	AdminEmail string
}

// TwilioConfig holds SMS settings.
type TwilioConfig struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	Enabled    bool
}

// MapsConfig holds distance provider settings.
type MapsConfig struct {
	APIKey  string
	Enabled bool
}

// PaymentsConfig holds reconciliation policy knobs.
type PaymentsConfig struct {
	// AmountTolerance is the maximum accepted drift, in currency units,
	// between the quoted total and the amount the provider reports as paid.
	AmountTolerance float64
}

// TaxConfig holds platform-wide tax policy.
type TaxConfig struct {
	Enabled         bool
	RatePct         float64
	IncludedInPrice bool
}

// PartnerConfig holds the fleet partner program settings.
type PartnerConfig struct {
	Enabled   bool
	MarginPct float64
}

// Load reads configuration from the environment (and .env when present).
func Load(serviceName string) (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			Environment:  getEnv("ENVIRONMENT", "development"),
			ServiceName:  serviceName,
			ReadTimeout:  getEnvAsInt("READ_TIMEOUT", 10),
			WriteTimeout: getEnvAsInt("WRITE_TIMEOUT", 10),
			CORSOrigins:  getEnv("CORS_ORIGINS", "http://localhost:3000"),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "taxibooking"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
			MaxConns: getEnvAsInt("DB_MAX_CONNS", 25),
			MinConns: getEnvAsInt("DB_MIN_CONNS", 5),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		NATS: NATSConfig{
			URL:        getEnv("NATS_URL", "nats://localhost:4222"),
			StreamName: getEnv("NATS_STREAM", "TAXIBOOKING"),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me-in-production"),
		},
		Sentry: SentryConfig{
			DSN:     getEnv("SENTRY_DSN", ""),
			Enabled: getEnvAsBool("SENTRY_ENABLED", false),
		},
		Stripe: StripeConfig{
			APIKey:        getEnv("STRIPE_API_KEY", ""),
			WebhookSecret: getEnv("STRIPE_WEBHOOK_SECRET", ""),
			Currency:      getEnv("STRIPE_CURRENCY", "eur"),
		},
		SMTP: SMTPConfig{
			Host:       getEnv("SMTP_HOST", "localhost"),
			Port:       getEnv("SMTP_PORT", "587"),
			Username:   getEnv("SMTP_USERNAME", ""),
			Password:   getEnv("SMTP_PASSWORD", ""),
			FromEmail:  getEnv("SMTP_FROM_EMAIL", "bookings@taxibooking.local"),
			FromName:   getEnv("SMTP_FROM_NAME", "TaxiBooking"),
			AdminEmail: getEnv("ADMIN_EMAIL", ""),
		},
		Twilio: TwilioConfig{
			AccountSID: getEnv("TWILIO_ACCOUNT_SID", ""),
			AuthToken:  getEnv("TWILIO_AUTH_TOKEN", ""),
			FromNumber: getEnv("TWILIO_FROM_NUMBER", ""),
			Enabled:    getEnvAsBool("TWILIO_ENABLED", false),
		},
		Maps: MapsConfig{
			APIKey:  getEnv("MAPS_API_KEY", ""),
			Enabled: getEnvAsBool("MAPS_ENABLED", false),
		},
		Payments: PaymentsConfig{
			AmountTolerance: getEnvAsFloat("PAYMENT_AMOUNT_TOLERANCE", 0.05),
		},
		Tax: TaxConfig{
			Enabled:         getEnvAsBool("TAX_ENABLED", false),
			RatePct:         getEnvAsFloat("TAX_RATE_PCT", 0),
			IncludedInPrice: getEnvAsBool("TAX_INCLUDED_IN_PRICE", false),
		},
		Partner: PartnerConfig{
			Enabled:   getEnvAsBool("PARTNER_PROGRAM_ENABLED", false),
			MarginPct: getEnvAsFloat("PARTNER_MARGIN_PCT", 0),
		},
	}

	if cfg.Payments.AmountTolerance < 0 {
		return nil, fmt.Errorf("PAYMENT_AMOUNT_TOLERANCE must not be negative")
	}
	if cfg.Partner.MarginPct < 0 || cfg.Partner.MarginPct > 100 {
		return nil, fmt.Errorf("PARTNER_MARGIN_PCT must be in [0,100]")
	}

	return cfg, nil
}

// DSN returns the database connection string.
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// MigrateURL returns the connection URL used by golang-migrate.
func (c *DatabaseConfig) MigrateURL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.DBName, c.SSLMode,
	)
}

// RedisAddr returns host:port for the Redis client.
func (c *RedisConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, err := strconv.Atoi(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsFloat(key string, defaultValue float64) float64 {
	if value, err := strconv.ParseFloat(getEnv(key, ""), 64); err == nil {
		return value
	}
	return defaultValue
}

func getEnvAsBool(key string, defaultValue bool) bool {
	if value, err := strconv.ParseBool(getEnv(key, "")); err == nil {
		return value
	}
	return defaultValue
}
