package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/sangkips/cheeta-billing/internal/infrastructure/txretry"
	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Store     StoreConfig
	Billing   BillingConfig
	Printer   PrinterConfig
}

type AppConfig struct {
	Name     string
	Env      string
	Port     string
	LogLevel string
}

type DatabaseConfig struct {
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	MaxIdleConns int
	MaxOpenConns int
	LogQueries   bool
}

// JWTConfig describes how tokens from the identity provider are verified.
type JWTConfig struct {
	Secret string
	Issuer string
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

// RateLimitConfig is the per-user request budget. Requests per Duration
// seconds covers every protected route; BillCreatesPerMinute additionally
// caps POST /bills.
type RateLimitConfig struct {
	Requests             int
	Duration             int
	BillCreatesPerMinute int
}

// StoreConfig selects the backing store and its transaction retry budget.
type StoreConfig struct {
	Driver            string
	TxMaxAttempts     int
	TxInitialInterval time.Duration
	TxMaxInterval     time.Duration
}

// BillingConfig controls how bill months are derived.
type BillingConfig struct {
	// Timezone names the calendar bill months follow. Empty means the host's local time.
	Timezone string
}

type PrinterConfig struct {
	Type      string
	USBPath   string
	Address   string
	CharWidth int
}

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// Load reads configuration from the environment, after loading an optional .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("APP_NAME", "cheeta-billing")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "cheeta")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "Asia/Kolkata")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 100)
	v.SetDefault("DB_LOG_QUERIES", false)
	v.SetDefault("JWT_SECRET", "change-this-secret-in-production")
	v.SetDefault("JWT_ISSUER", "")
	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("CORS_ALLOWED_METHODS", "")
	v.SetDefault("CORS_ALLOWED_HEADERS", "")
	v.SetDefault("RATE_LIMIT_REQUESTS", 100)
	v.SetDefault("RATE_LIMIT_DURATION", 60)
	v.SetDefault("RATE_LIMIT_BILL_CREATES", 30)
	v.SetDefault("STORE_DRIVER", StoreDriverPostgres)
	v.SetDefault("STORE_TX_MAX_ATTEMPTS", txretry.DefaultMaxAttempts)
	v.SetDefault("STORE_TX_INITIAL_INTERVAL", "10ms")
	v.SetDefault("STORE_TX_MAX_INTERVAL", "250ms")
	v.SetDefault("BILLING_TIMEZONE", "")
	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_USB_PATH", "/dev/usb/lp0")
	v.SetDefault("PRINTER_ADDRESS", "")
	v.SetDefault("PRINTER_CHAR_WIDTH", 32)

	cfg := &Config{
		App: AppConfig{
			Name:     v.GetString("APP_NAME"),
			Env:      v.GetString("APP_ENV"),
			Port:     v.GetString("APP_PORT"),
			LogLevel: v.GetString("LOG_LEVEL"),
		},
		Database: DatabaseConfig{
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			Timezone:     v.GetString("DB_TIMEZONE"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
			LogQueries:   v.GetBool("DB_LOG_QUERIES"),
		},
		JWT: JWTConfig{
			Secret: v.GetString("JWT_SECRET"),
			Issuer: v.GetString("JWT_ISSUER"),
		},
		CORS: CORSConfig{
			AllowedOrigins: splitList(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: splitList(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: splitList(v.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests:             v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration:             v.GetInt("RATE_LIMIT_DURATION"),
			BillCreatesPerMinute: v.GetInt("RATE_LIMIT_BILL_CREATES"),
		},
		Store: StoreConfig{
			Driver:            strings.ToLower(v.GetString("STORE_DRIVER")),
			TxMaxAttempts:     v.GetInt("STORE_TX_MAX_ATTEMPTS"),
			TxInitialInterval: v.GetDuration("STORE_TX_INITIAL_INTERVAL"),
			TxMaxInterval:     v.GetDuration("STORE_TX_MAX_INTERVAL"),
		},
		Billing: BillingConfig{
			Timezone: v.GetString("BILLING_TIMEZONE"),
		},
		Printer: PrinterConfig{
			Type:      v.GetString("PRINTER_TYPE"),
			USBPath:   v.GetString("PRINTER_USB_PATH"),
			Address:   v.GetString("PRINTER_ADDRESS"),
			CharWidth: v.GetInt("PRINTER_CHAR_WIDTH"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the service cannot start with.
func (c *Config) Validate() error {
	switch c.Store.Driver {
	case StoreDriverPostgres, StoreDriverMemory:
	default:
		return fmt.Errorf("config: unknown STORE_DRIVER %q (use postgres or memory)", c.Store.Driver)
	}
	if c.Store.TxMaxAttempts < 1 {
		return fmt.Errorf("config: STORE_TX_MAX_ATTEMPTS must be at least 1")
	}
	if _, err := c.Billing.Location(); err != nil {
		return err
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("config: JWT_SECRET is required")
	}
	return nil
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

// Policy converts the store settings into a transaction retry budget.
func (c *StoreConfig) Policy() txretry.Policy {
	return txretry.Policy{
		MaxAttempts:     uint64(c.TxMaxAttempts),
		InitialInterval: c.TxInitialInterval,
		MaxInterval:     c.TxMaxInterval,
	}
}

// Location resolves the billing calendar.
func (c *BillingConfig) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("config: invalid BILLING_TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
