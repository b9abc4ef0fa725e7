package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

const (
	StorePostgres = "postgres"
	StoreSQLite   = "sqlite"
)

type Config struct {
	Port          string        `env:"PORT" envDefault:"8080"`
	AllowedOrigin string        `env:"ALLOWED_ORIGIN" envDefault:"*"`
	HTTPTimeout   time.Duration `env:"HTTP_TIMEOUT" envDefault:"15s"`

	OrderStore  string `env:"ORDER_STORE" envDefault:"sqlite"`
	DatabaseURL string `env:"DATABASE_URL"` // Postgres connection string
	SQLitePath  string `env:"SQLITE_PATH" envDefault:"data/orders.db"`

	SessionSecret string        `env:"SESSION_SECRET,required,notEmpty"`
	SessionTTL    time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SecureCookies bool          `env:"SECURE_COOKIES" envDefault:"true"`

	CatalogURL      string        `env:"CATALOG_URL"`
	CatalogTTL      time.Duration `env:"CATALOG_TTL" envDefault:"5m"`
	FeeScheduleFile string        `env:"FEE_SCHEDULE_FILE"`

	PaymentInitURL     string `env:"PAYMENT_INIT_URL" envDefault:"http://localhost:8081/api/payments/initialize"`
	PaymentCallbackURL string `env:"PAYMENT_CALLBACK_URL" envDefault:"http://localhost:8081/api/payments/webhook"`
	ReturnURL          string `env:"RETURN_URL" envDefault:"http://localhost:8080/payment/complete"`

	AuthLoginURL   string `env:"AUTH_LOGIN_URL" envDefault:"http://localhost:8081/api/auth/login"`
	AuthProfileURL string `env:"AUTH_PROFILE_URL" envDefault:"http://localhost:8081/api/auth/profile"`

	DashboardURL string `env:"DASHBOARD_URL" envDefault:"/dashboard"`
	SuccessURL   string `env:"SUCCESS_URL" envDefault:"/payment/success"`
	FailureURL   string `env:"FAILURE_URL" envDefault:"/payment/failed"`

	VerifyAttempts int           `env:"VERIFY_ATTEMPTS" envDefault:"3"`
	VerifyDelay    time.Duration `env:"VERIFY_DELAY" envDefault:"500ms"`
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.OrderStore {
	case StorePostgres:
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required when ORDER_STORE=%s", StorePostgres)
		}
	case StoreSQLite:
		if c.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required when ORDER_STORE=%s", StoreSQLite)
		}
	default:
		return fmt.Errorf("unknown ORDER_STORE %q", c.OrderStore)
	}
	if c.VerifyAttempts < 1 {
		return fmt.Errorf("VERIFY_ATTEMPTS must be at least 1")
	}
	return nil
}
