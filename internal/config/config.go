package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	Env         string   `env:"APP_ENV" envDefault:"dev"`
	LogLevel    string   `env:"LOG_LEVEL" envDefault:"info"`
	Version     string   `env:"APP_VERSION" envDefault:"1.0.0"`
	ServerPort  string   `env:"PORT" envDefault:"3050"`
	SwaggerHost string   `env:"SWAGGER_HOST"`
	CORSOrigins []string `env:"CORS_ORIGINS" envSeparator:"," envDefault:"*"`
	Database    Database `envPrefix:"DB_"`
	Redis       Redis    `envPrefix:"REDIS_"`
	JWT         JWT      `envPrefix:"JWT_"`
	Login       Login    `envPrefix:"LOGIN_"`
}

// Database contains relational store parameters.
type Database struct {
	Driver      string `env:"DRIVER" envDefault:"postgres"`
	DSN         string `env:"DSN"`
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"5432"`
	User        string `env:"USER" envDefault:"postgres"`
	Password    string `env:"PASS"`
	Name        string `env:"NAME" envDefault:"students"`
	AutoMigrate bool   `env:"AUTO_MIGRATE" envDefault:"true"`
}

// Redis contains parameters of the login throttling store.
// An empty Addr disables throttling.
type Redis struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

// JWT contains token signing parameters.
type JWT struct {
	Secret    string        `env:"SECRET" envDefault:"change-me"`
	ExpiresIn time.Duration `env:"EXPIRES_IN" envDefault:"24h"`
}

// Login contains failed-login throttling parameters.
type Login struct {
	MaxAttempts int           `env:"MAX_ATTEMPTS" envDefault:"5"`
	LockWindow  time.Duration `env:"LOCK_WINDOW" envDefault:"15m"`
}

// Load reads an optional .env file and builds Config from the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Database.Driver != "postgres" && cfg.Database.Driver != "mysql" {
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", cfg.Database.Driver)
	}
	return &cfg, nil
}

// ConnString returns DSN when set, otherwise a DSN built for Driver.
func (d Database) ConnString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == "mysql" {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			d.User, d.Password, d.Host, d.Port, d.Name)
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		d.Host, d.Port, d.User, d.Password, d.Name)
}
