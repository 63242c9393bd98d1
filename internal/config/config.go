package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
	MaxOpen    int
	MaxIdle    int
}

type Config struct {
	Environment string
	ServerPort  string
	DB          DBConfig
	AMQPURL     string
	LogLevel    string
	LogFormat   string
	OwnerMatch  string
	SentryDSN   string
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("ENVIRONMENT", "development"),
		ServerPort:  getEnv("SERVER_PORT", "8080"),
		DB: DBConfig{
			Driver:     getEnv("DB_DRIVER", "postgres"),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "journeys"),
			SSLMode:    getEnv("DB_SSL_MODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "journeys.db"),
			MaxOpen:    getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdle:    getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		AMQPURL:    getEnv("AMQP_URL", ""),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		LogFormat:  getEnv("LOG_FORMAT", "text"),
		OwnerMatch: getEnv("OWNER_MATCH", "display-name"),
		SentryDSN:  getEnv("SENTRY_DSN", ""),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DB.Driver {
	case "postgres":
		if c.DB.Password == "" && c.Environment == "production" {
			return fmt.Errorf("DB_PASSWORD is required in production")
		}
	case "sqlite":
		if strings.TrimSpace(c.DB.SQLitePath) == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.DB.Driver)
	}
	switch c.OwnerMatch {
	case "display-name", "user-id":
	default:
		return fmt.Errorf("OWNER_MATCH must be display-name or user-id, got %q", c.OwnerMatch)
	}
	return nil
}

// DSN builds the driver specific data source name.
func (d DBConfig) DSN() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)"
	}
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     net.JoinHostPort(d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: url.Values{"sslmode": {d.SSLMode}}.Encode(),
	}
	return u.String()
}

// Redacted is the DSN safe for logs.
func (d DBConfig) Redacted() string {
	if d.Driver == "sqlite" {
		return d.SQLitePath
	}
	return fmt.Sprintf("postgres://%s:*****@%s:%s/%s", d.User, d.Host, d.Port, d.Name)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}
