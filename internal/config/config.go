package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
	MaxConns int
	MaxIdle  int
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Enabled  bool
	Addr     string
	Password string
	DB       int
}

// Limits gates the real-time surface: message size, per-session message rate
// and per-IP connection rate.
type Limits struct {
	MaxMessageSize       int
	MessagesPerSecond    float64
	BurstSize            int
	ConnectionsPerMinute float64
	ConnectionBurst      int
}

type Config struct {
	HTTPAddr       string
	AllowedOrigins []string
	DBEnabled      bool
	Database       DatabaseConfig
	Redis          RedisConfig
	Limits         Limits
	Log            struct {
		Level  string
		Format string
	}
}

// Load reads configuration from the environment with local-dev defaults.
// With DB_ENABLED=false the service runs on the in-memory store, so a plain
// `go run` works without Postgres.
func Load() *Config {
	cfg := &Config{}

	cfg.HTTPAddr = getEnv("HTTP_ADDR", ":3000")
	cfg.AllowedOrigins = splitList(getEnv("DOMAINS", ""))

	cfg.DBEnabled = getEnv("DB_ENABLED", "true") == "true"
	cfg.Database.Host = getEnv("DB_HOST", "localhost")
	cfg.Database.Port = parseInt(getEnv("DB_PORT", "5432"), 5432)
	cfg.Database.User = getEnv("DB_USER", "postgres")
	cfg.Database.Password = getEnv("DB_PASSWORD", "postgres")
	cfg.Database.Name = getEnv("DB_NAME", "designcollab")
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", "disable")
	cfg.Database.MaxConns = parseInt(getEnv("DB_MAX_CONNS", "20"), 20)
	cfg.Database.MaxIdle = parseInt(getEnv("DB_MAX_IDLE", "5"), 5)

	cfg.Redis.Enabled = getEnv("REDIS_ENABLED", "false") == "true"
	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", "")
	cfg.Redis.DB = parseInt(getEnv("REDIS_DB", "0"), 0)

	cfg.Limits.MaxMessageSize = parseInt(getEnv("MAX_MESSAGE_SIZE", "65536"), 65536)
	cfg.Limits.MessagesPerSecond = parseFloat(getEnv("MESSAGES_PER_SECOND", "30"), 30)
	cfg.Limits.BurstSize = parseInt(getEnv("MESSAGE_BURST", "10"), 10)
	cfg.Limits.ConnectionsPerMinute = parseFloat(getEnv("CONNECTIONS_PER_MINUTE", "10"), 10)
	cfg.Limits.ConnectionBurst = parseInt(getEnv("CONNECTION_BURST", "5"), 5)

	cfg.Log.Level = getEnv("LOG_LEVEL", "info")
	cfg.Log.Format = getEnv("LOG_FORMAT", "json")

	return cfg
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}

func parseFloat(s string, fallback float64) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fallback
	}
	return f
}

func splitList(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
