package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds every runtime setting. Values come from the environment (a
// .env file is loaded by main when present).
type Config struct {
	Env         string
	Port        string
	CORSOrigins []string

	DB    DBConfig
	Redis RedisConfig

	AMQPURL        string
	EventsExchange string

	LockTTL  time.Duration
	LockWait time.Duration

	SeedSampleRooms bool
	ShutdownTimeout time.Duration
}

type DBConfig struct {
	Driver   string // mysql | sqlite
	URL      string // MYSQL_URL / DATABASE_URL, mysql:// URL or raw DSN
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	Path     string // sqlite file or DSN

	LogLevel        string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TLS      bool
	Prefix   string
}

func (r RedisConfig) Enabled() bool { return r.Addr != "" }

func Load() Config {
	dbURL := envOrDefault("MYSQL_URL", "")
	if dbURL == "" {
		dbURL = envOrDefault("DATABASE_URL", "")
	}

	redisAddr := envOrDefault("REDIS_ADDR", "")
	if host, port := envOrDefault("REDIS_HOST", ""), envOrDefault("REDIS_PORT", "6379"); host != "" {
		redisAddr = host + ":" + port
	}

	amqpURL := envOrDefault("RABBITMQ_URL", "")
	if amqpURL == "" {
		amqpURL = envOrDefault("AMQP_URL", "")
	}

	return Config{
		Env:         envOrDefault("APP_ENV", "dev"),
		Port:        envOrDefault("PORT", "8080"),
		CORSOrigins: parseList(envOrDefault("CORS_ORIGINS", "*")),
		DB: DBConfig{
			Driver:          strings.ToLower(envOrDefault("DB_DRIVER", "mysql")),
			URL:             dbURL,
			Host:            envOrDefault("DB_HOST", "127.0.0.1"),
			Port:            envOrDefault("DB_PORT", "3306"),
			User:            envOrDefault("DB_USER", "root"),
			Password:        os.Getenv("DB_PASS"),
			Name:            envOrDefault("DB_NAME", "hotel_db"),
			Path:            envOrDefault("SQLITE_PATH", "hotel.db"),
			LogLevel:        envOrDefault("DB_LOG_LEVEL", "warn"),
			MaxOpenConns:    envInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    envInt("DB_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: envDur("DB_CONN_MAX_LIFETIME", 30*time.Minute),
		},
		Redis: RedisConfig{
			Addr:     redisAddr,
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       envInt("REDIS_DB", 0),
			TLS:      envBool("REDIS_TLS", false),
			Prefix:   envOrDefault("REDIS_LOCK_PREFIX", "hotel:lock"),
		},
		AMQPURL:         amqpURL,
		EventsExchange:  envOrDefault("EVENTS_EXCHANGE", "hotel.events"),
		LockTTL:         envDur("LOCK_TTL", 10*time.Second),
		LockWait:        envDur("LOCK_WAIT", 5*time.Second),
		SeedSampleRooms: envBool("SEED_SAMPLE_ROOMS", false),
		ShutdownTimeout: envDur("SHUTDOWN_TIMEOUT", 15*time.Second),
	}
}

func envOrDefault(key, def string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return def
	}
	return value
}

func envInt(key string, def int) int {
	v := envOrDefault(key, "")
	if v == "" {
		return def
	}
	if n, err := strconv.Atoi(v); err == nil {
		return n
	}
	return def
}

func envBool(key string, def bool) bool {
	switch strings.ToLower(envOrDefault(key, "")) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	}
	return def
}

func envDur(key string, def time.Duration) time.Duration {
	v := envOrDefault(key, "")
	if v == "" {
		return def
	}
	if d, err := time.ParseDuration(v); err == nil {
		return d
	}
	return def
}

// parseList splits a comma separated value. An empty result means "*".
func parseList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}
