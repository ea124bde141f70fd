package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type Config struct {
	Port  string
	Store string

	DatabaseURL   string
	RedisAddr     string
	RedisPassword string
	RedisDB       int

	SessionSecret string
	SessionTTL    time.Duration
	CookieSecure  bool
	UsersFile     string
	LoginDelay    time.Duration

	PowerBITimeout   time.Duration
	PowerBIAuthority string
	PowerBIAPI       string

	RateLimitPerMinute int
	RateLimitBurst     int
	CORSOrigins        []string

	LogLevel  string
	LogFormat string
}

func Load() Config {
	port := os.Getenv("PORTAL_PORT")
	if port == "" {
		port = "8080"
	}
	store := strings.ToLower(os.Getenv("PORTAL_STORE"))
	if store == "" {
		store = StoreMemory
	}

	return Config{
		Port:               port,
		Store:              store,
		DatabaseURL:        os.Getenv("DB_DSN"),
		RedisAddr:          os.Getenv("REDIS_ADDR"),
		RedisPassword:      os.Getenv("REDIS_PASSWORD"),
		RedisDB:            readInt("REDIS_DB", 0),
		SessionSecret:      os.Getenv("PORTAL_SESSION_SECRET"),
		SessionTTL:         readDuration("PORTAL_SESSION_TTL", 8*time.Hour),
		CookieSecure:       readBool("PORTAL_COOKIE_SECURE", false),
		UsersFile:          os.Getenv("PORTAL_USERS_FILE"),
		LoginDelay:         readDuration("PORTAL_LOGIN_DELAY", 800*time.Millisecond),
		PowerBITimeout:     readDuration("PORTAL_POWERBI_TIMEOUT", 15*time.Second),
		PowerBIAuthority:   os.Getenv("PORTAL_POWERBI_AUTHORITY"),
		PowerBIAPI:         os.Getenv("PORTAL_POWERBI_API"),
		RateLimitPerMinute: readInt("PORTAL_RATE_LIMIT_PER_MIN", 120),
		RateLimitBurst:     readInt("PORTAL_RATE_LIMIT_BURST", 30),
		CORSOrigins:        readList("PORTAL_CORS_ORIGINS"),
		LogLevel:           readString("PORTAL_LOG_LEVEL", "info"),
		LogFormat:          readString("PORTAL_LOG_FORMAT", "json"),
	}
}

func readString(key, fallback string) string {
	if raw := strings.TrimSpace(os.Getenv(key)); raw != "" {
		return raw
	}
	return fallback
}

// readDuration accepts Go duration syntax ("15s") or a bare number of seconds.
func readDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	if seconds, err := strconv.Atoi(raw); err == nil {
		if seconds <= 0 {
			return 0
		}
		return time.Duration(seconds) * time.Second
	}
	value, err := time.ParseDuration(raw)
	if err != nil || value < 0 {
		return fallback
	}
	return value
}

func readInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

func readList(key string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
