package connection

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

const (
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Config is read from the environment, optionally seeded from a .env file.
type Config struct {
	Port            string
	StoreBackend    string
	CredentialsFile string
	StorageBucket   string
	RedisURL        string
	NotifyChannel   string
	JWTSecret       string
	IdempotencyTTL  time.Duration
	DefaultStates   []string
	PageSize        int
	Debug           bool
}

func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found or failed to load")
	}

	cfg := Config{
		Port:            envOr("PORT", "8080"),
		StoreBackend:    strings.ToLower(envOr("STORE_BACKEND", BackendFirestore)),
		CredentialsFile: os.Getenv("GOOGLE_APPLICATION_CREDENTIALS_1"),
		StorageBucket:   os.Getenv("FIREBASE_STORAGE_BUCKET"),
		RedisURL:        os.Getenv("REDIS_URL"),
		NotifyChannel:   envOr("NOTIFY_CHANNEL", "task-notifications"),
		JWTSecret:       os.Getenv("JWT_SECRET_KEY"),
		IdempotencyTTL:  24 * time.Hour,
		PageSize:        30,
		Debug:           os.Getenv("DEBUG") == "true",
	}

	switch cfg.StoreBackend {
	case BackendFirestore:
		if cfg.CredentialsFile == "" {
			return cfg, fmt.Errorf("environment variable GOOGLE_APPLICATION_CREDENTIALS_1 is not set")
		}
	case BackendMemory:
	default:
		return cfg, fmt.Errorf("invalid STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("environment variable JWT_SECRET_KEY is not set")
	}
	if v := os.Getenv("IDEMPOTENCY_TTL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return cfg, fmt.Errorf("invalid IDEMPOTENCY_TTL %q", v)
		}
		cfg.IdempotencyTTL = d
	}
	if v := os.Getenv("TASKS_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid TASKS_PAGE_SIZE %q", v)
		}
		cfg.PageSize = n
	}
	states := envOr("DEFAULT_STATES", "Open,Closed")
	for _, name := range strings.Split(states, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cfg.DefaultStates = append(cfg.DefaultStates, name)
		}
	}
	if len(cfg.DefaultStates) < 2 {
		return cfg, fmt.Errorf("DEFAULT_STATES needs at least an entry and an exit state, got %q", states)
	}
	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
