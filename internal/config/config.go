package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds server and consumer configuration loaded from the environment.
type Config struct {
	AppName             string
	LogLevel            string
	HTTPPort            string
	DatabaseURL         string
	RedisURL            string
	RabbitURL           string
	ReminderQueue       string
	DeadLetterQueue     string
	PrefetchCount       int
	WorkerCount         int
	StatusTable         string
	ReminderSchedule    string
	ReminderTimezone    string
	ReminderTemplate    string
	VAPIDPublicKey      string
	VAPIDPrivateKey     string
	VAPIDSubject        string
	PushTTL             time.Duration
	ProviderTimeout     time.Duration
	TokenSuppressTTL    time.Duration
	RetryMaxAttempts    int
	RetryInitialBackoff time.Duration
	RetryMaxBackoff     time.Duration
}

// Load reads a .env file when present, then the environment.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		AppName:             getEnv("APP_NAME", "todo"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		HTTPPort:            getEnv("HTTP_PORT", "8080"),
		DatabaseURL:         getEnv("DATABASE_URL", ""),
		RedisURL:            getEnv("REDIS_URL", ""),
		RabbitURL:           getEnv("RABBITMQ_URL", ""),
		ReminderQueue:       getEnv("REMINDER_QUEUE", "reminder.queue"),
		DeadLetterQueue:     getEnv("REMINDER_DLQ", "reminder.failed"),
		PrefetchCount:       getEnvAsInt("REMINDER_PREFETCH", 50),
		WorkerCount:         getEnvAsInt("WORKER_COUNT", 5),
		StatusTable:         getEnv("STATUS_TABLE", "notification_statuses"),
		ReminderSchedule:    getEnv("REMINDER_SCHEDULE", "0 22 * * *"),
		ReminderTimezone:    getEnv("REMINDER_TIMEZONE", "Local"),
		ReminderTemplate:    getEnv("REMINDER_TEMPLATE", ""),
		VAPIDPublicKey:      getEnv("VAPID_PUBLIC_KEY", ""),
		VAPIDPrivateKey:     getEnv("VAPID_PRIVATE_KEY", ""),
		VAPIDSubject:        getEnv("VAPID_SUBJECT", "mailto:admin@example.com"),
		PushTTL:             getEnvAsDuration("PUSH_TTL", 24*time.Hour),
		ProviderTimeout:     getEnvAsDuration("PROVIDER_TIMEOUT", 10*time.Second),
		TokenSuppressTTL:    getEnvAsDuration("TOKEN_SUPPRESS_TTL", 24*time.Hour),
		RetryMaxAttempts:    getEnvAsInt("RETRY_MAX_ATTEMPTS", 4),
		RetryInitialBackoff: getEnvAsDuration("RETRY_INITIAL_BACKOFF", time.Second),
		RetryMaxBackoff:     getEnvAsDuration("RETRY_MAX_BACKOFF", 15*time.Second),
	}
}

// LoadServer loads the configuration needed by the API server.
func LoadServer() (*Config, error) {
	cfg := Load()
	if err := cfg.require(map[string]string{
		"DATABASE_URL": cfg.DatabaseURL,
		"RABBITMQ_URL": cfg.RabbitURL,
	}); err != nil {
		return nil, err
	}
	if _, err := cfg.Location(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadConsumer loads the configuration needed by the reminder consumer.
func LoadConsumer() (*Config, error) {
	cfg := Load()
	if err := cfg.require(map[string]string{
		"DATABASE_URL":      cfg.DatabaseURL,
		"RABBITMQ_URL":      cfg.RabbitURL,
		"VAPID_PUBLIC_KEY":  cfg.VAPIDPublicKey,
		"VAPID_PRIVATE_KEY": cfg.VAPIDPrivateKey,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Location resolves ReminderTimezone.
func (c *Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.ReminderTimezone)
	if err != nil {
		return nil, fmt.Errorf("invalid REMINDER_TIMEZONE %q: %w", c.ReminderTimezone, err)
	}
	return loc, nil
}

func (c *Config) require(values map[string]string) error {
	var missing []string
	for _, key := range []string{"DATABASE_URL", "RABBITMQ_URL", "VAPID_PUBLIC_KEY", "VAPID_PRIVATE_KEY"} {
		if value, ok := values[key]; ok && value == "" {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %v", missing)
	}
	return nil
}

func getEnv(key, def string) string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return def
	}
	return value
}

func getEnvAsInt(key string, def int) int {
	if value, ok := os.LookupEnv(key); ok {
		i, err := strconv.Atoi(value)
		if err != nil {
			log.Printf("invalid int for %s, using default %d: %v", key, def, err)
			return def
		}
		return i
	}
	return def
}

func getEnvAsDuration(key string, def time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		d, err := time.ParseDuration(value)
		if err != nil {
			log.Printf("invalid duration for %s, using default %s: %v", key, def, err)
			return def
		}
		return d
	}
	return def
}
