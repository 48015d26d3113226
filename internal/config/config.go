package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Freeeeeet/tutor_scheduler/internal/service"
	"github.com/joho/godotenv"
)

// Драйверы хранилища
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type Config struct {
	TelegramToken string `mapstructure:"TELEGRAM_TOKEN"`
	DBDriver      string `mapstructure:"DB_DRIVER"`
	DBDSN         string `mapstructure:"DB_DSN"`
	Environment   string `mapstructure:"ENV"`
	LogLevel      string `mapstructure:"LOG_LEVEL"`
	HTTPAddr      string `mapstructure:"HTTP_ADDR"`

	KafkaBrokers []string `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic   string   `mapstructure:"KAFKA_TOPIC"`

	MeetURLBase  string `mapstructure:"MEET_URL_BASE"`
	NotifyBuffer int    `mapstructure:"NOTIFY_BUFFER"`

	Location     *time.Location `mapstructure:"TIMEZONE"`
	LeadTime     time.Duration  `mapstructure:"LEAD_TIME"`
	SelfLeadTime time.Duration  `mapstructure:"SELF_LEAD_TIME"`
	Horizon      time.Duration  `mapstructure:"HORIZON"`
	SelfHorizon  time.Duration  `mapstructure:"SELF_HORIZON"`
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using environment variables")
	} else {
		log.Println("✅ Loaded configuration from .env file")
	}

	return FromEnv()
}

// FromEnv читает конфигурацию из переменных окружения
func FromEnv() (*Config, error) {
	defaults := service.DefaultPolicy()

	cfg := &Config{
		TelegramToken: os.Getenv("TELEGRAM_TOKEN"),
		DBDriver:      envOr("DB_DRIVER", DriverPostgres),
		DBDSN:         os.Getenv("DB_DSN"),
		Environment:   envOr("ENV", "development"),
		LogLevel:      os.Getenv("LOG_LEVEL"),
		HTTPAddr:      os.Getenv("HTTP_ADDR"),
		KafkaBrokers:  splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:    envOr("KAFKA_TOPIC", "booking-events"),
		MeetURLBase:   envOr("MEET_URL_BASE", "https://meet.google.com/lookup/"),
	}

	var err error
	if cfg.NotifyBuffer, err = intEnv("NOTIFY_BUFFER", 256); err != nil {
		return nil, err
	}

	if cfg.Location, err = time.LoadLocation(envOr("TIMEZONE", "Local")); err != nil {
		return nil, fmt.Errorf("TIMEZONE: %w", err)
	}

	durations := []struct {
		key string
		dst *time.Duration
		def time.Duration
	}{
		{"LEAD_TIME", &cfg.LeadTime, defaults.LeadTime},
		{"SELF_LEAD_TIME", &cfg.SelfLeadTime, defaults.SelfLeadTime},
		{"HORIZON", &cfg.Horizon, defaults.Horizon},
		{"SELF_HORIZON", &cfg.SelfHorizon, defaults.SelfHorizon},
	}
	for _, d := range durations {
		if *d.dst, err = durationEnv(d.key, d.def); err != nil {
			return nil, err
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	switch c.DBDriver {
	case DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.DBDriver)
	}

	if c.DBDSN == "" {
		return fmt.Errorf("DB_DSN is required but not set")
	}

	if c.TelegramToken == "" && c.HTTPAddr == "" {
		return fmt.Errorf("nothing to run: set TELEGRAM_TOKEN or HTTP_ADDR")
	}

	if c.LeadTime < 0 || c.SelfLeadTime < 0 || c.Horizon < 0 || c.SelfHorizon < 0 {
		return fmt.Errorf("booking window durations must not be negative")
	}

	return nil
}

// Policy пороги бронирования из конфигурации
func (c *Config) Policy() service.Policy {
	return service.Policy{
		LeadTime:     c.LeadTime,
		SelfLeadTime: c.SelfLeadTime,
		Horizon:      c.Horizon,
		SelfHorizon:  c.SelfHorizon,
		Location:     c.Location,
	}
}

func (c *Config) GetDBDSN() string {
	return c.DBDSN
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return def, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
