package app

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
	"github.com/yungbote/qsl-cards-backend/internal/utils"
)

type RedisConfig struct {
	Addr      string `yaml:"addr"`
	Password  string `yaml:"password"`
	DB        int    `yaml:"db"`
	KeyPrefix string `yaml:"key_prefix"`
}

type OtelSettings struct {
	Enabled     bool    `yaml:"enabled"`
	ServiceName string  `yaml:"service_name"`
	Endpoint    string  `yaml:"endpoint"`
	Headers     string  `yaml:"headers"`
	Insecure    bool    `yaml:"insecure"`
	SampleRatio float64 `yaml:"sample_ratio"`
}

type Config struct {
	Port        string `yaml:"port"`
	Environment string `yaml:"environment"`
	Version     string `yaml:"version"`

	CardStoreBackend    string `yaml:"card_store_backend"`
	ObjectStorageMode   string `yaml:"object_storage_mode"`
	StorageEmulatorHost string `yaml:"storage_emulator_host"`
	CardsBucket         string `yaml:"cards_bucket"`
	SentCardsKey        string `yaml:"sent_cards_key"`
	ReceivedCardsKey    string `yaml:"received_cards_key"`

	Redis       RedisConfig `yaml:"redis"`
	PostgresDSN string      `yaml:"postgres_dsn"`
	SQLitePath  string      `yaml:"sqlite_path"`

	CORSAllowOrigins []string     `yaml:"cors_allow_origins"`
	Otel             OtelSettings `yaml:"otel"`
}

func defaultConfig() Config {
	return Config{
		Port:             "8080",
		Environment:      "development",
		CardStoreBackend: string(BackendGCS),
		SentCardsKey:     "sent-cards.json",
		ReceivedCardsKey: "received-cards.json",
		Redis:            RedisConfig{Addr: "localhost:6379", KeyPrefix: "qsl:"},
		SQLitePath:       "qsl-cards.db",
		Otel:             OtelSettings{ServiceName: "qsl-cards", SampleRatio: 1},
	}
}

// LoadConfig starts from defaults, overlays CONFIG_FILE when set, and lets
// environment variables override both.
func LoadConfig(log *logger.Logger) (Config, error) {
	cfg := defaultConfig()

	if path := strings.TrimSpace(os.Getenv("CONFIG_FILE")); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
		log.Info("Loaded config file", "path", path)
	}

	cfg.Port = utils.GetEnv("PORT", cfg.Port, log)
	cfg.Environment = utils.GetEnv("APP_ENV", cfg.Environment, log)
	cfg.Version = utils.GetEnv("APP_VERSION", cfg.Version, log)

	cfg.CardStoreBackend = strings.ToLower(strings.TrimSpace(utils.GetEnv("CARD_STORE_BACKEND", cfg.CardStoreBackend, log)))
	cfg.ObjectStorageMode = utils.GetEnv("OBJECT_STORAGE_MODE", cfg.ObjectStorageMode, log)
	cfg.StorageEmulatorHost = utils.GetEnv("STORAGE_EMULATOR_HOST", cfg.StorageEmulatorHost, log)
	cfg.CardsBucket = utils.GetEnv("CARDS_GCS_BUCKET_NAME", cfg.CardsBucket, log)
	cfg.SentCardsKey = utils.GetEnv("SENT_CARDS_KEY", cfg.SentCardsKey, log)
	cfg.ReceivedCardsKey = utils.GetEnv("RECEIVED_CARDS_KEY", cfg.ReceivedCardsKey, log)

	cfg.Redis.Addr = utils.GetEnv("REDIS_ADDR", cfg.Redis.Addr, log)
	cfg.Redis.Password = utils.GetEnv("REDIS_PASSWORD", cfg.Redis.Password, log)
	cfg.Redis.DB = utils.GetEnvAsInt("REDIS_DB", cfg.Redis.DB, log)
	cfg.Redis.KeyPrefix = utils.GetEnv("REDIS_KEY_PREFIX", cfg.Redis.KeyPrefix, log)
	cfg.PostgresDSN = utils.GetEnv("POSTGRES_DSN", cfg.PostgresDSN, log)
	cfg.SQLitePath = utils.GetEnv("SQLITE_PATH", cfg.SQLitePath, log)

	if raw, ok := os.LookupEnv("CORS_ALLOW_ORIGINS"); ok {
		cfg.CORSAllowOrigins = utils.SplitList(raw)
	}

	cfg.Otel.Enabled = utils.GetEnvAsBool("OTEL_ENABLED", cfg.Otel.Enabled, log)
	cfg.Otel.ServiceName = utils.GetEnv("OTEL_SERVICE_NAME", cfg.Otel.ServiceName, log)
	cfg.Otel.Endpoint = utils.GetEnv("OTEL_EXPORTER_OTLP_ENDPOINT", cfg.Otel.Endpoint, log)
	cfg.Otel.Headers = utils.GetEnv("OTEL_EXPORTER_OTLP_HEADERS", cfg.Otel.Headers, log)
	cfg.Otel.Insecure = utils.GetEnvAsBool("OTEL_EXPORTER_OTLP_INSECURE", cfg.Otel.Insecure, log)
	cfg.Otel.SampleRatio = utils.GetEnvAsFloat("OTEL_SAMPLING_RATIO", cfg.Otel.SampleRatio, log)

	if strings.TrimSpace(cfg.SentCardsKey) == "" || strings.TrimSpace(cfg.ReceivedCardsKey) == "" {
		return Config{}, fmt.Errorf("SENT_CARDS_KEY and RECEIVED_CARDS_KEY must be set")
	}
	if cfg.SentCardsKey == cfg.ReceivedCardsKey {
		return Config{}, fmt.Errorf("sent and received collections must use different keys (both %q)", cfg.SentCardsKey)
	}
	return cfg, nil
}
