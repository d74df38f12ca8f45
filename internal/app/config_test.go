package app

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/yungbote/qsl-cards-backend/internal/platform/logger"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("CARD_STORE_BACKEND", "")
	os.Unsetenv("CARD_STORE_BACKEND")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.CardStoreBackend != string(BackendGCS) {
		t.Fatalf("backend: want=%q got=%q", BackendGCS, cfg.CardStoreBackend)
	}
	if cfg.SentCardsKey == cfg.ReceivedCardsKey {
		t.Fatalf("default keys collide: %q", cfg.SentCardsKey)
	}
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "qsl.yaml")
	body := []byte(`
port: "9000"
card_store_backend: redis
sent_cards_key: a.json
received_cards_key: b.json
redis:
  addr: redis:6379
  db: 2
cors_allow_origins:
  - https://from-file.example
`)
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig(logger.Nop())
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Port != "9100" {
		t.Fatalf("port: want=%q got=%q", "9100", cfg.Port)
	}
	if cfg.CardStoreBackend != "redis" || cfg.Redis.Addr != "redis:6379" {
		t.Fatalf("file values lost: backend=%q addr=%q", cfg.CardStoreBackend, cfg.Redis.Addr)
	}
	if cfg.Redis.DB != 3 {
		t.Fatalf("redis db: want=%d got=%d", 3, cfg.Redis.DB)
	}
	if cfg.SentCardsKey != "a.json" || cfg.ReceivedCardsKey != "b.json" {
		t.Fatalf("keys: got sent=%q received=%q", cfg.SentCardsKey, cfg.ReceivedCardsKey)
	}
	want := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.CORSAllowOrigins, want) {
		t.Fatalf("cors: want=%v got=%v", want, cfg.CORSAllowOrigins)
	}
}

func TestLoadConfigRejectsSharedKeys(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("SENT_CARDS_KEY", "cards.json")
	t.Setenv("RECEIVED_CARDS_KEY", "cards.json")

	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("expected error for shared collection key")
	}
}

func TestLoadConfigBadFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	if _, err := LoadConfig(logger.Nop()); err == nil {
		t.Fatalf("expected error for missing config file")
	}
}
