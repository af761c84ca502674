package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadRequiresDSN(t *testing.T) {
	t.Setenv("DB_DSN", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when DB_DSN is missing")
	}
	if !strings.Contains(err.Error(), "DB_DSN") {
		t.Errorf("error %q should name DB_DSN", err)
	}
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/surf")
	t.Setenv("API_PORT", "9191")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.API.Port != ":9191" {
		t.Errorf("API.Port = %s, want :9191", cfg.API.Port)
	}
	if cfg.API.BasePath != "/api/v0" {
		t.Errorf("API.BasePath = %s", cfg.API.BasePath)
	}
	if cfg.Schedule.Interval != 3*time.Hour {
		t.Errorf("Schedule.Interval = %v, want 3h", cfg.Schedule.Interval)
	}
	if cfg.Provider.Timezone != "America/Fortaleza" {
		t.Errorf("Provider.Timezone = %s", cfg.Provider.Timezone)
	}
	if cfg.Provider.ForecastHours != 48 {
		t.Errorf("Provider.ForecastHours = %d, want 48", cfg.Provider.ForecastHours)
	}
	if cfg.Notification.MaxWorkers != 2 || cfg.Notification.QueueSize != 100 {
		t.Errorf("Notification = %+v", cfg.Notification)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/surf")
	t.Setenv("SCHEDULE_INTERVAL", "30m")
	t.Setenv("PROVIDER_CONCURRENCY", "8")
	t.Setenv("TELEGRAM_CHAT_ID", "-100123")
	t.Setenv("EMAIL_USERNAME", "alerts@example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Schedule.Interval != 30*time.Minute {
		t.Errorf("Schedule.Interval = %v", cfg.Schedule.Interval)
	}
	if cfg.Provider.Concurrency != 8 {
		t.Errorf("Provider.Concurrency = %d", cfg.Provider.Concurrency)
	}
	if cfg.Telegram.ChatID != -100123 {
		t.Errorf("Telegram.ChatID = %d", cfg.Telegram.ChatID)
	}
	if cfg.Email.FromAddress != "alerts@example.com" {
		t.Errorf("Email.FromAddress = %s, want username fallback", cfg.Email.FromAddress)
	}
}

func TestLoadRejectsMalformedValues(t *testing.T) {
	t.Setenv("DB_DSN", "postgres://localhost/surf")
	t.Setenv("MAX_WORKERS", "many")
	t.Setenv("SCHEDULE_INTERVAL", "every three hours")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for malformed values")
	}
	for _, key := range []string{"MAX_WORKERS", "SCHEDULE_INTERVAL"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q should name %s", err, key)
		}
	}
}
