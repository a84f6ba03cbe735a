package config

import (
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func mustDecimal(t *testing.T, s string) decimal.Decimal {
	t.Helper()
	d, err := decimal.NewFromString(s)
	if err != nil {
		t.Fatalf("parse decimal %q: %v", s, err)
	}
	return d
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "LOG_LEVEL", "STARTING_BALANCE", "DATABASE_URL",
		"QUOTE_PROVIDER", "QUOTE_TTL", "QUOTE_TIMEOUT",
		"READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "info")
	}
	if !cfg.StartingBalance.Equal(mustDecimal(t, "100000.00")) {
		t.Errorf("StartingBalance = %s, want 100000.00", cfg.StartingBalance)
	}
	if cfg.DatabaseURL != "" {
		t.Errorf("DatabaseURL = %q, want empty", cfg.DatabaseURL)
	}
	if cfg.QuoteProvider != "sim" {
		t.Errorf("QuoteProvider = %q, want %q", cfg.QuoteProvider, "sim")
	}
	if cfg.QuoteTTL != 60*time.Second {
		t.Errorf("QuoteTTL = %v, want 60s", cfg.QuoteTTL)
	}
	if cfg.QuoteTimeout != 5*time.Second {
		t.Errorf("QuoteTimeout = %v, want 5s", cfg.QuoteTimeout)
	}
	if cfg.ReadTimeout != 5*time.Second {
		t.Errorf("ReadTimeout = %v, want 5s", cfg.ReadTimeout)
	}
	if cfg.WriteTimeout != 10*time.Second {
		t.Errorf("WriteTimeout = %v, want 10s", cfg.WriteTimeout)
	}
	if cfg.IdleTimeout != 60*time.Second {
		t.Errorf("IdleTimeout = %v, want 60s", cfg.IdleTimeout)
	}
	if cfg.ShutdownTimeout != 10*time.Second {
		t.Errorf("ShutdownTimeout = %v, want 10s", cfg.ShutdownTimeout)
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("STARTING_BALANCE", "50000.50")
	t.Setenv("DATABASE_URL", "postgres://localhost:5432/papertrade")
	t.Setenv("QUOTE_PROVIDER", "yahoo")
	t.Setenv("QUOTE_TTL", "30s")
	t.Setenv("QUOTE_TIMEOUT", "2s")
	t.Setenv("READ_TIMEOUT", "2s")
	t.Setenv("WRITE_TIMEOUT", "5s")
	t.Setenv("IDLE_TIMEOUT", "30s")
	t.Setenv("SHUTDOWN_TIMEOUT", "15s")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, "debug")
	}
	if !cfg.StartingBalance.Equal(mustDecimal(t, "50000.50")) {
		t.Errorf("StartingBalance = %s, want 50000.50", cfg.StartingBalance)
	}
	if cfg.DatabaseURL != "postgres://localhost:5432/papertrade" {
		t.Errorf("DatabaseURL = %q, want postgres URL", cfg.DatabaseURL)
	}
	if cfg.QuoteProvider != "yahoo" {
		t.Errorf("QuoteProvider = %q, want %q", cfg.QuoteProvider, "yahoo")
	}
	if cfg.QuoteTTL != 30*time.Second {
		t.Errorf("QuoteTTL = %v, want 30s", cfg.QuoteTTL)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "not-a-number")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid PORT")
	}
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid LOG_LEVEL")
	}
}

func TestLoad_InvalidStartingBalance(t *testing.T) {
	clearEnv(t)

	for _, val := range []string{"not-a-number", "-100"} {
		t.Run(val, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("STARTING_BALANCE", val)

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for STARTING_BALANCE=%q", val)
			}
		})
	}
}

func TestLoad_InvalidQuoteProvider(t *testing.T) {
	clearEnv(t)
	t.Setenv("QUOTE_PROVIDER", "bloomberg")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error for invalid QUOTE_PROVIDER")
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	clearEnv(t)

	keys := []string{
		"QUOTE_TTL", "QUOTE_TIMEOUT",
		"READ_TIMEOUT", "WRITE_TIMEOUT", "IDLE_TIMEOUT", "SHUTDOWN_TIMEOUT",
	}

	for _, key := range keys {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, "not-a-duration")

			_, err := Load()
			if err == nil {
				t.Fatalf("expected error for invalid %s", key)
			}
		})
	}
}
