package config

import (
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.HTTPAddress != defaultHTTPAddress {
		t.Fatalf("unexpected address %s", cfg.HTTPAddress)
	}
	if cfg.DatabasePath != defaultDatabasePath {
		t.Fatalf("unexpected database path %s", cfg.DatabasePath)
	}
	if cfg.WeekStart != time.Sunday {
		t.Fatalf("expected Sunday week start, got %s", cfg.WeekStart)
	}
	if cfg.AuthEnabled() {
		t.Fatalf("auth must be disabled without a signing secret")
	}
	if cfg.HolidayToYear-cfg.HolidayFromYear != 2*defaultHolidaySpan {
		t.Fatalf("unexpected holiday span %d-%d", cfg.HolidayFromYear, cfg.HolidayToYear)
	}
}

func TestLoadReadsEnvironment(t *testing.T) {
	t.Setenv("LEMBRETE_CALENDAR_WEEK_START", "monday")
	t.Setenv("LEMBRETE_AUTH_SIGNING_SECRET", "secret")
	t.Setenv("LEMBRETE_DATABASE_PATH", "/tmp/notes.db")

	cfg, err := Load(NewViper())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.WeekStart != time.Monday {
		t.Fatalf("expected Monday week start, got %s", cfg.WeekStart)
	}
	if !cfg.AuthEnabled() {
		t.Fatalf("expected auth to be enabled")
	}
	if cfg.DatabasePath != "/tmp/notes.db" {
		t.Fatalf("unexpected database path %s", cfg.DatabasePath)
	}
}

func TestLoadValidationFailures(t *testing.T) {
	testCases := []struct {
		name    string
		key     string
		value   any
		wantErr string
	}{
		{name: "week-start", key: "calendar.week_start", value: "someday", wantErr: "calendar.week_start"},
		{name: "database-path", key: "database.path", value: " ", wantErr: "database.path"},
		{name: "holiday-range", key: "holidays.to_year", value: 1800, wantErr: "holidays.to_year"},
		{name: "token-ttl", key: "auth.token_ttl", value: "-1m", wantErr: "auth.token_ttl"},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			configViper := NewViper()
			configViper.Set(testCase.key, testCase.value)
			_, err := Load(configViper)
			if err == nil || !strings.Contains(err.Error(), testCase.wantErr) {
				t.Fatalf("expected %s error, got %v", testCase.wantErr, err)
			}
		})
	}
}

func TestLoadAllowsEphemeralWithoutPath(t *testing.T) {
	configViper := NewViper()
	configViper.Set("database.path", "")
	configViper.Set("database.ephemeral", true)

	cfg, err := Load(configViper)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.Ephemeral {
		t.Fatalf("expected ephemeral storage")
	}
}
