package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/MarcoPoloResearchLab/lembrete/internal/calendar"
	"github.com/spf13/viper"
)

const (
	envPrefix           = "LEMBRETE"
	defaultHTTPAddress  = "0.0.0.0:8080"
	defaultDatabasePath = "lembrete.db"
	defaultLogLevel     = "info"
	defaultLogFormat    = "json"
	defaultWeekStart    = "sunday"
	defaultTokenTTL     = 30 * 24 * time.Hour
	defaultHolidaySpan  = 10
)

// AppConfig captures runtime configuration for the server and CLI.
type AppConfig struct {
	HTTPAddress     string
	DatabasePath    string
	Ephemeral       bool
	LogLevel        string
	LogFormat       string
	WeekStart       time.Weekday
	SigningSecret   string
	TokenTTL        time.Duration
	HolidayFromYear int
	HolidayToYear   int
}

// AuthEnabled reports whether bearer tokens guard the HTTP API.
func (c AppConfig) AuthEnabled() bool {
	return strings.TrimSpace(c.SigningSecret) != ""
}

// NewViper returns a viper instance with defaults and env bindings configured.
func NewViper() *viper.Viper {
	configViper := viper.New()
	ApplyDefaults(configViper)
	return configViper
}

// ApplyDefaults configures defaults and env bindings on the provided viper instance.
func ApplyDefaults(configViper *viper.Viper) {
	configViper.SetEnvPrefix(envPrefix)
	configViper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	configViper.AutomaticEnv()

	currentYear := time.Now().Year()
	configViper.SetDefault("http.address", defaultHTTPAddress)
	configViper.SetDefault("database.path", defaultDatabasePath)
	configViper.SetDefault("database.ephemeral", false)
	configViper.SetDefault("log.level", defaultLogLevel)
	configViper.SetDefault("log.format", defaultLogFormat)
	configViper.SetDefault("calendar.week_start", defaultWeekStart)
	configViper.SetDefault("auth.token_ttl", defaultTokenTTL)
	configViper.SetDefault("holidays.from_year", currentYear-defaultHolidaySpan)
	configViper.SetDefault("holidays.to_year", currentYear+defaultHolidaySpan)
}

// Load parses runtime configuration from viper.
func Load(configViper *viper.Viper) (AppConfig, error) {
	weekStart, err := calendar.ParseWeekStart(configViper.GetString("calendar.week_start"))
	if err != nil {
		return AppConfig{}, fmt.Errorf("calendar.week_start: %w", err)
	}

	cfg := AppConfig{
		HTTPAddress:     configViper.GetString("http.address"),
		DatabasePath:    configViper.GetString("database.path"),
		Ephemeral:       configViper.GetBool("database.ephemeral"),
		LogLevel:        configViper.GetString("log.level"),
		LogFormat:       configViper.GetString("log.format"),
		WeekStart:       weekStart,
		SigningSecret:   configViper.GetString("auth.signing_secret"),
		TokenTTL:        configViper.GetDuration("auth.token_ttl"),
		HolidayFromYear: configViper.GetInt("holidays.from_year"),
		HolidayToYear:   configViper.GetInt("holidays.to_year"),
	}

	if err := cfg.validate(); err != nil {
		return AppConfig{}, err
	}

	return cfg, nil
}

func (c AppConfig) validate() error {
	if strings.TrimSpace(c.HTTPAddress) == "" {
		return fmt.Errorf("http.address is required")
	}
	if !c.Ephemeral && strings.TrimSpace(c.DatabasePath) == "" {
		return fmt.Errorf("database.path is required")
	}
	if c.HolidayToYear < c.HolidayFromYear {
		return fmt.Errorf("holidays.to_year must not precede holidays.from_year")
	}
	if c.TokenTTL <= 0 {
		return fmt.Errorf("auth.token_ttl must be positive")
	}
	return nil
}
