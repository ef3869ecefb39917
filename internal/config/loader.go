package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"vpn-bus-api/internal/constants"
	apperrors "vpn-bus-api/internal/errors"
)

// Load loads the configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Set default values
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("HTTP_ADDR", constants.DefaultHTTPAddr)
	v.SetDefault("DB_DRIVER", constants.DefaultDBDriver)
	v.SetDefault("DB_DSN", constants.DefaultDBDSN)
	v.SetDefault("REMOTE_TIMEOUT", constants.DefaultTimeout)
	v.SetDefault("REMOTE_INSECURE_SKIP_VERIFY", false)

	// Define environment variables
	for _, key := range []string{
		"SERVER_TOKEN",
		"HTTP_ADDR",
		"DB_DRIVER",
		"DB_DSN",
		"REMOTE_TIMEOUT",
		"REMOTE_INSECURE_SKIP_VERIFY",
		"TG_TOKEN",
		"TG_ADMIN_IDS",
		"LOG_LEVEL",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", key, err)
		}
	}

	cfg := &Config{
		LogLevel: v.GetString("LOG_LEVEL"),
		HTTP: HTTPConfig{
			Addr:  strings.TrimSpace(v.GetString("HTTP_ADDR")),
			Token: strings.TrimSpace(v.GetString("SERVER_TOKEN")),
		},
		Database: DatabaseConfig{
			Driver: strings.TrimSpace(v.GetString("DB_DRIVER")),
			DSN:    strings.TrimSpace(v.GetString("DB_DSN")),
		},
		Remote: RemoteConfig{
			Timeout:            time.Duration(v.GetInt("REMOTE_TIMEOUT")) * time.Second,
			InsecureSkipVerify: v.GetBool("REMOTE_INSECURE_SKIP_VERIFY"),
		},
		Telegram: TelegramConfig{
			Token: strings.TrimSpace(v.GetString("TG_TOKEN")),
		},
	}

	// Parse admin IDs
	adminIDs, err := parseAdminIDs(v.GetString("TG_ADMIN_IDS"))
	if err != nil {
		return nil, err
	}
	cfg.Telegram.AdminIDs = adminIDs

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ValidateAPI checks the settings the HTTP API binary requires
func ValidateAPI(cfg *Config) error {
	if cfg.HTTP.Token == "" {
		return &apperrors.ConfigError{Section: "http", Message: "SERVER_TOKEN is required"}
	}
	if cfg.HTTP.Addr == "" {
		return &apperrors.ConfigError{Section: "http", Message: "HTTP_ADDR is required"}
	}
	return nil
}

// ValidateBot checks the settings the Telegram bot binary requires
func ValidateBot(cfg *Config) error {
	if cfg.Telegram.Token == "" {
		return &apperrors.ConfigError{Section: "telegram", Message: "TG_TOKEN is required"}
	}
	return nil
}

// validateConfig validates the settings shared by every binary
func validateConfig(cfg *Config) error {
	switch cfg.Database.Driver {
	case "sqlite", "pgx":
	default:
		return &apperrors.ConfigError{Section: "database", Message: fmt.Sprintf("unsupported DB_DRIVER %q", cfg.Database.Driver)}
	}

	if cfg.Database.DSN == "" {
		return &apperrors.ConfigError{Section: "database", Message: "DB_DSN is required"}
	}

	if cfg.Remote.Timeout <= 0 {
		return &apperrors.ConfigError{Section: "remote", Message: "REMOTE_TIMEOUT must be positive"}
	}

	return nil
}

func parseAdminIDs(raw string) ([]int64, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}

	parts := strings.Split(raw, ",")
	adminIDs := make([]int64, 0, len(parts))
	for _, idStr := range parts {
		var id int64
		if _, err := fmt.Sscanf(strings.TrimSpace(idStr), "%d", &id); err != nil {
			return nil, &apperrors.ConfigError{Section: "telegram", Message: fmt.Sprintf("invalid admin id %q", idStr)}
		}
		adminIDs = append(adminIDs, id)
	}

	return adminIDs, nil
}
