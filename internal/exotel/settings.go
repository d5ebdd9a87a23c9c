package exotel

import (
	"context"

	"exotel-connector/internal/config"
)

// Settings is the integration's singleton configuration. Read-only from this package.
type Settings struct {
	Enabled    bool
	APIKey     string
	APIToken   string
	AccountSID string
}

// SettingsSource supplies the current settings. Each operation reads it once, so an
// implementation backed by a mutable store takes effect without restarts.
type SettingsSource interface {
	Settings(ctx context.Context) (Settings, error)
}

// StaticSettings serves a fixed value.
type StaticSettings Settings

func (s StaticSettings) Settings(ctx context.Context) (Settings, error) {
	return Settings(s), nil
}

// SettingsFromConfig builds the process-wide settings from env configuration.
func SettingsFromConfig(c config.ExotelConfig) StaticSettings {
	return StaticSettings{
		Enabled:    c.Enabled,
		APIKey:     c.APIKey,
		APIToken:   c.APIToken,
		AccountSID: c.AccountSID,
	}
}
