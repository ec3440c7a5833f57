// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// LoadOptions defines explicit settings loading inputs.
type LoadOptions struct {
	// SettingsFilePath forces loading from a specific settings file when set.
	SettingsFilePath string
	// ConfigDirPath overrides the config directory lookup when set.
	ConfigDirPath string
	// DataDirPath overrides the data directory lookup when set.
	DataDirPath string
}

// Provider loads settings from explicit options.
type Provider interface {
	Load(ctx context.Context, opts LoadOptions) (*Config, error)
}

type fileProvider struct{}

// NewProvider creates a settings provider backed by settings.toml and the environment.
func NewProvider() Provider {
	return &fileProvider{}
}

// Load reads settings from the requested source.
func (p *fileProvider) Load(ctx context.Context, opts LoadOptions) (*Config, error) {
	cfg, _, err := loadWithOptions(ctx, opts)
	if err != nil {
		return nil, err
	}

	return cfg, nil
}
