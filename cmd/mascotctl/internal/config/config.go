package config

import (
	"context"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/client"
	"go.uber.org/zap"
)

type contextKey string

const configKey contextKey = "mascotctl-config"

// GlobalConfig holds shared configuration for all mascotctl commands.
// The root command builds it in PersistentPreRunE and injects it into the
// cobra command context.
type GlobalConfig struct {
	Settings
	Logger         *zap.Logger
	ClientProvider *client.Provider
}

// InjectConfig adds config to the cobra command context.
func InjectConfig(ctx context.Context, cfg *GlobalConfig) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from the cobra command context.
// Returns (nil, false) if config is not present.
func FromContext(ctx context.Context) (*GlobalConfig, bool) {
	cfg, ok := ctx.Value(configKey).(*GlobalConfig)
	return cfg, ok
}

// MustFromContext retrieves config from context or panics.
// Only command RunE functions, which always run after the root hook, should use it.
func MustFromContext(ctx context.Context) *GlobalConfig {
	cfg, ok := FromContext(ctx)
	if !ok {
		panic("mascotctl: config not found in context - this is a bug in mascotctl")
	}
	return cfg
}
