package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/academictechnexus/mascot-admin/cmd/mascotctl/internal/auth"
	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvServerURL      = "MASCOT_ADMIN_API"
	EnvToken          = "MASCOT_ADMIN_TOKEN"
	EnvNonInteractive = "MASCOT_NON_INTERACTIVE"
	EnvDebug          = "MASCOT_DEBUG"
	EnvRedisAddr      = "MASCOT_REDIS_ADDR"
	EnvRedisKey       = "MASCOT_REDIS_KEY"
)

// ConfigFileName is looked up inside the mascot directory (~/.mascot).
const ConfigFileName = "config.yaml"

// Settings are the resolved values every command runs with.
type Settings struct {
	// ServerURL is the admin API base URL.
	ServerURL string
	// Token is an ephemeral bearer token that bypasses the credential store.
	Token          string
	NonInteractive bool
	Debug          bool
	// RedisAddr selects the shared Redis credential store when set.
	RedisAddr string
	RedisKey  string
	// Dir holds credentials.json and config.yaml.
	Dir string
}

// fileSettings mirrors config.yaml.
type fileSettings struct {
	Server         string `yaml:"server"`
	NonInteractive *bool  `yaml:"non_interactive"`
	Debug          *bool  `yaml:"debug"`
	Redis          struct {
		Addr string `yaml:"addr"`
		Key  string `yaml:"key"`
	} `yaml:"redis"`
}

// LoadOptions locates the files Load reads. Zero values use the defaults.
type LoadOptions struct {
	// Dir defaults to ~/.mascot.
	Dir string
	// EnvFile defaults to .env in the working directory.
	EnvFile string
}

// Load resolves Settings from, in order of precedence, the process
// environment, a .env file, config.yaml and built-in defaults. Command-line
// flags are applied on top by the root command.
func Load(opts LoadOptions) (Settings, error) {
	dir := opts.Dir
	if dir == "" {
		var err error
		if dir, err = auth.DefaultDir(); err != nil {
			return Settings{}, err
		}
	}

	envFile := opts.EnvFile
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides variables that are already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Settings{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	file, err := readFile(filepath.Join(dir, ConfigFileName))
	if err != nil {
		return Settings{}, err
	}

	s := Settings{
		ServerURL:      getEnv(EnvServerURL, file.Server),
		Token:          os.Getenv(EnvToken),
		NonInteractive: getEnvBool(EnvNonInteractive, deref(file.NonInteractive)),
		Debug:          getEnvBool(EnvDebug, deref(file.Debug)),
		RedisAddr:      getEnv(EnvRedisAddr, file.Redis.Addr),
		RedisKey:       getEnv(EnvRedisKey, file.Redis.Key),
		Dir:            dir,
	}
	if s.RedisKey == "" {
		s.RedisKey = sdk.DefaultRedisKey
	}
	s.ServerURL = strings.TrimRight(s.ServerURL, "/")
	return s, nil
}

// RequireServer reports a usable error when no admin API URL was configured.
func (s Settings) RequireServer() error {
	if s.ServerURL == "" {
		return fmt.Errorf("admin API URL is not configured; pass --server or set %s", EnvServerURL)
	}
	return nil
}

func readFile(path string) (fileSettings, error) {
	var fs fileSettings
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fs, nil
		}
		return fs, fmt.Errorf("reading config file: %w", err)
	}

	// ${VAR} references are expanded before parsing.
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &fs); err != nil {
		return fs, fmt.Errorf("parsing config file %s: %w", path, err)
	}
	return fs, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1" || value == "yes"
	}
	return defaultValue
}

func deref(b *bool) bool {
	return b != nil && *b
}
