package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/academictechnexus/mascot-admin/pkg/sdk"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allEnv = []string{EnvServerURL, EnvToken, EnvNonInteractive, EnvDebug, EnvRedisAddr, EnvRedisKey}

// isolateEnv unsets every mascot variable for the duration of the test,
// including ones a .env file may set.
func isolateEnv(t *testing.T) {
	t.Helper()
	for _, key := range allEnv {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
}

func TestLoad_Defaults(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()

	s, err := Load(LoadOptions{Dir: dir, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Empty(t, s.ServerURL)
	assert.False(t, s.NonInteractive)
	assert.False(t, s.Debug)
	assert.Equal(t, sdk.DefaultRedisKey, s.RedisKey)
	assert.Equal(t, dir, s.Dir)
	assert.Error(t, s.RequireServer())
}

func TestLoad_ConfigFile(t *testing.T) {
	isolateEnv(t)
	t.Setenv("REDIS_HOST_FOR_TEST", "cache.internal")
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), `
server: "https://api.example.test/"
non_interactive: true
debug: true
redis:
  addr: "${REDIS_HOST_FOR_TEST}:6379"
  key: "console:token"
`)

	s, err := Load(LoadOptions{Dir: dir, EnvFile: filepath.Join(dir, "missing.env")})
	require.NoError(t, err)

	assert.Equal(t, "https://api.example.test", s.ServerURL, "trailing slash is trimmed")
	assert.True(t, s.NonInteractive)
	assert.True(t, s.Debug)
	assert.Equal(t, "cache.internal:6379", s.RedisAddr)
	assert.Equal(t, "console:token", s.RedisKey)
	assert.NoError(t, s.RequireServer())
}

func TestLoad_Precedence(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), "server: https://file.example.test\ndebug: true\n")
	envFile := filepath.Join(dir, "test.env")
	writeFile(t, envFile, "MASCOT_ADMIN_API=https://dotenv.example.test\nMASCOT_REDIS_ADDR=dotenv:6379\n")

	t.Run("dotenv beats config file", func(t *testing.T) {
		s, err := Load(LoadOptions{Dir: dir, EnvFile: envFile})
		require.NoError(t, err)
		assert.Equal(t, "https://dotenv.example.test", s.ServerURL)
		assert.Equal(t, "dotenv:6379", s.RedisAddr)
		assert.True(t, s.Debug)
	})

	t.Run("environment beats dotenv", func(t *testing.T) {
		isolateEnv(t)
		t.Setenv(EnvServerURL, "https://env.example.test")
		t.Setenv(EnvDebug, "0")
		t.Setenv(EnvToken, "ephemeral")

		s, err := Load(LoadOptions{Dir: dir, EnvFile: envFile})
		require.NoError(t, err)
		assert.Equal(t, "https://env.example.test", s.ServerURL)
		assert.False(t, s.Debug, "an explicit env value overrides the config file")
		assert.Equal(t, "ephemeral", s.Token)
	})
}

func TestLoad_InvalidConfigFile(t *testing.T) {
	isolateEnv(t)
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, ConfigFileName), "server: [unterminated\n")

	_, err := Load(LoadOptions{Dir: dir, EnvFile: filepath.Join(dir, "missing.env")})
	assert.Error(t, err)
}

func TestInjectConfig(t *testing.T) {
	cfg := &GlobalConfig{Settings: Settings{ServerURL: "https://api.example.test"}}
	ctx := InjectConfig(testContext(t), cfg)

	got, ok := FromContext(ctx)
	require.True(t, ok)
	assert.Same(t, cfg, got)

	_, ok = FromContext(testContext(t))
	assert.False(t, ok)
	assert.Panics(t, func() { MustFromContext(testContext(t)) })
}
