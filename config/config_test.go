package config_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stash-sh/stash/config"
)

func TestLoad_Defaults(t *testing.T) {
	// Load with no config files should use defaults
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	assert.Equal(t, 5709, cfg.Server.Port)
	assert.False(t, cfg.Server.PublicMode)
	assert.Equal(t, 300, cfg.Session.TTL)
	assert.Equal(t, "RS256", cfg.Session.Algorithm)
	assert.Equal(t, "stash.pem", cfg.Session.PrivateKeyFile)
	assert.Equal(t, "stash.pub.pem", cfg.Session.PublicKeyFile)
	assert.False(t, cfg.Session.EnforceTTL)
	assert.Equal(t, "sqlite", cfg.Database.Type)
	assert.Equal(t, "stash.db", cfg.Database.DSN)
	assert.Equal(t, "item", cfg.Database.Table)
	assert.Equal(t, 5, cfg.Database.Attempts)
	assert.Equal(t, 5, cfg.Database.Wait)
	assert.Equal(t, int64(0), cfg.Limits.String)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_ConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 8080
  public_mode: true
session:
  ttl: 600
  algorithm: RS512
  enforce_ttl: true
admission:
  allowed_origin: https://app.example.com
  allowed_ip: 203.0.113.7
database:
  type: postgres
  dsn: postgres://localhost/test
  table: custom_item
limits:
  string: 1024
  json: 4096
  blob: 65536
log:
  level: debug
`
	err := os.WriteFile(configPath, []byte(configContent), 0o644)
	require.NoError(t, err)

	cfg, err := config.Load([]string{configPath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.True(t, cfg.Server.PublicMode)
	assert.Equal(t, 600, cfg.Session.TTL)
	assert.Equal(t, "RS512", cfg.Session.Algorithm)
	assert.True(t, cfg.Session.EnforceTTL)
	assert.Equal(t, "https://app.example.com", cfg.Admission.AllowedOrigin)
	assert.Equal(t, "203.0.113.7", cfg.Admission.AllowedIP)
	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, "custom_item", cfg.Database.Table)
	assert.Equal(t, int64(1024), cfg.Limits.String)
	assert.Equal(t, int64(65536), cfg.Limits.Blob)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestLoad_ConfigFileMerge(t *testing.T) {
	tmpDir := t.TempDir()

	basePath := filepath.Join(tmpDir, "base.yaml")
	baseContent := `
server:
  port: 5709
session:
  ttl: 300
log:
  level: info
`
	require.NoError(t, os.WriteFile(basePath, []byte(baseContent), 0o644))

	overridePath := filepath.Join(tmpDir, "override.yaml")
	overrideContent := `
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(overridePath, []byte(overrideContent), 0o644))

	// Later files override earlier ones
	cfg, err := config.Load([]string{basePath, overridePath}, nil)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 300, cfg.Session.TTL)
}

func TestLoad_Flags(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.String("db-type", "", "")
	flags.Int("port", 0, "")
	require.NoError(t, flags.Parse([]string{"--db-type=postgres", "--port=7000"}))

	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Type)
	assert.Equal(t, 7000, cfg.Server.Port)
}

func TestLoad_UnsetFlagsIgnored(t *testing.T) {
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	flags.Int("port", 1234, "")
	require.NoError(t, flags.Parse(nil))

	// the flag's default must not shadow the config default
	cfg, err := config.Load(nil, flags)
	require.NoError(t, err)

	assert.Equal(t, 5709, cfg.Server.Port)
}

func TestLoad_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "bad database type", content: "database:\n  type: mongodb\n"},
		{name: "bad algorithm", content: "session:\n  algorithm: HS256\n"},
		{name: "bad port", content: "server:\n  port: 123456\n"},
		{name: "bad log level", content: "log:\n  level: loud\n"},
		{name: "bad allowed ip", content: "admission:\n  allowed_ip: not-an-ip\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpDir := t.TempDir()
			configPath := filepath.Join(tmpDir, "config.yaml")
			require.NoError(t, os.WriteFile(configPath, []byte(tt.content), 0o644))

			_, err := config.Load([]string{configPath}, nil)
			assert.Error(t, err)
		})
	}
}

func TestWaitDuration(t *testing.T) {
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "5s", cfg.Database.WaitDuration().String())
}

func TestContextRoundTrip(t *testing.T) {
	cfg, err := config.Load(nil, nil)
	require.NoError(t, err)

	ctx := config.WithContext(context.Background(), cfg)

	got, err := config.FromContext(ctx)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	_, err = config.FromContext(context.Background())
	assert.Error(t, err)
}
