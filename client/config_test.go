package client_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stash-sh/stash/client"
)

func TestLoadConfigFile_Missing(t *testing.T) {
	cfg, err := client.LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Profiles)
}

func TestConfigFile_SaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	cfg := &client.ConfigFile{}
	require.NoError(t, cfg.AddProfile(client.Profile{
		Name:     "local",
		Endpoint: "http://localhost:5709",
		Token:    "Bearer abc123",
		Default:  true,
	}))
	require.NoError(t, cfg.Save(path))

	// config files hold session tokens, keep them private
	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	loaded, err := client.LoadConfigFile(path)
	require.NoError(t, err)
	require.Len(t, loaded.Profiles, 1)
	assert.Equal(t, "local", loaded.Profiles[0].Name)
	assert.Equal(t, "Bearer abc123", loaded.Profiles[0].Token)
	assert.True(t, loaded.Profiles[0].Default)
}

func TestConfigFile_GetProfile(t *testing.T) {
	cfg := &client.ConfigFile{
		Profiles: []client.Profile{
			{Name: "first", Endpoint: "http://a"},
			{Name: "second", Endpoint: "http://b", Default: true},
		},
	}

	t.Run("by name", func(t *testing.T) {
		p, err := cfg.GetProfile("first")
		require.NoError(t, err)
		assert.Equal(t, "http://a", p.Endpoint)
	})

	t.Run("empty name resolves default", func(t *testing.T) {
		p, err := cfg.GetProfile("")
		require.NoError(t, err)
		assert.Equal(t, "second", p.Name)
	})

	t.Run("unknown name", func(t *testing.T) {
		_, err := cfg.GetProfile("missing")
		assert.ErrorIs(t, err, client.ErrProfileNotFound)
	})

	t.Run("no profiles", func(t *testing.T) {
		empty := &client.ConfigFile{}
		_, err := empty.GetProfile("")
		assert.ErrorIs(t, err, client.ErrNoProfiles)
	})
}

func TestConfigFile_GetDefaultProfile_FallsBackToFirst(t *testing.T) {
	cfg := &client.ConfigFile{
		Profiles: []client.Profile{
			{Name: "only", Endpoint: "http://a"},
		},
	}

	p, err := cfg.GetDefaultProfile()
	require.NoError(t, err)
	assert.Equal(t, "only", p.Name)
}

func TestConfigFile_AddProfile_Duplicate(t *testing.T) {
	cfg := &client.ConfigFile{}
	require.NoError(t, cfg.AddProfile(client.Profile{Name: "dup"}))
	assert.ErrorIs(t, cfg.AddProfile(client.Profile{Name: "dup"}), client.ErrProfileExists)
}

func TestConfigFile_UpdateProfile(t *testing.T) {
	cfg := &client.ConfigFile{Profiles: []client.Profile{{Name: "p", Endpoint: "http://old"}}}

	require.NoError(t, cfg.UpdateProfile(client.Profile{Name: "p", Endpoint: "http://new"}))
	assert.Equal(t, "http://new", cfg.Profiles[0].Endpoint)

	assert.ErrorIs(t, cfg.UpdateProfile(client.Profile{Name: "ghost"}), client.ErrProfileNotFound)
}

func TestConfigFile_RemoveProfile(t *testing.T) {
	cfg := &client.ConfigFile{Profiles: []client.Profile{{Name: "a"}, {Name: "b"}}}

	require.NoError(t, cfg.RemoveProfile("a"))
	assert.Equal(t, []string{"b"}, cfg.ProfileNames())

	assert.ErrorIs(t, cfg.RemoveProfile("a"), client.ErrProfileNotFound)
}

func TestConfigFile_SetDefault(t *testing.T) {
	cfg := &client.ConfigFile{
		Profiles: []client.Profile{
			{Name: "a", Default: true},
			{Name: "b"},
		},
	}

	require.NoError(t, cfg.SetDefault("b"))
	assert.False(t, cfg.Profiles[0].Default)
	assert.True(t, cfg.Profiles[1].Default)

	assert.ErrorIs(t, cfg.SetDefault("ghost"), client.ErrProfileNotFound)
}
