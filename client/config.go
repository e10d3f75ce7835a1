package client

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// DefaultEndpoint is the default server endpoint URL.
const DefaultEndpoint = "http://localhost:5709"

// Profile holds configuration for a single server profile. Token is
// the last bearer token captured from a response; it is refreshed on
// every call.
type Profile struct {
	Name     string `yaml:"name"`
	Endpoint string `yaml:"endpoint"`
	Token    string `yaml:"token,omitempty"`
	Default  bool   `yaml:"default,omitempty"`
}

// ConfigFile holds the full config file structure with multiple profiles.
type ConfigFile struct {
	Profiles []Profile `yaml:"profiles"`
}

// DefaultConfigPath returns ~/.stash/config.yaml.
func DefaultConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home directory: %w", err)
	}
	return filepath.Join(home, ".stash", "config.yaml"), nil
}

// LoadConfigFile reads the profile file at path. A missing file is not
// an error; it yields an empty config.
func LoadConfigFile(path string) (*ConfigFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &ConfigFile{}, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	var cfg ConfigFile
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file: %w", err)
	}
	return &cfg, nil
}

// Save writes the config to the specified path.
// Creates the parent directory if it doesn't exist.
func (c *ConfigFile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	raw, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	if err := os.WriteFile(path, raw, 0o600); err != nil {
		return fmt.Errorf("write config file: %w", err)
	}
	return nil
}

// GetProfile returns the profile by name.
// If name is empty, returns the default profile.
func (c *ConfigFile) GetProfile(name string) (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	if name == "" {
		return c.GetDefaultProfile()
	}

	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			return &c.Profiles[i], nil
		}
	}

	return nil, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// GetDefaultProfile returns the default profile.
// If no profile is marked as default, returns the first profile.
func (c *ConfigFile) GetDefaultProfile() (*Profile, error) {
	if len(c.Profiles) == 0 {
		return nil, ErrNoProfiles
	}

	for i := range c.Profiles {
		if c.Profiles[i].Default {
			return &c.Profiles[i], nil
		}
	}

	return &c.Profiles[0], nil
}

// AddProfile adds a new profile. Returns ErrProfileExists if a profile
// with the same name already exists.
func (c *ConfigFile) AddProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			return fmt.Errorf("%w: %s", ErrProfileExists, p.Name)
		}
	}
	c.Profiles = append(c.Profiles, p)
	return nil
}

// UpdateProfile updates an existing profile. Returns ErrProfileNotFound
// if the profile doesn't exist.
func (c *ConfigFile) UpdateProfile(p Profile) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == p.Name {
			c.Profiles[i] = p
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, p.Name)
}

// SetDefault marks the named profile as default and clears the flag on
// every other profile.
func (c *ConfigFile) SetDefault(name string) error {
	found := false
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles[i].Default = true
			found = true
		} else {
			c.Profiles[i].Default = false
		}
	}
	if !found {
		return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return nil
}

// RemoveProfile removes a profile by name.
func (c *ConfigFile) RemoveProfile(name string) error {
	for i := range c.Profiles {
		if c.Profiles[i].Name == name {
			c.Profiles = append(c.Profiles[:i], c.Profiles[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrProfileNotFound, name)
}

// ProfileNames returns a list of all profile names.
func (c *ConfigFile) ProfileNames() []string {
	names := make([]string, len(c.Profiles))
	for i := range c.Profiles {
		names[i] = c.Profiles[i].Name
	}
	return names
}
