package config

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// configKey is the context key for storing the loaded configuration.
type configKey struct{}

// WithContext returns a new context with the config stored.
func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// FromContext retrieves the config from context.
// Returns an error if config is not found.
func FromContext(ctx context.Context) (*Config, error) {
	cfg, ok := ctx.Value(configKey{}).(*Config)
	if !ok || cfg == nil {
		return nil, errors.New("config not found in context")
	}
	return cfg, nil
}

// Config is the root configuration struct for stash.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Session   SessionConfig   `mapstructure:"session"`
	Admission AdmissionConfig `mapstructure:"admission"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Limits    LimitsConfig    `mapstructure:"limits"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`
	// PublicMode serves the HTML console and relaxes the origin check.
	PublicMode bool `mapstructure:"public_mode"`
}

// SessionConfig holds the token codec configuration.
type SessionConfig struct {
	// TTL is the advisory seconds-to-live stamped into minted claims.
	TTL int `mapstructure:"ttl" validate:"required,min=1"`
	// Algorithm is the JWS signing algorithm name.
	Algorithm string `mapstructure:"algorithm" validate:"required,oneof=RS256 RS384 RS512"`
	// PrivateKeyFile / PublicKeyFile point at the PEM key pair.
	PrivateKeyFile string `mapstructure:"private_key_file" validate:"required"`
	PublicKeyFile  string `mapstructure:"public_key_file" validate:"required"`
	// EnforceTTL rejects tokens past issued-at + ttl instead of
	// treating ttl as advisory.
	EnforceTTL bool `mapstructure:"enforce_ttl"`
}

// AdmissionConfig holds the request allow-list configuration. Empty
// values mean no restriction.
type AdmissionConfig struct {
	AllowedOrigin string `mapstructure:"allowed_origin"`
	AllowedIP     string `mapstructure:"allowed_ip" validate:"omitempty,ip"`
}

// DatabaseConfig holds item backend configuration.
type DatabaseConfig struct {
	Type string `mapstructure:"type" validate:"required,oneof=sqlite postgres"`
	// DSN may stay empty for postgres; the DB_HOST/DB_USER/DB_PASS/
	// DB_NAME environment fallbacks are consulted at connect time.
	DSN      string `mapstructure:"dsn"`
	Table    string `mapstructure:"table" validate:"required"`
	Attempts int    `mapstructure:"attempts" validate:"required,min=1"`
	Wait     int    `mapstructure:"wait" validate:"required,min=1"`
}

// WaitDuration returns the pause between connect attempts.
func (d DatabaseConfig) WaitDuration() time.Duration {
	return time.Duration(d.Wait) * time.Second
}

// LimitsConfig caps accepted body sizes per payload kind, in bytes.
// Zero means unlimited.
type LimitsConfig struct {
	String int64 `mapstructure:"string" validate:"min=0"`
	JSON   int64 `mapstructure:"json" validate:"min=0"`
	Blob   int64 `mapstructure:"blob" validate:"min=0"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
}

// flagToViperKey maps CLI flag names to viper configuration keys.
var flagToViperKey = map[string]string{
	"db-type": "database.type",
	"db-dsn":  "database.dsn",
	"port":    "server.port",
	"public":  "server.public_mode",
}

// bindFlags binds CLI flags to viper keys with custom name mapping.
func bindFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.VisitAll(func(f *pflag.Flag) {
		// Use custom mapping if it exists, otherwise use flag name as-is
		viperKey := f.Name
		if mapped, ok := flagToViperKey[viperKey]; ok {
			viperKey = mapped
		}

		// Only bind if the flag was explicitly set
		if f.Changed {
			_ = v.BindPFlag(viperKey, f)
		}
	})
}

// setDefaults configures default values on the viper instance.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 5709)
	v.SetDefault("server.public_mode", false)

	v.SetDefault("session.ttl", 300)
	v.SetDefault("session.algorithm", "RS256")
	v.SetDefault("session.private_key_file", "stash.pem")
	v.SetDefault("session.public_key_file", "stash.pub.pem")
	v.SetDefault("session.enforce_ttl", false)

	v.SetDefault("database.type", "sqlite")
	v.SetDefault("database.dsn", "stash.db")
	v.SetDefault("database.table", "item")
	v.SetDefault("database.attempts", 5)
	v.SetDefault("database.wait", 5)

	v.SetDefault("limits.string", 0)
	v.SetDefault("limits.json", 0)
	v.SetDefault("limits.blob", 0)

	v.SetDefault("log.level", "info")
}

// Load reads configuration and returns a validated Config struct.
// Order of precedence (highest to lowest): flags > env > config files > defaults
//
// Parameters:
//   - configFiles: list of config file paths (later files override earlier ones)
//   - flags: cobra flag set for flag binding (can be nil)
func Load(configFiles []string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	// 1. Set defaults
	setDefaults(v)

	// 2. Read config files
	if len(configFiles) > 0 {
		v.SetConfigFile(configFiles[0])
		if err := v.ReadInConfig(); err != nil {
			slog.Warn("error reading config file", "file", configFiles[0], "err", err)
		}

		for _, cf := range configFiles[1:] {
			v.SetConfigFile(cf)
			if err := v.MergeInConfig(); err != nil {
				slog.Warn("error merging config file", "file", cf, "err", err)
			}
		}
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		if err := v.ReadInConfig(); err != nil {
			var configNotFound viper.ConfigFileNotFoundError
			if !errors.As(err, &configNotFound) {
				slog.Warn("error reading config file", "err", err)
			}
		}
	}

	// 3. Bind environment variables
	v.SetEnvPrefix("STASH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 4. Bind flags (if provided)
	if flags != nil {
		bindFlags(v, flags)
	}

	// 5. Unmarshal into Config struct
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	// 6. Validate using go-playground/validator
	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &cfg, nil
}
