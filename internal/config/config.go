// Package config loads server settings from defaults, an optional TOML file
// and GARDEROBA_* environment variables, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment overrides, e.g. GARDEROBA_SERVER_ADDR.
const EnvPrefix = "GARDEROBA"

// Config holds application configuration.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Storage StorageConfig `mapstructure:"storage"`
	Admin   AdminConfig   `mapstructure:"admin"`
	Log     LogConfig     `mapstructure:"log"`
	Images  ImagesConfig  `mapstructure:"images"`
	Canvas  CanvasConfig  `mapstructure:"canvas"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// PublicURL prefixes photo URLs stored in items.
	PublicURL    string `mapstructure:"public_url"`
	SecureCookie bool   `mapstructure:"secure_cookie"`
}

// StorageConfig holds database and object store locations.
type StorageConfig struct {
	DBPath  string `mapstructure:"db_path"`
	BlobDir string `mapstructure:"blob_dir"`
	// PendingTTL is how old an uncommitted item must be before startup
	// cleanup removes it.
	PendingTTL time.Duration `mapstructure:"pending_ttl"`
}

// AdminConfig holds first-run settings.
type AdminConfig struct {
	Username string `mapstructure:"username"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Path  string `mapstructure:"path"`
	Level string `mapstructure:"level"`
}

// ImagesConfig controls photo processing.
type ImagesConfig struct {
	MaxDimension int `mapstructure:"max_dimension"`
	Quality      int `mapstructure:"quality"`
}

// CanvasConfig controls playground sessions.
type CanvasConfig struct {
	MaxSessions int `mapstructure:"max_sessions"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.public_url", "http://localhost:8080")
	v.SetDefault("server.secure_cookie", false)
	v.SetDefault("storage.db_path", "garderoba.sqlite3")
	v.SetDefault("storage.blob_dir", "garderoba-blobs")
	v.SetDefault("storage.pending_ttl", time.Hour)
	v.SetDefault("admin.username", "Admin")
	v.SetDefault("log.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("images.max_dimension", 1600)
	v.SetDefault("images.quality", 85)
	v.SetDefault("canvas.max_sessions", 1024)
}

// Load reads the configuration. An explicit path must exist; without one,
// garderoba.toml in the working directory is used when present.
func Load(path string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigType("toml")
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("garderoba")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Validate checks values that would otherwise fail later at startup.
func (c Config) Validate() error {
	var errs []error
	if c.Server.Addr == "" {
		errs = append(errs, errors.New("server.addr is empty"))
	}
	if !strings.HasPrefix(c.Server.PublicURL, "http://") && !strings.HasPrefix(c.Server.PublicURL, "https://") {
		errs = append(errs, fmt.Errorf("server.public_url %q must be an http(s) URL", c.Server.PublicURL))
	}
	if c.Storage.DBPath == "" || c.Storage.BlobDir == "" {
		errs = append(errs, errors.New("storage.db_path and storage.blob_dir are required"))
	}
	if c.Canvas.MaxSessions <= 0 {
		errs = append(errs, errors.New("canvas.max_sessions must be positive"))
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is not one of debug, info, warn, error", c.Log.Level))
	}
	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}
