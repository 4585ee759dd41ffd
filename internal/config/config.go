// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 SchoolHub Contributors

// Package config loads SchoolHub configuration from defaults, an optional
// YAML file, the environment and command-line flags, in that order.
package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/samber/oops"
	"github.com/spf13/pflag"
	"golang.org/x/crypto/bcrypt"

	"github.com/schoolhub/schoolhub/internal/auth"
	"github.com/schoolhub/schoolhub/internal/logging"
	"github.com/schoolhub/schoolhub/internal/store"
)

// EnvPrefix prefixes every SchoolHub environment variable.
const EnvPrefix = "SCHOOLHUB_"

// CodeInvalid marks configuration that failed validation.
const CodeInvalid = "CONFIG_INVALID"

// Config is the full SchoolHub configuration.
type Config struct {
	HTTP     HTTPConfig     `koanf:"http"`
	Metrics  MetricsConfig  `koanf:"metrics"`
	Database DatabaseConfig `koanf:"database"`
	Auth     AuthConfig     `koanf:"auth"`
	Log      LogConfig      `koanf:"log"`
}

// HTTPConfig configures the API listener.
type HTTPConfig struct {
	Addr            string        `koanf:"addr"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
}

// MetricsConfig configures the observability listener. An empty Addr
// disables it.
type MetricsConfig struct {
	Addr string `koanf:"addr"`
}

// DatabaseConfig configures the PostgreSQL connection.
type DatabaseConfig struct {
	URL            string        `koanf:"url"`
	ConnectTimeout time.Duration `koanf:"connect_timeout"`
}

// AuthConfig configures password hashing and session tokens.
type AuthConfig struct {
	JWTSecret     string        `koanf:"jwt_secret"`
	TokenTTL      time.Duration `koanf:"token_ttl"`
	HashAlgorithm string        `koanf:"hash_algorithm"`
	BcryptCost    int           `koanf:"bcrypt_cost"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Format string `koanf:"format"`
	Level  string `koanf:"level"`
}

// defaults returns the built-in value of every known key.
func defaults() map[string]any {
	return map[string]any{
		"http.addr":                ":8080",
		"http.shutdown_timeout":    "10s",
		"metrics.addr":             "127.0.0.1:9100",
		"database.url":             "",
		"database.connect_timeout": store.DefaultConnectTimeout.String(),
		"auth.jwt_secret":          "",
		"auth.token_ttl":           auth.DefaultTokenTTL.String(),
		"auth.hash_algorithm":      auth.AlgorithmBcrypt,
		"auth.bcrypt_cost":         auth.DefaultBcryptCost,
		"log.format":               logging.FormatJSON,
		"log.level":                "info",
	}
}

// Default returns the configuration with only built-in defaults applied.
func Default() *Config {
	k := koanf.New(".")
	var cfg Config
	// Defaults are static and always decode.
	_ = k.Load(confmap.Provider(defaults(), "."), nil)
	_ = k.Unmarshal("", &cfg)
	return &cfg
}

// Load reads configuration from the defaults, the YAML file at path (if
// non-empty), DATABASE_URL, SCHOOLHUB_* variables and the changed flags in
// flags (if non-nil). Later sources win. The result is not validated.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	known := defaults()
	if err := k.Load(confmap.Provider(known, "."), nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "defaults").Wrap(err)
	}

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "file").With("path", path).Wrap(err)
		}
	}

	databaseURL := env.ProviderWithValue("DATABASE_URL", ".", func(key, value string) (string, any) {
		if key != "DATABASE_URL" {
			return "", nil
		}
		return "database.url", value
	})
	if err := k.Load(databaseURL, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "DATABASE_URL").Wrap(err)
	}

	prefixed := env.Provider(EnvPrefix, ".", func(name string) string {
		key := envKey(name)
		if _, ok := known[key]; !ok {
			return ""
		}
		return key
	})
	if err := k.Load(prefixed, nil); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "environment").Wrap(err)
	}

	if flags != nil {
		provider := posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, any) {
			key := flagKey(f.Name)
			if _, ok := known[key]; !ok || !f.Changed {
				return "", nil
			}
			return key, posflag.FlagVal(flags, f)
		})
		if err := k.Load(provider, nil); err != nil {
			return nil, oops.Code("CONFIG_LOAD_FAILED").With("source", "flags").Wrap(err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.Code("CONFIG_LOAD_FAILED").With("operation", "decode config").Wrap(err)
	}
	return &cfg, nil
}

// envKey maps SCHOOLHUB_AUTH_JWT_SECRET to auth.jwt_secret. The first
// underscore after the prefix separates the section from the key.
func envKey(name string) string {
	return strings.Replace(strings.ToLower(strings.TrimPrefix(name, EnvPrefix)), "_", ".", 1)
}

// flagKey maps a flag such as --auth-token-ttl to auth.token_ttl.
func flagKey(name string) string {
	key := strings.Replace(name, "-", ".", 1)
	return strings.ReplaceAll(key, "-", "_")
}

// Validate checks every setting the serve command depends on.
func (c *Config) Validate() error {
	if err := c.ValidateDatabase(); err != nil {
		return err
	}
	if c.HTTP.Addr == "" {
		return invalid("http.addr", "http address is required")
	}
	if c.HTTP.ShutdownTimeout <= 0 {
		return invalid("http.shutdown_timeout", "shutdown timeout must be positive")
	}
	if c.Auth.JWTSecret == "" {
		return invalid("auth.jwt_secret", "jwt secret is required (set "+EnvPrefix+"AUTH_JWT_SECRET)")
	}
	if c.Auth.TokenTTL <= 0 {
		return invalid("auth.token_ttl", "token ttl must be positive")
	}
	switch c.Auth.HashAlgorithm {
	case auth.AlgorithmBcrypt:
		if c.Auth.BcryptCost < bcrypt.MinCost || c.Auth.BcryptCost > bcrypt.MaxCost {
			return oops.Code(CodeInvalid).
				With("key", "auth.bcrypt_cost").
				With("value", c.Auth.BcryptCost).
				Errorf("bcrypt cost must be between %d and %d", bcrypt.MinCost, bcrypt.MaxCost)
		}
	case auth.AlgorithmArgon2id:
	default:
		return oops.Code(CodeInvalid).
			With("key", "auth.hash_algorithm").
			Errorf("unknown hash algorithm %q", c.Auth.HashAlgorithm)
	}
	return c.ValidateLogging()
}

// ValidateDatabase checks the settings needed to reach PostgreSQL.
func (c *Config) ValidateDatabase() error {
	if c.Database.URL == "" {
		return invalid("database.url", "database url is required (set DATABASE_URL)")
	}
	if c.Database.ConnectTimeout <= 0 {
		return invalid("database.connect_timeout", "connect timeout must be positive")
	}
	return nil
}

// ValidateLogging checks the log format and level.
func (c *Config) ValidateLogging() error {
	if c.Log.Format == "" || !logging.ValidFormat(c.Log.Format) {
		return oops.Code(CodeInvalid).
			With("key", "log.format").
			Errorf("log format must be %q or %q, got %q", logging.FormatJSON, logging.FormatText, c.Log.Format)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return oops.Code(CodeInvalid).
			With("key", "log.level").
			Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

func invalid(key, msg string) error {
	return oops.Code(CodeInvalid).With("key", key).Errorf("%s", msg)
}

// BindFlags registers the command-line overrides on fs. Only flags the user
// sets take effect in Load.
func BindFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("http-addr", d.HTTP.Addr, "API listen address")
	fs.String("metrics-addr", d.Metrics.Addr, "metrics/health HTTP address (empty = disabled)")
	fs.Duration("auth-token-ttl", d.Auth.TokenTTL, "session token lifetime")
	fs.String("auth-hash-algorithm", d.Auth.HashAlgorithm, "password hash algorithm (bcrypt or argon2id)")
	BindDatabaseFlags(fs)
}

// BindDatabaseFlags registers the flags of commands that only need the
// database and logging.
func BindDatabaseFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("database-url", "", "PostgreSQL connection URL (default: $DATABASE_URL)")
	fs.String("log-format", d.Log.Format, "log format (json or text)")
	fs.String("log-level", d.Log.Level, "log level (debug, info, warn, error)")
}
