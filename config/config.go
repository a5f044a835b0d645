// Package config loads the kit's configuration from YAML or JSON with
// CREDKIT_* environment overrides, and turns it into the typed settings
// the other packages consume.
package config

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"github.com/credforge/credkit/credhash"
	"github.com/credforge/credkit/credstore"
)

// Config is the root configuration for the kit.
type Config struct {
	Password PasswordConfig `koanf:"password"`
	Key      KeyConfig      `koanf:"key"`
	Store    StoreConfig    `koanf:"store"`
	Log      LogConfig      `koanf:"log"`
}

// PasswordConfig sets the recommended password-hashing parameters.
// Stored hashes weaker than these are flagged for rehash on verification.
type PasswordConfig struct {
	Algorithm  string `koanf:"algorithm"`
	Iterations int    `koanf:"iterations"`
}

// KeyConfig sets the recommended key-hashing algorithm.
type KeyConfig struct {
	Algorithm string `koanf:"algorithm"`
}

// StoreConfig configures the credential store. An empty driver disables
// persistence.
type StoreConfig struct {
	Driver          string        `koanf:"driver"` // "postgres", "mysql", or ""
	DSN             string        `koanf:"dsn"`
	MaxOpenConns    int           `koanf:"max_open_conns"`
	MaxIdleConns    int           `koanf:"max_idle_conns"`
	ConnMaxLifetime time.Duration `koanf:"conn_max_lifetime"`
	QueryTimeout    time.Duration `koanf:"query_timeout"`
	RetryAttempts   int           `koanf:"retry_attempts"`
}

// LogConfig configures the kit's logging provider.
type LogConfig struct {
	Debug bool `koanf:"debug"`
}

// Default returns the configuration used when no file or environment
// override says otherwise.
func Default() Config {
	return Config{
		Password: PasswordConfig{
			Algorithm:  credhash.RecommendedAlgorithm.String(),
			Iterations: credhash.RecommendedIterations,
		},
		Key: KeyConfig{
			Algorithm: credhash.RecommendedKeyAlgorithm.String(),
		},
		Store: StoreConfig{
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: 30 * time.Minute,
			QueryTimeout:    30 * time.Second,
			RetryAttempts:   3,
		},
	}
}

// envOverrides maps environment variables to configuration keys. The kit's
// config surface is small and fixed, so an explicit table replaces tag
// scanning.
var envOverrides = map[string]string{
	"CREDKIT_PASSWORD_ALGORITHM":      "password.algorithm",
	"CREDKIT_PASSWORD_ITERATIONS":     "password.iterations",
	"CREDKIT_KEY_ALGORITHM":           "key.algorithm",
	"CREDKIT_STORE_DRIVER":            "store.driver",
	"CREDKIT_STORE_DSN":               "store.dsn",
	"CREDKIT_STORE_MAX_OPEN_CONNS":    "store.max_open_conns",
	"CREDKIT_STORE_MAX_IDLE_CONNS":    "store.max_idle_conns",
	"CREDKIT_STORE_CONN_MAX_LIFETIME": "store.conn_max_lifetime",
	"CREDKIT_STORE_QUERY_TIMEOUT":     "store.query_timeout",
	"CREDKIT_STORE_RETRY_ATTEMPTS":    "store.retry_attempts",
	"CREDKIT_LOG_DEBUG":               "log.debug",
}

// Load reads the config file at path, applies CREDKIT_* environment
// overrides, and validates the result.
func Load(path string, opts ...Option) (Config, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	data, err := o.fileReader(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %q: %w", path, err)
	}

	format, err := resolveFormat(path, o.format)
	if err != nil {
		return Config{}, err
	}
	return load(data, format, o)
}

// LoadBytes parses raw config data in the given format, applies CREDKIT_*
// environment overrides, and validates the result.
func LoadBytes(data []byte, format Format, opts ...Option) (Config, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return load(data, format, o)
}

func load(data []byte, format Format, o options) (Config, error) {
	parser, err := parserFor(format)
	if err != nil {
		return Config{}, err
	}

	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), parser); err != nil {
		return Config{}, fmt.Errorf("config: parse: %w", err)
	}

	if o.envEnabled {
		overrides := make(map[string]any)
		for envVar, key := range envOverrides {
			if raw, ok := o.envLookup(envVar); ok {
				overrides[key] = raw
			}
		}
		if len(overrides) > 0 {
			if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
				return Config{}, fmt.Errorf("config: apply environment overrides: %w", err)
			}
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks algorithm names and store settings.
func (c Config) Validate() error {
	if _, err := credhash.LookupAlgorithm(c.Password.Algorithm); err != nil {
		return fmt.Errorf("config: password.algorithm: %w", err)
	}
	if c.Password.Iterations < 1 {
		return fmt.Errorf("config: password.iterations must be >= 1, got %d", c.Password.Iterations)
	}
	if _, err := credhash.LookupKeyAlgorithm(c.Key.Algorithm); err != nil {
		return fmt.Errorf("config: key.algorithm: %w", err)
	}

	switch c.Store.Driver {
	case "", "postgres", "mysql":
	default:
		return fmt.Errorf("config: store.driver must be postgres, mysql, or empty, got %q", c.Store.Driver)
	}
	if c.Store.Driver != "" && c.Store.DSN == "" {
		return fmt.Errorf("config: store.dsn is required when store.driver is set")
	}
	if c.Store.MaxIdleConns > c.Store.MaxOpenConns {
		return fmt.Errorf("config: store.max_idle_conns exceeds store.max_open_conns")
	}
	return nil
}

// PasswordPolicy returns the configured password recommendation as a
// credhash policy.
func (c Config) PasswordPolicy() (credhash.Policy, error) {
	algorithm, err := credhash.LookupAlgorithm(c.Password.Algorithm)
	if err != nil {
		return credhash.Policy{}, err
	}
	return credhash.Policy{Algorithm: algorithm, Iterations: c.Password.Iterations}, nil
}

// KeyAlgorithm returns the configured key-hashing algorithm.
func (c Config) KeyAlgorithm() (credhash.KeyAlgorithm, error) {
	return credhash.LookupKeyAlgorithm(c.Key.Algorithm)
}

// StoreEnabled reports whether a credential store driver is configured.
func (c Config) StoreEnabled() bool {
	return c.Store.Driver != ""
}

// StoreConfig converts the store section into a credstore configuration.
// Call only when StoreEnabled reports true.
func (c Config) StoreConfig() *credstore.Config {
	sc := credstore.DefaultConfig(credstore.Driver(c.Store.Driver), c.Store.DSN)
	sc.MaxOpenConns = c.Store.MaxOpenConns
	sc.MaxIdleConns = c.Store.MaxIdleConns
	sc.ConnMaxLifetime = c.Store.ConnMaxLifetime
	sc.QueryTimeout = c.Store.QueryTimeout
	sc.RetryAttempts = c.Store.RetryAttempts
	return sc
}

func resolveFormat(path string, forced Format) (Format, error) {
	if forced != FormatAuto && forced != "" {
		switch forced {
		case FormatJSON, FormatYAML:
			return forced, nil
		default:
			return "", fmt.Errorf("config: unsupported format %q", forced)
		}
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	default:
		return "", fmt.Errorf("config: could not detect config format from %q", path)
	}
}

func parserFor(format Format) (koanf.Parser, error) {
	switch format {
	case FormatJSON:
		return json.Parser(), nil
	case FormatYAML:
		return yaml.Parser(), nil
	default:
		return nil, fmt.Errorf("config: unsupported format %q", format)
	}
}
