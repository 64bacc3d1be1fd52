// Package config handles pubdb configuration: a YAML file overlaid with
// PUBDB_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every tunable of the ingester, the query service and the
// HTTP adapter.
type Config struct {
	StorePath        string        `yaml:"store_path" json:"store_path"`
	SourceDir        string        `yaml:"source_dir" json:"source_dir"`
	SourceExtensions []string      `yaml:"source_extensions,omitempty" json:"source_extensions,omitempty"`
	PageSize         int           `yaml:"page_size" json:"page_size"`
	CacheTTL         time.Duration `yaml:"cache_ttl" json:"cache_ttl"`
	ExportBaseName   string        `yaml:"export_basename" json:"export_basename"`
	VerifyMarker     string        `yaml:"verify_marker" json:"verify_marker"`
	LogLevel         string        `yaml:"log_level" json:"log_level"`
	ServeAddr        string        `yaml:"serve_addr" json:"serve_addr"`
	RateLimit        float64       `yaml:"rate_limit" json:"rate_limit"` // requests per second
	RateBurst        int           `yaml:"rate_burst" json:"rate_burst"`
	TrustedProxies   []string      `yaml:"trusted_proxies,omitempty" json:"trusted_proxies,omitempty"` // CIDRs or bare IPs
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "pubdb"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"
	// EnvPrefix prefixes environment overrides.
	EnvPrefix = "PUBDB_"
)

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		StorePath:        "publications.db",
		SourceDir:        ".",
		SourceExtensions: []string{".xlsx", ".xlsm", ".csv"},
		PageSize:         10,
		CacheTTL:         time.Hour,
		ExportBaseName:   "aquatic_fungi_publications",
		VerifyMarker:     "fungi",
		LogLevel:         "info",
		ServeAddr:        "127.0.0.1:8501",
		RateLimit:        20,
		RateBurst:        40,
	}
}

// Path returns the default config file location.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/pubdb/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load reads the config file at path over the defaults, then applies
// environment overrides. An empty path means the default location, where a
// missing file is not an error; an explicit path must exist.
func Load(path string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = Path()
	}

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	cfg.StorePath = ExpandPath(cfg.StorePath)
	cfg.SourceDir = ExpandPath(cfg.SourceDir)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays PUBDB_* variables onto c.
func (c *Config) applyEnv() error {
	strs := map[string]*string{
		"STORE":           &c.StorePath,
		"SOURCE_DIR":      &c.SourceDir,
		"EXPORT_BASENAME": &c.ExportBaseName,
		"VERIFY_MARKER":   &c.VerifyMarker,
		"LOG_LEVEL":       &c.LogLevel,
		"SERVE_ADDR":      &c.ServeAddr,
	}
	for key, dst := range strs {
		if v, ok := os.LookupEnv(EnvPrefix + key); ok {
			*dst = v
		}
	}

	if v, ok := os.LookupEnv(EnvPrefix + "PAGE_SIZE"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sPAGE_SIZE: %w", EnvPrefix, err)
		}
		c.PageSize = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "CACHE_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sCACHE_TTL: %w", EnvPrefix, err)
		}
		c.CacheTTL = d
	}
	if v, ok := os.LookupEnv(EnvPrefix + "RATE_LIMIT"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("invalid %sRATE_LIMIT: %w", EnvPrefix, err)
		}
		c.RateLimit = f
	}
	if v, ok := os.LookupEnv(EnvPrefix + "RATE_BURST"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %sRATE_BURST: %w", EnvPrefix, err)
		}
		c.RateBurst = n
	}
	if v, ok := os.LookupEnv(EnvPrefix + "SOURCE_EXTENSIONS"); ok {
		c.SourceExtensions = splitList(v)
	}
	if v, ok := os.LookupEnv(EnvPrefix + "TRUSTED_PROXIES"); ok {
		c.TrustedProxies = splitList(v)
	}
	return nil
}

// splitList parses a comma-separated env value, dropping empty items.
func splitList(v string) []string {
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("store_path is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page_size must be positive, got %d", c.PageSize)
	}
	if c.CacheTTL < 0 {
		return fmt.Errorf("cache_ttl must not be negative, got %s", c.CacheTTL)
	}
	if c.RateLimit <= 0 || c.RateBurst < 1 {
		return fmt.Errorf("rate_limit and rate_burst must be positive")
	}
	return nil
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
