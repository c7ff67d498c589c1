package shared

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/desertthunder/hlsx/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Check    CheckConfig               `toml:"check"`
	Database DatabaseConfig            `toml:"database"`
	Server   ServerConfig              `toml:"server"`
	Profiles map[string]models.Profile `toml:"profiles"`
}

// CheckConfig contains playlist retrieval and worker settings.
type CheckConfig struct {
	Workers        int      `toml:"workers"`
	RateLimit      float64  `toml:"rate_limit"` // Requests per second
	TimeoutSeconds int      `toml:"timeout_seconds"`
	UserAgent      string   `toml:"user_agent"`
	Headers        []string `toml:"headers"` // "Key: Value" lines
	ProfilesFile   string   `toml:"profiles_file"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// profileFile is the document layout of an external profiles file.
type profileFile struct {
	Profiles map[string]models.Profile `toml:"profiles" yaml:"profiles"`
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// When check.profiles_file is set, its profiles are merged over the ones defined inline.
// A relative profiles_file is resolved against the directory of path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if config.Check.ProfilesFile != "" {
		profilesPath := config.Check.ProfilesFile
		if !filepath.IsAbs(profilesPath) {
			profilesPath = filepath.Join(filepath.Dir(path), profilesPath)
		}
		extra, err := LoadProfiles(profilesPath)
		if err != nil {
			return nil, err
		}
		if config.Profiles == nil {
			config.Profiles = make(map[string]models.Profile, len(extra))
		}
		for name, p := range extra {
			config.Profiles[name] = p
		}
	}

	config.nameProfiles()
	return &config, nil
}

// LoadProfiles reads profile definitions from a YAML (.yaml, .yml) or TOML file.
func LoadProfiles(path string) (map[string]models.Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read profiles file: %w", err)
	}

	var doc profileFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &doc)
	case ".toml":
		err = toml.Unmarshal(data, &doc)
	default:
		return nil, fmt.Errorf("%w: unsupported profiles file type %q", ErrInvalidConfig, filepath.Ext(path))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse profiles file: %w", err)
	}

	for name, p := range doc.Profiles {
		p.Name = name
		doc.Profiles[name] = p
	}
	return doc.Profiles, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	config.nameProfiles()
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Profile returns the named profile.
func (c *Config) Profile(name string) (models.Profile, error) {
	p, ok := c.Profiles[name]
	if !ok {
		return models.Profile{}, fmt.Errorf("%w: %s", ErrProfileNotFound, name)
	}
	return p, nil
}

// ProfileNames returns all profile names, sorted.
func (c *Config) ProfileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Timeout returns the per-request timeout, defaulting to 10 seconds.
func (c *Config) Timeout() time.Duration {
	if c.Check.TimeoutSeconds <= 0 {
		return 10 * time.Second
	}
	return time.Duration(c.Check.TimeoutSeconds) * time.Second
}

// Addr returns the server listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}

func (c *Config) nameProfiles() {
	for name, p := range c.Profiles {
		p.Name = name
		c.Profiles[name] = p
	}
}
