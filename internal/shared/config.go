package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
)

//go:embed config.example.toml
var exampleConf []byte

// Environment variables that override values from the config file.
const (
	EnvSecretKey   = "SECRET_KEY"
	EnvAPIKey      = "API_KEY"
	EnvAccessToken = "TMDB_ACCESS_TOKEN"
	EnvDatabase    = "DATABASE_PATH"
	EnvPort        = "PORT"
	EnvLogLevel    = "LOG_LEVEL"
)

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Credentials CredentialsConfig `toml:"credentials"`
	Database    DatabaseConfig    `toml:"database"`
	Server      ServerConfig      `toml:"server"`
	Log         LogConfig         `toml:"log"`
}

// CredentialsConfig contains service-specific credentials.
type CredentialsConfig struct {
	TMDB TMDBConfig `toml:"tmdb"`
}

// TMDBConfig contains The Movie Database API credentials and client settings.
type TMDBConfig struct {
	APIKey            string  `toml:"api_key"`
	AccessToken       string  `toml:"access_token"`
	BaseURL           string  `toml:"base_url"`
	ImageBaseURL      string  `toml:"image_base_url"`
	Timeout           string  `toml:"timeout"`
	Retries           int     `toml:"retries"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// TimeoutDuration parses Timeout, falling back to 10 seconds when it is empty or malformed.
func (c TMDBConfig) TimeoutDuration() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil || d <= 0 {
		return 10 * time.Second
	}
	return d
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	Host          string `toml:"host"`
	Port          int    `toml:"port"`
	SecretKey     string `toml:"secret_key"`
	SecureCookies bool   `toml:"secure_cookies"`
}

// Addr returns the host:port listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// LogConfig contains logger settings.
type LogConfig struct {
	Level string `toml:"level"`
}

// ParsedLevel returns the configured [log.Level], defaulting to [log.InfoLevel].
func (l LogConfig) ParsedLevel() log.Level {
	lvl, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep the defaults from [DefaultConfig].
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	return config, nil
}

// LoadConfigOrDefault loads the file at path when it exists and returns [DefaultConfig] otherwise.
func LoadConfigOrDefault(path string) (*Config, error) {
	if path == "" {
		return DefaultConfig(), nil
	}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}
	return LoadConfig(path)
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// ApplyEnv overlays environment variables onto the config.
//
// lookup is usually [os.LookupEnv]; tests pass a map-backed function.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if lookup == nil {
		lookup = os.LookupEnv
	}

	if v, ok := lookup(EnvSecretKey); ok && v != "" {
		c.Server.SecretKey = v
	}
	if v, ok := lookup(EnvAPIKey); ok && v != "" {
		c.Credentials.TMDB.APIKey = v
	}
	if v, ok := lookup(EnvAccessToken); ok && v != "" {
		c.Credentials.TMDB.AccessToken = v
	}
	if v, ok := lookup(EnvDatabase); ok && v != "" {
		c.Database.Path = v
	}
	if v, ok := lookup(EnvLogLevel); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil || port <= 0 {
			return fmt.Errorf("%w: %s=%q is not a valid port", ErrInvalidConfig, EnvPort, v)
		}
		c.Server.Port = port
	}
	return nil
}

// ValidateServer checks the settings required to run the web app.
//
// Both the session secret and TMDB credentials must be present.
func (c *Config) ValidateServer() error {
	var missing []string
	if c.Server.SecretKey == "" {
		missing = append(missing, EnvSecretKey)
	}
	if c.Credentials.TMDB.APIKey == "" {
		missing = append(missing, EnvAPIKey)
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s must be set", ErrMissingConfig, strings.Join(missing, " and "))
	}
	return c.validateCommon()
}

// ValidateTMDB checks the settings required to call TMDB.
func (c *Config) ValidateTMDB() error {
	if c.Credentials.TMDB.APIKey == "" && c.Credentials.TMDB.AccessToken == "" {
		return fmt.Errorf("%w: %s must be set", ErrMissingCredentials, EnvAPIKey)
	}
	return c.validateCommon()
}

func (c *Config) validateCommon() error {
	if c.Database.Path == "" {
		return fmt.Errorf("%w: database path is empty", ErrInvalidConfig)
	}
	if c.Credentials.TMDB.BaseURL == "" {
		return fmt.Errorf("%w: tmdb base_url is empty", ErrInvalidConfig)
	}
	return nil
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
