package shared

import (
	_ "embed"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server    ServerConfig    `toml:"server"`
	Upload    UploadConfig    `toml:"upload"`
	Project   ProjectConfig   `toml:"project"`
	Downloads DownloadsConfig `toml:"downloads"`
	Stub      StubConfig      `toml:"stub"`
}

// ServerConfig locates the processing backend.
type ServerConfig struct {
	BaseURL        string `toml:"base_url"`
	UploadPath     string `toml:"upload_path"`
	ProjectPath    string `toml:"project_path"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// UploadConfig contains spreadsheet upload settings.
type UploadConfig struct {
	Extension string `toml:"extension"`
	FieldName string `toml:"field_name"`
}

// ProjectConfig contains archive download settings.
type ProjectConfig struct {
	ArchiveName string  `toml:"archive_name"`
	TickMS      int     `toml:"tick_ms"`
	MaxStep     float64 `toml:"max_step"`
}

// DownloadsConfig controls where saved artifacts land.
type DownloadsConfig struct {
	Dir string `toml:"dir"`
}

// StubConfig contains settings for the local stand-in backend.
type StubConfig struct {
	Host    string `toml:"host"`
	Port    int    `toml:"port"`
	DelayMS int    `toml:"delay_ms"`
}

// Timeout returns the HTTP client timeout; zero disables it.
func (s ServerConfig) Timeout() time.Duration {
	return time.Duration(s.TimeoutSeconds) * time.Second
}

// TickInterval returns the progress animation cadence.
func (p ProjectConfig) TickInterval() time.Duration {
	return time.Duration(p.TickMS) * time.Millisecond
}

// Addr returns the host:port the stub backend listens on.
func (s StubConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// Validate reports the first setting that would leave a workflow unusable.
func (c *Config) Validate() error {
	switch {
	case c.Server.BaseURL == "":
		return fmt.Errorf("%w: server.base_url is empty", ErrInvalidConfig)
	case !strings.HasPrefix(c.Upload.Extension, "."):
		return fmt.Errorf("%w: upload.extension must start with a dot", ErrInvalidConfig)
	case c.Project.TickMS <= 0:
		return fmt.Errorf("%w: project.tick_ms must be positive", ErrInvalidConfig)
	case c.Project.MaxStep <= 0:
		return fmt.Errorf("%w: project.max_step must be positive", ErrInvalidConfig)
	case c.Downloads.Dir == "":
		return fmt.Errorf("%w: downloads.dir is empty", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
//
// Keys missing from the file keep their embedded defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
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
