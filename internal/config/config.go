package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Config holds everything the server binary needs.
type Config struct {
	Server ServerConfig `yaml:"server"`
	Static StaticConfig `yaml:"static"`
	Log    LogConfig    `yaml:"log"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`

	// ReadBufferSize caps the single read a request is parsed from.
	ReadBufferSize int           `yaml:"read_buffer_size"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`

	// Sequential handles one connection at a time on the accept loop.
	Sequential bool `yaml:"sequential"`
}

type StaticConfig struct {
	Root        string `yaml:"root"`
	MaxFileSize int64  `yaml:"max_file_size"`
	DecodePath  bool   `yaml:"decode_path"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "localhost",
			Port:           8080,
			ReadBufferSize: 1024,
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   10 * time.Second,
		},
		Static: StaticConfig{
			Root:        "www",
			MaxFileSize: 10 << 20,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load starts from Default, applies the YAML file at path when path is
// not empty, then environment overrides, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("error parsing config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("HTTPSERVER_HOST"); v != "" {
		c.Server.Host = v
	}
	if v := os.Getenv("HTTPSERVER_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid HTTPSERVER_PORT %q: %w", v, err)
		}
		c.Server.Port = port
	}
	if v := os.Getenv("HTTPSERVER_ROOT"); v != "" {
		c.Static.Root = v
	}
	if v := os.Getenv("HTTPSERVER_LOG_LEVEL"); v != "" {
		c.Log.Level = v
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Server.Port)
	}
	if c.Server.ReadBufferSize <= 0 {
		return fmt.Errorf("invalid read buffer size: %d", c.Server.ReadBufferSize)
	}
	if c.Server.ReadTimeout < 0 || c.Server.WriteTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	if c.Static.Root == "" {
		return errors.New("static root is required")
	}
	if c.Static.MaxFileSize <= 0 {
		return fmt.Errorf("invalid max file size: %d", c.Static.MaxFileSize)
	}
	if _, err := c.LogLevel(); err != nil {
		return err
	}
	return nil
}

// LogLevel parses Log.Level.
func (c *Config) LogLevel() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.Log.Level)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.Log.Level, err)
	}
	return level, nil
}

func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
