package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Origins   OriginsConfig   `yaml:"origins"`
	Ingest    IngestConfig    `yaml:"ingest"`
	Broadcast BroadcastConfig `yaml:"broadcast"`
	Log       LogConfig       `yaml:"log"`
	Mock      MockConfig      `yaml:"mock"`
}

type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// OriginsConfig lists the frontend applications allowed to connect.
type OriginsConfig struct {
	ClientURL string   `yaml:"client_url"`
	AdminURL  string   `yaml:"admin_url"`
	Extra     []string `yaml:"extra"`
}

type IngestConfig struct {
	Token string `yaml:"token"`
}

type BroadcastConfig struct {
	SendBuffer     int           `yaml:"send_buffer"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	MaxConnections int           `yaml:"max_connections"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

type MockConfig struct {
	Interval time.Duration `yaml:"interval"`
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port: 3003,
			Host: "0.0.0.0",
		},
		Origins: OriginsConfig{
			ClientURL: "http://localhost:3000",
			AdminURL:  "http://localhost:3001",
		},
		Broadcast: BroadcastConfig{
			SendBuffer:   64,
			WriteTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Mock: MockConfig{
			Interval: 15 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides (including a .env file in the working directory).
// A missing file is not an error.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
		default:
			return nil, fmt.Errorf("reading %s: %w", path, err)
		}
	}

	// Variables already set in the environment win over .env.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("PORT"); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("PORT: %w", err)
		}
		c.Server.Port = port
	}

	strs := map[string]*string{
		"HOST":         &c.Server.Host,
		"CLIENT_URL":   &c.Origins.ClientURL,
		"ADMIN_URL":    &c.Origins.AdminURL,
		"INGEST_TOKEN": &c.Ingest.Token,
		"LOG_LEVEL":    &c.Log.Level,
		"LOG_FORMAT":   &c.Log.Format,
	}
	for key, dst := range strs {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	return nil
}

func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if c.Broadcast.SendBuffer <= 0 {
		return fmt.Errorf("broadcast.send_buffer must be positive, got %d", c.Broadcast.SendBuffer)
	}
	if c.Broadcast.WriteTimeout <= 0 {
		return fmt.Errorf("broadcast.write_timeout must be positive, got %v", c.Broadcast.WriteTimeout)
	}
	if c.Broadcast.MaxConnections < 0 {
		return fmt.Errorf("broadcast.max_connections must not be negative, got %d", c.Broadcast.MaxConnections)
	}
	if c.Mock.Interval <= 0 {
		return fmt.Errorf("mock.interval must be positive, got %v", c.Mock.Interval)
	}
	return nil
}

// AllowedOrigins returns the configured frontend origins.
func (c *Config) AllowedOrigins() []string {
	var out []string
	for _, o := range append([]string{c.Origins.ClientURL, c.Origins.AdminURL}, c.Origins.Extra...) {
		if o != "" {
			out = append(out, o)
		}
	}
	return out
}
