package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
	"randomcarnegie.app/internal/setup"
)

type Config struct {
	Server    ServerConfig  `yaml:"server"`
	DataDir   string        `yaml:"data_dir"`
	DisableDB bool          `yaml:"disable_db"`
	Defaults  setup.Options `yaml:"defaults"`
}

type ServerConfig struct {
	Addr      string `yaml:"addr"`
	PublicURL string `yaml:"public_url"`
	EnableWS  bool   `yaml:"enable_ws"`
	// MaxQueue bounds pending outbound messages per websocket session.
	MaxQueue int `yaml:"max_queue"`
}

func Load(path string) (Config, error) {
	cfg := Defaults()
	if strings.TrimSpace(path) == "" {
		cfg.Normalize()
		return cfg, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("setup.yaml: %w", err)
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("setup.yaml: %w", err)
	}
	return cfg, nil
}

func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Addr:      ":8080",
			PublicURL: "http://localhost:8080",
			EnableWS:  true,
			MaxQueue:  8,
		},
		DataDir:  "./data",
		Defaults: setup.DefaultOptions(),
	}
}

func (c *Config) Normalize() {
	if c == nil {
		return
	}
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	c.Server.PublicURL = strings.TrimRight(strings.TrimSpace(c.Server.PublicURL), "/")
	c.DataDir = strings.TrimSpace(c.DataDir)
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Server.MaxQueue <= 0 {
		c.Server.MaxQueue = 8
	}
	if c.DataDir == "" {
		c.DataDir = "./data"
	}
}

func (c Config) Validate() error {
	c.Normalize()
	if c.Server.PublicURL != "" &&
		!strings.HasPrefix(c.Server.PublicURL, "http://") &&
		!strings.HasPrefix(c.Server.PublicURL, "https://") {
		return fmt.Errorf("server.public_url must be http(s): %q", c.Server.PublicURL)
	}
	if c.Server.MaxQueue > 1024 {
		return fmt.Errorf("server.max_queue must be <= 1024")
	}
	if err := c.Defaults.Validate(); err != nil {
		return fmt.Errorf("defaults: %w", err)
	}
	return nil
}
