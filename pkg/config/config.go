// Package config loads calculator settings from an optional YAML file and
// the environment. Command-line flags are applied on top by cmd/calc.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/lemonberrylabs/calc/pkg/logging"
)

// Config holds all runtime settings.
type Config struct {
	Prompt       string `yaml:"prompt"`
	Precision    int    `yaml:"precision"`
	Host         string `yaml:"host"`
	Port         int    `yaml:"port"`
	GRPCPort     int    `yaml:"grpc_port"`
	HistoryLimit int    `yaml:"history_limit"`
	LogLevel     string `yaml:"log_level"`
	LogFile      string `yaml:"log_file"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Prompt:       "input: ",
		Precision:    6,
		Host:         "0.0.0.0",
		Port:         8787,
		GRPCPort:     8788,
		HistoryLimit: 1000,
		LogLevel:     "info",
	}
}

// Load returns the defaults overlaid with the YAML file at path (if path is
// non-empty) and then with environment variables.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config: %w", err)
		}
		if err := Parse(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.Getenv); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// Parse decodes YAML into cfg, keeping fields that the document omits.
// Unknown keys are rejected.
func Parse(data []byte, cfg *Config) error {
	var raw yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("invalid YAML: %w", err)
	}
	if raw.Kind == 0 {
		// empty document
		return nil
	}
	if raw.Kind != yaml.DocumentNode || len(raw.Content) == 0 || raw.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("config must be a YAML mapping")
	}

	known := map[string]bool{
		"prompt": true, "precision": true, "host": true, "port": true,
		"grpc_port": true, "history_limit": true, "log_level": true, "log_file": true,
	}
	root := raw.Content[0]
	for i := 0; i+1 < len(root.Content); i += 2 {
		key := root.Content[i]
		if !known[key.Value] {
			return fmt.Errorf("unknown key %q at line %d", key.Value, key.Line)
		}
	}

	return root.Decode(cfg)
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv("CALC_PROMPT"); v != "" {
		c.Prompt = v
	}
	if v := getenv("HOST"); v != "" {
		c.Host = v
	}
	if v := getenv("CALC_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	if v := getenv("CALC_LOG_FILE"); v != "" {
		c.LogFile = v
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"CALC_PRECISION", &c.Precision},
		{"PORT", &c.Port},
		{"GRPC_PORT", &c.GRPCPort},
		{"CALC_HISTORY_LIMIT", &c.HistoryLimit},
	}
	for _, e := range ints {
		v := getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("env %s: invalid integer %q", e.key, v)
		}
		*e.dst = n
	}
	return nil
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Precision < 1 || c.Precision > 17 {
		return fmt.Errorf("precision must be between 1 and 17, got %d", c.Precision)
	}
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("port out of range: %d", c.Port)
	}
	if c.GRPCPort < 0 || c.GRPCPort > 65535 {
		return fmt.Errorf("grpc_port out of range: %d", c.GRPCPort)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("history_limit must not be negative, got %d", c.HistoryLimit)
	}
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	return nil
}
