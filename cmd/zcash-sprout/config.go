// config.go - Configuration management for the zcash-sprout CLI
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog"

	"github.com/suffix-labs/zcash-sprout/pkg/keys"
	"github.com/suffix-labs/zcash-sprout/pkg/transaction"
)

// Config represents the CLI configuration
type Config struct {
	// Chain
	Network   string `json:"network"`
	TxVersion uint32 `json:"tx_version"`
	LockTime  uint32 `json:"lock_time"`

	// Prover service
	ProverEndpoint       string `json:"prover_endpoint"`
	ProverTimeoutSeconds int    `json:"prover_timeout_seconds"`

	// Logging
	LogLevel   string `json:"log_level"`
	LogConsole bool   `json:"log_console"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		Network:              "main",
		TxVersion:            transaction.JoinSplitVersion,
		ProverEndpoint:       "tcp://127.0.0.1:8234",
		ProverTimeoutSeconds: 300,
		LogLevel:             "info",
	}
}

// LoadConfig loads configuration from file. A missing file yields the
// defaults; fields absent from the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	config := DefaultConfig()

	data, err := os.ReadFile(configPath)
	if os.IsNotExist(err) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config file: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", configPath, err)
	}
	return config, nil
}

// SaveConfig saves configuration to file
func SaveConfig(config *Config, configPath string) error {
	if err := os.MkdirAll(filepath.Dir(configPath), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := os.WriteFile(configPath, append(data, '\n'), 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if _, err := keys.NetworkByName(c.Network); err != nil {
		return err
	}
	if c.TxVersion < transaction.JoinSplitVersion {
		return fmt.Errorf("tx_version must be at least %d to carry JoinSplits", transaction.JoinSplitVersion)
	}
	if !strings.Contains(c.ProverEndpoint, "://") {
		return fmt.Errorf("prover_endpoint must look like tcp://host:port")
	}
	if c.ProverTimeoutSeconds <= 0 {
		return fmt.Errorf("prover_timeout_seconds must be positive")
	}
	if _, err := zerolog.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log_level: %w", err)
	}
	return nil
}

// NetworkParams returns the address prefixes of the configured chain.
func (c *Config) NetworkParams() *keys.Network {
	net, err := keys.NetworkByName(c.Network)
	if err != nil {
		return keys.MainNet
	}
	return net
}

// ProverTimeout returns the prover timeout as a duration.
func (c *Config) ProverTimeout() time.Duration {
	return time.Duration(c.ProverTimeoutSeconds) * time.Second
}
