package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/nspcc-dev/n3sdk/pkg/config/netmode"
	"gopkg.in/yaml.v3"
)

// Config is the top-level SDK configuration, it's usually loaded from a YAML
// file and then converted into client and actor options.
type Config struct {
	// Network is the magic of the network transactions are signed for.
	Network     netmode.Magic `yaml:"Network"`
	RPC         RPCClient     `yaml:"RPC"`
	Transaction Transaction   `yaml:"Transaction"`
}

// Load reads the YAML configuration from the file specified.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("unable to read config: %w", err)
	}
	return LoadBytes(data)
}

// LoadBytes parses the YAML configuration, unknown fields are an error.
// Zero values are replaced with defaults and the result is validated.
func LoadBytes(data []byte) (Config, error) {
	var cfg Config

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("failed to unmarshal config YAML: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// SetDefaults fills zero fields with default values.
func (c *Config) SetDefaults() {
	if c.Network == 0 {
		c.Network = netmode.MainNet
	}
	c.RPC.SetDefaults()
	c.Transaction.SetDefaults()
}

// Validate checks the configuration for internal consistency.
func (c *Config) Validate() error {
	if err := c.RPC.Validate(); err != nil {
		return fmt.Errorf("RPC: %w", err)
	}
	if err := c.Transaction.Validate(); err != nil {
		return fmt.Errorf("Transaction: %w", err)
	}
	return nil
}
