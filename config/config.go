// Package config loads mr01bank's process configuration from a TOML file,
// in the shape of the teacher's own node configuration (go-ethereum's
// go-ethereum/cmd/utils TOML config loading via naoina/toml).
package config

import (
	"fmt"
	"os"

	"github.com/naoina/toml"

	"github.com/mr01settle/paycheck/mr01"
)

// Config is the top-level process configuration.
type Config struct {
	// Macropayment is the system-wide macropayment unit M. All participants
	// must agree on this value; it is not negotiated per-check.
	Macropayment uint64

	// DataDir is the directory a pebble-backed store is opened in. Empty
	// means use an in-memory store (the default, and what every test uses).
	DataDir string

	// API holds the optional HTTP surface's configuration.
	API APIConfig
}

// APIConfig configures the optional REST surface over Bank operations.
type APIConfig struct {
	// Enabled turns the HTTP listener on. Disabled by default: the API is a
	// convenience wrapper, not part of the settlement protocol.
	Enabled bool
	// Addr is the listen address, e.g. "127.0.0.1:8585".
	Addr string
}

// Default returns the reference configuration: M=10, in-memory store, API
// disabled.
func Default() Config {
	return Config{
		Macropayment: mr01.DefaultMacropayment,
		API: APIConfig{
			Addr: "127.0.0.1:8585",
		},
	}
}

// Load reads and parses a TOML config file at path, applying it on top of
// Default() so an omitted field keeps its default.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		return cfg, fmt.Errorf("config: open %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(&cfg); err != nil {
		return cfg, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects a configuration that would make the bank meaningless.
func (c Config) Validate() error {
	if c.Macropayment == 0 {
		return fmt.Errorf("config: macropayment unit must be positive")
	}
	if c.API.Enabled && c.API.Addr == "" {
		return fmt.Errorf("config: api.enabled requires api.addr")
	}
	return nil
}
