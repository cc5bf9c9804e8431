package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/0xRobin/data-misc/pkg/networks"
)

// Config carries the process-wide settings of a pipeline run. It is
// built once at startup and passed in explicitly so the pipeline never
// reads ambient environment state.
type Config struct {
	// NodeAPIKey unlocks the JSON-RPC provider on networks that need a
	// key (INFURA_KEY).
	NodeAPIKey string
	// DuneAPIKey authenticates against the Dune API (DUNE_API_KEY).
	DuneAPIKey string
	// Networks to run against, default mainnet only.
	Networks []networks.Network
	// OutDir receives the generated artifacts.
	OutDir string
	// Workers bounds the resolution worker pool.
	Workers int
}

// FromEnv assembles a Config from the environment. Key validation is
// deferred to the caller since offline runs need fewer secrets.
func FromEnv() (*Config, error) {
	nets, err := parseNetworks(env("NETWORKS", "mainnet"))
	if err != nil {
		return nil, err
	}
	return &Config{
		NodeAPIKey: os.Getenv("INFURA_KEY"),
		DuneAPIKey: os.Getenv("DUNE_API_KEY"),
		Networks:   nets,
		OutDir:     env("OUT_DIR", "./out"),
		Workers:    intEnv("WORKERS", 1),
	}, nil
}

// RequireNodeAPIKey errors if no node access key is configured.
func (c *Config) RequireNodeAPIKey() error {
	if c.NodeAPIKey == "" {
		return fmt.Errorf("INFURA_KEY is not set")
	}
	return nil
}

// RequireDuneAPIKey errors if no Dune API key is configured.
func (c *Config) RequireDuneAPIKey() error {
	if c.DuneAPIKey == "" {
		return fmt.Errorf("DUNE_API_KEY is not set")
	}
	return nil
}

func parseNetworks(list string) ([]networks.Network, error) {
	var nets []networks.Network
	for _, name := range strings.Split(list, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		n, err := networks.FindNetwork(name)
		if err != nil {
			return nil, err
		}
		nets = append(nets, n)
	}
	if len(nets) == 0 {
		return nil, fmt.Errorf("no networks configured")
	}
	return nets, nil
}

func env(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	if i, err := strconv.Atoi(v); err == nil && i > 0 {
		return i
	}
	return def
}
