package core

import (
	"os"
	"runtime"
	"time"

	yaml "github.com/goccy/go-yaml"
)

// Policy names accepted in Config.Policy.
const (
	PolicyLoadBalancing = "load_balancing"
	PolicyRoundRobin    = "round_robin"
	PolicyRandom        = "random"
)

// Config mirrors the dispatcher settings loadable from a YAML file.
type Config struct {
	Workers        int    `yaml:"workers"`          // stealable workers (default: NumCPU)
	Policy         string `yaml:"policy"`           // load_balancing | round_robin | random
	StealBackoffUS int    `yaml:"steal_backoff_us"` // steal back-off in microseconds (default: 1)
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Workers:        runtime.NumCPU(),
		Policy:         PolicyLoadBalancing,
		StealBackoffUS: 1,
	}
}

// LoadConfig reads YAML and overrides defaults; empty path = defaults only.
// Unreadable files and unknown policy names fall back to defaults.
func LoadConfig(path string) Config {
	cfg := DefaultConfig()

	if path == "" {
		return cfg
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg
	}

	_ = yaml.Unmarshal(data, &cfg)

	// sanity clamps
	if cfg.Workers < 0 {
		cfg.Workers = runtime.NumCPU()
	}
	if cfg.StealBackoffUS <= 0 {
		cfg.StealBackoffUS = 1
	}
	if _, ok := policyByName(cfg.Policy); !ok {
		cfg.Policy = PolicyLoadBalancing
	}

	return cfg
}

// stealBackoff converts the configured back-off into a duration.
func (c Config) stealBackoff() time.Duration {
	return time.Duration(c.StealBackoffUS) * time.Microsecond
}
