// Package config loads the engine's session configuration: where the
// fault catalogue lives, whether fault collection starts enabled (the
// -fi flag's persisted default), and log file locations. This is
// distinct from the XML fault catalogue itself (internal/catalog).
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the engine's session configuration, normally loaded from
// a YAML file alongside the guest image.
type Config struct {
	// CataloguePath is the XML fault catalogue loaded at startup.
	CataloguePath string `yaml:"catalogue_path"`

	// CollectFaults is the persisted default of the -fi CLI flag. No
	// command reads it: the hook evaluates the catalogue whether it
	// is set or not.
	CollectFaults bool `yaml:"collect_faults"`

	// Debug enables verbose (development-mode) logging.
	Debug bool `yaml:"debug"`

	Logs LogPaths `yaml:"logs"`
}

// LogPaths names the collector/profiler log files the engine's
// collaborating components write to.
type LogPaths struct {
	Collector        string `yaml:"collector"`
	MemoryAccesses   string `yaml:"memory_accesses"`
	RegisterAccesses string `yaml:"register_accesses"`
	Debug            string `yaml:"debug"`
}

// Default returns the configuration used when no file is supplied.
func Default() Config {
	return Config{
		CollectFaults: false,
		Logs: LogPaths{
			Collector:        "fies.log",
			MemoryAccesses:   "fies-memory-accesses",
			RegisterAccesses: "fies-register-accesses",
			Debug:            "fies-debuglog",
		},
	}
}

// Load reads and parses a YAML configuration file, applying Default's
// log paths for anything left unset.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}
	return cfg, nil
}
