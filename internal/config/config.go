package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"
)

type Config struct {
	System string `yaml:"system"`
	Basis  struct {
		Seed    *uint64 `yaml:"seed"` // nil picks a random seed per run
		Unitary bool    `yaml:"unitary"`
	} `yaml:"basis"`
	Check struct {
		Trials    int     `yaml:"trials"`
		Tolerance float64 `yaml:"tolerance"`
	} `yaml:"check"`
	Storage struct {
		Path string `yaml:"path"`
	} `yaml:"storage"`
	Units struct {
		File string `yaml:"file"` // extra unit definitions
	} `yaml:"units"`
	Log struct {
		Level string `yaml:"level"`
		JSON  bool   `yaml:"json"`
	} `yaml:"log"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	var cfg Config
	cfg.System = "SI"
	cfg.Check.Trials = 3
	cfg.Check.Tolerance = 1e-9
	cfg.Storage.Path = "numbasis.db"
	cfg.Log.Level = "info"
	return &cfg
}

func LoadConfig(path string) (*Config, error) {
	// 1. Load .env if exists
	_ = godotenv.Load()

	// 2. Load YAML config over the defaults; a missing file is not an error
	cfg := Default()
	file, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(file, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// 3. Override with Environment Variables if present
	if seed := os.Getenv("NUMBASIS_SEED"); seed != "" {
		v, err := cast.ToUint64E(seed)
		if err != nil {
			return nil, fmt.Errorf("NUMBASIS_SEED: %w", err)
		}
		cfg.Basis.Seed = &v
	}
	if db := os.Getenv("NUMBASIS_DB"); db != "" {
		cfg.Storage.Path = db
	}
	if units := os.Getenv("NUMBASIS_UNITS"); units != "" {
		cfg.Units.File = units
	}
	if level := os.Getenv("NUMBASIS_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	return cfg, nil
}
