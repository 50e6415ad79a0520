package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Loader provides configuration loading capabilities.
type Loader interface {
	// Load loads configuration from file and environment variables.
	// Priority: defaults → config file → environment variables (env wins)
	Load() (*Config, error)
}

type loader struct {
	rootDir    string
	configFile string
}

// NewLoader creates a loader that looks for .initclean.yml or .initclean.yaml
// in rootDir.
func NewLoader(rootDir string) Loader {
	return &loader{
		rootDir: rootDir,
	}
}

// NewFileLoader creates a loader for an explicit config file. A missing
// file is an error.
func NewFileLoader(path string) Loader {
	return &loader{
		configFile: path,
	}
}

// Load loads configuration with the following priority (highest to lowest):
// 1. Environment variables (INITCLEAN_*)
// 2. Config file
// 3. Default values
func (l *loader) Load() (*Config, error) {
	v := viper.New()

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
	} else {
		v.SetConfigName(".initclean")
		v.SetConfigType("yaml")
		v.AddConfigPath(l.rootDir)
	}

	// Replace . with _ in env var names (e.g., INITCLEAN_RUN_WORKERS)
	v.SetEnvPrefix("INITCLEAN")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.BindEnv("target.basename")
	v.BindEnv("target.ignore")
	v.BindEnv("run.workers")
	v.BindEnv("run.fail_fast")
	v.BindEnv("watch.debounce_ms")

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		// Config file not found is acceptable when searching - we'll use defaults + env vars
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || l.configFile != "" {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setDefaults configures viper with default values.
func setDefaults(v *viper.Viper) {
	defaults := Default()

	v.SetDefault("target.basename", defaults.Target.Basename)
	v.SetDefault("target.ignore", defaults.Target.Ignore)

	v.SetDefault("run.workers", defaults.Run.Workers)
	v.SetDefault("run.fail_fast", defaults.Run.FailFast)

	v.SetDefault("watch.debounce_ms", defaults.Watch.DebounceMS)
}

// LoadConfig is a convenience function that creates a loader and loads config.
// It uses the current working directory as the root.
func LoadConfig() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("failed to get working directory: %w", err)
	}
	return NewLoader(wd).Load()
}
