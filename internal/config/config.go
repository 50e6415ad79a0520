package config

// Config represents the complete initclean configuration.
// It can be loaded from .initclean.yml with environment variable overrides.
type Config struct {
	Target TargetConfig `yaml:"target" mapstructure:"target"`
	Run    RunConfig    `yaml:"run" mapstructure:"run"`
	Watch  WatchConfig  `yaml:"watch" mapstructure:"watch"`
}

// TargetConfig defines which files are cleaned.
type TargetConfig struct {
	Basename string   `yaml:"basename" mapstructure:"basename"` // exact file name to clean, e.g. "__init__.py"
	Ignore   []string `yaml:"ignore" mapstructure:"ignore"`     // glob patterns (relative to each root) to skip
}

// RunConfig controls how a batch of files is processed.
type RunConfig struct {
	Workers  int  `yaml:"workers" mapstructure:"workers"`     // parallel files; 0 means one per CPU
	FailFast bool `yaml:"fail_fast" mapstructure:"fail_fast"` // stop dispatching after the first failure
}

// WatchConfig controls watch mode.
type WatchConfig struct {
	DebounceMS int `yaml:"debounce_ms" mapstructure:"debounce_ms"` // quiet period before re-cleaning
}

// DefaultBasename is the package entry-point file name.
const DefaultBasename = "__init__.py"

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Target: TargetConfig{
			Basename: DefaultBasename,
			Ignore: []string{
				".git/**",
				"**/.venv/**",
				"**/venv/**",
				"**/node_modules/**",
				"**/__pycache__/**",
				"**/site-packages/**",
			},
		},
		Run: RunConfig{
			Workers:  0,
			FailFast: false,
		},
		Watch: WatchConfig{
			DebounceMS: 500,
		},
	}
}
