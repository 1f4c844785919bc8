package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// ConfigPathEnv names an explicit config file, overriding discovery.
const ConfigPathEnv = "FLOWCHECK_CONFIG_PATH"

// EnvPrefix is the prefix for environment variable overrides, e.g.
// FLOWCHECK_GIT_DEFAULT_BRANCH overrides git.default_branch.
const EnvPrefix = "FLOWCHECK"

// Loader handles Viper-based configuration loading.
type Loader struct {
	basePath string
}

// NewLoader creates a [Loader] rooted at basePath. Pass an empty string to
// use the current working directory.
func NewLoader(basePath string) *Loader {
	return &Loader{basePath: basePath}
}

// Load reads configuration with the documented priority order.
//
// The explicitPath parameter (typically from a --config flag) takes
// precedence over FLOWCHECK_CONFIG_PATH and discovery. A missing config
// file is not an error; the defaults are a complete working configuration.
// An explicitly named file that cannot be read IS an error, since the
// operator asked for it.
func (l *Loader) Load(explicitPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path, explicit := l.resolveConfigPath(explicitPath)
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if explicit {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
			// Discovered file that turned out unreadable: fall back to defaults.
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config %s: %w", path, err)
			}
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return cfg, nil
}

// resolveConfigPath finds the config file to load. The second return value
// reports whether the operator named the file explicitly (flag or env), in
// which case read errors must surface instead of silently using defaults.
func (l *Loader) resolveConfigPath(explicitPath string) (string, bool) {
	if explicitPath != "" {
		return explicitPath, true
	}

	if envPath := os.Getenv(ConfigPathEnv); envPath != "" {
		return envPath, true
	}

	candidates := []string{
		filepath.Join(l.basePath, "flowcheck.yaml"),
		filepath.Join(l.basePath, ".flowcheck", "config.yaml"),
	}
	for _, p := range candidates {
		if _, err := os.Stat(p); err == nil {
			return p, false
		}
	}

	// A user-global config applies only when the project carries none.
	if userDir, err := os.UserConfigDir(); err == nil {
		p := filepath.Join(userDir, "flowcheck", "flowcheck.yaml")
		if _, err := os.Stat(p); err == nil {
			return p, false
		}
	}

	return "", false
}
