package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix maps "session.calibration_scale" to HISTOPATH_SESSION_CALIBRATION_SCALE.
const envPrefix = "HISTOPATH"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load reads the YAML file at configPath when it is non-empty, merges
// HISTOPATH_* environment overrides, applies defaults and validates.
func Load(configPath string) (*Config, error) {
	return LoadWith(configPath)
}

// LoadFromEnv builds a Config from defaults and environment variables only.
func LoadFromEnv() (*Config, error) {
	return Load("")
}

// Bind lets a caller override a key, typically from a command-line flag.
type Bind func(v *viper.Viper)

// LoadWith is Load with overrides applied after the file and environment.
func LoadWith(configPath string, binds ...Bind) (*Config, error) {
	v := newViper()
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
		}
	}
	for _, b := range binds {
		b(v)
	}
	return unmarshalAndFinalize(v)
}

// Override returns a Bind that sets key to value.
func Override(key string, value interface{}) Bind {
	return func(v *viper.Viper) { v.Set(key, value) }
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)
	cfg.Recent.Path = ExpandHome(cfg.Recent.Path)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}
	return cfg, nil
}
