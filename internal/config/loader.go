package config

import (
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"

	"github.com/turtacn/funcgroup/pkg/errors"
)

// envPrefix is the environment variable prefix of every setting.
const envPrefix = "IFG"

// newViper builds a Viper instance with YAML file type, the IFG_ env prefix
// and a "." → "_" key replacer, so "matching.max_depth" resolves to
// IFG_MATCHING_MAX_DEPTH.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	registerDefaults(v)
	return v
}

// Load reads the YAML file at configPath, merges IFG_* environment overrides,
// applies defaults and validates the result.  An empty configPath loads from
// the environment alone.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		return LoadFromEnv()
	}
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeValidation, "failed to read config file").
			WithDetailf("path=%s", configPath)
	}
	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config from IFG_* environment variables and defaults.
//
//	IFG_<SECTION>_<FIELD>   e.g.  IFG_MATCHING_MAX_DEPTH, IFG_CACHE_ADDR
func LoadFromEnv() (*Config, error) {
	return unmarshalAndFinalize(newViper())
}

func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeSerialization, "failed to unmarshal configuration")
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watch re-reads configPath whenever it is written and hands the new Config
// to onChange.  Invalid intermediate states are passed to onError, if set,
// and otherwise ignored.  It returns the error of the initial read; the
// watcher runs on a viper-managed goroutine.
func Watch(configPath string, onChange func(*Config), onError func(error)) error {
	v := newViper()
	v.SetConfigFile(configPath)
	if err := v.ReadInConfig(); err != nil {
		return errors.Wrap(err, errors.ErrCodeValidation, "failed to read config file").
			WithDetailf("path=%s", configPath)
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		cfg, err := unmarshalAndFinalize(v)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
	return nil
}

// MustLoad wraps Load and panics on any error.  Intended for main().
func MustLoad(configPath string) *Config {
	cfg, err := Load(configPath)
	if err != nil {
		panic("config: MustLoad failed: " + err.Error())
	}
	return cfg
}
