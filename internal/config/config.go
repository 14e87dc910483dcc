// Package config loads cmd/typeforge's runtime configuration: a verbose
// logging switch, a common-superclass policy switch, and a protocol-cache
// size hint. Of these only Verbose has an effect (it selects the CLI's log
// level). It is pure CLI ambient stack — the matcher package never reads
// it.
package config

import (
	"os"
	"strings"

	"github.com/pkg/errors"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config is the resolved set of CLI-level tunables, backed by a
// typeforge.yaml file, environment variables (TYPEFORGE_*), and flags.
type Config struct {
	// Verbose switches the CLI logger to debug level.
	Verbose bool `mapstructure:"verbose" yaml:"verbose"`
	// EnforceCommonSuperclass is loaded and written like the other keys,
	// but nothing reads it: the matcher always applies the
	// common-superclass policy.
	EnforceCommonSuperclass bool `mapstructure:"enforce_common_superclass" yaml:"enforce_common_superclass"`
	// ProtocolCacheSizeHint is loaded and written like the other keys, but
	// nothing reads or logs it; the matcher's protocol cache is unbounded
	// by design (§5: scoped to one top-level call).
	ProtocolCacheSizeHint int `mapstructure:"protocol_cache_size_hint" yaml:"protocol_cache_size_hint"`
}

// Default returns the configuration used when no file or flags override
// it.
func Default() Config {
	return Config{
		Verbose:                 false,
		EnforceCommonSuperclass: true,
		ProtocolCacheSizeHint:   256,
	}
}

// Load reads typeforge.yaml (if present) from cfgFile or the current
// directory, layering environment variables and the viper instance's
// already-bound flags on top.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	cfg := Default()
	v.SetDefault("verbose", cfg.Verbose)
	v.SetDefault("enforce_common_superclass", cfg.EnforceCommonSuperclass)
	v.SetDefault("protocol_cache_size_hint", cfg.ProtocolCacheSizeHint)

	v.SetEnvPrefix("typeforge")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("typeforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return cfg, errors.Wrap(err, "reading typeforge config")
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, errors.Wrap(err, "decoding typeforge config")
	}
	return cfg, nil
}

// WriteDefault scaffolds a commented-free typeforge.yaml at path holding
// Default()'s values, for `typeforge config init`. Marshaled directly with
// yaml.v3 rather than through viper, since viper has no write-a-fresh-file
// path that doesn't first require an existing config to merge onto.
func WriteDefault(path string) error {
	out, err := yaml.Marshal(Default())
	if err != nil {
		return errors.Wrap(err, "marshaling default typeforge config")
	}
	if err := os.WriteFile(path, out, 0o644); err != nil {
		return errors.Wrap(err, "writing typeforge config")
	}
	return nil
}
