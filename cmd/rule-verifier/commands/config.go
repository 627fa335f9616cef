package commands

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to configuration keys when read from the environment,
// e.g. RULE_VERIFIER_MODULE.
const EnvPrefix = "RULE_VERIFIER"

// Config holds the settings shared by every command. Values come from flags,
// then RULE_VERIFIER_* environment variables, then the config file.
type Config struct {
	Module         string `mapstructure:"module"`
	LogLevel       string `mapstructure:"log_level"`
	HostModule     string `mapstructure:"host_module"`
	Output         string `mapstructure:"output"`
	MaxPayloadSize uint32 `mapstructure:"max_payload_size"`
	ExplicitLength bool   `mapstructure:"explicit_length"`
}

// flagKeys maps command line flags to configuration keys.
var flagKeys = map[string]string{
	"module":           "module",
	"log-level":        "log_level",
	"host-module":      "host_module",
	"output":           "output",
	"max-payload-size": "max_payload_size",
	"explicit-length":  "explicit_length",
}

// loadConfig resolves the configuration for a command invocation.
func loadConfig(flags *pflag.FlagSet, configFile string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	v.SetDefault("log_level", "info")
	v.SetDefault("output", "text")

	for flag, key := range flagKeys {
		if f := flags.Lookup(flag); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", flag, err)
			}
		}
	}

	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", configFile, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

// Level parses the configured log level.
func (c Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
