package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// Load resolves configuration from args with the following precedence:
// 1. Command line flags
// 2. Environment variables (SQLFORGE_ prefix)
// 3. Config file (--config, or sqlforge.yaml in the working directory)
// 4. Default values
//
// args is the command line without the program name, usually os.Args[1:].
func Load(args []string) (*Config, error) {
	flags := pflag.NewFlagSet("sqlforge", pflag.ContinueOnError)
	defineFlags(flags)
	if err := flags.Parse(args); err != nil {
		return nil, err
	}
	return loadWithFlags(flags)
}

func defineFlags(flags *pflag.FlagSet) {
	flags.String("config", "", "Path to config file")
	flags.String("table", "", "Target table name")
	flags.StringSlice("columns", nil, "Explicit column names (default: inferred from the first record)")
	flags.StringSlice("exclude", nil, "Column names to exclude")
	flags.Bool("batch", false, "Emit a single multi-row statement")
	flags.Bool("capitalize", false, "Upper-case statement keywords")
	flags.Bool("null-missing", false, "Insert NULL for absent fields instead of failing")
	flags.String("input", "-", "Records source: file path or - for stdin")
	flags.String("format", "json", "Input encoding: json or ndjson")
	flags.String("log-level", "info", "Log level: debug, info, warn, error")
	flags.String("log-format", "text", "Log format: text or json")
}

func loadWithFlags(flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	// --- Config file ---
	cfgPath, _ := flags.GetString("config")
	if cfgPath != "" {
		v.SetConfigFile(cfgPath)
	} else {
		v.SetConfigName("sqlforge")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		if cfgPath != "" {
			return nil, fmt.Errorf("failed to read config file %q: %w", cfgPath, err)
		}
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// --- Environment variables ---
	// Canonical keys: dot + snake_case. Env vars: SQLFORGE_LOG_LEVEL
	v.SetEnvPrefix("SQLFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	// --- Flags (highest priority) ---
	bindChangedFlagsToViper(v, flags)

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("table", "")
	v.SetDefault("columns", []string{})
	v.SetDefault("exclude", []string{})
	v.SetDefault("batch", false)
	v.SetDefault("capitalize", false)
	v.SetDefault("null_missing", false)
	v.SetDefault("input", "-")
	v.SetDefault("format", "json")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// bindChangedFlagsToViper copies only explicitly-set flags into Viper,
// preserving precedence: flags > env > file > defaults.
func bindChangedFlagsToViper(v *viper.Viper, flags *pflag.FlagSet) {
	flags.Visit(func(f *pflag.Flag) {
		if f.Name == "config" {
			return
		}

		key := flagKey(f.Name)
		switch f.Value.Type() {
		case "string":
			val, _ := flags.GetString(f.Name)
			v.Set(key, val)
		case "bool":
			val, _ := flags.GetBool(f.Name)
			v.Set(key, val)
		case "stringSlice":
			val, _ := flags.GetStringSlice(f.Name)
			v.Set(key, val)
		default:
			v.Set(key, f.Value.String())
		}
	})
}

// flagKey maps flag names to viper keys: log-level -> log.level,
// null-missing -> null_missing.
func flagKey(name string) string {
	switch name {
	case "log-level":
		return "log.level"
	case "log-format":
		return "log.format"
	case "null-missing":
		return "null_missing"
	default:
		return name
	}
}
