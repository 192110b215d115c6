// Package config loads muraje settings from defaults, a YAML file, the
// environment and command-line flags, in increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/conorfennell/muraje/internal/srs"
)

// EnvPrefix is stripped from environment variables before they are mapped to
// config keys: MURAJE_STORAGE_PATH sets storage.path.
const EnvPrefix = "MURAJE_"

// Config is the full application configuration.
type Config struct {
	Storage   StorageConfig   `koanf:"storage"`
	Log       LogConfig       `koanf:"log"`
	Server    ServerConfig    `koanf:"server"`
	Import    ImportConfig    `koanf:"import"`
	Scheduler SchedulerConfig `koanf:"scheduler"`
}

type StorageConfig struct {
	Driver string `koanf:"driver" validate:"required,oneof=sqlite file"`
	Path   string `koanf:"path" validate:"required"`
}

type LogConfig struct {
	Level string `koanf:"level" validate:"required,oneof=debug info warn error"`
}

type ServerConfig struct {
	Addr string `koanf:"addr" validate:"required"`
}

type ImportConfig struct {
	ReposDir string `koanf:"repos_dir" validate:"required"`
}

// SchedulerConfig overrides the review scheduler. Zero keeps the built-in value.
type SchedulerConfig struct {
	EasyMultiplier    float64 `koanf:"easy_multiplier" validate:"gte=0"`
	GoodMultiplier    float64 `koanf:"good_multiplier" validate:"gte=0"`
	HardMultiplier    float64 `koanf:"hard_multiplier" validate:"gte=0"`
	EasyFirstInterval float64 `koanf:"easy_first_interval" validate:"gte=0"`
	GoodFirstInterval float64 `koanf:"good_first_interval" validate:"gte=0"`
	HardFirstInterval float64 `koanf:"hard_first_interval" validate:"gte=0"`
	EaseStep          float64 `koanf:"ease_step" validate:"gte=0"`
}

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"db":        "storage.path",
	"storage":   "storage.driver",
	"log-level": "log.level",
	"addr":      "server.addr",
	"repos-dir": "import.repos_dir",
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{Driver: "sqlite", Path: "muraje.db"},
		Log:     LogConfig{Level: "info"},
		Server:  ServerConfig{Addr: ":8080"},
		Import:  ImportConfig{ReposDir: "repos"},
	}
}

// Load builds the configuration. path may be empty, in which case
// muraje.yaml in the working directory is used if it exists. flags may be nil.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	// .env is optional
	_ = godotenv.Load()

	k := koanf.New(".")

	explicit := path != ""
	if !explicit {
		path = "muraje.yaml"
	}
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if explicit || !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("loading config file %s: %w", path, err)
		}
	}

	err := k.Load(env.ProviderWithValue(EnvPrefix, ".", envKey), nil)
	if err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, flagKey), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	cfg := Default()
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration against its struct tags.
func (c *Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// SlogLevel converts log.level into a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	switch c.Log.Level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Params builds scheduler parameters with the configured overrides applied.
func (s SchedulerConfig) Params() *srs.Params {
	return srs.NewParams(srs.ParamsConfig{
		EasyMultiplier:    s.EasyMultiplier,
		GoodMultiplier:    s.GoodMultiplier,
		HardMultiplier:    s.HardMultiplier,
		EasyFirstInterval: s.EasyFirstInterval,
		GoodFirstInterval: s.GoodFirstInterval,
		HardFirstInterval: s.HardFirstInterval,
		EaseStep:          s.EaseStep,
	})
}

// envKey maps MURAJE_SECTION_SOME_KEY to section.some_key.
func envKey(k, v string) (string, any) {
	k = strings.ToLower(strings.TrimPrefix(k, EnvPrefix))
	section, rest, ok := strings.Cut(k, "_")
	if !ok {
		return k, v
	}
	return section + "." + rest, v
}

// flagKey only passes through flags the user actually set.
func flagKey(f *pflag.Flag) (string, any) {
	key, ok := flagKeys[f.Name]
	if !ok || !f.Changed {
		return "", nil
	}
	return key, f.Value.String()
}
