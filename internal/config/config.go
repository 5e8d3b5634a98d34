// Package config loads tada settings from TOML files, the environment and flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Backends understood by the store.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// ProjectFileName is looked up in the working directory.
const ProjectFileName = "tada.toml"

var (
	ErrUnknownBackend  = errors.New("unknown backend")
	ErrUnknownTheme    = errors.New("unknown theme")
	ErrUnknownKey      = errors.New("unknown config key")
	ErrConfigNotFound  = errors.New("config file not found")
	ErrInvalidEnvValue = errors.New("invalid environment value")
)

// Config holds all settings.
type Config struct {
	DataDir  string `toml:"data_dir"`
	Backend  string `toml:"backend"`
	Key      string `toml:"key"`
	Theme    string `toml:"theme"`
	Seed     bool   `toml:"seed"`
	LogLevel string `toml:"log_level"`
	LogFile  string `toml:"log_file"`

	// Sources lists the config files that were applied, in order.
	Sources []string `toml:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Backend:  BackendFile,
		Key:      "todos",
		Theme:    "classic",
		LogLevel: "warn",
	}
}

// Overrides carries flag values; nil pointers were not set on the command line.
type Overrides struct {
	DataDir  *string
	Backend  *string
	Key      *string
	Theme    *string
	Seed     *bool
	LogLevel *string
	LogFile  *string
}

// LoadInput holds the inputs for Load.
type LoadInput struct {
	WorkDir    string            // empty means os.Getwd
	ConfigPath string            // explicit --config file, must exist
	Env        map[string]string // environment variables
	Overrides  Overrides
}

// Load applies, highest last:
//  1. defaults
//  2. user file ($XDG_CONFIG_HOME/tada/config.toml or ~/.config/tada/config.toml)
//  3. project file (./tada.toml)
//  4. explicit --config file
//  5. TADA_* environment variables
//  6. flags
//
// Relative paths are resolved: data_dir against the working directory,
// log_file against data_dir.
func Load(in LoadInput) (Config, error) {
	workDir := in.WorkDir
	if workDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("getwd: %w", err)
		}
		workDir = wd
	}

	cfg := Default()

	if p := userConfigPath(in.Env); p != "" {
		if err := applyFile(&cfg, p, false); err != nil {
			return Config{}, err
		}
	}
	if err := applyFile(&cfg, filepath.Join(workDir, ProjectFileName), false); err != nil {
		return Config{}, err
	}
	if in.ConfigPath != "" {
		p := in.ConfigPath
		if !filepath.IsAbs(p) {
			p = filepath.Join(workDir, p)
		}
		if err := applyFile(&cfg, p, true); err != nil {
			return Config{}, err
		}
	}
	if err := applyEnv(&cfg, in.Env); err != nil {
		return Config{}, err
	}
	applyOverrides(&cfg, in.Overrides)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	if cfg.DataDir == "" {
		cfg.DataDir = workDir
	} else if !filepath.IsAbs(cfg.DataDir) {
		cfg.DataDir = filepath.Join(workDir, cfg.DataDir)
	}
	if cfg.LogFile != "" && !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(cfg.DataDir, cfg.LogFile)
	}
	return cfg, nil
}

// Validate checks enumerated fields.
func (c Config) Validate() error {
	switch c.Backend {
	case BackendFile, BackendSQLite, BackendMemory:
	default:
		return fmt.Errorf("%w: %q (want file, sqlite or memory)", ErrUnknownBackend, c.Backend)
	}
	switch strings.ToLower(c.Theme) {
	case "classic", "neon", "mono":
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTheme, c.Theme)
	}
	if strings.TrimSpace(c.Key) == "" {
		return errors.New("key must not be empty")
	}
	return nil
}

func userConfigPath(env map[string]string) string {
	if x := env["XDG_CONFIG_HOME"]; x != "" {
		return filepath.Join(x, "tada", "config.toml")
	}
	if home := env["HOME"]; home != "" {
		return filepath.Join(home, ".config", "tada", "config.toml")
	}
	return ""
}

func applyFile(cfg *Config, path string, mustExist bool) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			if mustExist {
				return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
			}
			return nil
		}
		return fmt.Errorf("stat %s: %w", path, err)
	}
	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		return fmt.Errorf("loading config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return fmt.Errorf("%w in %s: %s", ErrUnknownKey, path, undecoded[0].String())
	}
	cfg.Sources = append(cfg.Sources, path)
	return nil
}

func applyEnv(cfg *Config, env map[string]string) error {
	if v := env["TADA_DATA_DIR"]; v != "" {
		cfg.DataDir = v
	}
	if v := env["TADA_BACKEND"]; v != "" {
		cfg.Backend = v
	}
	if v := env["TADA_KEY"]; v != "" {
		cfg.Key = v
	}
	if v := env["TADA_THEME"]; v != "" {
		cfg.Theme = v
	}
	if v := env["TADA_SEED"]; v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: TADA_SEED=%q", ErrInvalidEnvValue, v)
		}
		cfg.Seed = b
	}
	if v := env["TADA_LOG_LEVEL"]; v != "" {
		cfg.LogLevel = v
	}
	if v := env["TADA_LOG_FILE"]; v != "" {
		cfg.LogFile = v
	}
	return nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.DataDir != nil {
		cfg.DataDir = *o.DataDir
	}
	if o.Backend != nil {
		cfg.Backend = *o.Backend
	}
	if o.Key != nil {
		cfg.Key = *o.Key
	}
	if o.Theme != nil {
		cfg.Theme = *o.Theme
	}
	if o.Seed != nil {
		cfg.Seed = *o.Seed
	}
	if o.LogLevel != nil {
		cfg.LogLevel = *o.LogLevel
	}
	if o.LogFile != nil {
		cfg.LogFile = *o.LogFile
	}
}
