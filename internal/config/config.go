// Package config loads the twoway YAML configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/chojs23/twoway/internal/merge"
)

// EnvPath names the environment variable that points at a config file.
const EnvPath = "TWOWAY_CONFIG"

var ErrInvalidConfig = errors.New("invalid config")

type Config struct {
	Merge    MergeConfig    `yaml:"merge"`
	Rename   RenameConfig   `yaml:"rename"`
	Snapshot SnapshotConfig `yaml:"snapshot"`
	Log      LogConfig      `yaml:"log"`
	Theme    ThemeConfig    `yaml:"theme"`
}

type MergeConfig struct {
	Operation      string `yaml:"operation" validate:"mergeop"`
	CharOperation  string `yaml:"char_operation" validate:"mergeop"`
	PreferOtherEOL bool   `yaml:"prefer_other_eol"`
	// Backup keeps the previous content of an overwritten file next to it.
	Backup bool `yaml:"backup"`
}

type RenameConfig struct {
	Force bool `yaml:"force"`
}

type SnapshotConfig struct {
	Exclude     []string `yaml:"exclude" validate:"dive,required"`
	SkipContent bool     `yaml:"skip_content"`
}

type LogConfig struct {
	Level      string `yaml:"level" validate:"loglevel"`
	Format     string `yaml:"format" validate:"logformat"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb" validate:"min=1"`
	MaxBackups int    `yaml:"max_backups" validate:"min=0"`
}

// ThemeConfig holds lipgloss colors (ANSI numbers or hex).
type ThemeConfig struct {
	Other   string `yaml:"other_fg" validate:"required"`
	Current string `yaml:"current_fg" validate:"required"`
	Accent  string `yaml:"accent_fg" validate:"required"`
	Muted   string `yaml:"muted_fg" validate:"required"`
}

func Default() Config {
	return Config{
		Merge: MergeConfig{
			Operation:     "both",
			CharOperation: "both",
		},
		Snapshot: SnapshotConfig{
			Exclude: []string{".git", ".twoway*"},
		},
		Log: LogConfig{
			Level:      "warn",
			Format:     "console",
			MaxSizeMB:  10,
			MaxBackups: 3,
		},
		Theme: ThemeConfig{
			Other:   "203",
			Current: "42",
			Accent:  "212",
			Muted:   "241",
		},
	}
}

// Operations parses the configured merge operations.
func (m MergeConfig) Operations() (merge.Operation, merge.Operation, error) {
	op, err := merge.ParseOperation(m.Operation)
	if err != nil {
		return 0, 0, err
	}
	charOp, err := merge.ParseOperation(m.CharOperation)
	if err != nil {
		return 0, 0, err
	}
	return op, charOp, nil
}

// Path picks the config file: the explicit flag value, then $TWOWAY_CONFIG,
// then twoway/config.yaml below the user config directory. explicit reports
// whether the file was asked for and so must exist.
func Path(flag string) (path string, explicit bool) {
	if flag != "" {
		return flag, true
	}
	if env := os.Getenv(EnvPath); env != "" {
		return env, true
	}
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", false
	}
	return filepath.Join(dir, "twoway", "config.yaml"), false
}

// Load reads the config file chosen by Path. A missing default file yields
// Default().
func Load(flag string) (Config, error) {
	cfg := Default()
	path, explicit := Path(flag)
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && !explicit {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	if err := Validate(cfg); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Validate(cfg Config) error {
	validate := validator.New()

	_ = validate.RegisterValidation("mergeop", func(fl validator.FieldLevel) bool {
		_, err := merge.ParseOperation(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("loglevel", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "trace", "debug", "info", "warn", "error", "disabled":
			return true
		}
		return false
	})
	_ = validate.RegisterValidation("logformat", func(fl validator.FieldLevel) bool {
		switch strings.ToLower(fl.Field().String()) {
		case "console", "json":
			return true
		}
		return false
	})

	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s fails %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(msgs, "; "))
		}
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	return nil
}
