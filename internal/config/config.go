// Package config provides configuration loading and validation for the CLI.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the CLI reads.
const EnvPrefix = "SUBFIX"

// DefaultTimezone is the zone due dates are read in when none is configured.
const DefaultTimezone = "America/New_York"

// Config represents the CLI configuration that can be loaded from a YAML,
// JSON or TOML file and SUBFIX_* environment variables.
// All fields are optional; CLI flags override whatever is set here.
type Config struct {
	// Paths
	Path   string `mapstructure:"path"`   // Destination directory
	Filter string `mapstructure:"filter"` // ;-delimited file of students to extract
	Report string `mapstructure:"report" validate:"omitempty,report_ext"`

	// Selection
	Section string `mapstructure:"section"` // Canvas roster section; wins over Filter

	// Lateness
	Due      string `mapstructure:"due"`      // mm/dd/yy hh:mm in Timezone
	Timezone string `mapstructure:"timezone"` // IANA zone name

	// Behavior
	Flatten    string `mapstructure:"flatten" validate:"omitempty,oneofci=none one all 0 1"`
	Move       bool   `mapstructure:"move"`
	RenderText bool   `mapstructure:"render_text"`
	AssumeYes  bool   `mapstructure:"assume_yes"`

	// Output
	DatabaseURL string `mapstructure:"database_url" validate:"omitempty,startswith=postgres"`
	LogLevel    string `mapstructure:"log_level" validate:"omitempty,oneofci=debug info warn warning error"`
	PrettyLog   bool   `mapstructure:"pretty_log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("path", "")
	v.SetDefault("filter", "")
	v.SetDefault("report", "")
	v.SetDefault("section", "")
	v.SetDefault("due", "")
	v.SetDefault("timezone", DefaultTimezone)
	v.SetDefault("flatten", "none")
	v.SetDefault("move", false)
	v.SetDefault("render_text", false)
	v.SetDefault("assume_yes", false)
	v.SetDefault("database_url", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("pretty_log", true)
}

// LoadConfig reads defaults, an optional config file and SUBFIX_* environment
// variables, in increasing priority. An empty path skips the file.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		// Resolve path relative to current directory if not absolute
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}
		if _, err := os.Stat(path); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

var validate = newValidator()

func newValidator() *validator.Validate {
	val := validator.New()
	val.RegisterTagNameFunc(func(f reflect.StructField) string {
		return f.Tag.Get("mapstructure")
	})
	_ = val.RegisterValidation("report_ext", func(fl validator.FieldLevel) bool {
		ext := strings.ToLower(filepath.Ext(fl.Field().String()))
		return ext == ".csv" || ext == ".json"
	})
	// oneofci is oneof ignoring case and surrounding space.
	_ = val.RegisterValidation("oneofci", func(fl validator.FieldLevel) bool {
		value := strings.ToLower(strings.TrimSpace(fl.Field().String()))
		for _, allowed := range strings.Fields(fl.Param()) {
			if value == allowed {
				return true
			}
		}
		return false
	})
	return val
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those depend on the
// subcommand and are handled by cobra's argument validation.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fmt.Errorf("config error: '%s' %s", verrs[0].Field(), describe(verrs[0]))
		}
		return fmt.Errorf("config error: %w", err)
	}

	if c.Filter != "" {
		if _, err := os.Stat(c.Filter); os.IsNotExist(err) {
			return fmt.Errorf("config error: filter file not found: %s", c.Filter)
		}
	}
	if c.Due != "" && len(strings.Fields(c.Due)) != 2 {
		return fmt.Errorf("config error: 'due' must look like mm/dd/yy hh:mm")
	}

	return nil
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "oneof", "oneofci":
		return "must be one of: " + fe.Param()
	case "report_ext":
		return "must end in .csv or .json"
	case "startswith":
		return "must be a postgres:// URL"
	default:
		return "failed " + fe.Tag()
	}
}

// MergeWithDefaults returns a new Config with empty string fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.Path == "" {
		result.Path = defaults.Path
	}
	if result.Filter == "" {
		result.Filter = defaults.Filter
	}
	if result.Report == "" {
		result.Report = defaults.Report
	}
	if result.Section == "" {
		result.Section = defaults.Section
	}
	if result.Due == "" {
		result.Due = defaults.Due
	}
	if result.Timezone == "" {
		if defaults.Timezone != "" {
			result.Timezone = defaults.Timezone
		} else {
			result.Timezone = DefaultTimezone
		}
	}
	if result.Flatten == "" {
		result.Flatten = defaults.Flatten
	}
	if result.DatabaseURL == "" {
		result.DatabaseURL = defaults.DatabaseURL
	}
	if result.LogLevel == "" {
		result.LogLevel = defaults.LogLevel
	}

	// Bool fields: cannot distinguish unset from false, so we don't merge
	// (CLI flags should always win for bools)

	return result
}
