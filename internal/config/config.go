package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every key when read from the environment,
// e.g. DATAQUALITY_MAX_CATEGORIES.
const EnvPrefix = "DATAQUALITY"

// Global configuration structure.
type Global struct {
	// Analysis
	DateColumn    string `mapstructure:"date_column" yaml:"date_column"`
	MaxCategories int    `mapstructure:"max_categories" yaml:"max_categories" validate:"gt=0"`
	WindowYears   int    `mapstructure:"window_years" yaml:"window_years" validate:"gt=0"`
	HistogramBins int    `mapstructure:"histogram_bins" yaml:"histogram_bins" validate:"gte=0"`

	// Reading
	Delimiter          string   `mapstructure:"delimiter" yaml:"delimiter"`
	DecimalSeparator   string   `mapstructure:"decimal_separator" yaml:"decimal_separator"`
	ThousandsSeparator string   `mapstructure:"thousands_separator" yaml:"thousands_separator"`
	NullValues         []string `mapstructure:"null_values" yaml:"null_values"`
	SplitUnits         bool     `mapstructure:"split_units" yaml:"split_units"`

	// Output
	OutputFormat string `mapstructure:"output_format" yaml:"output_format" validate:"oneof=markdown md json yaml yml"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level" validate:"oneof=trace debug info warn warning error fatal panic"`
	LogFormat    string `mapstructure:"log_format" yaml:"log_format" validate:"oneof=text json"`
}

// Dir returns ~/.dataquality.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve home dir: %w", err)
	}
	return filepath.Join(home, ".dataquality"), nil
}

// Save writes the given configuration to the cfgFile path. If cfgFile is empty,
// it writes to ~/.dataquality/config.yaml, creating the directory if necessary.
func Save(c *Global, cfgFile string) error {
	var path string
	if cfgFile != "" {
		path = cfgFile
	} else {
		dir, err := Dir()
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("mkdir config dir: %w", err)
		}
		path = filepath.Join(dir, "config.yaml")
	}
	b, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal yaml: %w", err)
	}
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// Load loads configuration from file, env, and defaults.
// Precedence: env > config file > defaults. A .env file in the working
// directory is read first; it never overrides variables already set.
func Load(cfgFile string) (*Global, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("date_column", "")
	v.SetDefault("max_categories", 10)
	v.SetDefault("window_years", 10)
	v.SetDefault("histogram_bins", 0)
	v.SetDefault("delimiter", "")
	v.SetDefault("decimal_separator", "")
	v.SetDefault("thousands_separator", "")
	v.SetDefault("null_values", []string{})
	v.SetDefault("split_units", false)
	v.SetDefault("output_format", "markdown")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")

	// Config file; a missing file is not an error.
	if cfgFile != "" {
		if _, err := os.Stat(cfgFile); err == nil {
			v.SetConfigFile(cfgFile)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	} else {
		dir, err := Dir()
		if err != nil {
			return nil, err
		}
		v.AddConfigPath(dir)
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var c Global
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

var validate = func() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}()

// Validate checks value ranges and enumerations.
func (c *Global) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if errors.As(err, &ve) && len(ve) > 0 {
		fe := ve[0]
		return fmt.Errorf("invalid config %s=%v (must satisfy %s %s)", fe.Field(), fe.Value(), fe.Tag(), fe.Param())
	}
	return fmt.Errorf("validate config: %w", err)
}
