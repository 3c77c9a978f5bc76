// Package config loads sakemonkey settings from an optional YAML file and
// SAKEMONKEY_* environment variables.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/sakemonkey/sakemonkey/internal/formula"
	"github.com/sakemonkey/sakemonkey/internal/sheets"
)

// EnvPrefix prefixes environment overrides: SAKEMONKEY_DATABASE,
// SAKEMONKEY_SHEETS_SPREADSHEET_ID and so on.
const EnvPrefix = "SAKEMONKEY"

// DefaultDatabase is the database path used when none is configured.
const DefaultDatabase = "sakemonkey.db"

// Config is the full set of settings.
type Config struct {
	Database    string      `mapstructure:"database" json:"database" yaml:"database"`
	LogLevel    string      `mapstructure:"log_level" json:"log_level" yaml:"log_level"`
	Calibration Calibration `mapstructure:"calibration" json:"calibration" yaml:"calibration"`
	Dilution    Dilution    `mapstructure:"dilution" json:"dilution" yaml:"dilution"`
	Sheets      Sheets      `mapstructure:"sheets" json:"sheets" yaml:"sheets"`

	// File is the config file that was read, empty when none was.
	File string `mapstructure:"-" json:"file,omitempty" yaml:"-"`
}

// Calibration bounds the temperatures accepted for readings.
type Calibration struct {
	MinTempC float64 `mapstructure:"min_temp_c" json:"min_temp_c" yaml:"min_temp_c"`
	MaxTempC float64 `mapstructure:"max_temp_c" json:"max_temp_c" yaml:"max_temp_c"`
}

// Dilution holds the dilution targets and the gravity tolerance.
type Dilution struct {
	Tolerance float64                  `mapstructure:"tolerance" json:"tolerance" yaml:"tolerance"`
	Targets   []formula.DilutionTarget `mapstructure:"targets" json:"targets" yaml:"targets"`
}

// Sheets configures spreadsheet sync.
type Sheets struct {
	SpreadsheetID string            `mapstructure:"spreadsheet_id" json:"spreadsheet_id" yaml:"spreadsheet_id"`
	Credentials   string            `mapstructure:"credentials" json:"credentials,omitempty" yaml:"credentials,omitempty"`
	Names         sheets.SheetNames `mapstructure:"names" json:"names" yaml:"names"`
}

func setDefaults(v *viper.Viper) {
	limits := formula.DefaultLimits()
	names := sheets.DefaultSheetNames()

	v.SetDefault("database", DefaultDatabase)
	v.SetDefault("log_level", "info")
	v.SetDefault("calibration.min_temp_c", limits.MinTempC)
	v.SetDefault("calibration.max_temp_c", limits.MaxTempC)
	v.SetDefault("dilution.tolerance", formula.DefaultGravityTolerance)
	v.SetDefault("sheets.spreadsheet_id", "")
	v.SetDefault("sheets.credentials", "")
	v.SetDefault("sheets.names.ingredients", names.Ingredients)
	v.SetDefault("sheets.names.starters", names.Starters)
	v.SetDefault("sheets.names.recipe", names.Recipe)
	v.SetDefault("sheets.names.publish_notes", names.PublishNotes)
	v.SetDefault("sheets.names.formulas", names.Formulas)
}

// Load reads configuration. With an explicit path the file must exist;
// otherwise sakemonkey.yaml is looked up in the working directory and then
// the user config directory, and a missing file is not an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("sakemonkey")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if dir, err := os.UserConfigDir(); err == nil {
			v.AddConfigPath(filepath.Join(dir, "sakemonkey"))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}
	cfg.File = v.ConfigFileUsed()
	if len(cfg.Dilution.Targets) == 0 {
		cfg.Dilution.Targets = formula.Presets()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values a config file or the environment could get wrong.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Database) == "" {
		return errors.New("config: database path is empty")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if _, err := c.Evaluator(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	seen := map[string]bool{}
	for _, t := range c.Dilution.Targets {
		key := strings.ToLower(strings.TrimSpace(t.Name))
		switch {
		case key == "":
			return errors.New("config: dilution target without a name")
		case seen[key]:
			return fmt.Errorf("config: duplicate dilution target %q", t.Name)
		case t.Brix <= 0 || t.SG <= 0:
			return fmt.Errorf("config: dilution target %q needs positive brix and sg", t.Name)
		}
		seen[key] = true
	}
	return nil
}

// Evaluator builds the formula evaluator for the configured limits and
// tolerance.
func (c *Config) Evaluator() (*formula.Evaluator, error) {
	return formula.NewEvaluator(
		formula.Limits{MinTempC: c.Calibration.MinTempC, MaxTempC: c.Calibration.MaxTempC},
		formula.WithGravityTolerance(c.Dilution.Tolerance),
	)
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return level, nil
}
