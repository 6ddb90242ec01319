package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"

	apperrors "wdicli/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Input   InputConfig   `yaml:"input" envconfig:"INPUT"`
	Export  ExportConfig  `yaml:"export" envconfig:"EXPORT"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Paths   PathsConfig   `yaml:"paths" envconfig:"PATHS"`
}

// InputConfig describes the source dataset and how its columns are found.
// The column settings are match-substrings, not exact names: the first
// header cell containing the substring takes the role.
type InputConfig struct {
	MainFile            string   `yaml:"main_file" envconfig:"MAIN_FILE" validate:"required"`
	MetadataFile        string   `yaml:"metadata_file" envconfig:"METADATA_FILE"`
	EntityColumn        string   `yaml:"entity_column" envconfig:"ENTITY_COLUMN" validate:"required"`
	IndicatorColumn     string   `yaml:"indicator_column" envconfig:"INDICATOR_COLUMN" validate:"required"`
	IndicatorNameColumn string   `yaml:"indicator_name_column" envconfig:"INDICATOR_NAME_COLUMN"`
	MetadataAttributes  []string `yaml:"metadata_attributes" envconfig:"METADATA_ATTRIBUTES"`
}

// ExportConfig controls workbook pagination and output targets
type ExportConfig struct {
	OutputFile       string `yaml:"output_file" envconfig:"OUTPUT_FILE" validate:"required"`
	RowsPerSheet     int    `yaml:"rows_per_sheet" envconfig:"ROWS_PER_SHEET" validate:"min=1,max=1048575"`
	SplitByIndicator bool   `yaml:"split_by_indicator" envconfig:"SPLIT_BY_INDICATOR"`
	CSVSidecar       bool   `yaml:"csv_sidecar" envconfig:"CSV_SIDECAR"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=stdout file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system path configuration. BaseDir defaults to
// the executable directory when empty; the other entries are resolved
// relative to it unless absolute.
type PathsConfig struct {
	BaseDir   string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir   string `yaml:"data_dir" envconfig:"DATA_DIR" validate:"required"`
	OutputDir string `yaml:"output_dir" envconfig:"OUTPUT_DIR" validate:"required"`
	LogsDir   string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// EnvPrefix is the prefix for all environment variable overrides,
// e.g. WDI_EXPORT_ROWS_PER_SHEET.
const EnvPrefix = "WDI"

// Load builds the configuration with precedence env > YAML file > defaults.
// configFile may be empty, in which case common locations are searched.
// A .env file next to the process is honored when present.
func Load(configFile string) (*Config, error) {
	// Best effort; a missing .env file is the normal case
	_ = godotenv.Load()

	cfg := Default()

	if configFile == "" {
		configFile = findConfigFile()
	}
	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file %s: %w", configFile, err)
		}
	}

	// envconfig only touches fields whose variables are actually set, so
	// file values survive unless explicitly overridden
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// loadFromFile overlays configuration from a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// findConfigFile returns the first config file found in common locations
func findConfigFile() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars and defaults only
}

// Validate checks the configuration against its struct constraints
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return apperrors.ConfigInvalid(err)
	}
	return nil
}

// Default returns the default configuration
func Default() *Config {
	return &Config{
		Input: InputConfig{
			MainFile:            "data_main.csv",
			MetadataFile:        "data_country.csv",
			EntityColumn:        "Country Code",
			IndicatorColumn:     "Indicator Code",
			IndicatorNameColumn: "Indicator Name",
			MetadataAttributes:  []string{"Income Group"},
		},
		Export: ExportConfig{
			OutputFile: "global_indicator_output.xlsx",
			// Excel's sheet limit is 1,048,576 rows; one is reserved
			// for the header
			RowsPerSheet:     1048575,
			SplitByIndicator: true,
			CSVSidecar:       false,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "both",
			FilePath: "logs/reshape.log",
		},
		Paths: PathsConfig{
			DataDir:   "data",
			OutputDir: "output",
			LogsDir:   "logs",
		},
	}
}
