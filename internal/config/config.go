// =============================================================================
// SAS7BDAT Converter - Configuration Module
// =============================================================================
//
// This module is responsible for loading the application configuration. The
// configuration is optional: every setting has a default, a config file can
// override the defaults, and SAS7BDAT_* environment variables override both.
//
// CONFIGURATION SOURCES (lowest to highest precedence):
//   1. Defaults (SetDefaults)
//   2. Config file (config.yaml, or the file given with --config)
//   3. Environment variables (SAS7BDAT_CONTINUE_ON_ERROR, SAS7BDAT_CSV_DELIMITER, ...)
//
// =============================================================================

package config

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/spf13/viper"
)

// EnvPrefix is the prefix for environment variable overrides.
const EnvPrefix = "SAS7BDAT"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the global application configuration.
type MainConfig struct {
	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// ContinueOnError determines whether batch and directory conversions
	// keep going after a file fails to convert.
	// Default: false
	ContinueOnError bool `mapstructure:"continue_on_error"`

	// Verbose announces each failed file when ContinueOnError is set.
	// Default: true
	Verbose bool `mapstructure:"verbose"`

	// Workers is the number of files converted concurrently in a
	// continue-on-error batch. Fail-fast batches are always sequential.
	// Default: 1
	Workers int `mapstructure:"workers"`

	// ReportDir is where run reports are written when requested.
	// Default: "" (current directory)
	ReportDir string `mapstructure:"report_dir"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `mapstructure:"log_level"`

	// LogFormat selects the log encoder.
	// Valid values: "console", "json"
	// Default: "console"
	LogFormat string `mapstructure:"log_format"`

	// =========================================================================
	// FORMAT SETTINGS
	// =========================================================================

	Source SourceSettings `mapstructure:"source"`
	CSV    CSVSettings    `mapstructure:"csv"`
	JSON   JSONSettings   `mapstructure:"json"`
	XML    XMLSettings    `mapstructure:"xml"`
	XLSX   XLSXSettings   `mapstructure:"xlsx"`
}

// SourceSettings controls how source files are read.
type SourceSettings struct {
	// Encoding is used to decode text cells that are not valid UTF-8.
	// Any WHATWG encoding label is accepted, e.g. "windows-1252", "latin1".
	// Default: "windows-1252"
	Encoding string `mapstructure:"encoding"`
}

// CSVSettings contains settings for writing delimited text.
type CSVSettings struct {
	// Delimiter separates fields. Common values: ",", ";", "|", "\t"
	// Default: ","
	Delimiter string `mapstructure:"delimiter"`
}

// JSONSettings contains settings for writing JSON.
type JSONSettings struct {
	// Orient selects the document layout.
	//   - "columns": {"col": {"0": v, "1": v}}
	//   - "records": [{"col": v}, {"col": v}]
	// Default: "columns"
	Orient string `mapstructure:"orient"`

	// DateFormat selects how temporal cells are written.
	//   - "epoch": milliseconds since the Unix epoch
	//   - "iso":   ISO-8601 text
	// Default: "epoch"
	DateFormat string `mapstructure:"date_format"`
}

// XMLSettings contains the default node names for markup output.
type XMLSettings struct {
	// RootNodeName wraps the whole document.
	// Default: "root"
	RootNodeName string `mapstructure:"root_node_name"`

	// RecordNodeName wraps each row.
	// Default: "item"
	RecordNodeName string `mapstructure:"record_node_name"`
}

// XLSXSettings contains settings for writing workbooks.
type XLSXSettings struct {
	// SheetName is the name of the single data sheet.
	// Default: "Sheet1"
	SheetName string `mapstructure:"sheet_name"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// SetDefaults registers the default value of every setting on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("continue_on_error", false)
	v.SetDefault("verbose", true)
	v.SetDefault("workers", 1)
	v.SetDefault("report_dir", "")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("source.encoding", "windows-1252")
	v.SetDefault("csv.delimiter", ",")
	v.SetDefault("json.orient", "columns")
	v.SetDefault("json.date_format", "epoch")
	v.SetDefault("xml.root_node_name", "root")
	v.SetDefault("xml.record_node_name", "item")
	v.SetDefault("xlsx.sheet_name", "Sheet1")
}

// Default returns the configuration with every default applied.
func Default() *MainConfig {
	v := viper.New()
	SetDefaults(v)

	cfg, err := LoadWithViper(v)
	if err != nil {
		// Defaults alone always unmarshal.
		panic(err)
	}
	return cfg
}

// Load reads the configuration.
//
// PARAMETERS:
//   - configPath: Path to a YAML config file. If empty, "config.yaml" in the
//     current directory is used when it exists; otherwise only defaults and
//     environment variables apply.
//
// RETURNS:
//   - A pointer to the MainConfig struct.
//   - An error if an explicitly named file cannot be read or the result is invalid.
func Load(configPath string) (*MainConfig, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "failed to read config file %s", configPath)
		}
	} else if _, err := os.Stat("config.yaml"); err == nil {
		v.SetConfigFile("config.yaml")
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrap(err, "failed to read config.yaml")
		}
	}

	return LoadWithViper(v)
}

// LoadWithViper unmarshals and validates the configuration held by v.
func LoadWithViper(v *viper.Viper) (*MainConfig, error) {
	var config MainConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal config")
	}

	if err := validateMainConfig(&config); err != nil {
		return nil, errors.Wrap(err, "invalid configuration")
	}

	return &config, nil
}

// validateMainConfig validates the main configuration.
func validateMainConfig(config *MainConfig) error {
	if config.Workers < 1 {
		return errors.Newf("workers must be at least 1, got %d", config.Workers)
	}

	switch strings.ToLower(config.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return errors.Newf("unknown log_level %q", config.LogLevel)
	}

	switch config.LogFormat {
	case "console", "json":
	default:
		return errors.Newf("unknown log_format %q", config.LogFormat)
	}

	if len([]rune(config.CSV.Delimiter)) != 1 {
		// Accept the usual spelled-out tab.
		if config.CSV.Delimiter != `\t` && config.CSV.Delimiter != "tab" {
			return errors.Newf("csv delimiter must be a single character, got %q", config.CSV.Delimiter)
		}
		config.CSV.Delimiter = "\t"
	}

	switch config.JSON.Orient {
	case "columns", "records":
	default:
		return errors.Newf("unknown json orient %q", config.JSON.Orient)
	}

	switch config.JSON.DateFormat {
	case "epoch", "iso":
	default:
		return errors.Newf("unknown json date_format %q", config.JSON.DateFormat)
	}

	if config.XML.RootNodeName == "" || config.XML.RecordNodeName == "" {
		return errors.New("xml node names must not be empty")
	}

	return nil
}
