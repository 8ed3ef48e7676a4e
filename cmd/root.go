// =============================================================================
// SAS7BDAT Converter - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (converter)
//   ├── convertCmd (converter convert)
//   ├── batchCmd   (converter batch)
//   ├── dirCmd     (converter dir)
//   └── versionCmd (converter version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose)
//   2. Loading the configuration through viper
//   3. Setting up logging
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"

	"github.com/ginjaninja78/sas7bdat-converter/internal/config"
	"github.com/ginjaninja78/sas7bdat-converter/internal/converter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/logger"
	"github.com/ginjaninja78/sas7bdat-converter/internal/sasparser"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// cfgFile holds the path to the configuration file.
// When empty, config.yaml in the current directory is used if present.
var cfgFile string

// verbose enables debug logging when set to true.
var verbose bool

// cfg is the configuration loaded before every command runs.
var cfg *config.MainConfig

// log is the logger built from cfg.
var log = logger.Nop()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "converter",
	Short: "SAS7BDAT Converter - Convert SAS data files to CSV, Excel, JSON, XML and Parquet",
	Long: `SAS7BDAT Converter converts SAS binary tables (.sas7bdat) into common
interchange formats: csv, excel (.xlsx), json, xml and parquet.

Key Features:
  - Single-file, batch (YAML job list) and whole-directory conversion
  - Fail-fast by default, or continue past failures with --continue-on-error
  - Atomic writes: a failed conversion never leaves a partial file behind
  - Optional YAML run reports

Example Usage:
  converter convert csv data/people.sas7bdat out/people.csv
  converter convert xml data/people.sas7bdat out/people.xml --root-node people
  converter batch json jobs.yaml --continue-on-error
  converter dir excel ./data ./exports --report`,

	SilenceUsage:  true,
	SilenceErrors: true,

	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},

	Run: func(cmd *cobra.Command, args []string) {
		// If no subcommand is provided, print the help message.
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and runs it.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	_ = log.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

// init sets up the global flags.
func init() {
	rootCmd.PersistentFlags().StringVar(
		&cfgFile,
		"config",
		"",
		"Path to the configuration file (default is ./config.yaml when present)",
	)

	rootCmd.PersistentFlags().BoolVarP(
		&verbose,
		"verbose",
		"v",
		false,
		"Enable debug logging",
	)
}

// initConfig loads the configuration and builds the logger.
func initConfig() error {
	loaded, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	cfg = loaded

	level := cfg.LogLevel
	if verbose {
		level = "debug"
	}

	built, err := logger.New(level, cfg.LogFormat)
	if err != nil {
		return errors.Wrap(err, "failed to initialize logger")
	}
	log = built
	log.Debugw("Configuration loaded", "config", cfgFile, "workers", cfg.Workers)
	return nil
}

// newConverter builds a converter from the loaded configuration.
func newConverter() (*converter.Converter, *sasparser.Parser, error) {
	settings := sasparser.DefaultSettings()
	settings.Encoding = cfg.Source.Encoding

	parser, err := sasparser.New(settings)
	if err != nil {
		return nil, nil, err
	}

	conv, err := converter.New(
		converter.WithLoader(parser),
		converter.WithLogger(log),
		converter.WithSettings(converter.SettingsFromConfig(cfg)),
	)
	if err != nil {
		return nil, nil, err
	}
	return conv, parser, nil
}
