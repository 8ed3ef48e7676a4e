// =============================================================================
// SAS7BDAT Converter - Converter Module
// =============================================================================
//
// This module contains the core conversion logic. It converts one source file
// into one destination file, and drives batches and whole directories of such
// conversions.
//
// CONVERSION PIPELINE (single file):
//   1. Normalize the source and destination paths to strings
//   2. Check the destination extension against the target format
//   3. Load the source through the Loader
//   4. Resolve the encoder for the target format
//   5. Encode into a temp file beside the destination and rename it into place
//
// No file is read or written before step 2 passes. Loader errors are returned
// unchanged.
//
// =============================================================================

package converter

import (
	"fmt"
	"io"
	"path/filepath"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"

	"github.com/ginjaninja78/sas7bdat-converter/internal/config"
	"github.com/ginjaninja78/sas7bdat-converter/internal/csvwriter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/jsonwriter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/logger"
	"github.com/ginjaninja78/sas7bdat-converter/internal/parquetwriter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/sasparser"
	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
	"github.com/ginjaninja78/sas7bdat-converter/internal/xlsxwriter"
	"github.com/ginjaninja78/sas7bdat-converter/internal/xmlwriter"
	"github.com/ginjaninja78/sas7bdat-converter/pkg/utils"
)

// =============================================================================
// COLLABORATORS
// =============================================================================

// Loader reads a source file into a table.
type Loader interface {
	Load(path string) (*types.Table, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(path string) (*types.Table, error)

// Load calls f(path).
func (f LoaderFunc) Load(path string) (*types.Table, error) {
	return f(path)
}

// encodeFunc writes a table to w.
type encodeFunc func(w io.Writer, table *types.Table) error

// =============================================================================
// SETTINGS
// =============================================================================

// Settings holds the per-format encoder settings.
type Settings struct {
	CSV  csvwriter.Settings
	JSON jsonwriter.Settings
	XLSX xlsxwriter.Settings

	// XML holds the default node names used when a conversion does not
	// supply its own.
	XML xmlwriter.Options
}

// DefaultSettings returns the default encoder settings.
func DefaultSettings() Settings {
	return Settings{
		CSV:  csvwriter.DefaultSettings(),
		JSON: jsonwriter.DefaultSettings(),
		XLSX: xlsxwriter.DefaultSettings(),
		XML:  xmlwriter.DefaultOptions(),
	}
}

// SettingsFromConfig builds encoder settings from the application configuration.
func SettingsFromConfig(cfg *config.MainConfig) Settings {
	s := DefaultSettings()
	if runes := []rune(cfg.CSV.Delimiter); len(runes) == 1 {
		s.CSV.Delimiter = runes[0]
	}
	s.JSON.Orient = cfg.JSON.Orient
	s.JSON.DateFormat = cfg.JSON.DateFormat
	s.XLSX.SheetName = cfg.XLSX.SheetName
	s.XML.RootNodeName = cfg.XML.RootNodeName
	s.XML.RecordNodeName = cfg.XML.RecordNodeName
	return s
}

// MarkupOptions carries the node names for markup conversions. Empty fields
// take the configured defaults ("root" and "item" unless overridden).
type MarkupOptions struct {
	RootNodeName   string
	RecordNodeName string
}

// =============================================================================
// CONVERTER STRUCTURE
// =============================================================================

// Converter converts SAS source files into the supported target formats.
// A Converter holds no per-call state and is safe for concurrent use.
type Converter struct {
	loader   Loader
	logger   *zap.SugaredLogger
	sink     FailureSink
	settings Settings
}

// Option configures a Converter.
type Option func(*Converter)

// WithLogger sets the logger. The default discards everything.
func WithLogger(log *zap.SugaredLogger) Option {
	return func(c *Converter) {
		if log != nil {
			c.logger = log
		}
	}
}

// WithLoader replaces the source loader.
func WithLoader(loader Loader) Option {
	return func(c *Converter) {
		c.loader = loader
	}
}

// WithFailureSink replaces the diagnostic sink used by verbose
// continue-on-error runs. The default logs a warning.
func WithFailureSink(sink FailureSink) Option {
	return func(c *Converter) {
		c.sink = sink
	}
}

// WithSettings replaces the encoder settings.
func WithSettings(settings Settings) Option {
	return func(c *Converter) {
		c.settings = settings
	}
}

// =============================================================================
// CONSTRUCTOR
// =============================================================================

// New creates a Converter.
//
// RETURNS:
//   - A new Converter. Without WithLoader it reads sources with a
//     sasparser.Parser using default settings.
//   - An error if the default parser cannot be created.
func New(opts ...Option) (*Converter, error) {
	c := &Converter{
		logger:   logger.Nop(),
		settings: DefaultSettings(),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.loader == nil {
		parser, err := sasparser.New(sasparser.DefaultSettings())
		if err != nil {
			return nil, errors.Wrap(err, "failed to create source parser")
		}
		c.loader = parser
	}
	if c.sink == nil {
		c.sink = c.logFailure
	}

	return c, nil
}

// =============================================================================
// SINGLE-FILE CONVERSION
// =============================================================================

// Convert converts source into destination in the given format.
//
// PARAMETERS:
//   - format: The target format.
//   - source: The source path. Strings, named string types and fmt.Stringer
//     values are accepted.
//   - destination: The destination path, accepted like source.
//   - markup: Node names for XML output. May be nil; ignored by other formats.
//
// RETURNS:
//   - *UnsupportedExtensionError if the destination suffix does not match.
//   - The loader's error, unchanged.
//   - *MissingDependencyError if the encoder backend is unavailable.
//   - Any other encoding or file system error.
func (c *Converter) Convert(format Format, source, destination interface{}, markup *MarkupOptions) error {
	spec, err := LookupFormat(string(format))
	if err != nil {
		return err
	}

	src, err := PathString(source)
	if err != nil {
		return err
	}
	dst, err := PathString(destination)
	if err != nil {
		return err
	}

	return c.convert(spec, src, dst, markup)
}

// ToCSV converts source into a .csv file.
func (c *Converter) ToCSV(source, destination interface{}) error {
	return c.Convert(CSV, source, destination, nil)
}

// ToExcel converts source into a .xlsx workbook.
func (c *Converter) ToExcel(source, destination interface{}) error {
	return c.Convert(Excel, source, destination, nil)
}

// ToJSON converts source into a .json document.
func (c *Converter) ToJSON(source, destination interface{}) error {
	return c.Convert(JSON, source, destination, nil)
}

// ToXML converts source into a .xml document.
func (c *Converter) ToXML(source, destination interface{}, markup MarkupOptions) error {
	return c.Convert(XML, source, destination, &markup)
}

// ToParquet converts source into a .parquet file.
func (c *Converter) ToParquet(source, destination interface{}) error {
	return c.Convert(Parquet, source, destination, nil)
}

// convert runs the single-file pipeline on normalized paths.
func (c *Converter) convert(spec FormatSpec, src, dst string, markup *MarkupOptions) error {
	ext := filepath.Ext(dst)
	if !spec.AcceptsExtension(ext) {
		return &UnsupportedExtensionError{Operation: spec.Operation, Extensions: spec.Extensions, Extension: ext}
	}

	start := time.Now()

	table, err := c.loader.Load(src)
	if err != nil {
		return err
	}

	encode, err := c.encoder(spec, markup)
	if err != nil {
		return err
	}

	err = utils.WriteFileAtomic(dst, func(w io.Writer) error {
		return encode(w, table)
	})
	if err != nil {
		return err
	}

	c.logger.Debugw("Converted file",
		logger.FieldFormat, spec.Name,
		logger.FieldSource, src,
		logger.FieldDestination, dst,
		logger.FieldCount, table.RowCount(),
		logger.FieldDurationMS, time.Since(start).Milliseconds(),
	)
	return nil
}

// encoder resolves the encoder for a format.
func (c *Converter) encoder(spec FormatSpec, markup *MarkupOptions) (encodeFunc, error) {
	switch spec.Name {
	case CSV:
		settings := c.settings.CSV
		return func(w io.Writer, t *types.Table) error { return csvwriter.Write(w, t, settings) }, nil

	case Excel:
		settings := c.settings.XLSX
		return func(w io.Writer, t *types.Table) error { return xlsxwriter.Write(w, t, settings) }, nil

	case JSON:
		settings := c.settings.JSON
		return func(w io.Writer, t *types.Table) error { return jsonwriter.Write(w, t, settings) }, nil

	case XML:
		options := c.markupOptions(markup)
		return func(w io.Writer, t *types.Table) error { return xmlwriter.Write(w, t, options) }, nil

	case Parquet:
		if !parquetwriter.Available {
			return nil, &MissingDependencyError{
				Component: parquetwriter.Component,
				Format:    Parquet,
				Err:       parquetwriter.ErrBackendUnavailable,
			}
		}
		return parquetwriter.Write, nil

	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", spec.Name)
	}
}

// markupOptions merges supplied node names over the configured defaults.
func (c *Converter) markupOptions(markup *MarkupOptions) xmlwriter.Options {
	options := c.settings.XML
	if markup != nil {
		if markup.RootNodeName != "" {
			options.RootNodeName = markup.RootNodeName
		}
		if markup.RecordNodeName != "" {
			options.RecordNodeName = markup.RecordNodeName
		}
	}
	return options
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// PathString normalizes a path value to a string. It accepts strings, any
// type whose underlying kind is string, and fmt.Stringer values.
func PathString(v interface{}) (string, error) {
	switch p := v.(type) {
	case string:
		return p, nil
	case fmt.Stringer:
		return p.String(), nil
	case nil:
		return "", errors.New("path must not be nil")
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() == reflect.String {
		return rv.String(), nil
	}
	return "", errors.Newf("path must be a string or path value, got %T", v)
}
