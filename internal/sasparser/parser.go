// =============================================================================
// SAS7BDAT Converter - Source Parser Module
// =============================================================================
//
// This module reads SAS source files into the shared in-memory table. The
// binary format work is done by github.com/kshedden/datareader; this module
// only adapts its column series to types.Table.
//
// SUPPORTED SOURCES:
//   - .sas7bdat  read with datareader.NewSAS7BDATReader
//   - .xpt       no reader registered; fails with ErrUnsupportedFormat
//
// TEXT DECODING:
//   Text cells that are valid UTF-8 pass through untouched. Anything else is
//   decoded with the configured fallback encoding (default windows-1252).
//
// =============================================================================

package sasparser

import (
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/cockroachdb/errors"
	"github.com/kshedden/datareader"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/ginjaninja78/sas7bdat-converter/internal/types"
)

// ErrUnsupportedFormat is returned for source files that have no registered reader.
var ErrUnsupportedFormat = errors.New("unsupported source format")

// chunkRows is the number of rows requested from the reader per call.
var chunkRows = 10000

// =============================================================================
// PARSER SETTINGS
// =============================================================================

// Settings controls how source files are read.
type Settings struct {
	// Encoding is the fallback label for text that is not valid UTF-8.
	// Default: "windows-1252"
	Encoding string

	// TrimStrings removes the fixed-width padding SAS stores with text values.
	// Default: true
	TrimStrings bool

	// ConvertDates turns columns with SAS date formats into temporal columns.
	// Default: true
	ConvertDates bool
}

// DefaultSettings returns the default parser settings.
func DefaultSettings() Settings {
	return Settings{
		Encoding:     "windows-1252",
		TrimStrings:  true,
		ConvertDates: true,
	}
}

// ReadFunc reads an opened source file into a table.
type ReadFunc func(r io.ReadSeeker, settings Settings) (*types.Table, error)

// =============================================================================
// PARSER
// =============================================================================

// Parser loads source files by extension.
type Parser struct {
	settings Settings
	fallback encoding.Encoding
	readers  map[string]ReadFunc
}

// New creates a parser with the built-in readers registered.
//
// RETURNS:
//   - The parser.
//   - An error if the fallback encoding label is unknown.
func New(settings Settings) (*Parser, error) {
	if settings.Encoding == "" {
		settings.Encoding = DefaultSettings().Encoding
	}

	enc, err := htmlindex.Get(settings.Encoding)
	if err != nil {
		return nil, errors.Wrapf(err, "unknown source encoding %q", settings.Encoding)
	}

	p := &Parser{
		settings: settings,
		fallback: enc,
		readers:  make(map[string]ReadFunc),
	}
	p.Register(".sas7bdat", ReadSAS7BDAT)
	return p, nil
}

// Register installs the reader for a source extension (leading dot).
// Extensions are matched case-insensitively.
func (p *Parser) Register(ext string, fn ReadFunc) {
	p.readers[strings.ToLower(ext)] = fn
}

// Supports reports whether a reader is registered for the path's extension.
func (p *Parser) Supports(path string) bool {
	_, ok := p.readers[strings.ToLower(filepath.Ext(path))]
	return ok
}

// Load implements the converter's loader contract.
func (p *Parser) Load(path string) (*types.Table, error) {
	return p.Parse(path)
}

// Parse reads the source file at path.
//
// PARAMETERS:
//   - path: Path to a .sas7bdat or .xpt file.
//
// RETURNS:
//   - The parsed table, with text cells decoded to UTF-8.
//   - *fs.PathError if the file cannot be opened.
//   - ErrUnsupportedFormat if no reader handles the extension.
//   - Any error the reader reports.
func (p *Parser) Parse(path string) (*types.Table, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(path))
	read, ok := p.readers[ext]
	if !ok {
		return nil, errors.Wrapf(ErrUnsupportedFormat, "no reader for %q files", ext)
	}

	table, err := read(file, p.settings)
	if err != nil {
		return nil, err
	}

	if err := p.decodeText(table); err != nil {
		return nil, errors.Wrapf(err, "failed to decode text in %s", path)
	}
	return table, nil
}

// decodeText converts every text cell that is not valid UTF-8.
// Decoders are stateful, so each call gets its own.
func (p *Parser) decodeText(table *types.Table) error {
	decoder := p.fallback.NewDecoder()
	for _, col := range table.Columns {
		if col.Type != types.Text {
			continue
		}
		for i, v := range col.Values {
			s, ok := v.(string)
			if !ok || utf8.ValidString(s) {
				continue
			}
			decoded, err := decoder.String(s)
			if err != nil {
				return err
			}
			col.Values[i] = decoded
		}
	}
	return nil
}

// =============================================================================
// SAS7BDAT READER
// =============================================================================

// ReadSAS7BDAT reads a SAS binary table file.
func ReadSAS7BDAT(r io.ReadSeeker, settings Settings) (*types.Table, error) {
	reader, err := datareader.NewSAS7BDATReader(r)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sas7bdat file")
	}
	reader.TrimStrings = settings.TrimStrings
	reader.ConvertDates = settings.ConvertDates

	names := reader.ColumnNames()
	table := &types.Table{Columns: make([]types.Column, len(names))}
	for i, name := range names {
		table.Columns[i].Name = name
	}

	typed := make([]bool, len(names))
	for {
		chunk, err := reader.Read(chunkRows)
		if err != nil && err != io.EOF {
			return nil, errors.Wrap(err, "failed to read sas7bdat rows")
		}
		if len(chunk) == 0 {
			break
		}

		for i, series := range chunk {
			if i >= len(table.Columns) || series == nil {
				continue
			}
			if err := AppendValues(&table.Columns[i], series.Data(), series.Missing(), !typed[i]); err != nil {
				return nil, errors.Wrapf(err, "column %s", names[i])
			}
			typed[i] = true
		}

		if err == io.EOF {
			break
		}
	}

	return table, nil
}

// AppendValues appends one chunk of column data to col.
//
// PARAMETERS:
//   - col: The column being built.
//   - data: []float64, []string or []time.Time.
//   - missing: Per-row missing flags; may be nil.
//   - setType: Whether this chunk decides the column type.
//
// Numeric NaN values are treated as missing.
func AppendValues(col *types.Column, data interface{}, missing []bool, setType bool) error {
	isMissing := func(i int) bool {
		return i < len(missing) && missing[i]
	}

	switch d := data.(type) {
	case []float64:
		if setType {
			col.Type = types.Numeric
		}
		for i, v := range d {
			if isMissing(i) || math.IsNaN(v) {
				col.Values = append(col.Values, nil)
				continue
			}
			col.Values = append(col.Values, v)
		}

	case []string:
		if setType {
			col.Type = types.Text
		}
		for i, v := range d {
			if isMissing(i) {
				col.Values = append(col.Values, nil)
				continue
			}
			col.Values = append(col.Values, v)
		}

	case []time.Time:
		if setType {
			col.Type = types.Temporal
		}
		for i, v := range d {
			if isMissing(i) || v.IsZero() {
				col.Values = append(col.Values, nil)
				continue
			}
			col.Values = append(col.Values, v)
		}

	default:
		return errors.Newf("unsupported column data %T", data)
	}

	return nil
}
