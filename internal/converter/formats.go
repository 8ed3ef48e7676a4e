// =============================================================================
// SAS7BDAT Converter - Target Formats
// =============================================================================
//
// This module defines the supported target formats: their accepted
// destination extensions, the extension used when naming directory outputs,
// and which request keys each accepts.
//
// =============================================================================

package converter

import (
	"strings"

	"github.com/cockroachdb/errors"
)

// Format names a target format.
type Format string

// Supported target formats.
const (
	CSV     Format = "csv"
	Excel   Format = "excel"
	JSON    Format = "json"
	XML     Format = "xml"
	Parquet Format = "parquet"
)

// Request keys.
const (
	KeySourcePath      = "sourcePath"
	KeyDestinationPath = "destinationPath"
	KeyRootNodeName    = "rootNodeName"
	KeyRecordNodeName  = "recordNodeName"
)

// RequiredKeys must be present in every batch request.
var RequiredKeys = []string{KeySourcePath, KeyDestinationPath}

// MarkupKeys may additionally be present in markup batch requests.
var MarkupKeys = []string{KeyRootNodeName, KeyRecordNodeName}

// SourceExtensions are the source file extensions picked up by directory conversions.
var SourceExtensions = []string{".sas7bdat", ".xpt"}

// ErrUnknownFormat is returned for a format name that has no FormatSpec.
var ErrUnknownFormat = errors.New("unknown target format")

// FormatSpec describes one target format.
type FormatSpec struct {
	// Name is the format name.
	Name Format

	// Operation names the conversion in extension errors, e.g. "to_csv".
	Operation string

	// Extensions are the accepted destination suffixes (leading dot, case-sensitive).
	Extensions []string

	// Canonical is the extension, without the dot, used to name directory outputs.
	Canonical string

	// AcceptsMarkupOptions reports whether rootNodeName and recordNodeName are allowed.
	AcceptsMarkupOptions bool
}

// OptionalKeys returns the optional request keys for the format.
func (s FormatSpec) OptionalKeys() []string {
	if s.AcceptsMarkupOptions {
		return MarkupKeys
	}
	return nil
}

// AcceptsExtension reports whether ext is one of the accepted extensions.
func (s FormatSpec) AcceptsExtension(ext string) bool {
	for _, e := range s.Extensions {
		if e == ext {
			return true
		}
	}
	return false
}

var formatSpecs = map[Format]FormatSpec{
	CSV:     {Name: CSV, Operation: "to_csv", Extensions: []string{".csv"}, Canonical: "csv"},
	Excel:   {Name: Excel, Operation: "to_excel", Extensions: []string{".xlsx"}, Canonical: "xlsx"},
	JSON:    {Name: JSON, Operation: "to_json", Extensions: []string{".json"}, Canonical: "json"},
	XML:     {Name: XML, Operation: "to_xml", Extensions: []string{".xml"}, Canonical: "xml", AcceptsMarkupOptions: true},
	Parquet: {Name: Parquet, Operation: "to_parquet", Extensions: []string{".parquet"}, Canonical: "parquet"},
}

// Formats returns every supported format in a fixed order.
func Formats() []Format {
	return []Format{CSV, Excel, JSON, XML, Parquet}
}

// LookupFormat returns the FormatSpec for name. Names are case-insensitive
// and "xlsx" is accepted for Excel.
func LookupFormat(name string) (FormatSpec, error) {
	f := Format(strings.ToLower(name))
	if f == "xlsx" {
		f = Excel
	}
	spec, ok := formatSpecs[f]
	if !ok {
		return FormatSpec{}, errors.Wrapf(ErrUnknownFormat, "%q", name)
	}
	return spec, nil
}
