// =============================================================================
// SAS7BDAT Converter - Conversion Errors
// =============================================================================
//
// This module defines the typed errors returned by the converter.
//
// ERROR TYPES:
//   - UnsupportedExtensionError : destination suffix does not match the format
//   - MissingDependencyError    : an optional encoder backend is not built in
//
// =============================================================================

package converter

import (
	"fmt"
	"strings"
)

// UnsupportedExtensionError reports a destination whose extension does not
// match the target format.
type UnsupportedExtensionError struct {
	// Operation is the conversion name, e.g. "to_csv".
	Operation string

	// Extensions are the accepted extensions.
	Extensions []string

	// Extension is the rejected extension.
	Extension string
}

// Error implements the error interface.
func (e *UnsupportedExtensionError) Error() string {
	exts := strings.Join(e.Extensions, ", ")
	if len(e.Extensions) == 1 {
		return fmt.Sprintf("sas7bdat conversion error - Valid extension for %s conversion is: %s", e.Operation, exts)
	}
	return fmt.Sprintf("sas7bdat conversion error - Valid extensions for %s conversion are: %s", e.Operation, exts)
}

// MissingDependencyError reports an encoder whose optional backend is not available.
type MissingDependencyError struct {
	// Component names the missing backend.
	Component string

	// Format is the target format.
	Format Format

	// Err is the underlying cause.
	Err error
}

// Error implements the error interface.
func (e *MissingDependencyError) Error() string {
	return fmt.Sprintf("The %s is required in order to convert to a %s file", e.Component, e.Format)
}

// Unwrap returns the underlying cause.
func (e *MissingDependencyError) Unwrap() error {
	return e.Err
}
