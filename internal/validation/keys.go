// =============================================================================
// SAS7BDAT Converter - Request Key Validation
// =============================================================================
//
// This module checks the key set of a batch request mapping before any file
// is touched. A request is valid when:
//   - every required key is present, and
//   - without optional keys: nothing else is present
//   - with optional keys: every extra key is one of them (none is fine)
//
// ERROR HANDLING:
//   A violation is an *InvalidKeySchemaError. Batch drivers return it
//   immediately, even when continuing on conversion errors.
//
// =============================================================================

package validation

import (
	"sort"
	"strings"

	"github.com/cockroachdb/errors"
)

// =============================================================================
// KEY SCHEMA ERROR
// =============================================================================

// InvalidKeySchemaError reports a request whose keys do not match the schema.
type InvalidKeySchemaError struct {
	// Required lists the required keys in declaration order.
	Required []string

	// Optional lists the allowed optional keys in declaration order.
	Optional []string

	// Present lists the keys found in the request, sorted.
	Present []string
}

// Error implements the error interface.
func (e *InvalidKeySchemaError) Error() string {
	msg := "Invalid key provided, expected keys are: " + strings.Join(e.Required, ", ")
	if len(e.Optional) > 0 {
		msg += " and optional keys are: " + strings.Join(e.Optional, ", ")
	}
	return msg
}

// IsInvalidKeySchema reports whether err is, or wraps, an InvalidKeySchemaError.
func IsInvalidKeySchema(err error) bool {
	var target *InvalidKeySchemaError
	return errors.As(err, &target)
}

// =============================================================================
// VALIDATION FUNCTIONS
// =============================================================================

// ValidateKeys checks present against the required and optional key sets.
//
// PARAMETERS:
//   - present: The keys of the request.
//   - required: Keys that must all be present.
//   - optional: Keys that may additionally be present. May be nil.
//
// RETURNS:
//   - nil if the key set is valid.
//   - *InvalidKeySchemaError otherwise.
func ValidateKeys(present, required, optional []string) error {
	seen := make(map[string]bool, len(present))
	for _, key := range present {
		seen[key] = true
	}

	fail := func() error {
		sorted := make([]string, 0, len(seen))
		for key := range seen {
			sorted = append(sorted, key)
		}
		sort.Strings(sorted)
		return &InvalidKeySchemaError{Required: required, Optional: optional, Present: sorted}
	}

	for _, key := range required {
		if !seen[key] {
			return fail()
		}
	}

	allowed := make(map[string]bool, len(required)+len(optional))
	for _, key := range required {
		allowed[key] = true
	}
	for _, key := range optional {
		allowed[key] = true
	}

	for key := range seen {
		if !allowed[key] {
			return fail()
		}
	}

	if len(seen) > len(required)+len(optional) {
		return fail()
	}

	return nil
}

// ValidateRequest checks the keys of a request mapping.
func ValidateRequest(request map[string]interface{}, required, optional []string) error {
	return ValidateKeys(Keys(request), required, optional)
}

// Keys returns the keys of a request mapping, sorted.
func Keys(request map[string]interface{}) []string {
	keys := make([]string, 0, len(request))
	for key := range request {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
