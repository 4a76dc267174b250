package common

import (
	"fmt"
	"slices"
	"strings"

	"resumeats/internal/errors"
	"resumeats/internal/formatters"
)

// SupportedFormats returns the registered output formats, narrowed to the
// configured list when one is set
func SupportedFormats(configured []string) []string {
	registered := formatters.GlobalRegistry.GetSupportedFormats()
	if len(configured) == 0 {
		return registered
	}

	var formats []string
	for _, format := range registered {
		if slices.Contains(configured, format) {
			formats = append(formats, format)
		}
	}
	return formats
}

// ValidateOutputFormat rejects formats that are not registered or not enabled
// in configuration
func ValidateOutputFormat(format string, configured []string) error {
	formats := SupportedFormats(configured)
	if slices.Contains(formats, format) {
		return nil
	}

	return errors.NewValidationError(errors.ErrCodeInvalidFormat,
		fmt.Sprintf("Unsupported output format %q, expected one of: %s", format, strings.Join(formats, ", ")), nil)
}
