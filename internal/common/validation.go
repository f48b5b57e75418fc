package common

import (
	"fmt"
	"slices"

	"infiniteats/internal/errors"
	"infiniteats/internal/types"
)

// ValidateOutputFormat validates format against configured supported formats
func ValidateOutputFormat(format string, supportedFormats []string) error {
	if len(supportedFormats) == 0 || slices.Contains(supportedFormats, format) {
		return nil
	}
	return fmt.Errorf("unsupported output format '%s'. Supported formats: %v",
		format, supportedFormats)
}

// ValidateJobSource checks that exactly one job target was given on the
// command line and that a role, if given, is in the catalog.
func ValidateJobSource(src JobSource) error {
	set := 0
	for _, v := range []string{src.File, src.Text, src.Role} {
		if v != "" {
			set++
		}
	}
	switch {
	case set == 0:
		return errors.NewValidationError(errors.ErrCodeJobTargetMissing,
			"Please provide a Job Description or select a Target Role.", nil)
	case set > 1:
		return errors.NewValidationError(errors.ErrCodeInvalidRequest,
			"use only one of --job, --job-text or --role", nil)
	}
	if src.Role != "" && !types.IsKnownRole(src.Role) {
		return errors.NewValidationError(errors.ErrCodeUnknownRole,
			fmt.Sprintf("Unknown role: %s (see 'infiniteats roles')", src.Role), nil)
	}
	return nil
}
