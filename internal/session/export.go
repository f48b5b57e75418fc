package session

import (
	"encoding/json"
	"regexp"

	"infiniteats/internal/errors"
	"infiniteats/internal/types"
)

var whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)

// ExportFilename derives the download name from the candidate's name.
func ExportFilename(fullName string) string {
	if fullName == "" {
		return "Resume.json"
	}
	return whitespaceRun.ReplaceAllString(fullName, "_") + "_Resume.json"
}

// ExportJSON serializes doc with two-space indentation.
func ExportJSON(doc *types.ResumeDocument) ([]byte, error) {
	if doc == nil {
		return nil, errors.NewValidationError(errors.ErrCodeInvalidEdit, "no resume to export", nil)
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, errors.NewInternalError(errors.ErrCodeInvalidFormat, "failed to encode resume", err)
	}
	return data, nil
}
