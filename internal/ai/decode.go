package ai

import (
	"encoding/json"
	"strings"

	"infiniteats/internal/errors"
)

// Decode parses a model reply into T. No structural validation is done
// beyond what encoding/json enforces.
func Decode[T any](text string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(stripCodeFence(text)), &out); err != nil {
		return out, errors.NewDecodeError(errors.ErrCodeAIParseFailed,
			"failed to parse AI response", err)
	}
	return out, nil
}

// stripCodeFence unwraps a reply the model wrapped in a Markdown fence.
func stripCodeFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:] // drop the language tag line
	} else {
		s = strings.TrimPrefix(s, "json")
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
