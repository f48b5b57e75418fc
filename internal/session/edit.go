package session

import (
	"fmt"
	"strings"

	"infiniteats/internal/errors"
	"infiniteats/internal/types"
)

// Experience fields editable through UpdateExperienceField.
const (
	FieldRole     = "role"
	FieldCompany  = "company"
	FieldDuration = "duration"
)

func invalidEdit(format string, args ...any) error {
	return errors.NewValidationError(errors.ErrCodeInvalidEdit, fmt.Sprintf(format, args...), nil)
}

// edit applies change to a copy of the document and installs the copy.
// Snapshots handed out earlier keep pointing at the old document.
func (s *Session) edit(change func(doc *types.ResumeDocument) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touch()

	if s.stage != StageEditPreview || s.document == nil {
		return invalidEdit("no resume to edit")
	}
	next := s.document.Clone()
	if err := change(next); err != nil {
		return err
	}
	s.document = next
	return nil
}

func (s *Session) UpdateSummary(text string) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		doc.Summary = text
		return nil
	})
}

// UpdateExperienceDetail replaces bullet j of experience entry i.
func (s *Session) UpdateExperienceDetail(i, j int, text string) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		if i < 0 || i >= len(doc.Experience) {
			return invalidEdit("experience index %d out of range", i)
		}
		details := doc.Experience[i].Details
		if j < 0 || j >= len(details) {
			return invalidEdit("detail index %d out of range for experience %d", j, i)
		}
		details[j] = text
		return nil
	})
}

// UpdateExperienceField sets role, company or duration of entry i.
func (s *Session) UpdateExperienceField(i int, field, value string) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		if i < 0 || i >= len(doc.Experience) {
			return invalidEdit("experience index %d out of range", i)
		}
		exp := &doc.Experience[i]
		switch field {
		case FieldRole:
			exp.Role = value
		case FieldCompany:
			exp.Company = value
		case FieldDuration:
			exp.Duration = value
		default:
			return invalidEdit("unknown experience field %q", field)
		}
		return nil
	})
}

// UpdateSkills replaces the skills list. Blank entries are dropped.
func (s *Session) UpdateSkills(skills []string) error {
	return s.edit(func(doc *types.ResumeDocument) error {
		out := make([]string, 0, len(skills))
		for _, skill := range skills {
			if skill = strings.TrimSpace(skill); skill != "" {
				out = append(out, skill)
			}
		}
		doc.Skills = out
		return nil
	})
}
