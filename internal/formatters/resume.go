package formatters

import (
	"fmt"
	"strings"

	"infiniteats/internal/types"
)

func contactLine(c types.ContactInfo) string {
	parts := []string{c.Email, c.Phone}
	for _, extra := range []string{c.Location, c.LinkedIn, c.Website} {
		if extra != "" {
			parts = append(parts, extra)
		}
	}
	return strings.Join(parts, " | ")
}

// ResumeTextFormatter renders a rewritten resume as plain text.
type ResumeTextFormatter struct{}

func (f *ResumeTextFormatter) Format(data any) (string, error) {
	doc, ok := data.(types.ResumeDocument)
	if !ok {
		return "", fmt.Errorf("expected ResumeDocument, got %T", data)
	}

	var out strings.Builder
	out.WriteString(strings.ToUpper(doc.FullName))
	out.WriteString("\n")
	out.WriteString(contactLine(doc.ContactInfo))
	out.WriteString("\n\nSUMMARY\n")
	out.WriteString(doc.Summary)
	out.WriteString("\n\nSKILLS\n")
	out.WriteString(strings.Join(doc.Skills, ", "))
	out.WriteString("\n\nEXPERIENCE\n")
	for _, exp := range doc.Experience {
		fmt.Fprintf(&out, "%s, %s (%s)\n", exp.Role, exp.Company, exp.Duration)
		for _, detail := range exp.Details {
			fmt.Fprintf(&out, "  - %s\n", detail)
		}
	}
	if len(doc.Projects) > 0 {
		out.WriteString("\nPROJECTS\n")
		for _, p := range doc.Projects {
			fmt.Fprintf(&out, "%s: %s", p.Name, p.Description)
			if len(p.Technologies) > 0 {
				fmt.Fprintf(&out, " [%s]", strings.Join(p.Technologies, ", "))
			}
			out.WriteString("\n")
		}
	}
	out.WriteString("\nEDUCATION\n")
	for _, edu := range doc.Education {
		fmt.Fprintf(&out, "%s, %s (%s)\n", edu.Degree, edu.School, edu.Year)
	}

	return out.String(), nil
}

func (f *ResumeTextFormatter) SupportedType() string { return typeDocument }

// ResumeMarkdownFormatter renders a rewritten resume as Markdown.
type ResumeMarkdownFormatter struct{}

func (f *ResumeMarkdownFormatter) Format(data any) (string, error) {
	doc, ok := data.(types.ResumeDocument)
	if !ok {
		return "", fmt.Errorf("expected ResumeDocument, got %T", data)
	}

	var out strings.Builder
	fmt.Fprintf(&out, "# %s\n\n%s\n\n", doc.FullName, contactLine(doc.ContactInfo))
	fmt.Fprintf(&out, "## Summary\n\n%s\n\n", doc.Summary)
	writeMarkdownList(&out, "Skills", doc.Skills)

	out.WriteString("## Experience\n\n")
	for _, exp := range doc.Experience {
		fmt.Fprintf(&out, "### %s, %s\n\n_%s_\n\n", exp.Role, exp.Company, exp.Duration)
		for _, detail := range exp.Details {
			fmt.Fprintf(&out, "- %s\n", detail)
		}
		out.WriteString("\n")
	}

	if len(doc.Projects) > 0 {
		out.WriteString("## Projects\n\n")
		for _, p := range doc.Projects {
			fmt.Fprintf(&out, "- **%s**: %s", p.Name, p.Description)
			if len(p.Technologies) > 0 {
				fmt.Fprintf(&out, " (%s)", strings.Join(p.Technologies, ", "))
			}
			out.WriteString("\n")
		}
		out.WriteString("\n")
	}

	out.WriteString("## Education\n\n")
	for _, edu := range doc.Education {
		fmt.Fprintf(&out, "- %s, %s (%s)\n", edu.Degree, edu.School, edu.Year)
	}

	return out.String(), nil
}

func (f *ResumeMarkdownFormatter) SupportedType() string { return typeDocument }
