package formatters

import (
	"fmt"
	"strings"

	"infiniteats/internal/types"
)

var bandLabels = map[types.ScoreBand]string{
	types.BandLow:    "Needs work",
	types.BandFair:   "Fair match",
	types.BandStrong: "Strong match",
}

// BandLabel is the display label for a score band.
func BandLabel(band types.ScoreBand) string {
	return bandLabels[band]
}

// AnalysisTextFormatter renders an ATS analysis as plain text.
type AnalysisTextFormatter struct{}

func (f *AnalysisTextFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var out strings.Builder
	out.WriteString("=== ATS ANALYSIS ===\n")
	fmt.Fprintf(&out, "Score: %.0f/100 (%s)\n\n", result.Score, bandLabels[result.Band()])
	out.WriteString(result.Summary)
	out.WriteString("\n\n")

	writeTextList(&out, "Matching keywords", result.MatchingKeywords)
	writeTextList(&out, "Missing keywords", result.MissingKeywords)
	writeTextList(&out, "Formatting issues", result.FormattingIssues)
	writeTextList(&out, "Recommendations", result.ContentRecommendations)

	return out.String(), nil
}

func (f *AnalysisTextFormatter) SupportedType() string { return typeAnalysis }

// AnalysisMarkdownFormatter renders an ATS analysis as Markdown.
type AnalysisMarkdownFormatter struct{}

func (f *AnalysisMarkdownFormatter) Format(data any) (string, error) {
	result, ok := data.(types.AnalysisResult)
	if !ok {
		return "", fmt.Errorf("expected AnalysisResult, got %T", data)
	}

	var out strings.Builder
	out.WriteString("# ATS Analysis\n\n")
	fmt.Fprintf(&out, "**Score:** %.0f/100 (%s)\n\n", result.Score, bandLabels[result.Band()])
	out.WriteString(result.Summary)
	out.WriteString("\n\n")

	writeMarkdownList(&out, "Matching Keywords", result.MatchingKeywords)
	writeMarkdownList(&out, "Missing Keywords", result.MissingKeywords)
	writeMarkdownList(&out, "Formatting Issues", result.FormattingIssues)
	writeMarkdownList(&out, "Recommendations", result.ContentRecommendations)

	return out.String(), nil
}

func (f *AnalysisMarkdownFormatter) SupportedType() string { return typeAnalysis }

func writeTextList(out *strings.Builder, title string, items []string) {
	fmt.Fprintf(out, "%s:\n", title)
	if len(items) == 0 {
		out.WriteString("  (none)\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(out, "  - %s\n", item)
	}
	out.WriteString("\n")
}

func writeMarkdownList(out *strings.Builder, title string, items []string) {
	fmt.Fprintf(out, "## %s\n\n", title)
	if len(items) == 0 {
		out.WriteString("_None_\n\n")
		return
	}
	for _, item := range items {
		fmt.Fprintf(out, "- %s\n", item)
	}
	out.WriteString("\n")
}
