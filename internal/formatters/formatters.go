package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"infiniteats/internal/types"
)

// Formatter renders one data type in one output format.
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry() *FormatterRegistry {
	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("text", typeAnalysis, &AnalysisTextFormatter{})
	registry.RegisterFormatter("markdown", typeAnalysis, &AnalysisMarkdownFormatter{})
	registry.RegisterFormatter("text", typeDocument, &ResumeTextFormatter{})
	registry.RegisterFormatter("markdown", typeDocument, &ResumeMarkdownFormatter{})
	registry.RegisterFormatter("text", typeOptimize, &OptimizeFormatter{analysis: &AnalysisTextFormatter{}, resume: &ResumeTextFormatter{}, separator: "\n"})
	registry.RegisterFormatter("markdown", typeOptimize, &OptimizeFormatter{analysis: &AnalysisMarkdownFormatter{}, resume: &ResumeMarkdownFormatter{}, separator: "\n---\n\n"})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter. Pointers to the
// known result types are accepted as well as values.
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	data = deref(data)
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats, sorted.
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

const (
	typeAnalysis = "AnalysisResult"
	typeDocument = "ResumeDocument"
	typeOptimize = "OptimizeResult"
)

func deref(data any) any {
	switch v := data.(type) {
	case *types.AnalysisResult:
		if v != nil {
			return *v
		}
	case *types.ResumeDocument:
		if v != nil {
			return *v
		}
	case *types.OptimizeResult:
		if v != nil {
			return *v
		}
	}
	return data
}

func getDataType(data any) string {
	switch data.(type) {
	case types.AnalysisResult:
		return typeAnalysis
	case types.ResumeDocument:
		return typeDocument
	case types.OptimizeResult:
		return typeOptimize
	default:
		return "any"
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData) + "\n", nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// OptimizeFormatter renders an analysis followed by the rewritten resume.
type OptimizeFormatter struct {
	analysis  Formatter
	resume    Formatter
	separator string
}

func (of *OptimizeFormatter) Format(data any) (string, error) {
	result, ok := data.(types.OptimizeResult)
	if !ok {
		return "", fmt.Errorf("expected OptimizeResult, got %T", data)
	}
	if result.Analysis == nil || result.Document == nil {
		return "", fmt.Errorf("optimize result is incomplete")
	}

	analysis, err := of.analysis.Format(*result.Analysis)
	if err != nil {
		return "", err
	}
	resume, err := of.resume.Format(*result.Document)
	if err != nil {
		return "", err
	}
	return analysis + of.separator + resume, nil
}

func (of *OptimizeFormatter) SupportedType() string {
	return typeOptimize
}

// GlobalRegistry is the registry used by the CLI output handler.
var GlobalRegistry = NewFormatterRegistry()
