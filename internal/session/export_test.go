package session

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"infiniteats/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportFilename(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Jane Q Doe", "Jane_Q_Doe_Resume.json"},
		{"Ada  Lovelace", "Ada_Lovelace_Resume.json"},
		{"Tab\tSeparated", "Tab_Separated_Resume.json"},
		{"Jane\u00a0Doe", "Jane_Doe_Resume.json"},
		{"Jane\u2003\u00a0Doe", "Jane_Doe_Resume.json"},
		{"Single", "Single_Resume.json"},
		{"", "Resume.json"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExportFilename(tt.name), tt.name)
	}
}

func TestExportJSON(t *testing.T) {
	data, err := ExportJSON(sampleDocument())
	require.NoError(t, err)

	text := string(data)
	assert.True(t, strings.HasPrefix(text, "{\n  \"fullName\": \"Jane Q Doe\""))
	assert.NotContains(t, text, "projects")

	_, err = ExportJSON(nil)
	assert.Error(t, err)
}

func fullDocument() *types.ResumeDocument {
	return &types.ResumeDocument{
		FullName: "Jane Q Doe",
		ContactInfo: types.ContactInfo{
			Email:    "jane@example.com",
			Phone:    "555-0100",
			LinkedIn: "linkedin.com/in/janeqdoe",
			Website:  "janedoe.dev",
			Location: "Lisbon",
		},
		Summary: "Backend engineer",
		Skills:  []string{"Go", "Kubernetes", "Testing, QA tooling"},
		Experience: []types.Experience{
			{Role: "Engineer", Company: "Acme", Duration: "2020-2024", Details: []string{"Built APIs", "Ran on-call"}},
			{Role: "Intern", Company: "Initech", Duration: "2019", Details: []string{"Wrote scripts"}},
		},
		Education: []types.Education{{Degree: "BSc", School: "State", Year: "2019"}},
		Projects: []types.Project{
			{Name: "infra-kit", Description: "Cluster tooling", Technologies: []string{"Go", "Helm"}},
		},
	}
}

func TestExportJSONRoundTrip(t *testing.T) {
	emptyProjects := sampleDocument()
	emptyProjects.Projects = []types.Project{}
	emptyProjects.Normalize()

	tests := []struct {
		name string
		doc  *types.ResumeDocument
	}{
		{"fully populated", fullDocument()},
		{"no optional fields", sampleDocument()},
		{"empty projects", emptyProjects},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := ExportJSON(tt.doc)
			require.NoError(t, err)

			var back types.ResumeDocument
			require.NoError(t, json.Unmarshal(data, &back))
			assert.Equal(t, *tt.doc, back)
		})
	}
}

func TestGeneratedDocumentRoundTrips(t *testing.T) {
	doc := sampleDocument()
	doc.Projects = []types.Project{}

	s := readySession(t)
	require.NoError(t, s.StartAnalysis(context.Background(), fixedAnalysis(72, "Kubernetes")))
	require.NoError(t, s.GenerateImproved(context.Background(), fixedDocument(doc)))

	data, err := ExportJSON(s.Document())
	require.NoError(t, err)
	var back types.ResumeDocument
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, *s.Document(), back)
}

func TestExportDoesNotMutate(t *testing.T) {
	s := editingSession(t)
	before := s.Snapshot()

	_, err := ExportJSON(s.Document())
	require.NoError(t, err)
	assert.Equal(t, before, s.Snapshot())
}
