package common

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"infiniteats/internal/errors"
	"infiniteats/internal/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func TestReadResume(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(errors.Discard())

	text, err := fp.ReadResume(writeFile(t, dir, "cv.txt", []byte("Jane Doe")), 1<<20)
	require.NoError(t, err)
	assert.Equal(t, "Jane Doe", text.Text)
	assert.False(t, text.HasFile())

	pdf, err := fp.ReadResume(writeFile(t, dir, "cv.pdf", buildPDF(1)), 1<<20)
	require.NoError(t, err)
	require.True(t, pdf.HasFile())
	assert.Equal(t, 1, pdf.File.Pages)

	_, err = fp.ReadResume(writeFile(t, dir, "fake.pdf", []byte("not a pdf")), 1<<20)
	assert.True(t, errors.IsValidation(err))

	_, err = fp.ReadResume(filepath.Join(dir, "missing.txt"), 1<<20)
	assert.Error(t, err)
}

func TestResolveJob(t *testing.T) {
	dir := t.TempDir()
	fp := NewFileProcessor(errors.Discard())

	job, err := fp.ResolveJob(JobSource{File: writeFile(t, dir, "jd.txt", []byte("Senior Go engineer wanted"))})
	require.NoError(t, err)
	assert.Equal(t, "Senior Go engineer wanted", job.Description)

	job, err = fp.ResolveJob(JobSource{Text: "pasted description"})
	require.NoError(t, err)
	assert.Equal(t, types.JobContext{Description: "pasted description"}, job)

	job, err = fp.ResolveJob(JobSource{Role: "Product Manager"})
	require.NoError(t, err)
	assert.Equal(t, types.JobContext{Role: "Product Manager"}, job)
}

func TestValidateJobSource(t *testing.T) {
	tests := []struct {
		name string
		src  JobSource
		ok   bool
	}{
		{"role", JobSource{Role: "QA Engineer"}, true},
		{"text", JobSource{Text: "x"}, true},
		{"none", JobSource{}, false},
		{"two sources", JobSource{Text: "x", Role: "QA Engineer"}, false},
		{"unknown role", JobSource{Role: "Pilot"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateJobSource(tt.src)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.True(t, errors.IsValidation(err))
			}
		})
	}
}

func TestValidateOutputFormat(t *testing.T) {
	supported := []string{"json", "text", "markdown"}
	assert.NoError(t, ValidateOutputFormat("json", supported))
	assert.NoError(t, ValidateOutputFormat("anything", nil))
	assert.EqualError(t, ValidateOutputFormat("JSON", supported),
		"unsupported output format 'JSON'. Supported formats: [json text markdown]")
}

func TestRunResumeCommand(t *testing.T) {
	dir := t.TempDir()
	resumePath := writeFile(t, dir, "cv.md", []byte("# Jane"))
	outPath := filepath.Join(dir, "out", "analysis.json")

	var seen types.ResumeInput
	result, err := RunResumeCommand(context.Background(), errors.Discard(),
		CommandConfig{OutputFile: outPath, OutputFormat: "json"},
		CommandInput{ResumePath: resumePath, Job: JobSource{Role: "Data Scientist"}, MaxFileSize: 1 << 20},
		func(_ context.Context, resume types.ResumeInput, job types.JobContext) (*types.AnalysisResult, error) {
			seen = resume
			return &types.AnalysisResult{Score: 81, Summary: job.Role}, nil
		})
	require.NoError(t, err)
	assert.Equal(t, 81.0, result.Score)
	assert.Equal(t, "# Jane", seen.Text)

	written, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.Contains(t, string(written), `"summary": "Data Scientist"`)
}

func TestOutputHandlerWritesStdout(t *testing.T) {
	var buf bytes.Buffer
	oh := NewOutputHandler(errors.Discard())
	oh.stdout = &buf

	require.NoError(t, oh.HandleOutput(types.AnalysisResult{Score: 30}, CommandConfig{OutputFormat: "text"}))
	assert.Contains(t, buf.String(), "Score: 30/100 (Needs work)")

	assert.Error(t, oh.HandleOutput(types.AnalysisResult{}, CommandConfig{OutputFormat: "xml"}))
}
