package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"infiniteats/internal/errors"
)

func TestValidatePromptTemplate(t *testing.T) {
	tests := []struct {
		name      string
		operation string
		tpl       string
		wantErr   bool
	}{
		{"analyze ok", OperationAnalyze, "Score this against %s", false},
		{"analyze escaped percent", OperationAnalyze, "Score 0-100%% for %s", false},
		{"analyze missing verb", OperationAnalyze, "Score this", true},
		{"analyze extra verb", OperationAnalyze, "%s and %s", true},
		{"rewrite ok", OperationRewrite, "Target %s, add %s", false},
		{"rewrite one verb", OperationRewrite, "Target %s", true},
		{"stray verb", OperationAnalyze, "Use %d points for %s", true},
		{"empty", OperationAnalyze, "   ", true},
		{"unknown operation", "tailor", "%s", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePromptTemplate(tt.operation, tt.tpl)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPromptSetKeepsPreviousOnInvalid(t *testing.T) {
	set := NewPromptSet()
	require.NoError(t, set.Set(OperationAnalyze, "first %s", "a.md"))

	err := set.Set(OperationAnalyze, "no verbs here", "b.md")
	require.Error(t, err)

	tpl, ok := set.Get(OperationAnalyze)
	assert.True(t, ok)
	assert.Equal(t, "first %s", tpl)
	assert.Equal(t, "a.md", set.Source(OperationAnalyze))
}

func TestLoadPromptsFromFiles(t *testing.T) {
	dir := t.TempDir()
	analyzeFile := filepath.Join(dir, "analyze.md")
	rewriteFile := filepath.Join(dir, "rewrite.md")
	require.NoError(t, os.WriteFile(analyzeFile, []byte("  Analyze for %s\n"), 0600))
	require.NoError(t, os.WriteFile(rewriteFile, []byte("Rewrite for %s using %s"), 0600))

	cfg := Default()
	cfg.Prompts.AnalyzeFile = analyzeFile
	cfg.Prompts.RewriteFile = rewriteFile

	require.NoError(t, cfg.loadPromptsFromFiles())

	tpl, ok := cfg.PromptSet().Get(OperationAnalyze)
	require.True(t, ok)
	assert.Equal(t, "Analyze for %s", tpl)

	tpl, ok = cfg.PromptSet().Get(OperationRewrite)
	require.True(t, ok)
	assert.Equal(t, "Rewrite for %s using %s", tpl)
}

func TestLoadPromptsFromFilesErrors(t *testing.T) {
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.md")
	require.NoError(t, os.WriteFile(empty, []byte("   "), 0600))
	noVerb := filepath.Join(dir, "noverb.md")
	require.NoError(t, os.WriteFile(noVerb, []byte("nothing to fill"), 0600))

	tests := []struct {
		name string
		file string
		want string
	}{
		{"missing", filepath.Join(dir, "missing.md"), "not found"},
		{"directory", dir, "is a directory"},
		{"empty", empty, "is empty"},
		{"no verb", noVerb, "invalid analyze prompt file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Prompts.AnalyzeFile = tt.file
			err := cfg.loadPromptsFromFiles()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestPromptWatcherReloads(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "analyze.md")
	require.NoError(t, os.WriteFile(file, []byte("v1 %s"), 0600))

	cfg := Default()
	cfg.Prompts.AnalyzeFile = file
	cfg.Prompts.DebounceDelay = 20 * time.Millisecond
	require.NoError(t, cfg.loadPromptsFromFiles())

	watcher := NewPromptWatcher(cfg, errors.Discard())
	require.NotNil(t, watcher)

	results := make(chan error, 4)
	watcher.OnReload(func(operation string, err error) {
		results <- err
	})
	require.NoError(t, watcher.Start())
	defer func() { _ = watcher.Stop() }()

	// Replace the file atomically with a newer mtime, as editors do.
	tmp := filepath.Join(dir, "analyze.md.tmp")
	require.NoError(t, os.WriteFile(tmp, []byte("v2 %s"), 0600))
	future := time.Now().Add(2 * time.Second)
	require.NoError(t, os.Chtimes(tmp, future, future))
	require.NoError(t, os.Rename(tmp, file))

	select {
	case err := <-results:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("prompt was not reloaded")
	}

	tpl, _ := cfg.PromptSet().Get(OperationAnalyze)
	assert.Equal(t, "v2 %s", tpl)
}

func TestNewPromptWatcherWithoutFiles(t *testing.T) {
	assert.Nil(t, NewPromptWatcher(Default(), errors.Discard()))
}
