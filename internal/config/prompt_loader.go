package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// promptFiles maps each operation to its configured template file.
func (c *Config) promptFiles() map[string]string {
	files := make(map[string]string)
	if c.Prompts.AnalyzeFile != "" {
		files[OperationAnalyze] = c.Prompts.AnalyzeFile
	}
	if c.Prompts.RewriteFile != "" {
		files[OperationRewrite] = c.Prompts.RewriteFile
	}
	return files
}

// loadPromptsFromFiles loads custom prompt templates if file paths are specified
func (c *Config) loadPromptsFromFiles() error {
	c.prompts = NewPromptSet()

	files := c.promptFiles()
	if len(files) == 0 {
		log.Println("[CONFIG] No custom prompt files configured, using built-in prompts")
		return nil
	}

	for operation, file := range files {
		if err := loadPromptInto(c.prompts, operation, file); err != nil {
			return err
		}
	}

	log.Printf("[CONFIG] Loaded %d custom prompt(s) from files", c.prompts.Len())
	return nil
}

// loadPromptInto reads one template file and stores it in set.
func loadPromptInto(set *PromptSet, operation, filePath string) error {
	content, err := readPromptFile(filePath, operation)
	if err != nil {
		return err
	}
	absPath, _ := filepath.Abs(filePath)
	if err := set.Set(operation, content, absPath); err != nil {
		return fmt.Errorf("invalid %s prompt file '%s': %w", operation, absPath, err)
	}
	return nil
}

func readPromptFile(filePath, operation string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s prompt file '%s': %w", operation, filePath, err)
	}

	info, err := os.Stat(absPath)
	if os.IsNotExist(err) {
		return "", fmt.Errorf("%s prompt file not found: %s", operation, absPath)
	}
	if err != nil {
		return "", fmt.Errorf("cannot access %s prompt file '%s': %w", operation, absPath, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s prompt path is a directory: %s", operation, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s prompt file '%s': %w", operation, absPath, err)
	}

	trimmed := strings.TrimSpace(string(content))
	if trimmed == "" {
		return "", fmt.Errorf("%s prompt file '%s' is empty", operation, absPath)
	}

	log.Printf("[CONFIG] Loaded %s prompt from file: %s (%d characters)", operation, absPath, len(trimmed))
	return trimmed, nil
}
