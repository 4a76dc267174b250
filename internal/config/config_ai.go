package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// AIAvailable reports whether the Gemini importer can be used
func (c *Config) AIAvailable() bool {
	return c.AI.Enabled && c.AI.APIKey != ""
}

// loadSystemPromptFile replaces AI.SystemPrompt with the contents of
// AI.SystemPromptFile when one is configured
func (c *Config) loadSystemPromptFile() error {
	if c.AI.SystemPromptFile == "" {
		return nil
	}

	content, err := loadPromptFromFile(c.AI.SystemPromptFile)
	if err != nil {
		return err
	}
	c.AI.SystemPrompt = content
	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath string) (string, error) {
	// Resolve relative paths
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for prompt file '%s': %w", filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("prompt file not found: %s", absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file '%s': %w", absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("prompt file '%s' is empty", absPath)
	}

	log.Printf("[CONFIG] Successfully loaded AI system prompt from file: %s (%d characters)",
		absPath, len(trimmedContent))

	return trimmedContent, nil
}
