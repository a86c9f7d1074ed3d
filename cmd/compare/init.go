package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"

	engine_v1 "github.com/rxtech-lab/argo-compare/internal/backtest/engine/engine_v1"
)

const (
	schemaFileName       = "comparison-engine-v1-config.json"
	sampleConfigFileName = "comparison-engine-v1-config.yaml"
)

func getSchemaReference(schemaName string) string {
	return "# yaml-language-server: $schema=" + schemaName + "\n"
}

func generateSchemaFile(config engine_v1.ComparisonEngineV1Config, schemaPath string) error {
	schemaJSON, err := config.GenerateSchemaJSON()
	if err != nil {
		return fmt.Errorf("failed to generate schema: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(schemaPath), 0o755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(schemaPath, []byte(schemaJSON), 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write schema to file: %w", err)
	}

	return nil
}

// generateSampleConfig writes the default config next to its schema. An existing file is left untouched.
func generateSampleConfig(config engine_v1.ComparisonEngineV1Config, samplePath string, schemaName string) error {
	if _, err := os.Stat(samplePath); err == nil {
		return nil
	}

	yamlBytes, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal sample config to yaml: %w", err)
	}

	content := append([]byte(getSchemaReference(schemaName)), yamlBytes...)

	if err := os.WriteFile(samplePath, content, 0o644); err != nil { //nolint:gosec
		return fmt.Errorf("failed to write sample config to file: %w", err)
	}

	return nil
}

func initAction(_ context.Context, cmd *cli.Command) error {
	dir := cmd.String("dir")
	if strings.TrimSpace(dir) == "" {
		return fmt.Errorf("--dir cannot be empty")
	}

	config := engine_v1.EmptyConfig()
	schemaPath := filepath.Join(dir, schemaFileName)
	samplePath := filepath.Join(dir, sampleConfigFileName)

	if err := generateSchemaFile(config, schemaPath); err != nil {
		return err
	}

	if err := generateSampleConfig(config, samplePath, schemaFileName); err != nil {
		return err
	}

	log.Printf("Schema written to %s, sample config at %s", schemaPath, samplePath)

	return nil
}
