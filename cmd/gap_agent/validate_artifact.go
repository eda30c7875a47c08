package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/gap-analyzer/internal/pipeline"
)

var validateArtifactCmd = &cobra.Command{
	Use:   "validate-artifact <path>",
	Short: "Validate a frozen artifact file against its schema",
	Long:  "Check a requirements or evidence artifact against its JSON schema. The kind is inferred from the filename or set with --kind.",
	Args:  cobra.ExactArgs(1),
	RunE:  runValidateArtifact,
}

var artifactKind string

func init() {
	validateArtifactCmd.Flags().StringVar(&artifactKind, "kind", "", "Artifact kind: requirements or evidence (default inferred from filename)")
	rootCmd.AddCommand(validateArtifactCmd)
}

func runValidateArtifact(_ *cobra.Command, args []string) error {
	path := args[0]

	kind := artifactKind
	if kind == "" {
		base := strings.ToLower(strings.TrimSuffix(filepath.Base(path), ".json"))
		switch {
		case strings.HasPrefix(base, "job_requirements"):
			kind = "requirements"
		case strings.HasPrefix(base, "evidence"):
			kind = "evidence"
		default:
			return fmt.Errorf("cannot infer artifact kind from %q; use --kind", path)
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read artifact: %w", err)
	}

	if err := pipeline.ValidateArtifact(kind, data); err != nil {
		return fmt.Errorf("artifact is invalid: %w", err)
	}

	fmt.Fprintf(os.Stdout, "%s artifact is valid: %s\n", kind, path)
	return nil
}
