package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/gap-analyzer/internal/observability"
)

var buildRequirementsCmd = &cobra.Command{
	Use:   "build-requirements",
	Short: "Freeze a requirements artifact from a job description",
	Long:  "Extract and normalize requirements from a JD, then freeze them as the canonical artifact for that exact JD text. Evaluations refuse to run until this exists.",
	RunE:  runBuildRequirements,
}

var (
	buildJDFile  string
	buildJDURL   string
	buildRoleID  string
	buildForce   bool
	buildBrowser bool
)

func init() {
	buildRequirementsCmd.Flags().StringVarP(&buildJDFile, "jd-file", "j", "", "Path to job description text file")
	buildRequirementsCmd.Flags().StringVarP(&buildJDURL, "jd-url", "u", "", "URL to fetch the job description from")
	buildRequirementsCmd.Flags().StringVar(&buildRoleID, "role-id", "", "Role identifier (default derived from JD hash)")
	buildRequirementsCmd.Flags().BoolVar(&buildForce, "force", false, "Re-extract even when an artifact already exists for this JD")
	buildRequirementsCmd.Flags().BoolVar(&buildBrowser, "browser", false, "Render JavaScript-heavy pages in a headless browser when needed")

	rootCmd.AddCommand(buildRequirementsCmd)
}

func runBuildRequirements(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jdText, err := readJD(ctx, buildJDFile, buildJDURL, buildBrowser)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	p, _, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	res, err := p.BuildRequirements(ctx, jdText, buildRoleID, buildForce)
	if err != nil {
		return err
	}

	if res.Reused {
		fmt.Fprintf(os.Stdout, "Requirements artifact already exists for this JD (no extraction run)\n")
	} else {
		fmt.Fprintf(os.Stdout, "Requirements artifact built\n")
	}
	fmt.Fprintf(os.Stdout, "JD hash:      %s\n", res.JDHash)
	fmt.Fprintf(os.Stdout, "Role ID:      %s\n", res.Doc.RoleID)
	fmt.Fprintf(os.Stdout, "Requirements: %d\n", len(res.Doc.Requirements))
	fmt.Fprintf(os.Stdout, "Artifact:     %s\n", res.ArtifactPath)

	if cfg.Verbose {
		observability.NewPrinter(os.Stdout).PrintRequirementsDoc(res.Doc)
	}

	return nil
}
