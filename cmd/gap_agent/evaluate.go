package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/gap-analyzer/internal/observability"
	"github.com/jonathan/gap-analyzer/internal/pipeline"
	"github.com/jonathan/gap-analyzer/internal/types"
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Score one or more resumes against frozen requirements",
	Long:  "Evaluate resumes against the frozen requirements artifact for a JD. Fails with a clear error when no artifact exists; run build-requirements first.",
	RunE:  runEvaluate,
}

var (
	evalJDFile      string
	evalJDURL       string
	evalResumeFiles []string
	evalBrowser     bool
	evalJSONOut     string
)

func init() {
	evaluateCmd.Flags().StringVarP(&evalJDFile, "jd-file", "j", "", "Path to job description text file")
	evaluateCmd.Flags().StringVarP(&evalJDURL, "jd-url", "u", "", "URL to fetch the job description from")
	evaluateCmd.Flags().StringArrayVarP(&evalResumeFiles, "resume", "r", nil, "Path to a resume file (.txt or .pdf) or a directory of them; repeat for batch evaluation")
	evaluateCmd.Flags().BoolVar(&evalBrowser, "browser", false, "Render JavaScript-heavy pages in a headless browser when needed")
	evaluateCmd.Flags().StringVarP(&evalJSONOut, "out", "o", "", "Write full results as JSON to this file")

	_ = evaluateCmd.MarkFlagRequired("resume")

	rootCmd.AddCommand(evaluateCmd)
}

// expandResumePaths resolves the --resume arguments: files pass through,
// directories expand to their .txt and .pdf entries in name order.
func expandResumePaths(paths []string) ([]string, error) {
	var out []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume path %s: %w", path, err)
		}
		if !info.IsDir() {
			out = append(out, path)
			continue
		}

		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read resume directory %s: %w", path, err)
		}
		found := 0
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			lower := strings.ToLower(e.Name())
			if strings.HasSuffix(lower, ".txt") || strings.HasSuffix(lower, ".pdf") {
				out = append(out, filepath.Join(path, e.Name()))
				found++
			}
		}
		if found == 0 {
			return nil, fmt.Errorf("no .txt or .pdf resumes in directory %s", path)
		}
	}
	return out, nil
}

// printEvaluation writes the per-resume summary and, in verbose mode, the
// score breakdown, gap report and quote-validation outcome.
func printEvaluation(out io.Writer, res *pipeline.EvaluationResult, verbose bool) {
	fmt.Fprintf(out, "Match score: %d%%  (run %s)\n", res.MatchScore, res.RunID)
	fmt.Fprintf(out, "Evidence:    %s\n", res.EvidencePath)
	if !verbose {
		return
	}

	printer := observability.NewPrinter(out)
	printer.PrintScore(res.Score)
	printer.PrintGapReport(res.GapReport)
	printer.PrintValidationStats(&types.ValidationStats{
		MatchedCountRaw:       res.MatchedCountRaw,
		MatchedCountValidated: res.MatchedCountValidated,
		InvalidQuoteCount:     res.InvalidQuoteCount,
	})
}

func runEvaluate(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	jdText, err := readJD(ctx, evalJDFile, evalJDURL, evalBrowser)
	if err != nil {
		return fmt.Errorf("failed to read job description: %w", err)
	}

	resumePaths, err := expandResumePaths(evalResumeFiles)
	if err != nil {
		return err
	}

	resumes := make([]string, 0, len(resumePaths))
	for _, path := range resumePaths {
		text, err := readResume(path)
		if err != nil {
			return fmt.Errorf("failed to read resume %s: %w", path, err)
		}
		resumes = append(resumes, text)
	}

	p, _, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}
	defer p.Close()

	var results []*pipeline.EvaluationResult
	if len(resumes) == 1 {
		res, err := p.Evaluate(ctx, jdText, resumes[0])
		if err != nil {
			return err
		}
		results = []*pipeline.EvaluationResult{res}
	} else {
		results, err = p.EvaluateBatch(ctx, jdText, resumes)
		if err != nil {
			return err
		}
	}

	for i, res := range results {
		if len(results) > 1 {
			fmt.Fprintf(os.Stdout, "\n=== Resume %d: %s ===\n", i+1, resumePaths[i])
		}
		printEvaluation(os.Stdout, res, cfg.Verbose)
	}

	if len(results) > 1 {
		fmt.Fprintln(os.Stdout)
	}

	if evalJSONOut != "" {
		data, err := json.MarshalIndent(results, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to serialize results: %w", err)
		}
		if err := os.WriteFile(evalJSONOut, data, 0o644); err != nil {
			return fmt.Errorf("failed to write results: %w", err)
		}
		fmt.Fprintf(os.Stdout, "Results written to %s\n", evalJSONOut)
	}

	return nil
}
