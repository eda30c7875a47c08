// Package main provides the entry point for the JD gap analyzer CLI and server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "gap_agent",
	Short: "JD / resume gap analyzer",
	Long:  "gap_agent extracts frozen requirements from job descriptions and scores resumes against them with verbatim evidence quotes and reproducible artifacts.",
}

var (
	configPath   string
	artifactsDir string
	verbose      bool
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().StringVar(&artifactsDir, "artifacts", "", "Directory for frozen artifacts (default \"artifacts\")")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print detailed progress and formatted summaries")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
