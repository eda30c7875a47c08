package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/jonathan/gap-analyzer/internal/artifacts"
	"github.com/jonathan/gap-analyzer/internal/audit"
	"github.com/jonathan/gap-analyzer/internal/config"
	"github.com/jonathan/gap-analyzer/internal/db"
	"github.com/jonathan/gap-analyzer/internal/ingestion"
	"github.com/jonathan/gap-analyzer/internal/llm"
	"github.com/jonathan/gap-analyzer/internal/pipeline"
)

// loadConfig assembles the effective configuration: config file (if given),
// then environment, then built-in defaults. Flag values win over everything.
func loadConfig() (config.Config, error) {
	var fileCfg config.Config
	if configPath != "" {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return config.Config{}, err
		}
		fileCfg = *loaded
	}

	fileCfg.FromEnv()
	cfg := fileCfg.MergeWithDefaults(config.Config{})

	if artifactsDir != "" {
		cfg.ArtifactsDir = artifactsDir
	}
	if verbose {
		cfg.Verbose = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

// newPipeline wires the full pipeline from config: provider client, artifact
// store, audit log, and the optional run database. Database failures are
// warnings, not errors; the filesystem artifacts are the canonical record.
// The audit logger is returned so callers (serve) can share it.
func newPipeline(ctx context.Context, cfg config.Config) (*pipeline.Pipeline, *audit.Logger, error) {
	if cfg.APIKey == "" {
		return nil, nil, fmt.Errorf("no API key configured: set GEMINI_API_KEY or GAP_API_KEY, or api_key in the config file")
	}

	client, err := llm.NewClient(ctx, cfg.LLMConfig(), cfg.APIKey)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create provider client: %w", err)
	}

	store, err := artifacts.NewStore(cfg.ArtifactsDir)
	if err != nil {
		client.Close()
		return nil, nil, fmt.Errorf("failed to create artifact store: %w", err)
	}

	auditLog, err := audit.New(cfg.AuditLog)
	if err != nil {
		log.Printf("Warning: audit log unavailable (%v), continuing without", err)
		auditLog = audit.Nop()
	}

	var database *db.DB
	if cfg.DatabaseURL != "" {
		database, err = db.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			log.Printf("Warning: database unavailable (%v), continuing without run history", err)
			database = nil
		}
	}

	return pipeline.New(cfg, client, store, database, auditLog), auditLog, nil
}

// readJD loads the job description from a file or URL, whichever flag is set.
func readJD(ctx context.Context, jdFile, jdURL string, useBrowser bool) (string, error) {
	if jdFile == "" && jdURL == "" {
		return "", fmt.Errorf("either --jd-file or --jd-url must be provided")
	}
	if jdFile != "" && jdURL != "" {
		return "", fmt.Errorf("--jd-file and --jd-url are mutually exclusive; provide only one")
	}

	if jdFile != "" {
		return ingestion.IngestFromFile(jdFile)
	}
	return ingestion.IngestFromURL(ctx, jdURL, useBrowser)
}

// readResume loads a resume from a text or PDF file based on the extension.
func readResume(path string) (string, error) {
	if strings.HasSuffix(strings.ToLower(path), ".pdf") {
		return ingestion.IngestFromPDF(path)
	}
	return ingestion.IngestFromFile(path)
}
