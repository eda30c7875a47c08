package main

import (
	"github.com/spf13/cobra"

	"github.com/jonathan/gap-analyzer/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  `Start an HTTP server that exposes the requirements build and analyze endpoints.`,
	RunE:  runServe,
}

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (default \":5000\")")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if serveAddr != "" {
		cfg.ServerAddr = serveAddr
	}

	p, auditLog, err := newPipeline(ctx, cfg)
	if err != nil {
		return err
	}

	srv := server.New(cfg, p, auditLog)
	return srv.Start()
}
