package main

import (
	"context"
	"fmt"
	"log"

	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/server"
	"github.com/spf13/cobra"
)

var (
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long: `Start an HTTP server that exposes REST endpoints for editing resumes, streaming pagination
updates, rendering pages and exporting PDFs. Resumes are kept in PostgreSQL when DATABASE_URL is set
and in memory otherwise.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "Port to listen on (overrides PORT and the config file)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if servePort != 0 {
		cfg.Port = servePort
	}

	ctx := context.Background()
	rt, err := newRuntime(ctx, cfg, true)
	if err != nil {
		return err
	}
	defer rt.Close()

	var resumes server.ResumeStore
	if rt.db != nil {
		if err := rt.db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to migrate database: %w", err)
		}
		resumes = rt.db
	} else {
		log.Printf("[WARN] DATABASE_URL not set; resumes are kept in memory")
		resumes = server.NewMemoryStore()
	}

	sessions := editor.NewManager(server.ResumeSource(resumes), cfg.DefaultTemplate, rt.editorOptions())

	srv, err := server.New(server.Config{
		Port:           cfg.Port,
		Resumes:        resumes,
		Sessions:       sessions,
		Prefs:          rt.prefs,
		Browser:        rt.browser,
		ExportStrategy: cfg.ExportStrategy,
		Verbose:        cfg.Verbose,
	})
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Start()
}
