package main

import (
	"fmt"
	"path/filepath"

	"github.com/jonathan/resume-builder/internal/editor"
	"github.com/jonathan/resume-builder/internal/export"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/validation"
	"github.com/spf13/cobra"
)

var (
	exportInput    string
	exportSample   int
	exportTemplate string
	exportStrategy string
	exportOut      string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Paginate a resume and export it as PDF",
	Long: `Paginate a resume document and export it as a PDF through headless Chrome.

Strategies:
  print    server-side print to PDF
  compose  screenshot each page and compose the PDF
  raster   screenshot the whole document and slice it into pages`,
	Example: `  resume_builder export --input resume.json --out resume.pdf
  resume_builder export --sample 8 --strategy compose --out sample.pdf`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportInput, "input", "i", "", "Path to resume document JSON")
	exportCmd.Flags().IntVar(&exportSample, "sample", 0, "Use the built-in sample resume with N jobs")
	exportCmd.Flags().StringVarP(&exportTemplate, "template", "t", "", "Template id (default from config)")
	exportCmd.Flags().StringVarP(&exportStrategy, "strategy", "s", "", "Export strategy: print, compose or raster (default from config)")
	exportCmd.Flags().StringVarP(&exportOut, "out", "o", "", "Output PDF path")
	exportCmd.MarkFlagsMutuallyExclusive("input", "sample")
	exportCmd.MarkFlagsOneRequired("input", "sample")
	_ = exportCmd.MarkFlagRequired("out")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	strategy := exportStrategy
	if strategy == "" {
		strategy = cfg.ExportStrategy
	}
	if !export.IsStrategy(strategy) {
		return fmt.Errorf("unknown export strategy %q", strategy)
	}

	doc, err := loadDocument(exportInput, exportSample)
	if err != nil {
		return err
	}

	// Export always needs the browser, whatever the config says about measuring.
	cfg.ChromeEnabled = true

	ctx := cmd.Context()
	rt, err := newRuntime(ctx, cfg, false)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer rt.Close()

	exporter, err := export.New(strategy, rt.browser, cfg.Verbose)
	if err != nil {
		return err
	}

	sess, err := editor.NewSession("cli", doc, preferencesFor(exportTemplate, cfg.DefaultTemplate), rt.editorOptions())
	if err != nil {
		return err
	}
	defer sess.Close()

	res, err := sess.Export(ctx, exporter, filepath.Base(exportOut))
	if err != nil {
		return err
	}
	if err := writeOutput(exportOut, res.Data); err != nil {
		return err
	}
	written, err := validation.CountPDFPagesFile(exportOut)
	if err != nil {
		return err
	}
	if written != res.Pages {
		return fmt.Errorf("%s has %d pages, expected %d", exportOut, written, res.Pages)
	}

	if cfg.Verbose {
		observability.NewPrinter(cmd.ErrOrStderr()).PrintExport(res, exportOut)
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d pages to %s (%s)\n", res.Pages, exportOut, res.Strategy)
	return nil
}
