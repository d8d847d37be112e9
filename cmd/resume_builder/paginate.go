package main

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/jonathan/resume-builder/internal/layout"
	"github.com/jonathan/resume-builder/internal/observability"
	"github.com/jonathan/resume-builder/internal/rendering"
	"github.com/jonathan/resume-builder/internal/types"
	"github.com/jonathan/resume-builder/internal/validation"
	"github.com/spf13/cobra"
)

var (
	paginateInput    string
	paginateSample   int
	paginateTemplate string
	paginateOut      string
	paginateHTML     string
)

var paginateCmd = &cobra.Command{
	Use:   "paginate",
	Short: "Measure a resume and print its pagination state",
	Long: `Render a resume document, measure its sections and distribute them onto A4 pages.
The resulting pagination state is printed as JSON, or written to --out. With --html the
paginated, printable document is written as well.`,
	Example: `  resume_builder paginate --input resume.json
  resume_builder paginate --sample 12 --template compact --html resume.html -v`,
	RunE: runPaginate,
}

func init() {
	paginateCmd.Flags().StringVarP(&paginateInput, "input", "i", "", "Path to resume document JSON")
	paginateCmd.Flags().IntVar(&paginateSample, "sample", 0, "Use the built-in sample resume with N jobs")
	paginateCmd.Flags().StringVarP(&paginateTemplate, "template", "t", "", "Template id (default from config)")
	paginateCmd.Flags().StringVarP(&paginateOut, "out", "o", "", "Write the pagination state JSON to this file")
	paginateCmd.Flags().StringVar(&paginateHTML, "html", "", "Write the paginated HTML document to this file")
	paginateCmd.MarkFlagsMutuallyExclusive("input", "sample")
	paginateCmd.MarkFlagsOneRequired("input", "sample")
	rootCmd.AddCommand(paginateCmd)
}

// paginationOutput is the JSON printed by paginate.
type paginationOutput struct {
	Template string                `json:"template"`
	State    types.PaginationState `json:"state"`
	Pages    []layout.PageFill     `json:"pages"`
}

func runPaginate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	doc, err := loadDocument(paginateInput, paginateSample)
	if err != nil {
		return err
	}
	p := preferencesFor(paginateTemplate, cfg.DefaultTemplate)
	tmpl, err := layout.LookupTemplate(p.Template)
	if err != nil {
		return err
	}

	rt, err := newRuntime(ctx, cfg, false)
	if err != nil {
		return err
	}
	defer rt.Close()

	view, err := rt.renderer.RenderView(doc, p)
	if err != nil {
		return err
	}
	m, err := rt.measurer.Measure(ctx, view)
	if err != nil {
		return fmt.Errorf("failed to measure resume: %w", err)
	}

	budget, err := layout.NewBudget(layout.A4HeightPx, m.HeaderHeightPx, cfg.PageFooterPx, cfg.PageMarginPx)
	if err != nil {
		return err
	}
	plan := layout.PlanPages(m.Sections, budget, tmpl)
	plan.State.Version = 1

	violations := validation.CheckPagination(m.Sections, plan)

	if cfg.Verbose {
		printer := observability.NewPrinter(cmd.ErrOrStderr())
		printer.PrintMeasurement(m)
		printer.PrintPlan(plan)
		printer.PrintViolations(violations)
	} else {
		for _, v := range violations.Violations {
			log.Printf("[WARN] %s %s: %s", v.Severity, v.Type, v.Details)
		}
	}

	if paginateHTML != "" {
		pages, err := rt.renderer.RenderPages(doc, p, plan.State, rendering.PageOptions{CurrentPage: 1, ForceAll: true})
		if err != nil {
			return err
		}
		html, err := rt.renderer.RenderDocument(doc, p, pages)
		if err != nil {
			return err
		}
		if err := writeOutput(paginateHTML, []byte(html)); err != nil {
			return err
		}
	}

	out, err := json.MarshalIndent(paginationOutput{
		Template: tmpl.ID,
		State:    plan.State,
		Pages:    plan.Pages,
	}, "", "  ")
	if err != nil {
		return err
	}

	if paginateOut != "" {
		if err := writeOutput(paginateOut, out); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d-page pagination state to %s\n", plan.State.PageCount, paginateOut)
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))
	return nil
}
