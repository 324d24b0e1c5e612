package cmd

import (
	"fmt"
	"net/http"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	apiclient "babylon/salesanalytics/apiClient"
	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/model"
	"babylon/salesanalytics/pipeline"
	"babylon/salesanalytics/prompt"
	"babylon/salesanalytics/storage"
	"babylon/salesanalytics/validate"
)

type analyzeFlags struct {
	input       string
	region      string
	minAmount   string
	maxAmount   string
	interactive bool
	catalogURL  string
	workbook    string
	sinks       []string
}

func newAnalyzeCmd(a *app) *cobra.Command {
	f := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run the full analysis and write the enriched file and the report",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.analyze(cmd, f)
		},
	}

	cmd.Flags().StringVar(&f.input, "input", "", "sales file to analyze (overrides input_file)")
	cmd.Flags().StringVar(&f.region, "region", "", "keep only this region (case-insensitive)")
	cmd.Flags().StringVar(&f.minAmount, "min-amount", "", "keep only transactions worth at least this amount")
	cmd.Flags().StringVar(&f.maxAmount, "max-amount", "", "keep only transactions worth at most this amount")
	cmd.Flags().BoolVar(&f.interactive, "interactive", false, "ask for the filter criteria on the terminal")
	cmd.Flags().StringVar(&f.catalogURL, "catalog-url", "", "product catalog listing URL (overrides catalog_url)")
	cmd.Flags().StringVar(&f.workbook, "workbook", "", "also write an xlsx workbook to this path")
	cmd.Flags().StringArrayVar(&f.sinks, "sink", nil, "extra snapshot sink as kind:path, kind is pipe or bson (repeatable)")

	return cmd
}

func (a *app) analyze(cmd *cobra.Command, f *analyzeFlags) error {
	ctx := cmd.Context()
	logger := appcontext.LoggerFromContext(ctx)
	cfg := a.cfg

	if f.input != "" {
		cfg.InputFile = f.input
	}
	if f.catalogURL != "" {
		cfg.CatalogURL = f.catalogURL
	}
	if f.workbook != "" {
		cfg.WorkbookFile = f.workbook
	}

	criteria, err := f.criteria()
	if err != nil {
		return err
	}

	client, err := apiclient.NewAPIClient(&http.Client{Timeout: cfg.CatalogTimeout}, cfg.CatalogURL)
	if err != nil {
		return fmt.Errorf("failed to create catalog client: %w", err)
	}

	sinks := []storage.Sink{storage.NewPipeFileSink(cfg.EnrichedFile)}
	for _, target := range append(append([]string{}, cfg.Sinks...), f.sinks...) {
		sink, err := storage.NewSink(target)
		if err != nil {
			return fmt.Errorf("failed to configure sink: %w", err)
		}
		sinks = append(sinks, sink)
	}

	deps := pipeline.Dependencies{
		Config:  cfg,
		Catalog: client,
		Sinks:   sinks,
	}
	if cfg.WorkbookFile != "" {
		deps.Workbook = storage.NewWorkbookWriter(cfg.WorkbookFile)
	}
	if f.interactive {
		deps.AskCriteria = func(options validate.Options) model.FilterCriteria {
			return prompt.AskCriteria(cmd.InOrStdin(), cmd.OutOrStdout(), options, cfg.CurrencySymbol)
		}
	}

	res, err := pipeline.New(deps).Run(ctx, criteria)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if res.NoData {
		fmt.Fprintln(cmd.OutOrStdout(), "No data found. Exiting.")
		return nil
	}

	if len(res.PersistenceErrors) > 0 {
		logger.WarnContext(ctx, "Analysis finished with write failures", "count", len(res.PersistenceErrors))
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Valid: %d | Invalid: %d | Enriched: %d/%d\nReport saved to: %s\n",
		res.Validation.FinalCount, res.Validation.InvalidCount,
		res.Enrichment.Matched, res.Enrichment.Total, cfg.ReportFile)

	return nil
}

func (f *analyzeFlags) criteria() (model.FilterCriteria, error) {
	criteria := model.FilterCriteria{Region: f.region}

	for _, bound := range []struct {
		flag  string
		value string
		dst   **decimal.Decimal
	}{
		{"--min-amount", f.minAmount, &criteria.MinAmount},
		{"--max-amount", f.maxAmount, &criteria.MaxAmount},
	} {
		if bound.value == "" {
			continue
		}
		amount, err := decimal.NewFromString(bound.value)
		if err != nil {
			return criteria, fmt.Errorf("invalid %s %q: %w", bound.flag, bound.value, err)
		}
		*bound.dst = &amount
	}

	return criteria, nil
}
