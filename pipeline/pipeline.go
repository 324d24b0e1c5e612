// Package pipeline runs the sales analysis stages in order: read, parse,
// validate and filter, aggregate, enrich, persist and report.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"babylon/salesanalytics/aggregate"
	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/catalog"
	"babylon/salesanalytics/config"
	"babylon/salesanalytics/model"
	"babylon/salesanalytics/parser"
	"babylon/salesanalytics/report"
	"babylon/salesanalytics/storage"
	"babylon/salesanalytics/validate"
)

// CriteriaFunc chooses the filter criteria once the available options are known.
type CriteriaFunc func(options validate.Options) model.FilterCriteria

// Dependencies holds all the dependencies for the Pipeline.
type Dependencies struct {
	Config  *config.Config
	Catalog catalog.ProductFetcher
	// Sinks receive the enriched transactions.
	Sinks []storage.Sink
	// Workbook is optional.
	Workbook *storage.WorkbookWriter
	// AskCriteria is optional. When set, its answer replaces the criteria given to Run.
	AskCriteria CriteriaFunc
	Now         func() time.Time
}

// Pipeline orchestrates one analysis run.
type Pipeline struct {
	deps Dependencies
}

// Result is everything a run produced.
type Result struct {
	RunID       string
	RawLines    int
	Parsed      int
	Criteria    model.FilterCriteria
	Validation  validate.Summary
	Valid       []model.Transaction
	Aggregates  *aggregate.Summary
	CatalogSize int
	Enriched    []model.EnrichedTransaction
	Enrichment  catalog.Stats
	Report      string
	// NoData is set when the source held no record lines. Nothing is fetched or written then.
	NoData bool
	// PersistenceErrors holds the write failures of the run. They do not stop it.
	PersistenceErrors []error
}

// New creates a new Pipeline instance.
func New(deps Dependencies) *Pipeline {
	if deps.Now == nil {
		deps.Now = time.Now
	}

	return &Pipeline{deps: deps}
}

// Run executes every stage. Only an unreadable source file or a cancelled
// context return an error; write failures are collected in the result.
// A source without record lines stops the run before any output is written.
func (p *Pipeline) Run(ctx context.Context, criteria model.FilterCriteria) (*Result, error) {
	runID := appcontext.RunIDFromContext(ctx)
	if runID == "" {
		runID = uuid.NewString()
		ctx = appcontext.WithRunID(ctx, runID)
	}
	logger := appcontext.LoggerFromContext(ctx)
	cfg := p.deps.Config
	res := &Result{RunID: runID}

	logger.InfoContext(ctx, "Reading sales data", "stage", "1/8", "path", cfg.InputFile)
	lines, err := storage.ReadSalesData(ctx, cfg.InputFile)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to read sales data", "path", cfg.InputFile, "error", err)
		return nil, fmt.Errorf("failed to read sales data: %w", err)
	}
	res.RawLines = len(lines)
	if len(lines) == 0 {
		logger.WarnContext(ctx, "No data found, nothing to analyze", "path", cfg.InputFile)
		res.NoData = true
		return res, nil
	}

	logger.InfoContext(ctx, "Parsing and cleaning data", "stage", "2/8")
	parsed := parser.ParseTransactions(lines)
	res.Parsed = len(parsed)
	logger.InfoContext(ctx, "Parsed records", "parsed", len(parsed), "dropped", len(lines)-len(parsed))

	options := validate.DiscoverOptions(parsed)
	logger.InfoContext(ctx, "Filter options available",
		"regions", options.Regions,
		"minAmount", options.MinAmount.StringFixed(2),
		"maxAmount", options.MaxAmount.StringFixed(2),
	)
	if p.deps.AskCriteria != nil {
		criteria = p.deps.AskCriteria(options)
	}
	res.Criteria = criteria

	logger.InfoContext(ctx, "Validating transactions", "stage", "3/8")
	validated := validate.ValidateAndFilter(parsed, criteria)
	validated.Summary.Log(ctx, logger)
	res.Validation = validated.Summary
	res.Valid = validated.Transactions

	logger.InfoContext(ctx, "Analyzing sales data", "stage", "4/8")
	res.Aggregates, err = aggregate.Compute(ctx, res.Valid, aggregate.Options{
		TopN:         cfg.TopN,
		LowThreshold: cfg.LowThreshold,
	})
	if err != nil {
		return nil, err
	}
	logger.InfoContext(ctx, "Analysis complete", "totalRevenue", res.Aggregates.TotalRevenue.StringFixed(2))

	logger.InfoContext(ctx, "Fetching product catalog", "stage", "5/8")
	entries := catalog.Fetch(ctx, p.deps.Catalog, cfg.CatalogTimeout)
	res.CatalogSize = len(entries)

	logger.InfoContext(ctx, "Enriching sales data", "stage", "6/8")
	res.Enriched = catalog.Enrich(res.Valid, catalog.BuildMapping(entries))
	res.Enrichment = catalog.Summarize(res.Enriched)
	res.Enrichment.Log(ctx, logger)

	logger.InfoContext(ctx, "Saving enriched data", "stage", "7/8", "sinks", len(p.deps.Sinks))
	for _, sink := range p.deps.Sinks {
		if err := sink.Write(ctx, res.Enriched); err != nil {
			res.persistenceFailure(ctx, "sink", sink.Path(), err)
		}
	}

	logger.InfoContext(ctx, "Generating report", "stage", "8/8", "path", cfg.ReportFile)
	res.Report = report.Render(res.Valid, res.Enriched, report.Options{
		GeneratedAt:    p.deps.Now(),
		CurrencySymbol: cfg.CurrencySymbol,
	})
	if err := storage.WriteReport(ctx, cfg.ReportFile, res.Report); err != nil {
		res.persistenceFailure(ctx, "report", cfg.ReportFile, err)
	}

	if p.deps.Workbook != nil {
		err := p.deps.Workbook.Write(ctx, storage.WorkbookData{
			RunID:      runID,
			Validation: res.Validation,
			Aggregates: res.Aggregates,
			Enrichment: res.Enrichment,
			Enriched:   res.Enriched,
		})
		if err != nil {
			res.persistenceFailure(ctx, "workbook", cfg.WorkbookFile, err)
		}
	}

	logger.InfoContext(ctx, "Process complete", "persistenceErrors", len(res.PersistenceErrors))

	return res, nil
}

func (r *Result) persistenceFailure(ctx context.Context, target, path string, err error) {
	appcontext.LoggerFromContext(ctx).ErrorContext(ctx, "Failed to persist output",
		"target", target,
		"path", path,
		"error", err,
	)
	r.PersistenceErrors = append(r.PersistenceErrors, err)
}
