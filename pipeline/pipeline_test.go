package pipeline_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apiclient "babylon/salesanalytics/apiClient"
	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/config"
	"babylon/salesanalytics/model"
	"babylon/salesanalytics/pipeline"
	"babylon/salesanalytics/storage"
	"babylon/salesanalytics/validate"
)

const source = `TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region

T1|2024-01-01|P101|Widget|2|100|C1|North
T2|2024-01-02|P999|Gadget|3|50|C2|South
T3|2024-01-03|P1|Bad|-1|10|C3|East
T4|2024-01-03|P1|Broken|1|10|C3
`

// --- Mocks for dependencies ---

type mockFetcher struct {
	called   bool
	products []apiclient.Product
	err      error
}

func (m *mockFetcher) GetProducts(ctx context.Context) (*http.Response, *apiclient.ProductsResponse, error) {
	m.called = true
	if m.err != nil {
		return nil, nil, m.err
	}
	return nil, &apiclient.ProductsResponse{Products: m.products}, nil
}

type mockSink struct {
	path    string
	written []model.EnrichedTransaction
	err     error
}

func (m *mockSink) Write(ctx context.Context, transactions []model.EnrichedTransaction) error {
	m.written = transactions
	return m.err
}

func (m *mockSink) Path() string { return m.path }

func strPtr(s string) *string { return &s }

func testContext() context.Context {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return appcontext.WithLogger(context.Background(), logger)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "data", "sales_data.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(input), 0o755))
	require.NoError(t, os.WriteFile(input, []byte(source), 0o644))

	return &config.Config{
		InputFile:      input,
		EnrichedFile:   filepath.Join(dir, "data", "enriched_sales_data.txt"),
		ReportFile:     filepath.Join(dir, "output", "sales_report.txt"),
		CatalogTimeout: time.Second,
		CurrencySymbol: "₹",
		LowThreshold:   10,
		TopN:           5,
	}
}

func fixedNow() time.Time {
	return time.Date(2024, 3, 5, 10, 20, 30, 0, time.UTC)
}

func TestRun(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &mockFetcher{products: []apiclient.Product{
		{ID: 101, Title: "Widget", Category: "tools", Brand: strPtr("Acme"), Rating: 4.5},
	}}
	bsonPath := filepath.Join(filepath.Dir(cfg.EnrichedFile), "dump", "sales.bson")
	workbookPath := filepath.Join(filepath.Dir(cfg.ReportFile), "sales.xlsx")

	p := pipeline.New(pipeline.Dependencies{
		Config:   cfg,
		Catalog:  fetcher,
		Sinks:    []storage.Sink{storage.NewPipeFileSink(cfg.EnrichedFile), storage.NewBSONDumpSink(bsonPath)},
		Workbook: storage.NewWorkbookWriter(workbookPath),
		Now:      fixedNow,
	})

	res, err := p.Run(testContext(), model.FilterCriteria{})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.False(t, res.NoData)
	assert.Equal(t, 4, res.RawLines)
	assert.Equal(t, 3, res.Parsed)
	assert.Equal(t, validate.Summary{TotalInput: 3, InvalidCount: 1, FinalCount: 2}, res.Validation)
	assert.Equal(t, "350", res.Aggregates.TotalRevenue.String())
	assert.True(t, fetcher.called)
	assert.Equal(t, 1, res.CatalogSize)
	assert.Equal(t, 1, res.Enrichment.Matched)
	assert.Equal(t, 2, res.Enrichment.Total)
	require.Len(t, res.Enriched, 2)
	assert.True(t, res.Enriched[0].APIMatch)
	assert.False(t, res.Enriched[1].APIMatch)
	require.Empty(t, res.PersistenceErrors)

	raw, err := os.ReadFile(cfg.EnrichedFile)
	require.NoError(t, err)
	roundTrip, err := storage.ParseEnriched(strings.Split(string(raw), "\n"))
	require.NoError(t, err)
	assert.Len(t, roundTrip, 2)

	dumped, err := storage.ReadBSONDump(bsonPath)
	require.NoError(t, err)
	assert.Len(t, dumped, 2)

	reportText, err := os.ReadFile(cfg.ReportFile)
	require.NoError(t, err)
	assert.Equal(t, res.Report, string(reportText))
	assert.Contains(t, res.Report, "Generated: 2024-03-05 10:20:30")

	assert.FileExists(t, workbookPath)
}

func TestRun_SourceUnreadable(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputFile = filepath.Join(t.TempDir(), "missing.txt")
	fetcher := &mockFetcher{}

	res, err := pipeline.New(pipeline.Dependencies{Config: cfg, Catalog: fetcher}).Run(testContext(), model.FilterCriteria{})

	require.ErrorIs(t, err, storage.ErrSourceUnreadable)
	assert.Nil(t, res)
	assert.False(t, fetcher.called, "the run should halt before fetching the catalog")
	assert.NoFileExists(t, cfg.ReportFile)
}

func TestRun_NoData(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{name: "empty file", content: ""},
		{name: "header only", content: "TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region\n\n\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := testConfig(t)
			require.NoError(t, os.WriteFile(cfg.InputFile, []byte(tt.content), 0o644))
			fetcher := &mockFetcher{}
			sink := &mockSink{path: "snapshot"}
			asked := false

			res, err := pipeline.New(pipeline.Dependencies{
				Config:   cfg,
				Catalog:  fetcher,
				Sinks:    []storage.Sink{sink, storage.NewPipeFileSink(cfg.EnrichedFile)},
				Workbook: storage.NewWorkbookWriter(filepath.Join(filepath.Dir(cfg.ReportFile), "sales.xlsx")),
				AskCriteria: func(validate.Options) model.FilterCriteria {
					asked = true
					return model.FilterCriteria{}
				},
			}).Run(testContext(), model.FilterCriteria{})
			require.NoError(t, err)

			assert.True(t, res.NoData)
			assert.Zero(t, res.RawLines)
			assert.False(t, asked)
			assert.False(t, fetcher.called)
			assert.Nil(t, sink.written)
			assert.Empty(t, res.Report)
			assert.NoFileExists(t, cfg.EnrichedFile)
			assert.NoFileExists(t, cfg.ReportFile)
			assert.NoDirExists(t, filepath.Dir(cfg.ReportFile))
		})
	}
}

func TestRun_CatalogUnavailable(t *testing.T) {
	cfg := testConfig(t)
	fetcher := &mockFetcher{err: apiclient.HTTPUnexpectedStatusCodeError(http.StatusBadGateway)}

	res, err := pipeline.New(pipeline.Dependencies{Config: cfg, Catalog: fetcher, Now: fixedNow}).
		Run(testContext(), model.FilterCriteria{})
	require.NoError(t, err)

	assert.Len(t, res.Enriched, 2)
	assert.Zero(t, res.Enrichment.Matched)
	assert.Contains(t, res.Report, "Success Rate: 0.00%")
}

func TestRun_ReportLayoutIgnoresAggregateSettings(t *testing.T) {
	cfg := testConfig(t)
	cfg.LowThreshold = 3
	cfg.TopN = 1

	res, err := pipeline.New(pipeline.Dependencies{Config: cfg, Catalog: &mockFetcher{}, Now: fixedNow}).
		Run(testContext(), model.FilterCriteria{})
	require.NoError(t, err)

	require.Len(t, res.Aggregates.LowPerformers, 1)
	assert.Equal(t, "Widget", res.Aggregates.LowPerformers[0].Name)
	assert.Len(t, res.Aggregates.TopProducts, 1)

	assert.Contains(t, res.Report, "TOP 5 PRODUCTS")
	assert.Contains(t, res.Report, "TOP 5 CUSTOMERS")
	assert.Contains(t, res.Report, "Low Performing Products (<5 sold): Widget, Gadget")
}

func TestRun_PersistenceFailureIsNotFatal(t *testing.T) {
	cfg := testConfig(t)
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	cfg.ReportFile = filepath.Join(blocker, "sales_report.txt")
	failing := &mockSink{path: "broken", err: errors.New("disk full")}
	working := &mockSink{path: "ok"}

	res, err := pipeline.New(pipeline.Dependencies{
		Config:  cfg,
		Catalog: &mockFetcher{},
		Sinks:   []storage.Sink{failing, working},
	}).Run(testContext(), model.FilterCriteria{})
	require.NoError(t, err)

	assert.Len(t, res.PersistenceErrors, 2, "expected sink and report failures")
	assert.Len(t, working.written, 2)
	assert.NotEmpty(t, res.Report, "the report is rendered despite the write failure")
}

func TestRun_AskCriteria(t *testing.T) {
	cfg := testConfig(t)
	var offered validate.Options

	res, err := pipeline.New(pipeline.Dependencies{
		Config:  cfg,
		Catalog: &mockFetcher{},
		AskCriteria: func(options validate.Options) model.FilterCriteria {
			offered = options
			return model.FilterCriteria{Region: "north"}
		},
	}).Run(appcontext.WithRunID(testContext(), "run-7"), model.FilterCriteria{Region: "South"})
	require.NoError(t, err)

	assert.Equal(t, []string{"North", "South"}, offered.Regions)
	assert.Equal(t, "run-7", res.RunID)
	require.Len(t, res.Valid, 1)
	assert.Equal(t, "T1", res.Valid[0].TransactionID)
	assert.Equal(t, 1, res.Validation.RemovedByRegion)
}
