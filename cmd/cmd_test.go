package cmd_test

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/cmd"
	"babylon/salesanalytics/storage"
)

const source = "T1|2024-01-01|P101|Widget|2|100|C1|North\nT2|2024-01-02|P999|Gadget|3|50|C2|South\n"

// chdir changes the working directory for the duration of the test
// (equivalent of testing.T.Chdir, which requires Go 1.24).
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatal(err)
		}
	})
}

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	chdir(t, t.TempDir())

	var out bytes.Buffer
	root := cmd.NewRootCmd(new(slog.LevelVar))
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetIn(strings.NewReader(stdin))

	ctx := appcontext.WithLogger(context.Background(), slog.New(slog.NewTextHandler(io.Discard, nil)))
	err := root.ExecuteContext(ctx)

	return out.String(), err
}

func catalogServer(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[{"id":101,"title":"Widget","category":"tools","brand":"Acme","rating":4.5}]}`))
	}))
	t.Cleanup(server.Close)

	return server
}

func writeSource(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sales_data.txt")
	require.NoError(t, os.WriteFile(path, []byte(source), 0o644))

	return path
}

func TestAnalyze(t *testing.T) {
	input := writeSource(t)
	server := catalogServer(t)
	out := t.TempDir()
	t.Setenv("SALES_ENRICHED_FILE", filepath.Join(out, "enriched.txt"))
	t.Setenv("SALES_REPORT_FILE", filepath.Join(out, "report.txt"))
	bsonPath := filepath.Join(out, "sales.bson")

	stdout, err := execute(t, "",
		"analyze", "--input", input, "--catalog-url", server.URL,
		"--region", "NORTH", "--sink", "bson:"+bsonPath,
	)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Valid: 1 | Invalid: 0 | Enriched: 1/1")

	report, err := os.ReadFile(filepath.Join(out, "report.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(report), "Success Rate: 100.00%")

	enriched, err := os.ReadFile(filepath.Join(out, "enriched.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(enriched), "T1|2024-01-01|P101|Widget|2|100|C1|North|tools|Acme|4.5|True")

	dumped, err := storage.ReadBSONDump(bsonPath)
	require.NoError(t, err)
	assert.Len(t, dumped, 1)
}

func TestAnalyze_Interactive(t *testing.T) {
	input := writeSource(t)
	server := catalogServer(t)
	out := t.TempDir()
	t.Setenv("SALES_ENRICHED_FILE", filepath.Join(out, "enriched.txt"))
	t.Setenv("SALES_REPORT_FILE", filepath.Join(out, "report.txt"))

	stdout, err := execute(t, "y\nsouth\nabc\n\n", "analyze", "--interactive", "--input", input, "--catalog-url", server.URL)
	require.NoError(t, err)

	assert.Contains(t, stdout, "Regions: North, South")
	assert.Contains(t, stdout, "Invalid number for Min Amount. Ignoring.")
	assert.Contains(t, stdout, "Valid: 1 | Invalid: 0 | Enriched: 0/1")
}

func TestAnalyze_MissingSource(t *testing.T) {
	_, err := execute(t, "", "analyze", "--input", filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	assert.ErrorIs(t, err, storage.ErrSourceUnreadable)
}

func TestAnalyze_NoData(t *testing.T) {
	input := filepath.Join(t.TempDir(), "sales_data.txt")
	require.NoError(t, os.WriteFile(input, []byte("TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region\n\n"), 0o644))
	out := t.TempDir()
	t.Setenv("SALES_ENRICHED_FILE", filepath.Join(out, "enriched.txt"))
	t.Setenv("SALES_REPORT_FILE", filepath.Join(out, "report.txt"))

	stdout, err := execute(t, "", "analyze", "--input", input, "--catalog-url", catalogServer(t).URL)
	require.NoError(t, err)

	assert.Equal(t, "No data found. Exiting.\n", stdout)
	assert.NoFileExists(t, filepath.Join(out, "report.txt"))
	assert.NoFileExists(t, filepath.Join(out, "enriched.txt"))
}

func TestAnalyze_InvalidFlags(t *testing.T) {
	input := writeSource(t)

	tests := []struct {
		name string
		args []string
	}{
		{name: "min amount", args: []string{"--min-amount", "ten"}},
		{name: "max amount", args: []string{"--max-amount", "1,000"}},
		{name: "sink kind", args: []string{"--sink", "csv:out.csv"}},
		{name: "catalog url", args: []string{"--catalog-url", "not a url"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", append([]string{"analyze", "--input", input}, tt.args...)...)
			assert.Error(t, err)
		})
	}
}

func TestGenerateSyntheticData(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "synthetic")

	stdout, err := execute(t, "", "generate-synthetic-data", "--rows", "12", "--dir", dir, "--seed", "3")
	require.NoError(t, err)

	path := strings.TrimSpace(stdout)
	assert.Equal(t, filepath.Join(dir, "sales_data.txt"), path)

	lines, err := storage.ReadSalesData(context.Background(), path)
	require.NoError(t, err)
	assert.Len(t, lines, 14)
}

func TestVersion(t *testing.T) {
	stdout, err := execute(t, "", "version", "--config", "does-not-exist.yaml")

	require.NoError(t, err)
	assert.Equal(t, "salesanalytics dev\n", stdout)
}
