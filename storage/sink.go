package storage

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/model"
	"babylon/salesanalytics/parser"
)

// EnrichedHeader is the header line of the enriched file.
var EnrichedHeader = []string{
	"TransactionID", "Date", "ProductID", "ProductName", "Quantity",
	"UnitPrice", "CustomerID", "Region", "API_Category", "API_Brand",
	"API_Rating", "API_Match",
}

var errUnknownSinkKind = errors.New("unknown sink kind")
var errMalformedEnriched = errors.New("malformed enriched record")

// UnknownSinkKindError wraps errUnknownSinkKind.
func UnknownSinkKindError(target string) error {
	return fmt.Errorf("%w, %s", errUnknownSinkKind, target)
}

// MalformedEnrichedError wraps errMalformedEnriched.
func MalformedEnrichedError(line int, detail string) error {
	return fmt.Errorf("%w, line %d: %s", errMalformedEnriched, line, detail)
}

// Sink persists a snapshot of enriched transactions.
type Sink interface {
	Write(ctx context.Context, transactions []model.EnrichedTransaction) error
	Path() string
}

// NewSink builds a sink from a "kind:path" target. Supported kinds are pipe and bson.
func NewSink(target string) (Sink, error) {
	kind, path, ok := strings.Cut(target, ":")
	if !ok || path == "" {
		return nil, UnknownSinkKindError(target)
	}

	switch kind {
	case "pipe":
		return NewPipeFileSink(path), nil
	case "bson":
		return NewBSONDumpSink(path), nil
	default:
		return nil, UnknownSinkKindError(target)
	}
}

// PipeFileSink writes the 12-column pipe-delimited enriched file.
type PipeFileSink struct {
	path string
}

// NewPipeFileSink creates a PipeFileSink writing to path.
func NewPipeFileSink(path string) *PipeFileSink {
	return &PipeFileSink{path: path}
}

// Path returns the target file.
func (s *PipeFileSink) Path() string { return s.path }

// Write replaces the target file with the header and one row per transaction.
func (s *PipeFileSink) Write(ctx context.Context, transactions []model.EnrichedTransaction) error {
	var b strings.Builder
	b.WriteString(strings.Join(EnrichedHeader, parser.Delimiter))
	b.WriteByte('\n')
	for _, t := range transactions {
		b.WriteString(FormatEnriched(t))
		b.WriteByte('\n')
	}

	if err := writeFile(s.path, []byte(b.String())); err != nil {
		return fmt.Errorf("failed to save enriched data: %w", err)
	}

	appcontext.LoggerFromContext(ctx).InfoContext(ctx, "Enriched data saved",
		"path", s.path, "records", len(transactions))

	return nil
}

// FormatEnriched renders one enriched row. Absent catalog values render empty.
func FormatEnriched(t model.EnrichedTransaction) string {
	var category, brand, rating string
	if t.APICategory != nil {
		category = *t.APICategory
	}
	if t.APIBrand != nil {
		brand = *t.APIBrand
	}
	if t.APIRating != nil {
		rating = strconv.FormatFloat(*t.APIRating, 'f', -1, 64)
	}

	match := "False"
	if t.APIMatch {
		match = "True"
	}

	return strings.Join([]string{
		t.TransactionID,
		t.Date,
		t.ProductID,
		t.ProductName,
		strconv.Itoa(t.Quantity),
		t.UnitPrice.String(),
		t.CustomerID,
		t.Region,
		category,
		brand,
		rating,
		match,
	}, parser.Delimiter)
}

// ParseEnriched reads rows written by PipeFileSink. Blank lines and the header
// are skipped.
func ParseEnriched(lines []string) ([]model.EnrichedTransaction, error) {
	var out []model.EnrichedTransaction
	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, HeaderPrefix) {
			continue
		}

		fields := strings.Split(line, parser.Delimiter)
		if len(fields) != len(EnrichedHeader) {
			return nil, MalformedEnrichedError(i+1, fmt.Sprintf("expected %d fields, got %d", len(EnrichedHeader), len(fields)))
		}

		base, ok := parser.ParseLine(strings.Join(fields[:parser.FieldCount], parser.Delimiter))
		if !ok {
			return nil, MalformedEnrichedError(i+1, "invalid source fields")
		}

		et := model.EnrichedTransaction{
			Transaction: base,
			APIMatch:    strings.EqualFold(strings.TrimSpace(fields[11]), "true"),
		}
		if v := strings.TrimSpace(fields[8]); v != "" {
			et.APICategory = &v
		}
		if v := strings.TrimSpace(fields[9]); v != "" {
			et.APIBrand = &v
		}
		if v := strings.TrimSpace(fields[10]); v != "" {
			rating, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, MalformedEnrichedError(i+1, "invalid rating "+v)
			}
			et.APIRating = &rating
		}

		out = append(out, et)
	}

	return out, nil
}
