package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"babylon/salesanalytics/appcontext"
	"babylon/salesanalytics/model"
)

// enrichedDocument is the BSON layout of one enriched transaction.
type enrichedDocument struct {
	RunID         string               `bson:"runId,omitempty"`
	TransactionID string               `bson:"transactionId"`
	Date          string               `bson:"date"`
	ProductID     string               `bson:"productId"`
	ProductName   string               `bson:"productName"`
	Quantity      int                  `bson:"quantity"`
	UnitPrice     primitive.Decimal128 `bson:"unitPrice"`
	CustomerID    string               `bson:"customerId"`
	Region        string               `bson:"region"`
	APICategory   *string              `bson:"apiCategory,omitempty"`
	APIBrand      *string              `bson:"apiBrand,omitempty"`
	APIRating     *float64             `bson:"apiRating,omitempty"`
	APIMatch      bool                 `bson:"apiMatch"`
}

// BSONDumpSink writes enriched transactions as concatenated BSON documents,
// the layout mongorestore reads for a single collection.
type BSONDumpSink struct {
	path string
}

// NewBSONDumpSink creates a BSONDumpSink writing to path.
func NewBSONDumpSink(path string) *BSONDumpSink {
	return &BSONDumpSink{path: path}
}

// Path returns the target file.
func (s *BSONDumpSink) Path() string { return s.path }

// Write replaces the target file with one document per transaction.
func (s *BSONDumpSink) Write(ctx context.Context, transactions []model.EnrichedTransaction) error {
	runID := appcontext.RunIDFromContext(ctx)

	var buf bytes.Buffer
	for _, t := range transactions {
		doc, err := toDocument(runID, t)
		if err != nil {
			return err
		}

		raw, err := bson.Marshal(doc)
		if err != nil {
			return fmt.Errorf("failed to marshal transaction %s: %w", t.TransactionID, err)
		}
		buf.Write(raw)
	}

	if err := writeFile(s.path, buf.Bytes()); err != nil {
		return fmt.Errorf("failed to save bson dump: %w", err)
	}

	appcontext.LoggerFromContext(ctx).InfoContext(ctx, "BSON dump saved",
		"path", s.path, "records", len(transactions))

	return nil
}

func toDocument(runID string, t model.EnrichedTransaction) (enrichedDocument, error) {
	price, err := primitive.ParseDecimal128(t.UnitPrice.String())
	if err != nil {
		return enrichedDocument{}, fmt.Errorf("failed to convert unit price of %s: %w", t.TransactionID, err)
	}

	return enrichedDocument{
		RunID:         runID,
		TransactionID: t.TransactionID,
		Date:          t.Date,
		ProductID:     t.ProductID,
		ProductName:   t.ProductName,
		Quantity:      t.Quantity,
		UnitPrice:     price,
		CustomerID:    t.CustomerID,
		Region:        t.Region,
		APICategory:   t.APICategory,
		APIBrand:      t.APIBrand,
		APIRating:     t.APIRating,
		APIMatch:      t.APIMatch,
	}, nil
}

// ReadBSONDump reads a file written by BSONDumpSink.
func ReadBSONDump(path string) ([]model.EnrichedTransaction, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, SourceUnreadableError(path, err)
	}
	defer f.Close()

	var out []model.EnrichedTransaction
	for {
		raw, err := bson.NewFromIOReader(f)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read bson document %d: %w", len(out), err)
		}

		var doc enrichedDocument
		if err := bson.Unmarshal(raw, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode bson document %d: %w", len(out), err)
		}

		price, err := decimal.NewFromString(doc.UnitPrice.String())
		if err != nil {
			return nil, fmt.Errorf("failed to convert unit price of %s: %w", doc.TransactionID, err)
		}

		out = append(out, model.EnrichedTransaction{
			Transaction: model.Transaction{
				TransactionID: doc.TransactionID,
				Date:          doc.Date,
				ProductID:     doc.ProductID,
				ProductName:   doc.ProductName,
				Quantity:      doc.Quantity,
				UnitPrice:     price,
				CustomerID:    doc.CustomerID,
				Region:        doc.Region,
			},
			APICategory: doc.APICategory,
			APIBrand:    doc.APIBrand,
			APIRating:   doc.APIRating,
			APIMatch:    doc.APIMatch,
		})
	}

	return out, nil
}
