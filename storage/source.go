// Package storage reads the sales source file and writes the run's outputs.
package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"babylon/salesanalytics/appcontext"
)

// HeaderPrefix starts the header line of a sales file.
const HeaderPrefix = "TransactionID"

// ErrSourceUnreadable is returned when the source file cannot be opened or read.
var ErrSourceUnreadable = errors.New("source file unreadable")

// ErrEncoding is returned when none of the supported encodings decode the source file.
var ErrEncoding = errors.New("source file encoding not supported")

// SourceUnreadableError wraps ErrSourceUnreadable.
func SourceUnreadableError(path string, baseErr error) error {
	return fmt.Errorf("%w, %s: %w", ErrSourceUnreadable, path, baseErr)
}

// EncodingError wraps ErrEncoding.
func EncodingError(path string) error {
	return fmt.Errorf("%w, %s", ErrEncoding, path)
}

type sourceEncoding struct {
	name string
	// strict encodings reject input that is not valid for them.
	strict   bool
	encoding encoding.Encoding
}

// sourceEncodings are tried in order. Latin-1 maps every byte, so it accepts
// any input that is not valid UTF-8.
var sourceEncodings = []sourceEncoding{
	{name: "utf-8", strict: true, encoding: unicode.UTF8BOM},
	{name: "latin-1", encoding: charmap.ISO8859_1},
	{name: "windows-1252", encoding: charmap.Windows1252},
}

// ReadSalesData reads the sales file at path and returns its record lines,
// trimmed, without blank lines and without the header line.
func ReadSalesData(ctx context.Context, path string) ([]string, error) {
	logger := appcontext.LoggerFromContext(ctx)

	raw, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, SourceUnreadableError(path, err)
	}

	text, name, ok := decode(raw)
	if !ok {
		return nil, EncodingError(path)
	}
	logger.DebugContext(ctx, "Decoded source file", "path", path, "encoding", name)

	return SplitRecords(text), nil
}

// SplitRecords splits text into trimmed record lines, dropping blank lines
// and header lines.
func SplitRecords(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, HeaderPrefix) {
			continue
		}
		lines = append(lines, line)
	}

	return lines
}

func decode(raw []byte) (string, string, bool) {
	for _, enc := range sourceEncodings {
		if enc.strict && !utf8.Valid(raw) {
			continue
		}

		out, err := enc.encoding.NewDecoder().Bytes(raw)
		if err != nil {
			continue
		}

		return string(out), enc.name, true
	}

	return "", "", false
}

// writeFile writes data to path, creating missing parent directories.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}

	return nil
}

// WriteReport writes the rendered report text to path.
func WriteReport(ctx context.Context, path, text string) error {
	if err := writeFile(path, []byte(text)); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	appcontext.LoggerFromContext(ctx).InfoContext(ctx, "Report written", "path", path)

	return nil
}
