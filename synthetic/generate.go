package synthetic

import (
	"context"
	"fmt"

	"babylon/salesanalytics/appcontext"
)

// RunGenerateSyntheticData generates a synthetic sales file for local runs.
func RunGenerateSyntheticData(ctx context.Context, rows int, dir string, seed int64) (string, error) {
	logger := appcontext.LoggerFromContext(ctx)

	logger.InfoContext(ctx, "Generating synthetic data", "rows", rows, "dir", dir, "seed", seed)
	path, err := GenerateSyntheticData(rows, dir, seed)
	if err != nil {
		return "", fmt.Errorf("failed to generate synthetic data: %w", err)
	}
	logger.InfoContext(ctx, "Synthetic data generated successfully", "path", path)

	return path, nil
}
