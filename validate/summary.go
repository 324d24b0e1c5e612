package validate

import (
	"context"
	"log/slog"
)

// Summary counts what each validation and filter stage removed.
type Summary struct {
	TotalInput      int
	InvalidCount    int
	RemovedByRegion int
	RemovedByAmount int
	FinalCount      int
}

// Log prints the summary to the provided logger.
func (s Summary) Log(ctx context.Context, logger *slog.Logger) {
	logger.InfoContext(ctx, "Validation summary",
		"totalInput", s.TotalInput,
		"invalid", s.InvalidCount,
		"filteredByRegion", s.RemovedByRegion,
		"filteredByAmount", s.RemovedByAmount,
		"finalCount", s.FinalCount,
	)
	if s.FinalCount == 0 {
		logger.WarnContext(ctx, "No valid transactions left after filtering/validation")
	}
}
