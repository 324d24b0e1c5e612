package aggregate

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"babylon/salesanalytics/model"
)

// Summary bundles every aggregate of one transaction set.
type Summary struct {
	TotalRevenue  decimal.Decimal
	Regions       []RegionStats
	TopProducts   []ProductStats
	Customers     []CustomerStats
	Daily         []DailyStats
	LowPerformers []ProductStats
	PeakDay       *PeakDay // nil when there is no data
}

// Options tunes Compute.
type Options struct {
	TopN         int
	LowThreshold int
}

// Compute runs the independent aggregation passes concurrently. The input is
// only read, so the passes share it without copying.
func Compute(ctx context.Context, transactions []model.Transaction, opts Options) (*Summary, error) {
	if opts.TopN <= 0 {
		opts.TopN = DefaultTopN
	}
	if opts.LowThreshold <= 0 {
		opts.LowThreshold = DefaultLowThreshold
	}

	var s Summary
	g, ctx := errgroup.WithContext(ctx)

	run := func(f func()) {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			f()
			return nil
		})
	}

	run(func() { s.TotalRevenue = TotalRevenue(transactions) })
	run(func() { s.Regions = RegionWiseSales(transactions) })
	run(func() { s.TopProducts = TopProducts(transactions, opts.TopN) })
	run(func() { s.Customers = CustomerAnalysis(transactions) })
	run(func() { s.Daily = DailySalesTrend(transactions) })
	run(func() { s.LowPerformers = LowPerformers(transactions, opts.LowThreshold) })
	run(func() {
		if peak, ok := PeakSalesDay(transactions); ok {
			s.PeakDay = &peak
		}
	})

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("failed to compute aggregates: %w", err)
	}

	return &s, nil
}
