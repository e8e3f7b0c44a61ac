// Package fanout runs per-item work concurrently over a bounded worker pool.
//
// The two modes make the system's failure-propagation asymmetry explicit:
// Strict fails the whole batch on the first item error (single-contract NFT
// listings must be complete), BestEffort drops failed items and keeps the
// rest (a marketplace view must not vanish because one token 404s).
package fanout

import (
	"context"

	"github.com/alitto/pond/v2"
	"go.uber.org/zap"

	"github.com/openminter/nft-aggregator/internal/logger"
)

// Mode selects how item failures propagate.
type Mode int

const (
	// Strict aborts the batch on the first item error.
	Strict Mode = iota
	// BestEffort skips failed items with a warning log.
	BestEffort
)

// Map applies fn to every item concurrently, at most workers at a time, and
// returns the results in input order. All items are launched before any is
// awaited. In Strict mode the first error (by input order) aborts the call;
// in BestEffort mode failed items are dropped from the result.
func Map[T, R any](ctx context.Context, workers int, mode Mode, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	if len(items) == 0 {
		return []R{}, nil
	}
	if workers <= 0 {
		workers = 1
	}

	pool := pond.NewPool(workers, pond.WithContext(ctx))
	results := make([]R, len(items))
	errs := make([]error, len(items))

	for i, item := range items {
		pool.Submit(func() {
			results[i], errs[i] = fn(ctx, item)
		})
	}
	pool.StopAndWait()

	out := make([]R, 0, len(items))
	for i := range items {
		if errs[i] != nil {
			if mode == Strict {
				return nil, errs[i]
			}
			logger.WarnCtx(ctx, "skipping failed item", zap.Int("index", i), zap.Error(errs[i]))
			continue
		}
		out = append(out, results[i])
	}
	return out, nil
}
