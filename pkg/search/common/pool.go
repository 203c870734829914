// Package common is the parallel-iterator helper shared by every search
// driver: a thin wrapper over golang.org/x/sync/errgroup that hands each
// worker an owned item and collects an owned result, matching §5's
// "operators take one by value and return one" contract — no driver in
// pkg/search hand-rolls its own goroutine/WaitGroup fan-out.
package common

import (
	"context"

	"golang.org/x/sync/errgroup"
)

// Map applies fn to every item concurrently, bounded by workers (values <= 0
// mean unlimited), and returns results in input order. The first error from
// any fn cancels ctx for the remaining in-flight calls and is returned;
// already-started calls are allowed to finish (cooperative cancellation per
// §5), their results discarded. Concurrency is throttled with a semaphore
// channel rather than errgroup.Group.SetLimit, since the module's pinned
// x/sync revision predates that method.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(context.Context, T) (R, error)) ([]R, error) {
	results := make([]R, len(items))
	g, gctx := errgroup.WithContext(ctx)

	var sem chan struct{}
	if workers > 0 {
		sem = make(chan struct{}, workers)
	}

	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			if sem != nil {
				select {
				case sem <- struct{}{}:
					defer func() { <-sem }()
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			r, err := fn(gctx, item)
			if err != nil {
				return err
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
