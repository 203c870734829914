// Package ncga implements the neighborhood-cultivation driver of spec
// §4.6.3, grounded on original_source/ncga.py's run() loop: each
// generation, sort the population by a single objective dimension (cycling
// through max_slot_num/total_edges/routed_switches across generations, or
// picking one uniformly at random, per SortMethod), take the best
// OffspringSize as parents, breed and mutate them, then select the next
// generation from the whole population plus offsprings by strength-Pareto selection
// (tools.selSPEA2). Shares every mate/mutate/evaluate step with nsga2 and
// spea2 via pkg/search/ga.
package ncga

import (
	"context"
	"math/rand"
	"sort"
	"time"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/evaluator"
	"github.com/hungalab/board-allocator/pkg/search/ga"
)

// SortMethod names which objective-dimension rotation picks the parent
// sort key each generation.
type SortMethod int

const (
	// Cyclic cycles through the three objective dimensions one per
	// generation, in (max_slot_num, total_edges, routed_switches) order.
	Cyclic SortMethod = iota
	// Random picks a dimension uniformly at random every generation.
	Random
)

// Config parameterizes a run. Zero values fall back to ncga.py's
// defaults: ArchiveSize 40, OffspringSize = ArchiveSize rounded down to
// even, MatePb 1, MutationPb 0.5, SortMethod Cyclic.
type Config struct {
	Budget        time.Duration
	Workers       int
	Seed          int64
	ArchiveSize   int
	OffspringSize int
	MatePb        float64
	MutationPb    float64
	SortMethod    SortMethod
}

// Result is the driver's report.
type Result struct {
	ParetoFront []ga.Individual
	Generations int
}

func withDefaults(cfg Config) Config {
	if cfg.ArchiveSize <= 0 {
		cfg.ArchiveSize = 40
	}
	if cfg.OffspringSize <= 0 {
		cfg.OffspringSize = cfg.ArchiveSize - (cfg.ArchiveSize % 2)
	}
	if cfg.MatePb == 0 {
		cfg.MatePb = 1
	}
	if cfg.MutationPb == 0 {
		cfg.MutationPb = 0.5
	}
	return cfg
}

var dims = []func(evaluator.Objective) int{
	func(o evaluator.Objective) int { return o.MaxSlotNum },
	func(o evaluator.Objective) int { return o.TotalEdges },
	func(o evaluator.Objective) int { return o.RoutedSwitches },
}

// Run seeds a population of cfg.ArchiveSize individuals and evolves it for
// cfg.Budget.
func Run(ctx context.Context, u *allocator.AllocatorUnit, cfg Config) (Result, error) {
	cfg = withDefaults(cfg)
	rng := rand.New(rand.NewSource(cfg.Seed))

	rawPop, err := ga.SeedPopulation(ctx, cfg.Workers, rng, u, cfg.ArchiveSize)
	if err != nil {
		return Result{}, err
	}
	pop, err := ga.EvaluatePopulation(ctx, cfg.Workers, rawPop)
	if err != nil {
		return Result{}, err
	}

	front := ga.NewParetoFront()
	front.Update(pop)

	res := Result{}
	deadline := time.Now().Add(cfg.Budget)

	for gen := 0; time.Now().Before(deadline); gen++ {
		select {
		case <-ctx.Done():
			res.ParetoFront = front.Items()
			return res, ctx.Err()
		default:
		}
		res.Generations++

		var dim int
		switch cfg.SortMethod {
		case Random:
			dim = rng.Intn(len(dims))
		default:
			dim = gen % len(dims)
		}
		key := dims[dim]

		sorted := append([]ga.Individual(nil), pop...)
		sort.Slice(sorted, func(i, j int) bool { return key(sorted[i].Objective) < key(sorted[j].Objective) })
		n := cfg.OffspringSize
		if n > len(sorted) {
			n = len(sorted)
		}
		parentUnits := make([]*allocator.AllocatorUnit, n)
		for i := 0; i < n; i++ {
			parentUnits[i] = sorted[i].Unit
		}

		offspringUnits, err := ga.Breed(ctx, cfg.Workers, rng, parentUnits, cfg.MatePb, cfg.MutationPb)
		if err != nil {
			res.ParetoFront = front.Items()
			return res, err
		}
		offspring, err := ga.EvaluatePopulation(ctx, cfg.Workers, offspringUnits)
		if err != nil {
			res.ParetoFront = front.Items()
			return res, err
		}

		combined := append(append([]ga.Individual{}, pop...), offspring...)
		idx := ga.SelectSPEA2(ga.Objectives(combined), cfg.ArchiveSize)
		pop = ga.Select(combined, idx)

		front.Update(pop)
	}

	res.ParetoFront = front.Items()
	return res, nil
}
