package ga

import (
	"context"
	"math/rand"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/search/common"
)

// SeedPopulation builds size independently-seeded individuals via
// oplib.InitializeByAssist, in parallel over workers, matching every DEAP
// driver's self.toolbox.population(self.pop_num) call.
func SeedPopulation(ctx context.Context, workers int, rng *rand.Rand, u *allocator.AllocatorUnit, size int) ([]*allocator.AllocatorUnit, error) {
	seeds := make([]int64, size)
	for i := range seeds {
		seeds[i] = rng.Int63()
	}
	return common.Map(ctx, workers, seeds, func(_ context.Context, s int64) (*allocator.AllocatorUnit, error) {
		return SeedOne(rand.New(rand.NewSource(s)), u)
	})
}

// EvaluatePopulation evaluates every unit in parallel over workers.
func EvaluatePopulation(ctx context.Context, workers int, units []*allocator.AllocatorUnit) ([]Individual, error) {
	return common.Map(ctx, workers, units, func(_ context.Context, u *allocator.AllocatorUnit) (Individual, error) {
		return Evaluate(u), nil
	})
}
