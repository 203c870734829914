package ga

import (
	"math/rand"

	"github.com/hungalab/board-allocator/pkg/allocator"
	"github.com/hungalab/board-allocator/pkg/oplib"
)

// Mutate applies node_swap with probability mutationPb, otherwise returns
// the individual unchanged (still cloned, so callers always own a fresh
// copy regardless of which branch runs).
func Mutate(rng *rand.Rand, u *allocator.AllocatorUnit, mutationPb float64) (*allocator.AllocatorUnit, error) {
	if rng.Float64() >= mutationPb {
		return u.Clone(), nil
	}
	return oplib.NodeSwap(rng, u)
}
