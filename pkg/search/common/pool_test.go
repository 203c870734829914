package common_test

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"

	"github.com/hungalab/board-allocator/pkg/search/common"
)

func TestMapPreservesOrder(t *testing.T) {
	items := []int{5, 4, 3, 2, 1}
	results, err := common.Map(context.Background(), 2, items, func(_ context.Context, n int) (int, error) {
		return n * n, nil
	})
	require.NoError(t, err)
	require.Equal(t, []int{25, 16, 9, 4, 1}, results)
}

func TestMapPropagatesFirstError(t *testing.T) {
	boom := errors.New("boom")
	_, err := common.Map(context.Background(), 0, []int{1, 2, 3}, func(_ context.Context, n int) (int, error) {
		if n == 2 {
			return 0, boom
		}
		return n, nil
	})
	require.ErrorIs(t, err, boom)
}

func TestMapRespectsWorkerLimit(t *testing.T) {
	var inFlight, maxInFlight int64
	items := make([]int, 20)
	_, err := common.Map(context.Background(), 3, items, func(_ context.Context, _ int) (struct{}, error) {
		n := atomic.AddInt64(&inFlight, 1)
		for {
			cur := atomic.LoadInt64(&maxInFlight)
			if n <= cur || atomic.CompareAndSwapInt64(&maxInFlight, cur, n) {
				break
			}
		}
		atomic.AddInt64(&inFlight, -1)
		return struct{}{}, nil
	})
	require.NoError(t, err)
	require.LessOrEqual(t, atomic.LoadInt64(&maxInFlight), int64(3))
}
