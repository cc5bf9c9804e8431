package reconcile

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/0xRobin/data-misc/pkg/types"
)

var (
	tokenA = common.HexToAddress("0x96B00208911d72eA9f10c3303fF319427A7884C9")
	tokenB = common.HexToAddress("0xE154A435408211AC89757b76C4FbE4Dc9ED2Ef27")
	tokenC = common.HexToAddress("0xFCc5c47bE19d06bF83eB04298b026F81069FF65b")
	tokenD = common.HexToAddress("0x1f9840a85d5aF5bf1D1762F925BDADdC4201F984")
)

// mockResolver counts Resolve calls per address and fails the addresses
// listed in failing.
type mockResolver struct {
	mu      sync.Mutex
	calls   map[common.Address]int
	failing map[common.Address]bool
}

func newMockResolver(failing ...common.Address) *mockResolver {
	m := &mockResolver{
		calls:   make(map[common.Address]int),
		failing: make(map[common.Address]bool),
	}
	for _, addr := range failing {
		m.failing[addr] = true
	}
	return m
}

func (m *mockResolver) Resolve(_ context.Context, addr common.Address) (types.TokenRecord, error) {
	m.mu.Lock()
	m.calls[addr]++
	m.mu.Unlock()

	if m.failing[addr] {
		return types.TokenRecord{}, errors.New("execution reverted")
	}
	return types.TokenRecord{
		Address:  addr,
		Symbol:   strings.ToUpper(addr.Hex()[2:6]),
		Decimals: 18,
	}, nil
}

func TestEngine_Run_EmptyBatch(t *testing.T) {
	resolver := newMockResolver()
	result, err := NewEngine(resolver).Run(context.Background(), types.MissingTokenBatch{})

	require.NoError(t, err)
	assert.Empty(t, result.V1)
	assert.Empty(t, result.V2)
	assert.Empty(t, result.Skipped)
	assert.Zero(t, result.Processed)
	assert.Empty(t, resolver.calls)
}

func TestEngine_Run_ResolvesOverlapOnce(t *testing.T) {
	resolver := newMockResolver()
	batch := types.MissingTokenBatch{
		V1: []common.Address{tokenA, tokenB},
		V2: []common.Address{tokenB, tokenA, tokenC},
	}

	result, err := NewEngine(resolver).Run(context.Background(), batch)
	require.NoError(t, err)

	for addr, count := range resolver.calls {
		assert.Equalf(t, 1, count, "token %s resolved %d times", addr, count)
	}
	assert.Len(t, resolver.calls, 3)
	assert.Equal(t, 3, result.Processed)

	// overlap is rendered in both outputs, in each list's own order
	assert.Equal(t, []common.Address{tokenA, tokenB}, recordAddresses(result.V1))
	assert.Equal(t, []common.Address{tokenB, tokenA, tokenC}, recordAddresses(result.V2))
}

func TestEngine_Run_SkipsFailedAddresses(t *testing.T) {
	resolver := newMockResolver(tokenB)
	batch := types.MissingTokenBatch{
		V1: []common.Address{tokenA, tokenB, tokenC},
		V2: []common.Address{tokenB, tokenD},
	}

	result, err := NewEngine(resolver).Run(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, []common.Address{tokenA, tokenC}, recordAddresses(result.V1))
	assert.Equal(t, []common.Address{tokenD}, recordAddresses(result.V2))
	assert.Equal(t, []common.Address{tokenB}, result.Skipped)
	assert.Equal(t, 3, result.Processed)
}

func TestEngine_Run_ConcurrentMatchesSequential(t *testing.T) {
	batch := types.MissingTokenBatch{
		V1: []common.Address{tokenA, tokenB, tokenC, tokenA},
		V2: []common.Address{tokenD, tokenC, tokenB},
	}

	sequential, err := NewEngine(newMockResolver(tokenC)).Run(context.Background(), batch)
	require.NoError(t, err)

	for workers := 2; workers <= 8; workers *= 2 {
		resolver := newMockResolver(tokenC)
		concurrent, err := NewEngine(resolver, WithWorkers(workers)).Run(context.Background(), batch)
		require.NoError(t, err)

		assert.Equal(t, sequential, concurrent, "workers=%d", workers)
		for addr, count := range resolver.calls {
			assert.Equalf(t, 1, count, "workers=%d token %s resolved %d times", workers, addr, count)
		}
	}
}

func TestEngine_Run_ReportsProgress(t *testing.T) {
	resolver := newMockResolver(tokenA)
	engine := NewEngine(resolver, WithWorkers(3))

	var mu sync.Mutex
	var seen []int
	engine.Progress = func(done, total int) {
		mu.Lock()
		defer mu.Unlock()
		assert.Equal(t, 3, total)
		seen = append(seen, done)
	}

	_, err := engine.Run(context.Background(), types.MissingTokenBatch{
		V1: []common.Address{tokenA, tokenB, tokenC},
	})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, seen)
}

func TestEngine_Run_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewEngine(newMockResolver()).Run(ctx, types.MissingTokenBatch{
		V1: []common.Address{tokenA, tokenB},
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func recordAddresses(records []types.TokenRecord) []common.Address {
	addresses := make([]common.Address, 0, len(records))
	for _, r := range records {
		addresses = append(addresses, r.Address)
	}
	return addresses
}
