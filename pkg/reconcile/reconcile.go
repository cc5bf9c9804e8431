package reconcile

import (
	"context"
	"sync"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xRobin/data-misc/pkg/types"
)

var logger *zap.SugaredLogger

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger = l.Sugar()
}

// Resolver fetches on-chain metadata for one token address.
type Resolver interface {
	Resolve(ctx context.Context, addr common.Address) (types.TokenRecord, error)
}

// Result holds the enriched tokens re-projected into each engine's
// original row order, plus the addresses that failed resolution and were
// dropped from both outputs.
type Result struct {
	V1      []types.TokenRecord
	V2      []types.TokenRecord
	Skipped []common.Address

	// Processed is the number of distinct addresses that resolved
	// successfully.
	Processed int
}

// Engine turns a MissingTokenBatch into per-engine TokenRecord sequences.
// Each distinct address is resolved exactly once even when it appears in
// both source lists, and one failing token never aborts the batch.
type Engine struct {
	resolver Resolver
	workers  int

	// Progress, when set, is called after every completed resolution
	// with the number of done and total addresses.
	Progress func(done, total int)
}

type Option func(*Engine)

// WithWorkers sets the size of the resolution worker pool. Resolutions
// are independent of each other, so any size >= 1 produces identical
// results.
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

func NewEngine(resolver Resolver, opts ...Option) *Engine {
	e := &Engine{resolver: resolver, workers: 1}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run resolves every distinct address of the batch and projects the
// records back into v1 and v2 row order. Addresses whose resolution
// failed are logged and dropped from both outputs; all other addresses
// keep their relative order.
func (e *Engine) Run(ctx context.Context, batch types.MissingTokenBatch) (*Result, error) {
	if batch.IsEmpty() {
		return &Result{}, nil
	}

	workSet := batch.AllTokens()
	resolved, failed := e.resolveAll(ctx, workSet)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Skipped keeps work-set order so runs are reproducible regardless
	// of worker completion order.
	result := &Result{
		V1:        project(batch.V1, resolved),
		V2:        project(batch.V2, resolved),
		Processed: len(resolved),
	}
	for _, addr := range workSet {
		if _, ok := failed[addr]; ok {
			result.Skipped = append(result.Skipped, addr)
		}
	}
	return result, nil
}

// resolveAll resolves the work set with a pool of e.workers goroutines.
// Both accumulator maps are keyed by address and written under one lock,
// so completion order does not matter.
func (e *Engine) resolveAll(ctx context.Context, workSet []common.Address) (map[common.Address]types.TokenRecord, map[common.Address]error) {
	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		resolved = make(map[common.Address]types.TokenRecord, len(workSet))
		failed   = make(map[common.Address]error)
		jobs     = make(chan common.Address)
		done     = 0
	)

	workers := e.workers
	if workers > len(workSet) {
		workers = len(workSet)
	}

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for addr := range jobs {
				record, err := e.resolver.Resolve(ctx, addr)

				mu.Lock()
				if err != nil {
					// Catch-all on purpose: a broken token must not
					// sink the whole batch. The address is dropped
					// from both outputs and named in the summary.
					logger.Warnw("something wrong with token, skipping", "token", addr.Hex(), "error", err)
					failed[addr] = err
				} else {
					resolved[addr] = record
				}
				done++
				if e.Progress != nil {
					e.Progress(done, len(workSet))
				}
				mu.Unlock()
			}
		}()
	}

	for _, addr := range workSet {
		select {
		case <-ctx.Done():
			close(jobs)
			wg.Wait()
			return resolved, failed
		case jobs <- addr:
		}
	}
	close(jobs)
	wg.Wait()
	return resolved, failed
}

// project maps a source list onto its resolved records, keeping the
// list's row order and leaving out addresses that failed resolution. An
// address present in both source lists is rendered once per list without
// having been fetched twice.
func project(addresses []common.Address, resolved map[common.Address]types.TokenRecord) []types.TokenRecord {
	records := make([]types.TokenRecord, 0, len(addresses))
	for _, addr := range addresses {
		if record, ok := resolved[addr]; ok {
			records = append(records, record)
		}
	}
	return records
}
