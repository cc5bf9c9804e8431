package types

import (
	"github.com/ethereum/go-ethereum/common"
)

// TokenRecord holds the on-chain metadata of an ERC20 token. Immutable
// once constructed by the resolver.
type TokenRecord struct {
	Address  common.Address
	Symbol   string
	Decimals uint8
}

// MissingTokenBatch holds the list of missing tokens per Dune engine.
// Keeping both lists in one place lets us avoid redundant EVM calls when
// the two lists overlap.
type MissingTokenBatch struct {
	V1 []common.Address
	V2 []common.Address
}

// IsEmpty is true if there are no tokens in both lists.
func (b MissingTokenBatch) IsEmpty() bool {
	return len(b.V1) == 0 && len(b.V2) == 0
}

// AllTokens returns the distinct union of both lists in first-seen order.
// common.Address is a fixed 20-byte value, so mixed-case duplicates from
// the two sources collapse to one entry.
func (b MissingTokenBatch) AllTokens() []common.Address {
	seen := make(map[common.Address]struct{}, len(b.V1)+len(b.V2))
	all := make([]common.Address, 0, len(b.V1)+len(b.V2))
	for _, list := range [][]common.Address{b.V1, b.V2} {
		for _, addr := range list {
			if _, ok := seen[addr]; ok {
				continue
			}
			seen[addr] = struct{}{}
			all = append(all, addr)
		}
	}
	return all
}
