package tokens

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"

	"github.com/0xRobin/data-misc/pkg/tokens/abis"
	"github.com/0xRobin/data-misc/pkg/types"
)

// NativeAsset is the conventional sentinel address for the chain's native
// currency. It is not a contract, so it resolves without any eth_call.
var NativeAsset = common.HexToAddress("0xEeeeeEeeeEeEeeEeEeEeeEEEeeeeEeeeeeeeEEeE")

var nativeAssetRecord = types.TokenRecord{
	Address:  NativeAsset,
	Symbol:   "ETH",
	Decimals: 18,
}

// ResolutionError means the symbol/decimals reads of one token failed.
// It only condemns that token, callers keep processing the rest.
type ResolutionError struct {
	Address common.Address
	Err     error
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("resolve token %s: %s", e.Address, e.Err)
}

func (e *ResolutionError) Unwrap() error { return e.Err }

// Resolver reads ERC20 metadata straight from the chain.
type Resolver struct {
	caller ethereum.ContractCaller
}

func NewResolver(caller ethereum.ContractCaller) *Resolver {
	return &Resolver{caller: caller}
}

// Resolve fetches symbol and decimals of the token at addr. Both reads
// must succeed, there is no retry.
func (r *Resolver) Resolve(ctx context.Context, addr common.Address) (types.TokenRecord, error) {
	if addr == NativeAsset {
		return nativeAssetRecord, nil
	}

	var symbol string
	if err := r.read(ctx, addr, "symbol", &symbol); err != nil {
		return types.TokenRecord{}, &ResolutionError{Address: addr, Err: err}
	}

	var decimals uint8
	if err := r.read(ctx, addr, "decimals", &decimals); err != nil {
		return types.TokenRecord{}, &ResolutionError{Address: addr, Err: err}
	}

	return types.TokenRecord{Address: addr, Symbol: symbol, Decimals: decimals}, nil
}

func (r *Resolver) read(ctx context.Context, contract common.Address, method string, result any) error {
	calldata, err := abis.ERC20.Pack(method)
	if err != nil {
		return err
	}
	response, err := r.caller.CallContract(ctx, ethereum.CallMsg{
		To:   &contract,
		Data: calldata,
	}, nil)
	if err != nil {
		return fmt.Errorf("%s(): %w", method, err)
	}
	if err := abis.ERC20.UnpackIntoInterface(result, method, response); err != nil {
		return fmt.Errorf("unpack %s(): %w", method, err)
	}
	return nil
}
