package source

import (
	"context"
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/0xRobin/data-misc/pkg/dune"
	"github.com/0xRobin/data-misc/pkg/networks"
)

var logger *zap.SugaredLogger

func init() {
	l, err := zap.NewDevelopment()
	if err != nil {
		panic(err)
	}
	logger = l.Sugar()
}

// v2QueryID is the shared "V2: Missing Tokens" query, parameterized by
// blockchain. The per-network v1 query ids live with the networks.
const v2QueryID = 1842715

// SourceQueryError means a missing-token list could not be fetched in
// full. It is fatal for the run: a partial list would silently skip
// remediation of the tokens it under-counts.
type SourceQueryError struct {
	Query string
	Err   error
}

func (e *SourceQueryError) Error() string {
	return fmt.Sprintf("missing tokens query %q failed: %s", e.Query, e.Err)
}

func (e *SourceQueryError) Unwrap() error { return e.Err }

type duneClient interface {
	Refresh(ctx context.Context, query dune.Query) ([]dune.Row, error)
}

// Source fetches the per-engine missing-token lists from Dune.
type Source struct {
	dune duneClient
}

func NewSource(client duneClient) *Source {
	return &Source{dune: client}
}

// FetchLegacy returns the missing tokens of the V1 engine in row order.
// V1 uses a parameterless query with a network specific id.
func (s *Source) FetchLegacy(ctx context.Context, network networks.Network) ([]common.Address, error) {
	query := dune.Query{
		Name:    "V1: Missing Tokens",
		QueryID: network.DuneV1QueryID(),
	}
	logger.Infow("fetching V1 missing tokens", "network", network.GetName(), "query", query.URL())
	rows, err := s.dune.Refresh(ctx, query)
	if err != nil {
		return nil, &SourceQueryError{Query: query.Name, Err: err}
	}
	return tokenColumn(query.Name, rows)
}

// Fetch returns the missing tokens of the V2 engine in row order. V2 uses
// one shared query taking the blockchain as an enum parameter.
func (s *Source) Fetch(ctx context.Context, network networks.Network) ([]common.Address, error) {
	query := dune.Query{
		Name:    "V2: Missing Tokens",
		QueryID: v2QueryID,
		Parameters: []dune.Parameter{
			dune.EnumParameter("Blockchain", network.DuneV2Blockchain()),
		},
	}
	logger.Infow("fetching V2 missing tokens", "network", network.GetName(), "query", query.URL())
	rows, err := s.dune.Refresh(ctx, query)
	if err != nil {
		return nil, &SourceQueryError{Query: query.Name, Err: err}
	}
	return tokenColumn(query.Name, rows)
}

func tokenColumn(queryName string, rows []dune.Row) ([]common.Address, error) {
	addresses := make([]common.Address, 0, len(rows))
	for i, row := range rows {
		token, ok := row["token"].(string)
		if !ok || !common.IsHexAddress(token) {
			return nil, &SourceQueryError{
				Query: queryName,
				Err:   fmt.Errorf("row %d has no usable token column: %v", i, row["token"]),
			}
		}
		addresses = append(addresses, common.HexToAddress(token))
	}
	return addresses, nil
}
