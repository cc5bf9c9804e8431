package networks

import (
	"fmt"
	"strings"
)

// Network describes an EVM chain the pipeline can run against: where to
// reach a node, which Dune queries list its missing tokens and what its
// native token looks like.
type Network interface {
	GetName() string
	GetChainID() int64
	GetNativeTokenSymbol() string
	GetNativeTokenDecimal() uint8

	// NodeURL returns the JSON-RPC endpoint, keyed with the node access
	// key where the provider requires one.
	NodeURL(apiKey string) string

	// DuneV1QueryID is the id of the network specific "V1: Missing Tokens"
	// query on Dune.
	DuneV1QueryID() int

	// DuneV2Blockchain is the value of the "Blockchain" enum parameter of
	// the shared "V2: Missing Tokens" query.
	DuneV2Blockchain() string
}

var (
	EthereumMainnet Network = ethereumMainnet{}
	Gnosis          Network = gnosis{}
)

// All returns the supported networks in a stable order.
func All() []Network {
	return []Network{EthereumMainnet, Gnosis}
}

// FindNetwork resolves a network by name, case insensitively.
func FindNetwork(name string) (Network, error) {
	for _, n := range All() {
		if strings.EqualFold(n.GetName(), name) {
			return n, nil
		}
	}
	return nil, fmt.Errorf("unknown network %q", name)
}

type ethereumMainnet struct{}

func (ethereumMainnet) GetName() string              { return "mainnet" }
func (ethereumMainnet) GetChainID() int64            { return 1 }
func (ethereumMainnet) GetNativeTokenSymbol() string { return "ETH" }
func (ethereumMainnet) GetNativeTokenDecimal() uint8 { return 18 }

func (ethereumMainnet) NodeURL(apiKey string) string {
	return fmt.Sprintf("https://mainnet.infura.io/v3/%s", apiKey)
}

func (ethereumMainnet) DuneV1QueryID() int       { return 1317323 }
func (ethereumMainnet) DuneV2Blockchain() string { return "ethereum" }

type gnosis struct{}

func (gnosis) GetName() string              { return "gnosis" }
func (gnosis) GetChainID() int64            { return 100 }
func (gnosis) GetNativeTokenSymbol() string { return "xDAI" }
func (gnosis) GetNativeTokenDecimal() uint8 { return 18 }

// Gnosis has a keyless public RPC, the node access key is ignored.
func (gnosis) NodeURL(string) string { return "https://rpc.gnosischain.com" }

func (gnosis) DuneV1QueryID() int       { return 1403053 }
func (gnosis) DuneV2Blockchain() string { return "gnosis" }
