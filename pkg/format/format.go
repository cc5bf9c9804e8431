package format

import (
	"fmt"
	"strings"

	"github.com/0xRobin/data-misc/pkg/networks"
	"github.com/0xRobin/data-misc/pkg/types"
)

// UnsupportedNetworkError means the V1 engine has no known reference
// table format for the requested network.
type UnsupportedNetworkError struct {
	Network string
}

func (e *UnsupportedNetworkError) Error() string {
	return fmt.Sprintf("incompatible network %q", e.Network)
}

// FormatV1 renders a token the way the V1 engine's reference tables
// expect it. The shape is network dependent and parsed verbatim
// downstream, so it must not drift:
//
//	mainnet: \\x96B00208911d72eA9f10c3303fF319427A7884C9	BLUE	18
//	gnosis:  ('BAND', 18, decode('e154A435408211AC89757B76C4FbE4Dc9ED2Ef27', 'hex')),
func FormatV1(record types.TokenRecord, network networks.Network) (string, error) {
	hexAddress := record.Address.Hex()[2:]
	switch network {
	case networks.EthereumMainnet:
		return fmt.Sprintf("\\\\x%s\t%s\t%d", hexAddress, record.Symbol, record.Decimals), nil
	case networks.Gnosis:
		return fmt.Sprintf("('%s', %d, decode('%s', 'hex')),", record.Symbol, record.Decimals, hexAddress), nil
	}
	return "", &UnsupportedNetworkError{Network: network.GetName()}
}

// FormatV2 renders a token the way the V2 engine's token seed files
// expect it, identical across networks:
//
//	('0xfcc5c47be19d06bf83eb04298b026f81069ff65b', 'yCRV', 18),
func FormatV2(record types.TokenRecord) string {
	return fmt.Sprintf("('%s', '%s', %d),", strings.ToLower(record.Address.Hex()), record.Symbol, record.Decimals)
}
