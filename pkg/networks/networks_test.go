package networks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindNetwork(t *testing.T) {
	tests := []struct {
		name string
		want Network
	}{
		{name: "mainnet", want: EthereumMainnet},
		{name: "MAINNET", want: EthereumMainnet},
		{name: "gnosis", want: Gnosis},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := FindNetwork(tt.name)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindNetwork_Unknown(t *testing.T) {
	_, err := FindNetwork("dogechain")
	assert.Error(t, err)
}

func TestNetworkParameters(t *testing.T) {
	assert.Equal(t, 1317323, EthereumMainnet.DuneV1QueryID())
	assert.Equal(t, "ethereum", EthereumMainnet.DuneV2Blockchain())
	assert.Equal(t, "https://mainnet.infura.io/v3/secret", EthereumMainnet.NodeURL("secret"))

	assert.Equal(t, 1403053, Gnosis.DuneV1QueryID())
	assert.Equal(t, "gnosis", Gnosis.DuneV2Blockchain())
	assert.Equal(t, "https://rpc.gnosischain.com", Gnosis.NodeURL("ignored"))
}
