package types

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCapabilities_ContainsAll(t *testing.T) {
	peer := NewCapabilities(CapMediation, CapTradeStatistics, CapTradeStatistics)
	require.Len(t, peer, 2)

	require.True(t, peer.ContainsAll(nil))
	require.True(t, peer.ContainsAll(NewCapabilities(CapTradeStatistics)))
	require.True(t, peer.ContainsAll(NewCapabilities(CapMediation, CapTradeStatistics)))
	require.False(t, peer.ContainsAll(NewCapabilities(CapMediation, CapRefundAgent)))
	require.False(t, Capabilities(nil).ContainsAll(NewCapabilities(CapSeedNode)))
}

func TestCapabilities_String(t *testing.T) {
	require.Equal(t, "[trade_statistics mediation]",
		NewCapabilities(CapMediation, CapTradeStatistics).String())
	require.Equal(t, "capability_200", Capability(200).String())
}
