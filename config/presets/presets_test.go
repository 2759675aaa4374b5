package presets

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tradenet/go-bulletin/config"
)

func TestGet(t *testing.T) {
	require.Equal(t, []string{"fastnet", "standalone"}, Options())

	conf, err := Get("fastnet")
	require.NoError(t, err)
	require.NotEqual(t, config.DefaultConfig().Store.TTL, conf.Store.TTL)

	_, err = Get("mainnet")
	require.ErrorContains(t, err, "preset mainnet is not registered")
}

func TestGet_Copy(t *testing.T) {
	conf, err := Get("standalone")
	require.NoError(t, err)
	conf.P2P.Listen = "changed"

	again, err := Get("standalone")
	require.NoError(t, err)
	require.NotEqual(t, "changed", again.P2P.Listen)
}
