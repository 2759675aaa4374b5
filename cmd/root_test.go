package cmd

import (
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/tradenet/go-bulletin/config"
)

func TestAddFlags(t *testing.T) {
	cfg := config.DefaultConfig()
	fs := pflag.NewFlagSet("node", pflag.ContinueOnError)
	path := AddFlags(fs, &cfg)

	require.NoError(t, fs.Parse([]string{
		"-c", "node.json",
		"--preset", "fastnet",
		"--bootnodes", "/ip4/10.0.0.1/tcp/7513/p2p/a,/ip4/10.0.0.2/tcp/7513/p2p/b",
		"--expire-interval", "15s",
		"--strict-mailbox-readd",
		"--sync-peers", "4",
	}))
	require.Equal(t, "node.json", *path)
	require.Equal(t, "fastnet", cfg.Preset)
	require.Len(t, cfg.P2P.Bootnodes, 2)
	require.Equal(t, 15*time.Second, cfg.Store.ExpireInterval)
	require.True(t, cfg.Store.StrictMailboxReadd)
	require.Equal(t, 4, cfg.DataSync.Peers)
	require.Equal(t, config.DefaultConfig().P2P.Listen, cfg.P2P.Listen)
}
