package cmd

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/tradenet/go-bulletin/config"
	"github.com/tradenet/go-bulletin/config/presets"
)

// AddFlags adds node flags to the flag set. Flags write into cfg and
// the returned pointer receives the path of the config file.
func AddFlags(flagSet *pflag.FlagSet, cfg *config.Config) (configPath *string) {
	configPath = flagSet.StringP("config", "c", "", "load configuration from file")
	flagSet.StringVarP(&cfg.Preset, "preset", "p", cfg.Preset,
		fmt.Sprintf("preset overwrites default values of the config. options %+s", presets.Options()))

	/** ======================== BaseConfig Flags ========================== **/
	flagSet.StringVarP(&cfg.DataDirParent, "data-folder", "d",
		cfg.DataDirParent, "specify data directory for the node")
	flagSet.StringVar(&cfg.FileLock, "filelock",
		cfg.FileLock, "filesystem lock to prevent running more than one instance")
	flagSet.StringVar(&cfg.LOGGING.Encoder, "log-encoder",
		cfg.LOGGING.Encoder, "log encoder: console or json")
	flagSet.BoolVar(&cfg.CollectMetrics, "metrics",
		cfg.CollectMetrics, "collect node metrics")
	flagSet.IntVar(&cfg.MetricsPort, "metrics-port",
		cfg.MetricsPort, "metric server port")

	/** ======================== P2P Flags ========================== **/
	flagSet.StringVar(&cfg.P2P.Listen, "listen",
		cfg.P2P.Listen, "address for listening")
	flagSet.StringSliceVar(&cfg.P2P.Bootnodes, "bootnodes",
		cfg.P2P.Bootnodes, "entrypoints into the network")
	flagSet.BoolVar(&cfg.P2P.IsBootnode, "bootnode",
		cfg.P2P.IsBootnode, "run the node as a seed node")
	flagSet.BoolVar(&cfg.P2P.Flood, "flood",
		cfg.P2P.Flood, "flood created messages to all peers")
	flagSet.IntVar(&cfg.P2P.MinPeers, "min-peers",
		cfg.P2P.MinPeers, "actively search for peers until you get this much")
	flagSet.IntVar(&cfg.P2P.LowPeers, "low-peers",
		cfg.P2P.LowPeers, "low watermark for the number of connections")
	flagSet.IntVar(&cfg.P2P.HighPeers, "high-peers",
		cfg.P2P.HighPeers, "high watermark for the number of connections")

	/** ======================== Store Flags ========================== **/
	flagSet.DurationVar(&cfg.Store.ExpireInterval, "expire-interval",
		cfg.Store.ExpireInterval, "interval between sweeps of expired entries")
	flagSet.DurationVar(&cfg.Store.PurgeInterval, "purge-interval",
		cfg.Store.PurgeInterval, "interval between purges of the sequence ledger")
	flagSet.BoolVar(&cfg.Store.StrictMailboxReadd, "strict-mailbox-readd",
		cfg.Store.StrictMailboxReadd, "reject mailbox entries that were removed before")

	/** ======================== DataSync Flags ========================== **/
	flagSet.DurationVar(&cfg.DataSync.Interval, "sync-interval",
		cfg.DataSync.Interval, "interval between data synchronization rounds")
	flagSet.IntVar(&cfg.DataSync.Peers, "sync-peers",
		cfg.DataSync.Peers, "number of peers requested in every synchronization round")
	return configPath
}
