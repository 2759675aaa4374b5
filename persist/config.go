package persist

import "time"

// Config for the node database.
type Config struct {
	// FlushInterval is how often managers write pending changes.
	FlushInterval time.Duration `mapstructure:"flush-interval"`
	// CacheMiB is the memory given to leveldb caches and write buffers.
	CacheMiB int `mapstructure:"cache-mib"`
}

func DefaultConfig() Config {
	return Config{
		FlushInterval: time.Second,
		CacheMiB:      64,
	}
}
