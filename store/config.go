package store

import (
	"fmt"
	"time"

	"github.com/tradenet/go-bulletin/payload"
)

// Config for the bulletin board store.
type Config struct {
	// TTL by payload kind name. Kinds without a positive TTL never expire.
	TTL map[string]time.Duration `mapstructure:"ttl"`
	// ExpireInterval is how often expired entries are evicted.
	ExpireInterval time.Duration `mapstructure:"expire-interval"`
	// PurgeInterval is how often the ledger is checked for purge.
	PurgeInterval time.Duration `mapstructure:"purge-interval"`
	// LedgerPurgeThreshold is the ledger size above which old records are purged.
	LedgerPurgeThreshold int `mapstructure:"ledger-purge-threshold"`
	// LedgerRetention is the age of ledger records that are purged.
	LedgerRetention time.Duration `mapstructure:"ledger-retention"`
	// DateTolerance bounds the difference between the date of date tolerant payloads and the time of receipt.
	DateTolerance time.Duration `mapstructure:"date-tolerance"`
	// BackdateDelta is subtracted from the creation time of entries received from a peer
	// that disconnected unexpectedly.
	BackdateDelta time.Duration `mapstructure:"backdate-delta"`
	// BackdateFloor is the minimal lifetime left to a backdated entry.
	BackdateFloor time.Duration `mapstructure:"backdate-floor"`
	// StrictMailboxReadd rejects adding a mailbox entry that was removed before.
	StrictMailboxReadd bool `mapstructure:"strict-mailbox-readd"`
	// DedupCacheSize is the number of recently accepted gossip messages remembered
	// to drop duplicates without decoding them.
	DedupCacheSize int `mapstructure:"dedup-cache-size"`
}

func DefaultConfig() Config {
	return Config{
		TTL: map[string]time.Duration{
			payload.Offer.String():      9 * time.Minute,
			payload.Mailbox.String():    15 * 24 * time.Hour,
			payload.Arbitrator.String(): 10 * 24 * time.Hour,
			payload.Mediator.String():   10 * 24 * time.Hour,
		},
		ExpireInterval:       time.Minute,
		PurgeInterval:        time.Hour,
		LedgerPurgeThreshold: 1000,
		LedgerRetention:      10 * 24 * time.Hour,
		DateTolerance:        24 * time.Hour,
		BackdateDelta:        3 * time.Minute,
		BackdateFloor:        30 * time.Second,
		DedupCacheSize:       10_000,
	}
}

func (c *Config) ttls() (map[payload.Kind]time.Duration, error) {
	ttls := make(map[payload.Kind]time.Duration, len(c.TTL))
	for name, ttl := range c.TTL {
		kind, err := payload.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("ttl: %w", err)
		}
		if !kind.Protected() {
			return nil, fmt.Errorf("ttl: %s is not a protected kind", name)
		}
		if ttl > 0 {
			ttls[kind] = ttl
		}
	}
	return ttls, nil
}
