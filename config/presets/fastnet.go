package presets

import (
	"time"

	"github.com/tradenet/go-bulletin/config"
	"github.com/tradenet/go-bulletin/payload"
)

func init() {
	register("fastnet", fastnet())
}

// fastnet shortens every lifetime so that expiry and purge can be observed in minutes.
func fastnet() config.Config {
	conf := config.DefaultConfig()
	conf.NetworkID = "bulletin-fastnet"

	conf.Store.TTL = map[string]time.Duration{
		payload.Offer.String():      time.Minute,
		payload.Mailbox.String():    time.Hour,
		payload.Arbitrator.String(): 30 * time.Minute,
		payload.Mediator.String():   30 * time.Minute,
	}
	conf.Store.ExpireInterval = 10 * time.Second
	conf.Store.PurgeInterval = time.Minute
	conf.Store.LedgerPurgeThreshold = 100
	conf.Store.LedgerRetention = time.Hour
	conf.Store.BackdateDelta = 10 * time.Second
	conf.Store.BackdateFloor = 5 * time.Second

	conf.DataSync.Interval = 30 * time.Second
	conf.DataSync.Timeout = 10 * time.Second

	conf.P2P.LowPeers = 10
	conf.P2P.HighPeers = 20
	return conf
}
