package datasync

import (
	"time"

	"github.com/tradenet/go-bulletin/wire"
)

// Config for the data synchronization.
type Config struct {
	// MaxAppendOnly is the maximal number of append-only payloads in a response.
	MaxAppendOnly int `mapstructure:"max-append-only"`
	// MaxProtected is the maximal number of protected entries in a response.
	MaxProtected int `mapstructure:"max-protected"`
	// Interval between synchronization rounds.
	Interval time.Duration `mapstructure:"interval"`
	// Peers is the number of random peers requested in every round.
	Peers int `mapstructure:"peers"`
	// Timeout of a single request.
	Timeout time.Duration `mapstructure:"timeout"`
	// RequestSizeLimit bounds the size of an incoming request.
	RequestSizeLimit int `mapstructure:"request-size-limit"`
	// QueueSize is the number of requests waiting to be served.
	QueueSize int `mapstructure:"queue-size"`
	// RequestsPerInterval is the number of requests served every ServeInterval.
	RequestsPerInterval int           `mapstructure:"requests-per-interval"`
	ServeInterval       time.Duration `mapstructure:"serve-interval"`
}

func DefaultConfig() Config {
	return Config{
		MaxAppendOnly:       3000,
		MaxProtected:        3000,
		Interval:            5 * time.Minute,
		Peers:               2,
		Timeout:             time.Minute,
		RequestSizeLimit:    (wire.MaxExcludedKeys + 1) * 32,
		QueueSize:           20,
		RequestsPerInterval: 10,
		ServeInterval:       time.Second,
	}
}
