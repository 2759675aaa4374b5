package presets

import (
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap/zapcore"

	"github.com/tradenet/go-bulletin/config"
)

func init() {
	register("standalone", standalone())
}

func standalone() config.Config {
	conf := config.DefaultConfig()
	conf.NetworkID = "bulletin-standalone"
	conf.DataDirParent = filepath.Join(os.TempDir(), "go-bulletin", "standalone")
	conf.FileLock = filepath.Join(conf.DataDirParent, "LOCK")

	conf.P2P.Listen = "/ip4/127.0.0.1/tcp/0"
	conf.P2P.MinPeers = 0
	conf.P2P.Bootnodes = nil
	conf.P2P.LogLevel = zapcore.ErrorLevel

	conf.DataSync.Interval = 30 * time.Second
	conf.Persist.FlushInterval = 100 * time.Millisecond
	conf.Persist.CacheMiB = 16

	conf.LOGGING.AppLoggerLevel = zapcore.DebugLevel.String()
	conf.LOGGING.StoreLoggerLevel = zapcore.DebugLevel.String()
	return conf
}
