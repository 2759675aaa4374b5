// Package node wires the components of a bulletin board node and runs them.
package node

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/mitchellh/mapstructure"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/tradenet/go-bulletin/cmd"
	"github.com/tradenet/go-bulletin/common/types"
	"github.com/tradenet/go-bulletin/config"
	"github.com/tradenet/go-bulletin/config/presets"
	"github.com/tradenet/go-bulletin/datasync"
	"github.com/tradenet/go-bulletin/ledger"
	"github.com/tradenet/go-bulletin/log"
	"github.com/tradenet/go-bulletin/metrics"
	"github.com/tradenet/go-bulletin/p2p"
	"github.com/tradenet/go-bulletin/p2p/pubsub"
	"github.com/tradenet/go-bulletin/payload"
	"github.com/tradenet/go-bulletin/persist"
	"github.com/tradenet/go-bulletin/signing"
	"github.com/tradenet/go-bulletin/store"
)

const (
	stateDirName     = "state"
	identityFileName = "identity.key"
)

// Logger names.
const (
	AppLogger      = "app"
	P2PLogger      = "p2p"
	PubSubLogger   = "pubsub"
	StoreLogger    = "store"
	PersistLogger  = "persist"
	DataSyncLogger = "datasync"
	MetricsLogger  = "metrics"
)

// Buckets of the node database.
const (
	ledgerBucket     = "ledger"
	protectedBucket  = "protected"
	appendOnlyBucket = "append-only"
)

// GetCommand is the base command for the node.
func GetCommand() *cobra.Command {
	conf := config.DefaultConfig()
	var configPath *string
	c := &cobra.Command{
		Use:   "node",
		Short: "start node",
		RunE: func(c *cobra.Command, args []string) error {
			if err := configure(c, *configPath, &conf); err != nil {
				return err
			}

			app := New(
				WithConfig(&conf),
				// root logger has the lowest level so that module loggers can pick any level.
				WithLog(log.New("node", zap.NewAtomicLevelAt(zap.DebugLevel), conf.LOGGING.Encoder)),
			)

			// os.Interrupt for all systems, syscall.SIGTERM is mainly for docker.
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer cancel()

			if err := os.MkdirAll(app.Config.DataDir(), 0o700); err != nil {
				return fmt.Errorf("ensure folders exist: %w", err)
			}
			if err := app.Lock(); err != nil {
				return fmt.Errorf("getting exclusive file lock: %w", err)
			}
			defer app.Unlock()

			// Don't print usage on error from this point forward
			c.SilenceUsage = true

			// This blocks until the context is finished or until an error is produced
			err := app.Start(ctx)
			app.Cleanup()
			return err
		},
	}

	configPath = cmd.AddFlags(c.PersistentFlags(), &conf)

	c.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version info",
		Run: func(c *cobra.Command, args []string) {
			fmt.Print(cmd.Version)
			if cmd.Commit != "" {
				fmt.Printf("+%s", cmd.Commit)
			}
			fmt.Println()
		},
	})
	return c
}

func configure(c *cobra.Command, configPath string, conf *config.Config) error {
	preset := conf.Preset // might be set via CLI flag
	if err := loadConfig(conf, preset, configPath); err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	// apply CLI args to config
	if err := c.ParseFlags(os.Args[1:]); err != nil {
		return fmt.Errorf("parsing flags: %w", err)
	}
	return nil
}

// loadConfig loads config and preset (if provided) into the provided config.
// It first loads the preset and then overrides it with values from the config file.
func loadConfig(cfg *config.Config, preset, path string) error {
	v := viper.New()
	// read in config from file
	if err := config.LoadConfig(path, v); err != nil {
		return err
	}

	// override default config with preset if provided
	if len(preset) == 0 && v.IsSet("preset") {
		preset = v.GetString("preset")
	}
	if len(preset) > 0 {
		p, err := presets.Get(preset)
		if err != nil {
			return err
		}
		*cfg = p
	}

	// Unmarshall config file into config struct
	hook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
		mapstructure.TextUnmarshallerHookFunc(),
	)

	opts := []viper.DecoderConfigOption{
		viper.DecodeHook(hook),
		WithZeroFields(),
		WithIgnoreUntagged(),
		WithErrorUnused(),
	}

	// load config if it was loaded to the viper
	if err := v.Unmarshal(cfg, opts...); err != nil {
		return fmt.Errorf("unmarshal viper: %w", err)
	}
	return nil
}

func WithZeroFields() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ZeroFields = true
	}
}

func WithIgnoreUntagged() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.IgnoreUntaggedFields = true
	}
}

func WithErrorUnused() viper.DecoderConfigOption {
	return func(cfg *mapstructure.DecoderConfig) {
		cfg.ErrorUnused = true
	}
}

// Option to modify an App instance.
type Option func(app *App)

// WithLog enables logger for an App.
func WithLog(logger *zap.Logger) Option {
	return func(app *App) {
		app.log = logger
	}
}

// WithConfig overwrites default App config.
func WithConfig(conf *config.Config) Option {
	return func(app *App) {
		app.Config = conf
	}
}

// New creates an instance of the node.
func New(opts ...Option) *App {
	defaultConfig := config.DefaultConfig()
	app := &App{
		Config:  &defaultConfig,
		log:     zap.NewNop(),
		loggers: make(map[string]*zap.AtomicLevel),
		started: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(app)
	}
	return app
}

// App is the cli app singleton.
type App struct {
	Config   *config.Config
	log      *zap.Logger
	loggers  map[string]*zap.AtomicLevel
	fileLock *flock.Flock
	eg       *errgroup.Group
	started  chan struct{}

	db       *persist.DB
	records  *persist.Manager[ledger.Record, *ledger.Record]
	entries  *persist.Manager[payload.Entry, *payload.Entry]
	payloads *persist.Manager[payload.AppendOnly, *payload.AppendOnly]

	signer  *signing.EdSigner
	host    *p2p.Host
	store   *store.Store
	syncer  *datasync.Syncer
	metrics *metrics.Server
}

// Started returns a channel that is closed when the app is running.
func (app *App) Started() <-chan struct{} {
	return app.started
}

// Store returns the bulletin board of the node. It is nil until the app is started.
func (app *App) Store() *store.Store {
	return app.store
}

// Signer returns the identity used to sign protected entries of the node.
func (app *App) Signer() *signing.EdSigner {
	return app.signer
}

// Host returns the p2p host of the node.
func (app *App) Host() *p2p.Host {
	return app.host
}

// Lock locks the app for exclusive use. It returns an error if the app is already locked.
func (app *App) Lock() error {
	lockDir := filepath.Dir(app.Config.FileLock)
	if err := os.MkdirAll(lockDir, 0o700); err != nil {
		return fmt.Errorf("creating dir %s for lock %s: %w", lockDir, app.Config.FileLock, err)
	}
	fl := flock.New(app.Config.FileLock)
	locked, err := fl.TryLock()
	if err != nil {
		return fmt.Errorf("flock %s: %w", app.Config.FileLock, err)
	} else if !locked {
		return fmt.Errorf("only one node instance should be running (locking file %s)", fl.Path())
	}
	app.fileLock = fl
	return nil
}

// Unlock unlocks the app. It is a no-op if the app is not locked.
func (app *App) Unlock() {
	if app.fileLock == nil {
		return
	}
	if err := app.fileLock.Unlock(); err != nil {
		app.log.Error("failed to unlock file",
			zap.String("path", app.fileLock.Path()),
			zap.Error(err),
		)
	}
}

// Wrap the top-level logger to set the level for a specific module.
// Calling this method will create a new logger every time.
//
// This method is not safe to be called concurrently.
func (app *App) addLogger(name string, logger *zap.Logger) *zap.Logger {
	lvl, err := decodeLoggerLevel(app.Config, name)
	if err != nil {
		app.log.Panic("unable to decode loggers into map[string]string", zap.Error(err))
	}
	if logger.Core().Enabled(lvl.Level()) {
		app.loggers[name] = &lvl
		logger = logger.WithOptions(zap.IncreaseLevel(lvl))
	}
	return logger.Named(name)
}

// SetLogLevel updates the log level of an existing logger.
func (app *App) SetLogLevel(name, loglevel string) error {
	lvl, ok := app.loggers[name]
	if !ok {
		return fmt.Errorf("cannot find logger %v", name)
	}
	if err := lvl.UnmarshalText([]byte(loglevel)); err != nil {
		return err
	}
	return nil
}

func decodeLoggerLevel(cfg *config.Config, name string) (zap.AtomicLevel, error) {
	lvl := zap.NewAtomicLevel()
	loggers := map[string]string{}
	if err := mapstructure.Decode(cfg.LOGGING, &loggers); err != nil {
		return zap.AtomicLevel{}, fmt.Errorf("error decoding mapstructure: %w", err)
	}

	level, ok := loggers[name]
	if ok {
		if err := lvl.UnmarshalText([]byte(level)); err != nil {
			return zap.AtomicLevel{}, fmt.Errorf("cannot parse logging for %v: %w", name, err)
		}
	}
	return lvl, nil
}

func (app *App) capabilities() types.Capabilities {
	caps := []types.Capability{
		types.CapTradeStatistics,
		types.CapAccountAgeWitness,
		types.CapMediation,
		types.CapSignedAccountAgeWitness,
		types.CapRefundAgent,
		types.CapMailboxV2,
		types.CapTruncatedResponse,
	}
	if app.Config.P2P.IsBootnode {
		caps = append(caps, types.CapSeedNode)
	}
	return types.NewCapabilities(caps...)
}

func (app *App) loadSigner(dir string) (*signing.EdSigner, error) {
	path := filepath.Join(dir, identityFileName)
	prefix := signing.WithPrefix([]byte(app.Config.NetworkID))
	signer, err := signing.NewEdSigner(signing.FromFile(path), prefix)
	if errors.Is(err, fs.ErrNotExist) {
		app.log.Info("identity file not found, creating new identity", zap.String("path", path))
		signer, err = signing.NewEdSigner(signing.ToFile(path), prefix)
	}
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}
	app.log.Info("loaded identity",
		zap.String("file", signer.Name()),
		log.ZShortStringer("public key", signer.PublicKey()),
	)
	return signer, nil
}

func (app *App) initServices(ctx context.Context) error {
	dataDir := app.Config.DataDir()
	persistLogger := app.addLogger(PersistLogger, app.log)
	db, err := persist.Open(filepath.Join(dataDir, stateDirName), app.Config.Persist.CacheMiB, persistLogger)
	if err != nil {
		return err
	}
	app.db = db
	managerOpts := []persist.Opt{
		persist.WithLogger(persistLogger),
		persist.WithFlushInterval(app.Config.Persist.FlushInterval),
	}
	app.records = persist.NewManager[ledger.Record](db, ledgerBucket, managerOpts...)
	app.entries = persist.NewManager[payload.Entry](db, protectedBucket, managerOpts...)
	app.payloads = persist.NewManager[payload.AppendOnly](db, appendOnlyBucket, managerOpts...)

	app.signer, err = app.loadSigner(dataDir)
	if err != nil {
		return err
	}
	verifier, err := signing.NewEdVerifier(signing.WithVerifierPrefix([]byte(app.Config.NetworkID)))
	if err != nil {
		return fmt.Errorf("create verifier: %w", err)
	}

	p2pCfg := app.Config.P2P
	p2pCfg.DataDir = dataDir
	app.host, err = p2p.New(ctx, app.addLogger(P2PLogger, app.log), p2pCfg)
	if err != nil {
		return fmt.Errorf("initialize p2p host: %w", err)
	}
	ps, err := pubsub.New(ctx, app.addLogger(PubSubLogger, app.log), app.host, pubsub.Config{
		Flood:          p2pCfg.Flood,
		IsBootnode:     p2pCfg.IsBootnode,
		MaxMessageSize: p2pCfg.MaxMessageSize,
	}, pubsub.WithPeerCloser(app.host))
	if err != nil {
		return err
	}

	storeLogger := app.addLogger(StoreLogger, app.log)
	app.store, err = store.New(
		verifier,
		pubsub.NewBroadcaster(ps, pubsub.Topic, storeLogger),
		app.host,
		app.records,
		app.entries,
		app.payloads,
		store.WithLogger(storeLogger),
		store.WithConfig(app.Config.Store),
	)
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	if err := app.store.Load(ctx); err != nil {
		return fmt.Errorf("load store: %w", err)
	}
	ps.Register(pubsub.Topic, app.store.HandleGossip)

	app.syncer = datasync.NewSyncer(app.host, app.store, app.host,
		datasync.WithLogger(app.addLogger(DataSyncLogger, app.log)),
		datasync.WithConfig(app.Config.DataSync),
		datasync.WithCapabilities(app.capabilities()),
		datasync.WithAddress(app.host.Address()),
	)
	app.host.OnDisconnect(app.store.OnDisconnect)
	app.host.OnDisconnect(app.syncer.Forget)

	if app.Config.CollectMetrics {
		app.metrics = metrics.NewServer(app.addLogger(MetricsLogger, app.log), app.Config.MetricsPort)
	}
	return nil
}

func (app *App) startServices(ctx context.Context) {
	app.eg.Go(func() error { return app.records.Run(ctx) })
	app.eg.Go(func() error { return app.entries.Run(ctx) })
	app.eg.Go(func() error { return app.payloads.Run(ctx) })
	app.eg.Go(func() error { return app.store.RunSweep(ctx) })
	app.eg.Go(func() error { return app.store.RunPurge(ctx) })
	app.eg.Go(func() error { return app.syncer.Run(ctx) })
	app.eg.Go(func() error { return app.host.Run(ctx) })
	if app.metrics != nil {
		app.eg.Go(func() error { return app.metrics.Run(ctx) })
	}
}

// Start starts the node services and blocks until ctx is canceled or one of them fails.
func (app *App) Start(ctx context.Context) error {
	app.log = app.addLogger(AppLogger, app.log)
	app.log.Info("starting go-bulletin node",
		zap.String("version", cmd.Version),
		zap.String("commit", cmd.Commit),
		zap.String("branch", cmd.Branch),
		zap.String("go", runtime.Version()),
		zap.String("data dir", app.Config.DataDir()),
	)
	app.eg, ctx = errgroup.WithContext(ctx)
	if err := app.initServices(ctx); err != nil {
		app.log.Error("failed to start App", zap.Error(err))
		return err
	}
	app.startServices(ctx)
	app.log.Info("node started",
		zap.String("address", app.host.Address()),
		zap.Stringer("capabilities", app.capabilities()),
	)
	close(app.started)
	return app.eg.Wait()
}

// Cleanup releases the resources of the app. It must be called after Start returned.
func (app *App) Cleanup() {
	app.log.Info("app cleanup starting...")
	if app.host != nil {
		if err := app.host.Stop(); err != nil {
			app.log.Error("failed to stop p2p host", zap.Error(err))
		}
	}
	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.log.Error("failed to close database", zap.Error(err))
		}
	}
	app.log.Info("app cleanup completed")
}
