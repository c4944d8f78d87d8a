package commands

import (
	"context"
	"fmt"
	"os"
	"sync"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	_ "github.com/nerrad567/fcs-core/migrations" // embedded SQL migrations

	"github.com/nerrad567/fcs-core/internal/client"
	"github.com/nerrad567/fcs-core/internal/devcache"
	"github.com/nerrad567/fcs-core/internal/devices"
	"github.com/nerrad567/fcs-core/internal/history"
	"github.com/nerrad567/fcs-core/internal/infrastructure/config"
	"github.com/nerrad567/fcs-core/internal/infrastructure/database"
	"github.com/nerrad567/fcs-core/internal/infrastructure/influxdb"
	"github.com/nerrad567/fcs-core/internal/infrastructure/logging"
	"github.com/nerrad567/fcs-core/internal/infrastructure/mqtt"
	"github.com/nerrad567/fcs-core/internal/printer"
	"github.com/nerrad567/fcs-core/internal/setup"
)

// dialCaller connects the caller used for server requests. Tests swap it
// for a client.Dummy.
var dialCaller = dialMQTT

func dialMQTT(cfg *config.Config, log *logging.Logger) (client.Caller, func(), error) {
	conn, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return nil, nil, err
	}
	conn.SetLogger(log)
	conn.SetOnDisconnect(func(err error) {
		log.Warn("mqtt connection lost", "error", err)
	})

	caller, err := client.NewMQTT(conn, client.MQTTConfig{
		Service:  cfg.FCS.Service,
		ClientID: cfg.MQTT.Broker.ClientID,
		QoS:      byte(cfg.MQTT.QoS),
		Timeout:  cfg.CallTimeout(),
	})
	if err != nil {
		conn.Close() //nolint:errcheck // already failing
		return nil, nil, err
	}
	caller.SetLogger(log)

	return caller, func() {
		if err := caller.Close(); err != nil {
			log.Warn("closing caller", "error", err)
		}
		if err := conn.Close(); err != nil {
			log.Warn("closing mqtt connection", "error", err)
		}
	}, nil
}

// lazyCaller dials on the first call, so commands that never reach the
// server (schema, validate of a JSON payload) work offline.
type lazyCaller struct {
	dial func() (client.Caller, func(), error)

	once    sync.Once
	caller  client.Caller
	release func()
	err     error
}

func (l *lazyCaller) Call(ctx context.Context, domain client.Domain, method string, args ...any) (string, error) {
	l.once.Do(func() {
		l.caller, l.release, l.err = l.dial()
	})
	if l.err != nil {
		return "", &client.TransportError{Domain: domain, Method: method, Err: l.err}
	}
	return l.caller.Call(ctx, domain, method, args...)
}

func (l *lazyCaller) close() {
	if l.release != nil {
		l.release()
	}
}

// session holds what a command needs: configuration, logger, printer and
// the server caller. Stores are opened on first use and released by close.
type session struct {
	cfg      *config.Config
	log      *logging.Logger
	out      *printer.Printer
	registry *setup.Registry
	caller   client.Caller

	closers []func()
}

func openSession(cmd *cobra.Command, opts *rootOptions) (*session, error) {
	out := &printer.Printer{Out: cmd.OutOrStdout(), Err: cmd.ErrOrStderr()}

	path := opts.configPath
	if path == "" {
		path = os.Getenv(config.EnvConfigPath)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, out.Error(
			"Invalid configuration",
			err.Error(),
			"Fix the file given with --config or $"+config.EnvConfigPath,
			"Unset the FCS_* environment variables that override it",
		)
	}
	if opts.service != "" {
		cfg.FCS.Service = opts.service
	}
	if opts.timeout > 0 {
		cfg.FCS.Timeout = int(opts.timeout.Milliseconds())
	}

	log := logging.New(cfg.Logging, version)
	registry := devices.NewRegistry()
	registry.SetLogger(log.With("component", "registry"))

	s := &session{cfg: cfg, log: log, out: out, registry: registry}
	if opts.dryRun {
		dummy := client.NewDummy()
		dummy.SetOutput(out.Out)
		s.caller = dummy
		return s, nil
	}

	lazy := &lazyCaller{dial: func() (client.Caller, func(), error) {
		log.Debug("connecting to broker", "host", cfg.MQTT.Broker.Host, "port", cfg.MQTT.Broker.Port)
		return dialCaller(cfg, log.With("component", "mqtt"))
	}}
	s.caller = lazy
	s.closers = append(s.closers, lazy.close)
	return s, nil
}

// close releases everything the session opened, newest first.
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
	s.closers = nil
}

// buffer returns a setup buffer wired to the configured device cache and,
// when record is set, to the dispatch recorders.
func (s *session) buffer(ctx context.Context, record bool) (*setup.Buffer, error) {
	opts := []setup.BufferOption{setup.WithLogger(s.log.With("component", "setup"))}
	if len(s.cfg.FCS.DevTypes) > 0 {
		opts = append(opts, setup.WithDevTypes(s.cfg.FCS.DevTypes...))
	}

	if s.cfg.Redis.Enabled {
		cache, err := s.devCache()
		if err != nil {
			return nil, err
		}
		opts = append(opts, setup.WithDevTypeSource(cache))
	}

	if !record {
		return setup.NewBuffer(s.registry, s.caller, opts...), nil
	}

	var recorders []setup.Recorder
	if s.cfg.Database.Enabled {
		repo, err := s.history(ctx)
		if err != nil {
			return nil, err
		}
		recorders = append(recorders, repo)
	}
	if s.cfg.InfluxDB.Enabled {
		if influx := s.influx(); influx != nil {
			recorders = append(recorders, influxRecorder(influx, s.cfg.FCS.Service))
		}
	}
	if len(recorders) > 0 {
		opts = append(opts, setup.WithRecorder(setup.Recorders(recorders...)))
	}

	return setup.NewBuffer(s.registry, s.caller, opts...), nil
}

func (s *session) devCache() (*devcache.Cache, error) {
	cache, err := devcache.New(&redis.Options{
		Addr:     s.cfg.Redis.Addr,
		Password: s.cfg.Redis.Password,
		DB:       s.cfg.Redis.DB,
	}, s.cfg.FCS.Service, client.DevInfoSource{Caller: s.caller}, s.cfg.CacheTTL())
	if err != nil {
		return nil, fmt.Errorf("creating device cache: %w", err)
	}
	cache.SetLogger(s.log.With("component", "devcache"))
	s.closers = append(s.closers, func() {
		if err := cache.Close(); err != nil {
			s.log.Warn("closing device cache", "error", err)
		}
	})
	return cache, nil
}

// history opens the dispatch history database and applies pending
// migrations.
func (s *session) history(ctx context.Context) (*history.SQLiteRepository, error) {
	db, err := database.Open(ctx, database.Config{
		Path:        s.cfg.Database.Path,
		WALMode:     s.cfg.Database.WALMode,
		BusyTimeout: s.cfg.Database.BusyTimeout,
	})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	s.closers = append(s.closers, func() {
		if err := db.Close(); err != nil {
			s.log.Warn("closing history database", "error", err)
		}
	})
	if err := db.Migrate(ctx); err != nil {
		return nil, fmt.Errorf("migrating history database: %w", err)
	}
	s.log.Debug("history database ready", "path", db.Path())

	repo := history.NewSQLiteRepository(db.DB, s.cfg.FCS.Service)
	repo.SetLogger(s.log.With("component", "history"))
	return repo, nil
}

// influx connects to InfluxDB. Metrics are optional: a failure is logged
// and nil returned.
func (s *session) influx() *influxdb.Client {
	c, err := influxdb.Connect(s.cfg.InfluxDB)
	if err != nil {
		s.log.Warn("influxdb unavailable, dispatch metrics disabled", "error", err)
		return nil
	}
	c.SetOnError(func(err error) {
		s.log.Error("influxdb write failed", "error", err)
	})
	s.closers = append(s.closers, func() {
		if err := c.Close(); err != nil {
			s.log.Warn("closing influxdb", "error", err)
		}
	})
	return c
}

func influxRecorder(c *influxdb.Client, service string) setup.Recorder {
	return setup.RecorderFunc(func(_ context.Context, rec setup.DispatchRecord) {
		outcome := history.OutcomeSuccess
		if !rec.Succeeded() {
			outcome = history.OutcomeFailure
		}
		c.WriteDispatch(influxdb.Dispatch{
			Service:  service,
			Outcome:  outcome,
			Elements: len(rec.Elements),
			Duration: rec.Duration,
			At:       rec.StartedAt,
		})
	})
}
