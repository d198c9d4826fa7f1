package hvmon

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	_ "github.com/lib/pq"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/buffer"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/caenhv"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/journal"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/observability"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/publisher"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/sink"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/transport/opcuagw"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/adapters/transport/sim"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/app/config"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/app/monitor"
	"github.com/opercjy/RENE-predictive-maintenance-HV/internal/ports"
)

const dialTimeout = 10 * time.Second

// RuntimeOption customizes the dependencies used by Runtime.
type RuntimeOption func(*runtimeOverrides)

type runtimeOverrides struct {
	transport ports.SlotParamReader
	reader    ports.GroupReader
	sink      ports.Sink
	buffer    ports.SampleBuffer
	publisher ports.StatePublisher
	journal   ports.Journal
	obs       ports.Observability
	noJournal bool
}

// WithTransport injects a custom hardware transport (vendor wrapper,
// simulator, test fake) behind the default reader.
func WithTransport(tr ports.SlotParamReader) RuntimeOption {
	return func(o *runtimeOverrides) { o.transport = tr }
}

// WithReader replaces the bulk reader entirely.
func WithReader(r ports.GroupReader) RuntimeOption {
	return func(o *runtimeOverrides) { o.reader = r }
}

// WithSink injects a custom sink so readings can go to any store or API.
func WithSink(s ports.Sink) RuntimeOption {
	return func(o *runtimeOverrides) { o.sink = s }
}

// WithBuffer swaps the in-memory accumulation buffer.
func WithBuffer(b ports.SampleBuffer) RuntimeOption {
	return func(o *runtimeOverrides) { o.buffer = b }
}

// WithPublisher swaps the latest-state holder.
func WithPublisher(p ports.StatePublisher) RuntimeOption {
	return func(o *runtimeOverrides) { o.publisher = p }
}

// WithJournal lets callers bring their own journal implementation.
func WithJournal(j ports.Journal) RuntimeOption {
	return func(o *runtimeOverrides) { o.journal = j }
}

// WithoutJournal disables on-disk durability even when the config names a dir.
func WithoutJournal() RuntimeOption {
	return func(o *runtimeOverrides) { o.noJournal = true }
}

// WithObservability plugs in a custom observability backend.
func WithObservability(obs ports.Observability) RuntimeOption {
	return func(o *runtimeOverrides) { o.obs = obs }
}

// Runtime wires transport → reader → buffer/publisher → sink and exposes
// lifecycle hooks for embedding the pipeline inside any Go service.
type Runtime struct {
	cfg        *Config
	mon        *monitor.Monitor
	transport  ports.SlotParamReader
	journal    ports.Journal
	db         *sql.DB
	pgSink     *sink.PostgresSink
	metricsSrv *http.Server

	ownsTransport bool
	ownsJournal   bool
}

// NewRuntime bootstraps the default adapters (OPC UA or simulator transport,
// crate reader, in-memory buffer, atomic latest-state publisher, Postgres
// sink, file journal, Prometheus observability). RuntimeOption values
// override any dependency.
func NewRuntime(cfg *Config, opts ...RuntimeOption) (*Runtime, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	var overrides runtimeOverrides
	for _, opt := range opts {
		if opt != nil {
			opt(&overrides)
		}
	}

	obs := overrides.obs
	if obs == nil {
		obs = observability.NewPromObs(nil)
	}

	rt := &Runtime{cfg: cfg}

	reader := overrides.reader
	if reader == nil {
		tr := overrides.transport
		if tr == nil {
			var err error
			tr, err = dialTransport(cfg)
			if err != nil {
				return nil, err
			}
			rt.ownsTransport = true
		}
		rt.transport = tr

		var err error
		reader, err = caenhv.NewReader(cfg.Crate, tr)
		if err != nil {
			rt.closePartial()
			return nil, err
		}
	}

	buf := overrides.buffer
	if buf == nil {
		buf = buffer.NewMemBuffer(cfg.Settings.MaxBufferedSnapshots)
	}

	pub := overrides.publisher
	if pub == nil {
		pub = publisher.NewLatest()
	}

	snk := overrides.sink
	if snk == nil {
		db, err := sql.Open("postgres", cfg.Storage.ConnString)
		if err != nil {
			rt.closePartial()
			return nil, err
		}
		rt.db = db
		rt.pgSink = sink.NewPostgresSink(db, cfg.Storage.Table)
		snk = rt.pgSink
	}

	jnl := overrides.journal
	if jnl == nil && !overrides.noJournal && cfg.Journal.Dir != "" {
		var err error
		jnl, err = journal.NewFileJournal(cfg.Journal.Dir)
		if err != nil {
			rt.closePartial()
			return nil, err
		}
		rt.ownsJournal = true
	}
	rt.journal = jnl

	mon, err := monitor.New(monitor.Config{
		PollInterval:           cfg.Settings.PollInterval(),
		CommitInterval:         cfg.Settings.CommitInterval(),
		MaxConsecutiveFailures: cfg.Settings.MaxConsecutiveFailures,
	}, reader, buf, pub, snk, jnl, obs)
	if err != nil {
		rt.closePartial()
		return nil, err
	}
	rt.mon = mon

	return rt, nil
}

// Start launches the schedulers and the metrics endpoint. It returns
// immediately; call Run to block on a context instead.
func (r *Runtime) Start() error {
	if r == nil {
		return fmt.Errorf("runtime is nil")
	}

	if r.pgSink != nil {
		// The pipeline retries commits, so a cold database only delays
		// persistence instead of blocking startup.
		if err := r.pgSink.EnsureSchema(); err != nil {
			log.Printf("ensure schema: %v", err)
		}
	}

	if err := r.mon.Start(); err != nil {
		return err
	}
	r.startMetrics()
	return nil
}

// Run starts the runtime and blocks until the context is cancelled or a
// presentation-layer consumer requests shutdown.
func (r *Runtime) Run(ctx context.Context) error {
	if err := r.Start(); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
	case <-r.mon.ShutdownRequested():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return r.Shutdown(shutdownCtx)
}

// Shutdown stops the schedulers (with one final commit attempt), the metrics
// server, and every resource the runtime owns.
func (r *Runtime) Shutdown(ctx context.Context) error {
	var errs []error

	if r.mon != nil {
		if err := r.mon.Stop(ctx); err != nil {
			errs = append(errs, err)
		}
	}

	if r.metricsSrv != nil {
		if err := r.metricsSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs = append(errs, err)
		}
	}

	errs = append(errs, r.closeResources()...)
	return errors.Join(errs...)
}

// Monitor exposes the orchestrator for presentation-layer wiring.
func (r *Runtime) Monitor() *Monitor { return r.mon }

// Subscribe registers a presentation-layer consumer.
func (r *Runtime) Subscribe() *Subscription { return r.mon.Subscribe() }

// Current returns the latest snapshot without blocking the poll loop.
func (r *Runtime) Current() (*Snapshot, uint64, bool) { return r.mon.Current() }

// Degraded reports the persistent-failure signal.
func (r *Runtime) Degraded() bool { return r.mon.Degraded() }

func (r *Runtime) startMetrics() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		if r.mon.Degraded() {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte("degraded"))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.metricsSrv = &http.Server{
		Addr:    r.cfg.Metrics.Addr,
		Handler: mux,
	}

	go func() {
		if err := r.metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server exited: %v", err)
		}
	}()
}

func (r *Runtime) closePartial() {
	for _, err := range r.closeResources() {
		log.Printf("runtime cleanup: %v", err)
	}
}

func (r *Runtime) closeResources() []error {
	var errs []error
	if r.ownsTransport && r.transport != nil {
		if err := r.transport.Close(); err != nil {
			errs = append(errs, err)
		}
		r.transport = nil
	}
	if r.ownsJournal && r.journal != nil {
		if err := r.journal.Close(); err != nil {
			errs = append(errs, err)
		}
		r.journal = nil
	}
	if r.db != nil {
		if err := r.db.Close(); err != nil {
			errs = append(errs, err)
		}
		r.db = nil
	}
	return errs
}

func dialTransport(cfg *Config) (ports.SlotParamReader, error) {
	switch cfg.Settings.Transport {
	case config.TransportSim:
		return sim.New(), nil
	case config.TransportOPCUA, "":
		ctx, cancel := context.WithTimeout(context.Background(), dialTimeout)
		defer cancel()
		tr, err := opcuagw.Dial(ctx, cfg.Gateway)
		if err != nil {
			return nil, fmt.Errorf("dial gateway: %w", err)
		}
		return tr, nil
	default:
		return nil, fmt.Errorf("unknown transport %q", cfg.Settings.Transport)
	}
}
