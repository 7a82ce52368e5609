// Package app wires the configured transport, metrics sinks, send log and
// orchestrator into a runnable service.
package app

import (
	"context"
	"fmt"
	"net/http"
	"time"

	apisendlog "github.com/vkblast/vkblast/api/sendlog"
	_ "github.com/vkblast/vkblast/app/plugins"
	"github.com/vkblast/vkblast/auth"
	"github.com/vkblast/vkblast/config"
	"github.com/vkblast/vkblast/core/contacts"
	"github.com/vkblast/vkblast/core/dispatch"
	"github.com/vkblast/vkblast/core/dispatch/sendlog"
	coremetrics "github.com/vkblast/vkblast/core/metrics"
	coremon "github.com/vkblast/vkblast/core/monitoring"
	"github.com/vkblast/vkblast/core/template"
	"github.com/vkblast/vkblast/core/transport"
	"github.com/vkblast/vkblast/infra/logger"
	"github.com/vkblast/vkblast/infra/metrics"
	"github.com/vkblast/vkblast/infra/monitoring"
	"github.com/vkblast/vkblast/infra/spreadsheet"
	"github.com/vkblast/vkblast/internal/eventbus"
)

// Service bundles the orchestrator with its session and the optional
// background servers.
type Service struct {
	Orchestrator *dispatch.Orchestrator
	Session      *dispatch.Session

	token string
	cfg   *config.Config
	bus   *eventbus.Bus
	store sendlog.Store
	log   logger.Logger
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	mon, err := monitoring.NewSentryMonitor(cfg.Sentry)
	if err != nil {
		return nil, fmt.Errorf("sentry: %w", err)
	}
	coremon.Init(mon)

	client, err := transport.NewClient(cfg.Transport)
	if err != nil {
		return nil, fmt.Errorf("transport: %w", err)
	}

	sink, err := coremetrics.NewMetricsSink(cfg.Metrics.Sinks)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}

	var store sendlog.Store
	if cfg.SendLog.Enabled {
		store, err = newStore(cfg.SendLog)
		if err != nil {
			return nil, fmt.Errorf("send log: %w", err)
		}
	}

	bus := eventbus.New()
	engine := template.New(cfg.Template)
	orch, err := dispatch.NewOrchestrator(client, engine, cfg.Dispatch, logg, sink, bus, store)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("orchestrator: %w", err)
	}

	token, err := resolveToken(cfg)
	if err != nil {
		bus.Close()
		return nil, fmt.Errorf("auth: %w", err)
	}
	sess := dispatch.NewSession(nil)
	sess.SetToken(token)

	return &Service{
		Orchestrator: orch,
		Session:      sess,
		token:        token,
		cfg:          cfg,
		bus:          bus,
		store:        store,
		log:          logg,
	}, nil
}

// resolveToken prefers the static token and falls back to the OAuth2
// client-credentials flow when one is configured.
func resolveToken(cfg *config.Config) (string, error) {
	if cfg.Token != "" || !cfg.Auth.Enabled() {
		return auth.NewStatic(cfg.Token).Token()
	}
	return auth.NewClientCred(cfg.Auth).Token()
}

func newStore(cfg config.SendLogConfig) (sendlog.Store, error) {
	switch cfg.Backend {
	case "jsonl":
		return sendlog.NewJSONLStore(cfg.Path)
	case "rotating":
		return sendlog.NewRotatingJSONLStore(cfg.Path, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays)
	case "sqlite":
		return sendlog.NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unknown send log backend %s", cfg.Backend)
	}
}

// Bus exposes the event bus for progress listeners.
func (s *Service) Bus() eventbus.EventBus { return s.bus }

// LoadContacts imports a contact sheet into the session, replacing the
// current working list. It returns the number of imported contacts.
func (s *Service) LoadContacts(path string) (int, error) {
	rows, err := spreadsheet.ReadFile(path, spreadsheet.Options{})
	if err != nil {
		return 0, err
	}
	list := contacts.Normalize(rows)
	s.Session = dispatch.NewSession(list)
	s.Session.SetToken(s.token)
	s.log.Infof("imported %d contacts from %s", len(list), path)
	return len(list), nil
}

// Start launches the optional background servers. It returns immediately;
// the servers run until ctx is cancelled.
func (s *Service) Start(ctx context.Context) {
	if s.cfg.Metrics.PrometheusPort != "" {
		go func() {
			if err := metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusPort); err != nil {
				s.log.Errorf("prom server: %v", err)
			}
		}()
	}
	if s.cfg.API.Addr != "" && s.store != nil {
		go func() {
			if err := s.serveReportAPI(ctx); err != nil {
				s.log.Errorf("report api: %v", err)
			}
		}()
	}
}

func (s *Service) serveReportAPI(ctx context.Context) error {
	mux := http.NewServeMux()
	mux.Handle("/api/sendlog", apisendlog.NewHandler(s.store, s.cfg.API.Token))
	srv := &http.Server{Addr: s.cfg.API.Addr, Handler: mux}
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close releases resources held by the service.
func (s *Service) Close() error {
	s.bus.Close()
	coremon.Flush(2 * time.Second)
	if s.store != nil {
		return s.store.Close()
	}
	return nil
}
