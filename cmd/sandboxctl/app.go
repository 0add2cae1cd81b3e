package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/etay-atar/Sandbox/internal/adapter/httpserver"
	"github.com/etay-atar/Sandbox/internal/credstore"
	"github.com/etay-atar/Sandbox/internal/dashboard"
	apperrors "github.com/etay-atar/Sandbox/internal/errors"
	"github.com/etay-atar/Sandbox/internal/metrics"
	"github.com/etay-atar/Sandbox/internal/platform/config"
	"github.com/etay-atar/Sandbox/internal/platform/logging"
	"github.com/etay-atar/Sandbox/internal/sandbox"
	"github.com/etay-atar/Sandbox/internal/session"
	"github.com/jonboulle/clockwork"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sony/gobreaker"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

// app holds the wiring shared by every command that talks to the backend.
type app struct {
	cfg      *config.Config
	registry *prometheus.Registry
	client   *sandbox.Client
	closers  []func() error
}

func setupConfig(opts *globalOptions) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if opts.apiURL != "" {
		cfg.APIURL = opts.apiURL
	}
	return cfg, nil
}

// setupLogging sends logs to LOG_FILE or stderr. quiet drops stderr output
// for commands that own the terminal.
func setupLogging(cfg *config.Config, quiet bool) (func() error, error) {
	w, closeLog, err := logging.OpenOutput(cfg.LogFile)
	if err != nil {
		return nil, err
	}
	if quiet && cfg.LogFile == "" {
		w = io.Discard
	}
	logging.InitLogger(cfg.LogLevel, cfg.LogFormat, w)
	return closeLog, nil
}

// newApp wires the backend client and the session manager. The manager is
// installed in cmd's context; commands resolve it with session.FromContext.
func newApp(cmd *cobra.Command, opts *globalOptions, quietLogs bool) (*app, error) {
	ctx := cmd.Context()
	cfg, err := setupConfig(opts)
	if err != nil {
		return nil, err
	}

	closeLog, err := setupLogging(cfg, quietLogs)
	if err != nil {
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		registry: metrics.NewRegistry(),
		closers:  []func() error{closeLog},
	}

	store, closeStore, err := credstore.Open(ctx, cfg, metrics.NewStoreMetrics(a.registry))
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to open credential store: %w", err)
	}
	a.closers = append(a.closers, closeStore)

	mgr := session.NewManager(store)
	if err := mgr.Initialize(ctx); err != nil {
		a.Close()
		return nil, err
	}

	a.client, err = sandbox.New(sandbox.OptionsFromConfig(cfg, metrics.NewClientMetrics(a.registry)))
	if err != nil {
		a.Close()
		return nil, err
	}

	slog.Debug("Console initialized", "api_url", cfg.APIURL, "credential_store", cfg.CredentialStore,
		"authenticated", mgr.IsAuthenticated())
	cmd.SetContext(session.WithManager(ctx, mgr))
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			slog.Warn("Cleanup failed", "error", err)
		}
	}
}

// requireSession resolves the manager in scope and fails unless signed in.
func requireSession(ctx context.Context) (*session.Manager, error) {
	mgr := session.FromContext(ctx)
	if !mgr.IsAuthenticated() {
		return nil, apperrors.AuthError("not signed in, run sandboxctl login first", nil)
	}
	return mgr, nil
}

func (a *app) coordinator(mgr *session.Manager) *dashboard.Coordinator {
	return dashboard.New(a.client, mgr, clockwork.NewRealClock(),
		dashboard.NewMetrics(a.registry), dashboard.ConfigFrom(a.cfg))
}

// waitReady blocks until the backend answers its health root, retrying while
// it is still starting.
func (a *app) waitReady(ctx context.Context) error {
	if err := a.client.WaitReady(ctx, sandbox.DefaultReadyPolicy); err != nil {
		return fmt.Errorf("backend at %s is not reachable: %w", a.cfg.APIURL, err)
	}
	return nil
}

func (a *app) healthChecks() []httpserver.HealthCheck {
	return []httpserver.HealthCheck{
		{Name: "backend", Check: a.client.Ping},
		{Name: "circuit_breaker", Check: func(context.Context) error {
			if a.client.BreakerState() == gobreaker.StateOpen {
				return errors.New("circuit breaker open")
			}
			return nil
		}},
	}
}

// startStatusServer serves health and metrics on addr until the returned stop
// function is called. An empty addr disables it.
func (a *app) startStatusServer(addr string) func() {
	if addr == "" {
		return func() {}
	}
	stop, _ := runServer(httpserver.NewStatusServer(addr, a.registry, a.healthChecks()), "status")
	return stop
}

// runServer starts srv in the background. The channel reports a failed start.
func runServer(srv *httpserver.Server, name string) (stop func(), failed <-chan error) {
	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil {
			slog.Error("HTTP server failed", "server", name, "error", err)
			errCh <- err
		}
	}()

	stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			slog.Error("Server shutdown error", "server", name, "error", err)
		}
	}
	return stop, errCh
}
