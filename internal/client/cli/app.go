package cli

import (
	"bufio"
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sethvargo/go-retry"

	"github.com/mkowalczyk/allerlog/internal/client/api"
	"github.com/mkowalczyk/allerlog/internal/client/cache"
	"github.com/mkowalczyk/allerlog/internal/client/config"
	"github.com/mkowalczyk/allerlog/internal/client/repositories"
	"github.com/mkowalczyk/allerlog/internal/client/services"
	"github.com/mkowalczyk/allerlog/internal/client/token"
	"github.com/mkowalczyk/allerlog/internal/common"
	"github.com/mkowalczyk/allerlog/internal/logging"
	"github.com/mkowalczyk/allerlog/internal/metrics"
)

// Mode reflects the last observed server reachability.
type Mode string

const (
	ModeOffline Mode = "offline"
	ModeOnline  Mode = "online"
)

// App wires the services the REPL commands run against.
type App struct {
	config    *config.Config
	log       logging.Logger
	tokens    *token.Store
	repos     *repositories.Repositories
	auth      services.AuthService
	entries   services.EntryService
	exposures services.ExposureTypeService

	// probe checks server reachability; overridable in tests.
	probe func(ctx context.Context) error

	userEmail string
	Mode      Mode
	reader    *bufio.Reader
}

// NewApp builds the full client: token store, HTTP transport, query cache,
// local snapshot database, and the services on top of them.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	tokens := token.NewStore(c.TokenFile)
	if err := tokens.Bootstrap(); err != nil {
		return nil, err
	}

	var collector metrics.Collector = metrics.Noop{}
	if c.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		collector = metrics.NewPromCollector(reg)
		go serveMetrics(ctx, c.MetricsAddr, reg, log)
	}

	apiClient := api.New(c.EffectiveBaseURL(), tokens,
		api.WithLogger(log),
		api.WithMetrics(collector),
		api.WithTimeout(c.RequestTimeout),
	)

	repos, err := repositories.InitDatabase(ctx, c.DatabaseFile)
	if err != nil {
		log.Error(ctx, "failed to initialize local database", "error", err)
		return nil, err
	}

	queryCache := cache.New()
	sync := cache.NewSynchronizer(queryCache, services.NewEntryAPI(apiClient))

	auth := services.NewAuthService(apiClient, tokens, queryCache, repos, log)
	entries := services.NewEntryService(sync, repos.Journal, repos.State, log)
	exposures := services.NewExposureTypeService(apiClient)

	app := &App{
		config:    c,
		log:       log,
		tokens:    tokens,
		repos:     repos,
		auth:      auth,
		entries:   entries,
		exposures: exposures,
		reader:    bufio.NewReader(os.Stdin),
	}
	app.probe = func(ctx context.Context) error {
		_, err := auth.Me(ctx)
		return err
	}

	// Another process may refresh the token while this one runs.
	go func() {
		if err := tokens.Watch(ctx, log); err != nil {
			log.Warn(ctx, "token watcher stopped", "error", err)
		}
	}()

	// Restore the signed-in identity from the previous run, if any.
	if tokens.Get() != "" {
		if email, err := repos.State.AccountEmail(ctx); err == nil {
			app.userEmail = email
		}
	}

	return app, nil
}

func serveMetrics(ctx context.Context, addr string, reg *prometheus.Registry, log logging.Logger) {
	mux := http.NewServeMux()
	mux.Handle("GET /metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Error(ctx, "metrics server failed", "addr", addr, "error", err)
	}
}

// Run executes the REPL until the user exits or ctx is cancelled.
func (a *App) Run(ctx context.Context) {
	defer func() {
		if err := a.repos.Close(); err != nil {
			a.log.Warn(ctx, "failed to close local database", "error", err)
		}
	}()
	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.tokens.Get() != ""
}

func (a *App) setMode(ctx context.Context, mode Mode) {
	if a.Mode != mode {
		a.Mode = mode
		a.log.Info(ctx, "connectivity changed", "mode", string(mode))
	}
}

// StartOnlineStatusWatcher periodically probes the server and flips Mode
// between online and offline. Each probe retries briefly with backoff before
// the tick is declared failed, so a single dropped packet does not flap the
// status.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			probeCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
			backoff := retry.WithMaxRetries(2, retry.NewFibonacci(200*time.Millisecond))
			err := retry.Do(probeCtx, backoff, func(ctx context.Context) error {
				err := a.probe(ctx)
				// An HTTP-level failure still proves the server answered;
				// only transport failures count as unreachable.
				if err != nil && errors.Is(err, common.ErrNetwork) {
					return retry.RetryableError(err)
				}
				return nil
			})
			cancel()

			if err != nil {
				a.setMode(ctx, ModeOffline)
			} else {
				a.setMode(ctx, ModeOnline)
			}

		case <-ctx.Done():
			return
		}
	}
}
