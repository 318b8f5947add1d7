package app

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"marketwatch/internal/alerting"
	"marketwatch/internal/config"
	"marketwatch/internal/fetcher"
	"marketwatch/internal/observability"
	"marketwatch/internal/scheduler"
	"marketwatch/internal/service"
	"marketwatch/internal/storage"
	"marketwatch/internal/store"
)

// App aggregates configuration and shared dependencies for the CLI commands.
type App struct {
	Config *config.Config
	Logger zerolog.Logger
	Out    io.Writer
}

// NewApp constructs a new application handle.
func NewApp(cfg *config.Config, logger zerolog.Logger) *App {
	return &App{Config: cfg, Logger: logger.With().Str("component", "app").Logger(), Out: os.Stdout}
}

func (a *App) baseURL() string {
	mode := fetcher.ModeProduction
	if a.Config.App.IsDevelopment() {
		mode = fetcher.ModeDevelopment
	}
	return fetcher.ResolveBaseURL(mode, a.Config.API.BaseURL, a.Config.API.DevProxyURL)
}

func (a *App) newClient() *fetcher.Client {
	return fetcher.NewClient(fetcher.Options{
		BaseURL:      a.baseURL(),
		CurrencyPath: a.Config.API.CurrencyPath,
		MarketPath:   a.Config.API.MarketPath,
		Timeout:      a.Config.API.RequestTimeout,
		UserAgent:    a.Config.API.UserAgent,
	}, a.Logger)
}

func (a *App) newStore(metrics *observability.Metrics, vis scheduler.Visibility) *store.Store {
	client := a.newClient()
	return store.New(client, client, store.Options{
		Interval:   a.Config.Polling.Interval,
		MaxBackoff: a.Config.Polling.MaxBackoff,
		Visibility: vis,
		Metrics:    metrics,
	}, a.Logger)
}

func (a *App) newNotifier() alerting.Notifier {
	if a.Config.Alerting.Telegram.Enabled {
		cfg := a.Config.Alerting.Telegram
		return alerting.NewTelegramNotifier(cfg.BotToken, cfg.ChatID, cfg.APIBase, 10*time.Second, a.Logger)
	}
	return nil
}

func (a *App) openStorage(ctx context.Context) (*storage.Store, func(), error) {
	if a.Config.Database.DSN == "" {
		return nil, nil, nil
	}

	pool, err := storage.NewPool(ctx, a.Config.Database)
	if err != nil {
		return nil, nil, err
	}

	st := storage.NewStore(pool)
	if err := st.EnsureSchema(ctx); err != nil {
		st.Close()
		return nil, nil, err
	}
	closer := func() {
		st.Close()
	}
	return st, closer, nil
}

// Run polls the market until interrupted, rendering every update.
func (a *App) Run(ctx context.Context, opts RunOptions) error {
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	recorder, closeStorage, err := a.openStorage(ctx)
	if err != nil {
		return err
	}
	if recorder == nil {
		a.Logger.Info().Msg("database.dsn not configured; tick recording disabled")
	}
	if closeStorage != nil {
		defer closeStorage()
	}

	metrics := observability.NewMetrics(a.Config.Metrics.Namespace)
	if addr := a.Config.Metrics.ListenAddr; addr != "" {
		stopMetrics := a.serveMetrics(addr, metrics)
		defer stopMetrics()
	}

	vis := scheduler.NewToggle(false)
	stopWatch := watchVisibility(ctx, vis, a.Logger)
	defer stopWatch()

	st := a.newStore(metrics, vis)
	defer st.Close()

	deps := service.Deps{Notifier: a.newNotifier()}
	if !opts.Quiet {
		deps.Renderer = &TableRenderer{Out: a.Out, Clear: opts.Clear}
	}
	if recorder != nil {
		deps.Ticks = recorder
		deps.Alerts = recorder
	}
	svc := service.New(a.Config, st, deps, a.Logger)

	a.Logger.Info().Str("base_url", a.baseURL()).Dur("interval", a.Config.Polling.Interval).Msg("starting market watch")
	err = svc.Run(ctx)
	if err != nil && !errors.Is(err, context.Canceled) {
		a.Logger.Error().Err(err).Msg("service terminated with error")
		return err
	}

	a.Logger.Info().Msg("market watch stopped")
	return nil
}

func (a *App) serveMetrics(addr string, metrics *observability.Metrics) func() {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Error().Err(err).Str("addr", addr).Msg("metrics server failed")
		}
	}()
	a.Logger.Info().Str("addr", addr).Msg("metrics endpoint listening")

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	}
}

// RunOptions configure the run command.
type RunOptions struct {
	Quiet bool
	Clear bool
}

// ExportOptions hold parameters for exporting market data.
type ExportOptions struct {
	CSVPath   string
	PNGPath   string
	Pair      string
	MaxPoints int
}

// HistoryOptions configure the history command.
type HistoryOptions struct {
	Pair  string
	Limit int
}
