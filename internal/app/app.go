package app

import (
	"context"

	"go.uber.org/zap"

	"github.com/mxflights/flightwatch/internal/config"
	"github.com/mxflights/flightwatch/internal/delivery/telegram"
	"github.com/mxflights/flightwatch/internal/domain"
	"github.com/mxflights/flightwatch/internal/infra/log"
	"github.com/mxflights/flightwatch/internal/infra/metrics"
	"github.com/mxflights/flightwatch/internal/infra/persistence"
	"github.com/mxflights/flightwatch/internal/infra/pricing"
	"github.com/mxflights/flightwatch/internal/store"
	"github.com/mxflights/flightwatch/internal/usecase"
)

type App struct {
	bot     *telegram.Bot
	monitor *usecase.Monitor
	backend domain.SnapshotStore
	logger  *zap.Logger
	cfg     config.Config
}

func New(ctx context.Context, cfg config.Config) (*App, error) {
	logger, err := log.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, err
	}

	backend, err := openBackend(cfg, logger)
	if err != nil {
		return nil, err
	}

	records := store.New()
	loaded, err := backend.LoadAll(ctx)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	records.ReplaceAll(loaded)
	logger.Info("records loaded", zap.Int("count", records.Len()))

	m := metrics.New("flightwatch")

	var sources []domain.PriceSource
	if cfg.SerpAPIKey != "" {
		sources = append(sources, pricing.NewSerpAPIClient(cfg.SerpAPIBaseURL, cfg.SerpAPIKey, cfg.PriceSourceTimeout, logger))
	}
	if cfg.AviationstackKey != "" {
		sources = append(sources, pricing.NewAviationstackClient(cfg.AviationstackBaseURL, cfg.AviationstackKey, cfg.PriceSourceTimeout, logger))
	}
	if len(sources) == 0 {
		logger.Warn("no price source credentials configured, running on synthetic estimates only")
	}
	resolver := usecase.NewResolver(sources, pricing.NewSynthetic(), cfg.PriceSourceTimeout, logger, m)

	persister := usecase.NewPersister(backend, records, logger, m)
	flights := usecase.NewFlightUsecase(records, resolver, persister, logger)

	api, err := telegram.NewAPI(cfg.TelegramBotToken)
	if err != nil {
		_ = backend.Close()
		return nil, err
	}
	notifier := telegram.NewNotifier(api, logger)

	monitor := usecase.NewMonitor(records, resolver, usecase.DefaultAlertConfig(), notifier, persister, cfg.CheckInterval(), logger, m)
	handlers := telegram.NewHandlers(flights, monitor, logger)
	bot := telegram.NewBot(api, handlers, cfg.TelegramPollTimeout)

	return &App{bot: bot, monitor: monitor, backend: backend, logger: logger, cfg: cfg}, nil
}

func (a *App) Run(ctx context.Context) error {
	a.logger.Info("flightwatch starting")
	if a.cfg.MetricsAddr != "" {
		go metrics.Serve(ctx, a.cfg.MetricsAddr, a.logger)
	}
	if err := a.monitor.Start(ctx); err != nil {
		return err
	}
	a.logger.Info("flightwatch started")
	return a.bot.Start(ctx)
}

func (a *App) Shutdown() {
	a.logger.Info("flightwatch shutting down")
	a.monitor.Stop()
	if err := a.backend.Close(); err != nil {
		a.logger.Warn("failed to close snapshot store", zap.Error(err))
	}
	_ = a.logger.Sync()
}

func openBackend(cfg config.Config, logger *zap.Logger) (domain.SnapshotStore, error) {
	if cfg.DatabaseURL != "" {
		logger.Info("using postgres snapshot store")
		return persistence.OpenPostgres(cfg.DatabaseURL, logger)
	}
	logger.Info("using bolt snapshot store", zap.String("path", cfg.DataPath))
	return persistence.OpenBolt(cfg.DataPath)
}
