package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/alanyoungcy/dexarb/internal/arbitrage"
	"github.com/alanyoungcy/dexarb/internal/bot"
	"github.com/alanyoungcy/dexarb/internal/server"
	"github.com/alanyoungcy/dexarb/internal/server/handler"
	"github.com/alanyoungcy/dexarb/internal/server/ws"
)

// shutdownGrace is how long the HTTP server gets to drain in-flight requests.
const shutdownGrace = 10 * time.Second

// runBot builds the detection core and the control plane, starts every
// goroutine under one errgroup, and blocks until the context is cancelled or
// a component fails.
func (a *App) runBot(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting arbitrage bot",
		slog.Int("dex_clients", deps.DexManager.ClientCount()),
	)

	detector, err := arbitrage.NewDetector(a.cfg.Arbitrage, a.logger)
	if err != nil {
		return fmt.Errorf("app: detector: %w", err)
	}
	calculator := arbitrage.NewCalculator(a.cfg.Arbitrage.SlippagePercent, decimal.NewFromInt(1), a.logger)
	analyzer := arbitrage.NewAnalyzer(a.logger)
	metrics := bot.NewMetrics()

	scheduler := bot.NewScheduler(deps.SignalBus, a.logger)
	orchestrator := bot.NewOrchestrator(*a.cfg, bot.OrchestratorDeps{
		Chain:      deps.Chain,
		Manager:    deps.DexManager,
		Detector:   detector,
		Calculator: calculator,
		Analyzer:   analyzer,
		Metrics:    metrics,
		Scheduler:  scheduler,
		Opps:       deps.OpportunityStore,
		Quotes:     deps.QuoteStore,
		QuoteCache: deps.QuoteCache,
		Archiver:   deps.Archiver,
		Notifier:   deps.Notifier,
	}, a.logger)

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return scheduler.Run(ctx)
	})
	g.Go(func() error {
		return orchestrator.Run(ctx)
	})

	// Forward lifecycle events to operators.
	g.Go(func() error {
		events := scheduler.Subscribe()
		for {
			select {
			case <-ctx.Done():
				return nil
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				switch ev.Type {
				case bot.EventStarted, bot.EventStopped, bot.EventPaused, bot.EventResumed:
					_ = deps.Notifier.NotifyBotStatus(ctx, string(ev.Type))
				}
			}
		}
	})

	if a.cfg.Server.Enabled {
		a.startStatusServer(ctx, g, deps, orchestrator, analyzer, metrics)
	}

	// The bot runs immediately on boot; pause/resume/stop arrive over the
	// command channel afterward.
	if err := scheduler.Send(bot.CommandStart); err != nil {
		return fmt.Errorf("app: start command: %w", err)
	}

	return g.Wait()
}

// startStatusServer wires the read-only HTTP + WebSocket surface into the
// errgroup.
func (a *App) startStatusServer(
	ctx context.Context,
	g *errgroup.Group,
	deps *Dependencies,
	orchestrator *bot.Orchestrator,
	analyzer *arbitrage.Analyzer,
	metrics *bot.Metrics,
) {
	hub := ws.NewHub(deps.SignalBus, []string{bot.EventsChannel}, a.logger)
	g.Go(func() error {
		return hub.Run(ctx)
	})

	srv := server.NewServer(
		server.Config{Port: a.cfg.Server.Port},
		server.Handlers{
			Health:        handler.NewHealthHandler(a.logger),
			Status:        handler.NewStatusHandler(orchestrator, analyzer, metrics, a.logger),
			Opportunities: handler.NewOpportunityHandler(deps.OpportunityStore, a.logger),
		},
		hub,
		a.logger,
	)

	g.Go(func() error {
		return srv.Start()
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
}
