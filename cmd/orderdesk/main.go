package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lab67/orderdesk/internal/core/domain"
	"github.com/lab67/orderdesk/internal/core/repository"
	"github.com/lab67/orderdesk/internal/core/service"
	"github.com/lab67/orderdesk/internal/infrastructure/config"
	"github.com/lab67/orderdesk/internal/infrastructure/health"
	"github.com/lab67/orderdesk/internal/infrastructure/persistence"
	"github.com/lab67/orderdesk/internal/infrastructure/session"
	"github.com/lab67/orderdesk/internal/presenter/terminal"
	"github.com/lab67/orderdesk/internal/seed"
	"github.com/lab67/orderdesk/pkg/logger"
)

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Pretty:  cfg.IsDevelopment(),
		Service: "orderdesk",
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	kv, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Str("backend", cfg.Store.Backend).Msg("opening durable store failed")
	}
	defer func() {
		if err := kv.Close(); err != nil {
			log.Error().Err(err).Msg("closing durable store failed")
		}
	}()
	log.Info().Str("backend", cfg.Store.Backend).Str("key_prefix", cfg.Store.KeyPrefix).Msg("durable store ready")

	tokens := session.NewTokens(cfg.Session.Secret, cfg.Session.TTL)
	snapshots := persistence.NewAdapter(kv, tokens, cfg.Store.KeyPrefix, logger.Component("persistence"))
	repo := repository.New(ctx, snapshots, logger.Component("repository"))

	var demo []domain.Order
	if cfg.SeedDemo {
		demo = seed.DemoOrders()
	}
	if rejected := repo.Seed(ctx, demo, seed.Users()); len(rejected) > 0 {
		log.Warn().Int("rejected", len(rejected)).Msg("some seed orders were rejected")
	}

	view := terminal.NewView(os.Stdout, logger.Component("terminal"))
	ctrl := service.NewSessionController(repo, view, cfg.PageSize, logger.Component("controller"))
	checker := health.NewChecker(map[string]health.Pinger{cfg.Store.Backend: kv})
	shell := terminal.NewShell(ctrl, view, checker, prometheus.DefaultGatherer, logger.Component("shell"))

	// Unblock the line reader on SIGINT/SIGTERM.
	go func() {
		<-ctx.Done()
		_ = os.Stdin.Close()
	}()

	view.RenderInfo("orderdesk ready, type help for commands")
	ctrl.Start()
	if err := shell.Run(ctx, os.Stdin); err != nil && ctx.Err() == nil {
		log.Error().Err(err).Msg("reading commands failed")
	}
	log.Info().Msg("bye")
}
