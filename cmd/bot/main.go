package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/chainplay/arenabot/src/app/dispatch"
	"github.com/chainplay/arenabot/src/app/handlers"
	"github.com/chainplay/arenabot/src/app/tournaments"
	"github.com/chainplay/arenabot/src/domain/command"
	"github.com/chainplay/arenabot/src/infra/chain"
	"github.com/chainplay/arenabot/src/infra/feed"
	"github.com/chainplay/arenabot/src/infra/sched"
	"github.com/chainplay/arenabot/src/infra/transport"
	memstore "github.com/chainplay/arenabot/src/infra/tournament"
)

type Config struct {
	HTTPAddress    string
	NodeRPCAddress string
	GatewayBaseURL string
	CommandPrefix  string
	SweepInterval  time.Duration
	JoinLead       time.Duration
}

func loadConfig() Config {
	return Config{
		HTTPAddress:    getEnv("ARENA_HTTP_ADDR", ":8080"),
		NodeRPCAddress: getEnv("ARENA_NODE_RPC_ADDR", "http://127.0.0.1:8545"),
		GatewayBaseURL: getEnv("ARENA_GATEWAY_URL", "http://127.0.0.1:9090"),
		CommandPrefix:  getEnv("ARENA_COMMAND_PREFIX", command.DefaultPrefix),
		SweepInterval:  getDuration("ARENA_SWEEP_INTERVAL", sched.DefaultInterval),
		JoinLead:       getDuration("ARENA_JOIN_LEAD", tournaments.DefaultJoinLead),
	}
}

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer func() { _ = logger.Sync() }()

	cfg := loadConfig()

	baseCtx, cancel := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
	defer cancel()

	shutdownTelemetry, err := setupTelemetry(baseCtx, "arenabot")
	if err != nil {
		logger.Warn("failed to initialize telemetry", zap.Error(err))
	} else {
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = shutdownTelemetry(ctx)
		}()
	}

	store := memstore.NewMemoryStore()
	tournamentService := tournaments.NewService(store)
	tournamentService.JoinLead = cfg.JoinLead

	wallet := chain.NewClient(cfg.NodeRPCAddress, logger)
	gateway := feed.NewClient(cfg.GatewayBaseURL)

	var registry *dispatch.Registry
	registry, err = dispatch.NewRegistry(
		handlers.TournamentGroup(tournamentService),
		handlers.AgentGroup(wallet, gateway, gateway, gateway),
		handlers.HelpGroup(func() []dispatch.Handler { return registry.All() }),
	)
	if err != nil {
		logger.Fatal("invalid handler registration", zap.Error(err))
	}
	dispatcher := dispatch.NewDispatcher(registry, logger)
	chat := transport.NewChatGateway(dispatcher, cfg.CommandPrefix, logger)

	sweepTransitions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "arena",
		Subsystem: "tournaments",
		Name:      "transitions_total",
		Help:      "Lifecycle transitions applied by the sweeper",
	}, []string{"to"})
	prometheus.MustRegister(sweepTransitions)

	liveTournaments := prometheus.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: "arena",
		Subsystem: "tournaments",
		Name:      "live",
		Help:      "Tournaments currently upcoming or active",
	}, func() float64 {
		live, err := tournamentService.ListActive(context.Background())
		if err != nil {
			return 0
		}
		return float64(len(live))
	})
	prometheus.MustRegister(liveTournaments)

	sweeper := sched.NewSweeper(tournamentService, chat, logger, cfg.SweepInterval, sweepTransitions)
	if err := sweeper.Start(); err != nil {
		logger.Fatal("failed to start lifecycle sweeper", zap.Error(err))
	}
	defer func() { _ = sweeper.Stop() }()

	server := NewServer(ServerConfig{
		Logger:            logger,
		Dispatcher:        dispatcher,
		TournamentService: tournamentService,
		Chat:              chat,
		CommandPrefix:     cfg.CommandPrefix,
	})

	httpServer := &http.Server{
		Addr:         cfg.HTTPAddress,
		Handler:      server.Handler(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Arenabot listening", zap.String("addr", cfg.HTTPAddress))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("http server error", zap.Error(err))
		}
	}()

	<-baseCtx.Done()
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return fallback
}
