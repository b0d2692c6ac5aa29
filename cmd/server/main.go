package main

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/draftleague/league-draft-backend/internal/config"
	"github.com/draftleague/league-draft-backend/internal/coordinator"
	"github.com/draftleague/league-draft-backend/internal/httpapi"
	"github.com/draftleague/league-draft-backend/internal/match"
	"github.com/draftleague/league-draft-backend/internal/notify"
	"github.com/draftleague/league-draft-backend/internal/session"
	"github.com/draftleague/league-draft-backend/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(cfg.LogLevel)
	log, err := zapCfg.Build()
	if err != nil {
		panic(err)
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	deps := session.Deps{Log: log}

	if cfg.DatabaseURL != "" {
		gs, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			log.Fatal("open store", zap.Error(err))
		}
		creator, err := match.NewGormCreator(gs.DB())
		if err != nil {
			log.Fatal("migrate match table", zap.Error(err))
		}
		deps.Store = gs
		deps.Matches = creator
	} else {
		log.Warn("DATABASE_URL not set, drafts are in-memory only")
	}

	if cfg.RedisAddr != "" {
		pub, err := notify.ConnectRedis(ctx, cfg.RedisAddr)
		if err != nil {
			log.Fatal("connect redis", zap.Error(err))
		}
		defer func() { _ = pub.Close() }()
		deps.Pub = pub
	}

	coord := coordinator.New(ctx, coordinator.Config{
		TournamentTurnTimeout: cfg.TournamentTurnTimeout,
		CasualTurnTimeout:     cfg.CasualTurnTimeout,
	}, deps)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: httpapi.SetupRoutes(coord),
	}

	go func() {
		<-ctx.Done()
		coord.Inbox() <- coordinator.ShutdownAll{}
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	log.Info("listening", zap.String("addr", cfg.HTTPAddr))
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal("server exited", zap.Error(err))
	}
}
