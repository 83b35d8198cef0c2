package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"designcollab/internal/config"
	"designcollab/internal/design"
	"designcollab/internal/httpapi"
	"designcollab/internal/logger"
	"designcollab/internal/middleware"
	"designcollab/internal/room"
	"designcollab/internal/session"
	"designcollab/internal/store"
	"designcollab/internal/transport"
)

func main() {
	godotenv.Load()
	cfg := config.Load()

	log, err := logger.New(cfg.Log.Level, cfg.Log.Format, "designcollab")
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Persistence. DB_ENABLED=false keeps everything in memory so the
	// service runs without Postgres.
	var designs store.DesignRepository
	var api *httpapi.API
	var db *sql.DB
	if cfg.DBEnabled {
		db, err = store.OpenPostgres(&cfg.Database)
		if err != nil {
			log.Fatal("database connection failed", zap.Error(err))
		}
		defer db.Close()
		log.Info("connected to postgres",
			zap.String("host", cfg.Database.Host),
			zap.String("database", cfg.Database.Name))

		designs = store.NewPostgresDesignStore(db, log)
	} else {
		log.Warn("running with in-memory design store; nothing will persist")
		designs = store.NewMemoryDesignStore()
	}

	if cfg.Redis.Enabled {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Fatal("redis connection failed", zap.Error(err))
		}
		defer rdb.Close()
		log.Info("design cache enabled", zap.String("addr", cfg.Redis.Addr))

		designs = store.NewCachedDesignStore(designs, rdb, log)
	}

	// Real-time collaboration layer.
	applier := design.NewApplier(designs)
	registry := room.NewRegistry()
	caster := room.NewBroadcaster(registry, log)
	coordinator := session.NewCoordinator(designs, applier, registry, caster, log)

	ipLimiter := middleware.NewConnLimiter(cfg.Limits.ConnectionsPerMinute, cfg.Limits.ConnectionBurst)
	go func() {
		ticker := time.NewTicker(15 * time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ipLimiter.Cleanup()
			}
		}
	}()

	mux := http.NewServeMux()
	mux.Handle("/ws", transport.NewHandler(coordinator, ipLimiter, cfg, log))

	if db != nil {
		api = httpapi.New(designs, store.NewPostgresUsersRepo(db), store.NewPostgresCommentsRepo(db), db, log)
	} else {
		api = httpapi.New(designs, nil, nil, nil, log)
	}
	api.Register(mux)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		log.Info("server listening", zap.String("addr", cfg.HTTPAddr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig

	log.Info("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("shutdown failed", zap.Error(err))
	}
}
