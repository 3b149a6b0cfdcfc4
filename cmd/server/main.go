package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/app"
	"github.com/nekogravitycat/gym-booking-backend/internal/booking"
	"github.com/nekogravitycat/gym-booking-backend/internal/config"
	"github.com/nekogravitycat/gym-booking-backend/internal/db"
	"github.com/nekogravitycat/gym-booking-backend/internal/logger"
	"github.com/nekogravitycat/gym-booking-backend/internal/redisclient"
)

func main() {
	// For receiving Ctrl+C / SIGTERM
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()
	zap.ReplaceGlobals(lg)

	var pool *pgxpool.Pool
	if cfg.StorageDriver == config.StoragePostgres {
		pool, err = db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{
			MaxConns:        int32(cfg.DBMaxConns),
			MaxConnLifetime: cfg.DBMaxConnLife,
		})
		if err != nil {
			lg.Fatal("failed to connect to db", zap.Error(err))
		}
		defer pool.Close()

		if cfg.RunMigrations {
			if err := migrate(ctx, pool, lg); err != nil {
				lg.Fatal("failed to migrate db", zap.Error(err))
			}
		}
	} else {
		lg.Warn("using in-memory storage, data is lost on restart")
	}

	var rdb *redis.Client
	if cfg.RedisURL != "" {
		rdb, err = redisclient.New(ctx, cfg.RedisURL)
		if err != nil {
			lg.Fatal("failed to connect to redis", zap.Error(err))
		}
		defer func() { _ = rdb.Close() }()
	}

	container := app.NewContainer(app.Config{
		IsProduction:   cfg.IsProduction,
		ProdOrigins:    cfg.ProdOrigins,
		DBPool:         pool,
		Redis:          rdb,
		EventStream:    cfg.EventStream,
		EventStreamLen: cfg.EventStreamLen,
		JWTSecret:      cfg.JWTSecret,
		JWTTTL:         cfg.JWTAccessTokenTTL,
		Location:       cfg.GymLocation,
		Logger:         lg,
	})

	if cfg.PendingSweepInterval > 0 {
		sweeper := booking.NewSweeper(container.BookingService, cfg.PendingSweepInterval, lg.Named("sweeper"))
		go sweeper.Run(ctx)
	}

	server := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: container.Router,
	}

	go func() {
		lg.Info("server running", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			lg.Fatal("server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	lg.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		lg.Error("server forced to shutdown", zap.Error(err))
	}

	lg.Info("server exited gracefully")
}

func migrate(ctx context.Context, pool *pgxpool.Pool, lg *zap.Logger) error {
	m, err := db.NewMigrator(pool, lg.Named("migrate"))
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return m.Up(ctx)
}
