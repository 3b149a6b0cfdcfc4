package main

import (
	"context"
	"flag"
	"log"
	"time"

	"go.uber.org/zap"

	"github.com/nekogravitycat/gym-booking-backend/internal/config"
	"github.com/nekogravitycat/gym-booking-backend/internal/db"
	"github.com/nekogravitycat/gym-booking-backend/internal/logger"
)

func main() {
	direction := flag.String("direction", "up", "up, down or version")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	lg, err := logger.New(cfg.IsProduction)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = lg.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	pool, err := db.NewPool(ctx, cfg.DBDSN, db.PoolOptions{
		MaxConns:        int32(cfg.DBMaxConns),
		MaxConnLifetime: cfg.DBMaxConnLife,
	})
	if err != nil {
		lg.Fatal("connect postgres", zap.Error(err))
	}
	defer pool.Close()

	m, err := db.NewMigrator(pool, lg)
	if err != nil {
		lg.Fatal("init migrator", zap.Error(err))
	}
	defer func() { _ = m.Close() }()

	switch *direction {
	case "up":
		err = m.Up(ctx)
	case "down":
		err = m.Down(ctx)
	case "version":
		var v int64
		v, err = m.Version(ctx)
		if err == nil {
			lg.Info("current migration version", zap.Int64("version", v))
		}
	default:
		lg.Fatal("unknown direction", zap.String("direction", *direction))
	}
	if err != nil {
		lg.Fatal("migration failed", zap.Error(err))
	}
}
