package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cimillas/bloodbank/internal/app"
	"github.com/cimillas/bloodbank/internal/config"
	"github.com/cimillas/bloodbank/internal/storage/postgres"
	"github.com/cimillas/bloodbank/internal/storage/sqlite"
	transporthttp "github.com/cimillas/bloodbank/internal/transport/http"
	"github.com/cimillas/bloodbank/migrations"
)

// store bundles the repositories of one backend with its readiness probe.
type store struct {
	stock    app.StockRepository
	donors   app.DonorRepository
	requests app.RequestRepository
	ping     transporthttp.Pinger
	close    func()
}

func openStore(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*store, error) {
	switch cfg.Driver {
	case config.DriverSQLite:
		return openSQLite(ctx, cfg, logger)
	case config.DriverPostgres:
		return openPostgres(ctx, cfg, logger)
	default:
		return nil, fmt.Errorf("unknown database driver %q", cfg.Driver)
	}
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*store, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("db ping: %w", err)
	}
	if err := migrations.Apply(ctx, pool); err != nil {
		pool.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("postgres ready", "max_conns", poolCfg.MaxConns)

	return &store{
		stock:    postgres.NewStockRepository(pool),
		donors:   postgres.NewDonorRepository(pool),
		requests: postgres.NewRequestRepository(pool),
		ping:     pool,
		close:    pool.Close,
	}, nil
}

func openSQLite(ctx context.Context, cfg config.DatabaseConfig, logger *slog.Logger) (*store, error) {
	db, err := sqlite.Open(cfg.SQLitePath)
	if err != nil {
		return nil, err
	}
	if err := migrations.ApplySQLite(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	logger.Info("sqlite ready", "path", cfg.SQLitePath)

	return &store{
		stock:    sqlite.NewStockRepository(db),
		donors:   sqlite.NewDonorRepository(db),
		requests: sqlite.NewRequestRepository(db),
		ping:     transporthttp.PingFunc(db.PingContext),
		close: func() {
			_ = db.Close()
		},
	}, nil
}
