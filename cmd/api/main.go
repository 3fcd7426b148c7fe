package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"github.com/cimillas/bloodbank/internal/app"
	"github.com/cimillas/bloodbank/internal/cache"
	"github.com/cimillas/bloodbank/internal/clock"
	"github.com/cimillas/bloodbank/internal/config"
	"github.com/cimillas/bloodbank/internal/metrics"
	transporthttp "github.com/cimillas/bloodbank/internal/transport/http"
)

const startupTimeout = 10 * time.Second

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var configPath, logLevel string
	var port int

	flagSet := pflag.NewFlagSet("bloodbank-api", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", os.Getenv("CONFIG_PATH"), "path to a YAML config file")
	flagSet.IntVar(&port, "port", 0, "listen port (overrides config and PORT)")
	flagSet.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	bootLogger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	cfg, err := config.LoadFromEnv(configPath, bootLogger)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if flagSet.Changed("port") {
		cfg.Server.Port = port
	}
	if flagSet.Changed("log-level") {
		cfg.Log.Level = logLevel
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.Log, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	startupCtx, cancel := context.WithTimeout(context.Background(), startupTimeout)
	defer cancel()

	st, err := openStore(startupCtx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer st.close()

	ready := []transporthttp.Pinger{st.ping}
	var stockCache app.StockCache
	if cfg.Redis.Enabled() {
		if rc := connectRedis(startupCtx, cfg.Redis, logger); rc != nil {
			defer func() { _ = rc.Close() }()
			c := cache.NewStockCache(rc, cache.WithTTL(cfg.Redis.StockTTL()), cache.WithLogger(logger))
			stockCache = c
			ready = append(ready, c)
		}
	} else {
		logger.Info("redis not configured, stock cache disabled")
	}

	clk := clock.NewSystem()
	requestOpts := []app.RequestServiceOption{app.WithStockInvalidation(stockCache)}
	routerCfg := transporthttp.RouterConfig{
		Logger:      logger,
		CORSOrigins: cfg.Server.CORSOrigins,
		Ready:       ready,
	}
	if cfg.Metrics.Enabled {
		m := metrics.New()
		requestOpts = append(requestOpts, app.WithTransitionObserver(m))
		routerCfg.Metrics = m
		routerCfg.MetricsPath = cfg.Metrics.Path
	}

	stockSvc := app.NewStockService(st.stock, clk, app.WithStockCache(stockCache))
	donorSvc := app.NewDonorService(st.donors, clk)
	requestSvc := app.NewRequestService(st.requests, clk, requestOpts...)

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           transporthttp.NewRouter(routerCfg, stockSvc, donorSvc, requestSvc),
		ReadHeaderTimeout: 5 * time.Second,
	}

	logger.Info("api listening", "addr", server.Addr, "driver", cfg.Database.Driver)

	srvErr := make(chan error, 1)
	go func() {
		srvErr <- server.ListenAndServe()
	}()

	stopCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	select {
	case err := <-srvErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server: %w", err)
		}
	case <-stopCtx.Done():
		logger.Info("shutdown signal received, stopping server")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout())
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server shutdown error", "error", err)
	}
	logger.Info("server stopped")
	return nil
}

func newLogger(cfg config.LogConfig, w io.Writer) (*slog.Logger, error) {
	level, err := config.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	}
	return slog.New(slog.NewTextHandler(w, opts)), nil
}

// connectRedis returns nil when Redis cannot be reached; the service then
// runs without the stock cache.
func connectRedis(ctx context.Context, cfg config.RedisConfig, logger *slog.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		logger.Warn("redis unreachable, stock cache disabled", "addr", cfg.Addr, "error", err)
		_ = client.Close()
		return nil
	}
	logger.Info("redis connected, stock cache enabled", "addr", cfg.Addr, "ttl", cfg.StockTTL())
	return client
}
