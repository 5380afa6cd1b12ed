package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"

	"currency-bot/internal"
	rateshttp "currency-bot/internal/api/http/rates"
	"currency-bot/internal/bot"
	"currency-bot/internal/cbr"
	"currency-bot/internal/postgresql"
	"currency-bot/internal/redis"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context) error {
	// env
	cfg, err := LoadConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()
	if cfg.envFileErr != nil {
		logger.Debug(".env not loaded", zap.Error(cfg.envFileErr))
	}

	// cache store
	store, err := redis.NewFromURL(cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer func() { _ = store.Close() }()

	pingCtx, cancelPing := context.WithTimeout(ctx, 5*time.Second)
	defer cancelPing()
	if err := store.Ping(pingCtx); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	// feed + cache
	feed := cbr.New(cfg.CBRURL, cfg.FetchTimeout, logger)
	cache := internal.NewRateCache(store, feed, cbr.Parse, cfg.CacheTTL, logger)

	// audit log
	audit, closeAudit, err := newAuditLogger(ctx, cfg.DatabaseURL, logger)
	if err != nil {
		return err
	}
	defer closeAudit()

	// bot
	commands := bot.NewCommands(cache, audit, logger)
	tg, err := bot.NewTelegram(cfg.Token, commands, cfg.Workers, logger)
	if err != nil {
		return err
	}

	// instant warm-up
	warmUp(ctx, cache, logger)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.WarmupCron != "" {
		cronLog := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
		scheduler := cron.New(
			cron.WithLocation(cfg.Location),
			cron.WithParser(cron.NewParser(cron.Minute|cron.Hour|cron.Dom|cron.Month|cron.Dow|cron.Descriptor)),
			cron.WithChain(cron.Recover(cronLog), cron.SkipIfStillRunning(cronLog)),
		)
		if _, err := scheduler.AddFunc(cfg.WarmupCron, func() { warmUp(gctx, cache, logger) }); err != nil {
			return fmt.Errorf("add cron func: %w", err)
		}
		g.Go(func() error {
			return runCron(gctx, scheduler)
		})
	}

	if cfg.HTTPPort != "" {
		mux := http.NewServeMux()
		rateshttp.New(cache, audit, logger).Register(mux)
		g.Go(func() error {
			return serveHTTP(gctx, ":"+cfg.HTTPPort, mux, logger)
		})
	}

	g.Go(func() error {
		return tg.Run(gctx)
	})

	logger.Info("running, stop with Ctrl+C / SIGTERM",
		zap.String("bot", tg.Username()),
		zap.String("warmup_cron", cfg.WarmupCron),
		zap.Bool("audit", cfg.DatabaseURL != ""),
		zap.String("http_port", cfg.HTTPPort),
	)
	return g.Wait()
}

func newLogger(level zapcore.Level) (*zap.Logger, error) {
	zcfg := zap.NewProductionConfig()
	zcfg.Level = zap.NewAtomicLevelAt(level)
	zcfg.EncoderConfig.TimeKey = "time"
	zcfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	return zcfg.Build()
}

// newAuditLogger connects to Postgres when databaseURL is set and makes sure
// the command_log table exists.
func newAuditLogger(ctx context.Context, databaseURL string, logger *zap.Logger) (internal.CommandAuditLogger, func(), error) {
	if databaseURL == "" {
		return internal.NopAuditLogger{}, func() {}, nil
	}

	dbCtx, cancelDB := context.WithTimeout(ctx, 5*time.Second)
	defer cancelDB()

	pool, err := pgxpool.New(dbCtx, databaseURL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := postgresql.NewMigrations(pool).Setup(dbCtx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("ensure tables: %w", err)
	}

	logger.Info("command audit log enabled")
	return internal.NewStorageAuditLogger(postgresql.NewCommandLogStorage(pool)), pool.Close, nil
}

func warmUp(ctx context.Context, cache internal.SnapshotProvider, logger *zap.Logger) {
	snap, err := cache.GetOrRefresh(ctx)
	if err != nil {
		logger.Warn("rates warm-up failed", zap.Error(err))
		return
	}
	logger.Debug("rates warm", zap.Int("currencies", len(snap.Rates)), zap.String("date", snap.Date.Display()))
}

func runCron(ctx context.Context, c *cron.Cron) error {
	c.Start()
	defer func() {
		stopCtx := c.Stop()
		<-stopCtx.Done()
	}()

	<-ctx.Done()
	return nil
}

func serveHTTP(ctx context.Context, addr string, h http.Handler, logger *zap.Logger) error {
	srv := &http.Server{Addr: addr, Handler: h, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		<-ctx.Done()
		shutCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutCtx)
	}()

	logger.Info("HTTP listening", zap.String("addr", addr))
	err := srv.ListenAndServe()
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
