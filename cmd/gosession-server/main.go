// Command gosession-server runs the goSession reference HTTP API.
//
// Configuration comes from the environment and an optional YAML file
// (-config or CONFIG_PATH). Migrations are applied on startup.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/config"
	"github.com/MrEthical07/goSession/internal/httpapi"
	"github.com/MrEthical07/goSession/internal/logging"
	"github.com/MrEthical07/goSession/internal/migrations"
	"github.com/MrEthical07/goSession/internal/users"
	promexport "github.com/MrEthical07/goSession/metrics/export/prometheus"
	"github.com/MrEthical07/goSession/session"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg := config.MustLoad()
	log := logging.NewLogger(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error("server.fail", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *slog.Logger) error {
	pool, err := newDBPool(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	db := stdlib.OpenDBFromPool(pool)
	defer func() { _ = db.Close() }()

	if err := migrations.Up(ctx, db); err != nil {
		return err
	}
	log.Info("db.migrated")

	repo, err := users.NewPostgresRepository(pool)
	if err != nil {
		return err
	}

	builder := goSession.New().
		WithConfig(cfg.SessionConfig()).
		WithUserProvider(users.NewProvider(repo)).
		WithLogger(log)

	if cfg.Session.AuditLog {
		builder = builder.WithAuditSink(goSession.NewSlogSink(log))
	}

	if cfg.UseRedis() {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		defer func() { _ = rdb.Close() }()
		builder = builder.WithRedis(rdb)
	}
	if cfg.Session.RefreshStore == config.StorePostgres {
		store := session.NewPostgresStore(db)
		builder = builder.WithRefreshStore(store)
		if cfg.Session.PurgeInterval > 0 {
			go purgeExpired(ctx, store, cfg.Session.PurgeInterval, log)
		}
	}

	engine, err := builder.Build()
	if err != nil {
		return fmt.Errorf("engine: %w", err)
	}
	defer engine.Close()

	opts := []httpapi.HandlerOption{}
	if cfg.Session.Metrics {
		opts = append(opts, httpapi.WithMetricsHandler(promexport.NewCollector(engine).Handler()))
	}
	api, err := httpapi.NewHandler(log, engine, repo, opts...)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           api.Routes(),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
	}

	log.Info("server.start", "addr", cfg.HTTP.Addr, "refresh_store", cfg.Session.RefreshStore)

	errCh := make(chan error, 1)
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("server.stop", "reason", "signal")
	case err := <-errCh:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	log.Info("server.stopped")
	return nil
}

// purgeExpired removes expired refresh rows until ctx is done. Redis expires
// its records itself.
func purgeExpired(ctx context.Context, store *session.PostgresStore, every time.Duration, log *slog.Logger) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PurgeExpired(ctx)
			if err != nil {
				log.Warn("refresh.purge.fail", "err", err)
				continue
			}
			if n > 0 {
				log.Info("refresh.purge", "removed", n)
			}
		}
	}
}

func newDBPool(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pcfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, err
	}
	return pool, nil
}
