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

	"github.com/arifwidianto08/ngantri-sub000/internal/config"
	"github.com/arifwidianto08/ngantri-sub000/internal/events"
	"github.com/arifwidianto08/ngantri-sub000/internal/handler"
	"github.com/arifwidianto08/ngantri-sub000/internal/idempotency"
	"github.com/arifwidianto08/ngantri-sub000/internal/logging"
	"github.com/arifwidianto08/ngantri-sub000/internal/router"
	"github.com/arifwidianto08/ngantri-sub000/internal/ws"
	"github.com/jackc/pgx/v5/pgxpool"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load(os.Getenv("NGANTRI_CONFIG"))
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.Init(cfg.App.Name, cfg.Log.Level, cfg.Log.File)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, &cfg); err != nil {
		logger.Error("server exited", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config) error {
	logger := logging.Base()

	// init database
	poolCfg, err := pgxpool.ParseConfig(cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("parse database url: %w", err)
	}
	poolCfg.MaxConns = cfg.Database.MaxConns
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("connect database: %w", err)
	}
	defer pool.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
	err = pool.Ping(pingCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	logger.Info("connected to database")

	// init redis (optional)
	var idem handler.IdempotencyStore
	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       0,
		})
		defer rdb.Close()
		if err := rdb.Ping(ctx).Err(); err != nil {
			return fmt.Errorf("ping redis: %w", err)
		}
		idem = idempotency.NewRedisStore(rdb, cfg.Redis.IdempotencyTTL)
		logger.Info("idempotency store enabled", "addr", cfg.Redis.Addr)
	}

	// init rabbitmq (optional)
	var publisher events.Publisher
	if cfg.Rabbit.URL != "" {
		conn, err := amqp.Dial(cfg.Rabbit.URL)
		if err != nil {
			return fmt.Errorf("dial rabbitmq: %w", err)
		}
		defer conn.Close()
		ch, err := conn.Channel()
		if err != nil {
			return fmt.Errorf("open rabbitmq channel: %w", err)
		}
		defer ch.Close()
		rp, err := events.NewRabbitPublisher(ch, cfg.Rabbit.Exchange)
		if err != nil {
			return err
		}
		publisher = rp
		logger.Info("event publishing enabled", "exchange", cfg.Rabbit.Exchange)
	}

	hub := ws.NewHub()
	go hub.Run(ctx)

	r := router.New(router.Deps{
		Config:      cfg,
		DB:          pool,
		Hub:         hub,
		Notifier:    events.NewNotifier(hub, publisher),
		Idempotency: idem,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      r,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting server", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTP.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
