package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"golang-wa-dispatch/internal/adapters/db/sqlstore"
	"golang-wa-dispatch/internal/adapters/queue/rabbitmq"
	"golang-wa-dispatch/internal/bootstrap"
	"golang-wa-dispatch/internal/config"
	"golang-wa-dispatch/internal/logging"
	"golang-wa-dispatch/internal/ports"
)

func main() {
	conf := config.FromEnv()
	log := logging.New(conf.LogLevel, conf.LogFile)

	// ── Adapters ─────────────────────────────────────────────────────────────
	db, err := bootstrap.OpenDB(conf)
	if err != nil {
		log.Error("connect database", "err", err)
		os.Exit(1)
	}
	defer sqlstore.Close(db)

	consumer, err := rabbitmq.NewConsumer(conf.AMQPURL, conf.AMQPQueue, log)
	if err != nil {
		log.Error("connect rabbitmq consumer", "err", err)
		os.Exit(1)
	}
	defer consumer.Close()

	// ── Application service ──────────────────────────────────────────────────
	engine := bootstrap.NewEngine(db, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log.Info("dispatch-worker started", "queue", conf.AMQPQueue)

	// the outcome is already logged and recorded by the engine; every request is acked
	if err := consumer.Consume(ctx, func(ctx context.Context, req ports.SendRequest) error {
		engine.Dispatch(ctx, req)
		return nil
	}); err != nil && ctx.Err() == nil {
		log.Error("consumer error", "err", err)
		os.Exit(1)
	}

	log.Info("shutting down dispatch-worker")
}
