package main

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang-wa-dispatch/internal/adapters/db/sqlstore"
	"golang-wa-dispatch/internal/adapters/queue/rabbitmq"
	"golang-wa-dispatch/internal/bootstrap"
	"golang-wa-dispatch/internal/config"
	"golang-wa-dispatch/internal/logging"
	"golang-wa-dispatch/internal/middleware"
	"golang-wa-dispatch/internal/ports"
	"golang-wa-dispatch/internal/transport"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func main() {
	conf := config.FromEnv()
	log := logging.New(conf.LogLevel, conf.LogFile)
	if err := run(conf, log); err != nil {
		log.Error("application failed", "error", err)
		os.Exit(1)
	}
}

func run(conf config.Config, log *slog.Logger) error {
	db, err := bootstrap.OpenDB(conf)
	if err != nil {
		return err
	}
	defer sqlstore.Close(db)

	engine := bootstrap.NewEngine(db, log)

	// the async endpoint is optional; the synchronous ones work without a broker
	var publisher ports.RequestPublisher
	if conf.AMQPURL != "" {
		p, err := rabbitmq.NewPublisher(conf.AMQPURL, conf.AMQPQueue)
		if err != nil {
			log.Warn("rabbitmq unavailable, async sends disabled", "err", err)
		} else {
			defer p.Close()
			publisher = p
		}
	}

	fiberApp := fiber.New(fiber.Config{
		AppName:               "dispatch-api",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		// a dispatch call may run the full retry policy of several gateways
		WriteTimeout: 5 * time.Minute,
		IdleTimeout:  120 * time.Second,
		ServerHeader: "",
		BodyLimit:    1 * 1024 * 1024,
	})

	fiberApp.Use(recover.New(recover.Config{
		EnableStackTrace: true,
	}))
	fiberApp.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${method} ${path} ${latency}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))
	fiberApp.Use(middleware.RequestIDMiddleware())
	fiberApp.Use(middleware.SecurityHeaders())
	fiberApp.Use(middleware.CORSConfig(conf.AllowedOrigins))

	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "healthy"})
	})
	fiberApp.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	handler := transport.NewHandler(engine, publisher, log)
	api := fiberApp.Group("/api", middleware.RateLimit(conf.RateLimitPerMinute))
	handler.Register(api)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	go func() {
		log.Info("dispatch-api started", "addr", conf.HTTPAddr)
		if err := fiberApp.Listen(conf.HTTPAddr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
	case err := <-errChan:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		return errors.New("failed to shutdown gracefully: " + err.Error())
	}

	log.Info("dispatch-api stopped gracefully")
	return nil
}
