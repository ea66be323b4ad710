package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"

	"golang-wa-dispatch/internal/config"
	"golang-wa-dispatch/internal/logging"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// directRequest mirrors what the wadirect adapter sends.
type directRequest struct {
	Token     string `json:"token"`
	Sender    string `json:"sender"`
	PhoneNo   string `json:"phone_no"`
	GroupID   string `json:"group_id"`
	Message   string `json:"message"`
	MediaURL  string `json:"media_url"`
	MediaType string `json:"media_type"`
}

func main() {
	conf := config.FromEnv()
	log := logging.New(conf.LogLevel, conf.LogFile)

	failEvery, _ := strconv.Atoi(os.Getenv("MOCK_FAIL_EVERY"))
	fiberApp := newApp(log, failEvery)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info("mock-wa-provider listening", "addr", conf.ProviderAddr, "fail_every", failEvery)
		if err := fiberApp.Listen(conf.ProviderAddr); err != nil {
			log.Error("fiber listen", "err", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down mock-wa-provider")
	_ = fiberApp.Shutdown()
}

// newApp serves both provider APIs. When failEvery > 0, every failEvery-th request
// answers HTTP 500 so retries and failover can be watched locally.
func newApp(log *slog.Logger, failEvery int) *fiber.App {
	fiberApp := fiber.New(fiber.Config{AppName: "mock-wa-provider", DisableStartupMessage: true})

	var count int64
	flaky := func(c *fiber.Ctx) error {
		n := atomic.AddInt64(&count, 1)
		if failEvery > 0 && n%int64(failEvery) == 0 {
			return c.Status(fiber.StatusInternalServerError).SendString("simulated failure")
		}
		return c.Next()
	}

	direct := fiberApp.Group("/wadirect", flaky)
	directHandler := func(c *fiber.Ctx) error {
		var req directRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": false, "message": "invalid body"})
		}
		if req.Token == "" {
			return c.JSON(fiber.Map{"status": false, "message": "invalid token"})
		}
		id := uuid.NewString()
		log.Info("wadirect received message", "phone_no", req.PhoneNo, "group_id", req.GroupID, "media_type", req.MediaType, "id", id)
		return c.JSON(fiber.Map{"status": true, "message": "sent", "id": id})
	}
	direct.Post("/send", directHandler)
	direct.Post("/send-group", directHandler)

	blast := fiberApp.Group("/wablast", flaky)
	blastHandler := func(c *fiber.Ctx) error {
		if c.FormValue("api_key") == "" {
			return c.JSON(fiber.Map{"status": false, "msg": "Wrong API key"})
		}
		log.Info("wablast received message",
			"path", c.Path(),
			"number", c.FormValue("number"),
			"media_type", c.FormValue("media_type"),
		)
		return c.JSON(fiber.Map{"status": true, "msg": "Message sent successfully!"})
	}
	blast.Post("/send-message", blastHandler)
	blast.Post("/send-media", blastHandler)
	blast.Post("/send-image", blastHandler)

	return fiberApp
}
