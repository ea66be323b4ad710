package transport

import (
	"context"
	"log/slog"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/ports"

	"github.com/gofiber/fiber/v2"
)

// Dispatcher is the part of the engine the HTTP layer needs.
type Dispatcher interface {
	Dispatch(ctx context.Context, req ports.SendRequest) domain.DispatchOutcome
}

// Handler holds all HTTP handlers for the dispatch API.
type Handler struct {
	engine    Dispatcher
	publisher ports.RequestPublisher // nil disables /send/async
	log       *slog.Logger
}

// NewHandler wires up a Handler with its dependencies.
func NewHandler(engine Dispatcher, publisher ports.RequestPublisher, log *slog.Logger) *Handler {
	return &Handler{engine: engine, publisher: publisher, log: log}
}

// Register mounts all routes onto the given Fiber router.
func (h *Handler) Register(router fiber.Router) {
	send := router.Group("/send")
	send.Post("/personal", h.SendPersonal)
	send.Post("/group", h.SendGroup)
	send.Post("/group-media", h.SendGroupMedia)
	send.Post("/async", h.Enqueue)
}

type sendRequest struct {
	TenantID int64          `json:"tenant_id"`
	Target   string         `json:"target"`
	GroupID  string         `json:"group_id"`
	Message  string         `json:"message"`
	MediaURL string         `json:"media_url"`
	Channel  string         `json:"channel"`
	Options  map[string]any `json:"options"`
}

func (r sendRequest) groupTarget() string {
	if r.GroupID != "" {
		return r.GroupID
	}
	return r.Target
}

type outcomeResponse struct {
	ID        string `json:"id"`
	Status    string `json:"status"`
	Channel   string `json:"channel"`
	Provider  string `json:"provider,omitempty"`
	GatewayID int64  `json:"gateway_id,omitempty"`
	Attempts  int    `json:"attempts"`
	Error     string `json:"error,omitempty"`
	Response  string `json:"response,omitempty"`
}

// SendPersonal sends a text message to one phone number.
//
// POST /send/personal
// Body: { "tenant_id": 1, "target": "0812...", "message": "...", "options": {...} }
func (h *Handler) SendPersonal(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return h.respond(c, h.engine.Dispatch(c.UserContext(), ports.SendRequest{
		TenantID: req.TenantID,
		Channel:  string(domain.ChannelPersonal),
		Target:   req.Target,
		Message:  req.Message,
		Options:  req.Options,
	}))
}

// SendGroup sends a text message to a group.
//
// POST /send/group
// Body: { "tenant_id": 1, "group_id": "...", "message": "...", "options": {...} }
func (h *Handler) SendGroup(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	return h.respond(c, h.engine.Dispatch(c.UserContext(), ports.SendRequest{
		TenantID: req.TenantID,
		Channel:  string(domain.ChannelGroup),
		Target:   req.groupTarget(),
		Message:  req.Message,
		Options:  req.Options,
	}))
}

// SendGroupMedia sends an attachment to a group.
//
// POST /send/group-media
// Body: { "tenant_id": 1, "group_id": "...", "message": "...", "media_url": "...", "options": {...} }
func (h *Handler) SendGroupMedia(c *fiber.Ctx) error {
	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.MediaURL == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": domain.ErrEmptyMediaURL.Error()})
	}
	return h.respond(c, h.engine.Dispatch(c.UserContext(), ports.SendRequest{
		TenantID: req.TenantID,
		Channel:  string(domain.ChannelGroup),
		Target:   req.groupTarget(),
		Message:  req.Message,
		MediaURL: req.MediaURL,
		Options:  req.Options,
	}))
}

// Enqueue hands the request to the dispatch worker through the queue.
//
// POST /send/async
// Body: { "tenant_id": 1, "channel": "personal"|"group", "target": "...", "message": "...", "media_url": "..." }
func (h *Handler) Enqueue(c *fiber.Ctx) error {
	if h.publisher == nil {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "queue not configured"})
	}

	var req sendRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.TenantID <= 0 || req.Target == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "tenant_id and target are required"})
	}

	msg := ports.SendRequest{
		TenantID: req.TenantID,
		Channel:  req.Channel,
		Target:   req.Target,
		Message:  req.Message,
		MediaURL: req.MediaURL,
		Options:  req.Options,
	}
	if err := h.publisher.Publish(c.UserContext(), msg); err != nil {
		h.log.Error("publish send request", "tenant_id", req.TenantID, "err", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal server error"})
	}
	return c.SendStatus(fiber.StatusAccepted)
}

func (h *Handler) respond(c *fiber.Ctx, out domain.DispatchOutcome) error {
	resp := outcomeResponse{
		ID:       out.ID.String(),
		Status:   string(out.Status),
		Channel:  string(out.Channel),
		Provider: string(out.Provider),
		Attempts: out.Attempts,
		Error:    out.Error,
		Response: out.Raw,
	}
	if out.Gateway != nil {
		resp.GatewayID = out.Gateway.ID
	}
	return c.Status(statusFor(out)).JSON(resp)
}

var validationErrors = map[string]bool{
	domain.ErrInvalidTenant.Error(): true,
	domain.ErrEmptyTarget.Error():   true,
	domain.ErrEmptyMessage.Error():  true,
	domain.ErrEmptyMediaURL.Error(): true,
	domain.ErrMediaChannel.Error():  true,
}

func statusFor(out domain.DispatchOutcome) int {
	switch {
	case out.Sent():
		return fiber.StatusOK
	case validationErrors[out.Error]:
		return fiber.StatusBadRequest
	case out.Error == domain.ErrNoActiveGateway.Error():
		return fiber.StatusUnprocessableEntity
	default:
		return fiber.StatusBadGateway
	}
}
