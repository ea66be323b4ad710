package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/observability/metrics"
	"golang-wa-dispatch/internal/ports"
)

// Engine is the dispatch entry point used by every caller. It resolves the tenant's
// gateways, tries them according to the failover mode and records one delivery log row
// per call. Errors never escape: they end up in the returned DispatchOutcome.
type Engine struct {
	resolver *GatewayConfigResolver
	retry    *RetryingSender
	delivery *DeliveryLogger
	adapters map[domain.ProviderCode]ports.ProviderAdapter
	log      *slog.Logger
}

// NewEngine wires the engine with its dependencies. delivery may be nil.
func NewEngine(
	resolver *GatewayConfigResolver,
	retry *RetryingSender,
	delivery *DeliveryLogger,
	log *slog.Logger,
	adapters ...ports.ProviderAdapter,
) *Engine {
	if log == nil {
		log = slog.Default()
	}
	if retry == nil {
		retry = NewRetryingSender()
	}
	e := &Engine{
		resolver: resolver,
		retry:    retry,
		delivery: delivery,
		adapters: make(map[domain.ProviderCode]ports.ProviderAdapter, len(adapters)),
		log:      log,
	}
	for _, a := range adapters {
		e.adapters[a.Code()] = a
	}
	return e
}

// SendPersonal sends a text message to one phone number.
func (e *Engine) SendPersonal(ctx context.Context, tenantID int64, target, message string, opts Options) domain.DispatchOutcome {
	return e.dispatch(ctx, request{tenantID: tenantID, channel: domain.ChannelPersonal, target: target, message: message}, opts)
}

// SendGroup sends a text message to a group.
func (e *Engine) SendGroup(ctx context.Context, tenantID int64, groupID, message string, opts Options) domain.DispatchOutcome {
	return e.dispatch(ctx, request{tenantID: tenantID, channel: domain.ChannelGroup, target: groupID, message: message}, opts)
}

// SendGroupMedia sends an attachment with a caption or follow-up text to a group.
func (e *Engine) SendGroupMedia(ctx context.Context, tenantID int64, groupID, message, mediaURL string, opts Options) domain.DispatchOutcome {
	return e.SendMedia(ctx, tenantID, domain.ChannelGroup, groupID, message, mediaURL, opts)
}

// SendMedia sends an attachment on the given channel. Only groups accept media.
func (e *Engine) SendMedia(ctx context.Context, tenantID int64, channel domain.Channel, target, message, mediaURL string, opts Options) domain.DispatchOutcome {
	return e.dispatch(ctx, request{
		tenantID: tenantID,
		channel:  channel,
		target:   target,
		message:  message,
		mediaURL: mediaURL,
		media:    true,
	}, opts)
}

type request struct {
	tenantID int64
	channel  domain.Channel
	target   string
	message  string
	mediaURL string
	media    bool
}

func (r request) validate() error {
	if r.tenantID <= 0 {
		return domain.ErrInvalidTenant
	}
	if r.target == "" {
		return domain.ErrEmptyTarget
	}
	if !r.media {
		return nil
	}
	if r.channel != domain.ChannelGroup {
		return domain.ErrMediaChannel
	}
	if strings.TrimSpace(r.message) == "" {
		return domain.ErrEmptyMessage
	}
	if r.mediaURL == "" {
		return domain.ErrEmptyMediaURL
	}
	return nil
}

func (e *Engine) dispatch(ctx context.Context, req request, opts Options) domain.DispatchOutcome {
	start := time.Now()
	req.target = strings.TrimSpace(req.target)
	req.mediaURL = strings.TrimSpace(req.mediaURL)

	out := domain.NewOutcome(req.tenantID, req.channel, req.target)
	e.run(ctx, req, opts, &out)

	metrics.RecordDispatch(string(req.channel), string(out.Status), time.Since(start))
	e.log.Info("dispatch finished",
		"dispatch_id", out.ID,
		"tenant_id", out.TenantID,
		"channel", out.Channel,
		"status", out.Status,
		"provider", out.Provider,
		"attempts", out.Attempts,
		"err", out.Error,
	)

	if e.delivery != nil {
		e.delivery.Record(ctx, out.Copy(), opts.LogPlatform, req.message)
	}
	return out
}

func (e *Engine) run(ctx context.Context, req request, opts Options, out *domain.DispatchOutcome) {
	if err := req.validate(); err != nil {
		out.Error = err.Error()
		return
	}

	candidates := e.resolver.Resolve(ctx, req.tenantID, opts.ForceProvider)
	if len(candidates) == 0 {
		out.Error = domain.ErrNoActiveGateway.Error()
		return
	}

	// the top gateway decides the mode for the whole call
	mode := candidates[0].FailoverMode
	if mode != domain.FailoverAuto && !opts.ForceFailover {
		candidates = candidates[:1]
	}

	for i := range candidates {
		gw := candidates[i]
		gw.FailoverMode = mode

		res, calls := e.attempt(ctx, gw, req, opts)
		out.Attempts += calls
		out.Gateway = &gw
		out.Provider = gw.ProviderCode
		out.Raw = res.Raw

		if res.OK {
			out.Status = domain.StatusSent
			out.Error = ""
			return
		}

		out.Error = res.Error
		if out.Error == "" {
			out.Error = "provider call failed"
		}
		e.log.Warn("gateway failed",
			"tenant_id", req.tenantID,
			"gateway_id", gw.ID,
			"provider", gw.ProviderCode,
			"attempts", calls,
			"err", out.Error,
		)
	}
}

// attempt runs the retry policy for one candidate and returns the last result and the
// number of adapter calls made.
func (e *Engine) attempt(ctx context.Context, gw domain.GatewayConfig, req request, opts Options) (ports.AttemptResult, int) {
	adapter, ok := e.adapters[gw.ProviderCode]
	if !ok {
		return ports.AttemptResult{
			Error:        fmt.Sprintf("%s: %q", domain.ErrUnknownProvider, gw.ProviderCode),
			Precondition: true,
		}, 0
	}

	return e.retry.Attempt(ctx, gw, func(ctx context.Context) ports.AttemptResult {
		var res ports.AttemptResult
		if req.media {
			res = adapter.SendMediaOnce(ctx, gw, req.channel, req.target, req.message, req.mediaURL, opts.Media)
		} else {
			res = adapter.SendOnce(ctx, gw, req.channel, req.target, req.message)
		}
		metrics.RecordAttempt(string(gw.ProviderCode), res.OK)
		return res
	})
}

// Dispatch routes a queued or HTTP send request to the matching Send* call.
func (e *Engine) Dispatch(ctx context.Context, req ports.SendRequest) domain.DispatchOutcome {
	opts := OptionsFromMap(req.Options)
	channel := domain.Channel(strings.ToLower(strings.TrimSpace(req.Channel)))
	if channel == "" {
		channel = domain.ChannelPersonal
	}

	if strings.TrimSpace(req.MediaURL) != "" {
		return e.SendMedia(ctx, req.TenantID, channel, req.Target, req.Message, req.MediaURL, opts)
	}
	if channel == domain.ChannelGroup {
		return e.SendGroup(ctx, req.TenantID, req.Target, req.Message, opts)
	}
	return e.SendPersonal(ctx, req.TenantID, req.Target, req.Message, opts)
}
