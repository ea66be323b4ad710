package app

import (
	"context"
	"log/slog"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/observability/metrics"
	"golang-wa-dispatch/internal/ports"
)

const (
	messagePreviewRunes = 500
	responseRunes       = 1000
)

// DeliveryLogger writes one row per dispatch call into the delivery log table.
type DeliveryLogger struct {
	store ports.DeliveryLogStore
	log   *slog.Logger
}

// NewDeliveryLogger wires the logger with its store.
func NewDeliveryLogger(store ports.DeliveryLogStore, log *slog.Logger) *DeliveryLogger {
	if log == nil {
		log = slog.Default()
	}
	return &DeliveryLogger{store: store, log: log}
}

// Record stores the outcome. Columns the deployment does not have are left out, a
// missing table skips the write, and failures are only logged.
func (l *DeliveryLogger) Record(ctx context.Context, out domain.DispatchOutcome, platform, message string) {
	if l == nil || l.store == nil {
		return
	}
	if !l.store.HasTable(ctx, ports.TableDeliveryLogs) {
		return
	}

	row := ports.Row{}
	set := func(col string, v any) {
		if l.store.HasColumn(ctx, ports.TableDeliveryLogs, col) {
			row[col] = v
		}
	}

	set("dispatch_id", out.ID.String())
	set("tenant_id", out.TenantID)
	set("platform", platform)
	set("channel", string(out.Channel))
	set("target", out.Target)
	set("message_preview", truncateRunes(message, messagePreviewRunes))
	set("status", string(out.Status))
	set("response", truncateRunes(out.Raw, responseRunes))
	set("error_message", out.Error)
	set("gateway_code", string(out.Provider))
	if out.Gateway != nil {
		set("gateway_id", out.Gateway.ID)
	}
	set("attempts", out.Attempts)
	set("created_at", out.CreatedAt)

	if err := l.store.InsertDeliveryLog(ctx, row); err != nil {
		metrics.DeliveryLogErrors.Inc()
		l.log.Warn("write delivery log failed", "dispatch_id", out.ID, "tenant_id", out.TenantID, "err", err)
	}
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
