package app

import (
	"context"
	"strings"
	"testing"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sentOutcome() domain.DispatchOutcome {
	out := domain.NewOutcome(3, domain.ChannelGroup, "1203@g.us")
	out.Status = domain.StatusSent
	out.Provider = domain.ProviderBroadcast
	out.Gateway = &domain.GatewayConfig{ID: 12}
	out.Attempts = 1
	return out
}

func TestRecord_TruncatesByRunes(t *testing.T) {
	store := newMemStore(fullSchema)
	out := sentOutcome()
	out.Raw = strings.Repeat("é", 1500)

	NewDeliveryLogger(store, discardLogger()).Record(context.Background(), out, "noc", strings.Repeat("ü", 800))

	require.Equal(t, 1, store.logCount())
	row := store.logs[0]
	assert.Len(t, []rune(row["message_preview"].(string)), 500)
	assert.Len(t, []rune(row["response"].(string)), 1000)
	assert.Equal(t, int64(12), row["gateway_id"])
	assert.Equal(t, "wablast", row["gateway_code"])
}

func TestRecord_OnlyExistingColumns(t *testing.T) {
	store := newMemStore(map[string][]string{
		ports.TableDeliveryLogs: {"tenant_id", "status", "target"},
	})

	NewDeliveryLogger(store, discardLogger()).Record(context.Background(), sentOutcome(), "noc", "hello")

	require.Equal(t, 1, store.logCount())
	assert.Equal(t, ports.Row{"tenant_id": int64(3), "status": "sent", "target": "1203@g.us"}, store.logs[0])
}

func TestRecord_MissingTableSkips(t *testing.T) {
	store := newMemStore(nil)
	NewDeliveryLogger(store, discardLogger()).Record(context.Background(), sentOutcome(), "noc", "hello")
	assert.Zero(t, store.logCount())
}

func TestRecord_InsertErrorSwallowed(t *testing.T) {
	store := newMemStore(fullSchema)
	store.insertErr = errStorage
	assert.NotPanics(t, func() {
		NewDeliveryLogger(store, discardLogger()).Record(context.Background(), sentOutcome(), "noc", "hello")
	})

	var nilLogger *DeliveryLogger
	assert.NotPanics(t, func() {
		nilLogger.Record(context.Background(), sentOutcome(), "noc", "hello")
	})
}
