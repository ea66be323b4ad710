package app

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/ports"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// memStore is an in-memory GatewayStore and DeliveryLogStore with a configurable schema.
type memStore struct {
	mu sync.Mutex

	columns  map[string]map[string]bool
	gateways []ports.Row
	catalog  map[int64]ports.Row
	legacy   map[int64]ports.Row
	logs     []ports.Row

	gatewayErr error
	insertErr  error
}

var fullSchema = map[string][]string{
	ports.TableTenantGateways: {
		"id", "tenant_id", "gateway_id", "provider_code", "label", "base_url", "group_url", "token",
		"sender_number", "group_id", "is_active", "priority", "failover_mode", "timeout_sec",
		"retry_max", "retry_delay_sec", "extra_config",
	},
	ports.TableGatewayCatalog: {"id", "provider_code", "label", "base_url", "group_url", "token", "sender_number", "extra_config"},
	ports.TableLegacySettings: {"id", "tenant_id", "provider_code", "base_url", "group_url", "token", "sender_number", "group_id", "footer"},
	ports.TableDeliveryLogs: {
		"dispatch_id", "tenant_id", "platform", "channel", "target", "message_preview", "status",
		"response", "error_message", "gateway_code", "gateway_id", "attempts", "created_at",
	},
}

func newMemStore(schema map[string][]string) *memStore {
	s := &memStore{
		columns: map[string]map[string]bool{},
		catalog: map[int64]ports.Row{},
		legacy:  map[int64]ports.Row{},
	}
	for table, cols := range schema {
		set := map[string]bool{}
		for _, c := range cols {
			set[c] = true
		}
		s.columns[table] = set
	}
	return s
}

func (s *memStore) HasTable(_ context.Context, table string) bool {
	_, ok := s.columns[table]
	return ok
}

func (s *memStore) HasColumn(_ context.Context, table, column string) bool {
	return s.columns[table][column]
}

func (s *memStore) TenantGateways(_ context.Context, tenantID int64, activeOnly bool) ([]ports.Row, error) {
	if s.gatewayErr != nil {
		return nil, s.gatewayErr
	}
	var out []ports.Row
	for _, row := range s.gateways {
		if rowInt64(row, "tenant_id") != tenantID {
			continue
		}
		if activeOnly && !rowBool(row, "is_active", false) {
			continue
		}
		cp := ports.Row{}
		for k, v := range row {
			cp[k] = v
		}
		out = append(out, cp)
	}
	return out, nil
}

func (s *memStore) CatalogEntries(_ context.Context, ids []int64) (map[int64]ports.Row, error) {
	out := map[int64]ports.Row{}
	for _, id := range ids {
		if row, ok := s.catalog[id]; ok {
			out[id] = row
		}
	}
	return out, nil
}

func (s *memStore) LegacySettings(_ context.Context, tenantID int64) (ports.Row, error) {
	return s.legacy[tenantID], nil
}

func (s *memStore) InsertDeliveryLog(_ context.Context, row ports.Row) error {
	if s.insertErr != nil {
		return s.insertErr
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, row)
	return nil
}

func (s *memStore) logCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.logs)
}

// scriptedAdapter returns results in order, repeating the last one.
type scriptedAdapter struct {
	code    domain.ProviderCode
	mu      sync.Mutex
	results map[int64][]ports.AttemptResult
	calls   map[int64]int
}

func newScriptedAdapter(code domain.ProviderCode) *scriptedAdapter {
	return &scriptedAdapter{
		code:    code,
		results: map[int64][]ports.AttemptResult{},
		calls:   map[int64]int{},
	}
}

func (a *scriptedAdapter) script(gatewayID int64, results ...ports.AttemptResult) *scriptedAdapter {
	a.results[gatewayID] = results
	return a
}

func (a *scriptedAdapter) Code() domain.ProviderCode { return a.code }

func (a *scriptedAdapter) SendOnce(_ context.Context, gw domain.GatewayConfig, _ domain.Channel, _, _ string) ports.AttemptResult {
	return a.next(gw.ID)
}

func (a *scriptedAdapter) SendMediaOnce(_ context.Context, gw domain.GatewayConfig, _ domain.Channel, _, _, _ string, _ ports.MediaOptions) ports.AttemptResult {
	return a.next(gw.ID)
}

func (a *scriptedAdapter) next(id int64) ports.AttemptResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	n := a.calls[id]
	a.calls[id]++
	rs := a.results[id]
	if len(rs) == 0 {
		return ports.AttemptResult{Error: "unscripted"}
	}
	if n >= len(rs) {
		return rs[len(rs)-1]
	}
	return rs[n]
}

func (a *scriptedAdapter) callsTo(id int64) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls[id]
}

func (a *scriptedAdapter) totalCalls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	total := 0
	for _, n := range a.calls {
		total += n
	}
	return total
}

var (
	okResult   = ports.AttemptResult{OK: true, Raw: `{"status":true}`}
	failResult = ports.AttemptResult{Error: "http 500: upstream down", Raw: "upstream down"}
	errStorage = errors.New("connection reset")
)

func gatewayRow(id, tenantID int64, code string, priority int, mode string) ports.Row {
	return ports.Row{
		"id":              id,
		"tenant_id":       tenantID,
		"provider_code":   code,
		"base_url":        "https://wa.example.com/send-message",
		"token":           "tok",
		"sender_number":   "62811000",
		"is_active":       true,
		"priority":        int64(priority),
		"failover_mode":   mode,
		"timeout_sec":     int64(5),
		"retry_max":       int64(2),
		"retry_delay_sec": int64(0),
	}
}

func newTestEngine(store *memStore, adapters ...ports.ProviderAdapter) *Engine {
	log := discardLogger()
	retry := &RetryingSender{sleep: func(time.Duration) {}}
	return NewEngine(
		NewGatewayConfigResolver(store, log),
		retry,
		NewDeliveryLogger(store, log),
		log,
		adapters...,
	)
}
