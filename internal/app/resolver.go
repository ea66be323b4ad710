package app

import (
	"context"
	"log/slog"
	"sort"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/ports"
)

// catalogFields are copied from a catalog row into blank tenant-row fields.
var catalogFields = []string{
	"provider_code", "label", "base_url", "group_url", "token", "sender_number",
	"extra_config", "extra_json", "options",
}

// GatewayConfigResolver turns whatever gateway tables a deployment has into an
// ordered list of usable gateway configurations for one tenant.
type GatewayConfigResolver struct {
	store ports.GatewayStore
	log   *slog.Logger
}

// NewGatewayConfigResolver wires the resolver with its store.
func NewGatewayConfigResolver(store ports.GatewayStore, log *slog.Logger) *GatewayConfigResolver {
	if log == nil {
		log = slog.Default()
	}
	return &GatewayConfigResolver{store: store, log: log}
}

// Resolve returns the tenant's active gateways sorted by priority then ID. It never
// fails: storage errors are logged and treated as missing configuration.
func (r *GatewayConfigResolver) Resolve(ctx context.Context, tenantID int64, forceProvider string) []domain.GatewayConfig {
	force := domain.NormalizeProviderCode(forceProvider)

	configs := r.modernConfigs(ctx, tenantID)

	var (
		legacy       ports.Row
		legacyLoaded bool
	)
	loadLegacy := func() ports.Row {
		if !legacyLoaded {
			row, err := r.store.LegacySettings(ctx, tenantID)
			if err != nil {
				r.log.Warn("load legacy settings failed", "tenant_id", tenantID, "err", err)
			}
			legacy, legacyLoaded = row, true
		}
		return legacy
	}

	if len(configs) > 0 {
		if row := loadLegacy(); row != nil {
			backfill(configs, row)
		}
	}

	if force != "" {
		configs = filterProvider(configs, force)
	}

	if len(configs) == 0 {
		row := loadLegacy()
		if row == nil {
			return nil
		}
		gw := legacyConfig(tenantID, row)
		if force != "" && gw.ProviderCode != force {
			return nil
		}
		return []domain.GatewayConfig{gw}
	}

	sort.SliceStable(configs, func(i, j int) bool {
		if configs[i].Priority != configs[j].Priority {
			return configs[i].Priority < configs[j].Priority
		}
		return configs[i].ID < configs[j].ID
	})
	return configs
}

func (r *GatewayConfigResolver) modernConfigs(ctx context.Context, tenantID int64) []domain.GatewayConfig {
	hasActive := r.store.HasColumn(ctx, ports.TableTenantGateways, "is_active")

	rows, err := r.store.TenantGateways(ctx, tenantID, hasActive)
	if err != nil {
		r.log.Warn("load tenant gateways failed", "tenant_id", tenantID, "err", err)
		return nil
	}
	if len(rows) == 0 {
		return nil
	}

	if r.store.HasColumn(ctx, ports.TableTenantGateways, "gateway_id") && r.store.HasTable(ctx, ports.TableGatewayCatalog) {
		r.mergeCatalog(ctx, rows)
	}

	configs := make([]domain.GatewayConfig, 0, len(rows))
	for _, row := range rows {
		gw := configFromRow(tenantID, row)
		if !hasActive {
			gw.IsActive = true
		}
		if !gw.IsActive {
			continue
		}
		configs = append(configs, gw)
	}
	return configs
}

func (r *GatewayConfigResolver) mergeCatalog(ctx context.Context, rows []ports.Row) {
	ids := make([]int64, 0, len(rows))
	for _, row := range rows {
		if id := rowInt64(row, "gateway_id"); id > 0 {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}

	entries, err := r.store.CatalogEntries(ctx, ids)
	if err != nil {
		r.log.Warn("load gateway catalog failed", "err", err)
		return
	}

	for _, row := range rows {
		entry, ok := entries[rowInt64(row, "gateway_id")]
		if !ok {
			continue
		}
		for _, key := range catalogFields {
			if isBlank(row[key]) && !isBlank(entry[key]) {
				row[key] = entry[key]
			}
		}
	}
}

func isBlank(v any) bool {
	return rowString(ports.Row{"v": v}, "v") == ""
}

func configFromRow(tenantID int64, row ports.Row) domain.GatewayConfig {
	gw := domain.GatewayConfig{
		ID:            rowInt64(row, "id"),
		TenantID:      tenantID,
		ProviderCode:  domain.NormalizeProviderCode(rowString(row, "provider_code")),
		Label:         rowString(row, "label"),
		BaseURL:       rowString(row, "base_url"),
		GroupURL:      rowString(row, "group_url"),
		Token:         rowString(row, "token"),
		SenderNumber:  rowString(row, "sender_number"),
		GroupID:       rowString(row, "group_id"),
		IsActive:      rowBool(row, "is_active", true),
		Priority:      intOr(row, "priority", 0),
		FailoverMode:  domain.ParseFailoverMode(rowString(row, "failover_mode")),
		TimeoutSec:    intOr(row, "timeout_sec", domain.DefaultTimeoutSec),
		RetryMax:      intOr(row, "retry_max", domain.DefaultRetryMax),
		RetryDelaySec: intOr(row, "retry_delay_sec", domain.DefaultRetryDelaySec),
		Extra:         decodeExtra(row),
	}
	gw.ApplyPolicyFloors()
	return gw
}

func intOr(row ports.Row, key string, def int) int {
	if n, ok := rowInt(row, key); ok {
		return n
	}
	return def
}

// legacyConfig synthesizes a gateway from the single-row legacy configuration.
func legacyConfig(tenantID int64, row ports.Row) domain.GatewayConfig {
	code := domain.NormalizeProviderCode(rowString(row, "provider_code"))
	if code == "" {
		code = domain.LegacyProvider
	}

	extra := decodeExtra(row)
	if footer := rowString(row, "footer"); footer != "" {
		extra["footer"] = footer
	}

	gw := domain.GatewayConfig{
		ID:            rowInt64(row, "id"),
		TenantID:      tenantID,
		ProviderCode:  code,
		Label:         "legacy",
		BaseURL:       rowString(row, "base_url"),
		GroupURL:      rowString(row, "group_url"),
		Token:         rowString(row, "token"),
		SenderNumber:  rowString(row, "sender_number"),
		GroupID:       rowString(row, "group_id"),
		IsActive:      true,
		Priority:      1,
		FailoverMode:  domain.FailoverManual,
		TimeoutSec:    domain.DefaultTimeoutSec,
		RetryMax:      domain.DefaultRetryMax,
		RetryDelaySec: domain.DefaultRetryDelaySec,
		Extra:         extra,
		Legacy:        true,
	}
	gw.ApplyPolicyFloors()
	return gw
}

// backfill fills blank fields of modern rows that use the legacy provider.
func backfill(configs []domain.GatewayConfig, row ports.Row) {
	legacy := legacyConfig(0, row)
	for i := range configs {
		gw := &configs[i]
		if gw.ProviderCode != legacy.ProviderCode {
			continue
		}
		if gw.BaseURL == "" {
			gw.BaseURL = legacy.BaseURL
		}
		if gw.GroupURL == "" {
			gw.GroupURL = legacy.GroupURL
		}
		if gw.Token == "" {
			gw.Token = legacy.Token
		}
		if gw.SenderNumber == "" {
			gw.SenderNumber = legacy.SenderNumber
		}
		if gw.GroupID == "" {
			gw.GroupID = legacy.GroupID
		}
		if footer := legacy.ExtraString("footer"); footer != "" && gw.ExtraString("footer") == "" {
			if gw.Extra == nil {
				gw.Extra = map[string]any{}
			}
			gw.Extra["footer"] = footer
		}
	}
}

func filterProvider(configs []domain.GatewayConfig, code domain.ProviderCode) []domain.GatewayConfig {
	out := configs[:0]
	for _, gw := range configs {
		if gw.ProviderCode == code {
			out = append(out, gw)
		}
	}
	return out
}
