package sqlstore

import (
	"context"
	"fmt"
	"sync"

	"golang-wa-dispatch/internal/ports"

	"gorm.io/gorm"
)

// Repository implements ports.GatewayStore and ports.DeliveryLogStore.
type Repository struct {
	db *gorm.DB

	// schema probe results; only confirmed answers are kept
	known sync.Map
}

// New wraps an open gorm connection.
func New(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// HasTable reports whether the table exists. Results are memoized per process.
func (r *Repository) HasTable(ctx context.Context, table string) bool {
	return r.probe(ctx, table, "", func(m gorm.Migrator) bool {
		return m.HasTable(table)
	})
}

// HasColumn reports whether the column exists. Results are memoized per process.
func (r *Repository) HasColumn(ctx context.Context, table, column string) bool {
	if !r.HasTable(ctx, table) {
		return false
	}
	return r.probe(ctx, table, column, func(m gorm.Migrator) bool {
		return m.HasColumn(table, column)
	})
}

// probe runs check once per key. A negative answer is only cached when the database
// is reachable, so an outage does not hide a table for the life of the process.
func (r *Repository) probe(ctx context.Context, table, column string, check func(gorm.Migrator) bool) bool {
	key := table + "." + column
	if v, ok := r.known.Load(key); ok {
		return v.(bool)
	}

	found := check(r.db.WithContext(ctx).Migrator())
	if found || r.reachable(ctx) {
		r.known.Store(key, found)
	}
	return found
}

func (r *Repository) reachable(ctx context.Context) bool {
	sqlDB, err := r.db.DB()
	if err != nil {
		return false
	}
	return sqlDB.PingContext(ctx) == nil
}

// TenantGateways returns the tenant's modern gateway rows.
func (r *Repository) TenantGateways(ctx context.Context, tenantID int64, activeOnly bool) ([]ports.Row, error) {
	if !r.HasTable(ctx, ports.TableTenantGateways) {
		return nil, nil
	}

	q := r.db.WithContext(ctx).Table(ports.TableTenantGateways).Where("tenant_id = ?", tenantID)
	if activeOnly {
		q = q.Where("is_active = ?", true)
	}

	var rows []map[string]any
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query tenant gateways: %w", err)
	}
	return toRows(rows), nil
}

// CatalogEntries returns catalog rows keyed by id.
func (r *Repository) CatalogEntries(ctx context.Context, ids []int64) (map[int64]ports.Row, error) {
	if len(ids) == 0 || !r.HasTable(ctx, ports.TableGatewayCatalog) {
		return map[int64]ports.Row{}, nil
	}

	var rows []map[string]any
	if err := r.db.WithContext(ctx).Table(ports.TableGatewayCatalog).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query gateway catalog: %w", err)
	}

	out := make(map[int64]ports.Row, len(rows))
	for _, row := range rows {
		if id, ok := toInt64(row["id"]); ok {
			out[id] = ports.Row(row)
		}
	}
	return out, nil
}

// LegacySettings returns the tenant's legacy configuration row, or nil.
func (r *Repository) LegacySettings(ctx context.Context, tenantID int64) (ports.Row, error) {
	if !r.HasTable(ctx, ports.TableLegacySettings) {
		return nil, nil
	}

	var rows []map[string]any
	if err := r.db.WithContext(ctx).Table(ports.TableLegacySettings).Where("tenant_id = ?", tenantID).Limit(1).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("query legacy settings: %w", err)
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return ports.Row(rows[0]), nil
}

// InsertDeliveryLog writes one delivery log row.
func (r *Repository) InsertDeliveryLog(ctx context.Context, row ports.Row) error {
	if len(row) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Table(ports.TableDeliveryLogs).Create(map[string]any(row)).Error; err != nil {
		return fmt.Errorf("insert delivery log: %w", err)
	}
	return nil
}

func toRows(rows []map[string]any) []ports.Row {
	out := make([]ports.Row, 0, len(rows))
	for _, row := range rows {
		out = append(out, ports.Row(row))
	}
	return out
}

func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case uint:
		return int64(n), true
	case uint64:
		return int64(n), true
	case float64:
		return int64(n), true
	}
	return 0, false
}
