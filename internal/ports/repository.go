package ports

import "context"

// Tables read or written by the dispatcher.
const (
	TableTenantGateways = "tenant_wa_gateways"
	TableGatewayCatalog = "wa_gateway_catalog"
	TableLegacySettings = "wa_settings"
	TableDeliveryLogs   = "wa_delivery_logs"
)

// Row is one stored record keyed by column name. Only columns present in the
// deployed schema appear in it.
type Row map[string]any

// SchemaProbe reports whether optional tables and columns exist in the deployed schema.
// Implementations memoize results for the life of the process.
type SchemaProbe interface {
	HasTable(ctx context.Context, table string) bool
	HasColumn(ctx context.Context, table, column string) bool
}

// GatewayStore reads gateway configuration rows. All methods are keyed lookups;
// callers treat any error as "nothing configured".
type GatewayStore interface {
	SchemaProbe

	// TenantGateways returns the tenant's modern gateway rows, limited to active ones when activeOnly is set.
	TenantGateways(ctx context.Context, tenantID int64, activeOnly bool) ([]Row, error)

	// CatalogEntries returns shared provider catalog rows keyed by their id.
	CatalogEntries(ctx context.Context, ids []int64) (map[int64]Row, error)

	// LegacySettings returns the tenant's single legacy configuration row, or nil when absent.
	LegacySettings(ctx context.Context, tenantID int64) (Row, error)
}

// DeliveryLogStore persists delivery log rows.
type DeliveryLogStore interface {
	SchemaProbe

	// InsertDeliveryLog writes one row containing only the given columns.
	InsertDeliveryLog(ctx context.Context, row Row) error
}
