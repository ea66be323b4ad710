package sqlstore

import (
	"time"

	"golang-wa-dispatch/internal/ports"

	"gorm.io/gorm"
)

// TenantGateway is the modern per-tenant gateway binding. GatewayID optionally
// references a shared catalog row that supplies blank provider fields.
// Numeric policy columns carry no database defaults so an explicit zero is stored as zero.
type TenantGateway struct {
	ID            int64  `gorm:"primaryKey"`
	TenantID      int64  `gorm:"index;not null"`
	GatewayID     *int64 `gorm:"index"`
	ProviderCode  string `gorm:"size:32"`
	Label         string `gorm:"size:100"`
	BaseURL       string `gorm:"size:255"`
	GroupURL      string `gorm:"size:255"`
	Token         string `gorm:"size:255"`
	SenderNumber  string `gorm:"size:32"`
	GroupID       string `gorm:"size:100"`
	IsActive      bool   `gorm:"not null"`
	Priority      int    `gorm:"not null"`
	FailoverMode  string `gorm:"size:16;not null;default:manual"`
	TimeoutSec    int    `gorm:"not null"`
	RetryMax      int    `gorm:"not null"`
	RetryDelaySec int    `gorm:"not null"`
	ExtraConfig   string `gorm:"type:text"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (TenantGateway) TableName() string { return ports.TableTenantGateways }

// GatewayCatalog is a provider definition shared by many tenants.
type GatewayCatalog struct {
	ID           int64  `gorm:"primaryKey"`
	ProviderCode string `gorm:"size:32;not null"`
	Label        string `gorm:"size:100"`
	BaseURL      string `gorm:"size:255"`
	GroupURL     string `gorm:"size:255"`
	Token        string `gorm:"size:255"`
	SenderNumber string `gorm:"size:32"`
	ExtraConfig  string `gorm:"type:text"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (GatewayCatalog) TableName() string { return ports.TableGatewayCatalog }

// LegacySetting is the old single-row-per-tenant configuration.
type LegacySetting struct {
	ID           int64  `gorm:"primaryKey"`
	TenantID     int64  `gorm:"uniqueIndex;not null"`
	ProviderCode string `gorm:"size:32"`
	BaseURL      string `gorm:"size:255"`
	GroupURL     string `gorm:"size:255"`
	Token        string `gorm:"size:255"`
	SenderNumber string `gorm:"size:32"`
	GroupID      string `gorm:"size:100"`
	Footer       string `gorm:"size:255"`
	UpdatedAt    time.Time
}

func (LegacySetting) TableName() string { return ports.TableLegacySettings }

// DeliveryLog is one row per dispatch call.
type DeliveryLog struct {
	ID             int64  `gorm:"primaryKey"`
	DispatchID     string `gorm:"size:36;index"`
	TenantID       int64  `gorm:"index"`
	Platform       string `gorm:"size:50"`
	Channel        string `gorm:"size:16"`
	Target         string `gorm:"size:100"`
	MessagePreview string `gorm:"size:500"`
	Status         string `gorm:"size:16;index"`
	Response       string `gorm:"type:text"`
	ErrorMessage   string `gorm:"type:text"`
	GatewayCode    string `gorm:"size:32"`
	GatewayID      int64
	Attempts       int
	CreatedAt      time.Time `gorm:"index"`
}

func (DeliveryLog) TableName() string { return ports.TableDeliveryLogs }

// AutoMigrate creates or updates the modern schema.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&GatewayCatalog{},
		&TenantGateway{},
		&LegacySetting{},
		&DeliveryLog{},
	)
}
