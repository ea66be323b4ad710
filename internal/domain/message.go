package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status is the final state of one dispatch call.
type Status string

const (
	StatusSent   Status = "sent"
	StatusFailed Status = "failed"
)

// DispatchOutcome is the result of a single Send* call. It is logged once and never persisted as an entity.
type DispatchOutcome struct {
	ID        uuid.UUID
	TenantID  int64
	Channel   Channel
	Target    string
	Status    Status
	Gateway   *GatewayConfig // nil when no gateway was tried
	Provider  ProviderCode
	Raw       string // provider response body
	Error     string // set whenever Status is failed
	Attempts  int    // adapter calls made across all candidates
	CreatedAt time.Time
}

// NewOutcome starts an outcome for a call; it is failed until a gateway succeeds.
func NewOutcome(tenantID int64, channel Channel, target string) DispatchOutcome {
	return DispatchOutcome{
		ID:        uuid.New(),
		TenantID:  tenantID,
		Channel:   channel,
		Target:    target,
		Status:    StatusFailed,
		CreatedAt: time.Now().UTC(),
	}
}

// Sent reports whether the outcome is a success.
func (o DispatchOutcome) Sent() bool {
	return o.Status == StatusSent
}

// Copy returns an outcome that shares no pointers with o.
func (o DispatchOutcome) Copy() DispatchOutcome {
	c := o
	if o.Gateway != nil {
		gw := o.Gateway.Clone()
		c.Gateway = &gw
	}
	return c
}

// Domain errors
var (
	ErrInvalidTenant   = errors.New("invalid tenant id")
	ErrEmptyTarget     = errors.New("target is empty")
	ErrEmptyMessage    = errors.New("message is empty")
	ErrEmptyMediaURL   = errors.New("media url is empty")
	ErrMediaChannel    = errors.New("media only supported for group channel")
	ErrNoActiveGateway = errors.New("no active gateway")
	ErrUnknownProvider = errors.New("unknown provider")
)
