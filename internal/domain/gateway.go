package domain

import "strings"

// ProviderCode identifies which provider adapter handles a gateway.
type ProviderCode string

const (
	ProviderDirect    ProviderCode = "wadirect" // direct-API style provider
	ProviderBroadcast ProviderCode = "wablast"  // broadcaster-API style provider

	// LegacyProvider is the provider assumed for the single-row legacy configuration.
	LegacyProvider = ProviderBroadcast
)

// NormalizeProviderCode lower-cases and trims a provider code.
func NormalizeProviderCode(s string) ProviderCode {
	return ProviderCode(strings.ToLower(strings.TrimSpace(s)))
}

// FailoverMode decides how many gateways a dispatch call may try.
type FailoverMode string

const (
	FailoverManual FailoverMode = "manual" // only the top-priority gateway
	FailoverAuto   FailoverMode = "auto"   // every active gateway in priority order
)

// ParseFailoverMode maps stored values onto a FailoverMode; anything unknown is manual.
func ParseFailoverMode(s string) FailoverMode {
	if strings.EqualFold(strings.TrimSpace(s), string(FailoverAuto)) {
		return FailoverAuto
	}
	return FailoverManual
}

// Channel is the kind of recipient a message targets.
type Channel string

const (
	ChannelPersonal Channel = "personal"
	ChannelGroup    Channel = "group"
)

const (
	DefaultTimeoutSec    = 10
	DefaultRetryMax      = 2
	DefaultRetryDelaySec = 0
)

// GatewayConfig is one tenant-to-provider binding, or a synthesized legacy fallback.
type GatewayConfig struct {
	ID            int64
	TenantID      int64
	ProviderCode  ProviderCode
	Label         string
	BaseURL       string
	GroupURL      string
	Token         string
	SenderNumber  string
	GroupID       string
	IsActive      bool
	Priority      int
	FailoverMode  FailoverMode
	TimeoutSec    int
	RetryMax      int
	RetryDelaySec int
	Extra         map[string]any
	Legacy        bool // synthesized from the legacy single-row configuration, never persisted
}

// ApplyPolicyFloors enforces the retry policy floors on a config.
func (g *GatewayConfig) ApplyPolicyFloors() {
	if g.TimeoutSec < 1 {
		g.TimeoutSec = 1
	}
	if g.RetryMax < 0 {
		g.RetryMax = 0
	}
	if g.RetryDelaySec < 0 {
		g.RetryDelaySec = 0
	}
}

// ExtraString returns a string option from Extra, or "".
func (g GatewayConfig) ExtraString(key string) string {
	if g.Extra == nil {
		return ""
	}
	switch v := g.Extra[key].(type) {
	case string:
		return strings.TrimSpace(v)
	default:
		return ""
	}
}

// Clone returns a copy whose Extra map is not shared with g.
func (g GatewayConfig) Clone() GatewayConfig {
	c := g
	if g.Extra != nil {
		c.Extra = make(map[string]any, len(g.Extra))
		for k, v := range g.Extra {
			c.Extra[k] = v
		}
	}
	return c
}
