package ports

import (
	"context"

	"golang-wa-dispatch/internal/domain"
)

// AttemptResult is the outcome of one adapter call.
type AttemptResult struct {
	OK    bool
	Raw   string // provider response body, for diagnostics
	Error string // human-readable failure reason when !OK

	// Precondition is set when the gateway row itself is unusable (missing token,
	// sender or endpoint). No network call was made and retrying cannot help.
	Precondition bool
}

// MediaKind classifies an attachment for providers that use different endpoints per kind.
type MediaKind string

const (
	MediaImage MediaKind = "image"
	MediaFile  MediaKind = "file"
)

// MediaOptions carries the caller's media hints.
type MediaOptions struct {
	Kind          string // explicit hint: "image" or "file"
	MIME          string
	Ext           string
	SendAsCaption bool
	GroupFileURL  string // explicit override for the file-send endpoint
}

// ProviderAdapter translates a send request into one provider's HTTP API.
type ProviderAdapter interface {
	// Code returns the provider code this adapter serves.
	Code() domain.ProviderCode

	// SendOnce makes a single text-message attempt.
	SendOnce(ctx context.Context, gw domain.GatewayConfig, channel domain.Channel, target, message string) AttemptResult

	// SendMediaOnce makes a single media-message attempt.
	SendMediaOnce(ctx context.Context, gw domain.GatewayConfig, channel domain.Channel, target, message, mediaURL string, opts MediaOptions) AttemptResult
}
