package ports

import "context"

// SendRequest is a dispatch request handed over by an asynchronous caller.
type SendRequest struct {
	TenantID int64          `json:"tenant_id"`
	Channel  string         `json:"channel"` // personal | group
	Target   string         `json:"target"`
	Message  string         `json:"message"`
	MediaURL string         `json:"media_url,omitempty"`
	Options  map[string]any `json:"options,omitempty"`
}

// RequestPublisher publishes send requests to the message queue.
type RequestPublisher interface {
	Publish(ctx context.Context, req SendRequest) error
}

// RequestConsumer consumes send requests from the message queue.
type RequestConsumer interface {
	// Consume passes each request to handler. Blocks until ctx is cancelled or a fatal error occurs.
	Consume(ctx context.Context, handler func(ctx context.Context, req SendRequest) error) error
}
