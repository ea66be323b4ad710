package app

import (
	"context"
	"time"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/ports"
)

// AttemptFunc makes one adapter call against a gateway.
type AttemptFunc func(ctx context.Context) ports.AttemptResult

// RetryingSender repeats an attempt against one gateway according to its retry policy.
type RetryingSender struct {
	sleep func(time.Duration)
}

// NewRetryingSender returns a sender that waits with time.Sleep between attempts.
func NewRetryingSender() *RetryingSender {
	return &RetryingSender{sleep: time.Sleep}
}

// Attempts is the number of calls the policy allows for gw. Auto failover moves on to the
// next gateway instead of retrying.
func Attempts(gw domain.GatewayConfig) int {
	if gw.FailoverMode == domain.FailoverAuto {
		return 1
	}
	if gw.RetryMax < 0 {
		return 1
	}
	return gw.RetryMax + 1
}

// Attempt calls call until it succeeds, reports a precondition failure, or the policy is
// exhausted. It returns the last result and the number of calls made.
func (s *RetryingSender) Attempt(ctx context.Context, gw domain.GatewayConfig, call AttemptFunc) (ports.AttemptResult, int) {
	limit := Attempts(gw)
	delay := time.Duration(gw.RetryDelaySec) * time.Second

	var res ports.AttemptResult
	for i := 1; i <= limit; i++ {
		res = call(ctx)
		if res.OK || res.Precondition {
			return res, i
		}
		if i < limit && delay > 0 {
			s.sleep(delay)
		}
	}
	return res, limit
}
