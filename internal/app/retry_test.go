package app

import (
	"context"
	"testing"
	"time"

	"golang-wa-dispatch/internal/domain"
	"golang-wa-dispatch/internal/ports"

	"github.com/stretchr/testify/assert"
)

type sleepRecorder struct {
	sleeps []time.Duration
}

func (r *sleepRecorder) sender() *RetryingSender {
	return &RetryingSender{sleep: func(d time.Duration) { r.sleeps = append(r.sleeps, d) }}
}

func counting(results ...ports.AttemptResult) (AttemptFunc, *int) {
	calls := 0
	return func(context.Context) ports.AttemptResult {
		i := calls
		calls++
		if i >= len(results) {
			return results[len(results)-1]
		}
		return results[i]
	}, &calls
}

func TestAttempt_ManualRetriesRetryMaxPlusOne(t *testing.T) {
	for _, n := range []int{0, 1, 2, 5} {
		rec := &sleepRecorder{}
		call, calls := counting(failResult)
		gw := domain.GatewayConfig{FailoverMode: domain.FailoverManual, RetryMax: n, RetryDelaySec: 2}

		res, made := rec.sender().Attempt(context.Background(), gw, call)

		assert.False(t, res.OK)
		assert.Equal(t, n+1, *calls, "retry_max=%d", n)
		assert.Equal(t, n+1, made)
		assert.Len(t, rec.sleeps, n, "no sleep after the last attempt")
		for _, d := range rec.sleeps {
			assert.Equal(t, 2*time.Second, d)
		}
	}
}

func TestAttempt_AutoModeSingleAttempt(t *testing.T) {
	rec := &sleepRecorder{}
	call, calls := counting(failResult)
	gw := domain.GatewayConfig{FailoverMode: domain.FailoverAuto, RetryMax: 4, RetryDelaySec: 1}

	_, made := rec.sender().Attempt(context.Background(), gw, call)
	assert.Equal(t, 1, *calls)
	assert.Equal(t, 1, made)
	assert.Empty(t, rec.sleeps)
}

func TestAttempt_StopsOnSuccess(t *testing.T) {
	rec := &sleepRecorder{}
	call, calls := counting(failResult, okResult, failResult)
	gw := domain.GatewayConfig{FailoverMode: domain.FailoverManual, RetryMax: 5}

	res, made := rec.sender().Attempt(context.Background(), gw, call)
	assert.True(t, res.OK)
	assert.Equal(t, 2, *calls)
	assert.Equal(t, 2, made)
	assert.Empty(t, rec.sleeps, "zero delay never sleeps")
}

func TestAttempt_PreconditionNotRetried(t *testing.T) {
	rec := &sleepRecorder{}
	call, calls := counting(ports.AttemptResult{Error: "token not configured", Precondition: true})
	gw := domain.GatewayConfig{FailoverMode: domain.FailoverManual, RetryMax: 3, RetryDelaySec: 1}

	res, _ := rec.sender().Attempt(context.Background(), gw, call)
	assert.True(t, res.Precondition)
	assert.Equal(t, 1, *calls)
	assert.Empty(t, rec.sleeps)
}

func TestAttempts(t *testing.T) {
	assert.Equal(t, 3, Attempts(domain.GatewayConfig{RetryMax: 2}))
	assert.Equal(t, 1, Attempts(domain.GatewayConfig{RetryMax: -1}))
	assert.Equal(t, 1, Attempts(domain.GatewayConfig{RetryMax: 9, FailoverMode: domain.FailoverAuto}))
}
