package rabbitmq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"golang-wa-dispatch/internal/ports"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type ackRecorder struct {
	acks    []uint64
	nacks   []uint64
	requeue []bool
}

func (a *ackRecorder) Ack(tag uint64, _ bool) error {
	a.acks = append(a.acks, tag)
	return nil
}

func (a *ackRecorder) Nack(tag uint64, _ bool, requeue bool) error {
	a.nacks = append(a.nacks, tag)
	a.requeue = append(a.requeue, requeue)
	return nil
}

func (a *ackRecorder) Reject(tag uint64, requeue bool) error {
	return a.Nack(tag, false, requeue)
}

func delivery(ack amqp.Acknowledger, tag uint64, body []byte) amqp.Delivery {
	return amqp.Delivery{Acknowledger: ack, DeliveryTag: tag, Body: body}
}

func discard() *slog.Logger { return slog.New(slog.NewJSONHandler(io.Discard, nil)) }

func TestHandleDelivery_AcksAfterHandler(t *testing.T) {
	msg, err := encode(ports.SendRequest{TenantID: 3, Channel: "group", Target: "1203@g.us", Message: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "application/json", msg.ContentType)
	assert.NotEmpty(t, msg.MessageId)

	ack := &ackRecorder{}
	var got ports.SendRequest
	handleDelivery(context.Background(), delivery(ack, 7, msg.Body), func(_ context.Context, req ports.SendRequest) error {
		got = req
		return nil
	}, discard())

	assert.Equal(t, []uint64{7}, ack.acks)
	assert.Empty(t, ack.nacks)
	assert.Equal(t, int64(3), got.TenantID)
	assert.Equal(t, "1203@g.us", got.Target)
}

func TestHandleDelivery_MalformedDropped(t *testing.T) {
	ack := &ackRecorder{}
	called := false
	handleDelivery(context.Background(), delivery(ack, 8, []byte(`{`)), func(context.Context, ports.SendRequest) error {
		called = true
		return nil
	}, discard())

	assert.False(t, called)
	assert.Equal(t, []uint64{8}, ack.nacks)
	assert.Equal(t, []bool{false}, ack.requeue)
}

func TestHandleDelivery_HandlerErrorNotRequeued(t *testing.T) {
	body, _ := json.Marshal(ports.SendRequest{TenantID: 1, Target: "0812"})
	ack := &ackRecorder{}
	handleDelivery(context.Background(), delivery(ack, 9, body), func(context.Context, ports.SendRequest) error {
		return errors.New("boom")
	}, discard())

	assert.Equal(t, []uint64{9}, ack.nacks)
	assert.Equal(t, []bool{false}, ack.requeue)
}
