package messagequeue

import (
	"context"
	"errors"
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeChannel struct {
	declared  []string
	published []amqp.Publishing
	keys      []string
	failWith  error
	closed    bool
}

func (f *fakeChannel) QueueDeclare(name string, durable, _, _, _ bool, _ amqp.Table) (amqp.Queue, error) {
	if !durable {
		return amqp.Queue{}, errors.New("queue must be durable")
	}
	f.declared = append(f.declared, name)
	return amqp.Queue{Name: name}, nil
}

func (f *fakeChannel) Publish(_, key string, _, _ bool, msg amqp.Publishing) error {
	if f.failWith != nil {
		return f.failWith
	}
	f.keys = append(f.keys, key)
	f.published = append(f.published, msg)
	return nil
}

func (f *fakeChannel) Close() error {
	f.closed = true
	return nil
}

func TestRabbitMQPublisher_Publish(t *testing.T) {
	ch := &fakeChannel{}
	p := newPublisher(ch, zaptest.NewLogger(t))

	require.NoError(t, p.Publish(context.Background(), "notifications", []byte(`{"id":"1"}`)))
	require.NoError(t, p.Publish(context.Background(), "notifications", []byte(`{"id":"2"}`)))

	assert.Equal(t, []string{"notifications"}, ch.declared, "queue is declared once")
	assert.Equal(t, []string{"notifications", "notifications"}, ch.keys)
	require.Len(t, ch.published, 2)
	assert.Equal(t, amqp.Persistent, ch.published[0].DeliveryMode)
	assert.Equal(t, "application/json", ch.published[0].ContentType)

	require.NoError(t, p.Close())
	assert.True(t, ch.closed)
}

func TestRabbitMQPublisher_Errors(t *testing.T) {
	ch := &fakeChannel{failWith: amqp.ErrClosed}
	p := newPublisher(ch, zaptest.NewLogger(t))

	err := p.Publish(context.Background(), "notifications", []byte("{}"))
	assert.ErrorIs(t, err, amqp.ErrClosed)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, p.Publish(ctx, "notifications", nil), context.Canceled)
}
