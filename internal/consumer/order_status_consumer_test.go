package consumer

import (
	"context"
	"testing"

	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

type fakePool struct{ invalidated int }

func (f *fakePool) Invalidate(context.Context) { f.invalidated++ }

type fakeAck struct {
	acked   bool
	nacked  bool
	requeue bool
}

var _ Acknowledger = &fakeAck{}

func (f *fakeAck) Ack(bool) error { f.acked = true; return nil }

func (f *fakeAck) Nack(_, requeue bool) error {
	f.nacked = true
	f.requeue = requeue
	return nil
}

func TestHandleInvalidatesPool(t *testing.T) {
	p := &fakePool{}
	c := NewOrderStatusConsumer(p, log.New())
	ack := &fakeAck{}

	c.Handle(context.Background(), []byte(`{"order_id":9,"order_number":"ORD-9","old_status":"served","new_status":"paid"}`), ack)

	assert.Equal(t, 1, p.invalidated)
	assert.True(t, ack.acked)
	assert.False(t, ack.nacked)
}

func TestHandleDropsMalformedEvents(t *testing.T) {
	p := &fakePool{}
	c := NewOrderStatusConsumer(p, log.New())
	ack := &fakeAck{}

	c.Handle(context.Background(), []byte(`{not json`), ack)

	assert.Zero(t, p.invalidated)
	assert.True(t, ack.nacked)
	assert.False(t, ack.requeue)
}
