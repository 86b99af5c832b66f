package consumer

import (
	"context"
	"encoding/json"

	amqp "github.com/rabbitmq/amqp091-go"
	log "github.com/sirupsen/logrus"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

const OrderStatusChangedQueue = "order.status_changed"

type PoolInvalidator interface {
	Invalidate(ctx context.Context)
}

// Acknowledger is the part of amqp.Delivery the consumer needs.
type Acknowledger interface {
	Ack(multiple bool) error
	Nack(multiple, requeue bool) error
}

// OrderStatusConsumer drops the cached payable pool whenever the Order
// Service reports a status change, so orders paid or cancelled elsewhere
// leave the payment panel without waiting for the refresh timer.
type OrderStatusConsumer struct {
	pool   PoolInvalidator
	logger log.FieldLogger
}

func NewOrderStatusConsumer(pool PoolInvalidator, logger log.FieldLogger) *OrderStatusConsumer {
	return &OrderStatusConsumer{pool: pool, logger: logger}
}

// Run handles deliveries until the channel closes or ctx ends.
func (c *OrderStatusConsumer) Run(ctx context.Context, messages <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			c.Handle(ctx, msg.Body, msg)
		}
	}
}

// Handle processes one order.status_changed event.
func (c *OrderStatusConsumer) Handle(ctx context.Context, body []byte, ack Acknowledger) {
	var event models.OrderStatusChangedEvent
	if err := json.Unmarshal(body, &event); err != nil {
		c.logger.WithError(err).Warn("failed to parse order status event")
		ack.Nack(false, false) // don't requeue bad messages
		return
	}

	c.logger.WithFields(log.Fields{
		"order_id":     event.OrderID,
		"order_number": event.OrderNumber,
		"old_status":   event.OldStatus,
		"new_status":   event.NewStatus,
	}).Info("order status changed")

	c.pool.Invalidate(ctx)
	ack.Ack(false)
}
