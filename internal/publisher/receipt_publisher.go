package publisher

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/receipt"
)

const ReceiptPrintQueue = "receipt.print"

type Broker interface {
	DeclareQueue(name string) error
	Publish(ctx context.Context, queue string, message []byte) error
}

// PrintJob is what the print station consumes: the structured receipt and
// its rendered text.
type PrintJob struct {
	Receipt *receipt.Receipt `json:"receipt"`
	Text    string           `json:"text"`
}

// ReceiptPublisher hands receipts to a remote print station over RabbitMQ.
type ReceiptPublisher struct {
	mq Broker
}

var _ receipt.Printer = &ReceiptPublisher{}

func NewReceiptPublisher(mq Broker) (*ReceiptPublisher, error) {
	if err := mq.DeclareQueue(ReceiptPrintQueue); err != nil {
		return nil, err
	}

	return &ReceiptPublisher{mq: mq}, nil
}

func (p *ReceiptPublisher) Print(ctx context.Context, r *receipt.Receipt) error {
	text, err := r.Text()
	if err != nil {
		return err
	}

	data, err := json.Marshal(PrintJob{Receipt: r, Text: text})
	if err != nil {
		return errors.Wrap(err, "failed to marshal print job")
	}

	return p.mq.Publish(ctx, ReceiptPrintQueue, data)
}
