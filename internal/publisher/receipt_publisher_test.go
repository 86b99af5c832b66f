package publisher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/receipt"
)

type fakeBroker struct {
	declared   []string
	queue      string
	body       []byte
	declareErr error
}

var _ Broker = &fakeBroker{}

func (f *fakeBroker) DeclareQueue(name string) error {
	f.declared = append(f.declared, name)
	return f.declareErr
}

func (f *fakeBroker) Publish(_ context.Context, queue string, message []byte) error {
	f.queue = queue
	f.body = message
	return nil
}

func TestPrintPublishesJob(t *testing.T) {
	b := &fakeBroker{}
	p, err := NewReceiptPublisher(b)
	require.NoError(t, err)
	assert.Equal(t, []string{ReceiptPrintQueue}, b.declared)

	r := &receipt.Receipt{
		Header:      receipt.Header{StoreName: "Corner Diner"},
		OrderNumber: "ORD-1",
		Total:       decimal.RequireFromString("24.00"),
	}
	require.NoError(t, p.Print(context.Background(), r))

	assert.Equal(t, ReceiptPrintQueue, b.queue)
	var job PrintJob
	require.NoError(t, json.Unmarshal(b.body, &job))
	assert.Equal(t, "ORD-1", job.Receipt.OrderNumber)
	assert.Contains(t, job.Text, "Corner Diner")
	assert.Contains(t, job.Text, "24.00")
}

func TestDeclareFailure(t *testing.T) {
	_, err := NewReceiptPublisher(&fakeBroker{declareErr: errors.New("channel closed")})
	assert.Error(t, err)
}
