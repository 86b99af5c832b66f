package receipt

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

type fakeOrders struct {
	order *models.SubmittedOrder
	err   error
	calls int
}

var _ OrderFetcher = &fakeOrders{}

func (f *fakeOrders) GetOrder(context.Context, int) (*models.SubmittedOrder, error) {
	f.calls++
	return f.order, f.err
}

type failingPrinter struct{}

func (failingPrinter) Print(context.Context, *Receipt) error { return errors.New("paper jam") }

func canonicalOrder() *models.SubmittedOrder {
	return &models.SubmittedOrder{
		ID:          9,
		OrderNumber: "ORD-0009",
		OrderType:   models.DineIn,
		Table:       &models.TableRef{ID: 15, Number: 5},
		Status:      models.StatusServed,
		Total:       decimal.RequireFromString("24.00"),
		Items: []models.OrderLineItem{
			{MenuItemID: 1, Name: "Burger", Quantity: 2, UnitPrice: decimal.RequireFromString("8.50"), LineTotal: decimal.RequireFromString("17.00")},
			{MenuItemID: 2, Name: "Fries", Quantity: 2, UnitPrice: decimal.RequireFromString("3.50")},
		},
	}
}

func newComposer(orders OrderFetcher) *Composer {
	c := NewComposer(orders, Header{StoreName: "Corner Diner", Address: "1 Main St"})
	c.now = func() time.Time { return time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC) }
	return c
}

func TestComposeFromCanonicalOrder(t *testing.T) {
	orders := &fakeOrders{order: canonicalOrder()}
	c := newComposer(orders)

	r, err := c.Compose(context.Background(), 9, &models.PaymentRequest{
		OrderID: 9, Method: models.Cash, Amount: decimal.RequireFromString("30"),
	}, &models.PaymentResult{Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, 1, orders.calls)

	assert.Equal(t, "ORD-0009", r.OrderNumber)
	require.Len(t, r.Lines, 2)
	assert.Equal(t, "17.00", r.Lines[0].LineTotal.StringFixed(2))
	assert.Equal(t, "7.00", r.Lines[1].LineTotal.StringFixed(2))
	require.NotNil(t, r.Payment)
	assert.Equal(t, "6.00", r.Payment.Change.StringFixed(2))

	text, err := r.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "Corner Diner\n1 Main St\n")
	assert.Contains(t, text, "Order ORD-0009 (dine-in)")
	assert.Contains(t, text, "Table 5\n")
	assert.Contains(t, text, "2024-05-01 12:30")
	assert.Contains(t, text, "2 x Burger")
	assert.Contains(t, text, "17.00")
	assert.Contains(t, text, "24.00")
	assert.Contains(t, text, "CHANGE")
	assert.Contains(t, text, "6.00")
}

func TestComposeCardPaymentHasReferenceAndNoChange(t *testing.T) {
	order := canonicalOrder()
	order.OrderType = models.Takeout
	order.Table = nil
	c := newComposer(&fakeOrders{order: order})

	r, err := c.Compose(context.Background(), 9, &models.PaymentRequest{
		OrderID: 9, Method: models.Card, Amount: decimal.RequireFromString("24.00"), ReferenceNumber: "TXN123",
	}, nil)
	require.NoError(t, err)

	text, err := r.Text()
	require.NoError(t, err)
	assert.Contains(t, text, "(takeout)")
	assert.NotContains(t, text, "Table")
	assert.Contains(t, text, "Ref: TXN123")
	assert.NotContains(t, text, "CHANGE")
}

func TestReprintHasNoPayment(t *testing.T) {
	s := NewService(newComposer(&fakeOrders{order: canonicalOrder()}), NewWriterPrinter(&bytes.Buffer{}), log.New())

	r, err := s.Reprint(context.Background(), 9)
	require.NoError(t, err)
	assert.Nil(t, r.Payment)
}

func TestIssuePrints(t *testing.T) {
	var buf bytes.Buffer
	s := NewService(newComposer(&fakeOrders{order: canonicalOrder()}), NewWriterPrinter(&buf), log.New())

	s.Issue(context.Background(), models.PaymentRequest{OrderID: 9, Method: models.Cash, Amount: decimal.RequireFromString("24.00")}, nil)
	assert.Contains(t, buf.String(), "ORD-0009")
}

func TestIssueSwallowsFailures(t *testing.T) {
	tests := []struct {
		name    string
		orders  *fakeOrders
		printer Printer
		level   log.Level
	}{
		{"order missing", &fakeOrders{err: apperr.NotFoundError{Resource: "order", ID: "9"}}, NewWriterPrinter(&bytes.Buffer{}), log.DebugLevel},
		{"order service down", &fakeOrders{err: &apperr.ServiceError{Op: "get order", Err: errors.New("timeout")}}, NewWriterPrinter(&bytes.Buffer{}), log.WarnLevel},
		{"printer broken", &fakeOrders{order: canonicalOrder()}, failingPrinter{}, log.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			logger.SetLevel(log.DebugLevel)
			s := NewService(newComposer(tt.orders), tt.printer, logger)

			assert.NotPanics(t, func() {
				s.Issue(context.Background(), models.PaymentRequest{OrderID: 9, Method: models.Cash}, nil)
			})
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, tt.level, hook.LastEntry().Level)
		})
	}
}
