package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type OrderType string

const (
	DineIn   OrderType = "dine_in"
	Takeout  OrderType = "takeout"
	Delivery OrderType = "delivery"
)

func (t OrderType) Valid() bool {
	switch t {
	case DineIn, Takeout, Delivery:
		return true
	}
	return false
}

// OrderStatus is owned by the Order Service; the counter only filters on it.
type OrderStatus string

const (
	StatusConfirmed OrderStatus = "confirmed"
	StatusPreparing OrderStatus = "preparing"
	StatusServed    OrderStatus = "served"
	StatusCompleted OrderStatus = "completed"
	StatusPaid      OrderStatus = "paid"
	StatusCancelled OrderStatus = "cancelled"
)

// SubmittedOrder is the server-authoritative order record.
type SubmittedOrder struct {
	ID          int             `json:"id"`
	OrderNumber string          `json:"order_number"`
	OrderType   OrderType       `json:"order_type"`
	Table       *TableRef       `json:"table,omitempty"`
	Items       []OrderLineItem `json:"items"`
	Status      OrderStatus     `json:"status"`
	Total       decimal.Decimal `json:"total_amount"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}

type OrderLineItem struct {
	ID         int             `json:"id"`
	MenuItemID int             `json:"menu_item_id"`
	Name       string          `json:"name"`
	Quantity   int             `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	LineTotal  decimal.Decimal `json:"line_total"`
}

// Subtotal prefers the server's line total and falls back to unit price times quantity.
func (i OrderLineItem) Subtotal() decimal.Decimal {
	if !i.LineTotal.IsZero() {
		return i.LineTotal
	}
	return i.UnitPrice.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

type CreateOrderRequest struct {
	OrderType OrderType                `json:"order_type"`
	TableID   *int                     `json:"table_id,omitempty"`
	Items     []CreateOrderItemRequest `json:"items"`
	Notes     string                   `json:"notes,omitempty"`
}

type CreateOrderItemRequest struct {
	MenuItemID int `json:"menu_item_id"`
	Quantity   int `json:"quantity"`
}

// PayableFilter selects the orders shown in the payment panel.
type PayableFilter struct {
	Statuses []OrderStatus
}
