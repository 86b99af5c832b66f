package models

import "time"

// OrderStatusChangedEvent is published by the Order Service whenever an order moves.
type OrderStatusChangedEvent struct {
	OrderID     int         `json:"order_id"`
	OrderNumber string      `json:"order_number"`
	OldStatus   OrderStatus `json:"old_status"`
	NewStatus   OrderStatus `json:"new_status"`
	ChangedAt   time.Time   `json:"changed_at"`
}
