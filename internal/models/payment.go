package models

import "github.com/shopspring/decimal"

type PaymentMethod string

const (
	Cash   PaymentMethod = "cash"
	Card   PaymentMethod = "card"
	Others PaymentMethod = "others"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case Cash, Card, Others:
		return true
	}
	return false
}

// RequiresReference reports whether a reference number must accompany the payment.
func (m PaymentMethod) RequiresReference() bool {
	return m != Cash
}

type PaymentRequest struct {
	OrderID         int             `json:"order_id"`
	Method          PaymentMethod   `json:"method"`
	Amount          decimal.Decimal `json:"amount"`
	ReferenceNumber string          `json:"reference_number,omitempty"`
}

type PaymentResult struct {
	ID            int             `json:"id"`
	OrderID       int             `json:"order_id"`
	Status        string          `json:"status"`
	SettledAmount decimal.Decimal `json:"settled_amount"`
	OrderStatus   OrderStatus     `json:"order_status,omitempty"`
}
