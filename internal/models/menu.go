package models

import "github.com/shopspring/decimal"

// MenuItem is a catalog entry as served by the Menu Service.
type MenuItem struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	Category  string          `json:"category,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Available bool            `json:"available"`
}

// Ref returns the part of the catalog entry the cart keeps.
func (m MenuItem) Ref() MenuItemRef {
	return MenuItemRef{ID: m.ID, Name: m.Name, UnitPrice: m.Price}
}

// MenuItemRef carries the client-known price used for the advisory cart total.
type MenuItemRef struct {
	ID        int             `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type TableRef struct {
	ID     int    `json:"id"`
	Number int    `json:"number"`
	Label  string `json:"label,omitempty"`
}
