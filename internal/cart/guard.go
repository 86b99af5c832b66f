package cart

import (
	"fmt"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

// CanSubmit reports whether the submit action is reachable: at least one line,
// and a table whenever the order is dine-in.
func CanSubmit(c *Cart) bool {
	return CheckSubmittable(c) == nil
}

// CheckSubmittable returns the first unmet submission precondition. It only
// gates the submit action; the Order Service validates again.
func CheckSubmittable(c *Cart) error {
	if c.IsEmpty() {
		return apperr.ValidationError{Field: "items", Message: "cart is empty"}
	}
	if c.orderType == models.DineIn && c.table == nil {
		return apperr.ValidationError{Field: "table_id", Message: "a table is required for dine-in orders"}
	}
	return nil
}

func invalidOrderType(t models.OrderType) error {
	return apperr.ValidationError{Field: "order_type", Message: fmt.Sprintf("unknown order type %q", t)}
}
