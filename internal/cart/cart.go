// Package cart holds the counter's in-progress order: an insertion-ordered
// set of menu item lines with an advisory total, plus the order type, table
// and notes that travel with it to the Order Service.
package cart

import (
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

// DefaultOrderType is the order type of a freshly created or cleared cart.
const DefaultOrderType = models.DineIn

type Line struct {
	Item     models.MenuItemRef `json:"item"`
	Quantity int                `json:"quantity"`
}

// Total is the client-priced line total.
func (l Line) Total() decimal.Decimal {
	return l.Item.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is not safe for concurrent use; its owner serializes access.
type Cart struct {
	lines     []Line
	index     map[int]int
	orderType models.OrderType
	table     *models.TableRef
	notes     string
}

func New() *Cart {
	return &Cart{
		index:     make(map[int]int),
		orderType: DefaultOrderType,
	}
}

// AddLine increments the item's line or appends a new line with quantity 1.
func (c *Cart) AddLine(item models.MenuItemRef) {
	if i, ok := c.index[item.ID]; ok {
		c.lines[i].Quantity++
		return
	}
	c.index[item.ID] = len(c.lines)
	c.lines = append(c.lines, Line{Item: item, Quantity: 1})
}

// RemoveLine decrements the item's line and drops it once it would reach zero.
// Unknown items are ignored.
func (c *Cart) RemoveLine(itemID int) {
	i, ok := c.index[itemID]
	if !ok {
		return
	}
	if c.lines[i].Quantity > 1 {
		c.lines[i].Quantity--
		return
	}

	c.lines = append(c.lines[:i], c.lines[i+1:]...)
	delete(c.index, itemID)
	for j := i; j < len(c.lines); j++ {
		c.index[c.lines[j].Item.ID] = j
	}
}

// Total accumulates unrounded; callers round at display time.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Total())
	}
	return total
}

func (c *Cart) Clear() {
	c.lines = nil
	c.index = make(map[int]int)
	c.orderType = DefaultOrderType
	c.table = nil
	c.notes = ""
}

func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) IsEmpty() bool { return len(c.lines) == 0 }

func (c *Cart) Quantity(itemID int) int {
	if i, ok := c.index[itemID]; ok {
		return c.lines[i].Quantity
	}
	return 0
}

func (c *Cart) OrderType() models.OrderType { return c.orderType }

// SetOrderType switches the order type. Leaving dine-in drops the table so a
// stale selection cannot ride along into a takeout or delivery order.
func (c *Cart) SetOrderType(t models.OrderType) error {
	if !t.Valid() {
		return invalidOrderType(t)
	}
	if t != models.DineIn {
		c.table = nil
	}
	c.orderType = t
	return nil
}

func (c *Cart) Table() *models.TableRef {
	if c.table == nil {
		return nil
	}
	t := *c.table
	return &t
}

func (c *Cart) SelectTable(t models.TableRef) {
	c.table = &t
}

func (c *Cart) ClearTable() {
	c.table = nil
}

func (c *Cart) Notes() string { return c.notes }

func (c *Cart) SetNotes(notes string) {
	c.notes = notes
}

// Snapshot is a read-only view of the cart for display and serialization.
type Snapshot struct {
	Lines     []Line           `json:"lines"`
	OrderType models.OrderType `json:"order_type"`
	Table     *models.TableRef `json:"table,omitempty"`
	Notes     string           `json:"notes,omitempty"`
	Total     string           `json:"total"`
	CanSubmit bool             `json:"can_submit"`
	Blocker   string           `json:"blocker,omitempty"`
}

func (c *Cart) Snapshot() Snapshot {
	s := Snapshot{
		Lines:     c.Lines(),
		OrderType: c.orderType,
		Table:     c.Table(),
		Notes:     c.notes,
		Total:     c.Total().StringFixed(2),
	}
	if err := CheckSubmittable(c); err != nil {
		s.Blocker = err.Error()
	} else {
		s.CanSubmit = true
	}
	return s
}

// CreateOrderRequest serializes the cart for the Order Service. The table is
// only sent for dine-in orders.
func (c *Cart) CreateOrderRequest() models.CreateOrderRequest {
	req := models.CreateOrderRequest{
		OrderType: c.orderType,
		Notes:     c.notes,
		Items:     make([]models.CreateOrderItemRequest, 0, len(c.lines)),
	}
	for _, l := range c.lines {
		req.Items = append(req.Items, models.CreateOrderItemRequest{
			MenuItemID: l.Item.ID,
			Quantity:   l.Quantity,
		})
	}
	if c.orderType == models.DineIn && c.table != nil {
		id := c.table.ID
		req.TableID = &id
	}
	return req
}
