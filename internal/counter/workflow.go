// Package counter ties the order panel and the payment panel together behind
// one mode toggle. Switching modes never touches either panel's state.
package counter

import (
	"context"
	"sync"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/lifecycle"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/payment"
)

type Mode string

const (
	OrderMode   Mode = "order"
	PaymentMode Mode = "payment"
)

func (m Mode) Valid() bool {
	return m == OrderMode || m == PaymentMode
}

type Catalog interface {
	Item(ctx context.Context, id int) (models.MenuItem, error)
	Table(ctx context.Context, id int) (models.TableRef, error)
}

type Workflow struct {
	mu   sync.RWMutex
	mode Mode

	orders   *lifecycle.Controller
	payments *payment.Reconciler
	catalog  Catalog
}

func NewWorkflow(orders *lifecycle.Controller, payments *payment.Reconciler, catalog Catalog) *Workflow {
	return &Workflow{mode: OrderMode, orders: orders, payments: payments, catalog: catalog}
}

func (w *Workflow) Orders() *lifecycle.Controller { return w.orders }

func (w *Workflow) Payments() *payment.Reconciler { return w.payments }

func (w *Workflow) Mode() Mode {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.mode
}

func (w *Workflow) SetMode(m Mode) error {
	if !m.Valid() {
		return apperr.ValidationError{Field: "mode", Message: "mode must be order or payment"}
	}
	w.mu.Lock()
	w.mode = m
	w.mu.Unlock()
	return nil
}

// AddItem adds one unit of a menu item, priced from the catalog.
func (w *Workflow) AddItem(ctx context.Context, menuItemID int) error {
	item, err := w.catalog.Item(ctx, menuItemID)
	if err != nil {
		return err
	}
	return w.orders.AddItem(item.Ref())
}

func (w *Workflow) SelectTable(ctx context.Context, tableID int) error {
	table, err := w.catalog.Table(ctx, tableID)
	if err != nil {
		return err
	}
	return w.orders.SelectTable(table)
}

// View is the combined state of both panels.
type View struct {
	Mode    Mode           `json:"mode"`
	Order   lifecycle.View `json:"order"`
	Payment payment.View   `json:"payment"`
}

func (w *Workflow) View() View {
	return View{
		Mode:    w.Mode(),
		Order:   w.orders.View(),
		Payment: w.payments.View(),
	}
}
