// Package lifecycle moves the counter's cart to a submitted order.
//
// The controller owns the cart. Its mutex is held only while changing state,
// never across the call to the Order Service; the submitting state itself is
// what keeps a second submit (or an edit) out while a request is in flight.
package lifecycle

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/cart"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/notify"
)

var ErrSubmitInFlight = errors.New("order submission already in progress")

type State string

const (
	Editing      State = "editing"
	Submitting   State = "submitting"
	SubmitFailed State = "submit_failed"
)

type OrderCreator interface {
	CreateOrder(ctx context.Context, req models.CreateOrderRequest, idempotencyKey string) (*models.SubmittedOrder, error)
}

type PoolInvalidator interface {
	Invalidate(ctx context.Context)
}

type Controller struct {
	mu            sync.Mutex
	cart          *cart.Cart
	state         State
	draftKey      string
	lastSubmitted *models.SubmittedOrder
	lastError     error

	orders   OrderCreator
	pool     PoolInvalidator
	notifier notify.Notifier
	logger   log.FieldLogger
}

func NewController(orders OrderCreator, pool PoolInvalidator, notifier notify.Notifier, logger log.FieldLogger) *Controller {
	return &Controller{
		cart:     cart.New(),
		state:    Editing,
		orders:   orders,
		pool:     pool,
		notifier: notifier,
		logger:   logger,
	}
}

// mutate applies an edit. Any successful edit starts a new draft and leaves
// the failed state.
func (c *Controller) mutate(fn func(*cart.Cart) error) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == Submitting {
		return ErrSubmitInFlight
	}
	if err := fn(c.cart); err != nil {
		return err
	}
	c.state = Editing
	c.lastError = nil
	c.draftKey = ""
	return nil
}

func (c *Controller) AddItem(item models.MenuItemRef) error {
	return c.mutate(func(ct *cart.Cart) error {
		ct.AddLine(item)
		return nil
	})
}

func (c *Controller) RemoveItem(itemID int) error {
	return c.mutate(func(ct *cart.Cart) error {
		ct.RemoveLine(itemID)
		return nil
	})
}

func (c *Controller) SetOrderType(t models.OrderType) error {
	return c.mutate(func(ct *cart.Cart) error {
		return ct.SetOrderType(t)
	})
}

func (c *Controller) SelectTable(t models.TableRef) error {
	return c.mutate(func(ct *cart.Cart) error {
		if ct.OrderType() != models.DineIn {
			return apperr.ValidationError{Field: "table_id", Message: "tables apply to dine-in orders only"}
		}
		ct.SelectTable(t)
		return nil
	})
}

func (c *Controller) ClearTable() error {
	return c.mutate(func(ct *cart.Cart) error {
		ct.ClearTable()
		return nil
	})
}

func (c *Controller) SetNotes(notes string) error {
	return c.mutate(func(ct *cart.Cart) error {
		ct.SetNotes(notes)
		return nil
	})
}

// Discard throws the draft away.
func (c *Controller) Discard() error {
	return c.mutate(func(ct *cart.Cart) error {
		ct.Clear()
		return nil
	})
}

func (c *Controller) CanSubmit() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != Submitting && cart.CanSubmit(c.cart)
}

// Submit sends the cart to the Order Service. On success the cart is cleared
// and the payable pool invalidated; on failure the cart is left exactly as it
// was and the operator is notified.
func (c *Controller) Submit(ctx context.Context) (*models.SubmittedOrder, error) {
	c.mu.Lock()
	if c.state == Submitting {
		c.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if err := cart.CheckSubmittable(c.cart); err != nil {
		c.mu.Unlock()
		return nil, err
	}
	if c.draftKey == "" {
		c.draftKey = uuid.NewString()
	}
	req := c.cart.CreateOrderRequest()
	key := c.draftKey
	c.state = Submitting
	c.mu.Unlock()

	logger := c.logger.WithFields(log.Fields{
		"order_type": req.OrderType,
		"lines":      len(req.Items),
	})
	logger.Info("submitting order")

	order, err := c.orders.CreateOrder(ctx, req, key)

	c.mu.Lock()
	if err != nil {
		c.state = SubmitFailed
		c.lastError = err
		c.mu.Unlock()

		logger.WithError(err).Warn("order submission failed")
		c.notifier.Push(notify.Error, failureMessage(err))
		return nil, err
	}

	c.cart.Clear()
	c.state = Editing
	c.draftKey = ""
	c.lastError = nil
	c.lastSubmitted = order
	c.mu.Unlock()

	c.pool.Invalidate(ctx)
	logger.WithFields(log.Fields{"order_id": order.ID, "order_number": order.OrderNumber}).Info("order submitted")
	c.notifier.Push(notify.Success, fmt.Sprintf("Order %s submitted", orderLabel(order)))
	return order, nil
}

func failureMessage(err error) string {
	if v, ok := apperr.AsValidation(err); ok {
		return "Order not accepted: " + v.Message
	}
	if errors.Is(err, apperr.ErrUnauthorized) {
		return "Your session has ended. Sign in and submit the order again."
	}
	return "Could not submit the order. Try again."
}

func orderLabel(o *models.SubmittedOrder) string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return fmt.Sprintf("#%d", o.ID)
}

// View is what the order panel renders.
type View struct {
	State         State                  `json:"state"`
	Cart          cart.Snapshot          `json:"cart"`
	CanSubmit     bool                   `json:"can_submit"`
	LastSubmitted *models.SubmittedOrder `json:"last_submitted,omitempty"`
	LastError     string                 `json:"last_error,omitempty"`
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	v := View{
		State:         c.state,
		Cart:          c.cart.Snapshot(),
		LastSubmitted: c.lastSubmitted,
	}
	v.CanSubmit = c.state != Submitting && v.Cart.CanSubmit
	if c.lastError != nil {
		v.LastError = c.lastError.Error()
	}
	return v
}
