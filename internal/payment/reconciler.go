// Package payment settles a selected payable order against the Payment
// Service.
//
// Whatever the operator typed (method, amount text, reference) survives every
// failure path untouched. Whether a payment settles the order fully or in
// part is the Payment Service's call; any accepted payment completes the flow.
package payment

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/notify"
)

var (
	ErrSubmitInFlight = errors.New("payment submission already in progress")
	ErrNoSelection    = errors.New("no order selected")
)

type State string

const (
	Idle          State = "idle"
	Selected      State = "selected"
	AmountEntered State = "amount_entered"
	Submitting    State = "submitting"
	Settled       State = "settled"
	PaymentFailed State = "payment_failed"
)

type PaymentSubmitter interface {
	SubmitPayment(ctx context.Context, req models.PaymentRequest, idempotencyKey string) (*models.PaymentResult, error)
}

type PayablePool interface {
	Find(ctx context.Context, orderID int) (models.SubmittedOrder, error)
	Invalidate(ctx context.Context)
}

type ReceiptIssuer interface {
	Issue(ctx context.Context, attempt models.PaymentRequest, result *models.PaymentResult)
}

// Selection is the operator's in-progress payment entry. Amount is kept as
// typed.
type Selection struct {
	Order     models.SubmittedOrder `json:"order"`
	Method    models.PaymentMethod  `json:"method"`
	Amount    string                `json:"amount"`
	Reference string                `json:"reference_number"`
}

type Reconciler struct {
	mu             sync.Mutex
	state          State
	sel            *Selection
	draftKey       string
	lastSettlement *models.PaymentResult
	lastError      error

	payments PaymentSubmitter
	pool     PayablePool
	receipts ReceiptIssuer
	notifier notify.Notifier
	logger   log.FieldLogger

	receiptsWG sync.WaitGroup
}

func NewReconciler(payments PaymentSubmitter, pool PayablePool, receipts ReceiptIssuer, notifier notify.Notifier, logger log.FieldLogger) *Reconciler {
	return &Reconciler{
		state:    Idle,
		payments: payments,
		pool:     pool,
		receipts: receipts,
		notifier: notifier,
		logger:   logger,
	}
}

// Select picks an order from the payable pool and pre-fills the amount with
// its server total.
func (r *Reconciler) Select(ctx context.Context, orderID int) (Selection, error) {
	r.mu.Lock()
	inFlight := r.state == Submitting
	r.mu.Unlock()
	if inFlight {
		return Selection{}, ErrSubmitInFlight
	}

	order, err := r.pool.Find(ctx, orderID)
	if err != nil {
		return Selection{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Submitting {
		return Selection{}, ErrSubmitInFlight
	}
	r.sel = &Selection{
		Order:  order,
		Method: models.Cash,
		Amount: order.Total.StringFixed(2),
	}
	r.state = Selected
	r.draftKey = ""
	r.lastError = nil
	return *r.sel, nil
}

// Deselect drops the entry without submitting.
func (r *Reconciler) Deselect() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Submitting {
		return ErrSubmitInFlight
	}
	r.sel = nil
	r.state = Idle
	r.draftKey = ""
	r.lastError = nil
	return nil
}

func (r *Reconciler) edit(fn func(*Selection) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.state == Submitting {
		return ErrSubmitInFlight
	}
	if r.sel == nil {
		return ErrNoSelection
	}
	if err := fn(r.sel); err != nil {
		return err
	}
	r.state = AmountEntered
	r.draftKey = ""
	r.lastError = nil
	return nil
}

func (r *Reconciler) SetMethod(m models.PaymentMethod) error {
	return r.edit(func(s *Selection) error {
		if !m.Valid() {
			return apperr.ValidationError{Field: "method", Message: "unknown payment method " + string(m)}
		}
		s.Method = m
		return nil
	})
}

func (r *Reconciler) SetAmount(raw string) error {
	return r.edit(func(s *Selection) error {
		s.Amount = raw
		return nil
	})
}

func (r *Reconciler) SetReference(ref string) error {
	return r.edit(func(s *Selection) error {
		s.Reference = ref
		return nil
	})
}

// Check returns the first reason the entry cannot be submitted.
func (s Selection) Check() error {
	if !s.Method.Valid() {
		return apperr.ValidationError{Field: "method", Message: "choose a payment method"}
	}
	if _, err := parseAmount(s.Amount); err != nil {
		return err
	}
	if s.Method.RequiresReference() && strings.TrimSpace(s.Reference) == "" {
		return apperr.ValidationError{Field: "reference_number", Message: "a reference number is required for " + string(s.Method) + " payments"}
	}
	return nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero, apperr.ValidationError{Field: "amount", Message: "enter a valid amount"}
	}
	if !d.IsPositive() {
		return decimal.Zero, apperr.ValidationError{Field: "amount", Message: "amount must be greater than zero"}
	}
	return d, nil
}

func (r *Reconciler) CanSubmit() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state != Submitting && r.sel != nil && r.sel.Check() == nil
}

// Submit sends the entry to the Payment Service. Success clears the entry,
// invalidates the pool and issues a receipt in the background. Failure keeps
// the entry as typed.
func (r *Reconciler) Submit(ctx context.Context) (*models.PaymentResult, error) {
	r.mu.Lock()
	if r.state == Submitting {
		r.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if r.sel == nil {
		r.mu.Unlock()
		return nil, ErrNoSelection
	}
	if err := r.sel.Check(); err != nil {
		r.mu.Unlock()
		return nil, err
	}
	amount, _ := parseAmount(r.sel.Amount)
	req := models.PaymentRequest{
		OrderID: r.sel.Order.ID,
		Method:  r.sel.Method,
		Amount:  amount,
	}
	if r.sel.Method.RequiresReference() {
		req.ReferenceNumber = strings.TrimSpace(r.sel.Reference)
	}
	if r.draftKey == "" {
		r.draftKey = uuid.NewString()
	}
	key := r.draftKey
	orderNumber := r.sel.Order.OrderNumber
	r.state = Submitting
	r.mu.Unlock()

	logger := r.logger.WithFields(log.Fields{
		"order_id":     req.OrderID,
		"order_number": orderNumber,
		"method":       req.Method,
	})
	logger.Info("submitting payment")

	result, err := r.payments.SubmitPayment(ctx, req, key)

	r.mu.Lock()
	if err != nil {
		r.state = PaymentFailed
		r.lastError = err
		r.mu.Unlock()

		logger.WithError(err).Warn("payment failed")
		r.notifier.Push(notify.Error, failureMessage(err))
		return nil, err
	}

	r.sel = nil
	r.state = Settled
	r.draftKey = ""
	r.lastError = nil
	r.lastSettlement = result
	r.mu.Unlock()

	r.pool.Invalidate(ctx)
	logger.WithFields(log.Fields{"payment_id": result.ID, "status": result.Status}).Info("payment settled")
	r.notifier.Push(notify.Success, "Payment recorded for order "+orderNumber)

	r.receiptsWG.Add(1)
	go func() {
		defer r.receiptsWG.Done()
		r.receipts.Issue(context.WithoutCancel(ctx), req, result)
	}()
	return result, nil
}

// WaitReceipts blocks until background receipt printing has finished.
func (r *Reconciler) WaitReceipts() {
	r.receiptsWG.Wait()
}

func failureMessage(err error) string {
	if v, ok := apperr.AsValidation(err); ok {
		return "Payment not accepted: " + v.Message
	}
	if apperr.IsNotFound(err) {
		return "That order is no longer open for payment."
	}
	if errors.Is(err, apperr.ErrUnauthorized) {
		return "Your session has ended. Sign in and submit the payment again."
	}
	return "Could not record the payment. Try again."
}

// View is what the payment panel renders.
type View struct {
	State             State                 `json:"state"`
	Selection         *Selection            `json:"selection,omitempty"`
	ReferenceRequired bool                  `json:"reference_required"`
	CanSubmit         bool                  `json:"can_submit"`
	Blocker           string                `json:"blocker,omitempty"`
	LastSettlement    *models.PaymentResult `json:"last_settlement,omitempty"`
	LastError         string                `json:"last_error,omitempty"`
}

func (r *Reconciler) View() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	v := View{State: r.state, LastSettlement: r.lastSettlement}
	if r.lastError != nil {
		v.LastError = r.lastError.Error()
	}
	if r.sel == nil {
		return v
	}
	sel := *r.sel
	v.Selection = &sel
	v.ReferenceRequired = sel.Method.RequiresReference()
	if err := sel.Check(); err != nil {
		v.Blocker = err.Error()
	} else {
		v.CanSubmit = r.state != Submitting
	}
	return v
}
