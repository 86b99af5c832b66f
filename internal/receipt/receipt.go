// Package receipt derives a printable receipt from the canonical order held
// by the Order Service. Printing is best effort: nothing here can undo or
// hold up a payment.
package receipt

import (
	"context"
	"io"
	"strings"
	"text/template"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

type OrderFetcher interface {
	GetOrder(ctx context.Context, orderID int) (*models.SubmittedOrder, error)
}

type Header struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
}

type Line struct {
	Name      string          `json:"name"`
	Quantity  int             `json:"quantity"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Payment is the tender printed under the total. Change is only set for cash.
type Payment struct {
	Method    models.PaymentMethod `json:"method"`
	Tendered  decimal.Decimal      `json:"tendered"`
	Reference string               `json:"reference,omitempty"`
	Change    decimal.Decimal      `json:"change"`
	Status    string               `json:"status,omitempty"`
}

type Receipt struct {
	Header      Header           `json:"header"`
	OrderID     int              `json:"order_id"`
	OrderNumber string           `json:"order_number"`
	OrderType   models.OrderType `json:"order_type"`
	Table       *models.TableRef `json:"table,omitempty"`
	Lines       []Line           `json:"lines"`
	Total       decimal.Decimal  `json:"total"`
	Payment     *Payment         `json:"payment,omitempty"`
	PrintedAt   time.Time        `json:"printed_at"`
}

type Composer struct {
	orders OrderFetcher
	header Header
	now    func() time.Time
}

func NewComposer(orders OrderFetcher, header Header) *Composer {
	return &Composer{orders: orders, header: header, now: time.Now}
}

// Compose always fetches the order; a copy held by the caller may predate
// server-side pricing. attempt and result may be nil for a reprint.
func (c *Composer) Compose(ctx context.Context, orderID int, attempt *models.PaymentRequest, result *models.PaymentResult) (*Receipt, error) {
	order, err := c.orders.GetOrder(ctx, orderID)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch order %d for receipt", orderID)
	}

	r := &Receipt{
		Header:      c.header,
		OrderID:     order.ID,
		OrderNumber: order.OrderNumber,
		OrderType:   order.OrderType,
		Table:       order.Table,
		Lines:       make([]Line, 0, len(order.Items)),
		Total:       order.Total,
		PrintedAt:   c.now(),
	}
	for _, it := range order.Items {
		r.Lines = append(r.Lines, Line{Name: it.Name, Quantity: it.Quantity, LineTotal: it.Subtotal()})
	}

	if attempt != nil {
		p := &Payment{
			Method:    attempt.Method,
			Tendered:  attempt.Amount,
			Reference: attempt.ReferenceNumber,
		}
		if attempt.Method == models.Cash && attempt.Amount.GreaterThan(order.Total) {
			p.Change = attempt.Amount.Sub(order.Total)
		}
		if result != nil {
			p.Status = result.Status
		}
		r.Payment = p
	}
	return r, nil
}

var receiptTmpl = template.Must(template.New("receipt").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return d.StringFixed(2) },
	"label": func(t models.OrderType) string { return strings.ReplaceAll(string(t), "_", "-") },
}).Parse(`{{with .Header}}{{.StoreName}}
{{if .Address}}{{.Address}}
{{end}}{{end}}--------------------------------
Order {{.OrderNumber}} ({{label .OrderType}})
{{with .Table}}Table {{.Number}}
{{end}}{{.PrintedAt.Format "2006-01-02 15:04"}}
--------------------------------
{{range .Lines}}{{printf "%3d x %-18s %8s" .Quantity .Name (money .LineTotal)}}
{{end}}--------------------------------
{{printf "%-24s %8s" "TOTAL" (money .Total)}}
{{with .Payment}}{{printf "%-24s %8s" .Method (money .Tendered)}}
{{if .Reference}}Ref: {{.Reference}}
{{end}}{{if .Change.IsPositive}}{{printf "%-24s %8s" "CHANGE" (money .Change)}}
{{end}}{{end}}`))

// Render writes the plain-text receipt.
func (r *Receipt) Render(w io.Writer) error {
	return errors.Wrap(receiptTmpl.Execute(w, r), "render receipt")
}

func (r *Receipt) Text() (string, error) {
	var b strings.Builder
	if err := r.Render(&b); err != nil {
		return "", err
	}
	return b.String(), nil
}
