package receipt

import (
	"context"
	"io"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/apperr"
	"github.com/prudhivi99/Distributed-Systems/pos-counter/internal/models"
)

type Printer interface {
	Print(ctx context.Context, r *Receipt) error
}

// WriterPrinter renders receipts to a writer such as a line printer device.
type WriterPrinter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ Printer = &WriterPrinter{}

func NewWriterPrinter(w io.Writer) *WriterPrinter {
	return &WriterPrinter{w: w}
}

func (p *WriterPrinter) Print(_ context.Context, r *Receipt) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return r.Render(p.w)
}

// Service composes and prints receipts after a settlement.
type Service struct {
	composer *Composer
	printer  Printer
	logger   log.FieldLogger
}

func NewService(composer *Composer, printer Printer, logger log.FieldLogger) *Service {
	return &Service{composer: composer, printer: printer, logger: logger}
}

// Issue composes and prints the receipt for a settled payment. Failures are
// logged and dropped; a missing order is not worth a warning.
func (s *Service) Issue(ctx context.Context, attempt models.PaymentRequest, result *models.PaymentResult) {
	logger := s.logger.WithField("order_id", attempt.OrderID)

	r, err := s.composer.Compose(ctx, attempt.OrderID, &attempt, result)
	if err != nil {
		if apperr.IsNotFound(err) {
			logger.WithError(err).Debug("receipt skipped")
			return
		}
		logger.WithError(err).Warn("receipt composition abandoned")
		return
	}

	if err := s.printer.Print(ctx, r); err != nil {
		logger.WithError(err).Warn("receipt printing failed")
		return
	}
	logger.WithField("order_number", r.OrderNumber).Info("receipt printed")
}

// Reprint composes a receipt without payment details.
func (s *Service) Reprint(ctx context.Context, orderID int) (*Receipt, error) {
	return s.composer.Compose(ctx, orderID, nil, nil)
}
