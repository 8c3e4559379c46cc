package carrier

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"freightportal/internal/backend"
	"freightportal/internal/inflight"
	"freightportal/internal/models"
	"freightportal/internal/order"
	"freightportal/internal/utils"
)

// Backend is the part of the remote API the flow needs.
type Backend interface {
	order.Backend
	ComputedQuotes(ctx context.Context, taxID, weight, orderValue, volume string) ([]models.CarrierQuote, error)
	Quotations(ctx context.Context, orderNumber string) ([]models.CarrierQuote, error)
	ApproveOrder(ctx context.Context, req models.ApprovalRequest) error
	SendFreightMessage(ctx context.Context, req models.FreightMessageRequest) error
	RequestMoreQuotes(ctx context.Context, orderNumber string) error
}

// Detail is everything the detail page shows for one request.
type Detail struct {
	Order      *models.PendingOrder
	Mode       order.Mode
	Totals     order.Totals
	Candidates []Candidate
	Selection  Selection
}

// OrderNumber is empty when nothing is pending.
func (d *Detail) OrderNumber() string {
	if d.Order == nil {
		return ""
	}
	return d.Order.OrderNumber.Trim()
}

// CanSubmit reports whether the current selection may be approved.
func (d *Detail) CanSubmit() bool {
	return d.Mode != order.ModeNoPending && d.Selection.Validate(d.Mode) == nil
}

// Quotation reports whether the order is answering a quotation round.
func (d *Detail) Quotation() bool { return d.Mode == order.ModeQuotation }

// Checked reports whether c is the current selection.
func (d *Detail) Checked(c Candidate) bool {
	return d.Selection.Selected && d.Selection.Code == c.PartnerCode
}

type Flow struct {
	backend  Backend
	resolver *order.Resolver
	guard    *inflight.Guard
	logger   *zap.Logger
}

func NewFlow(b Backend, guard *inflight.Guard, logger *zap.Logger) *Flow {
	if logger == nil {
		logger = zap.NewNop()
	}
	if guard == nil {
		guard = inflight.New()
	}
	return &Flow{
		backend:  b,
		resolver: order.NewResolver(b, logger),
		guard:    guard,
		logger:   logger,
	}
}

// ListComputedCarriers prices the shipment with every carrier. A failed or
// empty answer is an empty list.
func (f *Flow) ListComputedCarriers(ctx context.Context, taxID, weight, orderValue, volume string) []Candidate {
	quotes, err := f.backend.ComputedQuotes(ctx, taxID, weight, orderValue, volume)
	if err != nil {
		f.logger.Warn("computed quotes unavailable", zap.String("tax_id", taxID), zap.Error(err))
		return []Candidate{}
	}
	out := make([]Candidate, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, fromComputed(q))
	}
	return out
}

// ListQuotedCarriers lists the quotation answers of an order. A failed or
// empty answer is an empty list.
func (f *Flow) ListQuotedCarriers(ctx context.Context, orderNumber string) []Candidate {
	quotes, err := f.backend.Quotations(ctx, orderNumber)
	if err != nil {
		f.logger.Warn("quotations unavailable", zap.String("order", orderNumber), zap.Error(err))
		return []Candidate{}
	}
	out := make([]Candidate, 0, len(quotes))
	for _, q := range quotes {
		out = append(out, fromQuotation(q))
	}
	return out
}

// Load resolves the pending order, then its totals, then the carrier list.
// Carriers are only requested when the totals are quotable.
func (f *Flow) Load(ctx context.Context, taxID string) (*Detail, error) {
	o, err := f.resolver.ResolvePendingOrder(ctx, taxID)
	if err != nil {
		return nil, err
	}
	d := &Detail{Order: o, Mode: order.ModeOf(o)}
	if o == nil {
		return d, nil
	}

	number := d.OrderNumber()
	d.Totals = f.resolver.LoadTotals(ctx, number)
	var fetched []Candidate
	if d.Totals.Quotable() {
		switch d.Mode {
		case order.ModeQuotation:
			fetched = f.ListQuotedCarriers(ctx, number)
		case order.ModeCarrierChoice:
			fetched = f.ListComputedCarriers(ctx, taxID, d.Totals.GrossWeight, d.Totals.InvoiceValue, d.Totals.Volume)
		}
	}
	d.Candidates = Candidates(d.Mode, fetched)
	d.Selection = NewSelection(d.Totals)

	f.logger.Debug("detail loaded",
		zap.String("order", number),
		zap.Stringer("mode", d.Mode),
		zap.Int("candidates", len(d.Candidates)))
	return d, nil
}

func parseOrderNumber(s string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return 0, utils.Validationf("Pedido inválido: %q", s)
	}
	return n, nil
}

// failure wraps a remote error with the message the backend gave, if any.
func failure(fallback string, err error) error {
	msg := backend.ErrorMessage(err)
	if msg == "" {
		msg = fallback
	}
	return utils.Wrap(utils.KindTransport, msg, err)
}

// ConfirmApproval submits the chosen carrier for the order. A second call
// for the same order while one is running returns inflight.ErrInProgress.
func (f *Flow) ConfirmApproval(ctx context.Context, mode order.Mode, orderNumber string, sel Selection) error {
	if err := sel.Validate(mode); err != nil {
		return err
	}
	number, err := parseOrderNumber(orderNumber)
	if err != nil {
		return err
	}
	req := models.ApprovalRequest{
		OrderNumber:     number,
		SelectedCarrier: sel.Code,
		FreightValue:    sel.FreightValue,
		Message:         sel.outgoingMessage(),
	}
	return f.guard.Do("approve:"+orderNumber, func() error {
		if err := f.backend.ApproveOrder(ctx, req); err != nil {
			f.logger.Error("approval failed", zap.String("order", orderNumber), zap.Int64("carrier", sel.Code), zap.Error(err))
			return failure("Não foi possível aprovar o frete.", fmt.Errorf("approve order %s: %w", orderNumber, err))
		}
		f.logger.Info("freight approved", zap.String("order", orderNumber), zap.Int64("carrier", sel.Code))
		return nil
	})
}

// RequestNewQuotation sends the order back for another quotation round.
func (f *Flow) RequestNewQuotation(ctx context.Context, orderNumber string) error {
	if _, err := parseOrderNumber(orderNumber); err != nil {
		return err
	}
	return f.guard.Do("requote:"+orderNumber, func() error {
		if err := f.backend.RequestMoreQuotes(ctx, orderNumber); err != nil {
			f.logger.Error("new quotation request failed", zap.String("order", orderNumber), zap.Error(err))
			return failure("Não foi possível solicitar nova cotação.", fmt.Errorf("request quotes %s: %w", orderNumber, err))
		}
		f.logger.Info("new quotation requested", zap.String("order", orderNumber))
		return nil
	})
}

// SendFreightMessage posts a free text message about the order's freight.
// The caller drops its draft whatever the outcome.
func (f *Flow) SendFreightMessage(ctx context.Context, orderNumber, message string) error {
	message = strings.TrimSpace(message)
	if message == "" {
		return ErrMessageRequired
	}
	if _, err := parseOrderNumber(orderNumber); err != nil {
		return err
	}
	req := models.FreightMessageRequest{OrderNumber: orderNumber, Message: message}
	return f.guard.Do("message:"+orderNumber, func() error {
		if err := f.backend.SendFreightMessage(ctx, req); err != nil {
			f.logger.Error("freight message failed", zap.String("order", orderNumber), zap.Error(err))
			return failure("Não foi possível enviar a mensagem.", fmt.Errorf("send message %s: %w", orderNumber, err))
		}
		f.logger.Info("freight message sent", zap.String("order", orderNumber))
		return nil
	})
}
