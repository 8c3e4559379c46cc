// Package order resolves the customer's pending order and the view mode it
// puts the detail page in.
package order

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"freightportal/internal/models"
	"freightportal/internal/utils"
)

// Backend is the part of the remote API the resolver needs.
type Backend interface {
	PendingOrders(ctx context.Context, taxID string) ([]models.PendingOrder, error)
	FreightInfo(ctx context.Context, orderNumber string) ([]models.FreightInfo, error)
}

type Resolver struct {
	backend Backend
	logger  *zap.Logger
}

func NewResolver(backend Backend, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{backend: backend, logger: logger}
}

// ResolvePendingOrder returns the first order still waiting for the
// customer's freight approval, or nil when there is none. The result is a
// snapshot: nothing is cached between calls.
func (r *Resolver) ResolvePendingOrder(ctx context.Context, taxID string) (*models.PendingOrder, error) {
	orders, err := r.backend.PendingOrders(ctx, taxID)
	if err != nil {
		return nil, utils.Wrap(utils.KindTransport, "Erro ao buscar pedidos.", fmt.Errorf("pending orders: %w", err))
	}
	for i := range orders {
		if awaitingApproval(orders[i]) {
			o := orders[i]
			return &o, nil
		}
	}
	return nil, nil
}

// Totals are the freight figures of an order, taken from the first
// InfosFrete row.
type Totals struct {
	InvoiceValue string
	GrossWeight  string
	Volume       string
	// FreightValue and CarrierCode seed the selection.
	FreightValue float64
	CarrierCode  int64
}

// TotalsOf reads the first row; an empty slice yields zero totals.
func TotalsOf(infos []models.FreightInfo) Totals {
	if len(infos) == 0 {
		return Totals{}
	}
	first := infos[0]
	t := Totals{
		InvoiceValue: first.InvoiceValue.Trim(),
		GrossWeight:  first.GrossWeight.Trim(),
		Volume:       first.CubicMeters.Trim(),
	}
	if v, err := first.FreightValue.Float(); err == nil {
		t.FreightValue = v
	}
	if code, err := strconv.ParseInt(first.CarrierCode.Trim(), 10, 64); err == nil {
		t.CarrierCode = code
	}
	return t
}

// Quotable reports whether weight and value are both positive, the
// precondition for asking the backend for carriers.
func (t Totals) Quotable() bool {
	w, err := models.ParseBRL(t.GrossWeight)
	if err != nil || w <= 0 {
		return false
	}
	v, err := models.ParseBRL(t.InvoiceValue)
	return err == nil && v > 0
}

// LoadTotals fetches the freight totals of an order. A failed fetch is
// logged and yields zero totals, which keeps the carrier lists unrequested.
func (r *Resolver) LoadTotals(ctx context.Context, orderNumber string) Totals {
	infos, err := r.backend.FreightInfo(ctx, orderNumber)
	if err != nil {
		r.logger.Warn("freight info unavailable", zap.String("order", orderNumber), zap.Error(err))
		return Totals{}
	}
	return TotalsOf(infos)
}
