package order

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightportal/internal/models"
	"freightportal/internal/utils"
)

type fakeBackend struct {
	orders    []models.PendingOrder
	ordersErr error
	infos     []models.FreightInfo
	infosErr  error
	askedFor  string
}

func (f *fakeBackend) PendingOrders(_ context.Context, taxID string) ([]models.PendingOrder, error) {
	f.askedFor = taxID
	return f.orders, f.ordersErr
}

func (f *fakeBackend) FreightInfo(_ context.Context, _ string) ([]models.FreightInfo, error) {
	return f.infos, f.infosErr
}

func pending(number, approval, freight, quotation string) models.PendingOrder {
	return models.PendingOrder{
		OrderNumber:     models.Text(number),
		ApprovalStatus:  models.Text(approval),
		FreightStatus:   models.Text(freight),
		QuotationStatus: models.Text(quotation),
	}
}

const awaiting = string(AwaitingFreightApproval)

func TestDeriveMode(t *testing.T) {
	tests := []struct {
		name      string
		approval  ApprovalStatus
		freight   FreightStatus
		quotation QuotationStatus
		want      Mode
	}{
		{"quotation received", "N", AwaitingFreightApproval, "8", ModeQuotation},
		{"computed carriers", "N", AwaitingFreightApproval, "1", ModeCarrierChoice},
		{"empty quotation code", "N", AwaitingFreightApproval, "", ModeCarrierChoice},
		{"already approved", "S", AwaitingFreightApproval, "8", ModeNoPending},
		{"freight settled", "N", "Frete aprovado", "8", ModeNoPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveMode(tt.approval, tt.freight, tt.quotation))
		})
	}
}

func TestModeOf(t *testing.T) {
	assert.Equal(t, ModeNoPending, ModeOf(nil))

	o := pending("1", "N", awaiting, "8")
	assert.Equal(t, ModeQuotation, ModeOf(&o))
	assert.Equal(t, "quotation", ModeOf(&o).String())
}

func TestResolvePendingOrderPicksFirstMatch(t *testing.T) {
	fb := &fakeBackend{orders: []models.PendingOrder{
		pending("10", "S", awaiting, ""),
		pending("11", "N", "Em separação", ""),
		pending("12", "N", awaiting, "8"),
		pending("13", "N", awaiting, ""),
	}}
	r := NewResolver(fb, nil)

	got, err := r.ResolvePendingOrder(context.Background(), "12345678901")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, models.Text("12"), got.OrderNumber)
	assert.Equal(t, "12345678901", fb.askedFor)
}

func TestResolvePendingOrderNone(t *testing.T) {
	r := NewResolver(&fakeBackend{orders: []models.PendingOrder{pending("10", "S", awaiting, "")}}, nil)

	got, err := r.ResolvePendingOrder(context.Background(), "1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestResolvePendingOrderError(t *testing.T) {
	r := NewResolver(&fakeBackend{ordersErr: errors.New("dial tcp: refused")}, nil)

	_, err := r.ResolvePendingOrder(context.Background(), "1")
	assert.True(t, errors.Is(err, utils.ErrTransport))
}

func TestTotals(t *testing.T) {
	r := NewResolver(&fakeBackend{infos: []models.FreightInfo{{
		InvoiceValue: "1500.00",
		GrossWeight:  "32.5",
		FreightValue: "R$ 1.085,90",
		CarrierCode:  "1520",
		CubicMeters:  "0.4",
	}}}, nil)

	totals := r.LoadTotals(context.Background(), "12")
	assert.Equal(t, Totals{
		InvoiceValue: "1500.00",
		GrossWeight:  "32.5",
		Volume:       "0.4",
		FreightValue: 1085.90,
		CarrierCode:  1520,
	}, totals)
	assert.True(t, totals.Quotable())
}

func TestTotalsOnFailureAreEmpty(t *testing.T) {
	r := NewResolver(&fakeBackend{infosErr: errors.New("timeout")}, nil)

	totals := r.LoadTotals(context.Background(), "12")
	assert.Equal(t, Totals{}, totals)
	assert.False(t, totals.Quotable())
}

func TestQuotableNeedsWeightAndValue(t *testing.T) {
	assert.False(t, Totals{GrossWeight: "0", InvoiceValue: "10"}.Quotable())
	assert.False(t, Totals{GrossWeight: "5", InvoiceValue: ""}.Quotable())
	assert.True(t, Totals{GrossWeight: "5", InvoiceValue: "10"}.Quotable())
}
