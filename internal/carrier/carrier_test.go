package carrier

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"freightportal/internal/backend"
	"freightportal/internal/inflight"
	"freightportal/internal/models"
	"freightportal/internal/order"
	"freightportal/internal/utils"
)

type fakeBackend struct {
	orders     []models.PendingOrder
	infos      []models.FreightInfo
	computed   []models.CarrierQuote
	computeErr error
	quotes     []models.CarrierQuote
	quoteErr   error
	mutateErr  error

	computeCalls int
	quoteCalls   int
	approved     []models.ApprovalRequest
	messages     []models.FreightMessageRequest
	requoted     []string

	// block, when set, holds ApproveOrder until closed.
	block   chan struct{}
	entered chan struct{}
}

func (f *fakeBackend) PendingOrders(context.Context, string) ([]models.PendingOrder, error) {
	return f.orders, nil
}

func (f *fakeBackend) FreightInfo(context.Context, string) ([]models.FreightInfo, error) {
	return f.infos, nil
}

func (f *fakeBackend) ComputedQuotes(_ context.Context, _, _, _, _ string) ([]models.CarrierQuote, error) {
	f.computeCalls++
	return f.computed, f.computeErr
}

func (f *fakeBackend) Quotations(context.Context, string) ([]models.CarrierQuote, error) {
	f.quoteCalls++
	return f.quotes, f.quoteErr
}

func (f *fakeBackend) ApproveOrder(_ context.Context, req models.ApprovalRequest) error {
	if f.block != nil {
		close(f.entered)
		<-f.block
	}
	f.approved = append(f.approved, req)
	return f.mutateErr
}

func (f *fakeBackend) SendFreightMessage(_ context.Context, req models.FreightMessageRequest) error {
	f.messages = append(f.messages, req)
	return f.mutateErr
}

func (f *fakeBackend) RequestMoreQuotes(_ context.Context, orderNumber string) error {
	f.requoted = append(f.requoted, orderNumber)
	return f.mutateErr
}

func pendingOrder(quotation string) models.PendingOrder {
	return models.PendingOrder{
		OrderNumber:     "4512",
		ApprovalStatus:  "N",
		FreightStatus:   models.Text(order.AwaitingFreightApproval),
		QuotationStatus: models.Text(quotation),
	}
}

var quotableInfo = []models.FreightInfo{{
	InvoiceValue: "2300.50",
	GrossWeight:  "40",
	FreightValue: "R$ 210,00",
	CarrierCode:  "77",
	CubicMeters:  "1.2",
}}

var sampleQuotes = []models.CarrierQuote{
	{Name: "Rapido Sul ", PartnerCode: 77, FreightValue: 210, LeadTime: "3"},
	{Name: "Trans Norte", PartnerCode: 91, FreightValue: 185.4, LeadTime: "5",
		Note: "coleta sexta", Redispatch: "Não", DestinationCity: "Curitiba"},
}

func TestCandidatesCarrierChoiceStartsWithNoSelection(t *testing.T) {
	got := Candidates(order.ModeCarrierChoice, []Candidate{{Name: "A", PartnerCode: 5}})
	require.Len(t, got, 2)
	assert.Equal(t, NoSelection(), got[0])
	assert.True(t, got[0].IsNoSelection())
	assert.Equal(t, "-", got[0].LeadTime)
}

func TestCandidatesQuotationHasNoNoSelection(t *testing.T) {
	fetched := []Candidate{{Name: "A", PartnerCode: 5}}
	got := Candidates(order.ModeQuotation, fetched)
	if diff := cmp.Diff(fetched, got); diff != "" {
		t.Errorf("Candidates() mismatch (-want +got):\n%s", diff)
	}
}

func TestSelectionSelectIsIdempotent(t *testing.T) {
	var s Selection
	s.Select(91, 185.4)
	first := s
	s.Select(91, 185.4)
	assert.Equal(t, first, s)
	assert.True(t, s.Selected)
}

func TestSelectionValidate(t *testing.T) {
	assert.ErrorIs(t, Selection{}.Validate(order.ModeCarrierChoice), utils.ErrValidation)
	assert.Equal(t, ErrNoCarrierSelected, Selection{}.Validate(order.ModeCarrierChoice))

	zero := Selection{Code: NoSelectionCode, Selected: true}
	assert.NoError(t, zero.Validate(order.ModeCarrierChoice))
	assert.Equal(t, ErrQuotationNeedsPick, zero.Validate(order.ModeQuotation))

	picked := Selection{Code: 91, Selected: true}
	assert.NoError(t, picked.Validate(order.ModeQuotation))
}

func TestSelectFromUsesListedValue(t *testing.T) {
	candidates := Candidates(order.ModeCarrierChoice, []Candidate{{PartnerCode: 91, FreightValue: 185.4}})
	var s Selection
	require.NoError(t, s.SelectFrom(candidates, 91))
	assert.Equal(t, 185.4, s.FreightValue)
	assert.Equal(t, ErrUnknownCarrier, s.SelectFrom(candidates, 12))
}

func TestLoadCarrierChoice(t *testing.T) {
	fb := &fakeBackend{
		orders:   []models.PendingOrder{pendingOrder("1")},
		infos:    quotableInfo,
		computed: sampleQuotes[:1],
	}
	f := NewFlow(fb, nil, nil)

	d, err := f.Load(context.Background(), "12345678901")
	require.NoError(t, err)
	assert.Equal(t, order.ModeCarrierChoice, d.Mode)
	assert.Equal(t, "4512", d.OrderNumber())
	want := []Candidate{
		NoSelection(),
		{Name: "Rapido Sul", PartnerCode: 77, FreightValue: 210, LeadTime: "3"},
	}
	if diff := cmp.Diff(want, d.Candidates); diff != "" {
		t.Errorf("candidates mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, Selection{Code: 77, Selected: true, FreightValue: 210}, d.Selection)
	assert.True(t, d.CanSubmit())
	assert.Zero(t, fb.quoteCalls)
}

func TestLoadQuotation(t *testing.T) {
	fb := &fakeBackend{
		orders: []models.PendingOrder{pendingOrder("8")},
		infos:  quotableInfo,
		quotes: sampleQuotes,
	}
	d, err := NewFlow(fb, nil, nil).Load(context.Background(), "12345678901")
	require.NoError(t, err)
	assert.Equal(t, order.ModeQuotation, d.Mode)
	require.Len(t, d.Candidates, 2)
	assert.Equal(t, "Curitiba", d.Candidates[1].DestinationCity)
	for _, c := range d.Candidates {
		assert.False(t, c.IsNoSelection())
	}
	assert.Zero(t, fb.computeCalls)
}

func TestLoadQuotationWithZeroCarrierCannotSubmit(t *testing.T) {
	info := quotableInfo[0]
	info.CarrierCode = "0"
	fb := &fakeBackend{
		orders: []models.PendingOrder{pendingOrder("8")},
		infos:  []models.FreightInfo{info},
	}
	d, err := NewFlow(fb, nil, nil).Load(context.Background(), "1")
	require.NoError(t, err)
	assert.False(t, d.CanSubmit())
}

func TestLoadSkipsCarriersWhenNotQuotable(t *testing.T) {
	fb := &fakeBackend{
		orders: []models.PendingOrder{pendingOrder("1")},
		infos:  []models.FreightInfo{{GrossWeight: "0", InvoiceValue: "100"}},
	}
	d, err := NewFlow(fb, nil, nil).Load(context.Background(), "1")
	require.NoError(t, err)
	assert.Zero(t, fb.computeCalls)
	assert.Equal(t, []Candidate{NoSelection()}, d.Candidates)
}

func TestLoadNothingPending(t *testing.T) {
	d, err := NewFlow(&fakeBackend{}, nil, nil).Load(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, order.ModeNoPending, d.Mode)
	assert.Nil(t, d.Order)
	assert.False(t, d.CanSubmit())
}

func TestListsDegradeToEmpty(t *testing.T) {
	fb := &fakeBackend{computeErr: errors.New("boom"), quoteErr: errors.New("boom")}
	f := NewFlow(fb, nil, nil)

	assert.Empty(t, f.ListComputedCarriers(context.Background(), "1", "1", "1", "1"))
	assert.NotNil(t, f.ListQuotedCarriers(context.Background(), "1"))
}

func TestConfirmApprovalSendsMessageOnlyForNoSelection(t *testing.T) {
	fb := &fakeBackend{}
	f := NewFlow(fb, nil, nil)

	sel := Selection{Code: 91, Selected: true, FreightValue: 185.4, Message: "ignored"}
	require.NoError(t, f.ConfirmApproval(context.Background(), order.ModeCarrierChoice, "4512", sel))

	sel = Selection{Code: 0, Selected: true, Message: "prefiro retirar"}
	require.NoError(t, f.ConfirmApproval(context.Background(), order.ModeCarrierChoice, "4512", sel))

	want := []models.ApprovalRequest{
		{OrderNumber: 4512, SelectedCarrier: 91, FreightValue: 185.4},
		{OrderNumber: 4512, SelectedCarrier: 0, Message: "prefiro retirar"},
	}
	if diff := cmp.Diff(want, fb.approved); diff != "" {
		t.Errorf("approvals mismatch (-want +got):\n%s", diff)
	}
}

func TestConfirmApprovalPreconditions(t *testing.T) {
	fb := &fakeBackend{}
	f := NewFlow(fb, nil, nil)
	ctx := context.Background()

	assert.Equal(t, ErrQuotationNeedsPick,
		f.ConfirmApproval(ctx, order.ModeQuotation, "4512", Selection{Selected: true}))
	assert.Equal(t, ErrNoCarrierSelected,
		f.ConfirmApproval(ctx, order.ModeCarrierChoice, "4512", Selection{}))
	assert.ErrorIs(t,
		f.ConfirmApproval(ctx, order.ModeCarrierChoice, "abc", Selection{Selected: true}),
		utils.ErrValidation)
	assert.Empty(t, fb.approved)
}

func TestConfirmApprovalRejectsDoubleSubmit(t *testing.T) {
	fb := &fakeBackend{block: make(chan struct{}), entered: make(chan struct{})}
	f := NewFlow(fb, inflight.New(), nil)
	sel := Selection{Code: 91, Selected: true}

	done := make(chan error, 1)
	go func() {
		done <- f.ConfirmApproval(context.Background(), order.ModeCarrierChoice, "4512", sel)
	}()
	<-fb.entered

	err := f.ConfirmApproval(context.Background(), order.ModeCarrierChoice, "4512", sel)
	assert.ErrorIs(t, err, inflight.ErrInProgress)

	close(fb.block)
	require.NoError(t, <-done)
	assert.Len(t, fb.approved, 1)
}

func TestMutationFailureCarriesBackendMessage(t *testing.T) {
	fb := &fakeBackend{mutateErr: &backend.StatusError{StatusCode: 500, Body: []byte(`{"message":"Pedido bloqueado"}`)}}
	f := NewFlow(fb, nil, nil)

	err := f.ConfirmApproval(context.Background(), order.ModeCarrierChoice, "4512", Selection{Code: 91, Selected: true})
	require.Error(t, err)
	assert.ErrorIs(t, err, utils.ErrTransport)
	assert.Equal(t, "Pedido bloqueado", err.Error())

	fb.mutateErr = errors.New("connection reset")
	err = f.RequestNewQuotation(context.Background(), "4512")
	assert.Equal(t, "Não foi possível solicitar nova cotação.", err.Error())
	assert.Equal(t, []string{"4512"}, fb.requoted)
}

func TestSendFreightMessage(t *testing.T) {
	fb := &fakeBackend{}
	f := NewFlow(fb, nil, nil)

	assert.Equal(t, ErrMessageRequired, f.SendFreightMessage(context.Background(), "4512", "   "))
	require.NoError(t, f.SendFreightMessage(context.Background(), "4512", " entregar pela manhã "))
	assert.Equal(t, []models.FreightMessageRequest{{OrderNumber: "4512", Message: "entregar pela manhã"}}, fb.messages)
}
