package carrier

import (
	"freightportal/internal/order"
	"freightportal/internal/utils"
)

var (
	ErrNoCarrierSelected  = utils.New(utils.KindValidation, "Selecione uma transportadora.")
	ErrQuotationNeedsPick = utils.New(utils.KindValidation, "Escolha uma das cotações recebidas.")
	ErrUnknownCarrier     = utils.New(utils.KindValidation, "Transportadora inválida.")
	ErrMessageRequired    = utils.New(utils.KindValidation, "Digite uma mensagem.")
	ErrNotQuotation       = utils.New(utils.KindValidation, "Disponível apenas para pedidos em cotação.")
)

// Selection is the customer's current choice.
type Selection struct {
	Code         int64
	Selected     bool
	FreightValue float64
	// Message is the observation sent along with NoSelection.
	Message string
}

// NewSelection starts from the carrier and freight value currently on the
// order.
func NewSelection(t order.Totals) Selection {
	return Selection{Code: t.CarrierCode, Selected: true, FreightValue: t.FreightValue}
}

// Select sets the chosen carrier and its freight value.
func (s *Selection) Select(code int64, value float64) {
	s.Code = code
	s.FreightValue = value
	s.Selected = true
}

// SelectFrom selects code using the freight value listed for it.
func (s *Selection) SelectFrom(candidates []Candidate, code int64) error {
	c, ok := Find(candidates, code)
	if !ok {
		return ErrUnknownCarrier
	}
	s.Select(c.PartnerCode, c.FreightValue)
	return nil
}

// Validate checks the approval preconditions that depend on the choice.
func (s Selection) Validate(mode order.Mode) error {
	if !s.Selected {
		return ErrNoCarrierSelected
	}
	if mode == order.ModeQuotation && s.Code == NoSelectionCode {
		return ErrQuotationNeedsPick
	}
	return nil
}

// outgoingMessage is only sent when the customer declined every carrier.
func (s Selection) outgoingMessage() string {
	if s.Code != NoSelectionCode {
		return ""
	}
	return s.Message
}
