package order

import "freightportal/internal/models"

// ApprovalStatus is the "Status Aprov." column.
type ApprovalStatus string

const (
	NotApproved ApprovalStatus = "N"
)

// FreightStatus is the "Status Frete" column. The backend sends free text;
// only the awaiting sentinel matters.
type FreightStatus string

const (
	AwaitingFreightApproval FreightStatus = "Aguardando aprovação de frete"
)

// QuotationStatus is the "Status Cot" column, a numeric string code.
type QuotationStatus string

const (
	QuotationReceived QuotationStatus = "8"
)

// Mode is the view mode of the detail page.
type Mode int

const (
	// ModeNoPending: nothing to approve.
	ModeNoPending Mode = iota
	// ModeCarrierChoice: the backend computed carrier options directly.
	ModeCarrierChoice
	// ModeQuotation: carriers answered a solicited quotation.
	ModeQuotation
)

func (m Mode) String() string {
	switch m {
	case ModeCarrierChoice:
		return "carrier_choice"
	case ModeQuotation:
		return "quotation"
	default:
		return "no_pending"
	}
}

// DeriveMode maps the three status columns to a view mode. Rules are
// evaluated in order: quotation, carrier choice, nothing pending.
func DeriveMode(approval ApprovalStatus, freight FreightStatus, quotation QuotationStatus) Mode {
	awaiting := approval == NotApproved && freight == AwaitingFreightApproval
	switch {
	case awaiting && quotation == QuotationReceived:
		return ModeQuotation
	case awaiting:
		return ModeCarrierChoice
	default:
		return ModeNoPending
	}
}

// ModeOf derives the mode of a resolved order; nil means nothing pending.
func ModeOf(o *models.PendingOrder) Mode {
	if o == nil {
		return ModeNoPending
	}
	return DeriveMode(
		ApprovalStatus(o.ApprovalStatus.Trim()),
		FreightStatus(o.FreightStatus.Trim()),
		QuotationStatus(o.QuotationStatus.Trim()),
	)
}

// awaitingApproval is the pending-order filter.
func awaitingApproval(o models.PendingOrder) bool {
	return ApprovalStatus(o.ApprovalStatus.Trim()) == NotApproved &&
		FreightStatus(o.FreightStatus.Trim()) == AwaitingFreightApproval
}
