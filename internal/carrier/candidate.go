// Package carrier lists the carriers a customer can pick for a pending
// order and submits the customer's decision.
package carrier

import (
	"math"

	"freightportal/internal/models"
	"freightportal/internal/order"
)

const (
	// NoSelectionCode is the partner code of the synthetic "no carrier" option.
	NoSelectionCode int64 = 0
	NoSelectionName       = "NENHUMA OPÇÃO"
)

// Candidate is one selectable carrier.
type Candidate struct {
	Name         string
	PartnerCode  int64
	FreightValue float64
	LeadTime     string

	// Only set for quotation answers.
	Note            string
	Redispatch      string
	DestinationCity string
}

// NoSelection is offered first whenever the flow is not quotation based.
func NoSelection() Candidate {
	return Candidate{Name: NoSelectionName, PartnerCode: NoSelectionCode, LeadTime: "-"}
}

func (c Candidate) IsNoSelection() bool { return c.PartnerCode == NoSelectionCode }

func fromComputed(q models.CarrierQuote) Candidate {
	return Candidate{
		Name:         q.Name.Trim(),
		PartnerCode:  int64(math.Round(float64(q.PartnerCode))),
		FreightValue: float64(q.FreightValue),
		LeadTime:     q.LeadTime.Trim(),
	}
}

func fromQuotation(q models.CarrierQuote) Candidate {
	c := fromComputed(q)
	c.Note = q.Note.Trim()
	c.Redispatch = q.Redispatch.Trim()
	c.DestinationCity = q.DestinationCity.Trim()
	return c
}

// Candidates is the list shown for mode: the fetched carriers, preceded by
// NoSelection unless the order is in quotation mode.
func Candidates(mode order.Mode, fetched []Candidate) []Candidate {
	if mode == order.ModeQuotation {
		out := make([]Candidate, len(fetched))
		copy(out, fetched)
		return out
	}
	out := make([]Candidate, 0, len(fetched)+1)
	out = append(out, NoSelection())
	return append(out, fetched...)
}

// Find returns the candidate with the given partner code.
func Find(candidates []Candidate, code int64) (Candidate, bool) {
	for _, c := range candidates {
		if c.PartnerCode == code {
			return c, true
		}
	}
	return Candidate{}, false
}
