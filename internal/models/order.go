package models

import "encoding/json"

// PendingOrder is one row of VendorAt/PedidosPend.
type PendingOrder struct {
	Status          Text `json:"Status"`
	GrossWeight     Text `json:"Peso bruto"`
	FreightValue    Text `json:"Valor frete"`
	OrderCarrier    Text `json:"Transp. pedido"`
	InvoiceValue    Text `json:"Vlr. Nota"`
	PartnerName     Text `json:"Nome Parc."`
	OriginalFreight Text `json:"Valor frete original"`
	OrderNumber     Text `json:"Nro. pedido"`
	ApprovalStatus  Text `json:"Status Aprov."`
	OriginalCarrier Text `json:"Transp. original"`
	FreightStatus   Text `json:"Status Frete"`
	QuotationStatus Text `json:"Status Cot"`
}

type PendingOrdersResponse struct {
	Result []PendingOrder `json:"Result"`
}

// FreightInfo is one row of VendorAt/InfosFrete. Only the first row is used:
// every row repeats the order totals.
type FreightInfo struct {
	InvoiceValue Text `json:"VLRNOTA"`
	GrossWeight  Text `json:"PESOBRUTO"`
	FreightValue Text `json:"VLRFR"`
	CarrierCode  Text `json:"CODPARCTRANSP"`
	CubicMeters  Text `json:"M3"`
}

type FreightInfoResponse struct {
	Result []FreightInfo `json:"result"`
}

// CarrierQuote is one row of CalculaFreteNovo or VerificarCotacao. The last
// three columns only come from VerificarCotacao.
type CarrierQuote struct {
	Name            Text   `json:"Nome transp"`
	PartnerCode     Number `json:"Cód. parceiro"`
	FreightValue    Number `json:"Valor frete"`
	LeadTime        Text   `json:"Prazo"`
	Note            Text   `json:"Observação"`
	Redispatch      Text   `json:"Redespacho"`
	DestinationCity Text   `json:"Cidade dest"`
}

type CarrierQuotesResponse struct {
	Result []CarrierQuote `json:"Result"`
}

// SendDataResponse is the availability probe answer.
type SendDataResponse struct {
	Cookie string `json:"cookie"`
}

type ProductsResponse struct {
	Result []json.RawMessage `json:"result"`
}

// LoginRequest keeps the backend's historical field name: PasswordHash holds
// the password exactly as typed.
type LoginRequest struct {
	CNPJ         string `json:"cnpj"`
	PasswordHash string `json:"password_hash"`
}

type ApprovalRequest struct {
	OrderNumber     int64   `json:"nunota"`
	SelectedCarrier int64   `json:"transpSelecionada"`
	FreightValue    float64 `json:"valorFrete"`
	Message         string  `json:"msg"`
}

type FreightMessageRequest struct {
	OrderNumber string `json:"nunota"`
	Message     string `json:"msg"`
}
