package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"

	"freightportal/internal/models"
)

// SendData calls the availability probe. It returns a nil response when the
// body is empty or a JSON falsy value, meaning the system is unavailable.
func (c *Client) SendData(ctx context.Context) (*models.SendDataResponse, error) {
	data, err := c.do(ctx, http.MethodPost, c.apiURL+"/auth/send-data", struct{}{}, nil, is2xx)
	if err != nil {
		return nil, err
	}
	if falsy(data) {
		return nil, nil
	}
	var out models.SendDataResponse
	if err := json.Unmarshal(data, &out); err != nil {
		// a truthy body that is not an object still means the system is up
		return &models.SendDataResponse{}, nil
	}
	return &out, nil
}

func falsy(data []byte) bool {
	switch string(bytes.TrimSpace(data)) {
	case "", "null", "false", "0", `""`:
		return true
	default:
		return false
	}
}

// ProductsByClient lists the products registered for taxID. An empty list
// means the customer is not registered.
func (c *Client) ProductsByClient(ctx context.Context, cookie, taxID string) ([]json.RawMessage, error) {
	var out models.ProductsResponse
	if _, err := c.do(ctx, http.MethodGet, join(c.apiURL+"/prodsClient/get", cookie, taxID), nil, &out, is2xx); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// FindUser succeeds when a local account exists for taxID.
func (c *Client) FindUser(ctx context.Context, taxID string) error {
	_, err := c.do(ctx, http.MethodGet, join(c.apiURL+"/api/users/buscarCnpj", taxID), nil, nil, is2xx)
	return err
}

// Login verifies the credentials. The password is sent as typed.
func (c *Client) Login(ctx context.Context, taxID, password string) error {
	req := models.LoginRequest{CNPJ: taxID, PasswordHash: password}
	_, err := c.do(ctx, http.MethodPost, c.apiURL+"/api/users/login", req, nil, is2xx)
	return err
}

// PendingOrders lists every order of the customer, approved or not.
func (c *Client) PendingOrders(ctx context.Context, taxID string) ([]models.PendingOrder, error) {
	var out models.PendingOrdersResponse
	if _, err := c.do(ctx, http.MethodGet, join(c.erpURL+"/api/VendorAt/PedidosPend", taxID), nil, &out, is2xx); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// FreightInfo returns the freight totals rows of an order.
func (c *Client) FreightInfo(ctx context.Context, orderNumber string) ([]models.FreightInfo, error) {
	var out models.FreightInfoResponse
	if _, err := c.do(ctx, http.MethodGet, join(c.erpURL+"/api/VendorAt/InfosFrete", orderNumber), nil, &out, is2xx); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// ComputedQuotes asks the backend to price the shipment with every carrier.
func (c *Client) ComputedQuotes(ctx context.Context, taxID, weight, orderValue, volume string) ([]models.CarrierQuote, error) {
	var out models.CarrierQuotesResponse
	u := join(c.apiURL+"/api/VendorAt/CalculaFreteNovo", taxID, weight, orderValue, volume)
	if _, err := c.do(ctx, http.MethodGet, u, nil, &out, is2xx); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// Quotations lists the quotations carriers answered for an order.
func (c *Client) Quotations(ctx context.Context, orderNumber string) ([]models.CarrierQuote, error) {
	var out models.CarrierQuotesResponse
	if _, err := c.do(ctx, http.MethodGet, join(c.apiURL+"/api/VendorAt/VerificarCotacao", orderNumber), nil, &out, is2xx); err != nil {
		return nil, err
	}
	return out.Result, nil
}

// ApproveOrder submits the carrier decision. Only HTTP 200 is success.
func (c *Client) ApproveOrder(ctx context.Context, req models.ApprovalRequest) error {
	_, err := c.do(ctx, http.MethodPut, c.erpURL+"/api/VendorAt/AprovPedidosPendMsg", req, nil, isOK)
	return err
}

// SendFreightMessage posts a free text message about the order's freight.
func (c *Client) SendFreightMessage(ctx context.Context, req models.FreightMessageRequest) error {
	_, err := c.do(ctx, http.MethodPut, c.erpURL+"/api/VendorAt/EnviarMensagemFrete", req, nil, isOK)
	return err
}

// RequestMoreQuotes sends the order back for another quotation round.
func (c *Client) RequestMoreQuotes(ctx context.Context, orderNumber string) error {
	_, err := c.do(ctx, http.MethodPut, join(c.erpURL+"/api/VendorAt/RequestMaisCots", orderNumber), nil, nil, isOK)
	return err
}
