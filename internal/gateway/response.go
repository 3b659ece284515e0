package gateway

import (
	"encoding/json"

	"tollgate/internal/payment"
	"tollgate/internal/pricing"
)

// X402Body carries the machine-readable payment terms in a 402 response.
type X402Body struct {
	Version     string `json:"version"`
	Network     string `json:"network"`
	ChainID     int64  `json:"chainId"`
	PayTo       string `json:"payTo"`
	Token       string `json:"token"`
	Amount      string `json:"amount"`
	Description string `json:"description,omitempty"`
}

// PaymentRequiredResponse is the canonical 402 body. Error is present only
// when a payment header was supplied but rejected.
type PaymentRequiredResponse struct {
	Status  int      `json:"status"`
	Message string   `json:"message"`
	X402    X402Body `json:"x402"`
	Error   string   `json:"error,omitempty"`
}

// RateLimitedResponse is the 429 body.
type RateLimitedResponse struct {
	Status       int    `json:"status"`
	Error        string `json:"error"`
	RetryAfterMs int64  `json:"retryAfterMs"`
}

// paymentRequired builds the 402 body for an endpoint, with reason set for
// rejected payments and empty when no payment was offered.
func paymentRequired(v *payment.Validator, ep *pricing.Endpoint, reason string) PaymentRequiredResponse {
	network := v.Network()
	return PaymentRequiredResponse{
		Status:  402,
		Message: "Payment Required",
		X402: X402Body{
			Version:     "1.0",
			Network:     network.Name,
			ChainID:     network.ChainID,
			PayTo:       v.PayTo(),
			Token:       v.Token(),
			Amount:      ep.Price.String(),
			Description: ep.Description,
		},
		Error: reason,
	}
}

// WrapResult shapes collaborator output into a response body. Output that
// parses as JSON is passed through as-is; anything else is wrapped.
func WrapResult(raw string) interface{} {
	var parsed interface{}
	if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
		return parsed
	}
	return map[string]string{"result": raw}
}
