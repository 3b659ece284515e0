package x402

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// ErrMalformed is returned when a payment header cannot be decoded into an
// assertion by any supported encoding.
var ErrMalformed = errors.New("malformed payment assertion")

// PaymentAssertion is the caller-supplied, unverified payment claim carried
// in the Payment header. No invariant is enforced by construction; every
// field is validated at use.
type PaymentAssertion struct {
	From      string     `json:"from"`
	To        string     `json:"to"`
	Amount    FlexString `json:"amount"`
	Token     string     `json:"token"`
	ChainID   FlexString `json:"chainId"`
	Signature string     `json:"signature"`
}

// FlexString decodes a JSON string or number into its string form.
// Payment clients disagree on whether amount and chainId are quoted.
type FlexString string

// UnmarshalJSON implements json.Unmarshaler.
func (f *FlexString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = FlexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = FlexString(n.String())
	return nil
}

// String returns the normalized string form.
func (f FlexString) String() string {
	return string(f)
}

// PaymentHeaderFromRequest returns the payment assertion header from an HTTP
// request. Accepts both Payment and X-Payment.
func PaymentHeaderFromRequest(r *http.Request) string {
	if r == nil {
		return ""
	}
	return PaymentHeaderFromHeaders(r.Header)
}

// PaymentHeaderFromHeaders returns the payment assertion header from HTTP
// headers. Accepts both Payment and X-Payment.
func PaymentHeaderFromHeaders(headers http.Header) string {
	if headers == nil {
		return ""
	}
	if value := strings.TrimSpace(headers.Get("Payment")); value != "" {
		return value
	}
	if value := strings.TrimSpace(headers.Get("X-Payment")); value != "" {
		return value
	}
	return ""
}

// ParseAssertion decodes a payment header value into a PaymentAssertion.
// The value is tried as raw JSON first, then as base64-encoded JSON.
func ParseAssertion(header string) (*PaymentAssertion, error) {
	trimmed := strings.TrimSpace(header)
	if trimmed == "" {
		return nil, ErrMalformed
	}

	if assertion, err := unmarshalAssertion([]byte(trimmed)); err == nil {
		return assertion, nil
	}

	decoded, err := base64Decode(trimmed)
	if err != nil {
		return nil, ErrMalformed
	}
	assertion, err := unmarshalAssertion(decoded)
	if err != nil {
		return nil, ErrMalformed
	}
	return assertion, nil
}

func unmarshalAssertion(data []byte) (*PaymentAssertion, error) {
	var assertion PaymentAssertion
	if err := json.Unmarshal(data, &assertion); err != nil {
		return nil, err
	}
	return &assertion, nil
}

func base64Decode(s string) ([]byte, error) {
	if decoded, err := base64.StdEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.URLEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.RawURLEncoding.DecodeString(s); err == nil {
		return decoded, nil
	}
	return base64.RawStdEncoding.DecodeString(s)
}
