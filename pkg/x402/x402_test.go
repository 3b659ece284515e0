package x402

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"testing"
)

func TestPaymentHeaderFromRequest(t *testing.T) {
	t.Run("nil request", func(t *testing.T) {
		if got := PaymentHeaderFromRequest(nil); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("Payment header", func(t *testing.T) {
		req, _ := http.NewRequestWithContext(context.Background(), "GET", "/", nil)
		req.Header.Set("Payment", "test-payment")
		if got := PaymentHeaderFromRequest(req); got != "test-payment" {
			t.Errorf("got %q, want %q", got, "test-payment")
		}
	})

	t.Run("X-Payment header", func(t *testing.T) {
		req, _ := http.NewRequestWithContext(context.Background(), "GET", "/", nil)
		req.Header.Set("X-Payment", "test-x-payment")
		if got := PaymentHeaderFromRequest(req); got != "test-x-payment" {
			t.Errorf("got %q, want %q", got, "test-x-payment")
		}
	})

	t.Run("Payment takes precedence", func(t *testing.T) {
		req, _ := http.NewRequestWithContext(context.Background(), "GET", "/", nil)
		req.Header.Set("Payment", "payment-value")
		req.Header.Set("X-Payment", "x-payment-value")
		if got := PaymentHeaderFromRequest(req); got != "payment-value" {
			t.Errorf("got %q, want %q", got, "payment-value")
		}
	})

	t.Run("header name is case-insensitive", func(t *testing.T) {
		req, _ := http.NewRequestWithContext(context.Background(), "GET", "/", nil)
		req.Header.Set("pAyMeNt", "mixed-case")
		if got := PaymentHeaderFromRequest(req); got != "mixed-case" {
			t.Errorf("got %q, want %q", got, "mixed-case")
		}
	})

	t.Run("whitespace is trimmed", func(t *testing.T) {
		req, _ := http.NewRequestWithContext(context.Background(), "GET", "/", nil)
		req.Header.Set("Payment", "  trimmed  ")
		if got := PaymentHeaderFromRequest(req); got != "trimmed" {
			t.Errorf("got %q, want %q", got, "trimmed")
		}
	})
}

func TestPaymentHeaderFromHeaders(t *testing.T) {
	t.Run("nil headers", func(t *testing.T) {
		if got := PaymentHeaderFromHeaders(nil); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("empty headers", func(t *testing.T) {
		if got := PaymentHeaderFromHeaders(http.Header{}); got != "" {
			t.Errorf("expected empty string, got %q", got)
		}
	})

	t.Run("X-Payment used when Payment blank", func(t *testing.T) {
		h := http.Header{}
		h.Set("Payment", "   ")
		h.Set("X-Payment", "fallback")
		if got := PaymentHeaderFromHeaders(h); got != "fallback" {
			t.Errorf("got %q, want %q", got, "fallback")
		}
	})
}

func TestParseAssertion(t *testing.T) {
	validJSON := `{"from":"0xAaaa","to":"0xBbbb","amount":"1000","token":"0xCccc","chainId":5042002,"signature":"0xdead"}`

	t.Run("raw JSON", func(t *testing.T) {
		assertion, err := ParseAssertion(validJSON)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assertion.From != "0xAaaa" {
			t.Errorf("From = %q, want %q", assertion.From, "0xAaaa")
		}
		if assertion.Amount.String() != "1000" {
			t.Errorf("Amount = %q, want %q", assertion.Amount, "1000")
		}
		if assertion.ChainID.String() != "5042002" {
			t.Errorf("ChainID = %q, want %q", assertion.ChainID, "5042002")
		}
		if assertion.Signature != "0xdead" {
			t.Errorf("Signature = %q, want %q", assertion.Signature, "0xdead")
		}
	})

	t.Run("standard base64", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte(validJSON))
		assertion, err := ParseAssertion(encoded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assertion.To != "0xBbbb" {
			t.Errorf("To = %q, want %q", assertion.To, "0xBbbb")
		}
	})

	t.Run("url-safe base64", func(t *testing.T) {
		encoded := base64.URLEncoding.EncodeToString([]byte(validJSON))
		if _, err := ParseAssertion(encoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("raw url-safe base64", func(t *testing.T) {
		encoded := base64.RawURLEncoding.EncodeToString([]byte(validJSON))
		if _, err := ParseAssertion(encoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
	})

	t.Run("quoted chainId", func(t *testing.T) {
		assertion, err := ParseAssertion(`{"chainId":"5042002"}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assertion.ChainID.String() != "5042002" {
			t.Errorf("ChainID = %q, want %q", assertion.ChainID, "5042002")
		}
	})

	t.Run("numeric amount", func(t *testing.T) {
		assertion, err := ParseAssertion(`{"amount":1000}`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assertion.Amount.String() != "1000" {
			t.Errorf("Amount = %q, want %q", assertion.Amount, "1000")
		}
	})

	t.Run("empty header", func(t *testing.T) {
		if _, err := ParseAssertion(""); err != ErrMalformed {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("not JSON and not base64", func(t *testing.T) {
		if _, err := ParseAssertion("!!!garbage!!!"); err != ErrMalformed {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("base64 of non-JSON", func(t *testing.T) {
		encoded := base64.StdEncoding.EncodeToString([]byte("not json"))
		if _, err := ParseAssertion(encoded); err != ErrMalformed {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})

	t.Run("empty JSON object", func(t *testing.T) {
		assertion, err := ParseAssertion("{}")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if assertion.From != "" || assertion.Amount != "" {
			t.Errorf("expected zero-value fields, got %+v", assertion)
		}
	})

	t.Run("boolean chainId is rejected", func(t *testing.T) {
		if _, err := ParseAssertion(`{"chainId":true}`); err != ErrMalformed {
			t.Errorf("expected ErrMalformed, got %v", err)
		}
	})
}

func TestParseAssertionIdempotent(t *testing.T) {
	payload := map[string]interface{}{
		"from":      "0xA",
		"to":        "0xB",
		"amount":    "1000",
		"token":     "0xC",
		"chainId":   5042002,
		"signature": "0xdead",
	}
	raw, _ := json.Marshal(payload)

	first, err := ParseAssertion(string(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := ParseAssertion(string(raw))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *first != *second {
		t.Errorf("parse is not deterministic: %+v vs %+v", first, second)
	}
}
