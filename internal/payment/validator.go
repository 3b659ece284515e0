package payment

import (
	"fmt"
	"math/big"
	"strings"

	"tollgate/pkg/x402"
)

// zeroAddress disables the recipient check when configured as the payee.
const zeroAddress = "0x0000000000000000000000000000000000000000"

// Result is the outcome of validating a payment assertion against an
// endpoint price. Reason is set only when Valid is false.
type Result struct {
	Valid     bool
	Reason    string
	Assertion *x402.PaymentAssertion
}

// Validator checks payment assertions structurally against the configured
// network, token and payee. Signatures are not verified cryptographically;
// the assertion is treated as a claim and checked for shape and consistency.
type Validator struct {
	network NetworkConfig
	token   string
	payTo   string
}

// NewValidator creates a validator for the given network. An empty token
// falls back to the network's canonical token contract. An empty or
// zero-address payTo disables the recipient check.
func NewValidator(network NetworkConfig, token, payTo string) *Validator {
	if token == "" {
		token = network.TokenContract
	}
	if strings.EqualFold(payTo, zeroAddress) {
		payTo = ""
	}
	return &Validator{
		network: network,
		token:   token,
		payTo:   payTo,
	}
}

// Network returns the network this validator checks against.
func (v *Validator) Network() NetworkConfig {
	return v.network
}

// Token returns the token contract this validator accepts.
func (v *Validator) Token() string {
	return v.token
}

// PayTo returns the configured payee address, empty when unchecked.
func (v *Validator) PayTo() string {
	return v.payTo
}

// Validate decodes and checks a payment header value against a price.
// Checks run in a fixed order and short-circuit on the first failure, so
// the reason always names the earliest problem.
func (v *Validator) Validate(header string, price *big.Int) Result {
	assertion, err := x402.ParseAssertion(header)
	if err != nil {
		return Result{Reason: "malformed payment assertion"}
	}

	if reason, ok := missingField(assertion); !ok {
		return Result{Reason: reason, Assertion: assertion}
	}

	// Compare as big.Int so values wider than 64 bits cannot alias the
	// configured chain id through truncation.
	chainID, ok := new(big.Int).SetString(assertion.ChainID.String(), 10)
	if !ok || chainID.Cmp(big.NewInt(v.network.ChainID)) != 0 {
		return Result{Reason: "invalid chainId", Assertion: assertion}
	}

	if !strings.EqualFold(assertion.Token, v.token) {
		return Result{Reason: "invalid token", Assertion: assertion}
	}

	amount, ok := new(big.Int).SetString(assertion.Amount.String(), 10)
	if !ok || amount.Sign() < 0 {
		return Result{Reason: "invalid amount", Assertion: assertion}
	}

	if amount.Cmp(price) < 0 {
		return Result{
			Reason:    fmt.Sprintf("Insufficient payment: expected at least %s, got %s", price.String(), amount.String()),
			Assertion: assertion,
		}
	}

	if v.payTo != "" && !strings.EqualFold(assertion.To, v.payTo) {
		return Result{Reason: "invalid recipient", Assertion: assertion}
	}

	return Result{Valid: true, Assertion: assertion}
}

// missingField reports the first absent required field in declaration
// order: from, to, amount, token, chainId, signature.
func missingField(a *x402.PaymentAssertion) (string, bool) {
	fields := []struct {
		name  string
		value string
	}{
		{"from", a.From},
		{"to", a.To},
		{"amount", a.Amount.String()},
		{"token", a.Token},
		{"chainId", a.ChainID.String()},
		{"signature", a.Signature},
	}
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			return "missing required field: " + f.name, false
		}
	}
	return "", true
}
