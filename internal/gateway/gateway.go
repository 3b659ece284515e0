// Package gateway implements the payment-gating request pipeline: every
// request is rate limited, priced routes demand a valid payment assertion,
// and everything else passes through untouched.
package gateway

import (
	"math"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"tollgate/internal/payment"
	"tollgate/internal/pricing"
	"tollgate/internal/ratelimit"
	"tollgate/pkg/logging"
	"tollgate/pkg/x402"
)

// Context keys set on paid requests.
const (
	ContextAssertion = "payment_assertion"
	ContextEndpoint  = "priced_endpoint"
	ContextPayer     = "payer"
)

// Decision classifies how a request moves through the gate.
type Decision int

const (
	// DecisionPassThrough means the route is not priced.
	DecisionPassThrough Decision = iota
	// DecisionPaymentRequired means the route is priced and no acceptable
	// payment accompanied the request.
	DecisionPaymentRequired
	// DecisionForward means payment was accepted and the request proceeds.
	DecisionForward
)

// Outcome is the result of gating one request.
type Outcome struct {
	Decision  Decision
	Endpoint  *pricing.Endpoint
	Params    map[string]string
	Assertion *x402.PaymentAssertion
	// Reason is set when Decision is DecisionPaymentRequired and a payment
	// header was supplied but rejected.
	Reason string
}

// Metrics counts gate outcomes. Nil-safe; tests run without it.
type Metrics struct {
	// Validations counts payment gate outcomes per endpoint pattern, with
	// outcome one of missing, rejected, accepted.
	Validations *prometheus.CounterVec
	// RateLimited counts rejected requests per path.
	RateLimited *prometheus.CounterVec
	// TrackedClients gauges how many client windows the limiter holds.
	TrackedClients *prometheus.GaugeVec
}

// Gateway composes the price table, validator and limiter into gin
// middleware.
type Gateway struct {
	table     *pricing.Table
	validator *payment.Validator
	limiter   *ratelimit.Limiter
	logger    logging.Logger
	metrics   *Metrics
}

// New creates a gateway.
func New(table *pricing.Table, validator *payment.Validator, limiter *ratelimit.Limiter, logger logging.Logger) *Gateway {
	return &Gateway{
		table:     table,
		validator: validator,
		limiter:   limiter,
		logger:    logger,
	}
}

// SetMetrics attaches gate outcome counters.
func (g *Gateway) SetMetrics(m *Metrics) {
	g.metrics = m
}

// Decide runs the route-match and payment checks for a request path and
// payment header. Rate limiting is separate; see RateLimit.
func (g *Gateway) Decide(path, paymentHeader string) Outcome {
	ep, params, ok := g.table.Lookup(path)
	if !ok {
		return Outcome{Decision: DecisionPassThrough}
	}

	if paymentHeader == "" {
		return Outcome{Decision: DecisionPaymentRequired, Endpoint: ep, Params: params}
	}

	result := g.validator.Validate(paymentHeader, ep.Price)
	if !result.Valid {
		return Outcome{
			Decision: DecisionPaymentRequired,
			Endpoint: ep,
			Params:   params,
			Reason:   result.Reason,
		}
	}

	return Outcome{
		Decision:  DecisionForward,
		Endpoint:  ep,
		Params:    params,
		Assertion: result.Assertion,
	}
}

// RateLimit returns middleware that admits or rejects requests per client
// IP. It runs ahead of the payment gate and applies to free routes too, so
// collaborator processes stay protected from overload.
func (g *Gateway) RateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		admission := g.limiter.Admit(c.ClientIP())
		if g.metrics != nil {
			g.metrics.TrackedClients.WithLabelValues().Set(float64(g.limiter.Tracked()))
		}

		c.Header("X-RateLimit-Limit", strconv.Itoa(admission.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(admission.Remaining))
		c.Header("X-RateLimit-Reset", strconv.FormatInt(admission.ResetAt.Unix(), 10))

		if !admission.Allowed {
			retryAfter := int64(math.Ceil(admission.RetryAfter.Seconds()))
			if retryAfter < 1 {
				retryAfter = 1
			}
			c.Header("Retry-After", strconv.FormatInt(retryAfter, 10))

			if g.metrics != nil {
				g.metrics.RateLimited.WithLabelValues(c.Request.URL.Path).Inc()
			}

			g.logger.WithFields(logging.Fields{
				"client": c.ClientIP(),
				"path":   c.Request.URL.Path,
			}).Warn("Rate limit exceeded")

			c.AbortWithStatusJSON(http.StatusTooManyRequests, RateLimitedResponse{
				Status:       http.StatusTooManyRequests,
				Error:        "Rate limit exceeded",
				RetryAfterMs: admission.RetryAfter.Milliseconds(),
			})
			return
		}

		c.Next()
	}
}

func (g *Gateway) countValidation(ep *pricing.Endpoint, outcome string) {
	if g.metrics == nil || ep == nil {
		return
	}
	g.metrics.Validations.WithLabelValues(ep.Pattern, outcome).Inc()
}

// PaymentGate returns middleware that enforces payment on priced routes.
// CORS preflight and unpriced routes pass through unchanged.
func (g *Gateway) PaymentGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		header := x402.PaymentHeaderFromRequest(c.Request)
		outcome := g.Decide(c.Request.URL.Path, header)

		switch outcome.Decision {
		case DecisionPassThrough:
			c.Next()

		case DecisionPaymentRequired:
			if outcome.Reason != "" {
				g.countValidation(outcome.Endpoint, "rejected")
				g.logger.WithFields(logging.Fields{
					"client": c.ClientIP(),
					"path":   c.Request.URL.Path,
					"reason": outcome.Reason,
				}).Info("Payment rejected")
			} else {
				g.countValidation(outcome.Endpoint, "missing")
			}
			c.AbortWithStatusJSON(http.StatusPaymentRequired,
				paymentRequired(g.validator, outcome.Endpoint, outcome.Reason))

		case DecisionForward:
			g.countValidation(outcome.Endpoint, "accepted")
			c.Set(ContextAssertion, outcome.Assertion)
			c.Set(ContextEndpoint, outcome.Endpoint)
			c.Set(ContextPayer, outcome.Assertion.From)
			c.Next()
		}
	}
}
