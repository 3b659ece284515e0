// Package handlers contains the HTTP handlers behind the payment gate,
// plus the free discovery endpoints.
package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"tollgate/internal/collaborator"
	"tollgate/internal/gateway"
	"tollgate/internal/pricing"
	"tollgate/pkg/logging"
	"tollgate/pkg/monitoring"
)

// Metrics holds the gateway's domain metrics.
type Metrics struct {
	QueriesTotal  *prometheus.CounterVec
	QueryDuration *prometheus.HistogramVec
	PaymentsTotal *prometheus.CounterVec
}

// NewMetrics registers the domain metrics on a collector.
func NewMetrics(mc *monitoring.MetricsCollector) *Metrics {
	return &Metrics{
		QueriesTotal:  mc.NewCounter("queries_total", "Collaborator queries by name and result", []string{"query", "result"}),
		QueryDuration: mc.NewHistogram("query_duration_seconds", "Collaborator query duration in seconds", []string{"query"}, nil),
		PaymentsTotal: mc.NewCounter("payments_total", "Accepted payment assertions by endpoint", []string{"endpoint"}),
	}
}

// DataHandler serves priced endpoints by running their collaborator query.
type DataHandler struct {
	runner  collaborator.Runner
	timeout time.Duration
	logger  logging.Logger
	metrics *Metrics
}

// NewDataHandler creates a handler. Metrics may be nil in tests.
func NewDataHandler(runner collaborator.Runner, timeout time.Duration, logger logging.Logger, metrics *Metrics) *DataHandler {
	return &DataHandler{
		runner:  runner,
		timeout: timeout,
		logger:  logger,
		metrics: metrics,
	}
}

// Serve returns the handler for one priced endpoint. Path parameters are
// forwarded to the collaborator as query arguments.
func (h *DataHandler) Serve(ep pricing.Endpoint) gin.HandlerFunc {
	return func(c *gin.Context) {
		args := make(map[string]string, len(c.Params))
		for _, param := range c.Params {
			args[param.Key] = param.Value
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), h.timeout)
		defer cancel()

		start := time.Now()
		output, err := h.runner.RunQuery(ctx, ep.Query, args)
		duration := time.Since(start)

		if h.metrics != nil {
			h.metrics.QueryDuration.WithLabelValues(ep.Query).Observe(duration.Seconds())
		}

		if err != nil {
			if h.metrics != nil {
				h.metrics.QueriesTotal.WithLabelValues(ep.Query, "error").Inc()
			}
			h.logger.WithError(err).WithFields(logging.Fields{
				"query":    ep.Query,
				"endpoint": ep.Pattern,
				"payer":    c.GetString(gateway.ContextPayer),
			}).Error("Collaborator query failed")

			c.JSON(http.StatusInternalServerError, gin.H{
				"status": http.StatusInternalServerError,
				"error":  "Internal server error",
			})
			return
		}

		if h.metrics != nil {
			h.metrics.QueriesTotal.WithLabelValues(ep.Query, "success").Inc()
			h.metrics.PaymentsTotal.WithLabelValues(ep.Pattern).Inc()
		}

		c.JSON(http.StatusOK, gateway.WrapResult(output))
	}
}
