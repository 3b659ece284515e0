package collaborator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sony/gobreaker"

	"tollgate/pkg/logging"
)

// ErrUnavailable is returned while the breaker is open and calls are
// being shed.
var ErrUnavailable = errors.New("data source unavailable")

// BreakerRunner wraps a Runner with a circuit breaker so a failing data
// source sheds load quickly instead of tying up request handlers.
type BreakerRunner struct {
	inner   Runner
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerRunner wraps inner with a circuit breaker. The breaker opens
// after at least 3 requests with a 60% failure ratio and probes again
// after 10 seconds.
func NewBreakerRunner(inner Runner, logger logging.Logger) *BreakerRunner {
	settings := gobreaker.Settings{
		Name:        "collaborator",
		MaxRequests: 5,
		Interval:    60 * time.Second,
		Timeout:     10 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
			return counts.Requests >= 3 && failureRatio >= 0.6
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logging.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("Circuit breaker state changed")
		},
	}

	return &BreakerRunner{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// RunQuery implements Runner.
func (r *BreakerRunner) RunQuery(ctx context.Context, name string, args map[string]string) (string, error) {
	output, err := r.breaker.Execute(func() (interface{}, error) {
		return r.inner.RunQuery(ctx, name, args)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return output.(string), nil
}
