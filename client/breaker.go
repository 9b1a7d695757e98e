package client

import (
	"errors"
	"time"

	"github.com/sony/gobreaker"

	"github.com/kbukum/carmarket/logger"
)

// BreakerConfig configures the client's circuit breaker.
type BreakerConfig struct {
	// Name identifies the breaker in logs.
	Name string
	// MaxFailures is the number of consecutive failures that opens the circuit.
	MaxFailures uint32
	// Timeout is how long the circuit stays open before probing again.
	Timeout time.Duration
	// HalfOpenMaxCalls is the number of probe calls allowed while half-open.
	HalfOpenMaxCalls uint32
}

// DefaultBreakerConfig returns sensible defaults.
func DefaultBreakerConfig(name string) BreakerConfig {
	return BreakerConfig{
		Name:             name,
		MaxFailures:      5,
		Timeout:          30 * time.Second,
		HalfOpenMaxCalls: 1,
	}
}

func (c *BreakerConfig) applyDefaults() {
	d := DefaultBreakerConfig("carmarket-api")
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.MaxFailures == 0 {
		c.MaxFailures = d.MaxFailures
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.HalfOpenMaxCalls == 0 {
		c.HalfOpenMaxCalls = d.HalfOpenMaxCalls
	}
}

// newBreaker builds a breaker that trips on network failures and 5xx
// envelopes only. A 4xx envelope is a healthy server answering.
func newBreaker(cfg BreakerConfig, log *logger.Logger) *gobreaker.CircuitBreaker {
	cfg.applyDefaults()
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        cfg.Name,
		MaxRequests: cfg.HalfOpenMaxCalls,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		IsSuccessful: breakerSuccess,
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("Circuit breaker state changed", logger.Fields(
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			))
		},
	})
}

func breakerSuccess(err error) bool {
	if err == nil {
		return true
	}
	if apiErr, ok := AsAPIError(err); ok {
		return apiErr.StatusCode < 500
	}
	return false
}

// IsCircuitOpen reports whether err was returned without a request being
// sent because the breaker is open or its half-open probes are used up.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
