package observability

import (
	"context"
	"strconv"

	"github.com/kbukum/carmarket/errors"
)

// HealthStatus is the state reported by GET /health.
type HealthStatus string

const (
	HealthStatusUp       HealthStatus = "up"
	HealthStatusDown     HealthStatus = "down"
	HealthStatusDegraded HealthStatus = "degraded"
)

// Health describes one component of the service.
type Health struct {
	Name    string            `json:"name"`
	Status  HealthStatus      `json:"status"`
	Message string            `json:"message,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// ServiceHealth is the body of the health endpoint.
type ServiceHealth struct {
	Service    string       `json:"service"`
	Status     HealthStatus `json:"status"`
	Version    string       `json:"version,omitempty"`
	Components []Health     `json:"components,omitempty"`
}

// HealthChecker reports the health of one component.
type HealthChecker interface {
	CheckHealth(ctx context.Context) Health
}

// HealthCheckFunc adapts a function to HealthChecker.
type HealthCheckFunc func(ctx context.Context) Health

// CheckHealth calls f.
func (f HealthCheckFunc) CheckHealth(ctx context.Context) Health { return f(ctx) }

// CheckService runs every checker and folds the results into one report.
func CheckService(ctx context.Context, service, version string, checkers ...HealthChecker) *ServiceHealth {
	sh := &ServiceHealth{Service: service, Status: HealthStatusUp, Version: version}
	for _, c := range checkers {
		sh.AddComponent(c.CheckHealth(ctx))
	}
	return sh
}

// AddComponent appends a result; down wins over degraded, degraded over up.
func (sh *ServiceHealth) AddComponent(ch Health) {
	sh.Components = append(sh.Components, ch)

	switch ch.Status {
	case HealthStatusDown:
		sh.Status = HealthStatusDown
	case HealthStatusDegraded:
		if sh.Status != HealthStatusDown {
			sh.Status = HealthStatusDegraded
		}
	}
}

// RegistryHealth reports the error registry as down when it is empty.
func RegistryHealth(reg *errors.Registry) HealthChecker {
	return HealthCheckFunc(func(context.Context) Health {
		h := Health{Name: "error_registry", Status: HealthStatusUp}
		if reg == nil || reg.Len() == 0 {
			h.Status = HealthStatusDown
			h.Message = "no error entries registered"
			return h
		}
		h.Details = map[string]string{"entries": strconv.Itoa(reg.Len())}
		return h
	})
}
