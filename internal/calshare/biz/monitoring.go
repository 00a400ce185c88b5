package biz

import (
	"context"
	"sync"

	"github.com/kart-io/logger"

	"github.com/kart-io/calshare/pkg/resilience"
)

// Pinger checks one dependency's liveness.
type Pinger func(ctx context.Context) error

// DependencyStatus is the health report for one dependency.
type DependencyStatus struct {
	Name     string               `json:"name"`
	Healthy  bool                 `json:"healthy"`
	Breaker  resilience.Snapshot  `json:"breaker"`
	Degraded *resilience.Graceful `json:"degraded,omitempty"`
}

// SystemStatus is the aggregate health report.
type SystemStatus struct {
	Status       string              `json:"status"`
	Dependencies []*DependencyStatus `json:"dependencies"`
}

// Aggregate status values.
const (
	StatusHealthy = "healthy"
)

type dependency struct {
	name    string
	ping    Pinger
	breaker *resilience.CircuitBreaker
}

// MonitoringService checks dependency health behind per-dependency
// circuit breakers. Failed checks degrade the report instead of failing
// the status endpoint.
type MonitoringService struct {
	mu    sync.RWMutex
	deps  []*dependency
	retry resilience.RetryOptions
}

// NewMonitoringService creates the monitoring service.
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{
		retry: resilience.DefaultRetryOptions(),
	}
}

// Register adds a dependency health check behind its own breaker.
func (s *MonitoringService) Register(name string, ping Pinger, opts resilience.BreakerOptions) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deps = append(s.deps, &dependency{
		name:    name,
		ping:    ping,
		breaker: resilience.NewCircuitBreaker(opts),
	})
}

// Status checks every registered dependency and aggregates the report.
// Each check retries with backoff inside its breaker; an open breaker
// short-circuits to a degraded entry without touching the dependency.
func (s *MonitoringService) Status(ctx context.Context) *SystemStatus {
	s.mu.RLock()
	deps := make([]*dependency, len(s.deps))
	copy(deps, s.deps)
	s.mu.RUnlock()

	report := &SystemStatus{Status: StatusHealthy}
	for _, dep := range deps {
		entry := s.check(ctx, dep)
		if !entry.Healthy {
			report.Status = resilience.DegradedStatus
		}
		report.Dependencies = append(report.Dependencies, entry)
	}
	return report
}

func (s *MonitoringService) check(ctx context.Context, dep *dependency) *DependencyStatus {
	err := dep.breaker.Execute(func() error {
		return resilience.RetryWithBackoff(ctx, s.retry, func() error {
			return dep.ping(ctx)
		})
	})

	entry := &DependencyStatus{
		Name:    dep.name,
		Healthy: err == nil,
		Breaker: dep.breaker.GetSnapshot(),
	}
	if err != nil {
		logger.Warnw("dependency health check failed",
			"dependency", dep.name,
			"error", err.Error(),
		)
		degraded := resilience.GracefulError(err, dep.name+" unavailable")
		entry.Degraded = &degraded
	}
	return entry
}
