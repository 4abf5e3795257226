// Package health aggregates component health checks for the /health
// endpoint.
package health

import (
	"context"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

// CheckResult represents the result of a single health check.
type CheckResult struct {
	Name      string        `json:"name"`
	Status    Status        `json:"status"`
	Error     string        `json:"error,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Duration  time.Duration `json:"duration"`
}

// AggregatedResult combines all check results. The overall status is
// unhealthy if any check fails.
type AggregatedResult struct {
	Status    Status        `json:"status"`
	Checks    []CheckResult `json:"checks"`
	Timestamp time.Time     `json:"timestamp"`
}

// Checkable is implemented by components that support health checks.
type Checkable interface {
	HealthCheck(ctx context.Context) error
}

type checker struct {
	name    string
	target  Checkable
	timeout time.Duration
}

// Registry manages a collection of health checks.
type Registry struct {
	mu       sync.RWMutex
	checkers []checker
}

// NewRegistry creates an empty health check registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Register adds a named health check with a per-check timeout.
func (r *Registry) Register(name string, target Checkable, timeout time.Duration) {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.checkers = append(r.checkers, checker{name: name, target: target, timeout: timeout})
}

// Check runs all registered health checks concurrently.
func (r *Registry) Check(ctx context.Context) AggregatedResult {
	r.mu.RLock()
	checkers := append([]checker(nil), r.checkers...)
	r.mu.RUnlock()

	results := make([]CheckResult, len(checkers))
	var wg sync.WaitGroup
	for i, c := range checkers {
		wg.Add(1)
		go func(i int, c checker) {
			defer wg.Done()
			results[i] = c.run(ctx)
		}(i, c)
	}
	wg.Wait()

	aggregated := AggregatedResult{
		Status:    StatusHealthy,
		Checks:    results,
		Timestamp: time.Now().UTC(),
	}
	for _, result := range results {
		if result.Status != StatusHealthy {
			aggregated.Status = StatusUnhealthy
			break
		}
	}
	return aggregated
}

func (c checker) run(ctx context.Context) CheckResult {
	checkCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	err := c.target.HealthCheck(checkCtx)
	result := CheckResult{
		Name:      c.name,
		Status:    StatusHealthy,
		Timestamp: time.Now().UTC(),
		Duration:  time.Since(start),
	}
	if err != nil {
		result.Status = StatusUnhealthy
		result.Error = err.Error()
	}
	return result
}
