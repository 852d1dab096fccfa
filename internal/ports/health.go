package ports

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"
)

var (
	ErrDuplicateChecker = errors.New("duplicate health checker")

	// ErrDegraded, wrapped by a checker, reports a component that still works
	// in a reduced mode, such as liked quotes held only in memory. It makes
	// the result degraded, not unhealthy.
	ErrDegraded = errors.New("degraded")
)

// HealthChecker is one named check behind /-/ready. Check must honor ctx.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

// HealthRegistry collects the checkers wired at startup.
type HealthRegistry interface {
	Register(checker HealthChecker) error
	CheckAll(ctx context.Context) *HealthResult
}

type HealthStatus string

const (
	HealthStatusHealthy   HealthStatus = "healthy"
	HealthStatusDegraded  HealthStatus = "degraded"
	HealthStatusUnhealthy HealthStatus = "unhealthy"
)

// HealthResult is the readiness body. Checks is keyed by checker name.
type HealthResult struct {
	Status    HealthStatus            `json:"status"`
	Checks    map[string]*CheckResult `json:"checks"`
	Timestamp time.Time               `json:"timestamp"`
}

// CheckResult carries the checker's error text in Message when it failed.
type CheckResult struct {
	Status   HealthStatus  `json:"status"`
	Message  string        `json:"message,omitempty"`
	Duration time.Duration `json:"duration"`
}

// DefaultHealthRegistry runs its checkers concurrently. Checkers are
// reported in registration order and names must be unique.
type DefaultHealthRegistry struct {
	mu       sync.RWMutex
	checkers []HealthChecker
	names    map[string]struct{}
}

func NewHealthRegistry() *DefaultHealthRegistry {
	return &DefaultHealthRegistry{names: map[string]struct{}{}}
}

func (r *DefaultHealthRegistry) Register(checker HealthChecker) error {
	name := checker.Name()

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, taken := r.names[name]; taken {
		return fmt.Errorf("%w: %s", ErrDuplicateChecker, name)
	}
	r.names[name] = struct{}{}
	r.checkers = append(r.checkers, checker)

	return nil
}

// CheckAll runs every checker and folds their states: unhealthy beats
// degraded, which beats healthy. No checkers means healthy.
func (r *DefaultHealthRegistry) CheckAll(ctx context.Context) *HealthResult {
	r.mu.RLock()
	checkers := slices.Clone(r.checkers)
	r.mu.RUnlock()

	results := make([]*CheckResult, len(checkers))

	var wg sync.WaitGroup
	for i, checker := range checkers {
		wg.Go(func() {
			results[i] = runCheck(ctx, checker)
		})
	}
	wg.Wait()

	overall := &HealthResult{
		Status:    HealthStatusHealthy,
		Checks:    make(map[string]*CheckResult, len(checkers)),
		Timestamp: time.Now(),
	}
	for i, checker := range checkers {
		overall.Checks[checker.Name()] = results[i]
		if severity[results[i].Status] > severity[overall.Status] {
			overall.Status = results[i].Status
		}
	}

	return overall
}

func runCheck(ctx context.Context, checker HealthChecker) *CheckResult {
	start := time.Now()
	err := checker.Check(ctx)

	res := &CheckResult{Status: HealthStatusHealthy, Duration: time.Since(start)}
	switch {
	case err == nil:
		return res
	case errors.Is(err, ErrDegraded):
		res.Status = HealthStatusDegraded
	default:
		res.Status = HealthStatusUnhealthy
	}
	res.Message = err.Error()

	return res
}

var severity = map[HealthStatus]int{
	HealthStatusHealthy:   0,
	HealthStatusDegraded:  1,
	HealthStatusUnhealthy: 2,
}
