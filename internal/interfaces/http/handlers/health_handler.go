package handlers

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/turtacn/funcgroup/pkg/types/common"
)

// HealthChecker is implemented by components that can report their health.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}

type checkerFunc struct {
	name string
	fn   func(ctx context.Context) error
}

func (c checkerFunc) Name() string                    { return c.name }
func (c checkerFunc) Check(ctx context.Context) error { return c.fn(ctx) }

// NewChecker adapts a ping function to HealthChecker.
func NewChecker(name string, fn func(ctx context.Context) error) HealthChecker {
	return checkerFunc{name: name, fn: fn}
}

// HealthHandler serves liveness and readiness checks.
type HealthHandler struct {
	checkers []HealthChecker
	version  string
	timeout  time.Duration
}

// NewHealthHandler creates a HealthHandler.  Checkers are optional
// dependencies: a failing one degrades /healthz but fails /readyz.
func NewHealthHandler(version string, checkers ...HealthChecker) *HealthHandler {
	return &HealthHandler{
		checkers: checkers,
		version:  version,
		timeout:  5 * time.Second,
	}
}

// Liveness handles GET /healthz.  It answers 200 while the process serves
// requests and reports each dependency.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.report(r.Context(), common.HealthDegraded))
}

// Readiness handles GET /readyz and answers 503 when a dependency is down.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	rep := h.report(r.Context(), common.HealthDown)
	status := http.StatusOK
	if rep.Status != common.HealthUp {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, rep)
}

// report runs every checker; onFailure is the overall status when any fails.
func (h *HealthHandler) report(ctx context.Context, onFailure common.HealthStatus) common.HealthReport {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	components := h.checkAll(ctx)
	rep := common.HealthReport{
		Status:     common.HealthUp,
		Version:    h.version,
		Components: components,
	}
	for _, c := range components {
		if c.Status != common.HealthUp {
			rep.Status = onFailure
			break
		}
	}
	return rep
}

// checkAll runs all health checkers concurrently, sorted by name.
func (h *HealthHandler) checkAll(ctx context.Context) []common.ComponentHealth {
	results := make([]common.ComponentHealth, 0, len(h.checkers))
	var mu sync.Mutex
	var wg sync.WaitGroup

	for _, checker := range h.checkers {
		wg.Add(1)
		go func(c HealthChecker) {
			defer wg.Done()

			start := time.Now()
			err := c.Check(ctx)
			ch := common.ComponentHealth{
				Name:    c.Name(),
				Status:  common.HealthUp,
				Latency: time.Since(start).Truncate(time.Microsecond).String(),
			}
			if err != nil {
				ch.Status = common.HealthDown
				ch.Message = err.Error()
			}

			mu.Lock()
			results = append(results, ch)
			mu.Unlock()
		}(checker)
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })
	return results
}
