package preflight

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registry holds the registered checks and runs them concurrently.
type Registry struct {
	checks []Check
	logger *zap.Logger
}

// NewRegistry creates an empty check registry.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		checks: make([]Check, 0),
		logger: logger.Named("preflight"),
	}
}

// Register adds a check if it applies to the current platform.
// Unavailable checks are logged and skipped.
func (r *Registry) Register(c Check) {
	if c.IsAvailable() {
		r.checks = append(r.checks, c)
		r.logger.Debug("Registered check", zap.String("name", c.Name()))
	} else {
		r.logger.Debug("Check not available, skipping", zap.String("name", c.Name()))
	}
}

// RunAll runs every registered check concurrently and returns the results
// in registration order.
func (r *Registry) RunAll(ctx context.Context) []Result {
	results := make([]Result, len(r.checks))
	var wg sync.WaitGroup

	for i, c := range r.checks {
		wg.Add(1)
		go func(i int, c Check) {
			defer wg.Done()
			res := r.run(ctx, c)
			if res.Severity != OK {
				r.logger.Warn("Check did not pass",
					zap.String("check", res.Name),
					zap.Stringer("severity", res.Severity),
					zap.String("detail", res.Detail))
			}
			results[i] = res
		}(i, c)
	}

	wg.Wait()
	return results
}

// run executes one check. A panicking check is reported as a failure
// instead of taking the process down.
func (r *Registry) run(ctx context.Context, c Check) (res Result) {
	defer func() {
		if p := recover(); p != nil {
			r.logger.Error("Check panicked", zap.String("check", c.Name()), zap.Any("panic", p))
			res = Result{Severity: Fail, Detail: fmt.Sprintf("check panicked: %v", p)}
		}
		res.Name = c.Name()
	}()
	return c.Run(ctx)
}

// Checks returns a copy of all registered checks.
func (r *Registry) Checks() []Check {
	result := make([]Check, len(r.checks))
	copy(result, r.checks)
	return result
}

// Worst returns the highest severity among results.
func Worst(results []Result) Severity {
	worst := OK
	for _, res := range results {
		if res.Severity > worst {
			worst = res.Severity
		}
	}
	return worst
}
