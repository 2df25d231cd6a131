package health

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Status represents the health status of a check or of the whole service
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusUnhealthy Status = "unhealthy"
)

const defaultTimeout = 2 * time.Second

// CheckFunc returns nil when the dependency it probes is usable.
type CheckFunc func(ctx context.Context) error

// Result is the outcome of one check
type Result struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Message  string        `json:"message"`
	Duration time.Duration `json:"duration"`
}

// Report aggregates every registered check. Overall status is unhealthy as soon as one
// check fails.
type Report struct {
	Status    Status    `json:"status"`
	Checks    []Result  `json:"checks"`
	Timestamp time.Time `json:"timestamp"`
}

type check struct {
	name    string
	fn      CheckFunc
	timeout time.Duration
}

// Checker runs named readiness checks on demand
type Checker struct {
	logger *logrus.Logger
	mu     sync.RWMutex
	checks []check
}

// NewChecker creates an empty checker
func NewChecker(logger *logrus.Logger) *Checker {
	if logger == nil {
		logger = logrus.New()
	}
	return &Checker{logger: logger}
}

// Register adds a check. A zero timeout uses the default of two seconds.
func (c *Checker) Register(name string, timeout time.Duration, fn CheckFunc) {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.checks = append(c.checks, check{name: name, fn: fn, timeout: timeout})
}

// Run executes all checks concurrently and returns them sorted by name.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := append([]check(nil), c.checks...)
	c.mu.RUnlock()

	results := make([]Result, len(checks))
	var wg sync.WaitGroup
	for i, chk := range checks {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = c.execute(ctx, chk)
		}()
	}
	wg.Wait()

	sort.Slice(results, func(i, j int) bool { return results[i].Name < results[j].Name })

	report := Report{Status: StatusHealthy, Checks: results, Timestamp: time.Now().UTC()}
	for _, r := range results {
		if r.Status != StatusHealthy {
			report.Status = StatusUnhealthy
			break
		}
	}
	return report
}

func (c *Checker) execute(ctx context.Context, chk check) (result Result) {
	start := time.Now()
	checkCtx, cancel := context.WithTimeout(ctx, chk.timeout)
	defer cancel()

	result = Result{Name: chk.name, Status: StatusHealthy, Message: "OK"}
	defer func() {
		result.Duration = time.Since(start)
		if result.Status != StatusHealthy {
			c.logger.WithFields(logrus.Fields{
				"check":    chk.name,
				"duration": result.Duration,
				"message":  result.Message,
			}).Warn("Health check failed")
		}
	}()

	errCh := make(chan error, 1)
	go func() {
		defer func() {
			if p := recover(); p != nil {
				errCh <- fmt.Errorf("check panicked: %v", p)
			}
		}()
		errCh <- chk.fn(checkCtx)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			result.Status = StatusUnhealthy
			result.Message = err.Error()
		}
	case <-checkCtx.Done():
		result.Status = StatusUnhealthy
		result.Message = fmt.Sprintf("timed out after %s", chk.timeout)
	}
	return result
}
