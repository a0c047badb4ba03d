// Package health runs liveness checks for the API's /healthz route.
package health

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"sync"
	"time"
)

// Status represents the health status of a component.
type Status string

const (
	StatusHealthy   Status = "healthy"
	StatusDegraded  Status = "degraded"
	StatusUnhealthy Status = "unhealthy"
)

// ComponentHealth represents the health of a single component.
type ComponentHealth struct {
	Name    string                 `json:"name"`
	Status  Status                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Latency time.Duration          `json:"latency_ns"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Check probes one component. Name and Latency are filled in by the Checker.
type Check func(ctx context.Context) ComponentHealth

// PingCheck wraps a ping function as a Check.
func PingCheck(ping func(ctx context.Context) error) Check {
	return func(ctx context.Context) ComponentHealth {
		if err := ping(ctx); err != nil {
			return ComponentHealth{Status: StatusUnhealthy, Message: err.Error()}
		}
		return ComponentHealth{Status: StatusHealthy}
	}
}

// Report is the outcome of one round of checks.
type Report struct {
	Status     Status            `json:"status"`
	Uptime     string            `json:"uptime"`
	Components []ComponentHealth `json:"components"`
}

// Config holds checker thresholds.
type Config struct {
	Timeout            time.Duration
	MemoryThresholdMB  uint64
	GoroutineThreshold int
}

// DefaultConfig returns default thresholds.
func DefaultConfig() Config {
	return Config{
		Timeout:            5 * time.Second,
		MemoryThresholdMB:  500,
		GoroutineThreshold: 1000,
	}
}

// Checker runs registered checks on demand.
type Checker struct {
	mu         sync.RWMutex
	cfg        Config
	startTime  time.Time
	components map[string]Check
}

// NewChecker creates a checker with the memory and goroutine checks built in.
func NewChecker(cfg Config) *Checker {
	return &Checker{
		cfg:        cfg,
		startTime:  time.Now(),
		components: make(map[string]Check),
	}
}

// Register adds or replaces a named check.
func (c *Checker) Register(name string, check Check) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.components[name] = check
}

// Run executes every check concurrently. A panicking check is reported as
// unhealthy. The overall status is the worst component status.
func (c *Checker) Run(ctx context.Context) Report {
	c.mu.RLock()
	checks := make(map[string]Check, len(c.components)+2)
	for k, v := range c.components {
		checks[k] = v
	}
	c.mu.RUnlock()
	checks["memory"] = c.checkMemory
	checks["goroutines"] = c.checkGoroutines

	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	var wg sync.WaitGroup
	results := make(chan ComponentHealth, len(checks))
	for name, check := range checks {
		wg.Add(1)
		go func(n string, chk Check) {
			defer wg.Done()
			start := time.Now()
			h := runCheck(ctx, chk)
			h.Name = n
			h.Latency = time.Since(start)
			results <- h
		}(name, check)
	}
	wg.Wait()
	close(results)

	report := Report{
		Status: StatusHealthy,
		Uptime: time.Since(c.startTime).Truncate(time.Second).String(),
	}
	for h := range results {
		report.Components = append(report.Components, h)
		switch h.Status {
		case StatusUnhealthy:
			report.Status = StatusUnhealthy
		case StatusDegraded:
			if report.Status == StatusHealthy {
				report.Status = StatusDegraded
			}
		}
	}
	sort.Slice(report.Components, func(i, j int) bool {
		return report.Components[i].Name < report.Components[j].Name
	})
	return report
}

func runCheck(ctx context.Context, chk Check) (h ComponentHealth) {
	defer func() {
		if r := recover(); r != nil {
			h = ComponentHealth{Status: StatusUnhealthy, Message: fmt.Sprintf("panic recovered: %v", r)}
		}
	}()
	return chk(ctx)
}

func (c *Checker) checkMemory(context.Context) ComponentHealth {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	allocMB := memStats.Alloc / 1024 / 1024

	h := ComponentHealth{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("Memory usage: %d MB", allocMB),
		Details: map[string]interface{}{
			"alloc_mb": allocMB,
			"sys_mb":   memStats.Sys / 1024 / 1024,
			"num_gc":   memStats.NumGC,
		},
	}
	if c.cfg.MemoryThresholdMB > 0 && allocMB > c.cfg.MemoryThresholdMB {
		h.Status = StatusDegraded
		h.Message = fmt.Sprintf("Memory usage high: %d MB", allocMB)
	}
	return h
}

func (c *Checker) checkGoroutines(context.Context) ComponentHealth {
	n := runtime.NumGoroutine()
	h := ComponentHealth{
		Status:  StatusHealthy,
		Message: fmt.Sprintf("Goroutine count: %d", n),
		Details: map[string]interface{}{"count": n},
	}
	if c.cfg.GoroutineThreshold > 0 && n > c.cfg.GoroutineThreshold {
		h.Status = StatusDegraded
		h.Message = fmt.Sprintf("High goroutine count: %d", n)
	}
	return h
}
