package health

import (
	"context"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/labstack/echo/v4"
)

const (
	statusHealthy   = "healthy"
	statusUnhealthy = "unhealthy"
)

// Pinger reports whether a dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingerFunc adapts a function to Pinger.
type PingerFunc func(ctx context.Context) error

func (f PingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type check struct {
	name   string
	pinger Pinger
}

// Checker handles health check endpoints
type Checker struct {
	checks    []check
	version   string
	timeout   time.Duration
	startTime time.Time
	ready     atomic.Bool
}

// NewChecker creates a new health checker
func NewChecker(version string) *Checker {
	return &Checker{
		version:   version,
		timeout:   2 * time.Second,
		startTime: time.Now(),
	}
}

// AddCheck registers a dependency to ping on every health request.
func (c *Checker) AddCheck(name string, pinger Pinger) {
	c.checks = append(c.checks, check{name: name, pinger: pinger})
}

// SetReady sets the readiness state
func (c *Checker) SetReady(ready bool) {
	c.ready.Store(ready)
}

// Register registers health check endpoints
func (c *Checker) Register(g *echo.Group) {
	g.GET("", c.Health)
	g.GET("/live", c.Live)
	g.GET("/ready", c.Ready)
}

// HealthStatus represents the health check response
type HealthStatus struct {
	Status     string                  `json:"status"`
	Version    string                  `json:"version"`
	Uptime     string                  `json:"uptime"`
	Checks     map[string]*CheckResult `json:"checks"`
	ReportedAt time.Time               `json:"reported_at"`
}

// CheckResult represents an individual check result
type CheckResult struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Latency string `json:"latency,omitempty"`
}

// Status pings every registered dependency.
func (c *Checker) Status(ctx context.Context) *HealthStatus {
	status := &HealthStatus{
		Status:     statusHealthy,
		Version:    c.version,
		Uptime:     time.Since(c.startTime).Round(time.Second).String(),
		Checks:     make(map[string]*CheckResult, len(c.checks)),
		ReportedAt: time.Now().UTC(),
	}

	for _, chk := range c.checks {
		pingCtx, cancel := context.WithTimeout(ctx, c.timeout)
		start := time.Now()
		err := chk.pinger.Ping(pingCtx)
		latency := time.Since(start)
		cancel()

		if err != nil {
			status.Status = statusUnhealthy
			status.Checks[chk.name] = &CheckResult{
				Status:  statusUnhealthy,
				Message: err.Error(),
			}
			continue
		}
		status.Checks[chk.name] = &CheckResult{
			Status:  statusHealthy,
			Latency: latency.String(),
		}
	}

	return status
}

// Names returns the registered check names, sorted.
func (c *Checker) Names() []string {
	out := make([]string, 0, len(c.checks))
	for _, chk := range c.checks {
		out = append(out, chk.name)
	}
	sort.Strings(out)
	return out
}

// Health returns the overall health status
func (c *Checker) Health(ctx echo.Context) error {
	status := c.Status(ctx.Request().Context())

	httpStatus := http.StatusOK
	if status.Status == statusUnhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	return ctx.JSON(httpStatus, status)
}

// Live returns the liveness status (is the service running)
func (c *Checker) Live(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, map[string]string{"status": "alive"})
}

// Ready returns the readiness status (is the service ready to accept traffic)
func (c *Checker) Ready(ctx echo.Context) error {
	if c.ready.Load() {
		return ctx.JSON(http.StatusOK, map[string]string{"status": "ready"})
	}
	return ctx.JSON(http.StatusServiceUnavailable, map[string]string{"status": "not ready"})
}
