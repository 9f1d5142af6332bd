// Package health reports whether the durable store behind the order desk is
// reachable. The terminal "health" command renders its report.
package health

import (
	"context"
	"sort"
	"time"
)

const defaultTimeout = 3 * time.Second

// Pinger is anything that can prove it is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// DependencyStatus is the outcome of pinging one dependency.
type DependencyStatus struct {
	Name   string        `json:"name"`
	Status string        `json:"status"`
	Error  string        `json:"error,omitempty"`
	Took   time.Duration `json:"took"`
}

// Report is the readiness verdict over every dependency.
type Report struct {
	Status       string             `json:"status"`
	Dependencies []DependencyStatus `json:"dependencies"`
}

// Healthy reports whether every dependency answered.
func (r Report) Healthy() bool { return r.Status == "ok" }

type Checker struct {
	deps    map[string]Pinger
	timeout time.Duration
}

// NewChecker builds a readiness checker over the named dependencies.
func NewChecker(deps map[string]Pinger) *Checker {
	return &Checker{deps: deps, timeout: defaultTimeout}
}

// WithTimeout overrides the overall deadline for one Readiness call.
func (c *Checker) WithTimeout(d time.Duration) *Checker {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// Readiness pings every dependency under a shared deadline. Dependencies are
// reported in name order.
func (c *Checker) Readiness(ctx context.Context) Report {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	names := make([]string, 0, len(c.deps))
	for name := range c.deps {
		names = append(names, name)
	}
	sort.Strings(names)

	report := Report{Status: "ok", Dependencies: make([]DependencyStatus, 0, len(names))}
	for _, name := range names {
		start := time.Now()
		st := DependencyStatus{Name: name, Status: "ok"}
		if err := c.deps[name].Ping(ctx); err != nil {
			st.Status = "unhealthy"
			st.Error = err.Error()
			report.Status = "degraded"
		}
		st.Took = time.Since(start)
		report.Dependencies = append(report.Dependencies, st)
	}
	return report
}
