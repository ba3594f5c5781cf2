// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package stream

import (
	"context"
	"fmt"
	"time"

	"github.com/ManuGH/udapi/internal/health"
)

// HealthChecker reports a session's state to the health manager.
type HealthChecker struct {
	name    string
	session *Session
	now     func() time.Time
}

// NewHealthChecker reports s under name.
func NewHealthChecker(name string, s *Session) *HealthChecker {
	return &HealthChecker{name: name, session: s, now: s.opts.clock.Now}
}

func (c *HealthChecker) Name() string { return c.name }

func (c *HealthChecker) Check(_ context.Context) health.CheckResult {
	s := c.session
	switch st := s.State(); st {
	case StateStreaming:
		if s.Stale(c.now()) {
			last := s.live.lastActivity()
			return health.CheckResult{
				Status:  health.StatusDegraded,
				Message: fmt.Sprintf("stale: last activity %s", last.Format(time.RFC3339)),
			}
		}
		return health.CheckResult{Status: health.StatusHealthy, Message: string(st)}
	case StatePaused, StateConnecting, StateStopping:
		return health.CheckResult{Status: health.StatusDegraded, Message: string(st)}
	default:
		res := health.CheckResult{Status: health.StatusUnhealthy, Message: string(st)}
		if err := s.Err(); err != nil {
			res.Error = err.Error()
		}
		return res
	}
}
