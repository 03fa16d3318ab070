package health

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
)

// HealthChecker is the contract component probes satisfy. The store checker
// implements it today; a gateway checker would slot in the same way.
type HealthChecker interface {
	Name() string
	IsHealthy() bool
	Start(ctx context.Context, interval time.Duration)
}

// ServiceHealthChecker folds component checkers into the single flag the
// health endpoint and startup gate read. It starts unhealthy and flips up
// once every component reports healthy.
type ServiceHealthChecker struct {
	healthy atomic.Int32
	deps    []HealthChecker
	log     zerolog.Logger
}

func NewServiceHealthChecker(log zerolog.Logger, deps ...HealthChecker) *ServiceHealthChecker {
	h := &ServiceHealthChecker{deps: deps, log: log}
	h.healthy.Store(0)
	return h
}

// IsHealthy reads the cached flag without touching any dependency.
func (h *ServiceHealthChecker) IsHealthy() bool { return h.healthy.Load() == 1 }

// Start re-evaluates component health on each tick until the context ends.
// Only transitions are logged.
func (h *ServiceHealthChecker) Start(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	prev := int32(0)
	evaluate := func() {
		var failing []string
		for _, dep := range h.deps {
			if !dep.IsHealthy() {
				failing = append(failing, dep.Name())
			}
		}
		cur := int32(1)
		if len(failing) > 0 {
			cur = 0
		}
		h.healthy.Store(cur)
		if cur != prev {
			if cur == 1 {
				h.log.Info().Msg("service healthy")
			} else {
				h.log.Error().Strs("failing", failing).Msg("service unhealthy")
			}
			prev = cur
		}
	}

	evaluate()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			evaluate()
		}
	}
}
