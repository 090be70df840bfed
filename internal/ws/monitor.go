package ws

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Monitor periodically reclaims connections that stopped acknowledging
// liveness probes. Probing itself happens on each client's write pump ping
// ticker; the pong handler and application-level ping messages both refresh
// the same timestamp the sweep reads.
type Monitor struct {
	registry *Registry
	interval time.Duration
	timeout  time.Duration
}

func NewMonitor(registry *Registry, interval, timeout time.Duration) *Monitor {
	return &Monitor{
		registry: registry,
		interval: interval,
		timeout:  timeout,
	}
}

func (m *Monitor) Run(ctx context.Context) {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			m.Sweep(now)
		}
	}
}

// Sweep evicts every connection whose last liveness acknowledgement is older
// than the timeout. Eviction is silent towards the peer, who is presumed
// already gone.
func (m *Monitor) Sweep(now time.Time) {
	for _, clientID := range m.registry.Stale(now, m.timeout) {
		if m.registry.Evict(clientID) {
			zap.L().Info("evicted unresponsive connection", zap.String("client_id", clientID))
		}
	}
}
