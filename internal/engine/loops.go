package engine

import (
	"context"
	"time"

	"solana-trading-agent/internal/observability"
)

// Default intervals for the background loops.
const (
	DefaultHeartbeatInterval = 5 * time.Minute
	DefaultRankingInterval   = time.Minute
)

// RunHeartbeat emits a periodic liveness signal until ctx is cancelled.
func (e *Engine) RunHeartbeat(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultHeartbeatInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			observability.RecordHeartbeat()
			observability.DefaultMetrics.UptimeSeconds.Add(interval.Seconds())
			e.logger.Printf("heartbeat: agent alive")
		}
	}
}

// RunRankingRefresh periodically recomputes trader rankings. Without a
// configured Ranker each pass is a no-op. Errors are logged and the loop
// continues.
func (e *Engine) RunRankingRefresh(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultRankingInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := e.registry.RefreshRankings(ctx); err != nil {
				e.logger.Printf("ranking refresh: %v", err)
			}
		}
	}
}
