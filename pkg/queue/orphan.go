package queue

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

// orphanState tracks orphan detection metrics (thread-safe).
type orphanState struct {
	mu               sync.Mutex
	lastOrphanScan   time.Time
	orphansRecovered int
}

// runOrphanDetection periodically scans for stale claims. All pods run
// this independently — ReleaseClaim is idempotent, so overlapping scans
// across pods are harmless.
func (p *WorkerPool) runOrphanDetection(ctx context.Context) {
	ticker := time.NewTicker(p.config.OrphanDetectionInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-p.stopCh:
			return
		case <-ticker.C:
			if err := p.detectAndRecoverOrphans(ctx); err != nil {
				slog.Error("orphan detection failed", "error", err)
			}
		}
	}
}

// detectAndRecoverOrphans finds claims older than config.OrphanThreshold
// still in "Checking" status — workers that died before reaching a
// decision — and releases them back to "Received" for reclaiming.
func (p *WorkerPool) detectAndRecoverOrphans(ctx context.Context) error {
	orphans, err := p.store.StaleClaims(ctx, p.config.OrphanThreshold)
	if err != nil {
		return err
	}

	if len(orphans) == 0 {
		p.orphans.mu.Lock()
		p.orphans.lastOrphanScan = time.Now()
		p.orphans.mu.Unlock()
		return nil
	}

	slog.Warn("detected orphaned claims", "count", len(orphans))

	recovered := 0
	failed := 0
	for _, jid := range orphans {
		if err := p.store.ReleaseClaim(ctx, jid); err != nil {
			slog.Error("failed to release orphaned claim", "job_id", jid, "error", err)
			failed++
			continue
		}
		recovered++
	}

	p.orphans.mu.Lock()
	p.orphans.lastOrphanScan = time.Now()
	p.orphans.orphansRecovered += recovered
	p.orphans.mu.Unlock()

	if failed > 0 {
		slog.Warn("orphan recovery completed with failures",
			"total_orphans", len(orphans), "recovered", recovered, "failed", failed)
	}

	return nil
}

// CleanupStartupOrphans performs a one-time sweep for claims left behind
// by a previous, crashed instance of this process, using a zero threshold
// so every outstanding "Checking" claim is reclaimed regardless of age.
// Called once during Start, before workers begin polling.
func CleanupStartupOrphans(ctx context.Context, store Store, _ time.Duration) error {
	orphans, err := store.StaleClaims(ctx, 0)
	if err != nil {
		return err
	}

	if len(orphans) == 0 {
		return nil
	}

	slog.Warn("found startup orphans from previous run", "count", len(orphans))

	for _, jid := range orphans {
		if err := store.ReleaseClaim(ctx, jid); err != nil {
			slog.Error("failed to release startup orphan", "job_id", jid, "error", err)
			continue
		}
		slog.Info("startup orphan recovered", "job_id", jid)
	}

	return nil
}
