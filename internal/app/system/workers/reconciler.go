// internal/app/system/workers/reconciler.go
package workers

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/dalemusser/tenanthub/internal/app/system/metrics"
	"github.com/dalemusser/tenanthub/internal/app/system/timeouts"
	"go.uber.org/zap"
)

// OrganizationLister lists catalog organization names.
type OrganizationLister interface {
	ListNames(ctx context.Context) ([]string, error)
}

// PartitionLister lists the organization names that own a partition.
type PartitionLister interface {
	List(ctx context.Context) ([]string, error)
}

// Drift is what one reconciliation pass found.
type Drift struct {
	Orphaned []string // partitions with no catalog organization
	Missing  []string // organizations whose partition is gone
}

// Clean reports whether catalog and partitions agree.
func (d Drift) Clean() bool {
	return len(d.Orphaned) == 0 && len(d.Missing) == 0
}

// Reconciler is a background worker that compares the catalog with the
// materialized partitions and reports drift left by partial failures.
// It never repairs anything.
type Reconciler struct {
	orgs     OrganizationLister
	parts    PartitionLister
	log      *zap.Logger
	interval time.Duration
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewReconciler creates a reconciler that runs every interval once started.
func NewReconciler(orgs OrganizationLister, parts PartitionLister, logger *zap.Logger, interval time.Duration) *Reconciler {
	return &Reconciler{
		orgs:     orgs,
		parts:    parts,
		log:      logger,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start begins the background loop.
func (w *Reconciler) Start() {
	w.wg.Add(1)
	go w.run()
	w.log.Info("partition reconciler started", zap.Duration("interval", w.interval))
}

// Stop signals the worker to stop and waits for it to finish.
func (w *Reconciler) Stop() {
	close(w.stopCh)
	w.wg.Wait()
	w.log.Info("partition reconciler stopped")
}

func (w *Reconciler) run() {
	defer w.wg.Done()

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.stopCh:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), timeouts.Long())
			_, _ = w.Reconcile(ctx)
			cancel()
		}
	}
}

// Reconcile runs one pass, logs every drifted name and updates the drift
// gauges. A lifecycle operation in flight can show up as drift for one
// pass.
func (w *Reconciler) Reconcile(ctx context.Context) (Drift, error) {
	orgs, err := w.orgs.ListNames(ctx)
	if err != nil {
		w.log.Error("reconcile: list organizations failed", zap.Error(err))
		return Drift{}, err
	}
	parts, err := w.parts.List(ctx)
	if err != nil {
		w.log.Error("reconcile: list partitions failed", zap.Error(err))
		return Drift{}, err
	}

	d := Drift{
		Orphaned: difference(parts, orgs),
		Missing:  difference(orgs, parts),
	}
	for _, name := range d.Orphaned {
		w.log.Warn("reconcile: partition has no organization", zap.String("organization", name))
	}
	for _, name := range d.Missing {
		w.log.Warn("reconcile: organization has no partition", zap.String("organization", name))
	}
	metrics.SetPartitionDrift(len(d.Orphaned), len(d.Missing))
	return d, nil
}

// difference returns the sorted names in a that are not in b.
func difference(a, b []string) []string {
	seen := make(map[string]struct{}, len(b))
	for _, n := range b {
		seen[n] = struct{}{}
	}
	var out []string
	for _, n := range a {
		if _, ok := seen[n]; !ok {
			out = append(out, n)
		}
	}
	slices.Sort(out)
	return out
}
