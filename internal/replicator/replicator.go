// Package replicator implements the per-transfer state machine (§4.5):
// common-base discovery, snapshot mint, size estimate, early-return
// barrier, byte pump with progress update, completion cleanup.
package replicator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/goopey7/brig/internal/barrier"
	"github.com/goopey7/brig/internal/brigerr"
	"github.com/goopey7/brig/internal/config"
	"github.com/goopey7/brig/internal/logging"
	"github.com/goopey7/brig/internal/metrics"
	"github.com/goopey7/brig/internal/progress"
	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

const pumpBufferSize = 64 * 1024

type Replicator struct {
	store    *config.Store
	toolkit  *zfs.Toolkit
	registry *progress.Registry
	metrics  *metrics.Set
	log      *slog.Logger
}

func New(store *config.Store, toolkit *zfs.Toolkit, registry *progress.Registry, m *metrics.Set, log *slog.Logger) *Replicator {
	return &Replicator{store: store, toolkit: toolkit, registry: registry, metrics: m, log: log}
}

// SyncEntry is one element of a /sync response: either a live transfer's
// view or the typed error that kept it from being scheduled.
type SyncEntry struct {
	State *progress.SyncStateView
	Err   error
}

func (e SyncEntry) MarshalJSON() ([]byte, error) {
	if e.Err != nil {
		return json.Marshal(e.Err)
	}
	return json.Marshal(e.State)
}

type scheduledTransfer struct {
	dataset config.Dataset
	dst     config.Server
	state   *progress.SyncState
	barrier *barrier.Barrier
}

// Schedule enumerates every server except the owner as a destination for
// each named dataset, launches one goroutine per (dataset, dst) pair,
// and returns once every accepted transfer's early-return barrier has
// tripped — the bulk-handler contract in §5. Datasets already present in
// the registry are skipped and reported with their existing state.
func (r *Replicator) Schedule(ctx context.Context, names []string) []SyncEntry {
	if len(names) == 0 {
		names = r.store.DatasetNames()
	}

	// immediate holds entries for datasets that never launched a transfer
	// this round (unknown dataset/server, or already in flight).
	var immediate []SyncEntry
	var scheduled []*scheduledTransfer

	for _, name := range names {
		ds, ok := r.store.FindDataset(name)
		if !ok {
			immediate = append(immediate, SyncEntry{Err: brigerr.DatasetNotFoundInConfig(name)})
			continue
		}

		if existing, found := r.registry.FindByDataset(name); found {
			view := existing.Snapshot()
			r.fillRecentThroughput(&view)
			immediate = append(immediate, SyncEntry{State: &view})
			continue
		}

		owner, ok := r.store.FindServer(ds.Server)
		if !ok {
			immediate = append(immediate, SyncEntry{Err: brigerr.ServerNotFoundFromDataset(name, ds.Server)})
			continue
		}

		snap := r.store.Snapshot()
		for _, dst := range snap.Servers {
			if dst.Name == owner.Name {
				continue
			}
			state := progress.NewSyncState(ds.Name, owner.Name, dst.Name)
			r.registry.Insert(state)
			b := barrier.New()
			scheduled = append(scheduled, &scheduledTransfer{dataset: ds, dst: dst, state: state, barrier: b})
			go r.transferOne(ctx, owner, dst, ds, state, b)
		}
	}

	// Every goroutine above is already running concurrently; waiting on
	// their barriers in sequence here only serializes *consumption*, not
	// the underlying size estimation, so a slow estimate for one transfer
	// does not delay another's from completing (§5).
	out := make([]SyncEntry, 0, len(immediate)+len(scheduled))
	out = append(out, immediate...)
	for _, t := range scheduled {
		if err := t.barrier.Wait(ctx); err != nil {
			out = append(out, SyncEntry{Err: err})
			continue
		}
		view := t.state.Snapshot()
		r.fillRecentThroughput(&view)
		out = append(out, SyncEntry{State: &view})
	}
	return out
}

// fillRecentThroughput stamps the registry-wide rolling mean onto a view
// built outside of Registry.Snapshot (Schedule reports per-transfer views
// directly rather than a full registry snapshot).
func (r *Replicator) fillRecentThroughput(view *progress.SyncStateView) {
	if mean, _, ok := r.registry.RecentThroughput(); ok {
		view.RecentThroughputBytesPerSec = mean
	}
}

func (r *Replicator) transferOne(ctx context.Context, owner, dst config.Server, ds config.Dataset, state *progress.SyncState, b *barrier.Barrier) {
	start := time.Now()
	ownerEp := transport.Endpoint{User: owner.User, Address: owner.Address}
	dstEp := transport.Endpoint{User: dst.User, Address: dst.Address}

	defer func() {
		r.registry.Remove(state)
		if r.metrics != nil {
			r.metrics.TransfersInFlight.Dec()
		}
	}()
	if r.metrics != nil {
		r.metrics.TransfersInFlight.Inc()
	}

	commonTag, err := r.discoverCommonTag(ctx, ownerEp, dstEp, owner.Pool, dst.Pool, ds.Name)
	if err != nil {
		b.Trip(err)
		r.recordResult(ds.Name, "discover_failed", start)
		return
	}

	toFQSN, err := r.toolkit.CreateSnapshot(ctx, ownerEp, owner.Pool, ds.Name)
	if err != nil {
		b.Trip(err)
		r.recordResult(ds.Name, "mint_failed", start)
		return
	}

	fromFQSN := fmt.Sprintf("%s/%s@%s", owner.Pool, ds.Name, commonTag)
	total, err := r.toolkit.EstimateSendSize(ctx, ownerEp, fromFQSN, toFQSN)
	if err != nil {
		b.Trip(err)
		r.recordResult(ds.Name, "estimate_failed", start)
		return
	}
	state.SetTotal(total)

	b.Trip(nil)

	if err := r.pump(ctx, ownerEp, dstEp, fromFQSN, toFQSN, dst.Pool, ds.Name, state); err != nil {
		logging.WithError(r.log, err, "replicate").Error("transfer failed",
			slog.String("dataset", ds.Name), slog.String("dst", dst.Name))
		r.recordResult(ds.Name, "transfer_failed", start)
		return
	}
	r.recordResult(ds.Name, "ok", start)
}

func (r *Replicator) recordResult(dataset, result string, start time.Time) {
	if r.metrics == nil {
		return
	}
	r.metrics.TransferDuration.WithLabelValues(dataset, result).Observe(time.Since(start).Seconds())
}

// discoverCommonTag opens one session to each endpoint concurrently and
// finds the most recent tag present in both lists, comparing owner's
// list in creation-descending order (§4.5 tie-break rule).
func (r *Replicator) discoverCommonTag(ctx context.Context, ownerEp, dstEp transport.Endpoint, ownerPool, dstPool, dataset string) (string, error) {
	var ownerSnaps, dstSnaps []string

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		snaps, err := r.toolkit.ListSnapshotsDesc(gctx, ownerEp, ownerPool, dataset)
		if err != nil {
			return err
		}
		ownerSnaps = snaps
		return nil
	})
	g.Go(func() error {
		snaps, err := r.toolkit.ListSnapshotsDesc(gctx, dstEp, dstPool, dataset)
		if err != nil {
			return err
		}
		dstSnaps = snaps
		return nil
	})
	if err := g.Wait(); err != nil {
		return "", err
	}

	dstTags := make(map[string]struct{}, len(dstSnaps))
	for _, s := range dstSnaps {
		dstTags[zfs.TagOf(s)] = struct{}{}
	}
	for _, s := range ownerSnaps {
		tag := zfs.TagOf(s)
		if _, ok := dstTags[tag]; ok {
			return tag, nil
		}
	}
	return "", brigerr.NoCommonSnapshot(dataset)
}
