// Package retention implements the age-based snapshot GC (§4.7): per
// dataset, compute a cutoff from snapshot_lifetime, and destroy every
// managed snapshot older than it on every server.
package retention

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strconv"
	"time"

	"github.com/goopey7/brig/internal/config"
	"github.com/goopey7/brig/internal/logging"
	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

type Retention struct {
	store   *config.Store
	toolkit *zfs.Toolkit
	log     *slog.Logger
}

func New(store *config.Store, toolkit *zfs.Toolkit, log *slog.Logger) *Retention {
	return &Retention{store: store, toolkit: toolkit, log: log}
}

// snapshotNameRE anchors "<pool>/<dataset>@brig-(\d{14})$" per §4.7,
// built per-dataset since pool is server-specific.
func snapshotNameRE(pool, dataset string) *regexp.Regexp {
	return regexp.MustCompile(`^` + regexp.QuoteMeta(pool+"/"+dataset+"@"+zfs.TagPrefix) + `(\d{14})$`)
}

// cutoffFor computes the lexicographically-comparable cutoff string for
// a snapshot_lifetime value ("Nd", "Nw" = 7N days, "NM" = 30N days; any
// other suffix disables retention for the dataset).
func cutoffFor(lifetime string, now time.Time) (string, bool) {
	if len(lifetime) < 2 {
		return "", false
	}
	suffix := lifetime[len(lifetime)-1]
	n, err := strconv.Atoi(lifetime[:len(lifetime)-1])
	if err != nil {
		return "", false
	}

	var days int
	switch suffix {
	case 'd':
		days = n
	case 'w':
		days = n * 7
	case 'M':
		days = n * 30
	default:
		return "", false
	}

	cutoff := now.AddDate(0, 0, -days)
	return cutoff.Format(zfs.TagLayout), true
}

// Run scans every (server, dataset) pair and destroys expired managed
// snapshots. Callers invoke it synchronously from the /clean handler. It
// takes no lock against the replicator and does not consult the progress
// registry, so it can run while transfers of the same dataset are in
// flight.
func (r *Retention) Run(ctx context.Context) error {
	cfg := r.store.Snapshot()
	now := time.Now()

	for _, ds := range cfg.Datasets {
		cutoff, enabled := cutoffFor(ds.SnapshotLifetime, now)
		if !enabled {
			continue
		}
		for _, srv := range cfg.Servers {
			ep := transport.Endpoint{User: srv.User, Address: srv.Address}
			snaps, err := r.toolkit.ListSnapshotsAsc(ctx, ep, srv.Pool, ds.Name)
			if err != nil {
				r.warn(err, ds.Name, srv.Name)
				continue
			}

			re := snapshotNameRE(srv.Pool, ds.Name)
			for _, snap := range snaps {
				m := re.FindStringSubmatch(snap)
				if m == nil {
					continue
				}
				if m[1] >= cutoff {
					continue
				}
				if err := r.toolkit.Destroy(ctx, ep, snap); err != nil {
					r.warn(err, ds.Name, srv.Name)
				}
			}
		}
	}
	return nil
}

func (r *Retention) warn(err error, dataset, server string) {
	if r.log == nil {
		return
	}
	logging.WithError(r.log, err, "retention").Warn(fmt.Sprintf("failed on dataset %s server %s", dataset, server))
}
