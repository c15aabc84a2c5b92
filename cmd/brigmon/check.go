package main

import (
	"context"
	"fmt"
	"time"

	"github.com/dsh2dsh/go-monitoringplugin/v2"

	"github.com/goopey7/brig/internal/config"
	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

// ReplicaLagCheck mirrors the teacher's SnapCheck builder shape (With...
// methods, UpdateStatus, a monitoringplugin.Response) re-pointed at this
// domain's owner/replica lag question instead of zrepl's per-job
// snapshot-count rules.
type ReplicaLagCheck struct {
	resp   *monitoringplugin.Response
	warn   time.Duration
	crit   time.Duration
	failed bool
}

func NewReplicaLagCheck(resp *monitoringplugin.Response) *ReplicaLagCheck {
	return &ReplicaLagCheck{resp: resp}
}

func (c *ReplicaLagCheck) WithThresholds(warn, crit time.Duration) *ReplicaLagCheck {
	c.warn = warn
	c.crit = crit
	return c
}

// Run checks every dataset: CRITICAL if the owner has zero snapshots,
// WARNING/CRITICAL if any replica's latest tag is older than the
// configured thresholds relative to the owner's latest tag.
func (c *ReplicaLagCheck) Run(ctx context.Context, store *config.Store, toolkit *zfs.Toolkit) error {
	snap := store.Snapshot()

	for _, ds := range snap.Datasets {
		owner, ok := store.FindServer(ds.Server)
		if !ok {
			c.updateStatus(monitoringplugin.CRITICAL, "dataset %q: owner %q not found", ds.Name, ds.Server)
			continue
		}

		ownerEp := transport.Endpoint{User: owner.User, Address: owner.Address}
		ownerSnaps, err := toolkit.ListSnapshotsDesc(ctx, ownerEp, owner.Pool, ds.Name)
		if err != nil || len(ownerSnaps) == 0 {
			c.updateStatus(monitoringplugin.CRITICAL, "dataset %q: owner has no snapshots", ds.Name)
			continue
		}
		ownerTime, err := tagTime(zfs.TagOf(ownerSnaps[0]))
		if err != nil {
			c.updateStatus(monitoringplugin.CRITICAL, "dataset %q: unparsable owner tag", ds.Name)
			continue
		}

		for _, srv := range snap.Servers {
			if srv.Name == owner.Name {
				continue
			}
			c.checkReplica(ctx, toolkit, ds.Name, ownerTime, srv)
		}
	}

	if !c.failed {
		c.resp.UpdateStatus(monitoringplugin.OK, "all datasets within threshold")
	}
	return nil
}

func (c *ReplicaLagCheck) checkReplica(ctx context.Context, toolkit *zfs.Toolkit, dataset string, ownerTime time.Time, srv config.Server) {
	ep := transport.Endpoint{User: srv.User, Address: srv.Address}
	snaps, err := toolkit.ListSnapshotsDesc(ctx, ep, srv.Pool, dataset)
	if err != nil || len(snaps) == 0 {
		c.updateStatus(monitoringplugin.WARNING, "dataset %q: replica %q has no snapshots", dataset, srv.Name)
		return
	}

	replicaTime, err := tagTime(zfs.TagOf(snaps[0]))
	if err != nil {
		c.updateStatus(monitoringplugin.WARNING, "dataset %q: replica %q unparsable tag", dataset, srv.Name)
		return
	}

	lag := ownerTime.Sub(replicaTime)
	switch {
	case lag > c.crit:
		c.updateStatus(monitoringplugin.CRITICAL, "dataset %q: replica %q lagging by %v", dataset, srv.Name, lag)
	case lag > c.warn:
		c.updateStatus(monitoringplugin.WARNING, "dataset %q: replica %q lagging by %v", dataset, srv.Name, lag)
	}
}

func (c *ReplicaLagCheck) updateStatus(code int, format string, a ...any) {
	c.failed = c.failed || code != monitoringplugin.OK
	c.resp.UpdateStatus(code, fmt.Sprintf(format, a...))
}

func tagTime(tag string) (time.Time, error) {
	trimmed := tag
	if len(tag) > len(zfs.TagPrefix) && tag[:len(zfs.TagPrefix)] == zfs.TagPrefix {
		trimmed = tag[len(zfs.TagPrefix):]
	}
	return time.ParseInLocation(zfs.TagLayout, trimmed, time.Local)
}
