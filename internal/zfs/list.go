package zfs

import (
	"context"

	"github.com/goopey7/brig/internal/brigerr"
	"github.com/goopey7/brig/internal/transport"
)

// ListSnapshotsDesc lists snapshots for pool/dataset, newest first — used
// for discovery's "most recent common tag" scan.
func (k *Toolkit) ListSnapshotsDesc(ctx context.Context, ep transport.Endpoint, pool, dataset string) ([]string, error) {
	return k.listSnapshots(ctx, ep, pool, dataset, "-S")
}

// ListSnapshotsAsc lists snapshots oldest first — used by retention.
func (k *Toolkit) ListSnapshotsAsc(ctx context.Context, ep transport.Endpoint, pool, dataset string) ([]string, error) {
	return k.listSnapshots(ctx, ep, pool, dataset, "-s")
}

func (k *Toolkit) listSnapshots(ctx context.Context, ep transport.Endpoint, pool, dataset, sortFlag string) ([]string, error) {
	scope := pool + "/" + dataset
	args := []string{"zfs", "list", "-t", "snapshot", "-o", "name", sortFlag, "creation", scope}

	_, stdout, stderr, err := k.t.RunCollect(ctx, ep, args)
	if err != nil {
		return nil, err
	}
	if len(stderr) > 0 {
		return nil, brigerr.ZfsCommandError(string(stderr))
	}

	lines := splitLines(string(stdout))
	if len(lines) == 0 {
		return nil, brigerr.NoSnapshotsFound(pool, dataset)
	}
	// Skip the header row ("NAME").
	return lines[1:], nil
}
