// Package switcher implements the ownership-transfer transaction (§4.6):
// fleet-wide synced-check, read-only flip, config mutation, persistence.
package switcher

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/yudai/gojsondiff"
	"github.com/yudai/gojsondiff/formatter"

	"github.com/goopey7/brig/internal/brigerr"
	"github.com/goopey7/brig/internal/config"
	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

type Switcher struct {
	store   *config.Store
	toolkit *zfs.Toolkit
	log     *slog.Logger
}

func New(store *config.Store, toolkit *zfs.Toolkit, log *slog.Logger) *Switcher {
	return &Switcher{store: store, toolkit: toolkit, log: log}
}

// Switch promotes newServerName to owner of datasetName, in the order
// fixed by §4.6: resolve, synced-check, clean-diff check, readonly flip,
// config commit.
func (s *Switcher) Switch(ctx context.Context, datasetName, newServerName string) error {
	ds, ok := s.store.FindDataset(datasetName)
	if !ok {
		return brigerr.DatasetNotFoundInConfig(datasetName)
	}
	oldOwner, ok := s.store.FindServer(ds.Server)
	if !ok {
		return brigerr.ServerNotFoundFromDataset(datasetName, ds.Server)
	}
	newOwner, ok := s.store.FindServer(newServerName)
	if !ok {
		return brigerr.ServerNotFoundFromRequest(newServerName)
	}

	latestTag, err := s.syncedCheck(ctx, ds)
	if err != nil {
		return err
	}

	oldOwnerEp := transport.Endpoint{User: oldOwner.User, Address: oldOwner.Address}
	latestFQSN := oldOwner.Pool + "/" + ds.Name + "@" + latestTag
	diff, err := s.toolkit.Diff(ctx, oldOwnerEp, latestFQSN)
	if err != nil {
		return err
	}
	if diff != "" {
		return brigerr.DatasetNotSynced(datasetName)
	}

	newOwnerEp := transport.Endpoint{User: newOwner.User, Address: newOwner.Address}
	if err := s.toolkit.SetReadonly(ctx, oldOwnerEp, oldOwner.Pool, ds.Name, true); err != nil {
		return err
	}
	if err := s.toolkit.SetReadonly(ctx, newOwnerEp, newOwner.Pool, ds.Name, false); err != nil {
		return err
	}

	before := s.store.Snapshot()
	if err := s.store.Mutate(func(c *config.Config) error {
		for i := range c.Datasets {
			if c.Datasets[i].Name == datasetName {
				c.Datasets[i].Server = newOwner.Name
			}
		}
		return nil
	}); err != nil {
		return err
	}
	// Persistence failure leaves the readonly flip unrolled back — a
	// known operational risk documented in §7 and §9, not redesigned here.
	if err := s.store.Persist(); err != nil {
		return err
	}

	s.logConfigDiff(before, s.store.Snapshot())
	return nil
}

// syncedCheck lists every server's snapshots for ds concurrently and
// requires the latest tag to agree fleet-wide, comparing by tag suffix
// only (§9 open question (a): the original compared full names including
// the pool prefix, which breaks across servers with different pool
// names; this is pinned to the tag).
func (s *Switcher) syncedCheck(ctx context.Context, ds config.Dataset) (string, error) {
	servers := s.store.Snapshot().Servers

	type result struct {
		server string
		tag    string
	}
	results := make([]result, len(servers))

	g, gctx := errgroup.WithContext(ctx)
	for i, srv := range servers {
		i, srv := i, srv
		g.Go(func() error {
			ep := transport.Endpoint{User: srv.User, Address: srv.Address}
			snaps, err := s.toolkit.ListSnapshotsDesc(gctx, ep, srv.Pool, ds.Name)
			if err != nil {
				return err
			}
			if len(snaps) == 0 {
				return brigerr.DatasetNotSynced(ds.Name)
			}
			results[i] = result{server: srv.Name, tag: zfs.TagOf(snaps[0])}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return "", err
	}

	latest := results[0].tag
	for _, r := range results[1:] {
		if r.tag != latest {
			return "", brigerr.DatasetNotSynced(ds.Name)
		}
	}
	return latest, nil
}

func (s *Switcher) logConfigDiff(before, after config.Config) {
	if s.log == nil {
		return
	}
	differ := gojsondiff.New()
	d, err := differ.Compare(toMap(before), toMap(after))
	if err != nil || !d.Modified() {
		return
	}
	f := formatter.NewDeltaFormatter()
	diffJSON, err := f.Format(d)
	if err != nil {
		return
	}
	s.log.Info("config committed", slog.String("diff", diffJSON))
}
