package zfs

import (
	"context"

	"github.com/goopey7/brig/internal/brigerr"
	"github.com/goopey7/brig/internal/transport"
)

// Destroy unconditionally destroys the caller's chosen snapshot; the
// caller is responsible for eligibility (§4.2).
func (k *Toolkit) Destroy(ctx context.Context, ep transport.Endpoint, snapshot string) error {
	_, _, stderr, err := k.t.RunCollect(ctx, ep, []string{"zfs", "destroy", snapshot})
	if err != nil {
		return err
	}
	if len(stderr) > 0 {
		return brigerr.ZfsCommandError(string(stderr))
	}
	return nil
}
