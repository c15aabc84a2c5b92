package zfs

import (
	"context"

	"github.com/goopey7/brig/internal/brigerr"
	"github.com/goopey7/brig/internal/transport"
)

// SetReadonly runs the privileged property-set command. Any failure,
// whether the session itself or the command's exit status, is reported
// as ReadOnlyFail (§7).
func (k *Toolkit) SetReadonly(ctx context.Context, ep transport.Endpoint, pool, dataset string, on bool) error {
	value := "off"
	if on {
		value = "on"
	}
	scope := pool + "/" + dataset

	exitCode, _, _, err := k.t.RunCollect(ctx, ep, []string{"sudo", "zfs", "set", "readonly=" + value, scope})
	if err != nil {
		return brigerr.ReadOnlyFail(ep.User, ep.Address)
	}
	if exitCode != 0 {
		return brigerr.ReadOnlyFail(ep.User, ep.Address)
	}
	return nil
}
