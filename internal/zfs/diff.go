package zfs

import (
	"context"

	"github.com/goopey7/brig/internal/transport"
)

// Diff returns the raw stdout of a diff against snapshot; empty stdout
// means "no working-set changes since snapshot" (§4.2).
func (k *Toolkit) Diff(ctx context.Context, ep transport.Endpoint, snapshot string) (string, error) {
	_, stdout, _, err := k.t.RunCollect(ctx, ep, []string{"zfs", "diff", snapshot})
	if err != nil {
		return "", err
	}
	return string(stdout), nil
}
