package zfs

import (
	"context"
	"fmt"
	"time"

	"github.com/goopey7/brig/internal/brigerr"
	"github.com/goopey7/brig/internal/transport"
)

// TagPrefix is the prefix every coordinator-managed snapshot tag carries.
const TagPrefix = "brig-"

// TagLayout is the local-time format used inside the tag.
const TagLayout = "20060102150405"

// NewTag synthesizes a fresh brig-YYYYMMDDHHMMSS tag from the local clock.
func NewTag(now time.Time) string {
	return TagPrefix + now.Local().Format(TagLayout)
}

// CreateSnapshot mints a managed snapshot on pool/dataset and returns the
// full pool/dataset@tag.
func (k *Toolkit) CreateSnapshot(ctx context.Context, ep transport.Endpoint, pool, dataset string) (string, error) {
	fqsn := fmt.Sprintf("%s/%s@%s", pool, dataset, NewTag(time.Now()))

	_, _, stderr, err := k.t.RunCollect(ctx, ep, []string{"zfs", "snapshot", fqsn})
	if err != nil {
		return "", err
	}
	if len(stderr) > 0 {
		return "", brigerr.ZfsCommandError(string(stderr))
	}
	return fqsn, nil
}
