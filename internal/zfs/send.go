package zfs

import (
	"context"
	"strconv"
	"strings"

	"github.com/goopey7/brig/internal/brigerr"
	"github.com/goopey7/brig/internal/transport"
)

// EstimateSendSize runs an incremental dry-run send and parses the
// "size" line per the size-line parse rule in §6: the line beginning
// "size" whose second whitespace-separated field is a decimal byte
// count.
func (k *Toolkit) EstimateSendSize(ctx context.Context, ep transport.Endpoint, from, to string) (uint64, error) {
	args := []string{"zfs", "send", "-n", "-P", "-i", from, to}

	_, stdout, stderr, err := k.t.RunCollect(ctx, ep, args)
	if err != nil {
		return 0, err
	}
	if len(stderr) > 0 {
		return 0, brigerr.ZfsCommandError(string(stderr))
	}

	for _, line := range splitLines(string(stdout)) {
		fields := strings.Fields(line)
		if len(fields) >= 2 && fields[0] == "size" {
			n, parseErr := strconv.ParseUint(fields[1], 10, 64)
			if parseErr != nil {
				return 0, brigerr.ZfsCommandError("malformed size line: " + line)
			}
			return n, nil
		}
	}
	return 0, brigerr.ZfsCommandError("no size line in dry-run send output")
}

// SpawnSend starts a real incremental send with piped stdout.
func (k *Toolkit) SpawnSend(ctx context.Context, ep transport.Endpoint, from, to string) (*transport.Stream, error) {
	return k.t.RunStreamed(ctx, ep, []string{"zfs", "send", "-i", from, to})
}

// SpawnRecv starts a recv on pool/dataset with piped stdin, forcing
// alignment with the incoming stream per §4.5 step 5.
func (k *Toolkit) SpawnRecv(ctx context.Context, ep transport.Endpoint, pool, dataset string) (*transport.Stream, error) {
	return k.t.RunStreamed(ctx, ep, []string{"zfs", "recv", "-F", pool + "/" + dataset})
}
