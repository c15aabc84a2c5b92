package replicator

import (
	"context"
	"io"

	"github.com/goopey7/brig/internal/brigerr"
	"github.com/goopey7/brig/internal/progress"
	"github.com/goopey7/brig/internal/transport"
)

// pump spawns a streaming send on the owner and a streaming recv on dst,
// then copies stdout to stdin in 64 KiB chunks, updating state's sent
// counter as it goes (§4.5 step 5).
func (r *Replicator) pump(ctx context.Context, ownerEp, dstEp transport.Endpoint, fromFQSN, toFQSN, dstPool, dataset string, state *progress.SyncState) error {
	send, err := r.toolkit.SpawnSend(ctx, ownerEp, fromFQSN, toFQSN)
	if err != nil {
		return err
	}
	recv, err := r.toolkit.SpawnRecv(ctx, dstEp, dstPool, dataset)
	if err != nil {
		return err
	}

	buf := make([]byte, pumpBufferSize)
	for {
		n, readErr := send.Stdout.Read(buf)
		if n > 0 {
			if _, writeErr := recv.Stdin.Write(buf[:n]); writeErr != nil {
				return brigerr.FailedToWrite(writeErr)
			}
			state.AddSent(uint64(n))
			if r.metrics != nil {
				r.metrics.BytesReplicated.WithLabelValues(dataset).Add(float64(n))
			}
		}
		if readErr == io.EOF {
			break
		}
		if readErr != nil {
			return brigerr.FailedToRead(readErr)
		}
	}

	if err := recv.Stdin.Close(); err != nil {
		return brigerr.FailedToShutdown(err)
	}
	if err := send.Wait(); err != nil {
		return brigerr.FailedToWaitForSend(err)
	}
	if err := recv.Wait(); err != nil {
		return brigerr.FailedToWaitForRecv(err)
	}
	return nil
}
