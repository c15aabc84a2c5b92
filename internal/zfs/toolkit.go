// Package zfs is a thin typed wrapper over the snapshot filesystem's CLI
// (§4.2): list, snapshot, send, recv, diff, set property, destroy. Every
// operation takes an endpoint and returns either a parsed value or a
// brigerr typed error; none of it knows about SSH — it drives a
// transport.Transport.
package zfs

import "github.com/goopey7/brig/internal/transport"

// Toolkit is the snapshot toolkit bound to one transport.
type Toolkit struct {
	t transport.Transport
}

func NewToolkit(t transport.Transport) *Toolkit {
	return &Toolkit{t: t}
}
