package httpapi

import (
	"net/http"

	"golang.org/x/sync/errgroup"

	"github.com/goopey7/brig/internal/transport"
)

type datasetSnapshot struct {
	Pool     string `json:"pool"`
	Dataset  string `json:"dataset"`
	Snapshot string `json:"snapshot"`
}

type serverStatus struct {
	Server   string            `json:"server"`
	Datasets []datasetSnapshot `json:"datasets"`
}

// handleStatus inventories every server's snapshot list for every
// dataset (§4.8), fanned out concurrently with errgroup.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	cfg := s.store.Snapshot()
	results := make([]serverStatus, len(cfg.Servers))

	g, ctx := errgroup.WithContext(r.Context())
	for i, srv := range cfg.Servers {
		i, srv := i, srv
		g.Go(func() error {
			ep := transport.Endpoint{User: srv.User, Address: srv.Address}
			var entries []datasetSnapshot
			for _, ds := range cfg.Datasets {
				snaps, err := s.toolkit.ListSnapshotsDesc(ctx, ep, srv.Pool, ds.Name)
				if err != nil || len(snaps) == 0 {
					continue
				}
				entries = append(entries, datasetSnapshot{Pool: srv.Pool, Dataset: ds.Name, Snapshot: snaps[0]})
			}
			results[i] = serverStatus{Server: srv.Name, Datasets: entries}
			return nil
		})
	}
	_ = g.Wait()

	writeJSON(w, results)
}
