package progress

import (
	"sync"

	"github.com/montanaflynn/stats"
)

const maxRecentThroughputs = 32

// Registry is the single source of truth for "is a transfer in flight";
// the replicator uses it to refuse duplicate scheduling (§4.4).
type Registry struct {
	mu      sync.RWMutex
	entries []*SyncState

	recent []float64 // bytes/sec of the last maxRecentThroughputs completed transfers
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Insert(s *SyncState) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, s)
}

// FindByDataset returns the first entry for dataset name, ignoring dst —
// this is the round-level duplicate-scheduling check described in §4.5
// ("if any transfer for dataset is already present, the dataset is
// skipped"), confirmed against the original source's dataset-name-only
// guard.
func (r *Registry) FindByDataset(name string) (*SyncState, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.entries {
		if e.Dataset == name {
			return e, true
		}
	}
	return nil, false
}

// Remove drops s by pointer identity (several entries can share a
// dataset name, one per destination) and folds its throughput into the
// rolling stats.
func (r *Registry) Remove(s *SyncState) {
	throughput := s.bytesPerSecond()

	r.mu.Lock()
	defer r.mu.Unlock()
	for i, e := range r.entries {
		if e == s {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	r.recent = append(r.recent, throughput)
	if len(r.recent) > maxRecentThroughputs {
		r.recent = r.recent[len(r.recent)-maxRecentThroughputs:]
	}
}

// Snapshot returns deep-copied views of every in-flight transfer, for
// HTTP responses. Each view carries the registry-wide recent throughput
// so callers don't need a second round trip to RecentThroughput.
func (r *Registry) Snapshot() []SyncStateView {
	r.mu.RLock()
	defer r.mu.RUnlock()
	mean, _, ok := r.recentThroughputLocked()

	out := make([]SyncStateView, len(r.entries))
	for i, e := range r.entries {
		view := e.Snapshot()
		if ok {
			view.RecentThroughputBytesPerSec = mean
		}
		out[i] = view
	}
	return out
}

// RecentThroughput reports the mean and standard deviation of completed
// transfers' bytes/sec, over the last maxRecentThroughputs transfers.
func (r *Registry) RecentThroughput() (mean, stddev float64, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.recentThroughputLocked()
}

func (r *Registry) recentThroughputLocked() (mean, stddev float64, ok bool) {
	if len(r.recent) == 0 {
		return 0, 0, false
	}
	mean, err := stats.Mean(r.recent)
	if err != nil {
		return 0, 0, false
	}
	stddev, err = stats.StandardDeviation(r.recent)
	if err != nil {
		return mean, 0, true
	}
	return mean, stddev, true
}
