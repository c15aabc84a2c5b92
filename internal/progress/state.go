// Package progress is the live directory of in-flight transfers (§4.4):
// insert, find-by-dataset, remove, snapshot-for-serialization. Each
// sync-state handle is individually lockable so byte-counter updates
// never contend with readers of other handles.
package progress

import (
	"time"

	"github.com/goopey7/brig/internal/chainlock"
)

// SyncState is {dataset, src, dst, total_bytes, sent_bytes} (§3), plus a
// start time used only to fold completed transfers into the registry's
// rolling throughput stats.
type SyncState struct {
	Dataset string
	Src     string
	Dst     string

	lock       *chainlock.L
	totalBytes uint64
	totalSet   bool
	sentBytes  uint64
	startedAt  time.Time
}

func NewSyncState(dataset, src, dst string) *SyncState {
	return &SyncState{
		Dataset:   dataset,
		Src:       src,
		Dst:       dst,
		lock:      chainlock.New(),
		startedAt: time.Now(),
	}
}

// SetTotal records the estimated size once size estimation completes.
func (s *SyncState) SetTotal(n uint64) {
	s.lock.HoldWhile(func() {
		s.totalBytes = n
		s.totalSet = true
	})
}

// AddSent adds n bytes to the running sent counter; sent_bytes never
// exceeds total_bytes once total_bytes is set (§3 invariant).
func (s *SyncState) AddSent(n uint64) {
	s.lock.HoldWhile(func() {
		s.sentBytes += n
		if s.totalSet && s.sentBytes > s.totalBytes {
			s.sentBytes = s.totalBytes
		}
	})
}

// SyncStateView is the JSON-serializable deep copy of a SyncState.
type SyncStateView struct {
	Dataset    string `json:"dataset"`
	Src        string `json:"src"`
	Dst        string `json:"dst"`
	TotalBytes uint64 `json:"total_bytes"`
	SentBytes  uint64 `json:"sent_bytes"`

	// RecentThroughputBytesPerSec is the registry-wide rolling mean over
	// the last completed transfers, not this transfer's own rate; zero
	// (and omitted) until at least one transfer has completed. Filled in
	// by the registry, not SyncState itself.
	RecentThroughputBytesPerSec float64 `json:"recent_throughput_bytes_per_sec,omitempty"`
}

func (s *SyncState) Snapshot() SyncStateView {
	var view SyncStateView
	s.lock.HoldWhile(func() {
		view = SyncStateView{
			Dataset:    s.Dataset,
			Src:        s.Src,
			Dst:        s.Dst,
			TotalBytes: s.totalBytes,
			SentBytes:  s.sentBytes,
		}
	})
	return view
}

func (s *SyncState) bytesPerSecond() float64 {
	var bps float64
	s.lock.HoldWhile(func() {
		elapsed := time.Since(s.startedAt).Seconds()
		if elapsed > 0 {
			bps = float64(s.sentBytes) / elapsed
		}
	})
	return bps
}
