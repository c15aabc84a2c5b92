package replicator_test

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopey7/brig/internal/config"
	"github.com/goopey7/brig/internal/logging"
	"github.com/goopey7/brig/internal/progress"
	"github.com/goopey7/brig/internal/replicator"
	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

// fakeTransport answers RunCollect calls scripted per-command-name and
// serves RunStreamed with in-memory pipes, so the replicator's state
// machine can be exercised without a real shell or network.
type fakeTransport struct {
	listings map[string][]string // "user@addr pool/dataset" -> snapshot names, oldest..newest reversed by caller
}

func key(ep transport.Endpoint, pool, dataset string) string {
	return ep.User + "@" + ep.Address + " " + pool + "/" + dataset
}

func (f *fakeTransport) RunCollect(_ context.Context, ep transport.Endpoint, args []string) (int, []byte, []byte, error) {
	switch {
	case len(args) >= 2 && args[0] == "zfs" && args[1] == "list":
		pool := args[len(args)-1]
		lines := append([]string{"NAME"}, f.listings[ep.User+"@"+ep.Address+" "+pool]...)
		out := ""
		for _, l := range lines {
			out += l + "\n"
		}
		return 0, []byte(out), nil, nil
	case len(args) >= 2 && args[0] == "zfs" && args[1] == "snapshot":
		return 0, nil, nil, nil
	case len(args) >= 2 && args[0] == "zfs" && args[1] == "send":
		return 0, []byte("size\t4096\n"), nil, nil
	}
	return 0, nil, nil, nil
}

func (f *fakeTransport) RunStatus(ctx context.Context, ep transport.Endpoint, args []string) (int, error) {
	code, _, _, err := f.RunCollect(ctx, ep, args)
	return code, err
}

func (f *fakeTransport) RunStreamed(context.Context, transport.Endpoint, []string) (*transport.Stream, error) {
	r, w := io.Pipe()
	go func() {
		w.Write([]byte("hello"))
		w.Close()
	}()
	return transport.NewStream(r, discardWriteCloser{}, func() error { return nil }), nil
}

type discardWriteCloser struct{}

func (discardWriteCloser) Write(p []byte) (int, error) { return len(p), nil }
func (discardWriteCloser) Close() error                { return nil }

func writeConfig(t *testing.T) *config.Store {
	t.Helper()
	cfg := config.Config{
		Servers: []config.Server{
			{Name: "A", User: "root", Address: "10.0.0.1", Pool: "tank"},
			{Name: "B", User: "root", Address: "10.0.0.2", Pool: "tank"},
		},
		Datasets: []config.Dataset{
			{Name: "x", Owner: "ops", Server: "A", SnapshotLifetime: "7d"},
		},
	}
	path := filepath.Join(t.TempDir(), "config.json")
	b, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
	store, err := config.Load(path)
	require.NoError(t, err)
	return store
}

func TestScheduleNoCommonSnapshot(t *testing.T) {
	store := writeConfig(t)
	ft := &fakeTransport{listings: map[string][]string{
		"root@10.0.0.1 tank/x": {"tank/x@brig-20240101000001"},
		"root@10.0.0.2 tank/x": {"tank/x@brig-20240101000002"},
	}}
	toolkit := zfs.NewToolkit(ft)
	registry := progress.NewRegistry()
	r := replicator.New(store, toolkit, registry, nil, logging.New("error"))

	entries := r.Schedule(context.Background(), []string{"x"})
	require.Len(t, entries, 1)
	assert.Error(t, entries[0].Err)
}

func TestScheduleSuccessReportsTotalBytes(t *testing.T) {
	store := writeConfig(t)
	ft := &fakeTransport{listings: map[string][]string{
		"root@10.0.0.1 tank/x": {"tank/x@brig-20240101000000"},
		"root@10.0.0.2 tank/x": {"tank/x@brig-20240101000000"},
	}}
	toolkit := zfs.NewToolkit(ft)
	registry := progress.NewRegistry()
	r := replicator.New(store, toolkit, registry, nil, logging.New("error"))

	entries := r.Schedule(context.Background(), []string{"x"})
	require.Len(t, entries, 1)
	require.NoError(t, entries[0].Err)
	require.NotNil(t, entries[0].State)
	assert.EqualValues(t, 4096, entries[0].State.TotalBytes)
	assert.LessOrEqual(t, entries[0].State.SentBytes, entries[0].State.TotalBytes)
}

func TestScheduleUnknownDataset(t *testing.T) {
	store := writeConfig(t)
	r := replicator.New(store, zfs.NewToolkit(&fakeTransport{}), progress.NewRegistry(), nil, logging.New("error"))

	entries := r.Schedule(context.Background(), []string{"ghost"})
	require.Len(t, entries, 1)
	assert.Error(t, entries[0].Err)
}
