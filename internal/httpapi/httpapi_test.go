package httpapi_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goopey7/brig/internal/config"
	"github.com/goopey7/brig/internal/httpapi"
	"github.com/goopey7/brig/internal/logging"
	"github.com/goopey7/brig/internal/progress"
	"github.com/goopey7/brig/internal/replicator"
	"github.com/goopey7/brig/internal/retention"
	"github.com/goopey7/brig/internal/switcher"
	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

type fakeTransport struct{}

func (fakeTransport) RunCollect(_ context.Context, _ transport.Endpoint, args []string) (int, []byte, []byte, error) {
	if len(args) >= 2 && args[1] == "list" {
		return 0, []byte("NAME\ntank/x@brig-20240101000000\n"), nil, nil
	}
	return 0, nil, nil, nil
}

func (f fakeTransport) RunStatus(ctx context.Context, ep transport.Endpoint, args []string) (int, error) {
	code, _, _, err := f.RunCollect(ctx, ep, args)
	return code, err
}

func (fakeTransport) RunStreamed(context.Context, transport.Endpoint, []string) (*transport.Stream, error) {
	panic("not used")
}

func newTestServer(t *testing.T) http.Handler {
	t.Helper()
	cfg := config.Config{
		Servers:  []config.Server{{Name: "A", User: "root", Address: "10.0.0.1", Pool: "tank"}},
		Datasets: []config.Dataset{{Name: "x", Owner: "ops", Server: "A", SnapshotLifetime: "7d"}},
	}
	path := filepath.Join(t.TempDir(), "config.json")
	b, err := json.MarshalIndent(cfg, "", "  ")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o644))
	store, err := config.Load(path)
	require.NoError(t, err)

	toolkit := zfs.NewToolkit(fakeTransport{})
	registry := progress.NewRegistry()
	log := logging.New("error")
	repl := replicator.New(store, toolkit, registry, nil, log)
	sw := switcher.New(store, toolkit, log)
	ret := retention.New(store, toolkit, log)

	srv := httpapi.NewServer(store, toolkit, registry, repl, sw, ret, log)
	reg := prometheus.NewRegistry()
	return srv.Mux(reg)
}

func TestStatusEndpoint(t *testing.T) {
	mux := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "tank")
}

func TestCleanEndpointReturnsNull(t *testing.T) {
	mux := newTestServer(t)
	req := httptest.NewRequest(http.MethodGet, "/clean", nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null\n", rec.Body.String())
}

func TestSwitchEndpointUnknownDataset(t *testing.T) {
	mux := newTestServer(t)
	body := `{"dataset":"ghost","new_server":"A"}`
	req := httptest.NewRequest(http.MethodPost, "/switch", strings.NewReader(body))
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "DatasetNotFoundInConfig")
}
