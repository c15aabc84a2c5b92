// Command brigd is the coordinator daemon: loads the fleet config, wires
// the remote executor, snapshot toolkit, progress registry, replicator,
// switcher, and retention, and serves the HTTP control plane.
package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/goopey7/brig/internal/config"
	"github.com/goopey7/brig/internal/httpapi"
	"github.com/goopey7/brig/internal/logging"
	"github.com/goopey7/brig/internal/metrics"
	"github.com/goopey7/brig/internal/progress"
	"github.com/goopey7/brig/internal/replicator"
	"github.com/goopey7/brig/internal/retention"
	"github.com/goopey7/brig/internal/switcher"
	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

func main() {
	root := &cobra.Command{
		Use:   "brigd [config-file]",
		Short: "ZFS replication coordinator daemon",
		Args:  cobra.MaximumNArgs(1),
		RunE:  run,
	}
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	configPath := "./config.json"
	if len(args) == 1 {
		configPath = args[0]
	}

	global, err := config.NewGlobal()
	if err != nil {
		return fmt.Errorf("load daemon settings: %w", err)
	}
	log := logging.New(global.LogLevel)

	store, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config %q: %w", configPath, err)
	}

	tr := transport.NewSSH(global.SSHKeyPath, global.KnownHostsPath)
	toolkit := zfs.NewToolkit(tr)
	registry := progress.NewRegistry()

	promReg := prometheus.NewRegistry()
	m := metrics.NewSet(promReg)

	repl := replicator.New(store, toolkit, registry, m, log)
	sw := switcher.New(store, toolkit, log)
	ret := retention.New(store, toolkit, log)

	srv := httpapi.NewServer(store, toolkit, registry, repl, sw, ret, log)
	mux := srv.Mux(promReg)

	log.Info("listening", "addr", global.ListenAddr)
	return http.ListenAndServe(global.ListenAddr, mux)
}
