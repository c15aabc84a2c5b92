// Command brigmon is a Nagios/Icinga-compatible monitoring plugin
// adapted from the teacher's client/monitor SnapCheck, re-pointed at
// this domain's "is every replica caught up" question: CRITICAL if any
// dataset has zero snapshots on its owner, WARNING or CRITICAL if a
// replica's latest tag lags the owner's by more than the configurable
// warning or critical age.
package main

import (
	"context"
	"flag"
	"time"

	"github.com/dsh2dsh/go-monitoringplugin/v2"

	"github.com/goopey7/brig/internal/config"
	"github.com/goopey7/brig/internal/transport"
	"github.com/goopey7/brig/internal/zfs"
)

func main() {
	configPath := flag.String("config", "./config.json", "fleet config path")
	sshKeyPath := flag.String("ssh-key", "/root/.ssh/id_ed25519", "ssh private key")
	knownHosts := flag.String("known-hosts", "/root/.ssh/known_hosts", "known_hosts path")
	warn := flag.Duration("warn", 6*time.Hour, "warn if a replica lags the owner by more than this")
	crit := flag.Duration("critical", 24*time.Hour, "critical if a replica lags the owner by more than this")
	flag.Parse()

	resp := monitoringplugin.NewResponse("replication lag")
	check := NewReplicaLagCheck(resp).WithThresholds(*warn, *crit)

	store, err := config.Load(*configPath)
	if err != nil {
		resp.UpdateStatus(monitoringplugin.CRITICAL, "load config: "+err.Error())
		resp.OutputAndExit()
		return
	}

	toolkit := zfs.NewToolkit(transport.NewSSH(*sshKeyPath, *knownHosts))
	if err := check.Run(context.Background(), store, toolkit); err != nil {
		resp.UpdateStatus(monitoringplugin.CRITICAL, err.Error())
	}
	resp.OutputAndExit()
}
