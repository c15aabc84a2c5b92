package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/creasty/defaults"
)

// Global is daemon-level settings the spec leaves outside the
// dataset/server JSON schema (§6 only pins that file's format). Populated
// from the environment, defaulted the way the teacher defaults its job
// config fields.
type Global struct {
	ListenAddr     string `env:"BRIG_LISTEN_ADDR" default:"0.0.0.0:3030"`
	SSHKeyPath     string `env:"BRIG_SSH_KEY_PATH" default:"/root/.ssh/id_ed25519"`
	KnownHostsPath string `env:"BRIG_KNOWN_HOSTS_PATH" default:"/root/.ssh/known_hosts"`
	LogLevel       string `env:"BRIG_LOG_LEVEL" default:"info"`
}

// NewGlobal loads Global from the process environment, applying defaults
// for anything unset.
func NewGlobal() (*Global, error) {
	g := &Global{}
	if err := defaults.Set(g); err != nil {
		return nil, err
	}
	if err := env.Parse(g); err != nil {
		return nil, err
	}
	return g, nil
}
