// Package transport is the abstract remote-executor boundary (§4.1, §9):
// "session_open(user, host) -> Session", "run(args) -> (exit, stdout,
// stderr)", "spawn(args, stdio) -> Child{stdout?, stdin?, wait()}". Any
// implementation satisfying this contract composes with the rest of the
// coordinator; the only one shipped here is SSH.
package transport

import (
	"context"
	"io"
)

// Endpoint names who to connect to; it deliberately carries nothing about
// datasets or pools so internal/zfs stays decoupled from internal/config.
type Endpoint struct {
	User    string
	Address string
}

// Stream is a spawned remote command with piped stdio, per run-streamed.
type Stream struct {
	Stdout io.ReadCloser
	Stdin  io.WriteCloser
	wait   func() error
}

func NewStream(stdout io.ReadCloser, stdin io.WriteCloser, wait func() error) *Stream {
	return &Stream{Stdout: stdout, Stdin: stdin, wait: wait}
}

func (s *Stream) Wait() error { return s.wait() }

// Transport is the session_open/run/spawn abstraction. Implementations
// must not pool sessions across operations: each logical call opens its
// own session so a stuck command cannot block unrelated work (§4.1).
type Transport interface {
	// RunCollect is run-collect: full wait, stdout and stderr bytes
	// returned separately.
	RunCollect(ctx context.Context, ep Endpoint, args []string) (exitCode int, stdout, stderr []byte, err error)
	// RunStatus is run-status: exit status only.
	RunStatus(ctx context.Context, ep Endpoint, args []string) (exitCode int, err error)
	// RunStreamed is run-streamed: a handle with piped stdio and a wait.
	RunStreamed(ctx context.Context, ep Endpoint, args []string) (*Stream, error)
}
