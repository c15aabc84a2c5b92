package transport

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/crypto/ssh"
	"golang.org/x/crypto/ssh/knownhosts"

	"github.com/goopey7/brig/internal/brigerr"
)

// SSH is a Transport backed by golang.org/x/crypto/ssh, grounded on the
// dial/session/pipe shape of a public-key SSH client but with
// shell-quoted argv construction instead of naive string concatenation,
// since ssh.Session.Run takes a single command line handed to the remote
// shell.
type SSH struct {
	keyPath        string
	knownHostsPath string
	dialTimeout    time.Duration
}

func NewSSH(keyPath, knownHostsPath string) *SSH {
	return &SSH{keyPath: keyPath, knownHostsPath: knownHostsPath, dialTimeout: 10 * time.Second}
}

func (t *SSH) dial(ep Endpoint) (*ssh.Client, error) {
	key, err := os.ReadFile(t.keyPath)
	if err != nil {
		return nil, fmt.Errorf("read private key %q: %w", t.keyPath, err)
	}
	signer, err := ssh.ParsePrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("parse private key: %w", err)
	}

	hostKeyCallback, err := knownhosts.New(t.knownHostsPath)
	if err != nil {
		return nil, fmt.Errorf("load known_hosts %q: %w", t.knownHostsPath, err)
	}

	cfg := &ssh.ClientConfig{
		User:            ep.User,
		Auth:            []ssh.AuthMethod{ssh.PublicKeys(signer)},
		HostKeyCallback: hostKeyCallback,
		Timeout:         t.dialTimeout,
	}

	addr := ep.Address
	if !strings.Contains(addr, ":") {
		addr = addr + ":22"
	}
	return ssh.Dial("tcp", addr, cfg)
}

// quoteArgs builds a POSIX-shell-safe command line from an argv, since
// the wire protocol for an "exec" SSH request is a single string.
func quoteArgs(args []string) string {
	quoted := make([]string, len(args))
	for i, a := range args {
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'\''`) + "'"
	}
	return strings.Join(quoted, " ")
}

func (t *SSH) RunCollect(ctx context.Context, ep Endpoint, args []string,
) (exitCode int, stdout, stderr []byte, err error) {
	client, dialErr := t.dial(ep)
	if dialErr != nil {
		return 0, nil, nil, brigerr.SshSessionFail(ep.User, ep.Address)
	}
	defer client.Close()

	session, err := client.NewSession()
	if err != nil {
		return 0, nil, nil, brigerr.SshSessionFail(ep.User, ep.Address)
	}
	defer session.Close()

	var outBuf, errBuf strings.Builder
	session.Stdout = &outBuf
	session.Stderr = &errBuf

	done := make(chan error, 1)
	go func() { done <- session.Run(quoteArgs(args)) }()

	select {
	case <-ctx.Done():
		session.Signal(ssh.SIGKILL)
		return 0, nil, nil, ctx.Err()
	case runErr := <-done:
		exitCode = exitCodeOf(runErr)
		return exitCode, []byte(outBuf.String()), []byte(errBuf.String()), nil
	}
}

func (t *SSH) RunStatus(ctx context.Context, ep Endpoint, args []string) (int, error) {
	exitCode, _, _, err := t.RunCollect(ctx, ep, args)
	return exitCode, err
}

func (t *SSH) RunStreamed(ctx context.Context, ep Endpoint, args []string) (*Stream, error) {
	client, dialErr := t.dial(ep)
	if dialErr != nil {
		return nil, brigerr.SshSessionFail(ep.User, ep.Address)
	}

	session, err := client.NewSession()
	if err != nil {
		client.Close()
		return nil, brigerr.SshSessionFail(ep.User, ep.Address)
	}

	stdout, err := session.StdoutPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, brigerr.FailedToTakeStdout(err)
	}
	stdin, err := session.StdinPipe()
	if err != nil {
		session.Close()
		client.Close()
		return nil, brigerr.FailedToTakeStdin(err)
	}

	if err := session.Start(quoteArgs(args)); err != nil {
		session.Close()
		client.Close()
		return nil, brigerr.SshSessionFail(ep.User, ep.Address)
	}

	wait := func() error {
		defer client.Close()
		defer session.Close()
		_ = ctx
		return session.Wait()
	}
	return NewStream(io.NopCloser(stdout), stdin, wait), nil
}

func exitCodeOf(err error) int {
	if err == nil {
		return 0
	}
	if exitErr, ok := err.(*ssh.ExitError); ok {
		return exitErr.ExitStatus()
	}
	return -1
}
