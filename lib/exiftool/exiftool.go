// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package exiftool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/darkroom-project/darkroom/lib/clock"
)

// State identifies the client's execution mode. A client begins in
// StateDirect and moves through the persistent states as sessions
// start, run commands, and end.
type State int32

const (
	// StateDirect means no worker session exists; commands spawn a
	// fresh process each.
	StateDirect State = iota

	// StatePersistentIdle means a worker session is live and ready
	// for the next command.
	StatePersistentIdle

	// StatePersistentBusy means a command is in flight and its
	// response has not been fully read.
	StatePersistentBusy

	// StatePersistentDead means the worker terminated or the stream
	// protocol desynchronized. Terminal for that session: commands
	// fail fast until StopSession clears it.
	StatePersistentDead
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateDirect:
		return "direct"
	case StatePersistentIdle:
		return "persistent-idle"
	case StatePersistentBusy:
		return "persistent-busy"
	case StatePersistentDead:
		return "persistent-dead"
	default:
		return "unknown"
	}
}

// defaultShutdownTimeout bounds the wait for a clean worker exit
// before the process group is force-killed.
const defaultShutdownTimeout = 5 * time.Second

// Config configures a Client.
type Config struct {
	// BinaryPath is the exiftool executable: an absolute path, a
	// relative path containing a separator, or a bare name resolved
	// on $PATH. Empty means "exiftool".
	BinaryPath string

	// CommandTimeout bounds each persistent-mode response read. On
	// expiry the session is marked dead — a worker that missed its
	// framing deadline cannot be trusted to resume it. Zero means no
	// timeout beyond the caller's context.
	CommandTimeout time.Duration

	// ShutdownTimeout bounds the wait for clean worker exit during
	// StopSession. Defaults to 5 seconds if zero.
	ShutdownTimeout time.Duration

	// Logger for session lifecycle events. Defaults to slog.Default.
	Logger *slog.Logger

	// Clock drives timeouts. Defaults to the real clock; tests
	// inject a fake.
	Clock clock.Clock
}

// Client drives the exiftool binary. The zero value is not usable;
// construct with New. A Client is safe for concurrent use: persistent
// commands are serialized internally, direct commands run lock-free.
type Client struct {
	binary          string
	logger          *slog.Logger
	clock           clock.Clock
	commandTimeout  time.Duration
	shutdownTimeout time.Duration

	// mu serializes the write-then-read-until-sentinel sequence on
	// the session, plus all state transitions.
	mu      sync.Mutex
	state   atomic.Int32
	session *session
}

// New verifies that the configured binary exists and returns a client
// in direct mode. Returns an error matching ErrToolNotFound when the
// binary is absent or not executable — a client can never be
// constructed around a missing tool.
func New(config Config) (*Client, error) {
	binary := config.BinaryPath
	if binary == "" {
		binary = "exiftool"
	}
	resolved, err := exec.LookPath(binary)
	if err != nil {
		return nil, fmt.Errorf("resolving %q: %w", binary, ErrToolNotFound)
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	shutdownTimeout := config.ShutdownTimeout
	if shutdownTimeout == 0 {
		shutdownTimeout = defaultShutdownTimeout
	}

	client := &Client{
		binary:          resolved,
		logger:          logger,
		clock:           clk,
		commandTimeout:  config.CommandTimeout,
		shutdownTimeout: shutdownTimeout,
	}
	client.state.Store(int32(StateDirect))
	return client, nil
}

// Binary returns the resolved path of the tool this client drives.
func (c *Client) Binary() string {
	return c.binary
}

// State returns the client's current execution state.
func (c *Client) State() State {
	return State(c.state.Load())
}

func (c *Client) setState(s State) {
	c.state.Store(int32(s))
}

// Result is the normalized command outcome shared by both execution
// modes.
type Result struct {
	// Stdout and Stderr are the captured streams. In persistent mode
	// Stderr is a best-effort snapshot: the worker writes diagnostics
	// asynchronously with no framing, so late text may surface on a
	// later command instead.
	Stdout string
	Stderr string

	// ExitCode is the process exit code in direct mode. Persistent
	// mode exposes no per-command exit code; the value is -1 there.
	ExitCode int
}

// Failed reports whether Stderr marks the result as failed under the
// persistent-mode classification rule: some line contains "error"
// case-insensitively and that line is not a warning. The tool's
// message wording is not a stable contract, so treat this as a
// compatibility heuristic rather than a guaranteed classifier.
func (r Result) Failed() bool {
	return stderrSignalsFailure(r.Stderr)
}

// Execute runs one command in whatever mode the client is in and
// returns the normalized result. Callers normally use the named
// operations (Metadata, SetMetadata, ...) instead; Execute is the
// primitive they are built on.
//
// In StatePersistentDead every call fails immediately with an error
// matching ErrProtocol. Recovery requires StopSession followed by
// StartSession.
func (c *Client) Execute(ctx context.Context, args ...string) (Result, error) {
	c.mu.Lock()
	// StatePersistentBusy is never observable here: it only exists
	// while another Execute holds the mutex.
	switch c.State() {
	case StatePersistentIdle:
		defer c.mu.Unlock()
		return c.executePersistentLocked(ctx, args)
	case StatePersistentDead:
		c.mu.Unlock()
		return Result{}, &ProtocolError{Op: "execute on dead session"}
	}
	c.mu.Unlock()
	return c.executeDirect(ctx, args)
}

// executePersistentLocked runs one command over the live session.
// Caller holds c.mu.
func (c *Client) executePersistentLocked(ctx context.Context, args []string) (Result, error) {
	// The framing is line-based, so an argument containing a newline
	// cannot be expressed. Reject it before writing anything; the
	// session stays healthy.
	for _, argument := range args {
		if strings.ContainsRune(argument, '\n') {
			return Result{}, fmt.Errorf("argument %q cannot be framed in persistent mode", argument)
		}
	}

	c.setState(StatePersistentBusy)

	result, err := c.session.execute(ctx, c.clock, c.commandTimeout, args)
	if err != nil {
		// Any session error is a framing or liveness violation; the
		// stream can no longer be trusted.
		c.setState(StatePersistentDead)
		c.logger.Warn("exiftool session dead",
			"err", err,
			"args", strings.Join(args, " "))
		return Result{}, err
	}

	c.setState(StatePersistentIdle)
	if result.Failed() {
		return result, &ExecError{
			Args:     args,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			ExitCode: -1,
		}
	}
	return result, nil
}

// executeDirect spawns a one-shot process for the command. No shared
// state: concurrent direct commands are independent.
func (c *Client) executeDirect(ctx context.Context, args []string) (Result, error) {
	command := exec.CommandContext(ctx, c.binary, args...)
	var stdout, stderr bytes.Buffer
	command.Stdout = &stdout
	command.Stderr = &stderr

	err := command.Run()
	result := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err == nil {
		return result, nil
	}

	if ctx.Err() != nil {
		return Result{}, fmt.Errorf("exiftool %s: %w", strings.Join(args, " "), ctx.Err())
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		result.ExitCode = exitErr.ExitCode()
		return result, &ExecError{
			Args:     args,
			Stdout:   result.Stdout,
			Stderr:   result.Stderr,
			ExitCode: result.ExitCode,
		}
	}

	// The spawn itself failed: the binary disappeared after
	// construction-time verification, or fork/exec failed.
	return Result{}, fmt.Errorf("spawning %s: %w: %w", c.binary, err, ErrProcessStart)
}

// StartSession spawns the worker process and switches the client to
// persistent mode. Fails with an error matching ErrProcessStart when
// the spawn fails, and with a plain error when a session is already
// active or a dead session has not been cleared with StopSession.
func (c *Client) StartSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch c.State() {
	case StatePersistentIdle, StatePersistentBusy:
		return fmt.Errorf("session already active")
	case StatePersistentDead:
		return fmt.Errorf("previous session is dead; call StopSession before starting a new one")
	}

	session, err := startSession(c.binary)
	if err != nil {
		return err
	}
	c.session = session
	c.setState(StatePersistentIdle)
	c.logger.Info("exiftool session started",
		"pid", session.pid(),
		"binary", c.binary)
	return nil
}

// StopSession ends the worker session and returns the client to
// direct mode. It asks the worker to exit cleanly, waits up to the
// shutdown timeout, and force-kills on timeout or I/O failure; the
// process is always reaped. Idempotent: calling it with no live
// session (including on a never-started client) is a no-op.
func (c *Client) StopSession() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.session == nil {
		c.setState(StateDirect)
		return nil
	}

	c.session.stop(c.clock, c.shutdownTimeout, c.logger)
	c.session = nil
	c.setState(StateDirect)
	c.logger.Info("exiftool session stopped")
	return nil
}

// Close stops any live session. It lets a client be deferred at
// construction time; Close on a client with no session is a no-op.
func (c *Client) Close() error {
	return c.StopSession()
}

// WithSession runs fn with a client whose session is started before
// the call and guaranteed stopped afterward, on every exit path. This
// is the intended shape for "many files, one session" workflows.
func WithSession(ctx context.Context, config Config, fn func(context.Context, *Client) error) error {
	client, err := New(config)
	if err != nil {
		return err
	}
	if err := client.StartSession(); err != nil {
		return err
	}
	defer client.Close()
	return fn(ctx, client)
}

// stderrSignalsFailure implements the compatibility rule for
// persistent mode, which has no per-command exit code: a command
// failed when some stderr line contains "error" (case-insensitive)
// and that line is not a warning. A warning that happens to mention
// an error ("Warning: Minor error in IPTC data") does not fail the
// command.
func stderrSignalsFailure(stderrText string) bool {
	if !strings.Contains(strings.ToLower(stderrText), "error") {
		return false
	}
	for _, line := range strings.Split(stderrText, "\n") {
		lowerLine := strings.ToLower(strings.TrimSpace(line))
		if lowerLine == "" {
			continue
		}
		if strings.Contains(lowerLine, "error") && !strings.Contains(lowerLine, "warning") {
			return true
		}
	}
	return false
}
