// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package exiftool

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	"github.com/darkroom-project/darkroom/lib/clock"
)

const (
	// executeTerminator ends each framed command on the worker's
	// stdin.
	executeTerminator = "-execute"

	// sentinelPrefix begins the worker's ready line. A bare -execute
	// produces exactly "{ready}"; numbered -executeNNN variants embed
	// the number before the closing brace, so matching the prefix
	// covers both.
	sentinelPrefix = "{ready"

	// shutdownSequence is the documented way to end a stay-open
	// worker: the stay_open flag turned back off.
	shutdownSequence = "-stay_open\nFalse\n"

	// maxResponseLine caps a single stdout line. JSON output keeps
	// one tag per line, but string tag values are unbounded.
	maxResponseLine = 1 << 20
)

// session is one live stay-open worker process. All command traffic
// is serialized by the owning Client's mutex; the session itself only
// guards its stderr buffer, which the worker writes asynchronously.
type session struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser

	// lines receives stdout lines from the reader goroutine and is
	// closed when the stream ends.
	lines chan string

	// stderr accumulates worker diagnostics between commands.
	stderr *streamBuffer

	// exitCh receives the cmd.Wait result exactly once. stop is the
	// only consumer.
	exitCh chan error

	// done releases the reader goroutine if it is blocked delivering
	// a line nobody will read.
	done     chan struct{}
	doneOnce sync.Once
}

// startSession spawns the worker with the stay-open flags pinned to
// UTF-8 and wires up its streams. Any failure is reported as an error
// matching ErrProcessStart, with partially created pipes closed.
func startSession(binary string) (*session, error) {
	cmd := exec.Command(binary,
		"-stay_open", "True",
		"-@", "-",
		"-common_args", "-charset", "utf8",
	)
	// Own process group, so a force-kill takes out anything the
	// worker spawned as well.
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, fmt.Errorf("stdin pipe: %w: %w", err, ErrProcessStart)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		stdin.Close()
		return nil, fmt.Errorf("stdout pipe: %w: %w", err, ErrProcessStart)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		stdin.Close()
		stdout.Close()
		return nil, fmt.Errorf("stderr pipe: %w: %w", err, ErrProcessStart)
	}
	if err := cmd.Start(); err != nil {
		stdin.Close()
		stdout.Close()
		stderr.Close()
		return nil, fmt.Errorf("spawning %s: %w: %w", binary, err, ErrProcessStart)
	}

	s := &session{
		cmd:    cmd,
		stdin:  stdin,
		lines:  make(chan string, 64),
		stderr: newStreamBuffer(),
		exitCh: make(chan error, 1),
		done:   make(chan struct{}),
	}
	go s.readLines(stdout)
	go s.drainStderr(stderr)
	go s.monitor()
	return s, nil
}

func (s *session) pid() int {
	if s.cmd.Process == nil {
		return 0
	}
	return s.cmd.Process.Pid
}

// execute writes one framed command and reads the response up to the
// ready sentinel. Every error return means the stream can no longer
// be trusted and is a *ProtocolError; classification of a completed
// command is the caller's concern.
func (s *session) execute(ctx context.Context, clk clock.Clock, timeout time.Duration, args []string) (Result, error) {
	// Frame the command: one argument per line, then the terminator,
	// in a single write so the worker never sees a partial command.
	var frame bytes.Buffer
	for _, argument := range args {
		frame.WriteString(argument)
		frame.WriteByte('\n')
	}
	frame.WriteString(executeTerminator)
	frame.WriteByte('\n')

	if _, err := s.stdin.Write(frame.Bytes()); err != nil {
		return Result{}, &ProtocolError{Op: "write command", Err: err}
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timeoutCh = clk.After(timeout)
	}

	var output []string
	for {
		select {
		case line, ok := <-s.lines:
			if !ok {
				// Stdout closed mid-response: the worker exited or
				// crashed before the sentinel.
				return Result{}, &ProtocolError{Op: "read response", Err: io.ErrUnexpectedEOF}
			}
			if strings.HasPrefix(line, sentinelPrefix) {
				return Result{
					Stdout:   joinLines(output),
					Stderr:   s.stderr.Take(),
					ExitCode: -1,
				}, nil
			}
			output = append(output, line)
		case <-timeoutCh:
			return Result{}, &ProtocolError{
				Op:  "read response",
				Err: fmt.Errorf("no ready sentinel after %v", timeout),
			}
		case <-ctx.Done():
			return Result{}, &ProtocolError{Op: "read response", Err: ctx.Err()}
		}
	}
}

// stop ends the worker: clean shutdown command first, bounded wait,
// then a process-group kill if the worker lingers. The exit status is
// always reaped, so no zombie remains on any path.
func (s *session) stop(clk clock.Clock, timeout time.Duration, logger *slog.Logger) {
	_, writeErr := io.WriteString(s.stdin, shutdownSequence)
	closeErr := s.stdin.Close()

	if writeErr == nil && closeErr == nil {
		select {
		case err := <-s.exitCh:
			s.finish()
			logger.Debug("exiftool worker exited", "err", err)
			return
		case <-clk.After(timeout):
			logger.Warn("exiftool worker did not exit before deadline, killing",
				"pid", s.pid(),
				"timeout", timeout)
		}
	} else {
		// The worker is likely already gone; killing an exited
		// process is harmless and the reap below collects it.
		logger.Warn("exiftool shutdown write failed, killing worker",
			"pid", s.pid(),
			"err", errors.Join(writeErr, closeErr))
	}

	s.kill(logger)
	err := <-s.exitCh
	s.finish()
	logger.Debug("exiftool worker reaped after kill", "err", err)
}

// kill terminates the worker's whole process group. ESRCH means the
// group is already gone and is not an error.
func (s *session) kill(logger *slog.Logger) {
	process := s.cmd.Process
	if process == nil {
		return
	}
	err := unix.Kill(-process.Pid, unix.SIGKILL)
	if err != nil && !errors.Is(err, unix.ESRCH) {
		logger.Warn("killing worker process group",
			"pid", process.Pid,
			"err", err)
		if killErr := process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			logger.Warn("killing worker process",
				"pid", process.Pid,
				"err", killErr)
		}
	}
}

func (s *session) finish() {
	s.doneOnce.Do(func() { close(s.done) })
}

// readLines feeds stdout lines to the command loop. A late line after
// the session is finished (a response that arrived past its deadline)
// is dropped via done rather than blocking this goroutine forever.
func (s *session) readLines(stdout io.Reader) {
	defer close(s.lines)
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), maxResponseLine)
	for scanner.Scan() {
		select {
		case s.lines <- scanner.Text():
		case <-s.done:
			return
		}
	}
}

// drainStderr copies worker diagnostics into the stderr buffer for as
// long as the process lives. Without a continuous drain a chatty
// worker would fill the pipe and deadlock against the command loop.
func (s *session) drainStderr(r io.Reader) {
	io.Copy(s.stderr, r) //nolint:errcheck // pipe close ends the drain either way
}

// monitor reaps the process as soon as it exits. The buffered send
// means the exit status is never lost even when stop is not yet
// listening.
func (s *session) monitor() {
	err := s.cmd.Wait()
	select {
	case s.exitCh <- err:
	default:
	}
}

// joinLines restores the newline-terminated shape of the captured
// response so persistent output matches what direct mode captures for
// the same command.
func joinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}

// streamBuffer is a locked byte buffer for asynchronous stderr
// accumulation.
type streamBuffer struct {
	mu   sync.Mutex
	data bytes.Buffer
}

func newStreamBuffer() *streamBuffer {
	return &streamBuffer{}
}

func (b *streamBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.data.Write(p)
}

// Take returns everything accumulated since the last Take and resets
// the buffer.
func (b *streamBuffer) Take() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	text := b.data.String()
	b.data.Reset()
	return text
}
