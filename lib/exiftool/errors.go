// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package exiftool

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the client's failure taxonomy. Wrapped errors
// carry context; test membership with errors.Is.
var (
	// ErrToolNotFound indicates the exiftool binary does not exist at
	// the configured path or on $PATH. Raised at construction time,
	// before any process is spawned.
	ErrToolNotFound = errors.New("exiftool binary not found")

	// ErrProcessStart indicates the worker process failed to spawn.
	// This covers the benign race where the binary is verified at
	// construction and removed before the session starts.
	ErrProcessStart = errors.New("worker process failed to start")

	// ErrProtocol indicates a persistent-mode framing or liveness
	// violation: the worker exited before the ready sentinel, a
	// stream read failed, or the session is already dead. Carried by
	// [ProtocolError].
	ErrProtocol = errors.New("worker protocol violation")

	// ErrExecution indicates the tool ran but the command failed:
	// nonzero exit in direct mode, or error-bearing stderr in
	// persistent mode. Carried by [ExecError].
	ErrExecution = errors.New("exiftool command failed")

	// ErrFileMissing indicates an operand path does not reference an
	// existing file. Raised before any process interaction so a
	// doomed command never wastes a worker round-trip.
	ErrFileMissing = errors.New("target file does not exist")
)

// ProtocolError describes a persistent-session failure: worker death,
// stream desynchronization, or a command issued against an already
// dead session. It matches ErrProtocol via errors.Is, and the
// underlying cause (io.EOF, context.DeadlineExceeded, ...) when one
// exists.
type ProtocolError struct {
	// Op names the protocol step that failed ("write command",
	// "read response", "execute").
	Op string

	// Err is the underlying cause. Nil when the failure is a state
	// violation rather than an I/O error (for example, a command
	// issued on a dead session).
	Err error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("exiftool session: %s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("exiftool session: %s", e.Op)
}

func (e *ProtocolError) Unwrap() []error {
	if e.Err != nil {
		return []error{ErrProtocol, e.Err}
	}
	return []error{ErrProtocol}
}

// ExecError describes a command the tool accepted but could not
// complete. It matches ErrExecution via errors.Is and carries the
// captured streams so operators can tell a bad file from a bad
// invocation.
type ExecError struct {
	// Args is the argument list of the failed command.
	Args []string

	// Stdout and Stderr are the captured streams.
	Stdout string
	Stderr string

	// ExitCode is the process exit code in direct mode. Persistent
	// mode has no per-command exit code; the value is -1 there.
	ExitCode int
}

func (e *ExecError) Error() string {
	detail := strings.TrimSpace(e.Stderr)
	if detail == "" {
		detail = "no stderr output"
	}
	if e.ExitCode >= 0 {
		return fmt.Sprintf("exiftool %s: exit %d (stderr: %s)",
			strings.Join(e.Args, " "), e.ExitCode, detail)
	}
	return fmt.Sprintf("exiftool %s: %s", strings.Join(e.Args, " "), detail)
}

func (e *ExecError) Unwrap() error { return ErrExecution }
