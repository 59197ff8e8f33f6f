// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package exiftool drives the external exiftool binary as a subprocess
// and is the core of darkroom. It owns two responsibilities: the
// lifecycle of an optional long-lived worker process (the session), and
// the line-oriented command protocol spoken over that worker's standard
// streams.
//
// The central type is [Client]. A client starts in direct mode: every
// command spawns a fresh exiftool process, waits for it to exit, and
// captures its output. Calling [Client.StartSession] switches the
// client to persistent mode: one worker process is started with the
// tool's stay-resident flags (-stay_open True -@ -) and reused for
// every subsequent command. Callers cannot observe which mode is
// active except through timing — the calling contract and results are
// identical.
//
// # The stay-open protocol
//
// In persistent mode each command is written to the worker's stdin as
// one argument per line followed by the terminator line "-execute".
// The worker responds on stdout with free-form text followed by a line
// beginning with the sentinel "{ready}". The client reads until the
// sentinel, consumes it, and snapshots whatever diagnostic text the
// worker has emitted on stderr so far. There is no per-command exit
// code in this mode; stderr content decides success (see
// [Result.Failed] for the classification rule and its limits).
//
// Commands on one session are strictly serialized. The protocol has no
// multiplexing: a second command must not be written until the first
// command's sentinel has been consumed. A mutex inside Client enforces
// this, so a single client is safe for concurrent use.
//
// # Session death
//
// If the worker exits or the stream desynchronizes mid-command, the
// session is permanently invalidated: every subsequent command fails
// immediately with an error matching [ErrProtocol] rather than risking
// an indefinite blocking read. The client never reconnects on its own —
// silently respawning mid-batch could silently skip work that was in
// flight during the crash. Recovery is explicit: [Client.StopSession]
// (which reaps the dead process) followed by [Client.StartSession].
//
// # Resource safety
//
// A session is an OS resource. [Client.StopSession] sends the
// documented shutdown command (-stay_open False), waits a bounded time
// for clean exit, and force-kills the process group on timeout; it is
// idempotent and safe on a never-started client. [WithSession] is the
// scoped form: it starts a session, runs a callback, and guarantees
// the session is stopped on every exit path. Library code that starts
// a session should either use WithSession or defer [Client.Close]
// immediately after StartSession succeeds.
package exiftool
