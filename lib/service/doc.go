// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

// Package service provides Darkroom's HTTP service layer.
//
// The service exposes the metadata toolkit over HTTP for local
// integrations: a health check on GET / and per-file metadata
// summaries on POST /process. [Handler] carries the route table and
// the JSON request/response envelopes; [HTTPServer] owns listener
// lifecycle: early bind, a Ready channel for tests and orchestration,
// and graceful shutdown on context cancellation.
//
// The pieces compose in main rather than through a framework runtime:
// wire a metadata.Processor into [NewHandler], hand the handler to
// [NewHTTPServer], and call Serve.
package service
