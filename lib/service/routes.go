// Copyright 2026 The Darkroom Authors
// SPDX-License-Identifier: Apache-2.0

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/darkroom-project/darkroom/lib/exiftool"
	"github.com/darkroom-project/darkroom/lib/metadata"
)

// Summarizer produces the per-file summary served by POST /process.
// *metadata.Processor satisfies it.
type Summarizer interface {
	Summary(ctx context.Context, path string) (metadata.FileSummary, error)
}

// Handler is the service's HTTP API: a health check on GET / and
// metadata summaries on POST /process. Responses are always JSON;
// errors use an {"error": message} envelope.
type Handler struct {
	summarizer Summarizer
	logger     *slog.Logger
	mux        *http.ServeMux
}

// NewHandler builds the route table around the given summarizer.
func NewHandler(summarizer Summarizer, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}

	h := &Handler{
		summarizer: summarizer,
		logger:     logger,
		mux:        http.NewServeMux(),
	}
	h.mux.HandleFunc("GET /{$}", h.handleIndex)
	h.mux.HandleFunc("POST /process", h.handleProcess)
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

// handleIndex is the health check.
func (h *Handler) handleIndex(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "darkroom service is running",
	})
}

// processRequest is the POST /process body.
type processRequest struct {
	Input string `json:"input"`
}

func (h *Handler) handleProcess(w http.ResponseWriter, r *http.Request) {
	var request processRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid JSON body: %v", err)
		return
	}
	if request.Input == "" {
		h.sendError(w, http.StatusBadRequest, "Missing input data")
		return
	}

	summary, err := h.summarizer.Summary(r.Context(), request.Input)
	if err != nil {
		// A path the client got wrong is the client's error; anything
		// else is ours.
		status := http.StatusInternalServerError
		if errors.Is(err, exiftool.ErrFileMissing) {
			status = http.StatusBadRequest
		}
		h.logger.Warn("process request failed", "input", request.Input, "error", err)
		h.sendError(w, status, "%v", err)
		return
	}

	h.writeJSON(w, http.StatusOK, map[string]any{"result": summary})
}

// sendError writes an {"error": message} envelope with the given status.
func (h *Handler) sendError(w http.ResponseWriter, status int, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(map[string]string{"error": fmt.Sprintf(format, args...)}); err != nil {
		h.logger.Warn("writing JSON error response", "error", err, "status", status)
	}
}

// writeJSON encodes value as JSON into w, setting the Content-Type
// header. If encoding fails (typically because the client
// disconnected), the error is logged — the caller cannot send a
// corrective response to a dead client.
func (h *Handler) writeJSON(w http.ResponseWriter, status int, value any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(value); err != nil {
		h.logger.Warn("writing JSON response", "error", err)
	}
}
