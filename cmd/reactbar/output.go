// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/tomtom215/reactbar/internal/logging"
)

// pageSource is what pageWriter serializes. *page.Document satisfies it.
type pageSource interface {
	String() string
}

// pageWriter writes the rendered page whenever its serialization changes.
// File output is replaced atomically; "-" or "" writes to stdout.
type pageWriter struct {
	src      pageSource
	path     string
	interval time.Duration
	stdout   io.Writer

	mu     sync.Mutex
	last   string
	writes int
}

func newPageWriter(src pageSource, path string, interval time.Duration) *pageWriter {
	return &pageWriter{src: src, path: path, interval: interval, stdout: os.Stdout}
}

// Flush writes the page if it changed since the last write.
func (w *pageWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	current := w.src.String()
	if w.writes > 0 && current == w.last {
		return nil
	}
	if err := w.writeLocked(current); err != nil {
		return err
	}
	w.last = current
	w.writes++
	return nil
}

func (w *pageWriter) writeLocked(content string) error {
	if w.path == "" || w.path == "-" {
		_, err := io.WriteString(w.stdout, content+"\n")
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(w.path), ".reactbar-*.html")
	if err != nil {
		return fmt.Errorf("create temp output: %w", err)
	}
	if _, err := tmp.WriteString(content); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("write output: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close output: %w", err)
	}
	if err := os.Rename(tmp.Name(), w.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace output: %w", err)
	}
	return nil
}

// Writes returns how many times the page was written.
func (w *pageWriter) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

// Serve implements suture.Service. It flushes every interval and once more
// on shutdown.
func (w *pageWriter) Serve(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if err := w.Flush(); err != nil {
				logging.Warn().Err(err).Msg("Final page write failed")
			}
			return ctx.Err()
		case <-ticker.C:
			if err := w.Flush(); err != nil {
				logging.Warn().Err(err).Str("path", w.path).Msg("Could not write rendered page")
			}
		}
	}
}

func (w *pageWriter) String() string {
	return "page-writer"
}
