// Reactbar - Discussion Reaction Cache and Reconciliation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reactbar

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

type mutablePage struct {
	mu   sync.Mutex
	html string
}

func (p *mutablePage) String() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.html
}

func (p *mutablePage) set(s string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.html = s
}

func TestPageWriter_FileOnlyOnChange(t *testing.T) {
	src := &mutablePage{html: "<p>one</p>"}
	path := filepath.Join(t.TempDir(), "out.html")
	w := newPageWriter(src, path, time.Hour)

	for i := 0; i < 3; i++ {
		if err := w.Flush(); err != nil {
			t.Fatalf("Flush: %v", err)
		}
	}
	if w.Writes() != 1 {
		t.Errorf("Writes() = %d after unchanged flushes, want 1", w.Writes())
	}

	src.set("<p>two</p>")
	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != "<p>two</p>" {
		t.Errorf("output = %q", got)
	}
	if w.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", w.Writes())
	}

	leftovers, _ := filepath.Glob(filepath.Join(filepath.Dir(path), ".reactbar-*"))
	if len(leftovers) != 0 {
		t.Errorf("temp files left behind: %v", leftovers)
	}
}

func TestPageWriter_Stdout(t *testing.T) {
	var buf bytes.Buffer
	w := newPageWriter(&mutablePage{html: "<p>x</p>"}, "-", time.Hour)
	w.stdout = &buf

	if err := w.Flush(); err != nil {
		t.Fatalf("Flush: %v", err)
	}
	if buf.String() != "<p>x</p>\n" {
		t.Errorf("stdout = %q", buf.String())
	}
}

func TestPageWriter_MissingDirectory(t *testing.T) {
	w := newPageWriter(&mutablePage{html: "x"}, filepath.Join(t.TempDir(), "no", "such", "out.html"), time.Hour)
	if err := w.Flush(); err == nil {
		t.Fatal("expected error for missing directory")
	}
	if w.Writes() != 0 {
		t.Error("a failed write must not count")
	}
}

func TestPageWriter_ServeFlushesPeriodically(t *testing.T) {
	src := &mutablePage{html: "a"}
	var buf syncBuffer
	w := newPageWriter(src, "-", 5*time.Millisecond)
	w.stdout = &buf

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Serve(ctx) }()

	deadline := time.Now().Add(2 * time.Second)
	for w.Writes() < 1 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	src.set("b")
	for w.Writes() < 2 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Errorf("Serve() = %v, want context.Canceled", err)
	}
	if w.Writes() != 2 {
		t.Errorf("Writes() = %d, want 2", w.Writes())
	}
	if buf.String() != "a\nb\n" {
		t.Errorf("stdout = %q", buf.String())
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}
