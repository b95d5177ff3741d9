package deps

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Blank", Command: " ", Optional: true},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available || results[0].Path != present || results[0].Detail != "" {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[2].Detail != "command not configured" {
		t.Fatalf("unexpected detail for blank command: %q", results[2].Detail)
	}

	missing := Missing(results)
	if len(missing) != 1 || missing[0].Name != "Missing" {
		t.Fatalf("expected only the required missing binary, got %#v", missing)
	}
}

func TestVersionReadsFirstLine(t *testing.T) {
	stub := filepath.Join(t.TempDir(), "ffmpeg")
	script := []byte("#!/bin/sh\necho 'ffmpeg version 7.1 Copyright (c) 2000-2024'\necho 'built with gcc'\n")
	if err := os.WriteFile(stub, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	got, err := Version(context.Background(), stub)
	if err != nil {
		t.Fatalf("Version returned error: %v", err)
	}
	if got != "ffmpeg version 7.1 Copyright (c) 2000-2024" {
		t.Fatalf("unexpected version line %q", got)
	}
}

func TestVersionFailsForMissingBinary(t *testing.T) {
	if _, err := Version(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing binary")
	}
	if _, err := Version(context.Background(), ""); err == nil {
		t.Fatal("expected error for blank binary")
	}
}
