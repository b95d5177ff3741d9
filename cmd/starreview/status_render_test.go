package main

import (
	"bytes"
	"strings"
	"testing"

	"starreview/internal/store"
)

func TestStatusPrinterPlain(t *testing.T) {
	var buf bytes.Buffer
	p := newStatusPrinter(&buf)
	p.section(" Videos ")
	p.line("analyzed", videoStatusKind(store.VideoAnalyzed), "3")
	p.line("Transcript", statusInfo, "")

	want := "== Videos ==\n" +
		"------------\n" +
		"  analyzed:            [OK] 3\n" +
		"  Transcript:          [INFO]\n"
	if got := buf.String(); got != want {
		t.Fatalf("unexpected output\n got: %q\nwant: %q", got, want)
	}
}

func TestStatusPrinterColor(t *testing.T) {
	p := &statusPrinter{color: true, width: 20}
	got := p.format("Error", videoStatusKind(store.VideoFailed), "boom")
	if !strings.HasPrefix(got, "\x1b[31m") || !strings.HasSuffix(got, ansiReset) {
		t.Fatalf("expected red line, got %q", got)
	}
	if tag, _ := statusKind(42).style(); tag != "INFO" {
		t.Fatalf("expected unknown kinds to render as INFO, got %q", tag)
	}
}

func TestShouldColorizeHonorsNoColor(t *testing.T) {
	t.Setenv("NO_COLOR", "1")
	if shouldColorize(&bytes.Buffer{}) {
		t.Fatal("expected no color")
	}
}
