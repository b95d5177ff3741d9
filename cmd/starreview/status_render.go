package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"starreview/internal/store"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const ansiReset = "\x1b[0m"

// Tag and ANSI color per kind, indexed by statusKind.
var statusStyles = [...]struct{ tag, color string }{
	statusInfo:  {"INFO", "\x1b[34m"},
	statusOK:    {"OK", "\x1b[32m"},
	statusWarn:  {"WARN", "\x1b[33m"},
	statusError: {"ERROR", "\x1b[31m"},
}

func (k statusKind) style() (tag, color string) {
	if k < 0 || int(k) >= len(statusStyles) {
		k = statusInfo
	}
	s := statusStyles[k]
	return s.tag, s.color
}

// videoStatusKind maps a video lifecycle status onto a display kind.
func videoStatusKind(status store.VideoStatus) statusKind {
	switch status {
	case store.VideoAnalyzed:
		return statusOK
	case store.VideoProcessing:
		return statusWarn
	case store.VideoFailed:
		return statusError
	default:
		return statusInfo
	}
}

// statusPrinter writes the aligned "label: [TAG] message" report used by
// doctor and status.
type statusPrinter struct {
	out   io.Writer
	color bool
	width int
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{out: out, color: shouldColorize(out), width: 20}
}

func (p *statusPrinter) paint(color, text string) string {
	if !p.color || color == "" {
		return text
	}
	return color + text + ansiReset
}

func (p *statusPrinter) section(title string) {
	heading := "== " + strings.TrimSpace(title) + " =="
	blue := statusStyles[statusInfo].color
	fmt.Fprintln(p.out, p.paint(blue, heading))
	fmt.Fprintln(p.out, p.paint(blue, strings.Repeat("-", len(heading))))
}

func (p *statusPrinter) line(label string, kind statusKind, message string) {
	fmt.Fprintln(p.out, p.format(label, kind, message))
}

func (p *statusPrinter) format(label string, kind statusKind, message string) string {
	tag, color := kind.style()
	text := "[" + tag + "]"
	if message != "" {
		text += " " + message
	}
	return p.paint(color, fmt.Sprintf("  %-*s %s", p.width, label+":", text))
}

// blank separates sections.
func (p *statusPrinter) blank() {
	fmt.Fprintln(p.out)
}

// shouldColorize is false under NO_COLOR or when out is not a terminal.
func shouldColorize(out io.Writer) bool {
	if _, set := os.LookupEnv("NO_COLOR"); set {
		return false
	}
	f, ok := out.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
