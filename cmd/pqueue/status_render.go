package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

type statusKind int

const (
	statusInfo statusKind = iota
	statusOK
	statusWarn
	statusError
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

var statusStyles = map[statusKind]struct{ label, color string }{
	statusInfo:  {"INFO", ansiBlue},
	statusOK:    {"OK", ansiGreen},
	statusWarn:  {"WARN", ansiYellow},
	statusError: {"ERROR", ansiRed},
}

const statusLabelWidth = 20

// statusWriter prints labelled check results, colored when out is a terminal.
type statusWriter struct {
	out      io.Writer
	colorize bool
}

func newStatusWriter(out io.Writer) *statusWriter {
	return &statusWriter{out: out, colorize: shouldColorize(out)}
}

func (w *statusWriter) section(title string) {
	heading := fmt.Sprintf("== %s ==", strings.TrimSpace(title))
	rule := strings.Repeat("-", len(heading))
	fmt.Fprintln(w.out, w.paint(ansiBlue, heading))
	fmt.Fprintln(w.out, w.paint(ansiBlue, rule))
}

func (w *statusWriter) line(label string, kind statusKind, detail string) {
	fmt.Fprintln(w.out, w.paint(statusStyles[kind].color, formatStatusLine(label, kind, detail)))
}

// check prints an OK line when passed and a failKind line otherwise.
func (w *statusWriter) check(label string, passed bool, failKind statusKind, detail string) {
	kind := failKind
	if passed {
		kind = statusOK
	}
	w.line(label, kind, detail)
}

func (w *statusWriter) paint(color, s string) string {
	if !w.colorize || color == "" {
		return s
	}
	return color + s + ansiReset
}

func formatStatusLine(label string, kind statusKind, detail string) string {
	text := "[" + statusStyles[kind].label + "]"
	if detail != "" {
		text += " " + detail
	}
	return fmt.Sprintf("  %-*s %s", statusLabelWidth, label+":", text)
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
