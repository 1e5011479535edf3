package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

type level int

const (
	levelInfo level = iota
	levelOK
	levelWarn
	levelError
)

var levelStyles = map[level]struct {
	tag   string
	color string
}{
	levelInfo:  {"INFO", "\x1b[34m"},
	levelOK:    {"OK", "\x1b[32m"},
	levelWarn:  {"WARN", "\x1b[33m"},
	levelError: {"ERROR", "\x1b[31m"},
}

// report buffers a titled block of "label: [TAG] detail" rows and colors them
// when the destination is a terminal.
type report struct {
	out   io.Writer
	color bool
	rows  []string
}

func newReport(out io.Writer, title string) *report {
	r := &report{out: out, color: isTerminal(out)}
	heading := "== " + strings.TrimSpace(title) + " =="
	r.rows = append(r.rows, r.paint(levelInfo, heading), r.paint(levelInfo, strings.Repeat("-", len(heading))))
	return r
}

func (r *report) add(lvl level, label, detail string) *report {
	row := fmt.Sprintf("  %-22s [%s]", label+":", levelStyles[lvl].tag)
	if detail != "" {
		row += " " + detail
	}
	r.rows = append(r.rows, r.paint(lvl, row))
	return r
}

func (r *report) print() {
	fmt.Fprintln(r.out, strings.Join(r.rows, "\n"))
}

func (r *report) paint(lvl level, s string) string {
	if !r.color {
		return s
	}
	return levelStyles[lvl].color + s + "\x1b[0m"
}

// warnIfNonZero flags fallback counters.
func warnIfNonZero(n int) level {
	if n > 0 {
		return levelWarn
	}
	return levelOK
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func writeJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
