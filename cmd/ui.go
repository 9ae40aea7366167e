// SPDX-License-Identifier: MIT
// Copyright (c) 2026, Digital Hand LLC.

package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"golang.org/x/term"

	"github.com/digitalhand/ros2-setup/internal/runner"
)

const (
	ansiReset  = "\033[0m"
	ansiRed    = "\033[31m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiCyan   = "\033[36m"
	ansiBold   = "\033[1m"
	ansiDim    = "\033[2m"
)

func useColor() bool {
	return colorAllowed(os.Getenv, term.IsTerminal(int(os.Stdout.Fd())))
}

// colorAllowed honors NO_COLOR and TERM=dumb, and only colors a terminal.
func colorAllowed(getenv func(string) string, tty bool) bool {
	if getenv("NO_COLOR") != "" {
		return false
	}

	t := getenv("TERM")
	return tty && t != "" && t != "dumb"
}

func colorize(color, text string) string {
	if !useColor() {
		return text
	}
	return color + text + ansiReset
}

func styleText(style, text string) string {
	if !useColor() {
		return text
	}
	return style + text + ansiReset
}

func markSuccess() string {
	return colorize(ansiGreen, "✓")
}

func markFailure() string {
	return colorize(ansiRed, "✗")
}

func markWarning() string {
	return colorize(ansiYellow, "!")
}

func markInfo() string {
	return colorize(ansiCyan, "•")
}

func headerText(text string) string {
	return styleText(ansiBold+ansiCyan, text)
}

func dimText(text string) string {
	return styleText(ansiDim, text)
}

func printStatus(w io.Writer, mark, name, detail string) {
	fmt.Fprintf(w, "%s %-34s %s\n", mark, name, detail)
}

func printHeader(w io.Writer, title string) {
	fmt.Fprintln(w, headerText(title))
	fmt.Fprintln(w, dimText(strings.Repeat("─", len([]rune(title)))))
}

func printSummaryBox(w io.Writer, passed, warned, failed int) {
	total := passed + warned + failed
	parts := []string{
		colorize(ansiGreen, fmt.Sprintf("%d passed", passed)),
	}
	if warned > 0 {
		parts = append(parts, colorize(ansiYellow, fmt.Sprintf("%d warned", warned)))
	}
	if failed > 0 {
		parts = append(parts, colorize(ansiRed, fmt.Sprintf("%d failed", failed)))
	}
	fmt.Fprintf(w, "\n%s  %s\n", dimText(fmt.Sprintf("[%d checks]", total)), strings.Join(parts, dimText(", ")))
}

func formatDuration(d time.Duration) string {
	switch {
	case d < time.Second:
		return fmt.Sprintf("%dms", d.Milliseconds())
	case d < time.Minute:
		return fmt.Sprintf("%.1fs", d.Seconds())
	default:
		m := int(d.Minutes())
		sec := int(d.Seconds()) % 60
		return fmt.Sprintf("%dm%02ds", m, sec)
	}
}

// progressPrinter renders pipeline progress. It implements
// provision.Reporter.
type progressPrinter struct {
	w      io.Writer
	dryRun bool
}

func (p progressPrinter) Step(i, total int, name string) {
	fmt.Fprintf(p.w, "%s %s\n",
		dimText(fmt.Sprintf("[%d/%d]", i, total)),
		styleText(ansiBold, name))
}

func (p progressPrinter) Command(c runner.Command) {
	fmt.Fprintf(p.w, "      %s\n", dimText(c.String()))
}

func (p progressPrinter) Done(d time.Duration) {
	if p.dryRun {
		fmt.Fprintln(p.w, "      [DRY] skipped")
		return
	}
	fmt.Fprintf(p.w, "      %s %s\n", markSuccess(), dimText(formatDuration(d)))
}

func (p progressPrinter) Failed(err error) {
	fmt.Fprintf(p.w, "      %s step failed: %v\n", markFailure(), err)
}

func (p progressPrinter) Notice(msg string) {
	fmt.Fprintf(p.w, "      %s %s\n", markInfo(), msg)
}

// helpGroup defines a visual grouping for cobra help output.
type helpGroup struct {
	title    string
	commands []helpEntry
}

type helpEntry struct {
	name string
	desc string
}

func printGroupedHelp(w io.Writer, groups []helpGroup) {
	for _, g := range groups {
		fmt.Fprintf(w, "\n%s\n", headerText(g.title))
		for _, e := range g.commands {
			fmt.Fprintf(w, "  %-24s %s\n", e.name, dimText(e.desc))
		}
	}
	fmt.Fprintln(w)
}
