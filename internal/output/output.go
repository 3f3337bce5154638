// Package output provides styled terminal output for the taogen CLI.
//
// Every command reports progress through this package so the look stays
// consistent. Styling is done with lipgloss; callers only pass plain text.
//
//	output.Info("Generating entity: EntWidget")
//	output.Success("Entity EntWidget generated")
//	output.Step("run `taogen generate EntWidgetSchema --compile` to build the Thrift code")
package output

import (
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
)

var (
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Bold(true)
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14"))
	stepStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))

	addedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	removedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
	hunkStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)

	mu          sync.Mutex
	out         io.Writer = os.Stdout
	verboseMode bool
)

// SetOutput redirects all output to w and returns the previous writer.
// Tests use it to capture what a command prints.
func SetOutput(w io.Writer) io.Writer {
	mu.Lock()
	defer mu.Unlock()
	prev := out
	if w == nil {
		w = os.Stdout
	}
	out = w
	return prev
}

// Writer returns the writer output is currently sent to.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return out
}

// SetVerbose enables or disables verbose output.
// The CLI calls this when --verbose is set.
func SetVerbose(v bool) {
	mu.Lock()
	verboseMode = v
	mu.Unlock()
}

func emit(s string) {
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprintln(out, s)
}

// Success prints a completed operation in green.
func Success(msg string) {
	emit(successStyle.Render("✅ " + msg))
}

// Error prints a failure that needs the user's attention.
func Error(msg string) {
	emit(errorStyle.Render("❌ " + msg))
}

// Warn prints a non-fatal problem, e.g. an artifact that was skipped.
func Warn(msg string) {
	emit(warnStyle.Render("⚠️  " + msg))
}

// Info prints a status update.
func Info(msg string) {
	emit(infoStyle.Render("ℹ️  " + msg))
}

// Step prints an indented sub-item or next step.
func Step(msg string) {
	emit(stepStyle.Render("   " + msg))
}

// Verbose prints msg only when verbose mode is enabled.
func Verbose(msg string) {
	mu.Lock()
	enabled := verboseMode
	mu.Unlock()
	if enabled {
		emit(stepStyle.Render("🔍 " + msg))
	}
}

// Diff prints a unified diff with added and removed lines coloured.
// An empty diff prints nothing.
func Diff(diff string) {
	if diff == "" {
		return
	}
	mu.Lock()
	defer mu.Unlock()
	fmt.Fprint(out, ColorizeDiff(diff))
}

// ColorizeDiff styles each line of a unified diff by its prefix.
func ColorizeDiff(diff string) string {
	if diff == "" {
		return ""
	}
	var b strings.Builder
	for _, line := range strings.Split(strings.TrimSuffix(diff, "\n"), "\n") {
		switch {
		case strings.HasPrefix(line, "+++"), strings.HasPrefix(line, "---"):
			b.WriteString(stepStyle.Render(line))
		case strings.HasPrefix(line, "@@"):
			b.WriteString(hunkStyle.Render(line))
		case strings.HasPrefix(line, "+"):
			b.WriteString(addedStyle.Render(line))
		case strings.HasPrefix(line, "-"):
			b.WriteString(removedStyle.Render(line))
		default:
			b.WriteString(line)
		}
		b.WriteString("\n")
	}
	return b.String()
}
