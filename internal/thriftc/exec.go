package thriftc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Executor runs external commands.
type Executor struct {
	stdout io.Writer
	stderr io.Writer
	dir    string

	// For mocking in tests
	commandFunc func(ctx context.Context, name string, args ...string) *exec.Cmd
}

// Options configures command execution
type Options struct {
	Stdout io.Writer
	Stderr io.Writer
	Dir    string // Working directory
	// Prefix is prepended to every line of command output when set.
	Prefix string
}

// NewExecutor creates an executor; nil writers default to the process streams.
func NewExecutor(opts Options) *Executor {
	if opts.Stdout == nil {
		opts.Stdout = os.Stdout
	}
	if opts.Stderr == nil {
		opts.Stderr = os.Stderr
	}
	if opts.Prefix != "" {
		opts.Stdout = newLineWriter(opts.Stdout, opts.Prefix)
		opts.Stderr = newLineWriter(opts.Stderr, opts.Prefix)
	}
	return &Executor{
		stdout:      opts.Stdout,
		stderr:      opts.Stderr,
		dir:         opts.Dir,
		commandFunc: exec.CommandContext,
	}
}

// Run executes a command and waits for it. Cancelling ctx kills the process.
func (e *Executor) Run(ctx context.Context, name string, args ...string) error {
	cmd := e.commandFunc(ctx, name, args...)
	if e.dir != "" {
		cmd.Dir = e.dir
	}
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	defer e.flush()

	if err := cmd.Run(); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return fmt.Errorf("%s cancelled: %w", name, ctxErr)
		}
		if errors.Is(err, exec.ErrNotFound) {
			return fmt.Errorf("%w\n💡 Command '%s' not found. Install the Thrift compiler or set thrift.compiler in taogen.yml", err, name)
		}
		return fmt.Errorf("%s failed: %w", name, err)
	}
	return nil
}

func (e *Executor) flush() {
	for _, w := range []io.Writer{e.stdout, e.stderr} {
		if lw, ok := w.(*lineWriter); ok {
			_ = lw.Flush()
		}
	}
}

// RunWithSpinner runs a command behind a spinner. Output is buffered and
// stderr is attached to the error when the command fails.
func (e *Executor) RunWithSpinner(ctx context.Context, message, name string, args ...string) error {
	var stdout, stderr bytes.Buffer
	quiet := &Executor{
		stdout:      &stdout,
		stderr:      &stderr,
		dir:         e.dir,
		commandFunc: e.commandFunc,
	}

	p := tea.NewProgram(newSpinnerModel(message), tea.WithOutput(e.stderr), tea.WithInput(nil))
	finished := make(chan struct{})
	go func() {
		_, _ = p.Run()
		close(finished)
	}()

	err := quiet.Run(ctx, name, args...)
	p.Send(spinnerDoneMsg{err: err})

	select {
	case <-finished:
	case <-time.After(time.Second):
		p.Kill()
	}

	if err != nil && stderr.Len() > 0 {
		return fmt.Errorf("%w\n%s", err, strings.TrimSpace(stderr.String()))
	}
	return err
}

type spinnerModel struct {
	spinner spinner.Model
	message string
	done    bool
	err     error
}

type spinnerDoneMsg struct {
	err error
}

func newSpinnerModel(message string) *spinnerModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &spinnerModel{spinner: s, message: message}
}

func (m *spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case spinnerDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case spinner.TickMsg:
		if !m.done {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
	}
	return m, nil
}

func (m *spinnerModel) View() string {
	if m.done {
		if m.err != nil {
			return fmt.Sprintf("❌ %s\n", m.message)
		}
		return fmt.Sprintf("✅ %s\n", m.message)
	}
	return fmt.Sprintf("%s %s...", m.spinner.View(), m.message)
}
