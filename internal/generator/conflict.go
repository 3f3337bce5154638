package generator

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/romilpunetha/tao/internal/output"
)

// ConflictResolution represents what to do with an existing file
type ConflictResolution int

const (
	Skip ConflictResolution = iota
	Overwrite
	ShowDiff
	Cancel
)

func (r ConflictResolution) String() string {
	switch r {
	case Skip:
		return "skip"
	case Overwrite:
		return "overwrite"
	case ShowDiff:
		return "show diff"
	default:
		return "cancel"
	}
}

// ErrNotInteractive is returned when a conflict needs a decision but there is
// no terminal to ask on.
var ErrNotInteractive = errors.New("file exists with different content and no terminal is attached; rerun with --force or --skip")

// inlineDiffLines is the largest diff printed inline; longer diffs open in a
// scrollable viewer.
const inlineDiffLines = 20

// isTerminal reports whether prompts can be shown. Replaced in tests.
var isTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
}

// Resolver decides what happens to generated files that already exist with
// different content.
type Resolver struct {
	strategy ConflictStrategy
}

// ConflictStrategy determines how to resolve conflicts
type ConflictStrategy interface {
	Resolve(path string, existing, newer []byte) (ConflictResolution, error)
}

var (
	warningStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true)
	selectedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("14")).Bold(true)
	mutedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	borderStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	titleStyle    = lipgloss.NewStyle().Bold(true)
)

// NewResolver creates a conflict resolver with the specified flags.
// Returns error if --force is combined with --skip or --diff.
func NewResolver(force, skip, diff bool) (*Resolver, error) {
	if force && (skip || diff) {
		return nil, fmt.Errorf("--force cannot be combined with --skip or --diff")
	}
	return &Resolver{strategy: selectStrategy(force, skip, diff)}, nil
}

// NewResolverWithStrategy creates a resolver around a custom strategy.
func NewResolverWithStrategy(s ConflictStrategy) *Resolver {
	return &Resolver{strategy: s}
}

// ResolveConflict determines what to do with a file that already exists.
// A ShowDiff answer prints the diff and asks again, so the result is always
// Skip, Overwrite or Cancel.
func (r *Resolver) ResolveConflict(path string, existing, newer []byte) (ConflictResolution, error) {
	for {
		res, err := r.strategy.Resolve(path, existing, newer)
		if err != nil || res != ShowDiff {
			return res, err
		}
		if err := showDiff(path, existing, newer); err != nil {
			return Cancel, err
		}
	}
}

// selectStrategy chooses the appropriate strategy based on flags
func selectStrategy(force, skip, diff bool) ConflictStrategy {
	switch {
	case force:
		return &ForceStrategy{}
	case skip:
		return &SkipStrategy{}
	case diff:
		return &DiffStrategy{}
	default:
		return &InteractiveStrategy{}
	}
}

// ForceStrategy always overwrites.
type ForceStrategy struct{}

func (s *ForceStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	return Overwrite, nil
}

// SkipStrategy always keeps the existing file.
type SkipStrategy struct{}

func (s *SkipStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	return Skip, nil
}

// DiffStrategy shows the diff first, then asks.
type DiffStrategy struct{}

func (s *DiffStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	if err := showDiff(path, existing, newer); err != nil {
		return Cancel, err
	}
	return (&InteractiveStrategy{}).Resolve(path, existing, newer)
}

// InteractiveStrategy shows menu with keyboard navigation
type InteractiveStrategy struct{}

func (s *InteractiveStrategy) Resolve(path string, existing, newer []byte) (ConflictResolution, error) {
	if !isTerminal() {
		return Cancel, fmt.Errorf("%s: %w", path, ErrNotInteractive)
	}

	fileInfo, err := os.Stat(path)
	if err != nil && !os.IsNotExist(err) {
		return Cancel, fmt.Errorf("failed to stat file: %w", err)
	}

	finalModel, err := tea.NewProgram(newConflictMenuModel(path, fileInfo)).Run()
	if err != nil {
		return Cancel, fmt.Errorf("failed to show menu: %w", err)
	}

	result := finalModel.(conflictMenuModel)
	if result.selected == nil {
		return Cancel, nil
	}
	return *result.selected, nil
}

// showDiff prints short diffs inline and pages long ones when a terminal is
// attached.
func showDiff(path string, existing, newer []byte) error {
	diff := Diff(path, existing, newer)
	if strings.Count(diff, "\n") <= inlineDiffLines || !isTerminal() {
		output.Diff(diff)
		return nil
	}

	if _, err := tea.NewProgram(newDiffViewerModel(path, diff), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to show diff: %w", err)
	}
	return nil
}

// conflictMenuModel is the BubbleTea model for the conflict menu
type conflictMenuModel struct {
	path     string
	fileInfo os.FileInfo
	choices  []string
	cursor   int
	selected *ConflictResolution
}

func newConflictMenuModel(path string, fileInfo os.FileInfo) conflictMenuModel {
	return conflictMenuModel{
		path:     path,
		fileInfo: fileInfo,
		choices: []string{
			"Show diff and decide",
			"Skip (keep existing file)",
			"Overwrite (replace with generated code)",
			"Cancel generation",
		},
	}
}

func (m conflictMenuModel) Init() tea.Cmd {
	return nil
}

func (m conflictMenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch key.String() {
	case "ctrl+c", "q", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "j":
		if m.cursor < len(m.choices)-1 {
			m.cursor++
		}
	case "enter":
		resolution := mapChoiceToResolution(m.cursor)
		m.selected = &resolution
		return m, tea.Quit
	}
	return m, nil
}

func (m conflictMenuModel) View() string {
	var b strings.Builder

	b.WriteString(warningStyle.Render("⚠️  Generated file differs from disk: ") + titleStyle.Render(m.path) + "\n")
	if m.fileInfo != nil {
		b.WriteString(mutedStyle.Render("    Last modified: ") + formatRelativeTime(m.fileInfo.ModTime()) + "\n")
		b.WriteString(mutedStyle.Render("    Size: ") + formatFileSize(m.fileInfo.Size()) + "\n")
	}
	b.WriteString("\n")
	b.WriteString(mutedStyle.Render("    [↑/↓] Navigate    [Enter] Select    [q] Cancel") + "\n\n")

	for i, choice := range m.choices {
		if m.cursor == i {
			b.WriteString("    " + selectedStyle.Render("> "+choice) + "\n")
		} else {
			b.WriteString("      " + choice + "\n")
		}
	}
	return b.String()
}

func mapChoiceToResolution(cursor int) ConflictResolution {
	switch cursor {
	case 0:
		return ShowDiff
	case 1:
		return Skip
	case 2:
		return Overwrite
	default:
		return Cancel
	}
}

// diffViewerModel pages a long diff in a viewport.
type diffViewerModel struct {
	path     string
	diff     string
	viewport viewport.Model
	ready    bool
}

func newDiffViewerModel(path, diff string) diffViewerModel {
	return diffViewerModel{path: path, diff: diff}
}

func (m diffViewerModel) Init() tea.Cmd {
	return nil
}

func (m diffViewerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		const chrome = 4 // header and footer lines
		if !m.ready {
			m.viewport = viewport.New(msg.Width, max(1, msg.Height-chrome))
			m.viewport.SetContent(output.ColorizeDiff(m.diff))
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = max(1, msg.Height-chrome)
		}
	}

	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

func (m diffViewerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}

	rule := borderStyle.Render(strings.Repeat("─", max(0, m.viewport.Width)))
	header := titleStyle.Render("Diff: "+m.path) + "\n" + rule
	footer := rule + "\n" + mutedStyle.Render(fmt.Sprintf(" %3.f%%  [↑/↓/pgup/pgdown] Scroll    [q] Return to menu", m.viewport.ScrollPercent()*100))
	return header + "\n" + m.viewport.View() + "\n" + footer
}

var relativeUnits = []struct {
	size time.Duration
	name string
}{
	{365 * 24 * time.Hour, "year"},
	{30 * 24 * time.Hour, "month"},
	{7 * 24 * time.Hour, "week"},
	{24 * time.Hour, "day"},
	{time.Hour, "hour"},
	{time.Minute, "minute"},
}

// formatRelativeTime formats a time as relative (e.g., "2 hours ago")
func formatRelativeTime(t time.Time) string {
	d := time.Since(t)
	for _, u := range relativeUnits {
		if d < u.size {
			continue
		}
		n := int(d / u.size)
		if n == 1 {
			return "1 " + u.name + " ago"
		}
		return fmt.Sprintf("%d %ss ago", n, u.name)
	}
	return "just now"
}

// formatFileSize formats file size in human-readable format
func formatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}

	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
