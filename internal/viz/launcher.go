package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan    = lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true)
	white   = lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true)
	dim     = lipgloss.NewStyle().Foreground(lipgloss.Color("#555566"))
	dimmer  = lipgloss.NewStyle().Foreground(lipgloss.Color("#444455"))
	magenta = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff"))
	red     = lipgloss.NewStyle().Foreground(lipgloss.Color("#ff4444"))
	heading = lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true)
	keyHint = lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true)
)

// StartFunc builds the live model for a chosen preset.
type StartFunc func(preset string) (Model, error)

// Launcher is a menu of presets that hands over to the live view.
type Launcher struct {
	presets  []string
	describe func(string) string
	start    StartFunc

	cursor  int
	live    *Model
	err     error
	winSize *tea.WindowSizeMsg
}

func NewLauncher(presets []string, describe func(string) string, start StartFunc) Launcher {
	if describe == nil {
		describe = func(string) string { return "" }
	}
	return Launcher{presets: presets, describe: describe, start: start}
}

func (l Launcher) Init() tea.Cmd { return nil }

// Live is the running model once a preset has been started.
func (l Launcher) Live() (Model, bool) {
	if l.live == nil {
		return Model{}, false
	}
	return *l.live, true
}

func (l Launcher) Selected() string {
	if len(l.presets) == 0 {
		return ""
	}
	return l.presets[l.cursor]
}

func (l Launcher) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if l.live != nil {
		next, cmd := l.live.Update(msg)
		live := next.(Model)
		l.live = &live
		return l, cmd
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		l.winSize = &msg
	case tea.KeyMsg:
		return l.menuKey(msg)
	}
	return l, nil
}

func (l Launcher) menuKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return l, tea.Quit
	case "up", "k":
		if l.cursor > 0 {
			l.cursor--
		}
	case "down", "j":
		if l.cursor < len(l.presets)-1 {
			l.cursor++
		}
	case "enter", " ":
		if len(l.presets) == 0 || l.start == nil {
			return l, nil
		}
		live, err := l.start(l.Selected())
		if err != nil {
			l.err = err
			return l, nil
		}
		l.err = nil
		if l.winSize != nil {
			next, _ := live.Update(*l.winSize)
			live = next.(Model)
		}
		l.live = &live
		return l, live.Init()
	}
	return l, nil
}

func (l Launcher) View() string {
	if l.live != nil {
		return l.live.View()
	}

	var b strings.Builder
	b.WriteString("\n\n    " + heading.Render("MORPHFIELD") + "\n    " +
		dim.Render("tree, scatter and heart in particles") + "\n    " +
		dim.Render("─────────────────────────") + "\n\n")
	for i, name := range l.presets {
		desc := l.describe(name)
		if len(desc) > 36 {
			desc = desc[:33] + "..."
		}
		if i == l.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", cyan.Render("▸"), white.Render(fmt.Sprintf("%-12s", name)), magenta.Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", dim.Render(fmt.Sprintf("  %-12s", name)), dimmer.Render(desc)))
		}
	}
	if l.err != nil {
		b.WriteString("\n    " + red.Render(l.err.Error()) + "\n")
	}
	b.WriteString("\n    " + keyHint.Render("j/k") + dim.Render(" navigate  ") +
		keyHint.Render("enter") + dim.Render(" start  ") +
		keyHint.Render("q") + dim.Render(" quit") + "\n")
	return b.String()
}

func RunLauncher(l Launcher) error {
	_, err := tea.NewProgram(l, tea.WithAltScreen()).Run()
	return err
}
