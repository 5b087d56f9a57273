package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/davafons/dial/pkg/plugin"
)

var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// PluginPickerModel - Interactive plugin activation
// =============================================================================

// PluginPickerModel is the bubbletea model behind "dial plugins select".
// Space toggles the plugin under the cursor; enter confirms.
type PluginPickerModel struct {
	Plugins   []plugin.Plugin
	Active    []bool
	Cursor    int
	Confirmed bool
}

// NewPluginPickerModel creates a picker starting from the current state.
func NewPluginPickerModel(plugins []plugin.Plugin) PluginPickerModel {
	active := make([]bool, len(plugins))
	for i, p := range plugins {
		active[i] = p.Active
	}
	return PluginPickerModel{Plugins: plugins, Active: active}
}

func (m PluginPickerModel) Init() tea.Cmd {
	return nil
}

func (m PluginPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Plugins)-1 {
			m.Cursor++
		}
	case " ", "x":
		if len(m.Active) > 0 {
			m.Active = append([]bool(nil), m.Active...)
			m.Active[m.Cursor] = !m.Active[m.Cursor]
		}
	case "enter":
		m.Confirmed = true
		return m, tea.Quit
	}
	return m, nil
}

func (m PluginPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Plugins"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  space toggle  ⏎ save  q quit"))
	b.WriteString("\n\n")

	for i, p := range m.Plugins {
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Active[i] {
			box = StyleSuccess.Render("[x]")
		}
		line := fmt.Sprintf("%s%s %-20s %s", cursor, box, p.Name, listDimStyle.Render(p.Version))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case m.Active[i]:
			b.WriteString(listNormalStyle.Render(line))
		default:
			b.WriteString(listDimStyle.Render(line))
		}
		b.WriteString("\n")
		if i == m.Cursor && p.Summary != "" {
			b.WriteString("      " + listDimStyle.Render(p.Summary) + "\n")
		}
	}
	return b.String()
}

// Changes returns the plugins whose state differs from the start, mapped
// to their new state.
func (m PluginPickerModel) Changes() map[string]bool {
	changes := make(map[string]bool)
	for i, p := range m.Plugins {
		if m.Active[i] != p.Active {
			changes[p.Name] = m.Active[i]
		}
	}
	return changes
}
