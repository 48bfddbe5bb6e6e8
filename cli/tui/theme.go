package tui

import (
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"
)

type Theme struct {
	TitleStyle         lipgloss.Style
	BorderStyle        lipgloss.Style
	PreviewBorderStyle lipgloss.Style
	PreviewStyle       lipgloss.Style
	NormalItemStyle    lipgloss.Style
	SelectedItemStyle  lipgloss.Style
	DirectoryStyle     lipgloss.Style
	MountStyle         lipgloss.Style
	FileStyle          lipgloss.Style
	StatusBarStyle     lipgloss.Style
	ErrorStyle         lipgloss.Style
	CommandStyle       lipgloss.Style
	HelpStyle          lipgloss.Style
}

func DefaultTheme() *Theme {
	accent := lipgloss.Color("63")
	muted := lipgloss.Color("241")

	return &Theme{
		TitleStyle:         lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(accent).Padding(0, 1),
		BorderStyle:        lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(accent),
		PreviewBorderStyle: lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(muted),
		PreviewStyle:       lipgloss.NewStyle(),
		NormalItemStyle:    lipgloss.NewStyle().Foreground(muted),
		SelectedItemStyle:  lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("57")),
		DirectoryStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		MountStyle:         lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		FileStyle:          lipgloss.NewStyle(),
		StatusBarStyle:     lipgloss.NewStyle().Foreground(lipgloss.Color("252")).Background(lipgloss.Color("236")).Padding(0, 1),
		ErrorStyle:         lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		CommandStyle:       lipgloss.NewStyle().Foreground(lipgloss.Color("229")),
		HelpStyle:          lipgloss.NewStyle().Foreground(muted),
	}
}

type KeyMap struct {
	Up            key.Binding
	Down          key.Binding
	PageUp        key.Binding
	PageDown      key.Binding
	Top           key.Binding
	Bottom        key.Binding
	Enter         key.Binding
	Back          key.Binding
	TogglePreview key.Binding
	Refresh       key.Binding
	NewFile       key.Binding
	Command       key.Binding
	Help          key.Binding
	Quit          key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:            key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:          key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:        key.NewBinding(key.WithKeys("pgup", "ctrl+u"), key.WithHelp("pgup", "page up")),
		PageDown:      key.NewBinding(key.WithKeys("pgdown", "ctrl+d"), key.WithHelp("pgdn", "page down")),
		Top:           key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("g", "top")),
		Bottom:        key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("G", "bottom")),
		Enter:         key.NewBinding(key.WithKeys("enter", "l"), key.WithHelp("enter", "open")),
		Back:          key.NewBinding(key.WithKeys("backspace", "h"), key.WithHelp("h", "parent")),
		TogglePreview: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "preview")),
		Refresh:       key.NewBinding(key.WithKeys("ctrl+r"), key.WithHelp("ctrl+r", "refresh")),
		NewFile:       key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "new file")),
		Command:       key.NewBinding(key.WithKeys(":"), key.WithHelp(":", "command")),
		Help:          key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:          key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Back, k.Command, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Top, k.Bottom},
		{k.Enter, k.Back, k.TogglePreview, k.Refresh},
		{k.NewFile, k.Command, k.Help, k.Quit},
	}
}
