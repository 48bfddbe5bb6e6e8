package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// View renders the TUI
func (m *Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	if m.mode == ModeHelp {
		return m.renderHelp()
	}

	return m.renderMain()
}

// renderMain renders the main file browser view
func (m *Model) renderMain() string {
	sections := []string{
		m.renderTitle(),
		m.renderContent(),
		m.renderStatus(),
	}

	if m.mode == ModeCommand || m.mode == ModeInput {
		sections = append(sections, m.renderInput())
	}

	if m.commandOut != "" {
		sections = append(sections, m.renderCommandOutput())
	}

	sections = append(sections, m.theme.HelpStyle.Render(m.help.ShortHelpView(m.keys.ShortHelp())))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderTitle() string {
	return m.theme.TitleStyle.Render(fmt.Sprintf("agentfs - %s", m.currentPath))
}

// renderContent renders the file list and preview pane
func (m *Model) renderContent() string {
	height := m.getVisibleLines() + 2

	if !m.showPreview {
		return m.theme.BorderStyle.Width(m.width - 4).Height(height).Render(m.renderFileList(40))
	}

	leftWidth := m.width / 2
	rightWidth := m.width - leftWidth - 4 // Account for borders

	return lipgloss.JoinHorizontal(lipgloss.Top,
		m.theme.BorderStyle.Width(leftWidth).Height(height).Render(m.renderFileList(30)),
		m.theme.PreviewBorderStyle.Width(rightWidth).Height(height).Render(m.renderPreview()),
	)
}

func (m *Model) renderFileList(nameWidth int) string {
	if len(m.entries) == 0 {
		return m.theme.NormalItemStyle.Render("(empty directory)")
	}

	end := min(m.offset+m.getVisibleLines(), len(m.entries))
	lines := make([]string, 0, end-m.offset)

	for i := m.offset; i < end; i++ {
		entry := m.entries[i]

		style := m.theme.FileStyle
		switch {
		case i == m.cursor:
			style = m.theme.SelectedItemStyle
		case entry.IsMount:
			style = m.theme.MountStyle
		case entry.IsDir:
			style = m.theme.DirectoryStyle
		}

		name := entry.DisplayName()
		if len(name) > nameWidth {
			name = name[:nameWidth-3] + "..."
		}

		lines = append(lines, style.Render(fmt.Sprintf("%s %-*s %10s", entry.Icon(), nameWidth, name, entry.DisplaySize())))
	}

	return strings.Join(lines, "\n")
}

func (m *Model) renderPreview() string {
	entry := m.currentEntry()
	if entry == nil {
		return m.theme.PreviewStyle.Render("No file selected")
	}

	if entry.IsDir {
		info := fmt.Sprintf("Directory: %s\n\nPath: %s\n", entry.Name, entry.Path)
		if entry.IsMount {
			info += "Mount point\n"
		}
		return m.theme.PreviewStyle.Render(info)
	}

	if m.previewError != nil {
		return m.theme.ErrorStyle.Render(m.previewError.Error())
	}

	info := fmt.Sprintf("File: %s\nSize: %s\nModified: %s\n\n--- Preview ---\n", entry.Name, entry.DisplaySize(), entry.DisplayModTime())

	lines := strings.Split(m.previewContent, "\n")
	if maxLines := m.getVisibleLines() - 6; len(lines) > maxLines {
		lines = append(lines[:maxLines], "...")
	}

	return m.theme.PreviewStyle.Render(info + strings.Join(lines, "\n"))
}

func (m *Model) renderStatus() string {
	left := "0 items"
	if len(m.entries) > 0 {
		left = fmt.Sprintf("%d/%d items", m.cursor+1, len(m.entries))
	}

	right := m.statusMsg
	if m.errorMsg != "" {
		right = m.theme.ErrorStyle.Render(m.errorMsg)
	}

	spacing := max(m.width-lipgloss.Width(left)-lipgloss.Width(right)-4, 0)
	return m.theme.StatusBarStyle.Width(m.width).Render(left + strings.Repeat(" ", spacing) + right)
}

func (m *Model) renderInput() string {
	prompt := "> "
	if m.mode == ModeCommand {
		prompt = ": "
	}

	return m.theme.CommandStyle.Render(prompt + m.textInput.View())
}

func (m *Model) renderCommandOutput() string {
	lines := strings.Split(m.commandOut, "\n")
	if len(lines) > 8 {
		lines = append(lines[:8], "...")
	}

	return m.theme.PreviewBorderStyle.Width(m.width - 4).Render(strings.Join(lines, "\n"))
}

// renderHelp renders the full help screen including every command
func (m *Model) renderHelp() string {
	var commands strings.Builder
	m.center.Help(&commands)

	return lipgloss.JoinVertical(lipgloss.Left,
		m.theme.TitleStyle.Render("agentfs - Help"),
		"",
		m.help.FullHelpView(m.keys.FullHelp()),
		"",
		m.theme.TitleStyle.Render("Commands (:)"),
		commands.String(),
		m.theme.HelpStyle.Render("Press ? or q to return"),
	)
}
