package tui

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/mwantia/agentfs/cmd"
	"github.com/mwantia/agentfs/log"
	"github.com/mwantia/agentfs/mount"
)

// FileSystem is what the browser operates on; the assembled agentfs filesystem satisfies it.
type FileSystem interface {
	cmd.API
	Mounts() []*mount.Mount
}

// Mode represents the current interaction mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeCommand
	ModeInput
	ModeHelp
)

// previewLines is the number of lines requested for the preview pane
const previewLines = 200

// Model represents the state of the TUI application
type Model struct {
	// Core components
	ctx    context.Context
	fs     FileSystem
	center *cmd.CommandCenter
	log    *log.Logger
	theme  *Theme
	keys   KeyMap
	help   help.Model

	// Navigation state
	currentPath string
	previousDir string // Path of the directory we came from
	entries     []*Entry
	cursor      int
	offset      int

	// View state
	width          int
	height         int
	showPreview    bool
	previewContent string
	previewError   error
	previewGen     int // Generation counter to prevent race conditions

	// Mode state
	mode      Mode
	textInput textinput.Model

	// Status
	statusMsg  string
	errorMsg   string
	commandOut string
}

// NewModel creates a new TUI model
func NewModel(ctx context.Context, fs FileSystem, center *cmd.CommandCenter, logger *log.Logger) *Model {
	ti := textinput.New()
	ti.Placeholder = "Enter command..."
	ti.CharLimit = 1024

	return &Model{
		ctx:         ctx,
		fs:          fs,
		center:      center,
		log:         logger.Named("tui"),
		theme:       DefaultTheme(),
		keys:        DefaultKeyMap(),
		help:        help.New(),
		currentPath: "/",
		showPreview: true,
		textInput:   ti,
	}
}

// Init initializes the model
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.loadDirectory(),
		textinput.Blink,
	)
}

// Update handles messages and updates the model
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case directoryLoadedMsg:
		m.entries = msg.entries
		m.errorMsg = ""
		m.cursor = 0
		m.offset = 0

		// Position cursor on previous directory if we just navigated back
		if m.previousDir != "" {
			for i, entry := range m.entries {
				if entry.Path == m.previousDir {
					m.moveCursor(i)
					break
				}
			}
			m.previousDir = ""
		}
		return m, m.updatePreview()

	case previewLoadedMsg:
		if msg.generation == m.previewGen {
			m.previewContent = msg.content
			m.previewError = msg.err
		}
		return m, nil

	case commandExecutedMsg:
		m.commandOut = msg.output
		m.errorMsg = msg.error
		m.statusMsg = "Command executed"
		return m, m.loadDirectory()

	case errorMsg:
		m.errorMsg = string(msg)
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)
	}

	if m.mode == ModeCommand || m.mode == ModeInput {
		var cmd tea.Cmd
		m.textInput, cmd = m.textInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

// handleKeyPress processes keyboard input based on current mode
func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeCommand, ModeInput:
		return m.handleInputMode(msg)
	case ModeHelp:
		return m.handleHelpMode(msg)
	default:
		return m.handleNormalMode(msg)
	}
}

// handleNormalMode processes keys in normal browsing mode
func (m *Model) handleNormalMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.mode = ModeHelp
		return m, nil

	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.PageUp):
		m.moveCursor(-10)
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.PageDown):
		m.moveCursor(10)
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.entries))
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.entries))
		return m, m.updatePreview()

	case key.Matches(msg, m.keys.Enter):
		return m, m.enterDirectory()

	case key.Matches(msg, m.keys.Back):
		return m, m.goBack()

	case key.Matches(msg, m.keys.TogglePreview):
		m.showPreview = !m.showPreview
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m, m.loadDirectory()

	case key.Matches(msg, m.keys.NewFile):
		m.startInput(ModeInput, "New file name")
		return m, nil

	case key.Matches(msg, m.keys.Command):
		m.startInput(ModeCommand, "ls -l, read <path>, grep <pattern> ...")
		return m, nil
	}

	return m, nil
}

// handleInputMode processes keys when collecting user input
func (m *Model) handleInputMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEscape:
		m.cancelInput()
		return m, nil

	case tea.KeyEnter:
		return m, m.submitInput()
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

// handleHelpMode processes keys in help mode
func (m *Model) handleHelpMode(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Help) || key.Matches(msg, m.keys.Quit) {
		m.mode = ModeNormal
	}
	return m, nil
}

// startInput enters the given input mode with the specified placeholder
func (m *Model) startInput(mode Mode, placeholder string) {
	m.mode = mode
	m.textInput.Placeholder = placeholder
	m.textInput.SetValue("")
	m.textInput.Focus()
	m.errorMsg = ""
	m.statusMsg = ""
}

// cancelInput exits input mode without taking action
func (m *Model) cancelInput() {
	m.mode = ModeNormal
	m.textInput.Blur()
	m.textInput.SetValue("")
}

// submitInput processes the collected input
func (m *Model) submitInput() tea.Cmd {
	value := strings.TrimSpace(m.textInput.Value())
	mode := m.mode
	m.cancelInput()

	if value == "" {
		return nil
	}

	if mode == ModeCommand {
		return m.executeCommand(value)
	}

	return m.createFile(value)
}

// moveCursor moves the cursor by delta, handling bounds and scrolling
func (m *Model) moveCursor(delta int) {
	if len(m.entries) == 0 {
		return
	}

	m.cursor = max(0, min(m.cursor+delta, len(m.entries)-1))

	visibleLines := m.getVisibleLines()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+visibleLines {
		m.offset = m.cursor - visibleLines + 1
	}
}

// getVisibleLines returns how many file entries can be displayed
func (m *Model) getVisibleLines() int {
	// Reserve space for title, status bar, help, and padding
	return max(m.height-8, 5)
}

// currentEntry returns the currently selected entry
func (m *Model) currentEntry() *Entry {
	if m.cursor >= 0 && m.cursor < len(m.entries) {
		return m.entries[m.cursor]
	}
	return nil
}

// Messages for async operations
type directoryLoadedMsg struct {
	entries []*Entry
}

type previewLoadedMsg struct {
	content    string
	err        error
	generation int // Which preview request this is for
}

type commandExecutedMsg struct {
	output string
	error  string
}

type errorMsg string

func (m *Model) loadDirectory() tea.Cmd {
	current := m.currentPath

	return func() tea.Msg {
		infos, err := m.fs.LsInfo(m.ctx, current)
		if err != nil {
			return errorMsg(err.Error())
		}

		mounts := make(map[string]bool)
		for _, mnt := range m.fs.Mounts() {
			mounts[mnt.Prefix] = true
		}

		entries := make([]*Entry, 0, len(infos))
		for _, info := range infos {
			entries = append(entries, newEntry(info, mounts))
		}

		return directoryLoadedMsg{entries: entries}
	}
}

func (m *Model) updatePreview() tea.Cmd {
	m.previewGen++
	generation := m.previewGen

	entry := m.currentEntry()
	if entry == nil || entry.IsDir || !m.showPreview {
		m.previewContent = ""
		m.previewError = nil
		return nil
	}

	return func() tea.Msg {
		content, err := m.fs.Read(m.ctx, entry.Path, 0, previewLines)
		return previewLoadedMsg{content: content, err: err, generation: generation}
	}
}

func (m *Model) enterDirectory() tea.Cmd {
	entry := m.currentEntry()
	if entry == nil || !entry.IsDir {
		return nil
	}

	m.currentPath = entry.Path
	m.log.Debug("entering '%s'", entry.Path)
	return m.loadDirectory()
}

func (m *Model) goBack() tea.Cmd {
	if m.currentPath == "/" {
		return nil
	}

	m.previousDir = m.currentPath
	parent := path.Dir(strings.TrimSuffix(m.currentPath, "/"))
	if parent != "/" {
		parent += "/"
	}

	m.currentPath = parent
	return m.loadDirectory()
}

func (m *Model) createFile(name string) tea.Cmd {
	target := name
	if !strings.HasPrefix(name, "/") {
		target = m.currentPath + name
	}

	return func() tea.Msg {
		if _, err := m.fs.Write(m.ctx, target, ""); err != nil {
			return errorMsg(err.Error())
		}

		return m.loadDirectory()()
	}
}

func (m *Model) executeCommand(line string) tea.Cmd {
	return func() tea.Msg {
		var out bytes.Buffer

		code, err := m.center.ExecuteLine(m.ctx, m.fs, &out, line)
		m.log.Debug("executed '%s' with code %d", line, code)

		result := commandExecutedMsg{output: strings.TrimRight(out.String(), "\n")}
		switch {
		case err != nil:
			result.error = err.Error()
		case code != 0:
			result.error = fmt.Sprintf("Command exited with code %d", code)
		}

		return result
	}
}
