// Package model is the Bubble Tea model for browsing a parsed log: a block
// list, a detail pane for the selected block, and its transmissions.
package model

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/karvasek/cbrelay/pkg/report"
)

// Pane identifies which TUI pane is focused.
type Pane int

const (
	PaneBlocks Pane = iota
	PaneDetail
	PaneSends
)

// Mode identifies the current interaction mode.
type Mode int

const (
	ModeNormal Mode = iota
	ModeSearch
)

// App is the root Bubble Tea model. The data is static: one parsed log,
// browsed read-only.
type App struct {
	// Data
	blocks []report.ReceivedRow
	sends  map[string][]report.SentRow
	title  string

	// State
	selectedIdx int

	// UI
	activePane Pane
	mode       Mode
	search     textinput.Model
	width      int
	height     int
	statusMsg  string
}

// New creates the app over the analysis rows. title names the log source
// in the window chrome.
func New(title string, received []report.ReceivedRow, sent []report.SentRow) App {
	si := textinput.New()
	si.Placeholder = "hash prefix..."
	si.CharLimit = 64

	bySends := make(map[string][]report.SentRow)
	for _, s := range sent {
		bySends[s.BlockHash] = append(bySends[s.BlockHash], s)
	}

	return App{
		blocks:     received,
		sends:      bySends,
		title:      title,
		search:     si,
		activePane: PaneBlocks,
		mode:       ModeNormal,
	}
}

// Init sets the window title.
func (a App) Init() tea.Cmd {
	return tea.SetWindowTitle("cbrelay — " + a.title)
}

// Update handles messages.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if a.mode == ModeSearch {
		switch msg.String() {
		case "esc":
			a.mode = ModeNormal
			a.search.SetValue("")
			a.search.Blur()
			a.selectedIdx = 0
			return a, nil
		case "enter":
			a.mode = ModeNormal
			a.search.Blur()
			a.selectedIdx = 0
			return a, nil
		default:
			var cmd tea.Cmd
			a.search, cmd = a.search.Update(msg)
			return a, cmd
		}
	}

	switch msg.String() {
	case "q", "ctrl+c":
		return a, tea.Quit

	case "j", "down":
		if n := len(a.filteredBlocks()); n > 0 {
			a.selectedIdx = min(a.selectedIdx+1, n-1)
		}
	case "k", "up":
		if a.selectedIdx > 0 {
			a.selectedIdx--
		}
	case "g":
		a.selectedIdx = 0
	case "G":
		if n := len(a.filteredBlocks()); n > 0 {
			a.selectedIdx = n - 1
		}

	case "tab":
		a.activePane = (a.activePane + 1) % 3

	case "/":
		a.mode = ModeSearch
		a.search.Focus()
		return a, textinput.Blink
	}

	return a, nil
}

func (a App) filteredBlocks() []report.ReceivedRow {
	q := strings.ToLower(a.search.Value())
	if q == "" {
		return a.blocks
	}
	var filtered []report.ReceivedRow
	for _, b := range a.blocks {
		if strings.HasPrefix(b.BlockHash, q) || strings.Contains(b.BlockHash, q) {
			filtered = append(filtered, b)
		}
	}
	return filtered
}

func (a App) selectedBlock() *report.ReceivedRow {
	blocks := a.filteredBlocks()
	if a.selectedIdx < len(blocks) {
		return &blocks[a.selectedIdx]
	}
	return nil
}
