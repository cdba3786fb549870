package tui

import (
	"strings"

	"uproot/internal/config"
	"uproot/internal/journal"
	"uproot/pkg/backend"
	"uproot/pkg/inventory"
	"uproot/pkg/removal"
	"uproot/pkg/residue"
)

// View represents different views in the TUI
type View int

const (
	ViewPackages View = iota
	ViewResidue
	ViewJournal
	ViewBackends
	ViewDetails
	ViewHelp
)

// Tab represents a navigable tab
type Tab struct {
	Name string
	View View
}

// DefaultTabs returns the default tab configuration
func DefaultTabs() []Tab {
	return []Tab{
		{Name: "Packages", View: ViewPackages},
		{Name: "Residue", View: ViewResidue},
		{Name: "Journal", View: ViewJournal},
		{Name: "Backends", View: ViewBackends},
	}
}

// Model holds the application state
type Model struct {
	// Core state
	ready    bool
	quitting bool

	// Dimensions
	width  int
	height int

	// Navigation
	tabs       []Tab
	activeTab  int
	activeView View
	prevView   View

	// Collaborators
	backends     []backend.Backend
	builder      *inventory.Builder
	orchestrator *removal.Orchestrator
	scanner      *residue.Scanner
	cleaner      *residue.Cleaner
	journalStore *journal.Store
	config       *config.Config

	// Data
	entries        []inventory.Entry
	issues         []inventory.BackendIssue
	selected       map[backend.UnitKey]bool
	candidates     []residue.Candidate
	scannedUnit    string
	journalEntries []journal.Entry
	detailEntry    *inventory.Entry

	// UI state
	loading      bool
	loadingMsg   string
	errorMsg     string
	successMsg   string
	filterText   string
	inputMode    bool
	inputPrompt  string
	inputValue   string
	inputHandler func(string)

	// Cursor positions for each view
	cursors map[View]int

	// Scroll offsets for each view
	scrolls map[View]int

	// Styles and keys
	styles *Styles
	keys   KeyMap

	// Confirmation dialog
	showConfirm   bool
	confirmTitle  string
	confirmAction func()
}

// Deps bundles everything the TUI needs.
type Deps struct {
	Backends     []backend.Backend
	Builder      *inventory.Builder
	Orchestrator *removal.Orchestrator
	Scanner      *residue.Scanner
	Cleaner      *residue.Cleaner
	Journal      *journal.Store
	Config       *config.Config
}

// NewModel creates a new TUI model
func NewModel(deps Deps) *Model {
	return &Model{
		tabs:         DefaultTabs(),
		activeTab:    0,
		activeView:   ViewPackages,
		backends:     deps.Backends,
		builder:      deps.Builder,
		orchestrator: deps.Orchestrator,
		scanner:      deps.Scanner,
		cleaner:      deps.Cleaner,
		journalStore: deps.Journal,
		config:       deps.Config,
		selected:     make(map[backend.UnitKey]bool),
		cursors:      make(map[View]int),
		scrolls:      make(map[View]int),
		styles:       DefaultStyles(),
		keys:         DefaultKeyMap(),
	}
}

// SetSize sets the terminal size
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// CurrentTab returns the current tab
func (m *Model) CurrentTab() Tab {
	if m.activeTab >= 0 && m.activeTab < len(m.tabs) {
		return m.tabs[m.activeTab]
	}
	return m.tabs[0]
}

// Cursor returns the cursor position for the current view
func (m *Model) Cursor() int {
	return m.cursors[m.activeView]
}

// SetCursor sets the cursor position for the current view
func (m *Model) SetCursor(pos int) {
	m.cursors[m.activeView] = pos
}

// Scroll returns the scroll offset for the current view
func (m *Model) Scroll() int {
	return m.scrolls[m.activeView]
}

// SetScroll sets the scroll offset for the current view
func (m *Model) SetScroll(offset int) {
	m.scrolls[m.activeView] = offset
}

// VisibleHeight returns the height available for list content
func (m *Model) VisibleHeight() int {
	// Account for header (2), tabs (1), footer (2), padding (2)
	return m.height - 7
}

// listLength returns the item count of the current view
func (m *Model) listLength() int {
	switch m.activeView {
	case ViewPackages:
		return len(m.filterEntries())
	case ViewResidue:
		return len(m.candidates)
	case ViewJournal:
		return len(m.journalEntries)
	default:
		return 0
	}
}

// filterEntries filters inventory entries by the current filter text
func (m *Model) filterEntries() []inventory.Entry {
	if m.filterText == "" {
		return m.entries
	}

	var filtered []inventory.Entry
	filter := strings.ToLower(m.filterText)
	for _, e := range m.entries {
		if strings.Contains(strings.ToLower(e.Identifier), filter) ||
			strings.Contains(strings.ToLower(e.DisplayName), filter) {
			filtered = append(filtered, e)
		}
	}
	return filtered
}

// SelectedEntry returns the inventory entry under the cursor
func (m *Model) SelectedEntry() *inventory.Entry {
	entries := m.filterEntries()
	cursor := m.cursors[ViewPackages]
	if cursor >= 0 && cursor < len(entries) {
		return &entries[cursor]
	}
	return nil
}

// ToggleMark toggles multi-selection of the entry under the cursor.
// Protected entries cannot be marked.
func (m *Model) ToggleMark() {
	entry := m.SelectedEntry()
	if entry == nil || entry.Protected {
		return
	}
	key := backend.UnitKey{Kind: entry.Kind, Identifier: entry.Identifier}
	if m.selected[key] {
		delete(m.selected, key)
	} else {
		m.selected[key] = true
	}
}

// MarkedTargets returns the marked units; when nothing is marked, the entry
// under the cursor (if removable) is the sole target.
func (m *Model) MarkedTargets() []backend.UnitKey {
	if len(m.selected) > 0 {
		targets := make([]backend.UnitKey, 0, len(m.selected))
		for _, e := range m.entries {
			key := backend.UnitKey{Kind: e.Kind, Identifier: e.Identifier}
			if m.selected[key] {
				targets = append(targets, key)
			}
		}
		return targets
	}
	if entry := m.SelectedEntry(); entry != nil && !entry.Protected {
		return []backend.UnitKey{{Kind: entry.Kind, Identifier: entry.Identifier}}
	}
	return nil
}

// ClearMarks empties the multi-selection.
func (m *Model) ClearMarks() {
	m.selected = make(map[backend.UnitKey]bool)
}

// MoveCursor moves the cursor by delta, clamping to valid range
func (m *Model) MoveCursor(delta int) {
	length := m.listLength()
	if length == 0 {
		return
	}

	newPos := m.Cursor() + delta
	if newPos < 0 {
		newPos = 0
	}
	if newPos >= length {
		newPos = length - 1
	}
	m.SetCursor(newPos)

	// Adjust scroll to keep cursor visible
	visibleHeight := m.VisibleHeight()
	scroll := m.Scroll()

	if newPos < scroll {
		m.SetScroll(newPos)
	} else if newPos >= scroll+visibleHeight {
		m.SetScroll(newPos - visibleHeight + 1)
	}
}

// GoToTop moves cursor to the top
func (m *Model) GoToTop() {
	m.SetCursor(0)
	m.SetScroll(0)
}

// GoToBottom moves cursor to the bottom
func (m *Model) GoToBottom() {
	length := m.listLength()
	if length == 0 {
		return
	}
	m.SetCursor(length - 1)

	visibleHeight := m.VisibleHeight()
	if length > visibleHeight {
		m.SetScroll(length - visibleHeight)
	}
}

// NextTab switches to the next tab
func (m *Model) NextTab() {
	m.activeTab = (m.activeTab + 1) % len(m.tabs)
	m.activeView = m.tabs[m.activeTab].View
}

// PrevTab switches to the previous tab
func (m *Model) PrevTab() {
	m.activeTab--
	if m.activeTab < 0 {
		m.activeTab = len(m.tabs) - 1
	}
	m.activeView = m.tabs[m.activeTab].View
}

// SetTab switches to a specific tab by index
func (m *Model) SetTab(index int) {
	if index >= 0 && index < len(m.tabs) {
		m.activeTab = index
		m.activeView = m.tabs[m.activeTab].View
	}
}

// ShowDetails shows the details view for the selected entry
func (m *Model) ShowDetails() {
	if entry := m.SelectedEntry(); entry != nil {
		m.detailEntry = entry
		m.prevView = m.activeView
		m.activeView = ViewDetails
	}
}

// GoBack returns to the previous view
func (m *Model) GoBack() {
	if m.activeView == ViewDetails || m.activeView == ViewHelp {
		m.activeView = m.prevView
	}
}

// SetLoading sets the loading state
func (m *Model) SetLoading(loading bool, msg string) {
	m.loading = loading
	m.loadingMsg = msg
}

// SetError sets an error message
func (m *Model) SetError(msg string) {
	m.errorMsg = msg
	m.successMsg = ""
}

// SetSuccess sets a success message
func (m *Model) SetSuccess(msg string) {
	m.successMsg = msg
	m.errorMsg = ""
}

// ClearMessages clears all messages
func (m *Model) ClearMessages() {
	m.errorMsg = ""
	m.successMsg = ""
}

// StartInput starts input mode
func (m *Model) StartInput(prompt string, handler func(string)) {
	m.inputMode = true
	m.inputPrompt = prompt
	m.inputValue = ""
	m.inputHandler = handler
}

// FinishInput finishes input mode and calls the handler
func (m *Model) FinishInput() {
	if m.inputHandler != nil {
		m.inputHandler(m.inputValue)
	}
	m.inputMode = false
	m.inputPrompt = ""
	m.inputValue = ""
	m.inputHandler = nil
}

// CancelInput cancels input mode
func (m *Model) CancelInput() {
	m.inputMode = false
	m.inputPrompt = ""
	m.inputValue = ""
	m.inputHandler = nil
}

// ShowConfirm shows a confirmation dialog
func (m *Model) ShowConfirm(title string, action func()) {
	m.showConfirm = true
	m.confirmTitle = title
	m.confirmAction = action
}

// ConfirmYes executes the confirmation action
func (m *Model) ConfirmYes() {
	if m.confirmAction != nil {
		m.confirmAction()
	}
	m.showConfirm = false
	m.confirmTitle = ""
	m.confirmAction = nil
}

// ConfirmNo cancels the confirmation
func (m *Model) ConfirmNo() {
	m.showConfirm = false
	m.confirmTitle = ""
	m.confirmAction = nil
}
