package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"uproot/internal/journal"
	"uproot/pkg/backend"
	"uproot/pkg/inventory"
	"uproot/pkg/removal"
	"uproot/pkg/residue"
)

// Messages for async operations
type (
	inventoryLoadedMsg struct {
		inv *inventory.Inventory
		err error
	}

	removalDoneMsg struct {
		results []backend.RemovalResult
	}

	scanDoneMsg struct {
		unit       string
		candidates []residue.Candidate
		err        error
	}

	cleanDoneMsg struct {
		results []residue.CleanResult
	}

	journalLoadedMsg struct {
		entries []journal.Entry
		err     error
	}
)

// App wraps the Model with bubbletea components
type App struct {
	*Model
	spinner   spinner.Model
	textInput textinput.Model
}

// NewApp creates a new TUI application
func NewApp(deps Deps) *App {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(ColorPrimary)

	ti := textinput.New()
	ti.Placeholder = "Type to filter..."
	ti.CharLimit = 100
	ti.Width = 40

	return &App{
		Model:     NewModel(deps),
		spinner:   sp,
		textInput: ti,
	}
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		a.spinner.Tick,
		a.loadInventory(),
		a.loadJournal(),
	)
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetSize(msg.Width, msg.Height)
		a.ready = true

	case tea.KeyMsg:
		// Handle confirmation dialog first
		if a.showConfirm {
			switch msg.String() {
			case "y", "Y", "enter":
				a.ConfirmYes()
			case "n", "N", "esc", "q":
				a.ConfirmNo()
			}
			return a, nil
		}

		// Handle input mode
		if a.inputMode {
			switch msg.String() {
			case "enter":
				a.FinishInput()
				return a, nil
			case "esc":
				a.CancelInput()
				return a, nil
			default:
				var cmd tea.Cmd
				a.textInput, cmd = a.textInput.Update(msg)
				a.inputValue = a.textInput.Value()
				cmds = append(cmds, cmd)
				return a, tea.Batch(cmds...)
			}
		}

		// Global keybindings
		switch {
		case key.Matches(msg, a.keys.Quit):
			a.quitting = true
			return a, tea.Quit

		case key.Matches(msg, a.keys.Help):
			if a.activeView == ViewHelp {
				a.GoBack()
			} else {
				a.prevView = a.activeView
				a.activeView = ViewHelp
			}

		case key.Matches(msg, a.keys.Tab1):
			a.SetTab(0)
		case key.Matches(msg, a.keys.Tab2):
			a.SetTab(1)
		case key.Matches(msg, a.keys.Tab3):
			a.SetTab(2)
		case key.Matches(msg, a.keys.Tab4):
			a.SetTab(3)

		case key.Matches(msg, a.keys.Left):
			a.PrevTab()
		case key.Matches(msg, a.keys.Right):
			a.NextTab()

		case key.Matches(msg, a.keys.Back):
			a.GoBack()
		case key.Matches(msg, a.keys.Cancel):
			a.GoBack()
			a.ClearMessages()

		// Navigation
		case key.Matches(msg, a.keys.Up), key.Matches(msg, a.keys.VimUp):
			a.MoveCursor(-1)
		case key.Matches(msg, a.keys.Down), key.Matches(msg, a.keys.VimDown):
			a.MoveCursor(1)
		case key.Matches(msg, a.keys.PageUp):
			a.MoveCursor(-a.VisibleHeight())
		case key.Matches(msg, a.keys.PageDown):
			a.MoveCursor(a.VisibleHeight())
		case key.Matches(msg, a.keys.Home), key.Matches(msg, a.keys.VimTop):
			a.GoToTop()
		case key.Matches(msg, a.keys.End), key.Matches(msg, a.keys.VimBot):
			a.GoToBottom()

		// Actions
		case key.Matches(msg, a.keys.Enter):
			if a.activeView == ViewPackages {
				a.ShowDetails()
			}

		case key.Matches(msg, a.keys.Filter):
			if a.activeView == ViewPackages {
				a.startFilter()
			}

		case key.Matches(msg, a.keys.Reload):
			a.SetLoading(true, "Reloading inventory...")
			cmds = append(cmds, a.loadInventory())

		case key.Matches(msg, a.keys.Mark):
			if a.activeView == ViewPackages {
				a.ToggleMark()
				a.MoveCursor(1)
			}

		case key.Matches(msg, a.keys.Remove):
			if targets := a.MarkedTargets(); len(targets) > 0 {
				a.ShowConfirm(removePrompt(targets, false), func() {
					cmds = append(cmds, a.removeTargets(targets, backend.ModeStandard))
				})
			}

		case key.Matches(msg, a.keys.Force):
			if targets := a.MarkedTargets(); len(targets) > 0 {
				a.ShowConfirm(removePrompt(targets, true), func() {
					cmds = append(cmds, a.removeTargets(targets, backend.ModeForced))
				})
			}

		case key.Matches(msg, a.keys.Scan):
			if entry := a.SelectedEntry(); entry != nil && a.activeView == ViewPackages {
				a.SetLoading(true, "Scanning for residue...")
				cmds = append(cmds, a.scanResidue(entry.PackageUnit))
			}

		case key.Matches(msg, a.keys.Clean):
			if a.activeView == ViewResidue && len(a.candidates) > 0 {
				count := len(a.candidates)
				a.ShowConfirm(fmt.Sprintf("Delete %d residue path(s)? This cannot be undone.", count), func() {
					cmds = append(cmds, a.cleanResidue(a.candidates))
				})
			}
		}

	case inventoryLoadedMsg:
		a.SetLoading(false, "")
		if msg.err != nil {
			a.SetError(msg.err.Error())
		} else {
			a.entries = msg.inv.Entries
			a.issues = msg.inv.Issues
			a.ClearMarks()
		}

	case removalDoneMsg:
		a.SetLoading(false, "")
		summary := removal.Summarize(msg.results)
		if summary.Failed > 0 {
			a.SetError(fmt.Sprintf("%d removed, %d failed", summary.Succeeded, summary.Failed))
		} else {
			a.SetSuccess(fmt.Sprintf("%d removed", summary.Succeeded))
		}
		a.ClearMarks()
		cmds = append(cmds, a.loadInventory(), a.loadJournal())

	case scanDoneMsg:
		a.SetLoading(false, "")
		if msg.err != nil {
			a.SetError(msg.err.Error())
		} else {
			a.candidates = msg.candidates
			a.scannedUnit = msg.unit
			a.cursors[ViewResidue] = 0
			a.scrolls[ViewResidue] = 0
			a.SetTab(1)
			if len(msg.candidates) == 0 {
				a.SetSuccess("No residue found")
			}
		}

	case cleanDoneMsg:
		a.SetLoading(false, "")
		var failed int
		for _, r := range msg.results {
			if !r.Succeeded {
				failed++
			}
		}
		if failed > 0 {
			a.SetError(fmt.Sprintf("%d path(s) could not be deleted", failed))
		} else {
			a.SetSuccess(fmt.Sprintf("Deleted %d path(s)", len(msg.results)))
		}
		a.candidates = nil
		cmds = append(cmds, a.loadJournal())

	case journalLoadedMsg:
		if msg.err == nil {
			a.journalEntries = msg.entries
		}

	case spinner.TickMsg:
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		cmds = append(cmds, cmd)
	}

	return a, tea.Batch(cmds...)
}

func removePrompt(targets []backend.UnitKey, forced bool) string {
	verb := "Remove"
	if forced {
		verb = "Force-remove"
	}
	if len(targets) == 1 {
		return fmt.Sprintf("%s %s [%s]?", verb, targets[0].Identifier, targets[0].Kind)
	}
	return fmt.Sprintf("%s %d packages?", verb, len(targets))
}

// View implements tea.Model
func (a *App) View() string {
	if !a.ready {
		return "Loading..."
	}

	if a.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(a.renderHeader())
	b.WriteString("\n")
	b.WriteString(a.renderTabs())
	b.WriteString("\n")
	b.WriteString(a.renderContent())
	b.WriteString(a.renderFooter())

	if a.showConfirm {
		return a.renderWithDialog(b.String())
	}

	return b.String()
}

// renderHeader renders the header bar
func (a *App) renderHeader() string {
	title := a.styles.Header.Render(" Uproot - Software Uninstaller ")

	var right string
	if a.loading {
		right = a.spinner.View() + " " + a.loadingMsg
	} else if a.errorMsg != "" {
		right = a.styles.Error.Render(a.errorMsg)
	} else if a.successMsg != "" {
		right = a.styles.Success.Render(a.successMsg)
	}

	padding := a.width - lipgloss.Width(title) - lipgloss.Width(right) - 2
	if padding < 0 {
		padding = 0
	}

	return title + strings.Repeat(" ", padding) + right
}

// renderTabs renders the tab bar
func (a *App) renderTabs() string {
	var tabs []string
	for i, tab := range a.tabs {
		style := a.styles.TabInactive
		if i == a.activeTab {
			style = a.styles.TabActive
		}
		tabs = append(tabs, style.Render(fmt.Sprintf("[%d] %s", i+1, tab.Name)))
	}

	tabBar := strings.Join(tabs, " ")
	return lipgloss.NewStyle().
		Width(a.width).
		Background(ColorBgAlt).
		Padding(0, 1).
		Render(tabBar)
}

// renderContent renders the main content area
func (a *App) renderContent() string {
	height := a.height - 5 // Account for header, tabs, footer

	var content string
	switch a.activeView {
	case ViewPackages:
		content = a.renderPackageList()
	case ViewResidue:
		content = a.renderResidueView()
	case ViewJournal:
		content = a.renderJournalView()
	case ViewBackends:
		content = a.renderBackendsView()
	case ViewDetails:
		content = a.renderDetailsView()
	case ViewHelp:
		content = a.renderHelpView()
	}

	return lipgloss.NewStyle().
		Width(a.width).
		Height(height).
		Render(content)
}

// renderPackageList renders the inventory list
func (a *App) renderPackageList() string {
	var b strings.Builder

	filtered := a.filterEntries()

	titleStr := fmt.Sprintf("Installed Software (%d)", len(filtered))
	if a.filterText != "" {
		titleStr += fmt.Sprintf(" - Filter: %s", a.filterText)
	}
	if marked := len(a.selected); marked > 0 {
		titleStr += fmt.Sprintf(" - %d marked", marked)
	}
	b.WriteString(a.styles.Title.Render(titleStr))
	b.WriteString("\n")

	if a.inputMode {
		b.WriteString(a.styles.InputPrompt.Render(a.inputPrompt))
		b.WriteString(a.textInput.View())
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if len(filtered) == 0 {
		b.WriteString(a.styles.Description.Render("No packages found"))
		return b.String()
	}

	visibleHeight := a.VisibleHeight()
	scroll := a.Scroll()
	cursor := a.Cursor()

	start := scroll
	end := scroll + visibleHeight
	if end > len(filtered) {
		end = len(filtered)
	}

	for i := start; i < end; i++ {
		b.WriteString(a.renderEntryLine(filtered[i], i == cursor))
		b.WriteString("\n")
	}

	if len(filtered) > visibleHeight {
		scrollPct := float64(scroll) / float64(len(filtered)-visibleHeight) * 100
		b.WriteString(a.styles.Description.Render(fmt.Sprintf("\n  %.0f%% (%d/%d)", scrollPct, cursor+1, len(filtered))))
	}

	for _, issue := range a.issues {
		b.WriteString("\n")
		b.WriteString(a.styles.Warning.Render(fmt.Sprintf("  %s unavailable: %v", issue.Kind, issue.Err)))
	}

	return b.String()
}

// renderEntryLine renders a single inventory row
func (a *App) renderEntryLine(entry inventory.Entry, selected bool) string {
	cursor := "  "
	if selected {
		cursor = a.styles.ListItemSelected.Render("> ")
	}

	mark := "[ ] "
	key := backend.UnitKey{Kind: entry.Kind, Identifier: entry.Identifier}
	switch {
	case entry.Protected:
		mark = a.styles.UnitProtected.Render("[#] ")
	case a.selected[key]:
		mark = a.styles.ListItemMarked.Render("[x] ")
	}

	name := a.styles.UnitName.Render(entry.Identifier)
	if !selected {
		name = lipgloss.NewStyle().Foreground(ColorText).Render(entry.Identifier)
	}
	if entry.Protected {
		name = a.styles.ListItemDim.UnsetPaddingLeft().Render(entry.Identifier)
	}

	version := a.styles.UnitVersion.Render(entry.Version)
	kind := KindBadge(string(entry.Kind))
	size := a.styles.Description.Render(formatSize(entry.InstalledSizeBytes))

	return fmt.Sprintf("%s%s%-35s %s %s %s", cursor, mark, name, version, kind, size)
}

// renderResidueView renders the last scan's candidates
func (a *App) renderResidueView() string {
	var b strings.Builder

	if a.scannedUnit == "" {
		b.WriteString(a.styles.Title.Render("Residue"))
		b.WriteString("\n\n")
		b.WriteString(a.styles.Description.Render("Select a package and press 's' to scan for leftovers"))
		return b.String()
	}

	var total int64
	for _, c := range a.candidates {
		total += c.SizeBytes
	}
	b.WriteString(a.styles.Title.Render(fmt.Sprintf("Residue of %s (%d paths, %s)",
		a.scannedUnit, len(a.candidates), formatSize(total))))
	b.WriteString("\n\n")

	if len(a.candidates) == 0 {
		b.WriteString(a.styles.Description.Render("Nothing left behind"))
		return b.String()
	}

	visibleHeight := a.VisibleHeight()
	scroll := a.Scroll()
	cursor := a.Cursor()

	start := scroll
	end := scroll + visibleHeight
	if end > len(a.candidates) {
		end = len(a.candidates)
	}

	for i := start; i < end; i++ {
		c := a.candidates[i]
		prefix := "  "
		if i == cursor {
			prefix = a.styles.ListItemSelected.Render("> ")
		}
		confidence := a.styles.Info.Render(string(c.Confidence))
		if c.Confidence == residue.ConfidenceExact {
			confidence = a.styles.Success.Render(string(c.Confidence))
		}
		line := fmt.Sprintf("%s%-50s %-8s %-10s %s", prefix, c.Path, c.Kind, formatSize(c.SizeBytes), confidence)
		b.WriteString(line)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Description.Render("Press 'c' to delete all listed paths"))

	return b.String()
}

// renderJournalView renders the recorded operation batches
func (a *App) renderJournalView() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Operation Journal"))
	b.WriteString("\n\n")

	if len(a.journalEntries) == 0 {
		b.WriteString(a.styles.Description.Render("No recorded operations"))
		return b.String()
	}

	for i, entry := range a.journalEntries {
		if i >= a.VisibleHeight() {
			break
		}

		ok, failed, cancelled := entry.Counts()
		status := a.styles.Success.Render(fmt.Sprintf("%d ok", ok))
		if failed > 0 {
			status += " " + a.styles.Error.Render(fmt.Sprintf("%d failed", failed))
		}
		if cancelled > 0 {
			status += " " + a.styles.Description.Render(fmt.Sprintf("%d cancelled", cancelled))
		}

		timestamp := entry.Timestamp.Format("2006-01-02 15:04")
		line := fmt.Sprintf("  %s  %-14s %2d item(s)  %s", timestamp, entry.Operation, len(entry.Items), status)
		b.WriteString(line)
		b.WriteString("\n")
	}

	return b.String()
}

// renderBackendsView renders backend availability
func (a *App) renderBackendsView() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Backends"))
	b.WriteString("\n\n")

	for _, be := range a.backends {
		status := a.styles.Success.Render("available")
		if !be.IsAvailable() {
			status = a.styles.Error.Render("unavailable")
		}
		b.WriteString(fmt.Sprintf("  %-12s %-24s %s\n", be.Kind(), be.DisplayName(), status))
	}

	return b.String()
}

// renderDetailsView renders entry details
func (a *App) renderDetailsView() string {
	var b strings.Builder

	if a.detailEntry == nil {
		b.WriteString(a.styles.Error.Render("No package selected"))
		return b.String()
	}

	entry := a.detailEntry

	b.WriteString(a.styles.Title.Render(entry.DisplayName))
	b.WriteString(" ")
	b.WriteString(KindBadge(string(entry.Kind)))
	b.WriteString("\n\n")

	b.WriteString(a.styles.Subtitle.Render("Identifier: "))
	b.WriteString(entry.Identifier)
	b.WriteString("\n")

	b.WriteString(a.styles.Subtitle.Render("Version: "))
	b.WriteString(a.styles.UnitVersion.Render(entry.Version))
	b.WriteString("\n")

	b.WriteString(a.styles.Subtitle.Render("Installed size: "))
	b.WriteString(formatSize(entry.InstalledSizeBytes))
	b.WriteString("\n")

	if !entry.InstallDate.IsZero() {
		b.WriteString(a.styles.Subtitle.Render("Installed on: "))
		b.WriteString(entry.InstallDate.Format("2006-01-02"))
		b.WriteString("\n")
	}

	if entry.SourcePath != "" {
		b.WriteString(a.styles.Subtitle.Render("Path: "))
		b.WriteString(entry.SourcePath)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(a.styles.Subtitle.Render("Status: "))
	if entry.Protected {
		b.WriteString(a.styles.Warning.Render("Protected - cannot be removed"))
	} else {
		b.WriteString(a.styles.Success.Render("Removable"))
	}
	b.WriteString("\n\n")

	b.WriteString(a.styles.Subtitle.Render("Actions"))
	b.WriteString("\n")
	if !entry.Protected {
		b.WriteString("  [r] Remove\n")
		b.WriteString("  [R] Force remove\n")
	}
	b.WriteString("  [s] Scan for residue\n")
	b.WriteString("  [b] Back\n")

	return b.String()
}

// renderHelpView renders the help view
func (a *App) renderHelpView() string {
	var b strings.Builder

	b.WriteString(a.styles.Title.Render("Keyboard Shortcuts"))
	b.WriteString("\n\n")

	sections := []struct {
		title string
		keys  []struct{ key, desc string }
	}{
		{
			title: "Navigation",
			keys: []struct{ key, desc string }{
				{"j/k or Up/Down", "Move cursor"},
				{"g/G", "Go to top/bottom"},
				{"PgUp/PgDn", "Page up/down"},
				{"1-4", "Switch tabs"},
				{"Left/Right", "Previous/next tab"},
			},
		},
		{
			title: "Actions",
			keys: []struct{ key, desc string }{
				{"Space", "Mark/unmark package"},
				{"Enter", "View details"},
				{"/", "Filter list"},
				{"r", "Remove marked packages"},
				{"R", "Force remove (bypasses dependency checks)"},
				{"s", "Scan residue of selected package"},
				{"c", "Clean listed residue"},
				{"u", "Reload inventory"},
			},
		},
		{
			title: "General",
			keys: []struct{ key, desc string }{
				{"?", "Toggle help"},
				{"Esc/b", "Go back"},
				{"q", "Quit"},
			},
		},
	}

	for _, section := range sections {
		b.WriteString(a.styles.Subtitle.Render(section.title))
		b.WriteString("\n")
		for _, k := range section.keys {
			b.WriteString(fmt.Sprintf("  %-24s%s %s\n",
				a.styles.HelpKey.Render(k.key),
				a.styles.HelpSep.String(),
				a.styles.HelpDesc.Render(k.desc)))
		}
		b.WriteString("\n")
	}

	return b.String()
}

// renderFooter renders the footer bar
func (a *App) renderFooter() string {
	var hints []string

	switch a.activeView {
	case ViewPackages:
		hints = []string{"space:mark", "r:remove", "s:scan", "Enter:details"}
	case ViewResidue:
		hints = []string{"c:clean", "b:back"}
	case ViewDetails:
		hints = []string{"r:remove", "s:scan", "b:back"}
	case ViewJournal:
		hints = []string{"b:back"}
	default:
		hints = []string{"?:help", "q:quit"}
	}

	hints = append(hints, "?:help", "q:quit")

	footer := strings.Join(hints, "  ")
	return lipgloss.NewStyle().
		Width(a.width).
		Background(ColorBgAlt).
		Foreground(ColorMuted).
		Padding(0, 1).
		Render(footer)
}

// renderWithDialog renders content with a dialog overlay
func (a *App) renderWithDialog(_ string) string {
	dialog := a.styles.Dialog.Render(
		a.styles.DialogTitle.Render(a.confirmTitle) + "\n\n" +
			a.styles.DialogButton.Render("[Y]es") + " " +
			lipgloss.NewStyle().Foreground(ColorMuted).Render("[N]o"),
	)

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, dialog,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(ColorBg))
}

// startFilter initiates filter input
func (a *App) startFilter() {
	a.textInput.SetValue(a.filterText)
	a.textInput.Focus()
	a.StartInput("Filter: ", func(filter string) {
		a.filterText = filter
		a.SetCursor(0)
		a.SetScroll(0)
	})
}

// Async commands

func (a *App) loadInventory() tea.Cmd {
	return func() tea.Msg {
		a.SetLoading(true, "Loading inventory...")
		inv, err := a.builder.Build(context.Background())
		return inventoryLoadedMsg{inv: inv, err: err}
	}
}

func (a *App) loadJournal() tea.Cmd {
	return func() tea.Msg {
		if a.journalStore == nil {
			return journalLoadedMsg{}
		}
		entries, err := a.journalStore.List(50)
		return journalLoadedMsg{entries: entries, err: err}
	}
}

func (a *App) removeTargets(targets []backend.UnitKey, mode backend.Mode) tea.Cmd {
	return func() tea.Msg {
		a.SetLoading(true, "Removing...")
		results := a.orchestrator.Remove(context.Background(), targets, mode)
		if a.journalStore != nil {
			_ = a.journalStore.Record(journal.NewRemovalEntry(mode, results)) //nolint:errcheck
		}
		return removalDoneMsg{results: results}
	}
}

func (a *App) scanResidue(unit backend.PackageUnit) tea.Cmd {
	return func() tea.Msg {
		candidates, err := a.scanner.Scan(context.Background(), unit)
		if err == nil {
			a.cleaner.Record(candidates)
		}
		return scanDoneMsg{unit: unit.Identifier, candidates: candidates, err: err}
	}
}

func (a *App) cleanResidue(candidates []residue.Candidate) tea.Cmd {
	return func() tea.Msg {
		a.SetLoading(true, "Deleting residue...")
		paths := make([]string, len(candidates))
		for i, c := range candidates {
			paths[i] = c.Path
		}
		results := a.cleaner.Clean(context.Background(), paths)
		if a.journalStore != nil {
			_ = a.journalStore.Record(journal.NewCleanEntry(results)) //nolint:errcheck
		}
		return cleanDoneMsg{results: results}
	}
}

func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return fmt.Sprintf("%d B", bytes)
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(bytes)/float64(div), "KMGTPE"[exp])
}

// Run starts the TUI application
func Run(deps Deps) error {
	app := NewApp(deps)
	p := tea.NewProgram(app, tea.WithAltScreen())
	_, err := p.Run()
	return err
}
