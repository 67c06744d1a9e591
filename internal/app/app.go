package app

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazytable/internal/breakpoints"
	"github.com/rebeliceyang/lazytable/internal/config"
	"github.com/rebeliceyang/lazytable/internal/filtering"
	"github.com/rebeliceyang/lazytable/internal/history"
	"github.com/rebeliceyang/lazytable/internal/logger"
	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/paging"
	"github.com/rebeliceyang/lazytable/internal/query"
	"github.com/rebeliceyang/lazytable/internal/sorting"
	"github.com/rebeliceyang/lazytable/internal/source"
	"github.com/rebeliceyang/lazytable/internal/state"
	"github.com/rebeliceyang/lazytable/internal/ui/components"
	"github.com/rebeliceyang/lazytable/internal/ui/theme"
)

// historyRecall is how many past queries the search input can recall
const historyRecall = 50

// Options configures a new App
type Options struct {
	Config  *config.Config
	Source  source.Source
	Logger  *logger.Logger
	History *history.Store // nil disables search history
	Views   *state.Manager // nil disables saved views

	Filter  string   // initial search text
	Columns []string // glob patterns selecting the search columns
	Sort    string   // initial sort column name
	SortDir sorting.Direction

	// Clipboard writes copied text; nil uses the system clipboard
	Clipboard func(string) error
}

// App is the main application model
type App struct {
	state  models.AppState
	config *config.Config
	theme  theme.Theme
	log    *logger.Logger
	opts   Options

	source  source.Source
	history *history.Store
	views   *state.Manager

	filtering     *filtering.Filtering
	pager         *paging.Pager
	breakpoints   breakpoints.Set
	searchColumns []*models.Column
	sortColumn    *models.Column
	sortDir       sorting.Direction
	rows          []*models.Row // filtered and sorted
	loaded        bool

	// Debounce state: only the tick carrying the latest sequence applies
	searchSeq     int
	pendingSearch string

	panel        components.Panel
	tableView    *components.TableView
	searchInput  *components.SearchInput
	errorOverlay *components.ErrorOverlay
	status       string
	clipboard    func(string) error
}

// TableLoadedMsg is sent when the source has been read
type TableLoadedMsg struct {
	Table *models.Table
	Err   error
}

// ErrorMsg is sent when an error occurs
type ErrorMsg struct {
	Title string
	Err   error
}

// StatusMsg replaces the status bar message
type StatusMsg struct {
	Text string
}

// HistoryLoadedMsg carries the recallable search queries
type HistoryLoadedMsg struct {
	Queries []string
}

type searchTickMsg struct {
	seq int
}

// New creates a new App instance
func New(opts Options) *App {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.GetDefaults()
	}
	log := opts.Logger
	if log == nil {
		log = logger.Nop()
	}

	set := breakpoints.Set(cfg.Breakpoints)
	if len(set) == 0 {
		set = breakpoints.Default()
	}

	clip := opts.Clipboard
	if clip == nil {
		clip = clipboard.WriteAll
	}

	sortDir := opts.SortDir
	if sortDir == "" {
		sortDir = sorting.Ascending
	}

	th := theme.GetTheme(cfg.UI.Theme)
	a := &App{
		state:        models.NewAppState(),
		config:       cfg,
		theme:        th,
		log:          log.WithComponent("app"),
		opts:         opts,
		source:       opts.Source,
		history:      opts.History,
		views:        opts.Views,
		filtering:    NewFiltering(cfg.Filtering),
		pager:        paging.NewPager(cfg.Paging.Size, cfg.Paging.Limit),
		breakpoints:  set,
		sortDir:      sortDir,
		tableView:    components.NewTableView(th),
		searchInput:  components.NewSearchInput(th),
		errorOverlay: components.NewErrorOverlay(th),
		clipboard:    clip,
		panel:        components.Panel{BorderColor: th.BorderFocused},
	}
	if opts.Source != nil {
		a.state.Source = opts.Source.Key()
	}

	a.updateLayout()
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(a.loadTable(), a.loadHistory())
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ErrorMsg:
		a.log.Errorw(msg.Title, "error", msg.Err)
		a.errorOverlay.Show(msg.Title, msg.Err)
		return a, nil

	case StatusMsg:
		a.status = msg.Text
		return a, nil

	case TableLoadedMsg:
		a.handleTableLoaded(msg)
		return a, nil

	case HistoryLoadedMsg:
		a.searchInput.SetHistory(msg.Queries)
		return a, nil

	case components.SearchChangedMsg:
		return a, a.scheduleSearch(msg.Query)

	case searchTickMsg:
		if msg.seq == a.searchSeq {
			a.applySearch(a.pendingSearch)
		}
		return a, nil

	case components.SearchSubmitMsg:
		a.searchSeq++
		a.applySearch(msg.Query)
		a.closeSearch()
		return a, a.recordSearch(msg.Query)

	case components.CloseSearchMsg:
		a.closeSearch()
		return a, nil

	case tea.WindowSizeMsg:
		a.state.Width = msg.Width
		a.state.Height = msg.Height
		a.updateLayout()
		if a.state.Table != nil {
			a.applyBreakpoints()
			a.refresh()
		}
		return a, nil

	case tea.MouseMsg:
		if a.state.ViewMode != models.NormalMode || a.errorOverlay.Visible {
			return a, nil
		}
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			a.tableView.MoveSelection(-3)
		case tea.MouseButtonWheelDown:
			a.tableView.MoveSelection(3)
		}
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.state.ViewMode == models.SearchMode {
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if a.errorOverlay.Visible {
		switch key {
		case "esc", "enter":
			a.errorOverlay.Hide()
		case "q", "ctrl+c":
			return a, tea.Quit
		}
		return a, nil
	}

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.state.ViewMode {
	case models.SearchMode:
		var cmd tea.Cmd
		a.searchInput, cmd = a.searchInput.Update(msg)
		return a, cmd

	case models.HelpMode:
		switch key {
		case "?", "esc", "q":
			a.state.ViewMode = models.NormalMode
		}
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "?":
		a.state.ViewMode = models.HelpMode
	case "/":
		a.state.ViewMode = models.SearchMode
		a.updateLayout()
		return a, a.searchInput.Open(a.searchText())
	case "esc":
		a.clearSearch()
	case "r", "f5":
		a.status = "Reloading..."
		return a, a.loadTable()
	case "up", "k":
		a.tableView.MoveSelection(-1)
	case "down", "j":
		a.tableView.MoveSelection(1)
	case "left", "h":
		a.changePage(a.pager.Prev)
	case "right", "l":
		a.changePage(a.pager.Next)
	case "g", "home":
		a.changePage(a.pager.First)
	case "G", "end":
		a.changePage(a.pager.Last)
	case "[":
		a.tableView.MoveColumn(-1)
	case "]":
		a.tableView.MoveColumn(1)
	case "s":
		a.sortBySelected(sorting.Ascending)
	case "S":
		a.sortBySelected(sorting.Descending)
	case "y":
		if row := a.tableView.SelectedRowData(); row != nil {
			return a, a.copyRows([]*models.Row{row})
		}
	case "Y":
		return a, a.copyRows(a.tableView.Rows)
	case "e":
		return a, a.exportRows("csv")
	case "E":
		return a, a.exportRows("json")
	case "w":
		return a, a.saveView()
	}
	return a, nil
}

// handleTableLoaded installs a newly read table. The first load restores
// the saved view and applies the command line options. Reloads keep the
// current filters and sort, rebinding them to the new columns by name.
func (a *App) handleTableLoaded(msg TableLoadedMsg) {
	a.state.Loading = false
	if msg.Err != nil {
		a.log.Errorw("failed to load source", "source", a.state.Source, "error", msg.Err)
		a.errorOverlay.Show("Load Failed", msg.Err)
		return
	}

	table := msg.Table
	if table == nil {
		table = models.NewTable(nil, nil)
	}
	a.state.Table = table
	a.searchColumns = filtering.ResolveColumns(filtering.FilterableColumns(table.Columns), a.opts.Columns)

	sortName := ""
	if a.sortColumn != nil {
		sortName = a.sortColumn.Name
	}
	records := a.filtering.Records()

	first := !a.loaded
	if first {
		a.loaded = true
		records, sortName = a.restoreView(records, sortName)
		if a.opts.Sort != "" {
			sortName = a.opts.Sort
			a.sortDir = a.opts.SortDir
			if a.sortDir == "" {
				a.sortDir = sorting.Ascending
			}
		}
	}

	a.rebind(records)
	a.sortColumn = nil
	if sortName != "" {
		a.sortColumn = table.ColumnByName(sortName)
	}
	if first && strings.TrimSpace(a.opts.Filter) != "" {
		a.filtering.Search(a.opts.Filter, a.searchColumns)
		a.searchInput.Input.SetValue(a.searchText())
	}

	if a.opts.Sort != "" && a.sortColumn == nil {
		a.log.Warnw("unknown sort column", "column", a.opts.Sort)
	}

	a.assignColumnBreakpoints()
	a.applyBreakpoints()
	a.refresh()
	a.status = ""
	a.log.Infow("table ready", "source", a.state.Source, "rows", len(table.Rows), "columns", len(table.Columns))
}

// restoreView returns the saved filters and sort column for the source,
// or the given ones when nothing is saved
func (a *App) restoreView(records []filtering.Record, sortName string) ([]filtering.Record, string) {
	if a.views == nil {
		return records, sortName
	}
	view, err := a.views.Get(a.state.Source)
	if err != nil {
		return records, sortName
	}

	if view.PageSize > 0 {
		a.pager.Size = view.PageSize
	}
	if view.SortColumn != "" {
		sortName = view.SortColumn
		a.sortDir = sorting.ParseDirection(view.SortDirection)
	}
	a.log.Debugw("restored view", "source", view.Source, "filters", len(view.Filters))
	return view.Filters, sortName
}

// rebind rebuilds the filters against the current table's columns. The
// search filter always follows the configured search columns.
func (a *App) rebind(records []filtering.Record) {
	a.filtering.Clear()
	for _, rec := range records {
		f := filtering.FromRecord(rec, a.state.Table.ColumnByName)
		if f.Name == filtering.SearchFilterName {
			f.Columns = a.searchColumns
		}
		a.filtering.Add(f)
	}
	a.searchInput.Input.SetValue(a.searchText())
}

// searchText returns the text of the active search filter
func (a *App) searchText() string {
	if f, ok := a.filtering.Get(filtering.SearchFilterName); ok {
		return f.Text()
	}
	return ""
}

// scheduleSearch debounces search input. Without a delay the search is
// applied at once.
func (a *App) scheduleSearch(text string) tea.Cmd {
	a.searchSeq++
	a.pendingSearch = text

	delay := a.filtering.Delay
	if delay <= 0 {
		a.applySearch(text)
		return nil
	}

	seq := a.searchSeq
	return tea.Tick(delay, func(time.Time) tea.Msg {
		return searchTickMsg{seq: seq}
	})
}

// applySearch updates the search filter and redraws when it changed
func (a *App) applySearch(text string) {
	if a.state.Table == nil {
		return
	}
	if !a.filtering.Search(text, a.searchColumns) {
		return
	}

	a.pager.First()
	a.tableView.ResetCursor()
	a.refresh()
	a.log.Debugw("search applied", "query", text, "matched", len(a.rows), "total", len(a.state.Table.Rows))
}

func (a *App) clearSearch() {
	if !a.filtering.Remove(filtering.SearchFilterName) {
		return
	}
	a.searchSeq++
	a.searchInput.Input.SetValue("")
	a.pager.First()
	a.tableView.ResetCursor()
	a.refresh()
	a.status = "Search cleared"
}

func (a *App) closeSearch() {
	a.searchInput.Close()
	a.state.ViewMode = models.NormalMode
	a.updateLayout()
}

func (a *App) changePage(move func()) {
	before := a.pager.Current
	move()
	if a.pager.Current != before {
		a.tableView.ResetCursor()
		a.refresh()
	}
}

func (a *App) sortBySelected(dir sorting.Direction) {
	col := a.tableView.SelectedColumn()
	if col == nil || !col.Sortable {
		return
	}
	a.sortColumn = col
	a.sortDir = dir
	a.refresh()
	a.tableView.SelectColumn(col)
}

// assignColumnBreakpoints copies the configured hiding rules onto the
// table's columns
func (a *App) assignColumnBreakpoints() {
	for name, list := range a.config.Columns {
		col := a.state.Table.ColumnByName(name)
		if col == nil {
			a.log.Debugw("no column for breakpoint rule", "column", name)
			continue
		}
		col.Breakpoints = breakpoints.Parse(list)
	}
}

func (a *App) applyBreakpoints() {
	current := a.breakpoints.Apply(a.state.Table.Columns, a.state.Width)
	a.log.Debugw("breakpoint", "width", a.state.Width, "name", current)
}

// refresh recomputes the visible rows and hands the current page to the
// table view
func (a *App) refresh() {
	if a.state.Table == nil {
		return
	}

	a.rows = ApplyView(a.state.Table.Rows, a.filtering, a.sortColumn, a.sortDir)
	page := a.pager.Slice(a.rows)

	a.tableView.SetSort(a.sortColumn, a.sortDir)
	a.tableView.SetData(a.state.Table.VisibleColumns(), page)

	var terms []query.Term
	ignoreCase := a.filtering.Options.IgnoreCase
	if f, ok := a.filtering.Get(filtering.SearchFilterName); ok {
		terms = f.Query().Terms()
		ignoreCase = f.Options.IgnoreCase
	}
	a.tableView.SetHighlight(terms, ignoreCase)
}

// Rows returns the filtered and sorted rows
func (a *App) Rows() []*models.Row {
	return a.rows
}

// updateLayout sizes the panel and table to the window
func (a *App) updateLayout() {
	if a.state.Width <= 0 || a.state.Height <= 0 {
		return
	}

	// top bar and bottom bar
	height := a.state.Height - 2
	if a.state.ViewMode == models.SearchMode {
		// search box: border plus input and help lines
		height -= 4
	}

	a.panel.Width = a.state.Width
	a.panel.Height = max(height, 5)
	a.searchInput.Width = a.state.Width

	a.panel.Title = a.state.Source
	a.panel.Footer = " "
	width, inner := a.panel.InnerSize()
	a.tableView.Width = width
	a.tableView.Height = inner
}
