package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rebeliceyang/lazytable/internal/export"
	"github.com/rebeliceyang/lazytable/internal/history"
	"github.com/rebeliceyang/lazytable/internal/logger"
	"github.com/rebeliceyang/lazytable/internal/models"
	"github.com/rebeliceyang/lazytable/internal/state"
)

// loadTable reads the source in the background
func (a *App) loadTable() tea.Cmd {
	if a.source == nil {
		return func() tea.Msg {
			return TableLoadedMsg{Err: errors.New("no data source")}
		}
	}

	a.state.Loading = true
	src := a.source
	log := a.log
	return func() tea.Msg {
		ctx := logger.WithLogger(context.Background(), log)
		table, err := src.Load(ctx)
		return TableLoadedMsg{Table: table, Err: err}
	}
}

// loadHistory fetches the recallable queries of the current source
func (a *App) loadHistory() tea.Cmd {
	if a.history == nil {
		return nil
	}

	store := a.history
	source := a.state.Source
	return func() tea.Msg {
		queries, err := store.RecentQueries(source, historyRecall)
		if err != nil {
			return ErrorMsg{Title: "History Error", Err: err}
		}
		return HistoryLoadedMsg{Queries: queries}
	}
}

// recordSearch stores a confirmed query, trims old entries and reloads
// the recallable queries
func (a *App) recordSearch(text string) tea.Cmd {
	if a.history == nil || strings.TrimSpace(text) == "" || a.state.Table == nil {
		return nil
	}

	store := a.history
	log := a.log
	maxEntries := a.config.History.MaxEntries
	entry := history.Entry{
		Source:  a.state.Source,
		Query:   text,
		Matched: len(a.rows),
		Total:   len(a.state.Table.Rows),
	}

	return func() tea.Msg {
		if err := store.Add(entry); err != nil {
			log.Warnw("failed to record search", "error", err)
			return nil
		}
		if maxEntries > 0 {
			if removed, err := store.Prune(maxEntries); err != nil {
				log.Warnw("failed to prune history", "error", err)
			} else if removed > 0 {
				log.Debugw("pruned history", "removed", removed)
			}
		}

		queries, err := store.RecentQueries(entry.Source, historyRecall)
		if err != nil {
			log.Warnw("failed to read history", "error", err)
			return nil
		}
		return HistoryLoadedMsg{Queries: queries}
	}
}

// copyRows puts rows of the visible columns on the clipboard as CSV
func (a *App) copyRows(rows []*models.Row) tea.Cmd {
	if len(rows) == 0 || a.state.Table == nil {
		return nil
	}

	cols := a.state.Table.VisibleColumns()
	write := a.clipboard
	return func() tea.Msg {
		text, err := export.CSVString(cols, rows)
		if err != nil {
			return ErrorMsg{Title: "Copy Failed", Err: err}
		}
		if err := write(text); err != nil {
			return ErrorMsg{Title: "Copy Failed", Err: fmt.Errorf("failed to write clipboard: %w", err)}
		}
		if len(rows) == 1 {
			return StatusMsg{Text: "Copied 1 row"}
		}
		return StatusMsg{Text: fmt.Sprintf("Copied %d rows", len(rows))}
	}
}

// exportRows writes every filtered, sorted row into the export directory
func (a *App) exportRows(ext string) tea.Cmd {
	if a.state.Table == nil {
		return nil
	}

	path := filepath.Join(a.config.Export.Dir, exportName(time.Now(), ext))
	cols := a.state.Table.Columns
	rows := a.rows
	log := a.log
	return func() tea.Msg {
		if err := export.ExportFile(path, cols, rows); err != nil {
			return ErrorMsg{Title: "Export Failed", Err: err}
		}
		log.Infow("exported rows", "path", path, "rows", len(rows))
		return StatusMsg{Text: fmt.Sprintf("Exported %d rows to %s", len(rows), path)}
	}
}

func exportName(now time.Time, ext string) string {
	return fmt.Sprintf("lazytable-%s.%s", now.Format("20060102-150405"), ext)
}

// saveView stores the filters, sort and page size of the current source
func (a *App) saveView() tea.Cmd {
	if a.views == nil {
		return func() tea.Msg {
			return StatusMsg{Text: "Saved views are disabled"}
		}
	}

	view := state.ViewState{
		Source:   a.state.Source,
		Filters:  a.filtering.Records(),
		PageSize: a.pager.Size,
	}
	if a.sortColumn != nil {
		view.SortColumn = a.sortColumn.Name
		view.SortDirection = string(a.sortDir)
	}

	views := a.views
	return func() tea.Msg {
		if _, err := views.Put(view); err != nil {
			return ErrorMsg{Title: "Save Failed", Err: err}
		}
		return StatusMsg{Text: "View saved"}
	}
}
