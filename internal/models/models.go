package models

// AppState holds the application state
type AppState struct {
	Width    int
	Height   int
	ViewMode ViewMode

	// Source state
	Source  string // source key
	Table   *Table
	Loading bool
}

// ViewMode identifies the current view
type ViewMode int

const (
	NormalMode ViewMode = iota
	SearchMode
	HelpMode
)

// String returns the mode label shown in the status bar
func (m ViewMode) String() string {
	switch m {
	case SearchMode:
		return "SEARCH"
	case HelpMode:
		return "HELP"
	default:
		return "NORMAL"
	}
}

// NewAppState creates a new AppState with defaults
func NewAppState() AppState {
	return AppState{
		Width:    80,
		Height:   24,
		ViewMode: NormalMode,
	}
}
