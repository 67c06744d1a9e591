package state

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rebeliceyang/lazytable/internal/filtering"
	"gopkg.in/yaml.v3"
)

// ErrNotFound is returned when no view is saved for a source
var ErrNotFound = errors.New("view not found")

// ViewState is the saved filters, sort and paging of one data source
type ViewState struct {
	ID            string             `yaml:"id"`
	Source        string             `yaml:"source"`
	Filters       []filtering.Record `yaml:"filters,omitempty"`
	SortColumn    string             `yaml:"sort_column,omitempty"`
	SortDirection string             `yaml:"sort_direction,omitempty"`
	PageSize      int                `yaml:"page_size,omitempty"`
	UpdatedAt     time.Time          `yaml:"updated_at"`
}

// Manager stores view states in views.yaml. It is safe for concurrent use.
type Manager struct {
	mu    sync.RWMutex
	path  string
	views []ViewState
}

// NewManager creates a view manager, loading views.yaml from configDir if it exists
func NewManager(configDir string) (*Manager, error) {
	path := filepath.Join(configDir, "views.yaml")

	m := &Manager{
		path:  path,
		views: []ViewState{},
	}

	if _, err := os.Stat(path); err == nil {
		if err := m.load(); err != nil {
			return nil, fmt.Errorf("failed to load views: %w", err)
		}
	}

	return m, nil
}

// Path returns the YAML file location
func (m *Manager) Path() string {
	return m.path
}

// Load reads views from the YAML file
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load()
}

func (m *Manager) load() error {
	data, err := os.ReadFile(m.path)
	if err != nil {
		return fmt.Errorf("failed to read views file: %w", err)
	}

	var views []ViewState
	if err := yaml.Unmarshal(data, &views); err != nil {
		return fmt.Errorf("failed to parse views: %w", err)
	}
	m.views = views

	return nil
}

// Save writes views to the YAML file
func (m *Manager) Save() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.save()
}

func (m *Manager) save() error {
	data, err := yaml.Marshal(m.views)
	if err != nil {
		return fmt.Errorf("failed to marshal views: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(m.path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if err := os.WriteFile(m.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write views file: %w", err)
	}

	return nil
}

// Get returns the view saved for source
func (m *Manager) Get(source string) (*ViewState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, v := range m.views {
		if v.Source == source {
			return &v, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, source)
}

// Put saves view, replacing any view for the same source. A new view gets an ID.
func (m *Manager) Put(view ViewState) (*ViewState, error) {
	view.Source = strings.TrimSpace(view.Source)
	if view.Source == "" {
		return nil, fmt.Errorf("view source cannot be empty")
	}
	view.UpdatedAt = time.Now()

	m.mu.Lock()
	defer m.mu.Unlock()

	replaced := false
	for i, v := range m.views {
		if v.Source == view.Source {
			view.ID = v.ID
			m.views[i] = view
			replaced = true
			break
		}
	}
	if !replaced {
		if view.ID == "" {
			view.ID = uuid.New().String()
		}
		m.views = append(m.views, view)
	}

	if err := m.save(); err != nil {
		return nil, fmt.Errorf("failed to save view: %w", err)
	}

	return &view, nil
}

// Delete removes the view saved for source
func (m *Manager) Delete(source string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, v := range m.views {
		if v.Source == source {
			m.views = append(m.views[:i], m.views[i+1:]...)
			if err := m.save(); err != nil {
				return fmt.Errorf("failed to save views after deletion: %w", err)
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %s", ErrNotFound, source)
}

// All returns every saved view, most recently updated first
func (m *Manager) All() []ViewState {
	m.mu.RLock()
	sorted := make([]ViewState, len(m.views))
	copy(sorted, m.views)
	m.mu.RUnlock()

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].UpdatedAt.After(sorted[j].UpdatedAt)
	})

	return sorted
}
