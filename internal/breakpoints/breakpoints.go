// Package breakpoints hides columns when the terminal is too narrow for them.
package breakpoints

import (
	"sort"
	"strings"

	"github.com/rebeliceyang/lazytable/internal/models"
)

// All hides a column at every width
const All = "all"

// Set maps breakpoint names to the maximum width they apply to
type Set map[string]int

// Default returns the standard xs/sm/md/lg breakpoints in terminal cells
func Default() Set {
	return Set{
		"xs": 60,
		"sm": 90,
		"md": 120,
		"lg": 160,
	}
}

// Current returns the smallest breakpoint whose maximum is at least width,
// or "" when width is larger than every breakpoint
func (s Set) Current(width int) string {
	name, best := "", 0
	for n, limit := range s {
		if limit < width {
			continue
		}
		if name == "" || limit < best || (limit == best && n < name) {
			name, best = n, limit
		}
	}
	return name
}

// Names returns the breakpoint names ordered by width
func (s Set) Names() []string {
	names := make([]string, 0, len(s))
	for n := range s {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if s[names[i]] != s[names[j]] {
			return s[names[i]] < s[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

// Apply hides the columns that list the current breakpoint or "all" and
// shows the rest. It returns the current breakpoint name.
func (s Set) Apply(cols []*models.Column, width int) string {
	current := s.Current(width)
	for _, col := range cols {
		if col == nil {
			continue
		}
		col.Hidden = hiddenAt(col.Breakpoints, current)
	}
	return current
}

func hiddenAt(names []string, current string) bool {
	for _, n := range names {
		if n == All || (current != "" && n == current) {
			return true
		}
	}
	return false
}

// Parse splits a space or comma separated list of breakpoint names
func Parse(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	out := make([]string, 0, len(fields))
	for _, f := range fields {
		out = append(out, strings.ToLower(f))
	}
	return out
}
