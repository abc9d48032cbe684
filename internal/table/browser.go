// Package table implements a searchable, filterable, priority-sorted table
// for any row type, rendered to HTML.
package table

import (
	"html/template"
	"sort"
	"strings"
)

// All is the filter value that admits every row.
const All = "All"

// Column identifies a rendered column, left to right.
type Column int

const (
	ColumnAvatar Column = iota
	ColumnID
	ColumnName
	ColumnEmail
	ColumnPhone
	ColumnActions
)

// Navigator opens the detail view for a row.
type Navigator interface {
	NavigateTo(id string)
}

// NavigatorFunc adapts a function to a Navigator.
type NavigatorFunc func(id string)

// NavigateTo calls f(id).
func (f NavigatorFunc) NavigateTo(id string) { f(id) }

// Options configures a Browser.
type Options[R Row] struct {
	// Title is shown above the table.
	Title string

	// Filters are the filter pill values in display order. An empty list
	// disables filtering by status and hides the filter control.
	Filters []string

	// Status reads the lifecycle label a row is filtered and sorted by.
	// ok is false when the row has no label.
	Status func(R) (label string, ok bool)

	// Actions renders the trailing actions cell for one row.
	Actions func(R) template.HTML

	// Priority orders rows by label. Defaults to DefaultPriority.
	Priority PriorityTable

	// Navigator receives row clicks outside the actions column.
	Navigator Navigator

	// DetailPath builds the link a rendered row navigates to.
	DetailPath func(id string) string

	// FallbackAvatar replaces avatar references that are not URLs.
	FallbackAvatar string
}

// Browser holds the search and filter state of one table instance. Row data
// is never stored; it is supplied on every call.
type Browser[R Row] struct {
	opts         Options[R]
	search       string
	activeFilter string
}

// New creates a Browser with an empty search and the first filter active.
func New[R Row](opts Options[R]) *Browser[R] {
	if opts.Priority == nil {
		opts.Priority = DefaultPriority
	}
	if opts.FallbackAvatar == "" {
		opts.FallbackAvatar = DefaultFallbackAvatar
	}
	active := All
	if len(opts.Filters) > 0 {
		active = opts.Filters[0]
	}
	return &Browser[R]{opts: opts, activeFilter: active}
}

// Title returns the configured title.
func (b *Browser[R]) Title() string { return b.opts.Title }

// Filters returns the configured filter values.
func (b *Browser[R]) Filters() []string { return b.opts.Filters }

// Search returns the current search text.
func (b *Browser[R]) Search() string { return b.search }

// ActiveFilter returns the selected filter value.
func (b *Browser[R]) ActiveFilter() string { return b.activeFilter }

// SetSearch replaces the search text.
func (b *Browser[R]) SetSearch(s string) { b.search = s }

// SetFilter selects a filter value. It reports false and leaves the state
// unchanged if filtering is disabled or f is not one of the filters.
func (b *Browser[R]) SetFilter(f string) bool {
	for _, candidate := range b.opts.Filters {
		if candidate == f {
			b.activeFilter = f
			return true
		}
	}
	return false
}

// Visible derives the rows to display: rows whose name contains the search
// text (case-insensitively) and whose label equals the active filter, stably
// ordered by priority rank. rows is not modified.
func (b *Browser[R]) Visible(rows []R) []R {
	needle := strings.ToLower(b.search)
	visible := make([]R, 0, len(rows))
	for _, row := range rows {
		if b.matchesName(row, needle) && b.matchesFilter(row) {
			visible = append(visible, row)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		return b.rank(visible[i]) < b.rank(visible[j])
	})
	return visible
}

// Click handles a click on col of row. Every column except the actions
// column navigates to the row's detail view.
func (b *Browser[R]) Click(row R, col Column) {
	if col == ColumnActions || b.opts.Navigator == nil {
		return
	}
	b.opts.Navigator.NavigateTo(row.RowID())
}

func (b *Browser[R]) matchesName(row R, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(row.DisplayName()), needle)
}

func (b *Browser[R]) matchesFilter(row R) bool {
	if len(b.opts.Filters) == 0 || b.activeFilter == All {
		return true
	}
	label, ok := b.status(row)
	return ok && label == b.activeFilter
}

func (b *Browser[R]) rank(row R) int {
	return b.opts.Priority.Rank(b.status(row))
}

func (b *Browser[R]) status(row R) (string, bool) {
	if b.opts.Status == nil {
		return "", false
	}
	return b.opts.Status(row)
}
