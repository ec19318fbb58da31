package gallery

import (
	"fmt"
	"log"

	"fygallery/internal/catalog"
)

// CategoryAll is the filter value that matches every item.
const CategoryAll = "all"

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// State owns the catalog items and the current filter. It is not safe for
// concurrent use; every call is expected on the UI event goroutine.
type State struct {
	items      []*Item
	filter     string
	categories []string
	known      map[string]bool
	listeners  []func(category string)
	logger     LoggerFunc
	warn       LoggerFunc
}

// NewState builds one visible Placeholder item per record, in catalog order,
// with the filter set to CategoryAll.
func NewState(records []catalog.PhotoRecord, logger LoggerFunc) *State {
	s := &State{
		filter: CategoryAll,
		logger: logger,
		known:  make(map[string]bool),
	}
	s.items = make([]*Item, len(records))
	for i, rec := range records {
		s.items[i] = &Item{Index: i, Record: rec, visible: true}
	}
	s.categories = catalog.Categories(records)
	for _, c := range s.categories {
		s.known[c] = true
	}
	return s
}

// SetWarnLogger routes warnings to fn instead of the regular logger.
func (s *State) SetWarnLogger(fn LoggerFunc) {
	s.warn = fn
}

func (s *State) warnMessage(format string, args ...interface{}) {
	if s.warn != nil {
		s.warn(fmt.Sprintf(format, args...))
		return
	}
	s.logMessage(format, args...)
}

func (s *State) logMessage(format string, args ...interface{}) {
	if s.logger != nil {
		s.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Matches is the visibility rule.
func Matches(category string, rec catalog.PhotoRecord) bool {
	return category == CategoryAll || rec.HasCategory(category)
}

// Items returns every item in catalog order.
func (s *State) Items() []*Item { return s.items }

// Len returns the catalog size.
func (s *State) Len() int { return len(s.items) }

// Item returns the item at catalog index i.
func (s *State) Item(i int) (*Item, bool) {
	if i < 0 || i >= len(s.items) {
		return nil, false
	}
	return s.items[i], true
}

// Filter returns the active category.
func (s *State) Filter() string { return s.filter }

// Categories returns the sorted category tags present in the catalog.
func (s *State) Categories() []string { return s.categories }

// IsKnownCategory reports whether category is CategoryAll or used by a record.
func (s *State) IsKnownCategory(category string) bool {
	return category == CategoryAll || s.known[category]
}

// OnFilterChange registers fn to run after a filter change altered visibility.
func (s *State) OnFilterChange(fn func(category string)) {
	s.listeners = append(s.listeners, fn)
}

// ApplyFilter sets the active category and recomputes visibility for every
// item. An unknown category is accepted and matches nothing. Listeners run
// only when at least one item changed visibility.
func (s *State) ApplyFilter(category string) {
	if !s.IsKnownCategory(category) {
		s.warnMessage("Filter '%s' matches no catalog category", category)
	}
	s.filter = category

	changed := false
	shown := 0
	for _, it := range s.items {
		v := Matches(category, it.Record)
		if v != it.visible {
			it.visible = v
			changed = true
		}
		if v {
			shown++
		}
	}
	if !changed {
		return
	}
	s.logMessage("Filter '%s': %d of %d photos visible", category, shown, len(s.items))
	for _, fn := range s.listeners {
		fn(category)
	}
}

// Visible returns the visible items in catalog order.
func (s *State) Visible() []*Item {
	var out []*Item
	for _, it := range s.items {
		if it.visible {
			out = append(out, it)
		}
	}
	return out
}

// VisibleCount returns the size of the visible set.
func (s *State) VisibleCount() int {
	n := 0
	for _, it := range s.items {
		if it.visible {
			n++
		}
	}
	return n
}
