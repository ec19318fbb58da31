package ui

import (
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"fygallery/internal/catalog"
	"fygallery/internal/gallery"
	"fygallery/internal/router"
)

// filterButton activates one category; the active one is highlighted.
type filterButton struct {
	*widget.Button
	category string
}

var _ router.FilterButton = (*filterButton)(nil)

func newFilterButton(category string) *filterButton {
	return &filterButton{Button: widget.NewButton(filterLabel(category), nil), category: category}
}

func (b *filterButton) FilterCategory() string { return b.category }

func (b *filterButton) SetOnPressed(fn func()) { b.OnTapped = fn }

func (b *filterButton) SetActive(active bool) {
	if active {
		b.Importance = widget.HighImportance
	} else {
		b.Importance = widget.MediumImportance
	}
	b.Refresh()
}

func filterLabel(category string) string {
	if category == "" {
		return category
	}
	return strings.ToUpper(category[:1]) + category[1:]
}

// filterCategories lists "all", then the standard categories, then any other
// category the catalog uses.
func filterCategories(state *gallery.State) []string {
	cats := []string{gallery.CategoryAll}
	seen := map[string]bool{gallery.CategoryAll: true}
	for _, c := range catalog.DefaultCategories {
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	for _, c := range state.Categories() {
		if !seen[c] {
			seen[c] = true
			cats = append(cats, c)
		}
	}
	return cats
}

// buildFilterBar creates one button per category in a horizontally
// scrolling row.
func buildFilterBar(state *gallery.State) ([]router.FilterButton, fyne.CanvasObject) {
	var buttons []router.FilterButton
	row := container.NewHBox()
	for _, c := range filterCategories(state) {
		b := newFilterButton(c)
		buttons = append(buttons, b)
		row.Add(b)
	}
	return buttons, container.NewHScroll(row)
}
