package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/widget"

	"fygallery/internal/gallery"
	"fygallery/internal/lazyload"
	"fygallery/internal/router"
)

// layoutNotifier wraps a layout and calls onLayout after every pass, so
// positions can be re-measured once the grid has moved its cells.
type layoutNotifier struct {
	inner    fyne.Layout
	onLayout func()
}

func (l *layoutNotifier) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	l.inner.Layout(objects, size)
	if l.onLayout != nil {
		l.onLayout()
	}
}

func (l *layoutNotifier) MinSize(objects []fyne.CanvasObject) fyne.Size {
	return l.inner.MinSize(objects)
}

// galleryView is the scrolling thumbnail grid. It is the root of the click
// ancestry for thumbnails and measures item positions for the lazy loader.
type galleryView struct {
	state  *gallery.State
	router *router.Router
	thumbs []*thumbItem
	grid   *fyne.Container
	scroll *container.Scroll

	// onViewportChange runs after scrolling and after every grid layout.
	onViewportChange func()
}

var (
	_ router.Node       = (*galleryView)(nil)
	_ lazyload.Geometry = (*galleryView)(nil)
)

func newGalleryView(state *gallery.State, cellSize float32) *galleryView {
	v := &galleryView{state: state}

	objects := make([]fyne.CanvasObject, 0, state.Len())
	for _, item := range state.Items() {
		t := newThumbItem(item, v)
		v.thumbs = append(v.thumbs, t)
		objects = append(objects, t)
	}

	captionHeight := widget.NewLabel("Ag").MinSize().Height
	cell := fyne.NewSize(cellSize, cellSize+captionHeight)
	v.grid = container.New(&layoutNotifier{inner: layout.NewGridWrapLayout(cell), onLayout: v.viewportChanged}, objects...)
	v.scroll = container.NewVScroll(v.grid)
	v.scroll.OnScrolled = func(fyne.Position) { v.viewportChanged() }

	state.OnFilterChange(func(string) { v.applyVisibility() })
	v.applyVisibility()
	return v
}

func (v *galleryView) viewportChanged() {
	if v.onViewportChange != nil {
		v.onViewportChange()
	}
}

// applyVisibility shows the cells of visible items and hides the rest. Hidden
// cells take no space in the grid.
func (v *galleryView) applyVisibility() {
	for _, t := range v.thumbs {
		if t.item.Visible() {
			t.Show()
		} else {
			t.Hide()
		}
	}
	v.grid.Refresh()
	v.scroll.ScrollToTop()
}

// RefreshItem redraws the cell of item.
func (v *galleryView) RefreshItem(item *gallery.Item) {
	if item.Index >= 0 && item.Index < len(v.thumbs) {
		v.thumbs[item.Index].Update()
	}
}

func (v *galleryView) ParentNode() router.Node { return nil }

// Viewport is the visible part of the grid, in grid coordinates.
func (v *galleryView) Viewport() lazyload.Rect {
	off := v.scroll.Offset
	size := v.scroll.Size()
	return lazyload.Rect{X: off.X, Y: off.Y, Width: size.Width, Height: size.Height}
}

// Bounds reports where item's cell sits in the grid. A hidden or not yet
// laid out cell has no bounds.
func (v *galleryView) Bounds(item *gallery.Item) (lazyload.Rect, bool) {
	if item.Index < 0 || item.Index >= len(v.thumbs) {
		return lazyload.Rect{}, false
	}
	t := v.thumbs[item.Index]
	size := t.Size()
	if !t.Visible() || size.Width <= 0 || size.Height <= 0 {
		return lazyload.Rect{}, false
	}
	pos := t.Position()
	return lazyload.Rect{X: pos.X, Y: pos.Y, Width: size.Width, Height: size.Height}, true
}
