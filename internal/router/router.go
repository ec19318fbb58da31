// Package router turns user input into gallery, viewer and slideshow actions.
//
// Clicks are delegated: the target node and its ancestors are inspected until
// one of them is a gallery item or a viewer control, so a click on any part of
// a thumbnail opens that thumbnail's item.
package router

import (
	"fmt"
	"log"

	"fygallery/internal/gallery"
	"fygallery/internal/slideshow"
	"fygallery/internal/viewer"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Node is anything that can receive a click.
type Node interface {
	// ParentNode returns the enclosing node, or nil at the root.
	ParentNode() Node
}

// ItemNode is the on-screen element for a gallery item.
type ItemNode interface {
	Node
	GalleryItem() *gallery.Item
}

// Control identifies a lightbox control.
type Control int

const (
	ControlPrevious Control = iota
	ControlNext
	ControlClose
)

// ControlNode is a lightbox control element.
type ControlNode interface {
	Node
	ViewerControl() Control
}

// FilterButton is a category filter button.
type FilterButton interface {
	FilterCategory() string
	SetOnPressed(func())
	SetActive(active bool)
}

// Key is a key press the router understands.
type Key int

const (
	KeyUnknown Key = iota
	KeyEscape
	KeyArrowLeft
	KeyArrowRight
	// KeySpace toggles the slideshow.
	KeySpace
)

// Options configures a Router.
type Options struct {
	// StrictCategories rejects filter buttons whose category no record uses.
	StrictCategories bool
	SwipeThreshold   float32
	Logger           LoggerFunc
}

// Router dispatches input events. All methods run on the UI goroutine.
type Router struct {
	state     *gallery.State
	viewer    *viewer.Controller
	slideshow *slideshow.SlideshowManager
	swipe     *viewer.SwipeTracker
	strict    bool
	logger    LoggerFunc

	buttons []FilterButton
	bound   map[FilterButton]bool
}

// New creates a Router. show may be nil when no slideshow is wanted.
func New(state *gallery.State, v *viewer.Controller, show *slideshow.SlideshowManager, opts Options) *Router {
	return &Router{
		state:     state,
		viewer:    v,
		slideshow: show,
		swipe:     viewer.NewSwipeTracker(opts.SwipeThreshold),
		strict:    opts.StrictCategories,
		logger:    opts.Logger,
		bound:     make(map[FilterButton]bool),
	}
}

func (r *Router) logMessage(format string, args ...interface{}) {
	if r.logger != nil {
		r.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// BindFilters attaches press handlers to buttons. A button already bound is
// skipped, so calling BindFilters again never doubles a handler.
func (r *Router) BindFilters(buttons ...FilterButton) {
	for _, b := range buttons {
		if r.bound[b] {
			continue
		}
		r.bound[b] = true
		r.buttons = append(r.buttons, b)
		btn := b
		btn.SetOnPressed(func() { r.SelectFilter(btn) })
		btn.SetActive(btn.FilterCategory() == r.state.Filter())
	}
}

// SelectFilter makes btn the active filter. It reports false when the press
// was rejected.
func (r *Router) SelectFilter(btn FilterButton) bool {
	category := btn.FilterCategory()
	if r.strict && !r.state.IsKnownCategory(category) {
		r.logMessage("Ignoring filter '%s': no photo has that category", category)
		return false
	}
	for _, b := range r.buttons {
		b.SetActive(b == btn)
	}
	r.state.ApplyFilter(category)
	return true
}

// Click handles a click on target, walking up its ancestry.
func (r *Router) Click(target Node) bool {
	for n := target; n != nil; n = n.ParentNode() {
		switch node := n.(type) {
		case ControlNode:
			if !r.viewer.IsOpen() {
				return false
			}
			r.control(node.ViewerControl())
			return true
		case ItemNode:
			return r.viewer.Open(node.GalleryItem())
		}
	}
	return false
}

func (r *Router) control(c Control) {
	switch c {
	case ControlPrevious:
		r.viewer.Previous()
	case ControlNext:
		r.viewer.Next()
	case ControlClose:
		r.Close()
	}
}

// KeyPress handles a key. Keys do nothing while the lightbox is closed.
func (r *Router) KeyPress(k Key) bool {
	if !r.viewer.IsOpen() {
		return false
	}
	switch k {
	case KeyEscape:
		r.Close()
	case KeyArrowLeft:
		r.viewer.Previous()
	case KeyArrowRight:
		r.viewer.Next()
	case KeySpace:
		r.ToggleSlideshow()
	default:
		return false
	}
	return true
}

// TouchStart begins a possible swipe at horizontal position x.
func (r *Router) TouchStart(x float32) {
	if !r.viewer.IsOpen() {
		return
	}
	if r.slideshow != nil {
		r.slideshow.Pause(true)
	}
	r.swipe.Start(x)
}

// TouchEnd finishes a touch at x and navigates if it was a swipe.
func (r *Router) TouchEnd(x float32) viewer.SwipeDirection {
	d := r.swipe.End(x)
	if r.slideshow != nil {
		r.slideshow.ResumeAfterOperation()
	}
	if !r.viewer.IsOpen() {
		return viewer.SwipeNone
	}
	r.viewer.Apply(d)
	return d
}

// Close closes the lightbox and stops the slideshow.
func (r *Router) Close() {
	if r.slideshow != nil {
		r.slideshow.Pause(false)
	}
	r.viewer.Close()
}

// ToggleSlideshow starts or stops auto-advance while the lightbox is open.
func (r *Router) ToggleSlideshow() {
	if r.slideshow == nil || !r.viewer.IsOpen() {
		return
	}
	r.slideshow.TogglePlayPause()
}

// AdvanceSlideshow moves to the next entry if the slideshow is playing.
func (r *Router) AdvanceSlideshow() {
	if r.slideshow == nil || r.slideshow.IsPaused() || !r.viewer.IsOpen() {
		return
	}
	r.viewer.Next()
}
