// Package gallery holds the in-memory model of the photo gallery: one Item per
// catalog record, the current category filter, and the visibility rule that
// ties them together.
package gallery

import (
	"image"

	"fygallery/internal/catalog"
)

// LoadState tracks how far an item's real image has been fetched.
type LoadState int

const (
	// Placeholder items show a stand-in and have not been fetched.
	Placeholder LoadState = iota
	// Loading items have a fetch in flight.
	Loading
	// Loaded is terminal for the session.
	Loaded
	// Failed items had their last fetch fail; only a retry moves them on.
	Failed
)

func (s LoadState) String() string {
	switch s {
	case Placeholder:
		return "placeholder"
	case Loading:
		return "loading"
	case Loaded:
		return "loaded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Item is the on-screen entry for one catalog record. Items are created once
// per catalog load and are hidden, never removed.
type Item struct {
	Index  int
	Record catalog.PhotoRecord

	visible bool
	state   LoadState
	image   image.Image
	lastErr error
}

func (it *Item) Visible() bool        { return it.visible }
func (it *Item) LoadState() LoadState { return it.state }

// Image returns the fetched image, or nil until the item is Loaded.
func (it *Item) Image() image.Image { return it.image }

// Err returns the error of the last failed fetch.
func (it *Item) Err() error { return it.lastErr }

// MarkLoading moves a Placeholder or Failed item to Loading.
// It reports false, and changes nothing, from any other state.
func (it *Item) MarkLoading() bool {
	if it.state != Placeholder && it.state != Failed {
		return false
	}
	it.state = Loading
	return true
}

// MarkLoaded stores img and moves a Loading item to Loaded.
func (it *Item) MarkLoaded(img image.Image) bool {
	if it.state != Loading {
		return false
	}
	it.state = Loaded
	it.image = img
	it.lastErr = nil
	return true
}

// MarkFailed records err and moves a Loading item to Failed.
func (it *Item) MarkFailed(err error) bool {
	if it.state != Loading {
		return false
	}
	it.state = Failed
	it.lastErr = err
	return true
}
