// Package viewer implements the lightbox: a full-screen view over a snapshot of
// the gallery's visible items with wrap-around navigation.
package viewer

import (
	"fmt"
	"log"

	"fygallery/internal/gallery"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Presenter draws the lightbox.
type Presenter interface {
	// Show displays item as entry position (0-based) of total.
	Show(item *gallery.Item, position, total int)
	Hide()
}

// Controller holds the lightbox sequence and position. It is not safe for
// concurrent use.
type Controller struct {
	state     *gallery.State
	presenter Presenter
	logger    LoggerFunc

	sequence []*gallery.Item
	position int
}

// NewController creates a closed lightbox over state.
func NewController(state *gallery.State, presenter Presenter, logger LoggerFunc) *Controller {
	return &Controller{state: state, presenter: presenter, logger: logger}
}

func (c *Controller) logMessage(format string, args ...interface{}) {
	if c.logger != nil {
		c.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// Open snapshots the visible set and shows item. It does nothing when item is
// not visible. Opening while already open takes a fresh snapshot.
func (c *Controller) Open(item *gallery.Item) bool {
	if item == nil || !item.Visible() {
		return false
	}
	seq := c.state.Visible()
	pos := -1
	for i, it := range seq {
		if it == item {
			pos = i
			break
		}
	}
	if pos < 0 {
		return false
	}
	c.sequence = seq
	c.position = pos
	c.logMessage("Lightbox opened at %s (%d/%d)", item.Record.Src, pos+1, len(seq))
	c.show()
	return true
}

// Next moves forward one entry, wrapping from the last to the first.
func (c *Controller) Next() {
	c.step(1)
}

// Previous moves back one entry, wrapping from the first to the last.
func (c *Controller) Previous() {
	c.step(-1)
}

func (c *Controller) step(delta int) {
	n := len(c.sequence)
	if n == 0 {
		return
	}
	c.position = ((c.position+delta)%n + n) % n
	c.show()
}

// Close hides the lightbox and drops the sequence.
func (c *Controller) Close() {
	if !c.IsOpen() {
		return
	}
	c.sequence = nil
	c.position = 0
	if c.presenter != nil {
		c.presenter.Hide()
	}
}

func (c *Controller) show() {
	if c.presenter != nil {
		c.presenter.Show(c.sequence[c.position], c.position, len(c.sequence))
	}
}

// IsOpen reports whether the lightbox is showing.
func (c *Controller) IsOpen() bool { return len(c.sequence) > 0 }

// Position returns the index into Sequence of the shown item.
func (c *Controller) Position() int { return c.position }

// Current returns the shown item, or nil when closed.
func (c *Controller) Current() *gallery.Item {
	if !c.IsOpen() {
		return nil
	}
	return c.sequence[c.position]
}

// Sequence returns the snapshot taken by the last Open.
func (c *Controller) Sequence() []*gallery.Item { return c.sequence }

// Refresh redraws the current entry, e.g. after its image finished loading.
func (c *Controller) Refresh(item *gallery.Item) {
	if c.IsOpen() && c.Current() == item {
		c.show()
	}
}
