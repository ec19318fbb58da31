// Package lazyload defers fetching an item's real image until the item comes
// within a fixed margin of the viewport.
//
// The Loader follows the gallery's single event goroutine model: every exported
// method must be called on that goroutine, and fetch completions, debounced
// rescans and retries are handed back to it through Options.Dispatch.
package lazyload

import (
	"context"
	"fmt"
	"image"
	"log"
	"time"

	"fygallery/internal/gallery"

	"github.com/cenkalti/backoff/v4"
)

const (
	// DefaultMargin is how close, in logical pixels, an item must come to the
	// viewport before its fetch starts.
	DefaultMargin float32 = 50
	// DefaultRescanDelay lets layout settle after a filter change.
	DefaultRescanDelay = 100 * time.Millisecond
	// DefaultMaxRetries bounds refetches of a failed image.
	DefaultMaxRetries = 3
	// DefaultInitialBackoff is the wait before the first retry.
	DefaultInitialBackoff = 500 * time.Millisecond
	// DefaultFetchTimeout bounds a single fetch.
	DefaultFetchTimeout = 15 * time.Second
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// Fetcher retrieves the image behind a record's src.
type Fetcher interface {
	Fetch(ctx context.Context, src string) (image.Image, error)
}

// FetcherFunc adapts a function to Fetcher.
type FetcherFunc func(ctx context.Context, src string) (image.Image, error)

// Fetch calls f.
func (f FetcherFunc) Fetch(ctx context.Context, src string) (image.Image, error) {
	return f(ctx, src)
}

// Geometry reports where items and the viewport are, in the same coordinates.
type Geometry interface {
	Viewport() Rect
	Bounds(item *gallery.Item) (Rect, bool)
}

// Timer is a pending Clock callback.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks. The callback may run on any goroutine.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type systemClock struct{}

func (systemClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// Options configures a Loader. Zero values take the package defaults.
type Options struct {
	Margin         float32
	RescanDelay    time.Duration
	MaxRetries     int
	InitialBackoff time.Duration
	FetchTimeout   time.Duration

	// Dispatch runs f on the event goroutine. Defaults to calling f directly.
	Dispatch func(f func())
	Clock    Clock
	Logger   LoggerFunc
	// Warn receives fetches that were given up on. Defaults to Logger.
	Warn     LoggerFunc

	// OnStateChange runs on the event goroutine after an item's LoadState changed.
	OnStateChange func(item *gallery.Item)
}

// Loader owns the proximity triggers for a gallery.State.
type Loader struct {
	state   *gallery.State
	fetcher Fetcher
	geom    Geometry
	opts    Options

	observed map[*gallery.Item]bool
	retries  map[*gallery.Item]backoff.BackOff
	fetches  map[*gallery.Item]int

	rescanTimer Timer
	rescanGen   int

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates a Loader and subscribes it to filter changes on state.
func New(state *gallery.State, fetcher Fetcher, geom Geometry, opts Options) *Loader {
	if opts.Margin <= 0 {
		opts.Margin = DefaultMargin
	}
	if opts.RescanDelay <= 0 {
		opts.RescanDelay = DefaultRescanDelay
	}
	if opts.MaxRetries < 0 {
		opts.MaxRetries = 0
	} else if opts.MaxRetries == 0 {
		opts.MaxRetries = DefaultMaxRetries
	}
	if opts.InitialBackoff <= 0 {
		opts.InitialBackoff = DefaultInitialBackoff
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = DefaultFetchTimeout
	}
	if opts.Dispatch == nil {
		opts.Dispatch = func(f func()) { f() }
	}
	if opts.Clock == nil {
		opts.Clock = systemClock{}
	}

	ctx, cancel := context.WithCancel(context.Background())
	l := &Loader{
		state:    state,
		fetcher:  fetcher,
		geom:     geom,
		opts:     opts,
		observed: make(map[*gallery.Item]bool),
		retries:  make(map[*gallery.Item]backoff.BackOff),
		fetches:  make(map[*gallery.Item]int),
		ctx:      ctx,
		cancel:   cancel,
	}
	state.OnFilterChange(func(string) { l.ScheduleRescan() })
	return l
}

func (l *Loader) logMessage(format string, args ...interface{}) {
	if l.opts.Logger != nil {
		l.opts.Logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

func (l *Loader) warnMessage(format string, args ...interface{}) {
	if l.opts.Warn != nil {
		l.opts.Warn(fmt.Sprintf(format, args...))
		return
	}
	l.logMessage(format, args...)
}

// Close cancels in-flight fetches and pending rescans.
func (l *Loader) Close() {
	l.rescanGen++
	if l.rescanTimer != nil {
		l.rescanTimer.Stop()
	}
	l.cancel()
}

// Observe arms a trigger for a visible Placeholder item.
func (l *Loader) Observe(item *gallery.Item) bool {
	if item == nil || !item.Visible() || item.LoadState() != gallery.Placeholder {
		return false
	}
	l.observed[item] = true
	return true
}

// Unobserve disarms a pending trigger.
func (l *Loader) Unobserve(item *gallery.Item) {
	delete(l.observed, item)
}

// Observed reports whether item has an armed trigger.
func (l *Loader) Observed(item *gallery.Item) bool {
	return l.observed[item]
}

// FetchCount returns how many fetches were started for item.
func (l *Loader) FetchCount(item *gallery.Item) int {
	return l.fetches[item]
}

// ObserveVisible arms triggers for the current visible set and runs a check.
func (l *Loader) ObserveVisible() {
	l.Rescan()
}

// ScheduleRescan runs Rescan once RescanDelay has passed without another call.
func (l *Loader) ScheduleRescan() {
	if l.rescanTimer != nil {
		l.rescanTimer.Stop()
	}
	l.rescanGen++
	gen := l.rescanGen
	l.rescanTimer = l.opts.Clock.AfterFunc(l.opts.RescanDelay, func() {
		l.opts.Dispatch(func() {
			if gen != l.rescanGen {
				return
			}
			l.rescanTimer = nil
			l.Rescan()
		})
	})
}

// Rescan rearms triggers for visible Placeholder items, disarms triggers of
// hidden items, and checks proximity. Loading, Loaded and Failed items are
// left alone.
func (l *Loader) Rescan() {
	for _, it := range l.state.Items() {
		switch {
		case it.Visible() && it.LoadState() == gallery.Placeholder:
			l.observed[it] = true
		case !it.Visible() && l.observed[it]:
			l.Unobserve(it)
		}
	}
	l.Check()
}

// Check fires every armed trigger whose item is within the margin of the viewport.
func (l *Loader) Check() {
	if len(l.observed) == 0 || l.geom == nil {
		return
	}
	zone := l.geom.Viewport().Inset(-l.opts.Margin)
	for _, it := range l.state.Items() {
		if !l.observed[it] {
			continue
		}
		b, ok := l.geom.Bounds(it)
		if !ok || !b.Intersects(zone) {
			continue
		}
		l.fire(it)
	}
}

// fire retires the trigger and starts the one fetch for item.
func (l *Loader) fire(item *gallery.Item) {
	delete(l.observed, item)
	if !item.MarkLoading() {
		return
	}
	l.notify(item)
	l.startFetch(item)
}

func (l *Loader) startFetch(item *gallery.Item) {
	l.fetches[item]++
	src := item.Record.Src
	go func() {
		ctx, cancel := context.WithTimeout(l.ctx, l.opts.FetchTimeout)
		img, err := l.fetcher.Fetch(ctx, src)
		cancel()
		l.opts.Dispatch(func() { l.complete(item, img, err) })
	}()
}

// complete applies a fetch result. Hidden items still take the result.
func (l *Loader) complete(item *gallery.Item, img image.Image, err error) {
	if err == nil {
		if item.MarkLoaded(img) {
			delete(l.retries, item)
			l.notify(item)
		}
		return
	}
	if !item.MarkFailed(err) {
		return
	}
	l.notify(item)
	if l.ctx.Err() != nil {
		return
	}

	b, ok := l.retries[item]
	if !ok {
		exp := backoff.NewExponentialBackOff()
		exp.InitialInterval = l.opts.InitialBackoff
		exp.Multiplier = 2
		exp.RandomizationFactor = 0
		exp.MaxElapsedTime = 0
		exp.Reset()
		b = backoff.WithMaxRetries(exp, uint64(l.opts.MaxRetries))
		l.retries[item] = b
	}
	wait := b.NextBackOff()
	if wait == backoff.Stop {
		l.warnMessage("Giving up on %s after %d attempts: %v", item.Record.Src, l.fetches[item], err)
		return
	}
	l.logMessage("Fetch of %s failed (%v), retrying in %s", item.Record.Src, err, wait)
	l.opts.Clock.AfterFunc(wait, func() {
		l.opts.Dispatch(func() { l.retry(item) })
	})
}

func (l *Loader) retry(item *gallery.Item) {
	if l.ctx.Err() != nil || item.LoadState() != gallery.Failed {
		return
	}
	if item.MarkLoading() {
		l.notify(item)
		l.startFetch(item)
	}
}

func (l *Loader) notify(item *gallery.Item) {
	if l.opts.OnStateChange != nil {
		l.opts.OnStateChange(item)
	}
}
