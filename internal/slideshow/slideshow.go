// Package slideshow drives automatic advancing of the lightbox.
package slideshow

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"
)

const (
	defaultSlideshowInterval = 3 * time.Second
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// SlideshowManager handles the slideshow functionality.
type SlideshowManager struct {
	mu                 sync.Mutex
	isPaused           bool
	wasPlayingBeforeOp bool // playing when Pause(true) was called
	interval           time.Duration
	logger             LoggerFunc
}

// NewSlideshowManager creates a paused SlideshowManager.
// Interval is the time between automatic transitions.
func NewSlideshowManager(interval time.Duration, logger LoggerFunc) *SlideshowManager {
	if interval <= 0 {
		interval = defaultSlideshowInterval
	}
	return &SlideshowManager{
		isPaused: true,
		interval: interval,
		logger:   logger,
	}
}

func (sm *SlideshowManager) logMessage(format string, args ...interface{}) {
	if sm.logger != nil {
		sm.logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}

// TogglePlayPause toggles the play/pause state and reports whether it is now paused.
func (sm *SlideshowManager) TogglePlayPause() bool {
	sm.mu.Lock()
	sm.isPaused = !sm.isPaused
	sm.wasPlayingBeforeOp = false
	paused := sm.isPaused
	sm.mu.Unlock()

	if paused {
		sm.logMessage("Slideshow paused")
	} else {
		sm.logMessage("Slideshow playing every %s", sm.interval)
	}
	return paused
}

// Pause forces the slideshow to pause.
// If forOperation is true, it remembers if the slideshow was playing.
func (sm *SlideshowManager) Pause(forOperation bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if forOperation {
		sm.wasPlayingBeforeOp = !sm.isPaused
	} else {
		sm.wasPlayingBeforeOp = false
	}
	sm.isPaused = true
}

// ResumeAfterOperation resumes the slideshow only if it was playing before Pause(true) was called.
func (sm *SlideshowManager) ResumeAfterOperation() {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if sm.wasPlayingBeforeOp {
		sm.isPaused = false
	}
	sm.wasPlayingBeforeOp = false
}

// IsPaused returns true if the slideshow is currently paused.
func (sm *SlideshowManager) IsPaused() bool {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.isPaused
}

// Interval returns the configured slideshow interval.
func (sm *SlideshowManager) Interval() time.Duration {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return sm.interval
}

// Run calls advance once per interval while the slideshow is playing, until
// ctx is done. advance runs on the ticker goroutine; callers hop to the UI
// goroutine themselves.
func (sm *SlideshowManager) Run(ctx context.Context, advance func()) {
	ticker := time.NewTicker(sm.Interval())
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if !sm.IsPaused() {
				advance()
			}
		}
	}
}
