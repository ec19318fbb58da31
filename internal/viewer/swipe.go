package viewer

// DefaultSwipeThreshold is the horizontal distance, in logical pixels, a touch
// must travel to count as a swipe.
const DefaultSwipeThreshold float32 = 50

// SwipeDirection is the outcome of a completed touch.
type SwipeDirection int

const (
	SwipeNone SwipeDirection = iota
	// SwipeLeft moves to the next entry.
	SwipeLeft
	// SwipeRight moves to the previous entry.
	SwipeRight
)

// SwipeTracker classifies horizontal touches. Only the start and end x
// positions matter.
type SwipeTracker struct {
	Threshold float32

	startX   float32
	tracking bool
}

// NewSwipeTracker returns a tracker using threshold, or the default when
// threshold is not positive.
func NewSwipeTracker(threshold float32) *SwipeTracker {
	if threshold <= 0 {
		threshold = DefaultSwipeThreshold
	}
	return &SwipeTracker{Threshold: threshold}
}

// Start records where a touch began.
func (s *SwipeTracker) Start(x float32) {
	s.startX = x
	s.tracking = true
}

// End finishes the touch at x. The travel must strictly exceed the threshold.
func (s *SwipeTracker) End(x float32) SwipeDirection {
	if !s.tracking {
		return SwipeNone
	}
	s.tracking = false
	dx := x - s.startX
	switch {
	case dx < -s.Threshold:
		return SwipeLeft
	case dx > s.Threshold:
		return SwipeRight
	default:
		return SwipeNone
	}
}

// Apply performs the navigation a swipe stands for.
func (c *Controller) Apply(d SwipeDirection) {
	switch d {
	case SwipeLeft:
		c.Next()
	case SwipeRight:
		c.Previous()
	}
}
