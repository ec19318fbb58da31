package router

import (
	"testing"
	"time"

	"fygallery/internal/catalog"
	"fygallery/internal/gallery"
	"fygallery/internal/slideshow"
	"fygallery/internal/viewer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type plainNode struct{ parent Node }

func (n *plainNode) ParentNode() Node { return n.parent }

type itemNode struct {
	plainNode
	item *gallery.Item
}

func (n *itemNode) GalleryItem() *gallery.Item { return n.item }

type controlNode struct {
	plainNode
	control Control
}

func (n *controlNode) ViewerControl() Control { return n.control }

type fakeButton struct {
	category string
	handlers []func()
	active   bool
}

func (b *fakeButton) FilterCategory() string { return b.category }
func (b *fakeButton) SetOnPressed(fn func())  { b.handlers = append(b.handlers, fn) }
func (b *fakeButton) SetActive(active bool)   { b.active = active }

func (b *fakeButton) press() {
	for _, h := range b.handlers {
		h()
	}
}

type harness struct {
	state  *gallery.State
	viewer *viewer.Controller
	show   *slideshow.SlideshowManager
	router *Router
	logs   []string
}

func newHarness(t *testing.T, strict bool) *harness {
	t.Helper()
	h := &harness{}
	logger := func(msg string) { h.logs = append(h.logs, msg) }
	h.state = gallery.NewState([]catalog.PhotoRecord{
		{Src: "0.jpg", Categories: []string{"nature"}},
		{Src: "1.jpg", Categories: []string{"city"}},
		{Src: "2.jpg", Categories: []string{"nature", "city"}},
	}, logger)
	h.viewer = viewer.NewController(h.state, nil, logger)
	h.show = slideshow.NewSlideshowManager(time.Second, logger)
	h.router = New(h.state, h.viewer, h.show, Options{StrictCategories: strict, Logger: logger})
	return h
}

func (h *harness) node(t *testing.T, i int) *itemNode {
	t.Helper()
	it, ok := h.state.Item(i)
	require.True(t, ok)
	return &itemNode{item: it}
}

func TestClickIsDelegatedToItem(t *testing.T) {
	h := newHarness(t, false)
	item := h.node(t, 1)
	caption := &plainNode{parent: item}
	inner := &plainNode{parent: caption}

	require.True(t, h.router.Click(inner))
	assert.True(t, h.viewer.IsOpen())
	assert.Equal(t, "1.jpg", h.viewer.Current().Record.Src)

	assert.False(t, h.router.Click(&plainNode{}), "no item in the ancestry")
}

func TestControlsOnlyWorkWhileOpen(t *testing.T) {
	h := newHarness(t, false)
	next := &controlNode{control: ControlNext}
	assert.False(t, h.router.Click(next))

	require.True(t, h.router.Click(h.node(t, 2)))
	require.True(t, h.router.Click(next))
	assert.Equal(t, 0, h.viewer.Position())

	require.True(t, h.router.Click(&controlNode{control: ControlPrevious}))
	assert.Equal(t, 2, h.viewer.Position())

	require.True(t, h.router.Click(&controlNode{control: ControlClose}))
	assert.False(t, h.viewer.IsOpen())
}

func TestKeyPress(t *testing.T) {
	h := newHarness(t, false)
	assert.False(t, h.router.KeyPress(KeyArrowRight), "ignored while closed")

	require.True(t, h.router.Click(h.node(t, 0)))
	assert.True(t, h.router.KeyPress(KeyArrowRight))
	assert.Equal(t, 1, h.viewer.Position())
	assert.True(t, h.router.KeyPress(KeyArrowLeft))
	assert.True(t, h.router.KeyPress(KeyArrowLeft))
	assert.Equal(t, 2, h.viewer.Position())
	assert.False(t, h.router.KeyPress(KeyUnknown))

	assert.True(t, h.router.KeyPress(KeyEscape))
	assert.False(t, h.viewer.IsOpen())
}

func TestFilterButtonsBindOnce(t *testing.T) {
	h := newHarness(t, false)
	all := &fakeButton{category: gallery.CategoryAll}
	nature := &fakeButton{category: "nature"}
	h.router.BindFilters(all, nature)
	h.router.BindFilters(all, nature)

	require.Len(t, nature.handlers, 1)
	assert.True(t, all.active)
	assert.False(t, nature.active)

	changes := 0
	h.state.OnFilterChange(func(string) { changes++ })
	nature.press()
	assert.Equal(t, "nature", h.state.Filter())
	assert.True(t, nature.active)
	assert.False(t, all.active)
	assert.Equal(t, 1, changes)
	assert.Equal(t, 2, h.state.VisibleCount())
}

func TestUnknownFilterCategory(t *testing.T) {
	lenient := newHarness(t, false)
	missing := &fakeButton{category: "nonexistent-tag"}
	lenient.router.BindFilters(missing)
	assert.True(t, lenient.router.SelectFilter(missing))
	assert.Zero(t, lenient.state.VisibleCount())
	assert.False(t, lenient.router.Click(lenient.node(t, 0)))
	assert.False(t, lenient.viewer.IsOpen())

	strict := newHarness(t, true)
	all := &fakeButton{category: gallery.CategoryAll}
	missing = &fakeButton{category: "nonexistent-tag"}
	strict.router.BindFilters(all, missing)
	assert.False(t, strict.router.SelectFilter(missing))
	assert.Equal(t, gallery.CategoryAll, strict.state.Filter())
	assert.True(t, all.active)
	assert.Contains(t, strict.logs[len(strict.logs)-1], "Ignoring filter 'nonexistent-tag'")
}

func TestSwipe(t *testing.T) {
	h := newHarness(t, false)
	h.router.TouchStart(300)
	assert.Equal(t, viewer.SwipeNone, h.router.TouchEnd(200), "ignored while closed")

	require.True(t, h.router.Click(h.node(t, 0)))
	h.router.TouchStart(300)
	assert.Equal(t, viewer.SwipeLeft, h.router.TouchEnd(240))
	assert.Equal(t, 1, h.viewer.Position())

	h.router.TouchStart(300)
	assert.Equal(t, viewer.SwipeNone, h.router.TouchEnd(270))
	assert.Equal(t, 1, h.viewer.Position())

	h.router.TouchStart(100)
	assert.Equal(t, viewer.SwipeRight, h.router.TouchEnd(200))
	assert.Equal(t, 0, h.viewer.Position())
}

func TestSlideshowAdvancesOpenLightbox(t *testing.T) {
	h := newHarness(t, false)
	h.router.ToggleSlideshow()
	assert.True(t, h.show.IsPaused(), "cannot start while closed")

	require.True(t, h.router.Click(h.node(t, 0)))
	h.router.AdvanceSlideshow()
	assert.Equal(t, 0, h.viewer.Position(), "paused by default")

	require.True(t, h.router.KeyPress(KeySpace))
	h.router.AdvanceSlideshow()
	assert.Equal(t, 1, h.viewer.Position())

	h.router.TouchStart(0)
	assert.True(t, h.show.IsPaused(), "held during a touch")
	h.router.TouchEnd(0)
	assert.False(t, h.show.IsPaused())

	h.router.Close()
	assert.True(t, h.show.IsPaused())
	h.router.AdvanceSlideshow()
	assert.False(t, h.viewer.IsOpen())
}
