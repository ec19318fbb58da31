package ui

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"fygallery/internal/catalog"
	"fygallery/internal/gallery"
	"fygallery/internal/router"
	"fygallery/internal/service"
	"fygallery/internal/slideshow"
	"fygallery/internal/viewer"
)

// controlButton is a lightbox button the router recognises as a viewer
// control when it walks a click's ancestry.
type controlButton struct {
	widget.Button
	control router.Control
	parent  router.Node
}

var _ router.ControlNode = (*controlButton)(nil)

func newControlButton(icon fyne.Resource, control router.Control, parent router.Node, onTap func(router.Node)) *controlButton {
	b := &controlButton{control: control, parent: parent}
	b.Icon = icon
	b.Importance = widget.LowImportance
	b.ExtendBaseWidget(b)
	b.OnTapped = func() { onTap(b) }
	return b
}

func (b *controlButton) ViewerControl() router.Control { return b.control }
func (b *controlButton) ParentNode() router.Node       { return b.parent }

// lightbox draws the open viewer as a canvas overlay on the main window.
type lightbox struct {
	win       fyne.Window
	images    *service.ImageService
	slideshow *slideshow.SlideshowManager
	router    *router.Router
	ctx       context.Context
	timeout   time.Duration
	logger    func(string)

	// onChange runs after the lightbox shows a new entry or closes.
	onChange func()

	overlay *fyne.Container
	stage   *imageStage
	title   *widget.Label
	alt     *widget.Label
	alt2    *widget.Label
	counter *widget.Label
	info    *widget.RichText
	playBtn *widget.Button

	shown      bool
	current    *gallery.Item
	fullLoaded bool
	gen        int
}

var (
	_ viewer.Presenter = (*lightbox)(nil)
	_ router.Node      = (*lightbox)(nil)
)

func newLightbox(ctx context.Context, win fyne.Window, images *service.ImageService, show *slideshow.SlideshowManager, timeout time.Duration, logger func(string)) *lightbox {
	lb := &lightbox{
		win:       win,
		images:    images,
		slideshow: show,
		ctx:       ctx,
		timeout:   timeout,
		logger:    logger,
	}

	lb.stage = newImageStage()
	lb.stage.OnSwipeStart = func(x float32) {
		if lb.router != nil {
			lb.router.TouchStart(x)
		}
	}
	lb.stage.OnSwipeEnd = func(x float32) {
		if lb.router != nil {
			lb.router.TouchEnd(x)
		}
	}

	lb.title = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Bold: true})
	lb.title.Truncation = fyne.TextTruncateEllipsis
	lb.alt = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{})
	lb.alt.Wrapping = fyne.TextWrapWord
	lb.alt2 = widget.NewLabelWithStyle("", fyne.TextAlignCenter, fyne.TextStyle{Italic: true})
	lb.alt2.Wrapping = fyne.TextWrapWord
	lb.counter = widget.NewLabel("")
	lb.info = widget.NewRichTextFromMarkdown("")
	lb.info.Wrapping = fyne.TextWrapWord

	click := func(n router.Node) {
		if lb.router != nil {
			lb.router.Click(n)
		}
	}
	prev := newControlButton(theme.NavigateBackIcon(), router.ControlPrevious, lb, click)
	next := newControlButton(theme.NavigateNextIcon(), router.ControlNext, lb, click)
	closeBtn := newControlButton(theme.CancelIcon(), router.ControlClose, lb, click)
	lb.playBtn = widget.NewButtonWithIcon("", theme.MediaPlayIcon(), func() {
		if lb.router != nil {
			lb.router.ToggleSlideshow()
		}
		lb.updatePlayButton()
	})
	lb.playBtn.Importance = widget.LowImportance

	details := widget.NewAccordion(widget.NewAccordionItem("Details", container.NewVScroll(lb.info)))

	top := container.NewBorder(nil, nil, lb.counter, container.NewHBox(lb.playBtn, closeBtn), lb.title)
	bottom := container.NewVBox(lb.alt, lb.alt2, details)
	body := container.NewBorder(top, bottom, container.NewCenter(prev), container.NewCenter(next), lb.stage)
	lb.overlay = container.NewStack(canvas.NewRectangle(lightboxScrim), body)
	return lb
}

func (lb *lightbox) ParentNode() router.Node { return nil }

// IsShown reports whether the overlay is on screen.
func (lb *lightbox) IsShown() bool { return lb.shown }

// Show puts item on the stage. The thumbnail is shown at once when there is
// one; the full image replaces it when its load finishes.
func (lb *lightbox) Show(item *gallery.Item, position, total int) {
	if !lb.shown {
		lb.win.Canvas().Overlays().Add(lb.overlay)
		lb.shown = true
	}
	lb.overlay.Resize(lb.win.Canvas().Size())

	rec := item.Record
	lb.title.SetText(rec.DisplayTitle())
	lb.alt.SetText(rec.Alt)
	lb.alt2.SetText(rec.Alt2)
	if rec.Alt2 == "" {
		lb.alt2.Hide()
	} else {
		lb.alt2.Show()
	}
	lb.counter.SetText(fmt.Sprintf("%d / %d", position+1, total))
	lb.updatePlayButton()
	lb.changed()

	if item == lb.current {
		if !lb.fullLoaded && item.Image() != nil {
			lb.stage.SetImage(item.Image())
		}
		return
	}
	lb.current = item
	lb.fullLoaded = false
	lb.stage.SetImage(item.Image())
	lb.info.ParseMarkdown("## Info\n---\nLoading...")
	lb.loadFull(item)
}

// Hide removes the overlay and drops any load still in flight.
func (lb *lightbox) Hide() {
	lb.gen++
	if lb.shown {
		lb.win.Canvas().Overlays().Remove(lb.overlay)
		lb.shown = false
	}
	lb.current = nil
	lb.fullLoaded = false
	lb.stage.SetImage(nil)
	lb.updatePlayButton()
	lb.changed()
}

func (lb *lightbox) changed() {
	if lb.onChange != nil {
		lb.onChange()
	}
}

func (lb *lightbox) loadFull(item *gallery.Item) {
	lb.gen++
	gen := lb.gen
	src := item.Record.Src
	go func() {
		ctx, cancel := context.WithTimeout(lb.ctx, lb.timeout)
		defer cancel()
		info, img, err := lb.images.Load(ctx, src)
		fyne.Do(func() {
			if gen != lb.gen {
				return
			}
			if err != nil {
				lb.logger(fmt.Sprintf("Could not load %s: %v", src, err))
				lb.info.ParseMarkdown("## Info\n---\nImage could not be loaded.")
				return
			}
			lb.fullLoaded = true
			lb.stage.SetImage(img)
			lb.info.ParseMarkdown(infoMarkdown(item.Record, info))
		})
	}()
}

func (lb *lightbox) updatePlayButton() {
	if lb.slideshow == nil || lb.slideshow.IsPaused() {
		lb.playBtn.SetIcon(theme.MediaPlayIcon())
	} else {
		lb.playBtn.SetIcon(theme.MediaPauseIcon())
	}
}

// infoMarkdown renders the details panel for a loaded image.
func infoMarkdown(rec catalog.PhotoRecord, info *service.ImageInfo) string {
	categories := "(none)"
	if len(rec.Categories) > 0 {
		categories = strings.Join(rec.Categories, ", ")
	}
	modified := "(unknown)"
	if !info.ModTime.IsZero() {
		modified = info.ModTime.Format("2006-01-02 15:04:05")
	}

	exifString := "(not available)"
	if len(info.EXIFData) > 0 {
		keys := make([]string, 0, len(info.EXIFData))
		for k := range info.EXIFData {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		var sb strings.Builder
		for _, k := range keys {
			fmt.Fprintf(&sb, "- **%s**: %s\n\n", k, info.EXIFData[k])
		}
		exifString = sb.String()
	}

	return fmt.Sprintf(`## Stats
**Source:** %s

**Format:** %s

**Size:** %s bytes

**Width:** %d px

**Height:** %d px

**Last modified:** %s

---
## Categories
%s

---
## EXIF Data
%s
`,
		rec.Src,
		ternaryString(info.Format == "", "(unknown)", info.Format),
		formatNumberWithCommas(info.Size),
		info.Width,
		info.Height,
		modified,
		categories,
		exifString,
	)
}
