package ui

import (
	"image"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/widget"
)

const (
	maxStageZoom    float32 = 8.0
	stageZoomStep   float32 = 0.1
	zoomedTolerance float32 = 1.01
)

// imageStage shows the lightbox image scaled to fit. The mouse wheel zooms;
// a drag pans while zoomed in and is reported as a swipe otherwise.
type imageStage struct {
	widget.BaseWidget

	img    image.Image
	raster *canvas.Raster

	fitZoom float32
	zoom    float32
	pan     fyne.Position

	dragging bool
	panning  bool
	lastX    float32

	// OnSwipeStart and OnSwipeEnd receive the horizontal drag positions.
	OnSwipeStart func(x float32)
	OnSwipeEnd   func(x float32)
}

func newImageStage() *imageStage {
	s := &imageStage{fitZoom: 1, zoom: 1}
	s.raster = canvas.NewRaster(s.draw)
	s.ExtendBaseWidget(s)
	return s
}

// SetImage replaces the image and fits it to the stage.
func (s *imageStage) SetImage(img image.Image) {
	s.img = img
	s.fit()
}

func (s *imageStage) fit() {
	s.pan = fyne.Position{}
	s.fitZoom, s.zoom = 1, 1
	size := s.Size()
	if s.img != nil && size.Width > 0 && size.Height > 0 {
		b := s.img.Bounds()
		w, h := float32(b.Dx()), float32(b.Dy())
		z := size.Width / w
		if zh := size.Height / h; zh < z {
			z = zh
		}
		s.fitZoom, s.zoom = z, z
		s.pan = fyne.NewPos((size.Width-w*z)/2, (size.Height-h*z)/2)
	}
	s.Refresh()
}

func (s *imageStage) zoomed() bool {
	return s.zoom > s.fitZoom*zoomedTolerance
}

func (s *imageStage) draw(w, h int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	if s.img == nil || w <= 0 || h <= 0 || s.Size().Width <= 0 {
		return dst
	}
	src := s.img.Bounds()
	// The raster is drawn in device pixels; pan and zoom are in logical ones.
	scale := float32(w) / s.Size().Width
	inv := 1 / (s.zoom * scale)
	for dy := 0; dy < h; dy++ {
		sy := (float32(dy) - s.pan.Y*scale) * inv
		if sy < 0 || int(sy) >= src.Dy() {
			continue
		}
		for dx := 0; dx < w; dx++ {
			sx := (float32(dx) - s.pan.X*scale) * inv
			if sx < 0 || int(sx) >= src.Dx() {
				continue
			}
			dst.Set(dx, dy, s.img.At(src.Min.X+int(sx), src.Min.Y+int(sy)))
		}
	}
	return dst
}

// Scrolled zooms around the centre of the stage, never below fit-to-view.
func (s *imageStage) Scrolled(ev *fyne.ScrollEvent) {
	if s.img == nil {
		return
	}
	size := s.Size()
	cx, cy := size.Width/2, size.Height/2
	ix := (cx - s.pan.X) / s.zoom
	iy := (cy - s.pan.Y) / s.zoom

	switch {
	case ev.Scrolled.DY > 0:
		s.zoom *= 1 + stageZoomStep
	case ev.Scrolled.DY < 0:
		s.zoom /= 1 + stageZoomStep
	}
	if s.zoom > s.fitZoom*maxStageZoom {
		s.zoom = s.fitZoom * maxStageZoom
	}
	if !s.zoomed() {
		s.fit()
		return
	}
	s.pan = fyne.NewPos(cx-ix*s.zoom, cy-iy*s.zoom)
	s.Refresh()
}

// Dragged pans a zoomed image or tracks a swipe.
func (s *imageStage) Dragged(ev *fyne.DragEvent) {
	if !s.dragging {
		s.dragging = true
		s.panning = s.zoomed()
		if !s.panning && s.OnSwipeStart != nil {
			s.OnSwipeStart(ev.Position.X - ev.Dragged.DX)
		}
	}
	s.lastX = ev.Position.X
	if s.panning {
		s.pan = s.pan.Add(ev.Dragged)
		s.Refresh()
	}
}

// DragEnd finishes a pan or swipe.
func (s *imageStage) DragEnd() {
	if s.dragging && !s.panning && s.OnSwipeEnd != nil {
		s.OnSwipeEnd(s.lastX)
	}
	s.dragging, s.panning = false, false
}

func (s *imageStage) CreateRenderer() fyne.WidgetRenderer {
	return &imageStageRenderer{stage: s}
}

type imageStageRenderer struct {
	stage *imageStage
	size  fyne.Size
}

func (r *imageStageRenderer) Layout(size fyne.Size) {
	r.stage.raster.Resize(size)
	if size != r.size {
		r.size = size
		r.stage.fit()
	}
}

func (r *imageStageRenderer) MinSize() fyne.Size           { return fyne.NewSize(200, 200) }
func (r *imageStageRenderer) Refresh()                     { canvas.Refresh(r.stage.raster) }
func (r *imageStageRenderer) Objects() []fyne.CanvasObject { return []fyne.CanvasObject{r.stage.raster} }
func (r *imageStageRenderer) Destroy()                     {}

var _ fyne.Scrollable = (*imageStage)(nil)
var _ fyne.Draggable = (*imageStage)(nil)
