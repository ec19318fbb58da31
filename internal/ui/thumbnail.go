package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"fygallery/internal/gallery"
	"fygallery/internal/router"
)

// thumbItem is one grid cell: the item's image, or an icon standing in for
// it, above a one-line caption. A tap anywhere on it opens the item.
type thumbItem struct {
	widget.BaseWidget

	item    *gallery.Item
	view    *galleryView
	image   *canvas.Image
	caption *widget.Label
}

var (
	_ router.ItemNode    = (*thumbItem)(nil)
	_ fyne.Tappable      = (*thumbItem)(nil)
	_ desktop.Cursorable = (*thumbItem)(nil)
)

func newThumbItem(item *gallery.Item, view *galleryView) *thumbItem {
	t := &thumbItem{item: item, view: view}
	t.image = canvas.NewImageFromResource(theme.FileImageIcon())
	t.image.FillMode = canvas.ImageFillContain
	t.image.ScaleMode = canvas.ImageScaleFastest

	t.caption = widget.NewLabel(item.Record.DisplayTitle())
	t.caption.Alignment = fyne.TextAlignCenter
	t.caption.Truncation = fyne.TextTruncateEllipsis

	t.ExtendBaseWidget(t)
	t.Update()
	return t
}

// Update redraws the cell for the item's current LoadState.
func (t *thumbItem) Update() {
	switch t.item.LoadState() {
	case gallery.Loaded:
		t.image.Resource = nil
		t.image.Image = t.item.Image()
	case gallery.Loading:
		t.image.Image = nil
		t.image.Resource = theme.DownloadIcon()
	case gallery.Failed:
		t.image.Image = nil
		t.image.Resource = theme.BrokenImageIcon()
	default:
		t.image.Image = nil
		t.image.Resource = theme.FileImageIcon()
	}
	t.image.Refresh()
}

func (t *thumbItem) GalleryItem() *gallery.Item { return t.item }
func (t *thumbItem) ParentNode() router.Node    { return t.view }

func (t *thumbItem) Tapped(_ *fyne.PointEvent) {
	if t.view.router != nil {
		t.view.router.Click(t)
	}
}

func (t *thumbItem) Cursor() desktop.Cursor { return desktop.PointerCursor }

func (t *thumbItem) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(nil, t.caption, nil, nil, t.image))
}
