package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

const (
	galleryPadding  float32 = 2
	captionTextSize float32 = 12
)

// lightboxScrim dims the gallery behind the open lightbox.
var lightboxScrim = color.NRGBA{R: 0, G: 0, B: 0, A: 0xe6}

// galleryTheme wraps the current theme with tighter padding so more
// thumbnails fit in a row.
type galleryTheme struct {
	fyne.Theme
}

var _ fyne.Theme = (*galleryTheme)(nil)

func (t *galleryTheme) Size(name fyne.ThemeSizeName) float32 {
	switch name {
	case theme.SizeNamePadding:
		return galleryPadding
	case theme.SizeNameCaptionText:
		return captionTextSize
	}
	return t.Theme.Size(name)
}

func (t *galleryTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return t.Theme.Color(name, variant)
}

func (t *galleryTheme) Font(style fyne.TextStyle) fyne.Resource {
	return t.Theme.Font(style)
}

func (t *galleryTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return t.Theme.Icon(name)
}

// NewGalleryTheme wraps baseTheme.
func NewGalleryTheme(baseTheme fyne.Theme) fyne.Theme {
	return &galleryTheme{Theme: baseTheme}
}
