package service

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePNG(t *testing.T, p string, w, h int) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, x%h, color.RGBA{R: 200, A: 255})
	}
	f, err := os.Create(p)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
}

func TestBaseFor(t *testing.T) {
	assert.Equal(t, "https://example.com/gallery/", BaseFor("https://example.com/gallery/photos.json"))

	dir := t.TempDir()
	assert.Equal(t, dir, BaseFor(filepath.Join(dir, "photos.json")))
}

func TestResolve(t *testing.T) {
	local := &ImageService{Base: "/srv/gallery"}
	p, err := local.Resolve("images/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/srv/gallery", "images", "a.jpg"), p)

	remote := &ImageService{Base: "https://example.com/gallery/"}
	u, err := remote.Resolve("images/a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/gallery/images/a.jpg", u)

	u, err = remote.Resolve("https://cdn.example.com/b.jpg")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/b.jpg", u)

	_, err = remote.Resolve("ftp://example.com/c.jpg")
	assert.ErrorIs(t, err, ErrUnsupportedScheme)
}

func TestLoadLocalImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "images", "wide.png"), 400, 100)

	is := NewImageService(filepath.Join(dir, "photos.json"), 50)
	info, img, err := is.Load(context.Background(), "images/wide.png")
	require.NoError(t, err)
	assert.Equal(t, "png", info.Format)
	assert.Equal(t, 400, info.Width)
	assert.Equal(t, 100, info.Height)
	assert.Positive(t, info.Size)
	assert.False(t, info.ModTime.IsZero())
	assert.Equal(t, 400, img.Bounds().Dx())

	_, _, err = is.Load(context.Background(), "images/missing.png")
	assert.Error(t, err)
}

func TestThumbnailIsBoundedAndCached(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "wide.png")
	writePNG(t, p, 400, 100)

	is := NewImageService(filepath.Join(dir, "photos.json"), 50)
	thumb, err := is.Fetch(context.Background(), "wide.png")
	require.NoError(t, err)
	assert.LessOrEqual(t, thumb.Bounds().Dx(), 50)
	assert.LessOrEqual(t, thumb.Bounds().Dy(), 50)

	require.NoError(t, os.Remove(p))
	again, err := is.Thumbnail(context.Background(), "wide.png")
	require.NoError(t, err)
	assert.Same(t, thumb, again)
}

func TestLoadRemoteImage(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, filepath.Join(dir, "images", "a.png"), 20, 10)
	srv := httptest.NewServer(http.FileServer(http.Dir(dir)))
	defer srv.Close()

	is := NewImageService(srv.URL+"/photos.json", 0)
	assert.Equal(t, uint(DefaultThumbnailSize), is.ThumbnailSize)

	info, _, err := is.Load(context.Background(), "images/a.png")
	require.NoError(t, err)
	assert.Equal(t, 20, info.Width)

	_, _, err = is.Load(context.Background(), "images/missing.png")
	assert.ErrorContains(t, err, "unexpected status")
}

func TestLoadRejectsUndecodableData(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.jpg"), []byte("garbage"), 0o644))
	is := NewImageService(filepath.Join(dir, "photos.json"), 0)
	_, err := is.Fetch(context.Background(), "broken.jpg")
	assert.ErrorContains(t, err, "failed to decode")
}
