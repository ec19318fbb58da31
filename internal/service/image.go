package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"fygallery/internal/catalog"

	"github.com/nfnt/resize"
	"github.com/rwcarlsen/goexif/exif"
	_ "golang.org/x/image/webp"
)

// DefaultThumbnailSize bounds both sides of a thumbnail.
const DefaultThumbnailSize = 200

// ErrUnsupportedScheme is returned for srcs that are neither files nor http(s) URLs.
var ErrUnsupportedScheme = errors.New("unsupported image scheme")

// ImageInfo holds metadata about an image.
type ImageInfo struct {
	Src      string
	Format   string
	Width    int
	Height   int
	Size     int64
	ModTime  time.Time
	EXIFData map[string]string
}

// ImageService resolves record srcs against the catalog location and loads,
// decodes and thumbnails the images behind them.
type ImageService struct {
	// Base is the directory or URL srcs are relative to.
	Base          string
	Client        *http.Client
	ThumbnailSize uint

	mu     sync.Mutex
	thumbs map[string]image.Image
}

// NewImageService creates an ImageService for a catalog at catalogLocation.
func NewImageService(catalogLocation string, thumbnailSize int) *ImageService {
	if thumbnailSize <= 0 {
		thumbnailSize = DefaultThumbnailSize
	}
	return &ImageService{
		Base:          BaseFor(catalogLocation),
		Client:        http.DefaultClient,
		ThumbnailSize: uint(thumbnailSize),
		thumbs:        make(map[string]image.Image),
	}
}

// BaseFor returns the directory or URL that holds the catalog file.
func BaseFor(catalogLocation string) string {
	if catalog.IsRemote(catalogLocation) {
		u, err := url.Parse(catalogLocation)
		if err != nil {
			return catalogLocation
		}
		return u.ResolveReference(&url.URL{Path: "./"}).String()
	}
	dir := filepath.Dir(catalogLocation)
	if abs, err := filepath.Abs(dir); err == nil {
		return abs
	}
	return dir
}

// Resolve turns src into an absolute file path or URL.
func (is *ImageService) Resolve(src string) (string, error) {
	if src == "" {
		return "", catalog.ErrNoSource
	}
	if catalog.IsRemote(src) {
		return src, nil
	}
	if u, err := url.Parse(src); err == nil && u.Scheme != "" && len(u.Scheme) > 1 {
		if u.Scheme == "file" {
			return u.Path, nil
		}
		return "", fmt.Errorf("%w: %s", ErrUnsupportedScheme, u.Scheme)
	}
	if catalog.IsRemote(is.Base) {
		base, err := url.Parse(is.Base)
		if err != nil {
			return "", fmt.Errorf("invalid base %s: %w", is.Base, err)
		}
		ref, err := url.Parse(src)
		if err != nil {
			return "", fmt.Errorf("invalid src %s: %w", src, err)
		}
		return base.ResolveReference(ref).String(), nil
	}
	if filepath.IsAbs(src) {
		return src, nil
	}
	return filepath.Join(is.Base, filepath.FromSlash(src)), nil
}

// Open returns a reader for the image behind src along with its size and
// modification time, when known.
func (is *ImageService) Open(ctx context.Context, src string) (io.ReadCloser, *ImageInfo, error) {
	loc, err := is.Resolve(src)
	if err != nil {
		return nil, nil, err
	}
	info := &ImageInfo{Src: src, Size: -1}
	if catalog.IsRemote(loc) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, loc, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("building request for %s: %w", loc, err)
		}
		client := is.Client
		if client == nil {
			client = http.DefaultClient
		}
		resp, err := client.Do(req)
		if err != nil {
			return nil, nil, fmt.Errorf("fetching %s: %w", loc, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, nil, fmt.Errorf("fetching %s: unexpected status %s", loc, resp.Status)
		}
		info.Size = resp.ContentLength
		if lm, err := http.ParseTime(resp.Header.Get("Last-Modified")); err == nil {
			info.ModTime = lm
		}
		return resp.Body, info, nil
	}

	f, err := os.Open(loc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open image: %w", err)
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, nil, fmt.Errorf("failed to stat image file: %w", err)
	}
	info.Size = fi.Size()
	info.ModTime = fi.ModTime()
	return f, info, nil
}

// GetEXIF extracts a few common EXIF fields from an image.
func (is *ImageService) GetEXIF(r io.Reader) (map[string]string, error) {
	x, err := exif.Decode(r)
	if err != nil {
		return nil, nil // Not all images have EXIF; not an error for non-JPEGs
	}
	result := make(map[string]string)
	for _, field := range []string{
		"DateTime", "Model", "Make", "ExposureTime", "FNumber", "ISOSpeedRatings", "FocalLength",
	} {
		tag, err := x.Get(exif.FieldName(field))
		if err == nil && tag != nil {
			result[field] = strings.Trim(tag.String(), `"`)
		}
	}
	return result, nil
}

// Load fetches and decodes the full image behind src.
func (is *ImageService) Load(ctx context.Context, src string) (*ImageInfo, image.Image, error) {
	rc, info, err := is.Open(ctx, src)
	if err != nil {
		return nil, nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image %s: %w", src, err)
	}
	if info.Size < 0 {
		info.Size = int64(len(data))
	}
	info.EXIFData, _ = is.GetEXIF(bytes.NewReader(data))

	img, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode image %s: %w", src, err)
	}
	bounds := img.Bounds()
	info.Format = format
	info.Width = bounds.Dx()
	info.Height = bounds.Dy()
	return info, img, nil
}

// Thumbnail returns src scaled to fit ThumbnailSize, caching the result.
func (is *ImageService) Thumbnail(ctx context.Context, src string) (image.Image, error) {
	is.mu.Lock()
	if img, ok := is.thumbs[src]; ok {
		is.mu.Unlock()
		return img, nil
	}
	is.mu.Unlock()

	_, img, err := is.Load(ctx, src)
	if err != nil {
		return nil, err
	}
	thumb := resize.Thumbnail(is.ThumbnailSize, is.ThumbnailSize, img, resize.Lanczos3)

	is.mu.Lock()
	if is.thumbs == nil {
		is.thumbs = make(map[string]image.Image)
	}
	is.thumbs[src] = thumb
	is.mu.Unlock()
	return thumb, nil
}

// Fetch loads the grid image for src.
func (is *ImageService) Fetch(ctx context.Context, src string) (image.Image, error) {
	return is.Thumbnail(ctx, src)
}
