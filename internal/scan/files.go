// Package scan finds image files under a directory tree.
package scan

import (
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// FileItem is an image file found by a scan.
type FileItem struct {
	Path string
	Info os.FileInfo
}

// FileItems is a slice of FileItem
type FileItems []FileItem

// NewFileItem creates a new FileItem
func NewFileItem(p string, info os.FileInfo) FileItem {
	return FileItem{
		Path: p,
		Info: info,
	}
}

// FileScannerImpl is the filesystem-backed scanner used by the service layer.
type FileScannerImpl struct{}

// Run satisfies the service scanner interface.
func (FileScannerImpl) Run(dir string, logger LoggerFunc) <-chan FileItem {
	return Run(dir, logger)
}

// Run walks dir recursively in the background and sends every non-empty image
// file with an absolute path. The channel is closed when the walk ends.
func Run(dir string, logger LoggerFunc) <-chan FileItem {
	out := make(chan FileItem)
	go func() {
		defer close(out)
		root, err := filepath.Abs(dir)
		if err != nil {
			logf(logger, "Cannot resolve %s: %v", dir, err)
			return
		}
		count := 0
		err = filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
			if err != nil {
				logf(logger, "Skipping %s: %v", p, err)
				if d != nil && d.IsDir() && p != root {
					return filepath.SkipDir
				}
				return nil
			}
			if d.IsDir() || !isImage(p) {
				return nil
			}
			info, err := d.Info()
			if err != nil {
				logf(logger, "Cannot stat %s: %v", p, err)
				return nil
			}
			if !info.Mode().IsRegular() || info.Size() == 0 {
				return nil
			}
			out <- NewFileItem(p, info)
			count++
			return nil
		})
		if err != nil {
			logf(logger, "Scan of %s stopped: %v", root, err)
		}
		logf(logger, "Found %d images in %s", count, root)
	}()
	return out
}

// IsImage reports whether n has a gallery image extension.
func IsImage(n string) bool {
	return isImage(n)
}

func isImage(n string) bool {
	switch strings.ToLower(filepath.Ext(n)) {
	case ".png", ".jpg", ".jpeg", ".gif", ".webp":
		return true
	default:
		return false
	}
}

func logf(logger LoggerFunc, format string, args ...interface{}) {
	if logger != nil {
		logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}
