package service

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"fygallery/internal/catalog"
	"fygallery/internal/scan"
)

// CatalogStore abstracts the catalog workspace DB for easier testing and decoupling.
type CatalogStore interface {
	Put(rec catalog.PhotoRecord) error
	Get(src string) (catalog.PhotoRecord, error)
	Delete(src string) error
	All() ([]catalog.PhotoRecord, error)
	AddCategory(src, category string) error
	RemoveCategory(src, category string) error
	GetImages(category string) ([]string, error)
	GetAllCategories() ([]catalog.CategoryWithCount, error)
	Close() error
}

// FileScanner abstracts file scanning.
type FileScanner interface {
	Run(dir string, logger scan.LoggerFunc) <-chan scan.FileItem
}

// Service is the catalog manager's business logic.
type Service struct {
	Store    CatalogStore
	FileScan FileScanner
	Logger   func(string)
}

// RecordFields holds the text fields SetFields may change. Nil fields are left alone.
type RecordFields struct {
	Title *string
	Alt   *string
	Alt2  *string
}

// NewService constructs a new Service.
func NewService(store CatalogStore, fileScan FileScanner, logger func(string)) *Service {
	if logger == nil {
		logger = func(string) {}
	}
	return &Service{
		Store:    store,
		FileScan: fileScan,
		Logger:   logger,
	}
}

// Import stores records in order, replacing records with the same src.
// It returns how many were stored and the first error.
func (s *Service) Import(records []catalog.PhotoRecord) (int, error) {
	imported := 0
	var firstErr error
	for _, rec := range records {
		if rec.Src == "" {
			s.Logger("Import: skipping record without src")
			if firstErr == nil {
				firstErr = catalog.ErrNoSource
			}
			continue
		}
		if err := s.Store.Put(rec); err != nil {
			s.Logger(fmt.Sprintf("Import: failed to store %s: %v", rec.Src, err))
			if firstErr == nil {
				firstErr = fmt.Errorf("storing %s: %w", rec.Src, err)
			}
			continue
		}
		imported++
	}
	return imported, firstErr
}

// Sync adds a default record for every image under imagesDir that has no
// record yet. The record's src is srcPrefix joined with the file's path
// relative to imagesDir.
func (s *Service) Sync(imagesDir, srcPrefix string) (int, error) {
	if imagesDir == "" {
		return 0, errors.New("images directory required")
	}
	root, err := filepath.Abs(imagesDir)
	if err != nil {
		return 0, fmt.Errorf("resolving %s: %w", imagesDir, err)
	}
	added := 0
	items := s.FileScan.Run(root, func(msg string) { s.Logger(fmt.Sprintf("Sync: %s", msg)) })
	// An early return must not leave the walker blocked on a send.
	defer func() {
		for range items {
		}
	}()
	for item := range items {
		rel, err := filepath.Rel(root, item.Path)
		if err != nil {
			s.Logger(fmt.Sprintf("Sync: skipping %s: %v", item.Path, err))
			continue
		}
		src := path.Join(srcPrefix, filepath.ToSlash(rel))
		if _, err := s.Store.Get(src); err == nil {
			continue
		} else if !errors.Is(err, catalog.ErrRecordNotFound) {
			return added, err
		}
		name := filepath.Base(item.Path)
		rec := catalog.PhotoRecord{
			Src:        src,
			Title:      name,
			Alt:        name,
			Categories: []string{catalog.DefaultCategory},
		}
		if err := s.Store.Put(rec); err != nil {
			return added, fmt.Errorf("adding %s: %w", src, err)
		}
		added++
	}
	s.Logger(fmt.Sprintf("Sync added %d records from %s", added, root))
	return added, nil
}

// SetFields updates the text fields of the record for src.
func (s *Service) SetFields(src string, fields RecordFields) error {
	if src == "" {
		return catalog.ErrNoSource
	}
	rec, err := s.Store.Get(src)
	if err != nil {
		return err
	}
	if fields.Title != nil {
		rec.Title = *fields.Title
	}
	if fields.Alt != nil {
		rec.Alt = *fields.Alt
	}
	if fields.Alt2 != nil {
		rec.Alt2 = *fields.Alt2
	}
	return s.Store.Put(rec)
}

// AddCategories adds one or more categories to a record.
func (s *Service) AddCategories(src string, categories []string) error {
	if src == "" || len(categories) == 0 {
		return errors.New("src and categories required")
	}
	for _, c := range categories {
		if err := s.Store.AddCategory(src, normalizeCategory(c)); err != nil {
			return err
		}
	}
	return nil
}

// RemoveCategories removes one or more categories from a record.
func (s *Service) RemoveCategories(src string, categories []string) error {
	if src == "" || len(categories) == 0 {
		return errors.New("src and categories required")
	}
	for _, c := range categories {
		if err := s.Store.RemoveCategory(src, normalizeCategory(c)); err != nil {
			return err
		}
	}
	return nil
}

// ListCategories returns all categories with their record counts.
func (s *Service) ListCategories() ([]catalog.CategoryWithCount, error) {
	return s.Store.GetAllCategories()
}

// ListImagesForCategory returns the srcs of all records in category.
func (s *Service) ListImagesForCategory(category string) ([]string, error) {
	return s.Store.GetImages(normalizeCategory(category))
}

// Export writes the workspace as a catalog file.
func (s *Service) Export(w io.Writer) (int, error) {
	records, err := s.Store.All()
	if err != nil {
		return 0, err
	}
	if records == nil {
		records = []catalog.PhotoRecord{}
	}
	if err := catalog.Encode(w, records); err != nil {
		return 0, fmt.Errorf("encoding catalog: %w", err)
	}
	return len(records), nil
}

// Clean deletes local records whose file no longer exists under root.
// Remote srcs are left alone.
func (s *Service) Clean(root string) (int, error) {
	records, err := s.Store.All()
	if err != nil {
		return 0, fmt.Errorf("failed to list records: %w", err)
	}
	cleaned := 0
	for _, rec := range records {
		if catalog.IsRemote(rec.Src) {
			continue
		}
		p := filepath.Join(root, filepath.FromSlash(rec.Src))
		if _, statErr := os.Stat(p); !os.IsNotExist(statErr) {
			continue
		}
		if err := s.Store.Delete(rec.Src); err != nil {
			s.Logger(fmt.Sprintf("Error removing record for missing file %s: %v", p, err))
			continue
		}
		cleaned++
	}
	return cleaned, nil
}

func normalizeCategory(c string) string {
	return strings.ToLower(strings.TrimSpace(c))
}
