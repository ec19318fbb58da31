package service

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"fygallery/internal/catalog"
	"fygallery/internal/scan"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestService(t *testing.T) *Service {
	t.Helper()
	store, err := catalog.OpenStore(filepath.Join(t.TempDir(), "service_test.db"), func(msg string) { t.Log(msg) })
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return NewService(store, scan.FileScannerImpl{}, func(msg string) { t.Log(msg) })
}

func writeFile(t *testing.T, p string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte("not really an image"), 0o644))
}

func TestImportAndExport(t *testing.T) {
	s := newTestService(t)
	n, err := s.Import([]catalog.PhotoRecord{
		{Src: "images/a.jpg", Alt: "A", Categories: []string{"nature"}},
		{Src: "images/b.jpg", Alt: "B", Title: "Bee", Categories: []string{"nature", "macro"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	var buf bytes.Buffer
	count, err := s.Export(&buf)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	records, err := catalog.Decode(&buf, nil)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "images/a.jpg", records[0].Src)
	assert.Equal(t, []string{"nature", "macro"}, records[1].Categories)
}

func TestImportSkipsRecordsWithoutSrc(t *testing.T) {
	s := newTestService(t)
	n, err := s.Import([]catalog.PhotoRecord{{Alt: "nothing"}, {Src: "ok.jpg"}})
	assert.ErrorIs(t, err, catalog.ErrNoSource)
	assert.Equal(t, 1, n)
}

func TestExportEmptyWorkspace(t *testing.T) {
	s := newTestService(t)
	var buf bytes.Buffer
	n, err := s.Export(&buf)
	require.NoError(t, err)
	assert.Zero(t, n)
	assert.Equal(t, "[]\n", buf.String())
}

func TestSyncAddsDefaultRecords(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "images", "a.jpg"))
	writeFile(t, filepath.Join(root, "images", "trips", "b.png"))
	writeFile(t, filepath.Join(root, "images", "notes.txt"))

	s := newTestService(t)
	added, err := s.Sync(filepath.Join(root, "images"), "images")
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	rec, err := s.Store.Get("images/trips/b.png")
	require.NoError(t, err)
	assert.Equal(t, "b.png", rec.Title)
	assert.Equal(t, "b.png", rec.Alt)
	assert.Equal(t, []string{catalog.DefaultCategory}, rec.Categories)

	added, err = s.Sync(filepath.Join(root, "images"), "images")
	require.NoError(t, err)
	assert.Zero(t, added, "existing records are kept")
}

type failingStore struct {
	CatalogStore
}

func (failingStore) Get(string) (catalog.PhotoRecord, error) {
	return catalog.PhotoRecord{}, errors.New("database closed")
}

type countingScanner struct {
	done chan struct{}
}

func (c countingScanner) Run(dir string, _ scan.LoggerFunc) <-chan scan.FileItem {
	out := make(chan scan.FileItem)
	go func() {
		defer close(c.done)
		defer close(out)
		for _, name := range []string{"a.jpg", "b.jpg", "c.jpg"} {
			out <- scan.NewFileItem(filepath.Join(dir, name), nil)
		}
	}()
	return out
}

func TestSyncStoreErrorReleasesScanner(t *testing.T) {
	scanner := countingScanner{done: make(chan struct{})}
	s := NewService(failingStore{}, scanner, nil)

	added, err := s.Sync(t.TempDir(), "images")
	assert.ErrorContains(t, err, "database closed")
	assert.Zero(t, added)

	select {
	case <-scanner.done:
	case <-time.After(5 * time.Second):
		t.Fatal("scanner goroutine still blocked after Sync returned")
	}
}

func TestSetFieldsAndCategories(t *testing.T) {
	s := newTestService(t)
	_, err := s.Import([]catalog.PhotoRecord{{Src: "a.jpg", Alt: "A", Categories: []string{"portrait"}}})
	require.NoError(t, err)

	title := "Harbour at dusk"
	require.NoError(t, s.SetFields("a.jpg", RecordFields{Title: &title}))
	require.NoError(t, s.AddCategories("a.jpg", []string{" Street ", "nature"}))
	require.NoError(t, s.RemoveCategories("a.jpg", []string{"portrait"}))

	rec, err := s.Store.Get("a.jpg")
	require.NoError(t, err)
	assert.Equal(t, "Harbour at dusk", rec.Title)
	assert.Equal(t, "A", rec.Alt, "untouched")
	assert.Equal(t, []string{"street", "nature"}, rec.Categories)

	images, err := s.ListImagesForCategory("STREET")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.jpg"}, images)

	cats, err := s.ListCategories()
	require.NoError(t, err)
	assert.Equal(t, []catalog.CategoryWithCount{{Name: "nature", Count: 1}, {Name: "street", Count: 1}}, cats)

	assert.ErrorIs(t, s.SetFields("missing.jpg", RecordFields{Title: &title}), catalog.ErrRecordNotFound)
	assert.Error(t, s.AddCategories("a.jpg", nil))
}

func TestCleanRemovesMissingLocalFiles(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "images", "kept.jpg"))

	s := newTestService(t)
	_, err := s.Import([]catalog.PhotoRecord{
		{Src: "images/kept.jpg"},
		{Src: "images/gone.jpg", Categories: []string{"nature"}},
		{Src: "https://cdn.example.com/remote.jpg"},
	})
	require.NoError(t, err)

	cleaned, err := s.Clean(root)
	require.NoError(t, err)
	assert.Equal(t, 1, cleaned)

	all, err := s.Store.All()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "images/kept.jpg", all[0].Src)
	assert.Equal(t, "https://cdn.example.com/remote.jpg", all[1].Src)

	cats, err := s.ListCategories()
	require.NoError(t, err)
	assert.Empty(t, cats)
}
