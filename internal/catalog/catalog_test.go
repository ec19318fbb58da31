package catalog

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCatalog = `[
    {"src": "images/a.jpg", "alt": "Forest", "title": "Morning", "category": "nature"},
    {"src": "images/b.jpg", "alt": "Bridge", "category": ["city"], "alt2": "Seoul"},
    {"src": "images/c.jpg", "alt": "Park", "category": ["nature", "city"]}
]`

func TestDecodeCategoryShapes(t *testing.T) {
	records, err := Decode(strings.NewReader(sampleCatalog), nil)
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, []string{"nature"}, records[0].Categories)
	assert.Equal(t, []string{"city"}, records[1].Categories)
	assert.Equal(t, []string{"nature", "city"}, records[2].Categories)
	assert.Equal(t, "Seoul", records[1].Alt2)
}

func TestDisplayTitleFallsBackToAlt(t *testing.T) {
	records, err := Decode(strings.NewReader(sampleCatalog), nil)
	require.NoError(t, err)

	assert.Equal(t, "Morning", records[0].DisplayTitle())
	assert.Equal(t, "Bridge", records[1].DisplayTitle())
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	_, err := Decode(strings.NewReader(`{"src": "not a list"`), nil)
	assert.Error(t, err)
}

func TestDecodeKeepsRecordsWithOddCategories(t *testing.T) {
	var logs []string
	records, err := Decode(strings.NewReader(`[
		{"src": "a.jpg", "alt": "A", "category": "nature"},
		{"src": "b.jpg", "alt": "B", "category": 5},
		{"src": "c.jpg", "alt": "C", "category": ["city", 7, null, true]},
		{"src": "d.jpg", "alt": "D", "category": {"name": "x"}},
		"not a record"
	]`), func(msg string) { logs = append(logs, msg) })
	require.NoError(t, err)
	require.Len(t, records, 4)

	assert.Equal(t, []string{"nature"}, records[0].Categories)
	assert.Equal(t, []string{"5"}, records[1].Categories)
	assert.Equal(t, []string{"city", "7", "true"}, records[2].Categories)
	assert.Empty(t, records[3].Categories)
	assert.Equal(t, "D", records[3].Alt)

	require.Len(t, logs, 4)
	assert.Contains(t, logs[0], `"b.jpg"`)
	assert.Contains(t, logs[3], "Skipping catalog entry 4")
}

func TestEncodeWritesSingleCategoryAsString(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, []PhotoRecord{
		{Src: "images/a.jpg", Alt: "숲", Categories: []string{"nature"}},
		{Src: "images/b.jpg", Alt: "Bridge", Categories: []string{"nature", "city"}},
	})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `"category": "nature"`)
	assert.Contains(t, out, `"숲"`, "non-ASCII text must not be escaped")

	back, err := Decode(&buf, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"nature", "city"}, back[1].Categories)
}

func TestCategories(t *testing.T) {
	records, err := Decode(strings.NewReader(sampleCatalog), nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"city", "nature"}, Categories(records))
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "photos.json")
	require.NoError(t, os.WriteFile(path, []byte(sampleCatalog), 0644))

	var logs []string
	records, err := Load(context.Background(), path, func(msg string) { logs = append(logs, msg) })
	require.NoError(t, err)
	assert.Len(t, records, 3)
	assert.NotEmpty(t, logs)
}

func TestLoadFromURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/photos.json" {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(sampleCatalog))
	}))
	defer srv.Close()

	records, err := Load(context.Background(), srv.URL+"/photos.json", nil)
	require.NoError(t, err)
	assert.Len(t, records, 3)

	_, err = Load(context.Background(), srv.URL+"/missing.json", nil)
	assert.Error(t, err)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(context.Background(), "", nil)
	assert.ErrorIs(t, err, ErrNoSource)

	_, err = Load(context.Background(), filepath.Join(t.TempDir(), "nope.json"), nil)
	assert.Error(t, err)
}
