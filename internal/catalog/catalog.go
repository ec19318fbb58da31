// Package catalog holds the photo metadata records shown by the gallery.
// A catalog is a JSON array of records, loaded once at startup from a local
// file or an http(s) URL.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"sort"
	"strconv"
	"strings"
)

// DefaultCategory is assigned to images added by the manager tool.
const DefaultCategory = "portrait"

// DefaultCategories are the category tags offered by the manager tool.
var DefaultCategories = []string{"portrait", "landscape", "street", "nature", "architecture", "macro", "other"}

var (
	// ErrNoSource is returned when a catalog location or record src is empty.
	ErrNoSource = errors.New("no source given")
	// ErrRecordNotFound is returned when a src is not in the catalog.
	ErrRecordNotFound = errors.New("record not found")
)

// LoggerFunc defines a function signature for logging messages.
type LoggerFunc func(message string)

// PhotoRecord is one entry of the catalog.
type PhotoRecord struct {
	Src        string
	Alt        string
	Title      string
	Alt2       string
	Categories []string
}

// wireRecord is the on-disk shape. category may be a string or a list.
type wireRecord struct {
	Src      string          `json:"src"`
	Title    string          `json:"title,omitempty"`
	Category json.RawMessage `json:"category"`
	Alt      string          `json:"alt"`
	Alt2     string          `json:"alt2,omitempty"`
}

// DisplayTitle returns the title, falling back to the alt text.
func (r PhotoRecord) DisplayTitle() string {
	if r.Title != "" {
		return r.Title
	}
	return r.Alt
}

// HasCategory reports whether the record is tagged with category.
func (r PhotoRecord) HasCategory(category string) bool {
	for _, c := range r.Categories {
		if c == category {
			return true
		}
	}
	return false
}

// UnmarshalJSON accepts category as either a string or an array of strings.
// Any other shape is kept in string form.
func (r *PhotoRecord) UnmarshalJSON(data []byte) error {
	var w wireRecord
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	cats, _ := decodeCategories(w.Category)
	*r = w.record(cats)
	return nil
}

func (w wireRecord) record(cats []string) PhotoRecord {
	return PhotoRecord{
		Src:        w.Src,
		Alt:        w.Alt,
		Title:      w.Title,
		Alt2:       w.Alt2,
		Categories: cats,
	}
}

// MarshalJSON writes a single category as a string and several as an array.
func (r PhotoRecord) MarshalJSON() ([]byte, error) {
	var cat any
	switch len(r.Categories) {
	case 0:
		cat = ""
	case 1:
		cat = r.Categories[0]
	default:
		cat = r.Categories
	}
	raw, err := json.Marshal(cat)
	if err != nil {
		return nil, err
	}
	return json.Marshal(wireRecord{
		Src:      r.Src,
		Title:    r.Title,
		Category: raw,
		Alt:      r.Alt,
		Alt2:     r.Alt2,
	})
}

// decodeCategories reads a category field. ok is false when the value was
// neither a string nor a list of strings; numbers and booleans are then
// converted to text and anything else is dropped.
func decodeCategories(raw json.RawMessage) (cats []string, ok bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return []string{}, true
	}
	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return []string{}, true
		}
		return []string{single}, true
	}
	var list []string
	if err := json.Unmarshal(raw, &list); err == nil {
		return list, true
	}

	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return []string{}, false
	}
	cats = []string{}
	if elems, isList := v.([]any); isList {
		for _, e := range elems {
			if c, ok := scalarText(e); ok {
				cats = append(cats, c)
			}
		}
	} else if c, ok := scalarText(v); ok && c != "" {
		cats = append(cats, c)
	}
	return cats, false
}

func scalarText(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64), true
	case bool:
		return strconv.FormatBool(x), true
	}
	return "", false
}

// Decode reads a catalog from r. Missing fields are not validated. A record
// with an odd category value is kept and logged; an entry that is not an
// object at all is skipped and logged.
func Decode(r io.Reader, logger LoggerFunc) ([]PhotoRecord, error) {
	var entries []json.RawMessage
	if err := json.NewDecoder(r).Decode(&entries); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	records := make([]PhotoRecord, 0, len(entries))
	for i, raw := range entries {
		var w wireRecord
		if err := json.Unmarshal(raw, &w); err != nil {
			logMessage(logger, "Skipping catalog entry %d: %v", i, err)
			continue
		}
		cats, ok := decodeCategories(w.Category)
		if !ok {
			logMessage(logger, "Record %q has an unexpected category %s, using %v", w.Src, w.Category, cats)
		}
		records = append(records, w.record(cats))
	}
	return records, nil
}

// Encode writes records as indented JSON without escaping non-ASCII text.
func Encode(w io.Writer, records []PhotoRecord) error {
	if records == nil {
		records = []PhotoRecord{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(records)
}

// IsRemote reports whether location is an http(s) URL.
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Load fetches and decodes the catalog at location, a file path or URL.
func Load(ctx context.Context, location string, logger LoggerFunc) ([]PhotoRecord, error) {
	if location == "" {
		return nil, ErrNoSource
	}
	logMessage(logger, "Loading catalog from %s", location)

	var body io.ReadCloser
	if IsRemote(location) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, location, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to build catalog request: %w", err)
		}
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch catalog %s: %w", location, err)
		}
		if resp.StatusCode != http.StatusOK {
			resp.Body.Close()
			return nil, fmt.Errorf("failed to fetch catalog %s: status %s", location, resp.Status)
		}
		body = resp.Body
	} else {
		f, err := os.Open(location)
		if err != nil {
			return nil, fmt.Errorf("failed to open catalog %s: %w", location, err)
		}
		body = f
	}
	defer body.Close()

	records, err := Decode(body, logger)
	if err != nil {
		return nil, err
	}
	logMessage(logger, "Loaded %d records from %s", len(records), location)
	return records, nil
}

// Categories returns the sorted set of category tags used by records.
func Categories(records []PhotoRecord) []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range records {
		for _, c := range r.Categories {
			if c != "" && !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	sort.Strings(out)
	return out
}

func logMessage(logger LoggerFunc, format string, args ...interface{}) {
	if logger != nil {
		logger(fmt.Sprintf(format, args...))
	} else {
		log.Printf(format, args...)
	}
}
