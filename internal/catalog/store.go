package catalog

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"

	bolt "go.etcd.io/bbolt"
)

const (
	dbFileName               = "fygallery_catalog.db"
	RecordsBucket            = "Records"            // Sequence id to JSON record, keeps catalog order.
	SrcIndexBucket           = "SrcIndex"           // Image src to sequence id.
	CategoriesToImagesBucket = "CategoriesToImages" // Category to JSON list of srcs.
)

// Store is the manager tool's working copy of a catalog.
type Store struct {
	db     *bolt.DB
	logger LoggerFunc
}

// CategoryWithCount holds a category tag and the number of records using it.
type CategoryWithCount struct {
	Name  string
	Count int
}

// OpenStore creates or opens the catalog database.
// A path ending in ".db" is used as-is; otherwise it is treated as a directory.
// An empty path resolves to the user config directory.
func OpenStore(path string, logger LoggerFunc) (*Store, error) {
	dbPath := path
	if filepath.Ext(path) != ".db" {
		dbDir := path
		if dbDir == "" {
			configDir, err := os.UserConfigDir()
			if err != nil {
				log.Printf("Warning: Could not get user config dir: %v. Using current dir.", err)
				dbDir = "."
			} else {
				dbDir = filepath.Join(configDir, "fygallery")
				if err := os.MkdirAll(dbDir, 0750); err != nil {
					return nil, fmt.Errorf("failed to create config directory %s: %w", dbDir, err)
				}
			}
		}
		dbPath = filepath.Join(dbDir, dbFileName)
	}
	logMessage(logger, "Using catalog database at: %s", dbPath)

	db, err := bolt.Open(dbPath, 0600, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog database %s: %w", dbPath, err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		for _, name := range []string{RecordsBucket, SrcIndexBucket, CategoriesToImagesBucket} {
			if _, err := tx.CreateBucketIfNotExists([]byte(name)); err != nil {
				return fmt.Errorf("failed to create bucket %s: %w", name, err)
			}
		}
		return nil
	})
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, logger: logger}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func itob(v uint64) []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, v)
	return b
}

func decodeList(data []byte) ([]string, error) {
	var list []string
	if data == nil {
		return []string{}, nil
	}
	err := json.Unmarshal(data, &list)
	return list, err
}

func addToList(list []string, item string) ([]string, bool) {
	for _, existing := range list {
		if existing == item {
			return list, false
		}
	}
	return append(list, item), true
}

func removeFromList(list []string, item string) []string {
	newList := list[:0]
	for _, existing := range list {
		if existing != item {
			newList = append(newList, existing)
		}
	}
	return newList
}

// updateCategoryIndex adds or removes src under category. An emptied list
// deletes the category key.
func updateCategoryIndex(tx *bolt.Tx, category, src string, add bool) error {
	bucket := tx.Bucket([]byte(CategoriesToImagesBucket))
	current, err := decodeList(bucket.Get([]byte(category)))
	if err != nil {
		return fmt.Errorf("failed to decode images for category '%s': %w", category, err)
	}
	var updated []string
	changed := false
	if add {
		updated, changed = addToList(current, src)
	} else {
		before := len(current)
		updated = removeFromList(current, src)
		changed = len(updated) != before
	}
	if !changed {
		return nil
	}
	if len(updated) == 0 {
		return bucket.Delete([]byte(category))
	}
	data, err := json.Marshal(updated)
	if err != nil {
		return fmt.Errorf("failed to encode images for category '%s': %w", category, err)
	}
	return bucket.Put([]byte(category), data)
}

func getRecord(tx *bolt.Tx, src string) (PhotoRecord, []byte, error) {
	id := tx.Bucket([]byte(SrcIndexBucket)).Get([]byte(src))
	if id == nil {
		return PhotoRecord{}, nil, fmt.Errorf("%s: %w", src, ErrRecordNotFound)
	}
	data := tx.Bucket([]byte(RecordsBucket)).Get(id)
	if data == nil {
		return PhotoRecord{}, nil, fmt.Errorf("%s: dangling index entry: %w", src, ErrRecordNotFound)
	}
	var rec PhotoRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return PhotoRecord{}, nil, fmt.Errorf("failed to decode record %s: %w", src, err)
	}
	return rec, id, nil
}

func putRecord(tx *bolt.Tx, id []byte, rec PhotoRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to encode record %s: %w", rec.Src, err)
	}
	return tx.Bucket([]byte(RecordsBucket)).Put(id, data)
}

// Put inserts rec, or replaces the record with the same src in place.
func (s *Store) Put(rec PhotoRecord) error {
	if rec.Src == "" {
		return fmt.Errorf("record src cannot be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		old, id, err := getRecord(tx, rec.Src)
		if err != nil && !errors.Is(err, ErrRecordNotFound) {
			return err
		}
		if id == nil {
			seq, err := tx.Bucket([]byte(RecordsBucket)).NextSequence()
			if err != nil {
				return fmt.Errorf("failed to allocate record id: %w", err)
			}
			id = itob(seq)
			if err := tx.Bucket([]byte(SrcIndexBucket)).Put([]byte(rec.Src), id); err != nil {
				return fmt.Errorf("failed to index record %s: %w", rec.Src, err)
			}
		}
		for _, c := range old.Categories {
			if err := updateCategoryIndex(tx, c, rec.Src, false); err != nil {
				return err
			}
		}
		for _, c := range rec.Categories {
			if err := updateCategoryIndex(tx, c, rec.Src, true); err != nil {
				return err
			}
		}
		return putRecord(tx, id, rec)
	})
}

// Get returns the record stored for src.
func (s *Store) Get(src string) (PhotoRecord, error) {
	var rec PhotoRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		rec, _, err = getRecord(tx, src)
		return err
	})
	return rec, err
}

// Delete removes the record for src and its category associations.
func (s *Store) Delete(src string) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		rec, id, err := getRecord(tx, src)
		if err != nil {
			return err
		}
		for _, c := range rec.Categories {
			if err := updateCategoryIndex(tx, c, src, false); err != nil {
				return err
			}
		}
		if err := tx.Bucket([]byte(RecordsBucket)).Delete(id); err != nil {
			return fmt.Errorf("failed to delete record %s: %w", src, err)
		}
		return tx.Bucket([]byte(SrcIndexBucket)).Delete([]byte(src))
	})
}

// All returns every record in insertion order.
func (s *Store) All() ([]PhotoRecord, error) {
	var records []PhotoRecord
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(RecordsBucket)).ForEach(func(k, v []byte) error {
			var rec PhotoRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				logMessage(s.logger, "Error decoding record %x, skipping: %v", k, err)
				return nil
			}
			records = append(records, rec)
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	return records, nil
}

// AddCategory tags the record for src with category.
func (s *Store) AddCategory(src, category string) error {
	if src == "" || category == "" {
		return fmt.Errorf("src and category cannot be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		rec, id, err := getRecord(tx, src)
		if err != nil {
			return err
		}
		cats, added := addToList(rec.Categories, category)
		if !added {
			return nil
		}
		rec.Categories = cats
		if err := updateCategoryIndex(tx, category, src, true); err != nil {
			return err
		}
		return putRecord(tx, id, rec)
	})
}

// RemoveCategory removes category from the record for src.
func (s *Store) RemoveCategory(src, category string) error {
	if src == "" || category == "" {
		return fmt.Errorf("src and category cannot be empty")
	}
	return s.db.Update(func(tx *bolt.Tx) error {
		rec, id, err := getRecord(tx, src)
		if err != nil {
			return err
		}
		rec.Categories = removeFromList(rec.Categories, category)
		if err := updateCategoryIndex(tx, category, src, false); err != nil {
			return err
		}
		return putRecord(tx, id, rec)
	})
}

// GetImages returns the sorted srcs tagged with category.
func (s *Store) GetImages(category string) ([]string, error) {
	var images []string
	err := s.db.View(func(tx *bolt.Tx) error {
		var err error
		images, err = decodeList(tx.Bucket([]byte(CategoriesToImagesBucket)).Get([]byte(category)))
		if err != nil {
			return fmt.Errorf("failed to decode images for category %s: %w", category, err)
		}
		return nil
	})
	sort.Strings(images)
	return images, err
}

// GetAllCategories returns every category in use with its record count, sorted by name.
func (s *Store) GetAllCategories() ([]CategoryWithCount, error) {
	var all []CategoryWithCount
	err := s.db.View(func(tx *bolt.Tx) error {
		return tx.Bucket([]byte(CategoriesToImagesBucket)).ForEach(func(k, v []byte) error {
			list, err := decodeList(v)
			if err != nil {
				logMessage(s.logger, "Error decoding image list for category '%s', skipping: %v", string(k), err)
				return nil
			}
			all = append(all, CategoryWithCount{Name: string(k), Count: len(list)})
			return nil
		})
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Name < all[j].Name })
	return all, nil
}
