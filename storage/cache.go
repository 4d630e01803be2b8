package storage

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"

	"ica-price-tracker/models"
	"ica-price-tracker/utils"
)

// Cache persists the full normalized snapshot collection as a single msgpack
// blob so a restart skips re-parsing the data root entirely.
//
// There is no invalidation: the cache is valid only as long as the data root
// is unchanged, and must be deleted by hand after a re-scrape or a format
// change. A truncated file (crash mid-write) fails decoding on the next run.
type Cache struct {
	path   string
	logger *utils.Logger
}

var _ SnapshotStore = (*Cache)(nil)

// NewCache creates a Cache backed by the file at path.
func NewCache(path string, logger *utils.Logger) *Cache {
	return &Cache{path: path, logger: logger}
}

// Load reads the cached snapshot collection. A missing file is a miss, not
// an error; a file that exists but does not decode is an error the caller
// must treat as fatal.
func (c *Cache) Load() ([]models.StoreSnapshot, bool, error) {
	f, err := os.Open(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache: open %q: %w", c.path, err)
	}
	defer f.Close()

	var snapshots []models.StoreSnapshot
	if err := msgpack.NewDecoder(bufio.NewReader(f)).Decode(&snapshots); err != nil {
		return nil, false, fmt.Errorf("cache: decode %q (stale or truncated — delete it to rebuild): %w", c.path, err)
	}

	c.logger.Debug("[cache] Loaded %d snapshots from %s", len(snapshots), c.path)
	return snapshots, true, nil
}

// Save writes the snapshot collection, creating intermediate directories.
func (c *Cache) Save(snapshots []models.StoreSnapshot) error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0755); err != nil {
		return fmt.Errorf("cache: create dir: %w", err)
	}

	f, err := os.Create(c.path)
	if err != nil {
		return fmt.Errorf("cache: create %q: %w", c.path, err)
	}

	w := bufio.NewWriter(f)
	if err := msgpack.NewEncoder(w).Encode(snapshots); err != nil {
		_ = f.Close()
		return fmt.Errorf("cache: encode: %w", err)
	}
	if err := w.Flush(); err != nil {
		_ = f.Close()
		return fmt.Errorf("cache: flush: %w", err)
	}

	c.logger.Info("[cache] Saved %d snapshots to %s", len(snapshots), c.path)
	return f.Close()
}
