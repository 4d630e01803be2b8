package ingest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"ica-price-tracker/config"
	"ica-price-tracker/models"
	"ica-price-tracker/services"
	"ica-price-tracker/utils"
)

// Reader discovers snapshot files under the data root and turns each one
// into a normalized StoreSnapshot. Files are independent; they are decoded
// and normalized in parallel and the results collected afterwards.
type Reader struct {
	cfg        *config.Config
	logger     *utils.Logger
	normalizer *services.Normalizer

	mu        sync.Mutex
	snapshots []models.StoreSnapshot
}

// NewReader creates a ready-to-use snapshot Reader.
func NewReader(cfg *config.Config, logger *utils.Logger) *Reader {
	return &Reader{
		cfg:        cfg,
		logger:     logger,
		normalizer: services.NewNormalizer(logger),
	}
}

// Load ingests every snapshot file under the data root.
//
// The directory layout is a contract: <root>/<storeID>/<YYYY-MM-DD>/<file>.
// A missing root or a path segment that fails to parse aborts the run. A
// file that fails to decode is logged and dropped; the rest of the run
// continues without it.
func (r *Reader) Load() ([]models.StoreSnapshot, error) {
	files, err := r.discover()
	if err != nil {
		return nil, err
	}
	r.logger.Info("[ingest] Found %d snapshot files under %s", len(files), r.cfg.DataRoot)

	pool := utils.NewWorkerPool(r.cfg.MaxConcurrency, 0)
	for _, file := range files {
		file := file
		pool.Submit(func() {
			snapshot, err := r.loadFile(file)
			if err != nil {
				r.logger.Error("[ingest] %s: %v — file dropped", file.path, err)
				return
			}

			r.mu.Lock()
			r.snapshots = append(r.snapshots, snapshot)
			r.mu.Unlock()
		})
	}
	pool.Wait()

	r.logger.Info("[ingest] Decoded %d/%d snapshot files", len(r.snapshots), len(files))
	return r.snapshots, nil
}

type snapshotFile struct {
	path    string
	storeID uint32
	date    models.Date
}

// discover walks the data root and resolves store ID and date for every leaf
// file up front, so path errors abort before any decoding starts.
func (r *Reader) discover() ([]snapshotFile, error) {
	var files []snapshotFile
	err := filepath.WalkDir(r.cfg.DataRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}

		storeID, date, err := parseSnapshotPath(path)
		if err != nil {
			return err
		}
		files = append(files, snapshotFile{path: path, storeID: storeID, date: date})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("ingest: walk %s: %w", r.cfg.DataRoot, err)
	}
	return files, nil
}

// parseSnapshotPath derives the date from the file's parent directory name
// and the store ID from the grandparent directory name.
func parseSnapshotPath(path string) (uint32, models.Date, error) {
	dateDir := filepath.Dir(path)
	date, err := models.ParseDate(filepath.Base(dateDir))
	if err != nil {
		return 0, "", fmt.Errorf("bad date segment %q in %s: %w", filepath.Base(dateDir), path, err)
	}

	storeSegment := filepath.Base(filepath.Dir(dateDir))
	storeID, err := strconv.ParseUint(storeSegment, 10, 32)
	if err != nil {
		return 0, "", fmt.Errorf("bad store-id segment %q in %s: %w", storeSegment, path, err)
	}

	return uint32(storeID), date, nil
}

func (r *Reader) loadFile(file snapshotFile) (models.StoreSnapshot, error) {
	f, err := os.Open(file.path)
	if err != nil {
		return models.StoreSnapshot{}, err
	}
	defer f.Close()

	raw, err := DecodeSnapshot(f, filepath.Base(file.path))
	if err != nil {
		return models.StoreSnapshot{}, err
	}

	return models.StoreSnapshot{
		StoreID: file.storeID,
		Date:    file.date,
		Items:   r.normalizer.NormalizeAll(raw),
	}, nil
}
