package storage

import "ica-price-tracker/models"

// SnapshotStore is the interface the startup path uses to load or persist
// the normalized snapshot collection.
type SnapshotStore interface {
	Load() ([]models.StoreSnapshot, bool, error)
	Save(snapshots []models.StoreSnapshot) error
}
