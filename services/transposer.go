package services

import (
	"ica-price-tracker/models"
	"ica-price-tracker/utils"
)

// Transposer turns per-day snapshots into per-product price histories.
type Transposer struct {
	logger *utils.Logger
}

// NewTransposer creates a Transposer with the given logger.
func NewTransposer(logger *utils.Logger) *Transposer {
	return &Transposer{logger: logger}
}

// Transpose groups every item of every snapshot by exact product name and
// collects one trimmed observation per snapshot that mentions the name.
// Output order and entry order are unspecified; the history is a set.
//
// Product identity is case-sensitive name equality: two listings of the same
// physical product under different names stay separate, and identically
// named listings with different slugs merge (the first URL seen wins).
func (t *Transposer) Transpose(snapshots []models.StoreSnapshot) []models.ProductHistory {
	byName := make(map[string]*models.ProductHistory)

	for _, snap := range snapshots {
		for _, item := range snap.Items {
			history, ok := byName[item.Name]
			if !ok {
				history = &models.ProductHistory{Name: item.Name, URL: item.URL}
				byName[item.Name] = history
			}
			history.PriceData = append(history.PriceData, models.DataForDay{
				Date:    snap.Date,
				StoreID: snap.StoreID,
				Data: models.PriceObservation{
					Price:      item.Price,
					Compare:    item.Compare,
					SoldInUnit: item.SoldInUnit,
					UnitWeight: item.UnitWeight,
				},
			})
		}
	}

	result := make([]models.ProductHistory, 0, len(byName))
	for _, history := range byName {
		result = append(result, *history)
	}

	t.logger.Info("[transpose] %d snapshots → %d distinct products", len(snapshots), len(result))
	return result
}
