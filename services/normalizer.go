package services

import (
	"fmt"

	"ica-price-tracker/models"
	"ica-price-tracker/utils"
)

// productURLTemplate turns a scraped slug into the product's shop URL.
const productURLTemplate = "https://handla.ica.se/handla/produkt/%s"

// Normalizer maps raw scraped items into normalized records, resolving each
// item's effective comparison price against its promotions.
type Normalizer struct {
	logger *utils.Logger
}

// NewNormalizer creates a Normalizer with the given logger.
func NewNormalizer(logger *utils.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Normalize converts one raw item. It never fails: an item without a
// comparison price or promotions simply yields a nil Compare.
func (n *Normalizer) Normalize(raw models.RawItem) models.Item {
	return models.Item{
		Name:        raw.Name,
		URL:         fmt.Sprintf(productURLTemplate, raw.Slug),
		Price:       raw.Price,
		Compare:     n.resolveCompare(raw.Compare, raw.Promotions),
		ProductType: raw.ProductType,
		SoldInUnit:  raw.SoldInUnit,
		UnitWeight:  raw.UnitWeight,
	}
}

// NormalizeAll converts a whole snapshot file's worth of raw items.
func (n *Normalizer) NormalizeAll(raw []models.RawItem) []models.Item {
	items := make([]models.Item, len(raw))
	for i, r := range raw {
		items[i] = n.Normalize(r)
	}
	return items
}

// resolveCompare picks the effective (lowest) comparison price. When the
// store marks a priority promotion that carries a deposit-inclusive price
// text, only that text is consulted; otherwise every remaining promotion is.
// Promotion texts that fail the grammar are skipped silently — promotion
// wording is less standardized than the base comparison price and partial
// coverage is expected. Resolution only ever lowers the price.
func (n *Normalizer) resolveCompare(base *models.ComparePrice, promos *models.Promotions) *models.ComparePrice {
	if base == nil {
		return nil
	}

	best := *base
	if promos == nil {
		return &best
	}

	priority := promos.PriorityPromotion
	if priority != nil && priority.ComparePriceTextWithDeposit != nil {
		if prom, ok := ParseCompareText(*priority.ComparePriceTextWithDeposit); ok && prom.Price < best.Price {
			best = prom
		}
		return &best
	}

	for _, promotion := range promos.RemainingPromotions {
		if promotion.ComparePriceTextWithDeposit == nil {
			continue
		}
		if prom, ok := ParseCompareText(*promotion.ComparePriceTextWithDeposit); ok && prom.Price < best.Price {
			best = prom
		}
	}
	return &best
}
