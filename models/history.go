package models

import "time"

const dateLayout = "2006-01-02"

// Date is a calendar day in YYYY-MM-DD form.
type Date string

// ParseDate validates s as a YYYY-MM-DD calendar date.
func ParseDate(s string) (Date, error) {
	if _, err := time.Parse(dateLayout, s); err != nil {
		return "", err
	}
	return Date(s), nil
}

// Today returns the current local calendar date.
func Today() Date {
	return Date(time.Now().Format(dateLayout))
}

// StoreSnapshot holds all normalized items observed for one store on one
// date. One snapshot corresponds to exactly one scraped file; snapshots are
// immutable once produced and are the unit persisted by the cache.
type StoreSnapshot struct {
	StoreID uint32 `msgpack:"store_id"`
	Date    Date   `msgpack:"date"`
	Items   []Item `msgpack:"items"`
}

// PriceObservation is the subset of an Item kept per history entry. Name and
// URL are stored once per product, not per observation.
type PriceObservation struct {
	Price      float64       `json:"price" msgpack:"price"`
	Compare    *ComparePrice `json:"compare" msgpack:"compare"`
	SoldInUnit SoldInUnit    `json:"sold_in_unit" msgpack:"sold_in_unit"`
	UnitWeight *float64      `json:"unit_weight" msgpack:"unit_weight"`
}

// DataForDay is one product's price observation for one store on one date.
type DataForDay struct {
	Date    Date             `json:"date" msgpack:"date"`
	StoreID uint32           `json:"store_id" msgpack:"store_id"`
	Data    PriceObservation `json:"data" msgpack:"data"`
}

// ProductHistory aggregates every observation of one product name across all
// snapshots. PriceData carries no ordering guarantee; consumers must treat it
// as a set.
type ProductHistory struct {
	Name      string       `json:"name" msgpack:"name"`
	URL       string       `json:"url" msgpack:"url"`
	PriceData []DataForDay `json:"price_data" msgpack:"price_data"`
}
