package models

// PriceUnit is the per-unit pricing basis of a comparison price. The values
// are the unit codes used by the store API and are stored as-is in the cache.
type PriceUnit string

const (
	PerKgEdible              PriceUnit = "pke" // kr/kg, ätklar
	PerMeter                 PriceUnit = "pm"  // kr/meter
	PerKg                    PriceUnit = "pkg" // kr/kg
	PerLiter                 PriceUnit = "pli" // kr/liter
	PerLiterDrinkable        PriceUnit = "pld" // kr/liter, drickklar
	PerLaundry               PriceUnit = "pla" // kr/tvätt
	PerDose                  PriceUnit = "pdo" // kr/dos
	PerPortion               PriceUnit = "por" // kr/portion
	PerItem                  PriceUnit = "ppi" // kr/st
	PerWash                  PriceUnit = "pwa" // kr/disk
	PerKgWithoutLiquid       PriceUnit = "kwl" // kr/kg u. spad
	PerLiterExcludingDeposit PriceUnit = "plx" // kr/lit exkl. pant
	UnitGram                 PriceUnit = "grm" // grams, appears without a kr/ prefix
	UnitKg                   PriceUnit = "kgm" // kg, appears without a kr/ prefix
	UnitInvalid              PriceUnit = "Invalid"
	UnitPerLReadyDeposit     PriceUnit = "XX_PER_L_READY_DEPOSIT"
)

var priceUnits = map[PriceUnit]struct{}{
	PerKgEdible: {}, PerMeter: {}, PerKg: {}, PerLiter: {},
	PerLiterDrinkable: {}, PerLaundry: {}, PerDose: {}, PerPortion: {},
	PerItem: {}, PerWash: {}, PerKgWithoutLiquid: {}, PerLiterExcludingDeposit: {},
	UnitGram: {}, UnitKg: {}, UnitInvalid: {}, UnitPerLReadyDeposit: {},
}

// Valid reports whether u is one of the known unit codes.
func (u PriceUnit) Valid() bool {
	_, ok := priceUnits[u]
	return ok
}

// SoldInUnit is the unit a product is sold in.
type SoldInUnit string

const (
	SoldPerKg    SoldInUnit = "kgm"
	SoldPerPiece SoldInUnit = "pce"
)

func (u SoldInUnit) Valid() bool {
	return u == SoldPerKg || u == SoldPerPiece
}

// ProductType distinguishes food from non-food products.
type ProductType string

const (
	TypeFood    ProductType = "food"
	TypeNonFood ProductType = "non-food"
)

func (t ProductType) Valid() bool {
	return t == TypeFood || t == TypeNonFood
}

// ComparePrice is a per-unit comparison price ("Jfr-pris"). Two ComparePrice
// values are ordered by Price alone when picking the cheaper one.
type ComparePrice struct {
	Code      *PriceUnit `json:"code" msgpack:"code" mapstructure:"code"`
	Price     float64    `json:"price" msgpack:"price" mapstructure:"price"`
	PriceText *string    `json:"priceText" msgpack:"priceText" mapstructure:"priceText"`
}

// Promotion is one active discount offer attached to a scraped product.
// Read-only input to price resolution.
type Promotion struct {
	Name                           string   `mapstructure:"name"`
	Price                          float64  `mapstructure:"price"`
	ComparePrice                   *float64 `mapstructure:"comparePrice"`
	ComparePriceTextWithDeposit    *string  `mapstructure:"comparePriceTextWithDeposit"`
	ComparePriceTextWithoutDeposit *string  `mapstructure:"comparePriceTextWithoutDeposit"`
	ForLoggedIn                    bool     `mapstructure:"forLoggedIn"`
	HasLongValidity                bool     `mapstructure:"hasLongValidity"`
	HasShortValidity               bool     `mapstructure:"hasShortValidity"`
	ValidTo                        string   `mapstructure:"validTo"`
}

// Promotions groups the promotions attached to one raw item. The store marks
// at most one promotion as the priority one; the scraped value is either a
// promotion object or the literal false, which decodes to nil.
type Promotions struct {
	PriorityPromotion   *Promotion  `mapstructure:"priorityPromotion"`
	RemainingPromotions []Promotion `mapstructure:"remainingPromotions"`
}

// RawItem holds one product's scraped attributes for one store-day, exactly
// as found in a snapshot file. Fields not listed here are ignored on decode.
//
// Compare arrives either as a structured comparison price or as a bare
// number; the bare-number form carries no unit and is discarded at decode
// time (the field decodes to nil).
type RawItem struct {
	Name        string        `mapstructure:"name"`
	Slug        string        `mapstructure:"slug"`
	Price       float64       `mapstructure:"price"`
	Compare     *ComparePrice `mapstructure:"compare"`
	ProductType *ProductType  `mapstructure:"productType"`
	SoldInUnit  SoldInUnit    `mapstructure:"soldInUnit"`
	UnitWeight  *float64      `mapstructure:"unitWeight"`
	Promotions  *Promotions   `mapstructure:"promotions"`
}

// Item is the normalized record produced from a RawItem: promotion-resolved
// comparison price, generated product URL, scraped fields passed through.
type Item struct {
	Name        string        `json:"name" msgpack:"name"`
	URL         string        `json:"url" msgpack:"url"`
	Price       float64       `json:"price" msgpack:"price"`
	Compare     *ComparePrice `json:"compare" msgpack:"compare"`
	ProductType *ProductType  `json:"product_type" msgpack:"product_type"`
	SoldInUnit  SoldInUnit    `json:"sold_in_unit" msgpack:"sold_in_unit"`
	UnitWeight  *float64      `json:"unit_weight" msgpack:"unit_weight"`
}
