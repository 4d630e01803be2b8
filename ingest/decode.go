package ingest

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"reflect"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/nlpodyssey/gopickle/pickle"
	pytypes "github.com/nlpodyssey/gopickle/types"

	"ica-price-tracker/models"
)

// Snapshot files come in two encodings: the original Python scraper writes
// gzipped pickle ("products.json.pickle.gzip"), the Go scraper writes gzipped
// JSON ("products.json.gz"). Both decode to the same generic object graph and
// go through the same schema mapping.
const jsonSuffix = ".json.gz"

// DecodeSnapshot decompresses one snapshot file and maps its records onto
// typed raw items. A record that does not fit the schema fails the whole
// file with an error naming the exact field path where the mismatch sits.
func DecodeSnapshot(r io.Reader, filename string) ([]models.RawItem, error) {
	gz, err := gzip.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("gunzip: %w", err)
	}
	defer gz.Close()

	var generic any
	if strings.HasSuffix(filename, jsonSuffix) {
		if err := json.NewDecoder(gz).Decode(&generic); err != nil {
			return nil, fmt.Errorf("json: %w", err)
		}
	} else {
		unpickler := pickle.NewUnpickler(gz)
		value, err := unpickler.Load()
		if err != nil {
			return nil, fmt.Errorf("unpickle: %w", err)
		}
		generic = pythonToGo(value)
	}

	records, ok := generic.([]any)
	if !ok {
		return nil, fmt.Errorf("expected a sequence of records, got %T", generic)
	}
	for _, record := range records {
		if m, ok := record.(map[string]any); ok {
			resolveUnions(m)
		}
	}

	return mapRawItems(records)
}

// mapRawItems decodes the generic record list into []models.RawItem. Field
// type mismatches surface as errors carrying the offending path, e.g.
// "[12].promotions.remainingPromotions[0].price".
func mapRawItems(records []any) ([]models.RawItem, error) {
	var items []models.RawItem
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: validateEnumsHook,
		Result:     &items,
	})
	if err != nil {
		return nil, err
	}
	if err := dec.Decode(records); err != nil {
		return nil, fmt.Errorf("schema: %w", err)
	}
	return items, nil
}

// resolveUnions collapses the scraped data's untagged unions before schema
// mapping. The compare field arrives either structured or as a bare number;
// the bare number carries no unit and is discarded. The priority promotion
// arrives either as a promotion object or as the literal false.
func resolveUnions(item map[string]any) {
	switch item["compare"].(type) {
	case float64, int, int64, json.Number:
		delete(item, "compare")
	}

	promos, ok := item["promotions"].(map[string]any)
	if !ok {
		return
	}
	if _, isBool := promos["priorityPromotion"].(bool); isBool {
		delete(promos, "priorityPromotion")
	}
}

var (
	priceUnitType   = reflect.TypeOf(models.PriceUnit(""))
	soldInUnitType  = reflect.TypeOf(models.SoldInUnit(""))
	productTypeType = reflect.TypeOf(models.ProductType(""))
)

// validateEnumsHook rejects unit and product-type codes outside their closed
// sets, so a bad code fails the file like any other schema mismatch.
func validateEnumsHook(from, to reflect.Type, data any) (any, error) {
	if from.Kind() != reflect.String {
		return data, nil
	}
	s, _ := data.(string)

	switch to {
	case priceUnitType:
		if !models.PriceUnit(s).Valid() {
			return nil, fmt.Errorf("unknown price unit code %q", s)
		}
	case soldInUnitType:
		if !models.SoldInUnit(s).Valid() {
			return nil, fmt.Errorf("unknown sold-in unit %q", s)
		}
	case productTypeType:
		if !models.ProductType(s).Valid() {
			return nil, fmt.Errorf("unknown product type %q", s)
		}
	}
	return data, nil
}

// pythonToGo rewrites gopickle's container types into plain Go maps and
// slices so the pickle and JSON decode paths share the schema mapping.
func pythonToGo(v any) any {
	switch t := v.(type) {
	case *pytypes.Dict:
		m := make(map[string]any, t.Len())
		for _, entry := range *t {
			m[fmt.Sprint(entry.Key)] = pythonToGo(entry.Value)
		}
		return m
	case *pytypes.List:
		s := make([]any, 0, t.Len())
		for _, elem := range *t {
			s = append(s, pythonToGo(elem))
		}
		return s
	case *pytypes.Tuple:
		s := make([]any, 0, t.Len())
		for _, elem := range *t {
			s = append(s, pythonToGo(elem))
		}
		return s
	case []byte:
		return string(t)
	default:
		return v
	}
}
