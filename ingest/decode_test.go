package ingest

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"strings"
	"testing"

	"ica-price-tracker/models"
)

func gzipJSON(t *testing.T, v any) []byte {
	t.Helper()
	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if err := json.NewEncoder(gz).Encode(v); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func validRecord(name, slug string) map[string]any {
	return map[string]any{
		"name":  name,
		"slug":  slug,
		"price": 18.5,
		"compare": map[string]any{
			"code":      "pkg",
			"price":     12.5,
			"priceText": "12,50 kr/kg",
		},
		"productType": "food",
		"soldInUnit":  "pce",
		"unitWeight":  0.5,
		"promotions": map[string]any{
			"priorityPromotion":   false,
			"remainingPromotions": []any{},
		},
		// Unknown fields are ignored, as in the scraped data.
		"gtin":    1234567890,
		"deposit": 0.0,
	}
}

func TestDecodeSnapshotJSON(t *testing.T) {
	data := gzipJSON(t, []any{validRecord("Mjölk", "mjolk-1"), validRecord("Bröd", "brod-2")})

	items, err := DecodeSnapshot(bytes.NewReader(data), "products.json.gz")
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items; want 2", len(items))
	}

	item := items[0]
	if item.Name != "Mjölk" || item.Slug != "mjolk-1" || item.Price != 18.5 {
		t.Errorf("item = %+v", item)
	}
	if item.Compare == nil || item.Compare.Price != 12.5 {
		t.Fatalf("compare = %+v; want structured compare price", item.Compare)
	}
	if item.Compare.Code == nil || *item.Compare.Code != models.PerKg {
		t.Errorf("compare code = %v; want pkg", item.Compare.Code)
	}
	if item.Promotions == nil || item.Promotions.PriorityPromotion != nil {
		t.Errorf("priorityPromotion false must decode to nil, got %+v", item.Promotions)
	}
}

// A compare field arriving as a bare number carries no unit and is dropped.
func TestDecodeBareNumberCompare(t *testing.T) {
	record := validRecord("Mjölk", "mjolk-1")
	record["compare"] = 15.0

	items, err := DecodeSnapshot(bytes.NewReader(gzipJSON(t, []any{record})), "products.json.gz")
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if items[0].Compare != nil {
		t.Errorf("compare = %+v; want nil for bare-number compare", items[0].Compare)
	}
}

func TestDecodeSchemaErrorNamesFieldPath(t *testing.T) {
	bad := validRecord("Bröd", "brod-2")
	bad["price"] = "not-a-number"

	_, err := DecodeSnapshot(bytes.NewReader(gzipJSON(t, []any{validRecord("Mjölk", "mjolk-1"), bad})), "products.json.gz")
	if err == nil {
		t.Fatal("expected schema error")
	}
	if !strings.Contains(err.Error(), "[1].price") {
		t.Errorf("error %q does not name the offending field path", err)
	}
}

func TestDecodeRejectsUnknownUnitCode(t *testing.T) {
	bad := validRecord("Mjölk", "mjolk-1")
	bad["compare"] = map[string]any{"code": "zzz", "price": 1.0}

	_, err := DecodeSnapshot(bytes.NewReader(gzipJSON(t, []any{bad})), "products.json.gz")
	if err == nil {
		t.Fatal("expected error for unit code outside the closed set")
	}
	if !strings.Contains(err.Error(), "zzz") {
		t.Errorf("error %q does not mention the bad code", err)
	}
}

func TestDecodeSnapshotNotGzip(t *testing.T) {
	if _, err := DecodeSnapshot(strings.NewReader("plain text"), "products.json.pickle.gzip"); err == nil {
		t.Fatal("expected gunzip error")
	}
}

// pickleWriter emits just enough of pickle protocol 2 to build the fixture
// the Python scraper would produce: a list of dicts of scalars.
type pickleWriter struct {
	bytes.Buffer
}

func newPickleWriter() *pickleWriter {
	w := &pickleWriter{}
	w.Write([]byte{'\x80', 2}) // PROTO 2
	return w
}

func (w *pickleWriter) stop() []byte {
	w.WriteByte('.')
	return w.Bytes()
}

func (w *pickleWriter) str(s string) {
	w.WriteByte('X') // BINUNICODE
	binary.Write(&w.Buffer, binary.LittleEndian, uint32(len(s)))
	w.WriteString(s)
}

func (w *pickleWriter) float(f float64) {
	w.WriteByte('G') // BINFLOAT
	binary.Write(&w.Buffer, binary.BigEndian, f)
}

func (w *pickleWriter) none() { w.WriteByte('N') }

func (w *pickleWriter) bool(b bool) {
	if b {
		w.WriteByte('\x88') // NEWTRUE
	} else {
		w.WriteByte('\x89') // NEWFALSE
	}
}

func (w *pickleWriter) list(body func()) {
	w.WriteByte(']') // EMPTY_LIST
	w.WriteByte('(') // MARK
	body()
	w.WriteByte('e') // APPENDS
}

func (w *pickleWriter) dict(body func()) {
	w.WriteByte('}') // EMPTY_DICT
	w.WriteByte('(') // MARK
	body()
	w.WriteByte('u') // SETITEMS
}

func TestDecodeSnapshotPickle(t *testing.T) {
	w := newPickleWriter()
	w.list(func() {
		w.dict(func() {
			w.str("name")
			w.str("Mjölk")
			w.str("slug")
			w.str("mjolk-1")
			w.str("price")
			w.float(18.5)
			w.str("compare")
			w.dict(func() {
				w.str("code")
				w.str("pli")
				w.str("price")
				w.float(12.3)
				w.str("priceText")
				w.none()
			})
			w.str("productType")
			w.str("food")
			w.str("soldInUnit")
			w.str("pce")
			w.str("unitWeight")
			w.none()
			w.str("promotions")
			w.dict(func() {
				w.str("priorityPromotion")
				w.bool(false)
				w.str("remainingPromotions")
				w.list(func() {
					w.dict(func() {
						w.str("name")
						w.str("Veckans vara")
						w.str("price")
						w.float(15.0)
						w.str("comparePriceTextWithDeposit")
						w.str("Jfr-pris 10 kr/liter")
					})
				})
			})
		})
	})

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	if _, err := gz.Write(w.stop()); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	items, err := DecodeSnapshot(bytes.NewReader(buf.Bytes()), "products.json.pickle.gzip")
	if err != nil {
		t.Fatalf("DecodeSnapshot: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items; want 1", len(items))
	}

	item := items[0]
	if item.Name != "Mjölk" || item.Price != 18.5 {
		t.Errorf("item = %+v", item)
	}
	if item.Compare == nil || item.Compare.Price != 12.3 {
		t.Fatalf("compare = %+v", item.Compare)
	}
	if item.Compare.Code == nil || *item.Compare.Code != models.PerLiter {
		t.Errorf("compare code = %v; want pli", item.Compare.Code)
	}
	if item.Compare.PriceText != nil {
		t.Errorf("priceText = %v; want nil from pickled None", item.Compare.PriceText)
	}
	if item.Promotions == nil || item.Promotions.PriorityPromotion != nil {
		t.Errorf("pickled False priority promotion must decode to nil")
	}
	if len(item.Promotions.RemainingPromotions) != 1 {
		t.Fatalf("remainingPromotions = %+v; want 1", item.Promotions.RemainingPromotions)
	}
	promo := item.Promotions.RemainingPromotions[0]
	if promo.ComparePriceTextWithDeposit == nil || *promo.ComparePriceTextWithDeposit != "Jfr-pris 10 kr/liter" {
		t.Errorf("promotion = %+v", promo)
	}
}
