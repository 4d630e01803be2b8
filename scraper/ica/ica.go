package ica

import (
	"compress/gzip"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"ica-price-tracker/config"
	"ica-price-tracker/models"
	"ica-price-tracker/utils"
)

const (
	defaultBaseURL = "https://handla.ica.se"
	// rootCatalog is the store's full online catalog category.
	rootCatalog = "catalog80002"
	// chunkSize is how many SKUs one products-data request may carry.
	chunkSize = 50

	snapshotFileName = "products.json.gz"
)

type catalogResponse struct {
	SeoURL string `json:"seoUrl"`
}

type categoryItem struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type categoryResponse struct {
	Items []categoryItem `json:"items"`
}

// Scraper fetches today's full product catalog from the store API and writes
// it as one snapshot file under <DataRoot>/<storeID>/<date>/.
type Scraper struct {
	cfg     *config.Config
	logger  *utils.Logger
	pool    *utils.WorkerPool
	seen    *utils.IDSet
	retry   *utils.RetryConfig
	client  *http.Client
	baseURL string

	mu       sync.Mutex
	products []any
}

// New creates a ready-to-use store Scraper.
func New(cfg *config.Config, logger *utils.Logger) *Scraper {
	return &Scraper{
		cfg:    cfg,
		logger: logger,
		pool:   utils.NewWorkerPool(cfg.MaxConcurrency, cfg.RateLimitMs),
		seen:   utils.NewIDSet(),
		retry: &utils.RetryConfig{
			MaxAttempts: cfg.MaxRetries,
			BaseDelay:   2 * time.Second,
			Logger:      logger,
		},
		client:  &http.Client{Timeout: 30 * time.Second},
		baseURL: defaultBaseURL,
	}
}

// Scrape is the entry point: catalog → category listing → chunked product
// data → snapshot file. It refuses to overwrite a snapshot already taken
// today.
func (s *Scraper) Scrape() error {
	outDir := filepath.Join(s.cfg.DataRoot, s.cfg.StoreID, string(models.Today()))
	if _, err := os.Stat(outDir); err == nil {
		return fmt.Errorf("ica: snapshot dir %s already exists — refusing to overwrite today's snapshot", outDir)
	}

	s.logger.Info("[ica] Starting scrape for store %s", s.cfg.StoreID)

	var catalog catalogResponse
	err := s.retry.Do("fetch category catalog", func() error {
		return s.getJSON(fmt.Sprintf("/api/product-info/v1/store/%s/category/%s",
			s.cfg.StoreID, rootCatalog), &catalog)
	})
	if err != nil {
		return err
	}

	var listing categoryResponse
	err = s.retry.Do("list catalog products", func() error {
		return s.getJSON(fmt.Sprintf("/api/content/v1/collections/facets/customer-type/B2C/store/%s/products?categories=%s&bb=true",
			s.cfg.StoreSlug, url.QueryEscape(catalog.SeoURL)), &listing)
	})
	if err != nil {
		return err
	}

	// The listing repeats SKUs across categories; fetch each one once.
	ids := make([]string, 0, len(listing.Items))
	for _, item := range listing.Items {
		if item.Type != "product" || item.ID == "" {
			continue
		}
		if s.seen.Add(item.ID) {
			ids = append(ids, item.ID)
		}
	}
	s.logger.Info("[ica] %d unique products out of %d catalog entries", len(ids), len(listing.Items))

	for start := 0; start < len(ids); start += chunkSize {
		chunk := ids[start:min(start+chunkSize, len(ids))]
		s.pool.Submit(func() {
			products := s.fetchProducts(chunk)

			s.mu.Lock()
			s.products = append(s.products, products...)
			s.mu.Unlock()
		})
	}
	s.pool.Wait()

	s.logger.Info("[ica] Fetched data for %d products", len(s.products))
	return s.writeSnapshot(outDir)
}

// fetchProducts fetches product data for a batch of SKUs. A failing batch is
// split in half and retried recursively; a single SKU that still fails is
// logged and skipped so one broken product cannot sink the snapshot.
func (s *Scraper) fetchProducts(ids []string) []any {
	if len(ids) == 0 {
		return nil
	}

	var products []any
	err := s.getJSON(fmt.Sprintf("/api/content/v1/collection/customer-type/B2C/store/%s/products-data?skus=%s",
		s.cfg.StoreSlug, strings.Join(ids, ",")), &products)
	if err == nil {
		return products
	}

	if len(ids) == 1 {
		s.logger.Warn("[ica] SKU %s failed: %v — skipping", ids[0], err)
		return nil
	}

	s.logger.Warn("[ica] Batch of %d SKUs failed: %v — splitting", len(ids), err)
	half := len(ids) / 2
	return append(s.fetchProducts(ids[:half]), s.fetchProducts(ids[half:])...)
}

func (s *Scraper) getJSON(path string, target any) error {
	resp, err := s.client.Get(s.baseURL + path)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("GET %s: status %d", path, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(target)
}

// writeSnapshot writes the raw product records as one gzipped JSON file in
// the layout the ingester consumes.
func (s *Scraper) writeSnapshot(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("ica: create snapshot dir: %w", err)
	}

	path := filepath.Join(dir, snapshotFileName)
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ica: create snapshot file: %w", err)
	}

	gz := gzip.NewWriter(f)
	if err := json.NewEncoder(gz).Encode(s.products); err != nil {
		_ = f.Close()
		return fmt.Errorf("ica: encode snapshot: %w", err)
	}
	if err := gz.Close(); err != nil {
		_ = f.Close()
		return fmt.Errorf("ica: flush snapshot: %w", err)
	}

	s.logger.Info("[ica] Wrote snapshot %s (%d products)", path, len(s.products))
	return f.Close()
}
