package search

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"ica-price-tracker/models"
)

// maxResults caps what one search query returns.
const maxResults = 20

// Index is the process-wide product index: built once at startup from the
// transposed histories, read-only afterwards. Concurrent readers need no
// locking because nothing mutates it after construction.
type Index struct {
	products []models.ProductHistory
	names    []string
}

// NewIndex builds the index. The product slice is captured as-is and must
// not be modified by the caller afterwards.
func NewIndex(products []models.ProductHistory) *Index {
	names := make([]string, len(products))
	for i, p := range products {
		names[i] = strings.ToLower(p.Name)
	}
	return &Index{products: products, names: names}
}

// Len returns the number of distinct products indexed.
func (idx *Index) Len() int {
	return len(idx.products)
}

// Search fuzzy-ranks product names against the query (case-insensitive) and
// returns up to 20 matches, best first. The ranking itself is delegated to
// the fuzzy matcher and treated as a black box.
func (idx *Index) Search(query string) []models.ProductHistory {
	ranks := fuzzy.RankFindNormalizedFold(strings.ToLower(query), idx.names)
	sort.Sort(ranks)

	n := len(ranks)
	if n > maxResults {
		n = maxResults
	}
	results := make([]models.ProductHistory, 0, n)
	for _, rank := range ranks[:n] {
		results = append(results, idx.products[rank.OriginalIndex])
	}
	return results
}
