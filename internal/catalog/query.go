package catalog

import (
	"sort"
	"strings"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
)

const (
	CategoryAll = "all"

	SortFeatured  = "featured"
	SortPriceLow  = "price-low"
	SortPriceHigh = "price-high"
	SortName      = "name"
)

type Query struct {
	Category string
	Search   string
	Sort     string
}

// Query filters by category and search term, then sorts. Unknown sort keys
// fall back to featured ordering.
func (c *Catalog) Query(q Query) []models.Product {
	return Apply(c.List(), q)
}

func Apply(products []models.Product, q Query) []models.Product {
	out := make([]models.Product, 0, len(products))
	term := strings.ToLower(strings.TrimSpace(q.Search))
	for _, p := range products {
		if q.Category != "" && q.Category != CategoryAll && p.Category != q.Category {
			continue
		}
		if term != "" && !matches(p, term) {
			continue
		}
		out = append(out, p)
	}

	switch q.Sort {
	case SortPriceLow:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price < out[j].Price })
	case SortPriceHigh:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	default:
		sort.SliceStable(out, func(i, j int) bool { return out[i].Badge != "" && out[j].Badge == "" })
	}
	return out
}

func matches(p models.Product, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(strings.ToLower(p.Brand), term) ||
		strings.Contains(strings.ToLower(p.Description), term)
}
