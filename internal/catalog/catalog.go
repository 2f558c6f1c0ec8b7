package catalog

import (
	"errors"
	"fmt"
	"sync"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
)

var ErrNotFound = errors.New("product not found")

// Catalog is the read-only product source for the storefront.
type Catalog struct {
	mu       sync.RWMutex
	products []models.Product
	byID     map[int]int
}

func New(products []models.Product) *Catalog {
	c := &Catalog{}
	c.Replace(products)
	return c
}

// Replace swaps the whole product list, keeping the first record for a duplicated id.
func (c *Catalog) Replace(products []models.Product) {
	list := make([]models.Product, 0, len(products))
	idx := make(map[int]int, len(products))
	for _, p := range products {
		if _, dup := idx[p.ID]; dup {
			continue
		}
		idx[p.ID] = len(list)
		list = append(list, p)
	}

	c.mu.Lock()
	c.products = list
	c.byID = idx
	c.mu.Unlock()
}

func (c *Catalog) Lookup(id int) (models.Product, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	i, ok := c.byID[id]
	if !ok {
		return models.Product{}, fmt.Errorf("product %d: %w", id, ErrNotFound)
	}
	return c.products[i], nil
}

func (c *Catalog) List() []models.Product {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]models.Product, len(c.products))
	copy(out, c.products)
	return out
}

func (c *Catalog) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.products)
}
