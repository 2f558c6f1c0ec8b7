package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"golang.org/x/sync/singleflight"
)

// Fallback is served when the product list cannot be fetched.
var Fallback = []models.Product{
	{
		ID:          1,
		Name:        "Vitamin C Brightening Serum",
		Brand:       "GlowLab",
		Category:    "skincare",
		Price:       45.99,
		Image:       "https://picsum.photos/seed/serum1/300/300",
		Badge:       "Bestseller",
		Description: "Powerful vitamin C serum for radiant skin",
	},
}

type Loader struct {
	url        string
	httpClient *http.Client
	log        *slog.Logger
	sfg        singleflight.Group
}

func NewLoader(url string, log *slog.Logger) *Loader {
	if log == nil {
		log = slog.Default()
	}
	return &Loader{
		url: url,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
		},
		log: log.With("component", "catalog.loader"),
	}
}

// Load fetches the product list. Any failure yields the fixed fallback list and
// fromFallback=true; it never returns an empty catalog.
func (l *Loader) Load(ctx context.Context) (products []models.Product, fromFallback bool) {
	v, _, _ := l.sfg.Do(l.url, func() (interface{}, error) {
		list, err := l.fetch(ctx)
		if err != nil {
			l.log.Warn("catalog_load_failed", "url", l.url, "reason", "serving fallback catalog", "error", err)
			return loadResult{products: cloneProducts(Fallback), fallback: true}, nil
		}
		l.log.Info("catalog_loaded", "url", l.url, "products", len(list))
		return loadResult{products: list}, nil
	})
	res := v.(loadResult)
	return cloneProducts(res.products), res.fallback
}

type loadResult struct {
	products []models.Product
	fallback bool
}

func (l *Loader) fetch(ctx context.Context) ([]models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, l.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	var list []models.Product
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if len(list) == 0 {
		return nil, fmt.Errorf("empty product list")
	}
	return list, nil
}

func cloneProducts(in []models.Product) []models.Product {
	out := make([]models.Product, len(in))
	copy(out, in)
	return out
}
