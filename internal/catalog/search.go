package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/elastic/go-elasticsearch/v9"
)

type ESConfig struct {
	URL      string
	User     string
	Password string
	Index    string
}

func NewESClient(cfg ESConfig) (*elasticsearch.Client, error) {
	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}
	return client, nil
}

// Search keeps the product index in Elasticsearch and runs fuzzy queries on it.
type Search struct {
	ES    *elasticsearch.Client
	Index string
	log   *slog.Logger
}

func NewSearch(es *elasticsearch.Client, index string, log *slog.Logger) *Search {
	if log == nil {
		log = slog.Default()
	}
	return &Search{ES: es, Index: index, log: log.With("component", "catalog.search")}
}

func (s *Search) IndexProducts(ctx context.Context, products []models.Product) error {
	for _, p := range products {
		body, err := json.Marshal(p)
		if err != nil {
			return fmt.Errorf("encode product %d: %w", p.ID, err)
		}
		res, err := s.ES.Index(
			s.Index,
			bytes.NewReader(body),
			s.ES.Index.WithContext(ctx),
			s.ES.Index.WithDocumentID(strconv.Itoa(p.ID)),
		)
		if err != nil {
			return fmt.Errorf("index product %d: %w", p.ID, err)
		}
		if res.IsError() {
			msg, _ := io.ReadAll(res.Body)
			res.Body.Close()
			return fmt.Errorf("index product %d: %s: %s", p.ID, res.Status(), msg)
		}
		res.Body.Close()
	}
	s.log.Info("catalog_indexed", "index", s.Index, "products", len(products))
	return nil
}

func (s *Search) Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"name^2", "brand", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": from,
		"size": size,
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return 0, nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := s.ES.Search(
		s.ES.Search.WithContext(ctx),
		s.ES.Search.WithIndex(s.Index),
		s.ES.Search.WithBody(&buf),
	)
	if err != nil {
		return 0, nil, fmt.Errorf("search: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return 0, nil, fmt.Errorf("search: %s", res.Status())
	}

	var r struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return 0, nil, fmt.Errorf("decode search: %w", err)
	}

	prods := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		prods[i] = hit.Source
	}
	return r.Hits.Total.Value, prods, nil
}
