package catalog

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeES struct {
	mu      sync.Mutex
	indexed []string
	query   map[string]any
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")

	f.mu.Lock()
	defer f.mu.Unlock()

	switch {
	case strings.HasSuffix(r.URL.Path, "/_search"):
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &f.query)
		_, _ = w.Write([]byte(`{"hits":{"total":{"value":1},"hits":[{"_source":{"id":1,"name":"Vitamin C Brightening Serum","brand":"GlowLab","price":45.99}}]}}`))
	case strings.HasPrefix(r.URL.Path, "/products/_doc/"):
		f.indexed = append(f.indexed, strings.TrimPrefix(r.URL.Path, "/products/_doc/"))
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"result":"created"}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{}`))
	}
}

func newTestSearch(t *testing.T) (*Search, *fakeES) {
	fake := &fakeES{}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := NewESClient(ESConfig{URL: srv.URL})
	require.NoError(t, err)
	return NewSearch(client, "products", nil), fake
}

func TestSearch_IndexProducts(t *testing.T) {
	s, fake := newTestSearch(t)

	require.NoError(t, s.IndexProducts(context.Background(), testProducts()[:2]))
	assert.Equal(t, []string{"1", "2"}, fake.indexed)
}

func TestSearch_Query(t *testing.T) {
	s, fake := newTestSearch(t)

	total, products, err := s.Search(context.Background(), "vitamn", 0, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, products, 1)
	assert.Equal(t, "GlowLab", products[0].Brand)

	mm := fake.query["query"].(map[string]any)["multi_match"].(map[string]any)
	assert.Equal(t, "vitamn", mm["query"])
	assert.Equal(t, "AUTO", mm["fuzziness"])
}
