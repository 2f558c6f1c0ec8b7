package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/abdelaziz-sekouti/beauty-ecom/internal/catalog"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/logging"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/models"
	"github.com/abdelaziz-sekouti/beauty-ecom/internal/util"
)

type Searcher interface {
	Search(ctx context.Context, query string, from, size int) (int64, []models.Product, error)
}

type CatalogHTTP struct {
	Catalog  *catalog.Catalog
	Index    Searcher
	Fallback bool
}

// maxSearchWindow is the default elasticsearch index.max_result_window.
const maxSearchWindow = 10000

type productPage struct {
	Items    []models.Product `json:"items"`
	Total    int64            `json:"total"`
	Page     int              `json:"page"`
	Size     int              `json:"size"`
	Fallback bool             `json:"fallback,omitempty"`
}

func (h *CatalogHTTP) ListProducts(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "list.products")

	page, size := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	list := h.Catalog.Query(catalog.Query{
		Category: c.QueryParam("category"),
		Search:   c.QueryParam("q"),
		Sort:     c.QueryParam("sort"),
	})
	items, total := util.Slice(list, page, size)
	_, size = util.Calculate(page, size)

	l.Debug("products listed", "total", total, "page", page)
	return c.JSON(http.StatusOK, productPage{
		Items:    items,
		Total:    int64(total),
		Page:     page,
		Size:     size,
		Fallback: h.Fallback,
	})
}

func (h *CatalogHTTP) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "get.product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "invalid id", "error", err)
		return c.JSON(http.StatusBadRequest, errBody("invalid product id"))
	}

	p, err := h.Catalog.Lookup(id)
	if err != nil {
		if errors.Is(err, catalog.ErrNotFound) {
			l.Warn("get_product_error", "status", 404, "error", err)
			return c.JSON(http.StatusNotFound, errBody("product not found"))
		}
		l.Error("get_product_error", "status", 500, "error", err)
		return c.JSON(http.StatusInternalServerError, errBody("internal error"))
	}
	return c.JSON(http.StatusOK, p)
}

func (h *CatalogHTTP) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "search.products")

	if h.Index == nil {
		l.Warn("search_error", "status", 503, "reason", "search index not configured")
		return c.JSON(http.StatusServiceUnavailable, errBody("search is not configured"))
	}

	q := c.QueryParam("q")
	if q == "" {
		l.Warn("search_error", "status", 400, "reason", "empty query")
		return c.JSON(http.StatusBadRequest, errBody("q is required"))
	}

	page, size := util.ParsePage(c.QueryParam("page"), c.QueryParam("size"))
	from, size := util.Calculate(page, size)
	if from+size > maxSearchWindow {
		return c.JSON(http.StatusOK, productPage{Items: []models.Product{}, Page: page, Size: size})
	}

	total, items, err := h.Index.Search(ctx, q, from, size)
	if err != nil {
		l.Error("search_error", "status", 502, "error", err)
		return c.JSON(http.StatusBadGateway, errBody("search failed"))
	}
	return c.JSON(http.StatusOK, productPage{Items: items, Total: total, Page: page, Size: size})
}

func errBody(msg string) map[string]string {
	return map[string]string{"error": msg}
}
