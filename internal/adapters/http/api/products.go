package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/okian/storefront/internal/domain/product"
)

// sortParam selects the sort key; every other query parameter is a filter
// criterion.
const sortParam = "sort"

type productsResponse struct {
	Products []product.Product `json:"products"`
	Count    int               `json:"count"`
}

// ProductsHandler serves catalog queries.
type ProductsHandler struct {
	deps Dependencies
}

// NewProductsHandler creates a new products handler.
func NewProductsHandler(deps Dependencies) *ProductsHandler {
	return &ProductsHandler{deps: deps}
}

// HandleList handles GET /products?sort=<key>&<field>=<value>.
func (h *ProductsHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	criteria, err := parseCriteria(query)
	if err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", err)
		return
	}

	products, err := h.deps.Products(r.Context(), criteria, product.SortKey(strings.TrimSpace(query.Get(sortParam))))
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, productsResponse{Products: products, Count: len(products)})
}

// HandleStatistics handles GET /products/statistics.
func (h *ProductsHandler) HandleStatistics(w http.ResponseWriter, r *http.Request) {
	report, err := h.deps.Statistics(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// parseCriteria turns query parameters into filter criteria. Values that
// parse as JSON scalars keep their type, so price=10 matches the number 10
// and name="10" the string; anything else is taken as a plain string.
func parseCriteria(query url.Values) (product.Criteria, error) {
	criteria := make(product.Criteria, len(query))
	for key, values := range query {
		if key == sortParam {
			continue
		}
		if len(values) != 1 {
			return nil, fmt.Errorf("%w: %q given %d times", ErrBadRequest, key, len(values))
		}
		criteria[key] = product.ParseValue(values[0])
	}
	return criteria, nil
}

// isClientError reports whether err was caused by the request itself.
func isClientError(err error) bool {
	return errors.Is(err, ErrBadRequest)
}
