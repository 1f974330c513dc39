package http

import (
	"context"
	"net/http"
	"time"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogService interface {
	ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error)
	GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error)
}

type ProductHandler struct {
	catalog CatalogService
	timeout time.Duration
}

func NewProductHandler(catalog CatalogService, timeout time.Duration) *ProductHandler {
	return &ProductHandler{
		catalog: catalog,
		timeout: timeout,
	}
}

// GET /api/products?category=&search=
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	q := r.URL.Query()
	products, err := h.catalog.ListProducts(ctx, domain.ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, products)
}

// GET /api/products/{productId}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	id, ok := objectIDParam(w, r, "productId")
	if !ok {
		return
	}

	product, err := h.catalog.GetProduct(ctx, id)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, product)
}
