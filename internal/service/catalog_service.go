package service

import (
	"context"
	"strings"

	"github.com/sagaasachin/MaanClothing/internal/domain"
	"github.com/sagaasachin/MaanClothing/internal/repository"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CatalogService struct {
	products repository.ProductRepository
}

func NewCatalogService(products repository.ProductRepository) *CatalogService {
	return &CatalogService{products: products}
}

func (s *CatalogService) ListProducts(ctx context.Context, filter domain.ProductFilter) ([]domain.Product, error) {
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Search = strings.TrimSpace(filter.Search)
	return s.products.List(ctx, filter)
}

func (s *CatalogService) GetProduct(ctx context.Context, id primitive.ObjectID) (*domain.Product, error) {
	return s.products.Get(ctx, id)
}
