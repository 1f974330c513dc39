package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/sagaasachin/MaanClothing/internal/domain"
)

// productRecord is one entry of the import file. Price and discount accept
// JSON numbers or strings.
type productRecord struct {
	ProductID   string          `json:"product_id" validate:"required"`
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Discount    decimal.Decimal `json:"discount"`
	Stock       int             `json:"stock" validate:"gte=0"`
	Category    string          `json:"category" validate:"required"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
}

var hundred = decimal.NewFromInt(100)

func parseProducts(r io.Reader) ([]domain.Product, error) {
	var records []productRecord
	if err := json.NewDecoder(r).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode products: %w", err)
	}
	if len(records) == 0 {
		return nil, errors.New("no products in file")
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	seen := make(map[string]struct{}, len(records))
	products := make([]domain.Product, 0, len(records))
	for i, rec := range records {
		rec.ProductID = strings.TrimSpace(rec.ProductID)
		if err := v.Struct(rec); err != nil {
			return nil, fmt.Errorf("product #%d: %w", i, err)
		}
		if rec.Price.IsNegative() {
			return nil, fmt.Errorf("product #%d: price must not be negative", i)
		}
		if rec.Discount.IsNegative() || rec.Discount.GreaterThan(hundred) {
			return nil, fmt.Errorf("product #%d: discount must be between 0 and 100", i)
		}
		if _, dup := seen[rec.ProductID]; dup {
			return nil, fmt.Errorf("product #%d: duplicate product_id %q", i, rec.ProductID)
		}
		seen[rec.ProductID] = struct{}{}

		products = append(products, domain.Product{
			Code:        rec.ProductID,
			Name:        strings.TrimSpace(rec.Name),
			Description: rec.Description,
			Price:       rec.Price,
			Discount:    rec.Discount,
			Stock:       rec.Stock,
			Category:    strings.TrimSpace(rec.Category),
			ImageURL:    rec.ImageURL,
		})
	}
	return products, nil
}
