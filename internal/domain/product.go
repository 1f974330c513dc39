package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var hundred = decimal.NewFromInt(100)

type Product struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Code        string             `bson:"product_id,omitempty" json:"product_id,omitempty"`
	Name        string             `bson:"name" json:"name"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	Price       decimal.Decimal    `bson:"price" json:"price"`
	Discount    decimal.Decimal    `bson:"discount" json:"discount"` // percent, 0-100
	Stock       int                `bson:"stock" json:"stock"`
	Category    string             `bson:"category" json:"category"`
	ImageURL    string             `bson:"image_url,omitempty" json:"image_url,omitempty"`
	CreatedAt   time.Time          `bson:"created_at,omitempty" json:"created_at,omitempty"`
	UpdatedAt   time.Time          `bson:"updated_at,omitempty" json:"updated_at,omitempty"`
}

// UnitPrice is the price a buyer pays for one unit: list price less the
// discount percentage, rounded to two places.
func (p Product) UnitPrice() decimal.Decimal {
	if p.Discount.LessThanOrEqual(decimal.Zero) {
		return p.Price.Round(2)
	}
	discount := decimal.Min(p.Discount, hundred)
	factor := hundred.Sub(discount).Div(hundred)
	return p.Price.Mul(factor).Round(2)
}

type ProductFilter struct {
	Category string
	Search   string
}

// AllCategories is the category label the storefront sends for "no filter".
const AllCategories = "All"

func (f ProductFilter) HasCategory() bool {
	return f.Category != "" && f.Category != AllCategories
}
