package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Cart is the cart portion of a user record.
type Cart struct {
	UserID    primitive.ObjectID `bson:"_id" json:"user_id"`
	Items     []CartItem         `bson:"cart" json:"items"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}

type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	AddedAt   time.Time          `bson:"added_at" json:"added_at"`
}

func (c *Cart) IsEmpty() bool {
	return c == nil || len(c.Items) == 0
}

func (c *Cart) Find(productID primitive.ObjectID) (CartItem, bool) {
	if c == nil {
		return CartItem{}, false
	}
	for _, item := range c.Items {
		if item.ProductID == productID {
			return item, true
		}
	}
	return CartItem{}, false
}

func (c *Cart) ProductIDs() []primitive.ObjectID {
	if c == nil {
		return nil
	}
	ids := make([]primitive.ObjectID, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}

// CartLine is a cart entry joined against the live catalog.
type CartLine struct {
	Product   Product         `json:"product"`
	Quantity  int             `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
	AddedAt   time.Time       `json:"added_at"`
}

// CartView is what GetCart returns: entries resolved against current
// product data, so prices and stock may differ from when they were added.
type CartView struct {
	UserID    primitive.ObjectID `json:"user_id"`
	Lines     []CartLine         `json:"items"`
	Subtotal  decimal.Decimal    `json:"subtotal"`
	UpdatedAt time.Time          `json:"updated_at"`
}

func NewCartView(cart *Cart, products map[primitive.ObjectID]Product) *CartView {
	view := &CartView{
		UserID:   cart.UserID,
		Lines:    make([]CartLine, 0, len(cart.Items)),
		Subtotal: decimal.Zero,
	}
	view.UpdatedAt = cart.UpdatedAt
	for _, item := range cart.Items {
		p, ok := products[item.ProductID]
		if !ok {
			continue
		}
		unit := p.UnitPrice()
		sub := unit.Mul(decimal.NewFromInt(int64(item.Quantity)))
		view.Lines = append(view.Lines, CartLine{
			Product:   p,
			Quantity:  item.Quantity,
			UnitPrice: unit,
			Subtotal:  sub,
			AddedAt:   item.AddedAt,
		})
		view.Subtotal = view.Subtotal.Add(sub)
	}
	return view
}
