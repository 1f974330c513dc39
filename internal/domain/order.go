package domain

import (
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusCompleted  OrderStatus = "Completed"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) String() string {
	return string(s)
}

type PaymentType string

const (
	PaymentCash  PaymentType = "cash"
	PaymentGPay  PaymentType = "gpay"
	PaymentPaytm PaymentType = "paytm"
	PaymentCard  PaymentType = "card"
)

func (p PaymentType) Valid() bool {
	switch p {
	case PaymentCash, PaymentGPay, PaymentPaytm, PaymentCard:
		return true
	}
	return false
}

// RequiresUPI reports whether the method settles through a UPI handle.
func (p PaymentType) RequiresUPI() bool {
	return p == PaymentGPay || p == PaymentPaytm
}

const (
	Currency            = "INR"
	DefaultDeliveryDays = 7
)

// OrderProduct is a point-in-time copy of a cart entry taken at checkout.
// It does not follow later catalog changes.
type OrderProduct struct {
	ProductID primitive.ObjectID `bson:"product" json:"product_id"`
	Name      string             `bson:"name" json:"name"`
	UnitPrice decimal.Decimal    `bson:"price" json:"price"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Image     string             `bson:"image,omitempty" json:"image,omitempty"`
}

func (p OrderProduct) Subtotal() decimal.Decimal {
	return p.UnitPrice.Mul(decimal.NewFromInt(int64(p.Quantity)))
}

type Order struct {
	ID               primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID           primitive.ObjectID `bson:"user_id" json:"user_id"`
	Products         []OrderProduct     `bson:"products" json:"products"`
	TotalAmount      decimal.Decimal    `bson:"total_amount" json:"total_amount"`
	Currency         string             `bson:"currency" json:"currency"`
	Address          string             `bson:"address" json:"address"`
	PaymentType      PaymentType        `bson:"payment_type" json:"payment_type"`
	UpiID            string             `bson:"upi_id,omitempty" json:"upi_id,omitempty"`
	Status           OrderStatus        `bson:"status" json:"status"`
	ExpectedDelivery time.Time          `bson:"expected_delivery" json:"expected_delivery"`
	IdempotencyKey   string             `bson:"idempotency_key,omitempty" json:"-"`
	CreatedAt        time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time          `bson:"updated_at" json:"updated_at"`
}

// TotalOf is the single authoritative order total: the sum of unit price
// times quantity over the snapshot. Fees and taxes are not part of it.
func TotalOf(products []OrderProduct) decimal.Decimal {
	total := decimal.Zero
	for _, p := range products {
		total = total.Add(p.Subtotal())
	}
	return total
}

type Page struct {
	Number int
	Size   int
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// MaxPageNumber keeps Skip well inside int64 and deep scans bounded.
	MaxPageNumber   = 10_000
)

// Normalize clamps the page into a usable range. A zero Page means "first
// page, default size".
func (p Page) Normalize() Page {
	if p.Number < 1 {
		p.Number = 1
	}
	if p.Number > MaxPageNumber {
		p.Number = MaxPageNumber
	}
	if p.Size < 1 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	return p
}

func (p Page) Skip() int64 {
	return int64(p.Number-1) * int64(p.Size)
}
