package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const EventOrderPlaced = "OrderPlaced"

// OutboxEvent is written in the same transaction as the state change it
// describes and published later by the outbox poller.
type OutboxEvent struct {
	ID          primitive.ObjectID `bson:"_id,omitempty"`
	EventID     string             `bson:"event_id"`
	AggregateID string             `bson:"aggregate_id"`
	EventType   string             `bson:"event_type"`
	Payload     []byte             `bson:"payload"`
	Processed   bool               `bson:"processed"`
	CreatedAt   time.Time          `bson:"created_at"`
	ProcessedAt *time.Time         `bson:"processed_at,omitempty"`
}

type OrderPlacedPayload struct {
	OrderID     string         `json:"order_id"`
	UserID      string         `json:"user_id"`
	Products    []OrderProduct `json:"products"`
	TotalAmount string         `json:"total_amount"`
	Currency    string         `json:"currency"`
	PaymentType PaymentType    `json:"payment_type"`
	PlacedAt    time.Time      `json:"placed_at"`
}

func NewOrderPlacedPayload(o *Order) OrderPlacedPayload {
	return OrderPlacedPayload{
		OrderID:     o.ID.Hex(),
		UserID:      o.UserID.Hex(),
		Products:    o.Products,
		TotalAmount: o.TotalAmount.StringFixed(2),
		Currency:    o.Currency,
		PaymentType: o.PaymentType,
		PlacedAt:    o.CreatedAt,
	}
}
