package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is one product entry within an order. Quantity and UnitPrice are
// fixed at order creation; UnitPrice is a snapshot of the catalog price and
// is never re-read afterwards, even when the catalog price changes.
type OrderItem struct {
	ID        primitive.ObjectID `bson:"_id" json:"id"`
	ProductID primitive.ObjectID `bson:"productId" json:"productId"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	UnitPrice Decimal            `bson:"unitPrice" json:"unitPrice"`
}

// Order is the persisted order document. Line items are embedded, so they are
// owned by the order and written atomically with it.
type Order struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	UserID          *primitive.ObjectID `bson:"userId" json:"userId"`
	Status          string              `bson:"status" json:"status"`
	OrderDate       time.Time           `bson:"orderDate" json:"orderDate"`
	TotalAmount     Decimal             `bson:"totalAmount" json:"totalAmount"`
	ShippingAddress string              `bson:"shippingAddress" json:"shippingAddress"`
	Items           []OrderItem         `bson:"items" json:"items"`
}
