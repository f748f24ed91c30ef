package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Product is a catalog entry. Price is a pointer so a malformed document with
// a missing price is visible to the order path instead of defaulting to zero.
// Quantity is informational stock; order placement does not decrement it.
type Product struct {
	ID          primitive.ObjectID  `bson:"_id,omitempty" json:"id"`
	Name        string              `bson:"name" json:"name"`
	Description string              `bson:"description,omitempty" json:"description,omitempty"`
	Price       *Decimal            `bson:"price" json:"price"`
	ImageURL    string              `bson:"imageUrl,omitempty" json:"imageUrl,omitempty"`
	CategoryID  *primitive.ObjectID `bson:"categoryId" json:"categoryId"`
	Quantity    int                 `bson:"quantity" json:"quantity"`
	CreatedAt   time.Time           `bson:"createdAt" json:"createdAt"`
}
