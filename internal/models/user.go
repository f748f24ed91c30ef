package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Address is a single address book entry for a user.
type Address struct {
	ID          string `bson:"id" json:"id"`
	Street      string `bson:"street" json:"street"`
	City        string `bson:"city" json:"city"`
	PhoneNumber string `bson:"phoneNumber" json:"phoneNumber"`
	IsDefault   bool   `bson:"isDefault" json:"isDefault"`
}

// User is the application account. Role is "USER" or "ADMIN".
type User struct {
	ID           primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Username     string               `bson:"username" json:"username"`
	Email        string               `bson:"email" json:"email"`
	PasswordHash string               `bson:"passwordHash" json:"-"`
	FullName     string               `bson:"fullName" json:"fullName"`
	Role         string               `bson:"role" json:"role"`
	Addresses    []Address            `bson:"addresses" json:"addresses"`
	Wishlist     []primitive.ObjectID `bson:"wishlist" json:"wishlist"`
	CreatedAt    time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time            `bson:"updatedAt" json:"updatedAt"`
}
