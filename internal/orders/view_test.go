package orders

import (
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thuanthao21/baocaojava-sangt6/internal/models"
)

func sampleOrder(userID *primitive.ObjectID, items ...models.OrderItem) models.Order {
	return models.Order{
		ID:              primitive.NewObjectID(),
		UserID:          userID,
		Status:          StatusPending,
		OrderDate:       time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
		TotalAmount:     money("20.00"),
		ShippingAddress: "12 Main St",
		Items:           items,
	}
}

func TestBuildViewResolvedReferences(t *testing.T) {
	userID := primitive.NewObjectID()
	productID := primitive.NewObjectID()
	order := sampleOrder(&userID, models.OrderItem{
		ID:        primitive.NewObjectID(),
		ProductID: productID,
		Quantity:  2,
		UnitPrice: money("10.00"),
	})

	view := BuildView(Hydrated{
		Order: order,
		Owner: &models.User{ID: userID, Username: "alice"},
		Products: map[primitive.ObjectID]models.Product{
			productID: {ID: productID, Name: "coffee"},
		},
	})

	if view.Username != "alice" {
		t.Fatalf("expected username alice, got %q", view.Username)
	}
	if view.UserID == nil || *view.UserID != userID {
		t.Fatal("expected user id to be carried through")
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}
	item := view.Items[0]
	if item.ProductID == nil || *item.ProductID != productID {
		t.Fatal("expected product id on resolved item")
	}
	if item.ProductName != "coffee" {
		t.Fatalf("expected product name coffee, got %q", item.ProductName)
	}
}

func TestBuildViewGuestOrder(t *testing.T) {
	view := BuildView(Hydrated{Order: sampleOrder(nil)})

	if view.Username != "guest" {
		t.Fatalf("expected guest placeholder, got %q", view.Username)
	}
	if view.UserID != nil {
		t.Fatal("expected nil user id for guest order")
	}
}

func TestBuildViewDeletedOwner(t *testing.T) {
	userID := primitive.NewObjectID()
	view := BuildView(Hydrated{Order: sampleOrder(&userID)})

	if view.Username != "deleted user" {
		t.Fatalf("expected deleted user placeholder, got %q", view.Username)
	}
	if view.UserID == nil || *view.UserID != userID {
		t.Fatal("expected dangling user id to be preserved")
	}
}

func TestBuildViewUnknownProduct(t *testing.T) {
	userID := primitive.NewObjectID()
	order := sampleOrder(&userID, models.OrderItem{
		ID:        primitive.NewObjectID(),
		ProductID: primitive.NewObjectID(),
		Quantity:  2,
		UnitPrice: money("10.00"),
	})

	view := BuildView(Hydrated{
		Order: order,
		Owner: &models.User{ID: userID, Username: "alice"},
	})

	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}
	item := view.Items[0]
	if item.ProductID != nil {
		t.Fatal("expected nil product id for unresolved reference")
	}
	if item.ProductName != "unknown product" {
		t.Fatalf("expected unknown product placeholder, got %q", item.ProductName)
	}
	if !item.UnitPrice.Equal(money("10.00").Decimal) {
		t.Fatalf("expected snapshotted price to survive, got %s", item.UnitPrice)
	}
	if item.Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", item.Quantity)
	}
}

func TestBuildViewEmptyItems(t *testing.T) {
	userID := primitive.NewObjectID()
	view := BuildView(Hydrated{
		Order: sampleOrder(&userID),
		Owner: &models.User{ID: userID, Username: "alice"},
	})

	if view.Items == nil {
		t.Fatal("expected empty slice, not nil")
	}
	if len(view.Items) != 0 {
		t.Fatalf("expected no items, got %d", len(view.Items))
	}
}
