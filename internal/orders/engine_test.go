package orders

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thuanthao21/baocaojava-sangt6/internal/middleware"
	"github.com/thuanthao21/baocaojava-sangt6/internal/models"
)

type fakeStore struct {
	orders   map[primitive.ObjectID]models.Order
	users    map[primitive.ObjectID]models.User
	products map[primitive.ObjectID]models.Product
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		orders:   make(map[primitive.ObjectID]models.Order),
		users:    make(map[primitive.ObjectID]models.User),
		products: make(map[primitive.ObjectID]models.Product),
	}
}

func (s *fakeStore) Insert(_ context.Context, order models.Order) (models.Order, error) {
	order.ID = primitive.NewObjectID()
	s.orders[order.ID] = order
	return order, nil
}

func (s *fakeStore) FindByID(_ context.Context, id primitive.ObjectID) (*Hydrated, error) {
	order, ok := s.orders[id]
	if !ok {
		return nil, fmt.Errorf("order %s: %w", id.Hex(), ErrNotFound)
	}
	h := s.hydrate(order)
	return &h, nil
}

func (s *fakeStore) FindByUser(_ context.Context, userID primitive.ObjectID) ([]Hydrated, error) {
	var result []Hydrated
	for _, order := range s.orders {
		if order.UserID != nil && *order.UserID == userID {
			result = append(result, s.hydrate(order))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Order.OrderDate.After(result[j].Order.OrderDate)
	})
	return result, nil
}

func (s *fakeStore) FindAll(_ context.Context) ([]Hydrated, error) {
	var result []Hydrated
	for _, order := range s.orders {
		result = append(result, s.hydrate(order))
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Order.OrderDate.After(result[j].Order.OrderDate)
	})
	return result, nil
}

func (s *fakeStore) SetStatus(_ context.Context, id primitive.ObjectID, status string) error {
	order, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id.Hex(), ErrNotFound)
	}
	order.Status = status
	s.orders[id] = order
	return nil
}

func (s *fakeStore) SetAddress(_ context.Context, id primitive.ObjectID, address string) error {
	order, ok := s.orders[id]
	if !ok {
		return fmt.Errorf("order %s: %w", id.Hex(), ErrNotFound)
	}
	order.ShippingAddress = address
	s.orders[id] = order
	return nil
}

func (s *fakeStore) hydrate(order models.Order) Hydrated {
	h := Hydrated{
		Order:    order,
		Products: make(map[primitive.ObjectID]models.Product),
	}
	if order.UserID != nil {
		if user, ok := s.users[*order.UserID]; ok {
			owner := user
			h.Owner = &owner
		}
	}
	for _, item := range order.Items {
		if product, ok := s.products[item.ProductID]; ok {
			h.Products[item.ProductID] = product
		}
	}
	return h
}

type fakeCatalog struct {
	products map[primitive.ObjectID]models.Product
}

func (c *fakeCatalog) Product(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	product, ok := c.products[id]
	if !ok {
		return nil, nil
	}
	return &product, nil
}

func money(s string) models.Decimal {
	return models.NewDecimal(decimal.RequireFromString(s))
}

func testEngine() (*Engine, *fakeStore, *fakeCatalog) {
	store := newFakeStore()
	catalog := &fakeCatalog{products: store.products}
	return NewEngine(store, catalog), store, catalog
}

func addUser(store *fakeStore, username string) middleware.Principal {
	user := models.User{
		ID:       primitive.NewObjectID(),
		Username: username,
		Role:     "USER",
	}
	store.users[user.ID] = user
	return middleware.Principal{UserID: user.ID, Username: username, Role: "USER"}
}

func addProduct(store *fakeStore, name, price string) primitive.ObjectID {
	p := money(price)
	product := models.Product{
		ID:    primitive.NewObjectID(),
		Name:  name,
		Price: &p,
	}
	store.products[product.ID] = product
	return product.ID
}

func TestCreateComputesExactTotal(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	productID := addProduct(store, "coffee", "10.00")

	view, err := engine.Create(context.Background(), &principal, CreateRequest{
		ShippingAddress: "12 Main St",
		Items: []CreateItem{
			{ProductID: productID, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if !view.TotalAmount.Equal(money("20.00").Decimal) {
		t.Fatalf("expected total 20.00, got %s", view.TotalAmount)
	}
	if len(view.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(view.Items))
	}
	if !view.Items[0].UnitPrice.Equal(money("10.00").Decimal) {
		t.Fatalf("expected unit price 10.00, got %s", view.Items[0].UnitPrice)
	}
	if view.Items[0].Quantity != 2 {
		t.Fatalf("expected quantity 2, got %d", view.Items[0].Quantity)
	}
	if view.Status != StatusPending {
		t.Fatalf("expected status PENDING, got %s", view.Status)
	}
	if view.Username != "alice" {
		t.Fatalf("expected owner alice, got %s", view.Username)
	}
}

func TestCreateSumsAcrossItems(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	first := addProduct(store, "coffee", "10.50")
	second := addProduct(store, "beans", "3.25")

	view, err := engine.Create(context.Background(), &principal, CreateRequest{
		ShippingAddress: "12 Main St",
		Items: []CreateItem{
			{ProductID: first, Quantity: 3},
			{ProductID: second, Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// 3*10.50 + 2*3.25 = 38.00
	if !view.TotalAmount.Equal(money("38.00").Decimal) {
		t.Fatalf("expected total 38.00, got %s", view.TotalAmount)
	}
}

func TestCreateSnapshotsPriceAgainstLaterCatalogChange(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	productID := addProduct(store, "coffee", "10.00")

	view, err := engine.Create(context.Background(), &principal, CreateRequest{
		ShippingAddress: "12 Main St",
		Items:           []CreateItem{{ProductID: productID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	// Catalog price changes after the order was placed.
	raised := money("15.00")
	product := store.products[productID]
	product.Price = &raised
	store.products[productID] = product

	reread, err := engine.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll returned error: %v", err)
	}
	if len(reread) != 1 {
		t.Fatalf("expected 1 order, got %d", len(reread))
	}
	if !reread[0].Items[0].UnitPrice.Equal(money("10.00").Decimal) {
		t.Fatalf("expected snapshotted unit price 10.00, got %s", reread[0].Items[0].UnitPrice)
	}
	if !reread[0].TotalAmount.Equal(view.TotalAmount.Decimal) {
		t.Fatalf("total changed after catalog update: %s", reread[0].TotalAmount)
	}
}

func TestCreateRequiresAuthentication(t *testing.T) {
	engine, store, _ := testEngine()
	productID := addProduct(store, "coffee", "10.00")

	_, err := engine.Create(context.Background(), nil, CreateRequest{
		ShippingAddress: "12 Main St",
		Items:           []CreateItem{{ProductID: productID, Quantity: 1}},
	})
	if !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}

func TestCreateRejectsMalformedRequests(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	productID := addProduct(store, "coffee", "10.00")

	tests := []struct {
		name string
		req  CreateRequest
	}{
		{"empty items", CreateRequest{ShippingAddress: "12 Main St"}},
		{"blank address", CreateRequest{
			ShippingAddress: "   ",
			Items:           []CreateItem{{ProductID: productID, Quantity: 1}},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.Create(context.Background(), &principal, tt.req)
			if !errors.Is(err, ErrInvalidRequest) {
				t.Fatalf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}

func TestCreateUnknownProduct(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")

	_, err := engine.Create(context.Background(), &principal, CreateRequest{
		ShippingAddress: "12 Main St",
		Items:           []CreateItem{{ProductID: primitive.NewObjectID(), Quantity: 1}},
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateProductWithoutPrice(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")

	product := models.Product{ID: primitive.NewObjectID(), Name: "broken"}
	store.products[product.ID] = product

	_, err := engine.Create(context.Background(), &principal, CreateRequest{
		ShippingAddress: "12 Main St",
		Items:           []CreateItem{{ProductID: product.ID, Quantity: 1}},
	})
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState, got %v", err)
	}
}

func placeOrder(t *testing.T, engine *Engine, principal middleware.Principal, productID primitive.ObjectID) View {
	t.Helper()
	view, err := engine.Create(context.Background(), &principal, CreateRequest{
		ShippingAddress: "12 Main St",
		Items:           []CreateItem{{ProductID: productID, Quantity: 2}},
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	return view
}

func TestCancelTwice(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	productID := addProduct(store, "coffee", "10.00")
	placed := placeOrder(t, engine, principal, productID)

	cancelled, err := engine.Cancel(context.Background(), &principal, placed.ID)
	if err != nil {
		t.Fatalf("first cancel returned error: %v", err)
	}
	if cancelled.Status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", cancelled.Status)
	}
	if !cancelled.TotalAmount.Equal(placed.TotalAmount.Decimal) {
		t.Fatalf("cancel changed the total: %s", cancelled.TotalAmount)
	}

	_, err = engine.Cancel(context.Background(), &principal, placed.ID)
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on second cancel, got %v", err)
	}
}

func TestCancelForeignOrder(t *testing.T) {
	engine, store, _ := testEngine()
	owner := addUser(store, "alice")
	other := addUser(store, "bob")
	productID := addProduct(store, "coffee", "10.00")
	placed := placeOrder(t, engine, owner, productID)

	_, err := engine.Cancel(context.Background(), &other, placed.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}

	// The owner can still cancel afterwards.
	view, err := engine.Cancel(context.Background(), &owner, placed.ID)
	if err != nil {
		t.Fatalf("owner cancel returned error: %v", err)
	}
	if view.Status != StatusCancelled {
		t.Fatalf("expected CANCELLED, got %s", view.Status)
	}
}

func TestCancelOrderWithoutOwner(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")

	order := models.Order{
		ID:        primitive.NewObjectID(),
		Status:    StatusPending,
		OrderDate: time.Now(),
	}
	store.orders[order.ID] = order

	_, err := engine.Cancel(context.Background(), &principal, order.ID)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden for ownerless order, got %v", err)
	}
}

func TestCancelMissingOrder(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")

	_, err := engine.Cancel(context.Background(), &principal, primitive.NewObjectID())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestHistoryAnonymous(t *testing.T) {
	engine, _, _ := testEngine()

	views, err := engine.History(context.Background(), nil)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(views) != 0 {
		t.Fatalf("expected empty history for anonymous caller, got %d", len(views))
	}
}

func TestHistoryNewestFirstAndScopedToOwner(t *testing.T) {
	engine, store, _ := testEngine()
	alice := addUser(store, "alice")
	bob := addUser(store, "bob")
	productID := addProduct(store, "coffee", "10.00")

	first := placeOrder(t, engine, alice, productID)
	// Force distinct placement times; the fake store sorts on them.
	older := store.orders[first.ID]
	older.OrderDate = older.OrderDate.Add(-time.Hour)
	store.orders[first.ID] = older

	second := placeOrder(t, engine, alice, productID)
	placeOrder(t, engine, bob, productID)

	views, err := engine.History(context.Background(), &alice)
	if err != nil {
		t.Fatalf("History returned error: %v", err)
	}
	if len(views) != 2 {
		t.Fatalf("expected 2 orders for alice, got %d", len(views))
	}
	if views[0].ID != second.ID || views[1].ID != first.ID {
		t.Fatal("expected newest order first")
	}
}

func TestUpdateStatusNormalizesCase(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	productID := addProduct(store, "coffee", "10.00")
	placed := placeOrder(t, engine, principal, productID)

	view, err := engine.UpdateStatus(context.Background(), placed.ID, "shipped")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if view.Status != StatusShipped {
		t.Fatalf("expected SHIPPED, got %s", view.Status)
	}
	if store.orders[placed.ID].Status != StatusShipped {
		t.Fatalf("stored status not normalized: %s", store.orders[placed.ID].Status)
	}
}

func TestUpdateStatusRejectsUnknownLiteral(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	productID := addProduct(store, "coffee", "10.00")
	placed := placeOrder(t, engine, principal, productID)

	for _, status := range []string{"REFUNDED", "", "DONE"} {
		_, err := engine.UpdateStatus(context.Background(), placed.ID, status)
		if !errors.Is(err, ErrInvalidRequest) {
			t.Fatalf("expected ErrInvalidRequest for %q, got %v", status, err)
		}
	}

	// Surrounding whitespace is trimmed before the literal check.
	view, err := engine.UpdateStatus(context.Background(), placed.ID, " delivered ")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if view.Status != StatusDelivered {
		t.Fatalf("expected DELIVERED, got %s", view.Status)
	}
}

func TestUpdateStatusAllowsAnyTransition(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	productID := addProduct(store, "coffee", "10.00")
	placed := placeOrder(t, engine, principal, productID)

	if _, err := engine.UpdateStatus(context.Background(), placed.ID, "CANCELLED"); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	// Admins are not bound by a transition table.
	view, err := engine.UpdateStatus(context.Background(), placed.ID, "SHIPPED")
	if err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}
	if view.Status != StatusShipped {
		t.Fatalf("expected SHIPPED, got %s", view.Status)
	}
}

func TestUpdateStatusMissingOrder(t *testing.T) {
	engine, _, _ := testEngine()

	_, err := engine.UpdateStatus(context.Background(), primitive.NewObjectID(), "SHIPPED")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestUpdateAddressOnlyWhilePending(t *testing.T) {
	engine, store, _ := testEngine()
	principal := addUser(store, "alice")
	productID := addProduct(store, "coffee", "10.00")
	placed := placeOrder(t, engine, principal, productID)

	view, err := engine.UpdateAddress(context.Background(), placed.ID, "99 Elm St")
	if err != nil {
		t.Fatalf("UpdateAddress returned error: %v", err)
	}
	if view.ShippingAddress != "99 Elm St" {
		t.Fatalf("expected updated address, got %q", view.ShippingAddress)
	}

	if _, err := engine.UpdateStatus(context.Background(), placed.ID, "SHIPPED"); err != nil {
		t.Fatalf("UpdateStatus returned error: %v", err)
	}

	_, err = engine.UpdateAddress(context.Background(), placed.ID, "1 Other Rd")
	if !errors.Is(err, ErrInvalidState) {
		t.Fatalf("expected ErrInvalidState on shipped order, got %v", err)
	}
}

func TestUpdateAddressMissingOrder(t *testing.T) {
	engine, _, _ := testEngine()

	_, err := engine.UpdateAddress(context.Background(), primitive.NewObjectID(), "99 Elm St")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
