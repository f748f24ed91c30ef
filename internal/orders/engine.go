package orders

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thuanthao21/baocaojava-sangt6/internal/middleware"
	"github.com/thuanthao21/baocaojava-sangt6/internal/models"
)

const (
	StatusPending   = "PENDING"
	StatusShipped   = "SHIPPED"
	StatusDelivered = "DELIVERED"
	StatusCancelled = "CANCELLED"
)

// Store is the durable order table. Reads return fully hydrated aggregates
// (order + owner + referenced products) so nothing downstream triggers
// per-item fetches.
type Store interface {
	Insert(ctx context.Context, order models.Order) (models.Order, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*Hydrated, error)
	FindByUser(ctx context.Context, userID primitive.ObjectID) ([]Hydrated, error)
	FindAll(ctx context.Context) ([]Hydrated, error)
	SetStatus(ctx context.Context, id primitive.ObjectID, status string) error
	SetAddress(ctx context.Context, id primitive.ObjectID, address string) error
}

// Catalog resolves products during order creation. Product returns (nil, nil)
// when the id does not resolve.
type Catalog interface {
	Product(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
}

type CreateItem struct {
	ProductID primitive.ObjectID
	Quantity  int
}

type CreateRequest struct {
	ShippingAddress string
	Items           []CreateItem
}

// Engine validates and executes order lifecycle operations. It holds no
// state between calls; each mutating operation is a single write against the
// store. Placement does not touch product stock.
type Engine struct {
	store   Store
	catalog Catalog
}

func NewEngine(store Store, catalog Catalog) *Engine {
	return &Engine{store: store, catalog: catalog}
}

// Create places a new PENDING order for the principal, snapshotting each
// product's current price into the line item. The order and its line items
// are persisted in one atomic write.
func (e *Engine) Create(ctx context.Context, principal *middleware.Principal, req CreateRequest) (View, error) {
	if principal == nil {
		return View{}, fmt.Errorf("create order: %w", ErrUnauthenticated)
	}

	address := strings.TrimSpace(req.ShippingAddress)
	if address == "" {
		return View{}, fmt.Errorf("shipping address is required: %w", ErrInvalidRequest)
	}
	if len(req.Items) == 0 {
		return View{}, fmt.Errorf("order must contain at least one item: %w", ErrInvalidRequest)
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	total := decimal.Zero

	for _, item := range req.Items {
		product, err := e.catalog.Product(ctx, item.ProductID)
		if err != nil {
			return View{}, fmt.Errorf("resolve product %s: %w", item.ProductID.Hex(), err)
		}
		if product == nil {
			return View{}, fmt.Errorf("product %s: %w", item.ProductID.Hex(), ErrNotFound)
		}
		if product.Price == nil {
			return View{}, fmt.Errorf("product %s has no price: %w", item.ProductID.Hex(), ErrInvalidState)
		}

		items = append(items, models.OrderItem{
			ID:        primitive.NewObjectID(),
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: *product.Price,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}

	userID := principal.UserID
	order := models.Order{
		UserID:          &userID,
		Status:          StatusPending,
		OrderDate:       time.Now(),
		TotalAmount:     models.NewDecimal(total),
		ShippingAddress: address,
		Items:           items,
	}

	saved, err := e.store.Insert(ctx, order)
	if err != nil {
		return View{}, fmt.Errorf("persist order: %w", err)
	}

	hydrated, err := e.store.FindByID(ctx, saved.ID)
	if err != nil {
		return View{}, fmt.Errorf("reload order %s: %w", saved.ID.Hex(), err)
	}
	return BuildView(*hydrated), nil
}

// Cancel moves the caller's own PENDING order to CANCELLED. No compensating
// stock or refund action follows.
func (e *Engine) Cancel(ctx context.Context, principal *middleware.Principal, orderID primitive.ObjectID) (View, error) {
	if principal == nil {
		return View{}, fmt.Errorf("cancel order: %w", ErrUnauthenticated)
	}

	hydrated, err := e.store.FindByID(ctx, orderID)
	if err != nil {
		return View{}, err
	}

	if hydrated.Order.UserID == nil || *hydrated.Order.UserID != principal.UserID {
		return View{}, fmt.Errorf("order %s is not owned by the caller: %w", orderID.Hex(), ErrForbidden)
	}
	if !strings.EqualFold(hydrated.Order.Status, StatusPending) {
		return View{}, fmt.Errorf("order %s is not pending: %w", orderID.Hex(), ErrInvalidState)
	}

	if err := e.store.SetStatus(ctx, orderID, StatusCancelled); err != nil {
		return View{}, err
	}

	hydrated.Order.Status = StatusCancelled
	return BuildView(*hydrated), nil
}

// History returns the principal's orders, newest first. An anonymous caller
// gets an empty list, not an error.
func (e *Engine) History(ctx context.Context, principal *middleware.Principal) ([]View, error) {
	if principal == nil {
		return []View{}, nil
	}

	hydrated, err := e.store.FindByUser(ctx, principal.UserID)
	if err != nil {
		return nil, err
	}
	return buildViews(hydrated), nil
}

// ListAll returns every order, newest first. Role gating happens at the
// access layer, not here.
func (e *Engine) ListAll(ctx context.Context) ([]View, error) {
	hydrated, err := e.store.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	return buildViews(hydrated), nil
}

// UpdateStatus overwrites an order's status with one of the four literal
// values, regardless of the current status. No transition table is enforced
// at this layer.
func (e *Engine) UpdateStatus(ctx context.Context, orderID primitive.ObjectID, status string) (View, error) {
	normalized := strings.ToUpper(strings.TrimSpace(status))
	switch normalized {
	case StatusPending, StatusShipped, StatusDelivered, StatusCancelled:
	default:
		return View{}, fmt.Errorf("unknown status %q: %w", status, ErrInvalidRequest)
	}

	if err := e.store.SetStatus(ctx, orderID, normalized); err != nil {
		return View{}, err
	}

	// Re-read with full hydration so the response reflects a consistent
	// snapshot rather than the write-path entity.
	hydrated, err := e.store.FindByID(ctx, orderID)
	if err != nil {
		return View{}, err
	}
	return BuildView(*hydrated), nil
}

// UpdateAddress overwrites the shipping address of an order that is still
// PENDING.
func (e *Engine) UpdateAddress(ctx context.Context, orderID primitive.ObjectID, address string) (View, error) {
	hydrated, err := e.store.FindByID(ctx, orderID)
	if err != nil {
		return View{}, err
	}
	if !strings.EqualFold(hydrated.Order.Status, StatusPending) {
		return View{}, fmt.Errorf("order %s is not pending: %w", orderID.Hex(), ErrInvalidState)
	}

	if err := e.store.SetAddress(ctx, orderID, address); err != nil {
		return View{}, err
	}

	hydrated, err = e.store.FindByID(ctx, orderID)
	if err != nil {
		return View{}, err
	}
	return BuildView(*hydrated), nil
}

func buildViews(hydrated []Hydrated) []View {
	views := make([]View, 0, len(hydrated))
	for _, h := range hydrated {
		views = append(views, BuildView(h))
	}
	return views
}
