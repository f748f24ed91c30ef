package orders

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/thuanthao21/baocaojava-sangt6/internal/models"
)

// Hydrated is an order together with its resolved references, produced by a
// single store read. Owner is nil when the order never had one or when the
// user record was deleted since; Products omits ids that no longer resolve.
type Hydrated struct {
	Order    models.Order
	Owner    *models.User
	Products map[primitive.ObjectID]models.Product
}

type ItemView struct {
	ProductID   *primitive.ObjectID `json:"productId"`
	ProductName string              `json:"productName"`
	Quantity    int                 `json:"quantity"`
	UnitPrice   models.Decimal      `json:"unitPrice"`
}

type View struct {
	ID              primitive.ObjectID  `json:"id"`
	OrderDate       time.Time           `json:"orderDate"`
	Status          string              `json:"status"`
	TotalAmount     models.Decimal      `json:"totalAmount"`
	ShippingAddress string              `json:"shippingAddress"`
	UserID          *primitive.ObjectID `json:"userId"`
	Username        string              `json:"username"`
	Items           []ItemView          `json:"items"`
}

// BuildView maps a hydrated order to its API shape. It is total: dangling
// owner and product references degrade to placeholders, never to an error,
// and it performs no fetches of its own.
func BuildView(h Hydrated) View {
	view := View{
		ID:              h.Order.ID,
		OrderDate:       h.Order.OrderDate,
		Status:          h.Order.Status,
		TotalAmount:     h.Order.TotalAmount,
		ShippingAddress: h.Order.ShippingAddress,
		Items:           make([]ItemView, 0, len(h.Order.Items)),
	}

	switch {
	case h.Order.UserID == nil:
		view.Username = "guest"
	case h.Owner == nil:
		view.UserID = h.Order.UserID
		view.Username = "deleted user"
	default:
		view.UserID = h.Order.UserID
		view.Username = h.Owner.Username
	}

	for _, item := range h.Order.Items {
		itemView := ItemView{
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		}
		if product, ok := h.Products[item.ProductID]; ok {
			productID := item.ProductID
			itemView.ProductID = &productID
			itemView.ProductName = product.Name
		} else {
			itemView.ProductName = "unknown product"
		}
		view.Items = append(view.Items, itemView)
	}

	return view
}
