package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/thuanthao21/baocaojava-sangt6/internal/middleware"
	"github.com/thuanthao21/baocaojava-sangt6/internal/orders"
)

type createOrderItemRequest struct {
	ProductID string `json:"productId" binding:"required"`
	Quantity  int    `json:"quantity" binding:"required,gt=0"`
}

type createOrderRequest struct {
	ShippingAddress string                   `json:"shippingAddress" binding:"required"`
	Items           []createOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

func CreateOrder(db *mongo.Database, engine *orders.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		items := make([]orders.CreateItem, 0, len(req.Items))
		for _, item := range req.Items {
			productID, err := primitive.ObjectIDFromHex(strings.TrimSpace(item.ProductID))
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid productId")
				return
			}
			items = append(items, orders.CreateItem{ProductID: productID, Quantity: item.Quantity})
		}

		principal := principalPointer(c)
		view, err := engine.Create(c.Request.Context(), principal, orders.CreateRequest{
			ShippingAddress: req.ShippingAddress,
			Items:           items,
		})
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] order created:", view.ID.Hex())
		c.JSON(http.StatusCreated, view)
	}
}

func GetMyOrderHistory(db *mongo.Database, engine *orders.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/orders/my-orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		views, err := engine.History(c.Request.Context(), principalPointer(c))
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, views)
	}
}

func CancelOrder(db *mongo.Database, engine *orders.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/orders/:id/cancel"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid order id")
			return
		}

		view, err := engine.Cancel(c.Request.Context(), principalPointer(c), orderID)
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] order cancelled:", view.ID.Hex())
		c.JSON(http.StatusOK, view)
	}
}

func principalPointer(c *gin.Context) *middleware.Principal {
	principal, ok := middleware.PrincipalFrom(c)
	if !ok {
		return nil
	}
	return &principal
}
