package handlers

import (
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/thuanthao21/baocaojava-sangt6/internal/orders"
)

type updateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type updateOrderAddressRequest struct {
	ShippingAddress string `json:"shippingAddress" binding:"required"`
}

func ListAllOrders(db *mongo.Database, engine *orders.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/admin/orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		views, err := engine.ListAll(c.Request.Context())
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		c.JSON(http.StatusOK, views)
	}
}

func UpdateOrderStatus(db *mongo.Database, engine *orders.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/status"
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

		var req updateOrderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		view, err := engine.UpdateStatus(c.Request.Context(), orderID, req.Status)
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		log.Printf("[ORDER] [INFO] order %s status set to %s", view.ID.Hex(), view.Status)
		c.JSON(http.StatusOK, view)
	}
}

func UpdateOrderAddress(db *mongo.Database, engine *orders.Engine) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/orders/:id/address"
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

		var req updateOrderAddressRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		address := strings.TrimSpace(req.ShippingAddress)
		if address == "" {
			respondWithError(c, http.StatusBadRequest, route, "shippingAddress is required")
			return
		}

		view, err := engine.UpdateAddress(c.Request.Context(), orderID, address)
		if err != nil {
			respondOrderError(c, route, err)
			return
		}

		log.Println("[ORDER] [INFO] order address updated:", view.ID.Hex())
		c.JSON(http.StatusOK, view)
	}
}
