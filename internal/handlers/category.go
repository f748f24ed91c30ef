package handlers

import (
	"context"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/thuanthao21/baocaojava-sangt6/internal/models"
)

type categoryRequest struct {
	Name     string `json:"name" binding:"required"`
	ParentID string `json:"parentId"`
}

func GetCategories(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /api/categories"
		defer handlePanic(c, route)

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}})
		cursor, err := db.Collection("categories").Find(ctx, bson.M{}, opts)
		if err != nil {
			log.Println("[CATEGORY] [ERROR] list categories failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		categories := make([]models.Category, 0)
		if err := cursor.All(ctx, &categories); err != nil {
			log.Println("[CATEGORY] [ERROR] decode categories failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"data": categories})
	}
}

func CreateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /api/admin/categories"
		defer handlePanic(c, route)

		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		category := models.Category{
			Name:      strings.TrimSpace(req.Name),
			CreatedAt: time.Now(),
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if parentStr := strings.TrimSpace(req.ParentID); parentStr != "" {
			parentID, err := primitive.ObjectIDFromHex(parentStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid parentId")
				return
			}
			if err := db.Collection("categories").FindOne(ctx, bson.M{"_id": parentID}).Err(); err != nil {
				if err == mongo.ErrNoDocuments {
					respondWithError(c, http.StatusBadRequest, route, "parent category not found")
					return
				}
				respondWithError(c, http.StatusInternalServerError, route, "db error")
				return
			}
			category.ParentID = &parentID
		}

		res, err := db.Collection("categories").InsertOne(ctx, category)
		if err != nil {
			log.Println("[CATEGORY] [ERROR] insert category failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			category.ID = id
		}

		log.Println("[CATEGORY] [INFO] category created:", category.ID.Hex())
		c.JSON(http.StatusCreated, category)
	}
}

func UpdateCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /api/admin/categories/:id"
		defer handlePanic(c, route)

		categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}

		var req categoryRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidationError(c, err)
			return
		}

		update := bson.M{"name": strings.TrimSpace(req.Name)}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		if parentStr := strings.TrimSpace(req.ParentID); parentStr != "" {
			parentID, err := primitive.ObjectIDFromHex(parentStr)
			if err != nil {
				respondWithError(c, http.StatusBadRequest, route, "invalid parentId")
				return
			}
			if parentID == categoryID {
				respondWithError(c, http.StatusBadRequest, route, "category cannot be its own parent")
				return
			}
			update["parentId"] = parentID
		} else {
			update["parentId"] = nil
		}

		res, err := db.Collection("categories").UpdateByID(ctx, categoryID, bson.M{"$set": update})
		if err != nil {
			log.Println("[CATEGORY] [ERROR] update category failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "category not found")
			return
		}

		var updated models.Category
		if err := db.Collection("categories").FindOne(ctx, bson.M{"_id": categoryID}).Decode(&updated); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		log.Println("[CATEGORY] [INFO] category updated:", categoryID.Hex())
		c.JSON(http.StatusOK, updated)
	}
}

func DeleteCategory(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /api/admin/categories/:id"
		defer handlePanic(c, route)

		categoryID, err := primitive.ObjectIDFromHex(strings.TrimSpace(c.Param("id")))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid category id")
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
		defer cancel()

		count, err := db.Collection("products").CountDocuments(ctx, bson.M{"categoryId": categoryID})
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if count > 0 {
			respondWithError(c, http.StatusConflict, route, "category has products")
			return
		}

		res, err := db.Collection("categories").DeleteOne(ctx, bson.M{"_id": categoryID})
		if err != nil {
			log.Println("[CATEGORY] [ERROR] delete category failed:", err)
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.DeletedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "category not found")
			return
		}

		log.Println("[CATEGORY] [INFO] category deleted:", categoryID.Hex())
		c.JSON(http.StatusOK, gin.H{"message": "category deleted"})
	}
}
