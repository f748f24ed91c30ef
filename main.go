package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/thuanthao21/baocaojava-sangt6/internal/config"
	"github.com/thuanthao21/baocaojava-sangt6/internal/database"
	"github.com/thuanthao21/baocaojava-sangt6/internal/handlers"
	"github.com/thuanthao21/baocaojava-sangt6/internal/middleware"
	"github.com/thuanthao21/baocaojava-sangt6/internal/orders"
)

func main() {
	config.Load()

	client, err := database.Connect(config.AppEnv.MongoURI)
	if err != nil {
		log.Fatal(err)
	}

	db := client.Database(config.AppEnv.DBName)

	log.Println("MongoDB connected to:", db.Name())

	if err := database.EnsureUserIndexes(db); err != nil {
		log.Println("user index warning:", err)
	}
	if err := database.EnsureProductIndexes(db); err != nil {
		log.Println("product index warning:", err)
	}
	if err := database.EnsureOrderIndexes(db); err != nil {
		log.Println("order index warning:", err)
	}
	if err := database.EnsureReviewIndexes(db); err != nil {
		log.Println("review index warning:", err)
	}

	engine := orders.NewEngine(orders.NewStore(db), orders.NewCatalog(db))

	secret := config.AppEnv.JWTSecret

	r := gin.Default()

	api := r.Group("/api")

	api.POST("/auth/register", handlers.Register(db))
	api.POST("/auth/login", handlers.Login(db, secret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	api.POST("/auth/refresh", handlers.Refresh(db, secret, config.AppEnv.AccessTokenTTL, config.AppEnv.RefreshTokenTTL))
	api.POST("/auth/logout", handlers.Logout(db))

	api.GET("/products", handlers.GetProducts(db))
	api.GET("/products/:id", handlers.GetProductByID(db))
	api.GET("/products/:id/reviews", handlers.GetProductReviews(db))
	api.POST("/products/:id/reviews", middleware.UserAuth(secret), handlers.CreateProductReview(db))
	api.GET("/categories", handlers.GetCategories(db))

	api.POST("/orders", middleware.UserAuth(secret), handlers.CreateOrder(db, engine))
	api.GET("/orders/my-orders", middleware.OptionalAuth(secret), handlers.GetMyOrderHistory(db, engine))
	api.PUT("/orders/:id/cancel", middleware.UserAuth(secret), handlers.CancelOrder(db, engine))

	me := api.Group("/users/me")
	me.Use(middleware.UserAuth(secret))
	{
		me.GET("", handlers.GetProfile(db))
		me.PUT("", handlers.UpdateProfile(db))
		me.PUT("/password", handlers.ChangePassword(db))

		me.GET("/addresses", handlers.GetUserAddresses(db))
		me.POST("/addresses", handlers.CreateUserAddress(db))
		me.PUT("/addresses/:id", handlers.UpdateUserAddress(db))
		me.DELETE("/addresses/:id", handlers.DeleteUserAddress(db))

		me.GET("/wishlist", handlers.GetWishlist(db))
		me.POST("/wishlist", handlers.AddWishlistItem(db))
		me.DELETE("/wishlist/:productId", handlers.RemoveWishlistItem(db))
	}

	admin := api.Group("/admin")
	admin.Use(middleware.AdminAuth(secret))
	{
		admin.GET("/orders", handlers.ListAllOrders(db, engine))
		admin.PUT("/orders/:id/status", handlers.UpdateOrderStatus(db, engine))
		admin.PUT("/orders/:id/address", handlers.UpdateOrderAddress(db, engine))

		admin.POST("/products", handlers.CreateProduct(db))
		admin.PUT("/products/:id", handlers.UpdateProduct(db))
		admin.DELETE("/products/:id", handlers.DeleteProduct(db))

		admin.POST("/categories", handlers.CreateCategory(db))
		admin.PUT("/categories/:id", handlers.UpdateCategory(db))
		admin.DELETE("/categories/:id", handlers.DeleteCategory(db))
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	if err := r.Run(":" + port); err != nil {
		log.Fatal(err)
	}
}
