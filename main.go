package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"cloud.google.com/go/storage"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/solenne/shopcore/cache"
	"github.com/solenne/shopcore/config"
	"github.com/solenne/shopcore/controllers"
	"github.com/solenne/shopcore/database"
	"github.com/solenne/shopcore/logger"
	"github.com/solenne/shopcore/middleware"
	"github.com/solenne/shopcore/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	zlog := logger.New(cfg.Environment)
	defer zlog.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := database.Connect(ctx, cfg.MongoURI)
	if err != nil {
		zlog.Fatalw("mongo connection failed", "error", err)
	}
	db := database.New(client, cfg.DatabaseName)
	defer db.Disconnect(context.Background())
	zlog.Infow("connected to mongodb", "database", cfg.DatabaseName)

	sessions, err := cache.NewRedisCache(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		zlog.Fatalw("redis connection failed", "addr", cfg.RedisAddr, "error", err)
	}
	defer sessions.Close()
	zlog.Infow("connected to redis", "addr", cfg.RedisAddr)

	usersCol := db.Collection("users")
	if cfg.AdminEmail != "" {
		if err := utils.SeedAdminUser(ctx, usersCol, cfg.AdminEmail, cfg.AdminPassword); err != nil {
			zlog.Fatalw("admin seeding failed", "error", err)
		}
	}

	var gcs *storage.Client
	if cfg.GCSBucket != "" {
		gcs, err = utils.NewGCSClient(ctx, cfg.CredentialsFile)
		if err != nil {
			zlog.Fatalw("gcs client failed", "error", err)
		}
		defer gcs.Close()
	}

	users := database.NewMongoUserStore(usersCol)
	tokens := utils.NewTokenManager(
		cfg.AccessTokenSecret,
		cfg.RefreshTokenSecret,
		cfg.AccessTokenTTL,
		cfg.RefreshTokenTTL,
	)

	auth := controllers.NewAuthController(cfg, users, sessions, tokens, zlog)
	products := controllers.NewProductController(cfg, db.Collection("products"), sessions, gcs, zlog)
	carts := controllers.NewCartController(users, db.Collection("products"), zlog)
	coupons := controllers.NewCouponController(db.Collection("coupons"), zlog)

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	allowedOrigins := map[string]bool{}
	for _, origin := range cfg.AllowedOrigins {
		allowedOrigins[origin] = true
	}
	r.Use(cors.New(cors.Config{
		AllowOriginFunc: func(origin string) bool {
			return allowedOrigins[origin]
		},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(gin.Logger())
	r.Use(gin.Recovery())

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	protect := middleware.Protect(users, tokens)
	adminOnly := middleware.AdminOnly()

	authRoutes := r.Group("/auth")
	{
		authRoutes.POST("/signup", auth.Signup())
		authRoutes.POST("/login", auth.Login())
		authRoutes.POST("/logout", auth.Logout())
		authRoutes.POST("/refresh-token", auth.Refresh())
		authRoutes.GET("/profile", protect, auth.Profile())
	}

	productRoutes := r.Group("/products")
	{
		productRoutes.GET("", protect, adminOnly, products.GetAll())
		productRoutes.GET("/featured", products.GetFeatured())
		productRoutes.GET("/recommended", products.GetRecommended())
		productRoutes.GET("/category/:category", products.GetByCategory())
		productRoutes.POST("", protect, adminOnly, products.Create())
		productRoutes.PATCH("/:id", protect, adminOnly, products.ToggleFeatured())
		productRoutes.DELETE("/:id", protect, adminOnly, products.Delete())
	}

	cartRoutes := r.Group("/cart", protect)
	{
		cartRoutes.GET("", carts.GetProducts())
		cartRoutes.POST("", carts.AddToCart())
		cartRoutes.DELETE("", carts.RemoveFromCart())
		cartRoutes.PUT("/:id", carts.UpdateQuantity())
	}

	couponRoutes := r.Group("/coupons", protect)
	{
		couponRoutes.GET("", coupons.GetCoupon())
		couponRoutes.POST("/validate", coupons.ValidateCoupon())
	}

	zlog.Infow("server starting", "port", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		zlog.Fatalw("server exited", "error", err)
	}
}
