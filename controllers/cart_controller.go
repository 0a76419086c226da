package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/solenne/shopcore/database"
	"github.com/solenne/shopcore/dto"
	"github.com/solenne/shopcore/middleware"
	"github.com/solenne/shopcore/models"
)

// CartController mutates the cart line items stored on the user document.
type CartController struct {
	users    database.UserStore
	products *mongo.Collection
	log      *zap.SugaredLogger
}

func NewCartController(users database.UserStore, products *mongo.Collection, log *zap.SugaredLogger) *CartController {
	return &CartController{
		users:    users,
		products: products,
		log:      log,
	}
}

// CartProduct is a product joined with the quantity on the user's cart line.
type CartProduct struct {
	models.Product
	Quantity int `json:"quantity"`
}

// mergeCartQuantities pairs fetched products with the cart's quantities,
// keeping the cart's line order. Lines whose product no longer exists are
// dropped.
func mergeCartQuantities(items []models.CartItem, products []models.Product) []CartProduct {
	byID := make(map[bson.ObjectID]models.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}

	out := make([]CartProduct, 0, len(items))
	for _, item := range items {
		p, ok := byID[item.ProductID]
		if !ok {
			continue
		}
		out = append(out, CartProduct{Product: p, Quantity: item.Quantity})
	}
	return out
}

func (ct *CartController) GetProducts() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		ids := make([]bson.ObjectID, 0, len(user.CartItems))
		for _, item := range user.CartItems {
			ids = append(ids, item.ProductID)
		}

		ctx := c.Request.Context()
		products := make([]models.Product, 0)
		if len(ids) > 0 {
			cursor, err := ct.products.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
			if err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Internal Server Error",
					"error":   err.Error(),
				})
				return
			}
			defer cursor.Close(ctx)
			if err := cursor.All(ctx, &products); err != nil {
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Internal Server Error",
					"error":   err.Error(),
				})
				return
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"message":   "Cart products retrieved successfully",
			"cartItems": mergeCartQuantities(user.CartItems, products),
		})
	}
}

func (ct *CartController) AddToCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		var body dto.AddToCartDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "All fields are required.",
			})
			return
		}

		productID, err := bson.ObjectIDFromHex(body.ProductID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "invalid product id",
			})
			return
		}

		ctx := c.Request.Context()

		// The product must exist before it can be carted.
		if err := ct.products.FindOne(ctx, bson.M{"_id": productID}).Err(); err != nil {
			if errors.Is(err, mongo.ErrNoDocuments) {
				c.JSON(http.StatusNotFound, gin.H{
					"success": false,
					"message": "Product not found",
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		items := user.CartItems
		found := false
		for i := range items {
			if items[i].ProductID == productID {
				items[i].Quantity++
				found = true
				break
			}
		}
		if !found {
			items = append(items, models.CartItem{ProductID: productID, Quantity: 1})
		}

		if err := ct.users.UpdateCart(ctx, user.ID, items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"cartItems": items,
		})
	}
}

// RemoveFromCart deletes one line, or every line when no product id is given.
func (ct *CartController) RemoveFromCart() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		var body dto.RemoveFromCartDTO
		_ = c.ShouldBindJSON(&body)

		items := []models.CartItem{}
		if body.ProductID != "" {
			productID, err := bson.ObjectIDFromHex(body.ProductID)
			if err != nil {
				c.JSON(http.StatusBadRequest, gin.H{
					"success": false,
					"message": "invalid product id",
				})
				return
			}
			for _, item := range user.CartItems {
				if item.ProductID != productID {
					items = append(items, item)
				}
			}
		}

		if err := ct.users.UpdateCart(c.Request.Context(), user.ID, items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"cartItems": items,
		})
	}
}

// UpdateQuantity sets the quantity of one line; zero removes the line.
func (ct *CartController) UpdateQuantity() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		productID, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "invalid product id",
			})
			return
		}

		var body dto.UpdateQuantityDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "All fields are required.",
			})
			return
		}

		items := make([]models.CartItem, 0, len(user.CartItems))
		found := false
		for _, item := range user.CartItems {
			if item.ProductID == productID {
				found = true
				if body.Quantity == 0 {
					continue
				}
				item.Quantity = body.Quantity
			}
			items = append(items, item)
		}

		if !found {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Product not found in cart",
			})
			return
		}

		if err := ct.users.UpdateCart(c.Request.Context(), user.ID, items); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":   true,
			"cartItems": items,
		})
	}
}
