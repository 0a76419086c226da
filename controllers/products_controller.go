package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"cloud.google.com/go/storage"
	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/solenne/shopcore/cache"
	"github.com/solenne/shopcore/config"
	"github.com/solenne/shopcore/dto"
	"github.com/solenne/shopcore/models"
	"github.com/solenne/shopcore/utils"
)

const featuredCacheKey = "featured_products"

type ProductController struct {
	cfg      config.Config
	products *mongo.Collection
	cache    cache.Cache
	gcs      *storage.Client
	log      *zap.SugaredLogger
}

func NewProductController(
	cfg config.Config,
	products *mongo.Collection,
	c cache.Cache,
	gcs *storage.Client,
	log *zap.SugaredLogger,
) *ProductController {
	return &ProductController{
		cfg:      cfg,
		products: products,
		cache:    c,
		gcs:      gcs,
		log:      log,
	}
}

func (p *ProductController) findProducts(ctx context.Context, filter bson.M) ([]models.Product, error) {
	cursor, err := p.products.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	products := make([]models.Product, 0)
	if err := cursor.All(ctx, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (p *ProductController) GetAll() gin.HandlerFunc {
	return func(c *gin.Context) {
		products, err := p.findProducts(c.Request.Context(), bson.M{})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"products": products,
		})
	}
}

// GetFeatured serves the featured list from the cache when possible and
// falls back to Mongo, refilling the cache on the way out. Cache trouble is
// logged, never surfaced.
func (p *ProductController) GetFeatured() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		if blob, err := p.cache.Get(ctx, featuredCacheKey); err == nil {
			var products []models.Product
			if err := json.Unmarshal([]byte(blob), &products); err == nil {
				c.JSON(http.StatusOK, gin.H{
					"success":  true,
					"products": products,
				})
				return
			}
			p.log.Warnw("featured cache blob corrupt, falling back to db", "error", err)
		} else if !errors.Is(err, cache.ErrNotFound) {
			p.log.Warnw("featured cache read failed", "error", err)
		}

		products, err := p.findProducts(ctx, bson.M{"isFeatured": true})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		if blob, err := json.Marshal(products); err == nil {
			if err := p.cache.Set(ctx, featuredCacheKey, string(blob), 0); err != nil {
				p.log.Warnw("featured cache write failed", "error", err)
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"products": products,
		})
	}
}

func (p *ProductController) GetByCategory() gin.HandlerFunc {
	return func(c *gin.Context) {
		category := c.Param("category")
		products, err := p.findProducts(c.Request.Context(), bson.M{"category": category})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"products": products,
		})
	}
}

func (p *ProductController) GetRecommended() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()

		pipeline := mongo.Pipeline{
			bson.D{{Key: "$sample", Value: bson.D{{Key: "size", Value: 3}}}},
		}
		cursor, err := p.products.Aggregate(ctx, pipeline)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}
		defer cursor.Close(ctx)

		products := make([]models.Product, 0)
		if err := cursor.All(ctx, &products); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":  true,
			"products": products,
		})
	}
}

// Create expects a multipart form: a "data" part holding the product JSON and
// an optional "image" file uploaded to GCS.
func (p *ProductController) Create() gin.HandlerFunc {
	return func(c *gin.Context) {
		jsonData := c.PostForm("data")
		if jsonData == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "All fields are required.",
			})
			return
		}

		var body dto.CreateProductDTO
		if err := json.Unmarshal([]byte(jsonData), &body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "invalid data json",
			})
			return
		}
		if body.Name == "" || body.Description == "" || body.Price <= 0 || body.Category == "" {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "All fields are required.",
			})
			return
		}

		product := models.Product{
			Name:        body.Name,
			Slug:        utils.GenerateSlug(body.Name),
			Description: body.Description,
			Price:       body.Price,
			Category:    body.Category,
			IsFeatured:  body.IsFeatured,
		}

		ctx := c.Request.Context()

		if file, err := c.FormFile("image"); err == nil {
			// Image hosting is optional; without a client the request fails
			// cleanly instead of panicking.
			if p.gcs == nil {
				p.log.Errorw("product image upload skipped: gcs not configured")
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Image upload failed.",
				})
				return
			}
			imageURL, _, err := utils.UploadProductImage(ctx, p.gcs, p.cfg.GCSBucket, product.Slug, file)
			if err != nil {
				p.log.Errorw("product image upload failed", "error", err)
				c.JSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"message": "Image upload failed.",
				})
				return
			}
			product.ImageURL = imageURL
		}

		now := timeNowUTC()
		product.CreatedAt = now
		product.UpdatedAt = now

		result, err := p.products.InsertOne(ctx, product)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}
		if id, ok := result.InsertedID.(bson.ObjectID); ok {
			product.ID = id
		}

		if product.IsFeatured {
			p.refreshFeaturedCache(ctx)
		}

		c.JSON(http.StatusCreated, gin.H{
			"success": true,
			"message": "Product created successfully.",
			"product": product,
		})
	}
}

// ToggleFeatured flips isFeatured and rebuilds the featured cache.
func (p *ProductController) ToggleFeatured() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "invalid product id",
			})
			return
		}

		ctx := c.Request.Context()

		var product models.Product
		if err := p.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
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

		product.IsFeatured = !product.IsFeatured
		product.UpdatedAt = timeNowUTC()

		if _, err := p.products.UpdateByID(ctx, id, bson.M{
			"$set": bson.M{
				"isFeatured": product.IsFeatured,
				"updatedAt":  product.UpdatedAt,
			},
		}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		p.refreshFeaturedCache(ctx)

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"product": product,
		})
	}
}

func (p *ProductController) Delete() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := bson.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "invalid product id",
			})
			return
		}

		ctx := c.Request.Context()

		var product models.Product
		if err := p.products.FindOne(ctx, bson.M{"_id": id}).Decode(&product); err != nil {
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

		// Best-effort image cleanup; the document wins.
		if product.ImageURL != "" && p.gcs != nil {
			if objectName, err := utils.ObjectNameFromPublicURL(p.cfg.GCSBucket, product.ImageURL); err == nil {
				if err := utils.DeleteGCSObject(ctx, p.gcs, p.cfg.GCSBucket, objectName); err != nil {
					p.log.Warnw("product image delete failed", "error", err)
				}
			}
		}

		if _, err := p.products.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		if product.IsFeatured {
			p.refreshFeaturedCache(ctx)
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Product deleted successfully.",
		})
	}
}

func (p *ProductController) refreshFeaturedCache(ctx context.Context) {
	products, err := p.findProducts(ctx, bson.M{"isFeatured": true})
	if err != nil {
		p.log.Warnw("featured cache rebuild query failed", "error", err)
		return
	}
	blob, err := json.Marshal(products)
	if err != nil {
		p.log.Warnw("featured cache rebuild marshal failed", "error", err)
		return
	}
	if err := p.cache.Set(ctx, featuredCacheKey, string(blob), 0); err != nil {
		p.log.Warnw("featured cache rebuild write failed", "error", err)
	}
}
