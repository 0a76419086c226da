package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"

	"github.com/solenne/shopcore/dto"
	"github.com/solenne/shopcore/middleware"
	"github.com/solenne/shopcore/models"
)

type CouponController struct {
	coupons *mongo.Collection
	log     *zap.SugaredLogger
}

func NewCouponController(coupons *mongo.Collection, log *zap.SugaredLogger) *CouponController {
	return &CouponController{coupons: coupons, log: log}
}

// GetCoupon returns the caller's active coupon, if any.
func (cp *CouponController) GetCoupon() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		var coupon models.Coupon
		err := cp.coupons.FindOne(c.Request.Context(), bson.M{
			"userId":   user.ID,
			"isActive": true,
		}).Decode(&coupon)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Coupon not found",
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Coupon retrieved successfully",
			"coupon":  coupon,
		})
	}
}

// ValidateCoupon checks a code for the caller and deactivates it when it has
// passed its expiration date.
func (cp *CouponController) ValidateCoupon() gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := middleware.CurrentUser(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"message": "Unauthorized",
			})
			return
		}

		var body dto.ValidateCouponDTO
		if err := c.ShouldBindJSON(&body); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{
				"success": false,
				"message": "All fields are required.",
			})
			return
		}

		ctx := c.Request.Context()

		var coupon models.Coupon
		err := cp.coupons.FindOne(ctx, bson.M{
			"code":     body.Code,
			"userId":   user.ID,
			"isActive": true,
		}).Decode(&coupon)
		if errors.Is(err, mongo.ErrNoDocuments) {
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Coupon not found",
			})
			return
		}
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{
				"success": false,
				"message": "Internal Server Error",
				"error":   err.Error(),
			})
			return
		}

		if coupon.Expired(timeNowUTC()) {
			if _, err := cp.coupons.UpdateByID(ctx, coupon.ID, bson.M{
				"$set": bson.M{"isActive": false},
			}); err != nil {
				cp.log.Warnw("coupon deactivation failed", "error", err)
			}
			c.JSON(http.StatusNotFound, gin.H{
				"success": false,
				"message": "Coupon expired",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"success":            true,
			"message":            "Coupon is valid",
			"code":               coupon.Code,
			"discountPercentage": coupon.DiscountPercentage,
		})
	}
}
