package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Coupon struct {
	ID                 bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Code               string        `bson:"code" json:"code"`
	DiscountPercentage int           `bson:"discountPercentage" json:"discountPercentage"`
	ExpirationDate     time.Time     `bson:"expirationDate" json:"expirationDate"`
	IsActive           bool          `bson:"isActive" json:"isActive"`
	UserID             bson.ObjectID `bson:"userId" json:"userId"`
}

func (c *Coupon) Expired(now time.Time) bool {
	return now.After(c.ExpirationDate)
}
