package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Product struct {
	ID          bson.ObjectID `bson:"_id,omitempty" json:"id"`
	Name        string        `bson:"name" json:"name"`
	Slug        string        `bson:"slug" json:"slug"`
	Description string        `bson:"description" json:"description"`
	Price       float64       `bson:"price" json:"price"`
	ImageURL    string        `bson:"imageUrl" json:"imageUrl"`
	Category    string        `bson:"category" json:"category"`
	IsFeatured  bool          `bson:"isFeatured" json:"isFeatured"`
	CreatedAt   time.Time     `bson:"createdAt" json:"createdAt"`
	UpdatedAt   time.Time     `bson:"updatedAt" json:"updatedAt"`
}
