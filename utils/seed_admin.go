package utils

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/solenne/shopcore/models"
)

// SeedAdminUser upserts the bootstrap admin account. A no-op when the email
// already exists, so it is safe to run on every start.
func SeedAdminUser(ctx context.Context, usersCol *mongo.Collection, email, password string) error {
	if email == "" || password == "" {
		return fmt.Errorf("missing admin email or password")
	}

	hash, err := HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash admin password: %w", err)
	}

	now := time.Now().UTC()

	// Only insert if it doesn't exist
	filter := bson.M{"email": email}
	update := bson.M{
		"$setOnInsert": bson.M{
			"name":         "Admin",
			"email":        email,
			"passwordHash": hash,
			"role":         models.RoleAdmin,
			"cartItems":    []models.CartItem{},
			"createdAt":    now,
			"updatedAt":    now,
		},
	}

	opts := options.UpdateOne().SetUpsert(true)
	if _, err := usersCol.UpdateOne(ctx, filter, update, opts); err != nil {
		return fmt.Errorf("seed admin upsert failed: %w", err)
	}

	return nil
}
