package users

import (
	"context"
	"fmt"

	"github.com/aircnc/aircnc-server/internal/database"
	"github.com/aircnc/aircnc-server/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const Collection = "users"

// Repository persists users in the "users" collection.
type Repository = database.Repository[models.User, *models.User]

// NewRepository ensures the unique email index and returns the users repository.
func NewRepository(ctx context.Context, db *mongo.Database) (*Repository, error) {
	col := db.Collection(Collection)
	err := database.EnsureIndexes(ctx, col, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return nil, fmt.Errorf("users indexes: %w", err)
	}
	return database.NewRepository[models.User](col, "UsersRepository"), nil
}
