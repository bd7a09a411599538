package repository

import (
	"context"
	"fmt"

	"github.com/aircnc/aircnc-server/internal/database"
	"github.com/aircnc/aircnc-server/internal/reservation"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const Collection = "reservations"

// MongoRepo persists reservations in the "reservations" collection.
type MongoRepo = database.Repository[reservation.Reservation, *reservation.Reservation]

// NewMongoRepo indexes reservations by user and returns the repository.
func NewMongoRepo(ctx context.Context, db *mongo.Database) (*MongoRepo, error) {
	col := db.Collection(Collection)
	if err := database.EnsureIndexes(ctx, col, mongo.IndexModel{Keys: bson.D{{Key: "userId", Value: 1}}}); err != nil {
		return nil, fmt.Errorf("reservations indexes: %w", err)
	}
	return database.NewRepository[reservation.Reservation](col, "ReservationsRepository"), nil
}
