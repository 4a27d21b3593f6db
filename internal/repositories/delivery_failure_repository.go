package repositories

import (
	"context"
	"fmt"
	"time"

	"github.com/anonto42/reachout/backend/internal/models"
	"go.mongodb.org/mongo-driver/mongo"
)

const CollectionDeliveryFailures = "notification_delivery_failures"

// DeliveryFailureRepository keeps notifications that could not be written for
// inspection by an operator.
type DeliveryFailureRepository interface {
	SaveFailure(ctx context.Context, failure *models.DeliveryFailure) error
}

type mongoDeliveryFailureRepository struct {
	collection *mongo.Collection
	timeout    time.Duration
}

func NewMongoDeliveryFailureRepository(db *mongo.Database) DeliveryFailureRepository {
	return &mongoDeliveryFailureRepository{
		collection: db.Collection(CollectionDeliveryFailures),
		timeout:    5 * time.Second,
	}
}

func (r *mongoDeliveryFailureRepository) SaveFailure(ctx context.Context, failure *models.DeliveryFailure) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if failure.OccurredAt.IsZero() {
		failure.OccurredAt = time.Now().UTC()
	}
	if _, err := r.collection.InsertOne(ctx, failure); err != nil {
		return fmt.Errorf("failed to insert delivery failure to Mongo: %w", err)
	}
	return nil
}
