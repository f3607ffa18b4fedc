package boostRepo

import (
	"context"
	"fmt"
	"time"

	"serviq/database"
	"serviq/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// BoostRepository defines methods for active-boost data access.
type BoostRepository interface {
	// Create records a purchased boost.
	Create(ctx context.Context, b *models.ActiveBoost) error
	// ActiveForWorker returns the worker's boosts whose time window
	// contains now. Scope matching is left to the scoring engine.
	ActiveForWorker(ctx context.Context, workerID string, now time.Time) ([]models.ActiveBoost, error)
	// SetStatus flips a boost's status (admin override).
	SetStatus(ctx context.Context, id, status string) error
}

// MongoBoostRepo implements BoostRepository using MongoDB.
type MongoBoostRepo struct {
	coll *mongo.Collection
}

func NewMongoBoostRepo() BoostRepository {
	repo := &MongoBoostRepo{coll: database.Collection("boosts")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create boost indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBoostRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "workerId", Value: 1}, {Key: "endAt", Value: 1}}},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoBoostRepo) Create(ctx context.Context, b *models.ActiveBoost) error {
	b.CreatedAt = time.Now().UTC()
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert boost: %w", err)
	}
	return nil
}

func (r *MongoBoostRepo) ActiveForWorker(ctx context.Context, workerID string, now time.Time) ([]models.ActiveBoost, error) {
	filter := bson.M{
		"workerId": workerID,
		"status":   models.BoostActive,
		"startAt":  bson.M{"$lte": now},
		"endAt":    bson.M{"$gte": now},
	}
	cur, err := r.coll.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("active boost query failed: %w", err)
	}
	defer cur.Close(ctx)

	var boosts []models.ActiveBoost
	if err := cur.All(ctx, &boosts); err != nil {
		return nil, fmt.Errorf("failed to decode boosts: %w", err)
	}
	return boosts, nil
}

func (r *MongoBoostRepo) SetStatus(ctx context.Context, id, status string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return fmt.Errorf("failed to update boost %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("boost %s not found", id)
	}
	return nil
}
