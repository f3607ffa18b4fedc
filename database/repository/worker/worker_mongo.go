package workerRepo

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

// MongoWorkerRepo implements WorkerRepository using MongoDB.
type MongoWorkerRepo struct {
	coll *mongo.Collection
}

// NewMongoWorkerRepo creates a new instance of WorkerRepository using MongoDB.
func NewMongoWorkerRepo() WorkerRepository {
	coll := database.Collection("workers")
	repo := &MongoWorkerRepo{coll: coll}

	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create worker indexes: %v\n", err)
	}
	return repo
}

func newContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// ensureIndexes creates indexes for fields used by the eligibility query.
func (r *MongoWorkerRepo) ensureIndexes() error {
	ctx, cancel := newContext(10 * time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "categories", Value: 1}}},
		{Keys: bson.D{{Key: "serviceAreas.city", Value: 1}}},
		{Keys: bson.D{{Key: "serviceAreas.pincode", Value: 1}}},
		{Keys: bson.D{{Key: "verificationStatus", Value: 1}, {Key: "isOnline", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoWorkerRepo) GetByID(ctx context.Context, id string) (*models.WorkerProfile, error) {
	var w models.WorkerProfile
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&w); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch worker %s: %w", id, err)
	}
	return &w, nil
}

func (r *MongoWorkerRepo) Create(ctx context.Context, w *models.WorkerProfile) error {
	now := time.Now().UTC()
	w.CreatedAt = now
	w.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, w); err != nil {
		return fmt.Errorf("failed to insert worker: %w", err)
	}
	return nil
}

func (r *MongoWorkerRepo) UpdateCalendar(ctx context.Context, id string, cal models.AvailabilityCalendar) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{
			"availabilityCalendar": cal,
			"updatedAt":            time.Now().UTC(),
		},
	})
	if err != nil {
		return fmt.Errorf("failed to update calendar for worker %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoWorkerRepo) SetOnline(ctx context.Context, id string, online bool) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"isOnline": online, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to set presence for worker %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoWorkerRepo) CreditEarnings(ctx context.Context, id string, amount float64) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$inc": bson.M{"earningsBalance": amount},
		"$set": bson.M{"updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to credit earnings for worker %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
