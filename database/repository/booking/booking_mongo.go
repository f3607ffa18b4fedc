package bookingRepo

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

// MongoBookingRepo implements BookingRepository using MongoDB.
type MongoBookingRepo struct {
	coll        *mongo.Collection
	reschedColl *mongo.Collection
}

// NewMongoBookingRepo creates a new instance of BookingRepository using MongoDB.
func NewMongoBookingRepo() BookingRepository {
	repo := &MongoBookingRepo{
		coll:        database.Collection("bookings"),
		reschedColl: database.Collection("reschedule_logs"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create booking indexes: %v\n", err)
	}
	return repo
}

func (r *MongoBookingRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		// Backs the slot-conflict read.
		{Keys: bson.D{{Key: "workerId", Value: 1}, {Key: "slotTime", Value: 1}, {Key: "status", Value: 1}}},
	}

	_, err := r.coll.Indexes().CreateMany(ctx, indexModels)
	if err != nil {
		return fmt.Errorf("failed to create indexes: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) GetByID(ctx context.Context, id string) (*models.Booking, error) {
	var b models.Booking
	if err := r.coll.FindOne(ctx, bson.M{"id": id}).Decode(&b); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch booking %s: %w", id, err)
	}
	return &b, nil
}

func (r *MongoBookingRepo) Create(ctx context.Context, b *models.Booking) error {
	now := time.Now().UTC()
	b.CreatedAt = now
	b.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, b); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *MongoBookingRepo) CountActiveAtSlot(ctx context.Context, workerID string, slot time.Time, excludeBookingID string) (int64, error) {
	filter := bson.M{
		"workerId": workerID,
		"slotTime": slot.UTC().Truncate(time.Minute),
		"status":   bson.M{"$in": models.NonTerminalStatuses},
	}
	if excludeBookingID != "" {
		filter["id"] = bson.M{"$ne": excludeBookingID}
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("slot conflict count failed: %w", err)
	}
	return n, nil
}

func (r *MongoBookingRepo) SetConversation(ctx context.Context, id, conversationID string) error {
	res, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{
		"$set": bson.M{"conversationId": conversationID, "updatedAt": time.Now().UTC()},
	})
	if err != nil {
		return fmt.Errorf("failed to link conversation on booking %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoBookingRepo) AppendRescheduleLog(ctx context.Context, rl *models.RescheduleLog) error {
	rl.CreatedAt = time.Now().UTC()
	if _, err := r.reschedColl.InsertOne(ctx, rl); err != nil {
		return fmt.Errorf("failed to insert reschedule log: %w", err)
	}
	return nil
}
