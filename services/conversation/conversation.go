package conversation

import (
	"context"
	"fmt"
	"time"

	"serviq/database"
	"serviq/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// DefaultConversationService upserts worker-customer conversations.
// Message transport lives in the chat service; this core only owns the
// idempotent thread handle keyed on (bookingId, userId, workerId).
type DefaultConversationService struct {
	coll *mongo.Collection
}

func NewDefaultConversationService() *DefaultConversationService {
	s := &DefaultConversationService{coll: database.Collection("conversations")}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{
			{Key: "bookingId", Value: 1},
			{Key: "userId", Value: 1},
			{Key: "workerId", Value: 1},
		},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		fmt.Printf("failed to create conversation index: %v\n", err)
	}
	return s
}

// GetOrCreateConversation returns the conversation id for the triple,
// creating the thread on first use.
func (s *DefaultConversationService) GetOrCreateConversation(ctx context.Context, bookingID, userID, workerID string) (string, error) {
	filter := bson.M{"bookingId": bookingID, "userId": userID, "workerId": workerID}
	update := bson.M{
		"$setOnInsert": models.Conversation{
			ID:        uuid.New().String(),
			BookingID: bookingID,
			UserID:    userID,
			WorkerID:  workerID,
			CreatedAt: time.Now().UTC(),
		},
	}
	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)

	var conv models.Conversation
	if err := s.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conv); err != nil {
		return "", fmt.Errorf("conversation upsert failed: %w", err)
	}
	return conv.ID, nil
}
