package notification

import (
	"context"
	"fmt"
	"time"

	"serviq/database"
	workerRepo "serviq/database/repository/worker"
	"serviq/models"
	"serviq/utils"

	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// NotificationService persists notifications and pushes them over FCM.
// Push delivery is best-effort: a failed push never fails the caller.
type NotificationService interface {
	Notify(ctx context.Context, userID, role, typ, title, body, href string, meta map[string]string) error
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	coll    *mongo.Collection
	workers workerRepo.WorkerRepository
	logger  *zap.Logger
}

func NewDefaultNotificationService(workers workerRepo.WorkerRepository, logger *zap.Logger) *DefaultNotificationService {
	return &DefaultNotificationService{
		coll:    database.Collection("notifications"),
		workers: workers,
		logger:  logger,
	}
}

// Notify stores the notification and, for workers with an FCM token,
// sends a push.
func (s *DefaultNotificationService) Notify(ctx context.Context, userID, role, typ, title, body, href string, meta map[string]string) error {
	n := models.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Role:      role,
		Type:      typ,
		Title:     title,
		Body:      body,
		Href:      href,
		Meta:      meta,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, n); err != nil {
		return fmt.Errorf("failed to persist notification: %w", err)
	}

	if role == "worker" {
		s.pushToWorker(ctx, userID, title, body, meta)
	}
	return nil
}

func (s *DefaultNotificationService) pushToWorker(ctx context.Context, workerID, title, body string, meta map[string]string) {
	if utils.FCMClient == nil {
		return
	}
	w, err := s.workers.GetByID(ctx, workerID)
	if err != nil || w.FCMToken == "" {
		return
	}
	msg := &messaging.Message{
		Token: w.FCMToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: meta,
		Android: &messaging.AndroidConfig{
			Priority: "high",
		},
	}
	if _, err := utils.FCMClient.Send(ctx, msg); err != nil {
		s.logger.Warn("FCM push failed", zap.String("workerId", workerID), zap.Error(err))
	}
}
