package audit

import (
	"context"
	"fmt"
	"time"

	"serviq/database"
	"serviq/models"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"
)

// DefaultAuditService appends operational audit records. Best-effort:
// callers log and continue on failure.
type DefaultAuditService struct {
	coll *mongo.Collection
}

func NewDefaultAuditService() *DefaultAuditService {
	return &DefaultAuditService{coll: database.Collection("audit_logs")}
}

func (s *DefaultAuditService) WriteAuditLog(ctx context.Context, actorID, actorRole, action, targetType, targetID string, metadata map[string]string) error {
	entry := models.AuditLog{
		ID:         uuid.New().String(),
		ActorID:    actorID,
		ActorRole:  actorRole,
		Action:     action,
		TargetType: targetType,
		TargetID:   targetID,
		Metadata:   metadata,
		CreatedAt:  time.Now().UTC(),
	}
	if _, err := s.coll.InsertOne(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}
