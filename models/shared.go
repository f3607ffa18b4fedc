package models

import (
	"strings"
	"time"
)

func equalFold(a, b string) bool {
	return strings.EqualFold(a, b)
}

// Notification is a persisted user-facing notification. Delivery (push)
// is best-effort on top of the stored record.
type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"userId" json:"userId"`
	Role      string            `bson:"role" json:"role"` // customer | worker | admin
	Type      string            `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Body      string            `bson:"body" json:"body"`
	Href      string            `bson:"href,omitempty" json:"href,omitempty"`
	Meta      map[string]string `bson:"meta,omitempty" json:"meta,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}

// Conversation links a customer and a worker around one booking.
// Upserts are idempotent on the (bookingId, userId, workerId) triple.
type Conversation struct {
	ID        string    `bson:"id" json:"id"`
	BookingID string    `bson:"bookingId" json:"bookingId"`
	UserID    string    `bson:"userId" json:"userId"`
	WorkerID  string    `bson:"workerId" json:"workerId"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}

// AuditLog is one append-only operational audit record.
type AuditLog struct {
	ID         string            `bson:"id" json:"id"`
	ActorID    string            `bson:"actorId" json:"actorId"`
	ActorRole  string            `bson:"actorRole" json:"actorRole"`
	Action     string            `bson:"action" json:"action"`
	TargetType string            `bson:"targetType" json:"targetType"`
	TargetID   string            `bson:"targetId" json:"targetId"`
	Metadata   map[string]string `bson:"metadata,omitempty" json:"metadata,omitempty"`
	CreatedAt  time.Time         `bson:"createdAt" json:"createdAt"`
}
