package dispatch

import (
	"context"

	bookingRepo "serviq/database/repository/booking"
	workerRepo "serviq/database/repository/worker"

	"go.uber.org/zap"
)

// Actor identifies who initiated an operation.
type Actor struct {
	ID   string
	Role string // customer | worker | admin | system
}

// OperatorsInbox receives platform-operator notifications when automatic
// reassignment cannot find a replacement.
const OperatorsInbox = "platform-ops"

// NotifyEvent is a pending fire-and-forget notification.
type NotifyEvent struct {
	UserID string
	Role   string
	Type   string
	Title  string
	Body   string
	Href   string
	Meta   map[string]string
}

// AuditEvent is a pending best-effort audit log write.
type AuditEvent struct {
	Actor      Actor
	Action     string
	TargetType string
	TargetID   string
	Metadata   map[string]string
}

// PayoutEvent credits a worker's earnings balance.
type PayoutEvent struct {
	WorkerID string
	Amount   float64
}

// ConversationEvent links (or relinks) the booking's conversation.
type ConversationEvent struct {
	BookingID string
	UserID    string
	WorkerID  string
}

// Event is one side effect decided by the state machine or the
// reassignment engine. Transitions return event lists instead of calling
// collaborators, so the decision core stays testable in isolation.
type Event struct {
	Notify       *NotifyEvent
	Audit        *AuditEvent
	Payout       *PayoutEvent
	Conversation *ConversationEvent
}

// EffectSink applies a decided event list. Failures never roll back the
// dispatch decision that produced the events.
type EffectSink interface {
	Dispatch(ctx context.Context, events []Event)
}

// Notifier is the external notification collaborator.
type Notifier interface {
	Notify(ctx context.Context, userID, role, typ, title, body, href string, meta map[string]string) error
}

// AuditSink is the external audit log collaborator.
type AuditSink interface {
	WriteAuditLog(ctx context.Context, actorID, actorRole, action, targetType, targetID string, metadata map[string]string) error
}

// ConversationService is the external conversation collaborator. The
// upsert is idempotent on the (bookingID, userID, workerID) triple.
type ConversationService interface {
	GetOrCreateConversation(ctx context.Context, bookingID, userID, workerID string) (string, error)
}

// PricingService supplies cancellation and reschedule fees. Fee policy is
// computed outside this core.
type PricingService interface {
	CancellationFee(status string, totalPrice float64) float64
	RescheduleFee(oldSlotToNewSlotHours float64) float64
}

// EffectDispatcher is the production EffectSink: it fans events out to
// the notification, audit and conversation collaborators and applies
// payout credits. Every effect is best-effort.
type EffectDispatcher struct {
	Notifier      Notifier
	Audit         AuditSink
	Conversations ConversationService
	Workers       workerRepo.WorkerRepository
	Bookings      bookingRepo.BookingRepository
	Logger        *zap.Logger
}

func (d *EffectDispatcher) Dispatch(ctx context.Context, events []Event) {
	for _, ev := range events {
		switch {
		case ev.Notify != nil && d.Notifier != nil:
			n := ev.Notify
			if err := d.Notifier.Notify(ctx, n.UserID, n.Role, n.Type, n.Title, n.Body, n.Href, n.Meta); err != nil {
				d.Logger.Warn("notification delivery failed",
					zap.String("userId", n.UserID), zap.String("type", n.Type), zap.Error(err))
			}
		case ev.Audit != nil && d.Audit != nil:
			a := ev.Audit
			if err := d.Audit.WriteAuditLog(ctx, a.Actor.ID, a.Actor.Role, a.Action, a.TargetType, a.TargetID, a.Metadata); err != nil {
				d.Logger.Warn("audit write failed", zap.String("action", a.Action), zap.Error(err))
			}
		case ev.Payout != nil:
			p := ev.Payout
			if err := d.Workers.CreditEarnings(ctx, p.WorkerID, p.Amount); err != nil {
				d.Logger.Error("payout credit failed",
					zap.String("workerId", p.WorkerID), zap.Float64("amount", p.Amount), zap.Error(err))
			}
		case ev.Conversation != nil && d.Conversations != nil:
			cv := ev.Conversation
			convID, err := d.Conversations.GetOrCreateConversation(ctx, cv.BookingID, cv.UserID, cv.WorkerID)
			if err != nil {
				d.Logger.Warn("conversation upsert failed", zap.String("bookingId", cv.BookingID), zap.Error(err))
				continue
			}
			if err := d.Bookings.SetConversation(ctx, cv.BookingID, convID); err != nil {
				d.Logger.Warn("conversation link failed", zap.String("bookingId", cv.BookingID), zap.Error(err))
			}
		}
	}
}
