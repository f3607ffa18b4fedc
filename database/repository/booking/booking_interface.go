package bookingRepo

import (
	"context"
	"errors"
	"time"

	"serviq/models"
)

var (
	// ErrNotFound is returned when no booking matches the given id.
	ErrNotFound = errors.New("booking not found")
	// ErrPreconditionFailed is returned when a conditional update did not
	// match the expected prior state: another writer got there first.
	ErrPreconditionFailed = errors.New("booking precondition failed")
)

// Snapshot is the prior state a conditional update is keyed on.
type Snapshot struct {
	Status   string
	WorkerID string
}

// StatusChange describes one state-machine commit. The update only
// applies while the booking is still in From.
type StatusChange struct {
	From string
	To   string
	Log  models.StatusLog

	// Set on entering completed.
	ReportWindowEnds *time.Time
	// Set on entering cancelled when a fee applies.
	CancellationFee *float64
}

// BookingRepository defines methods for booking data access. Every
// mutation is a single conditional document update; the filter encodes
// the expected prior state and a non-match reports ErrPreconditionFailed.
type BookingRepository interface {
	GetByID(ctx context.Context, id string) (*models.Booking, error)
	Create(ctx context.Context, b *models.Booking) error

	// CountActiveAtSlot counts non-terminal bookings held by the worker at
	// the exact slot. Always a fresh read, never served from a cache.
	CountActiveAtSlot(ctx context.Context, workerID string, slot time.Time, excludeBookingID string) (int64, error)

	// AssignIfUnassigned commits a manual assignment, conditional on the
	// booking still being confirmed and unassigned.
	AssignIfUnassigned(ctx context.Context, id, workerID, mode, reason string, log models.StatusLog) error

	// ReassignWorker moves the booking to a new worker, conditional on the
	// (status, workerId) snapshot captured at read time.
	ReassignWorker(ctx context.Context, id string, prev Snapshot, nextWorkerID, reason string, log models.StatusLog) error

	// Unassign reverts the booking to confirmed/unassigned and clears the
	// conversation link, conditional on the snapshot.
	Unassign(ctx context.Context, id string, prev Snapshot, log models.StatusLog) error

	// UpdateStatusIf commits a generic state-machine transition.
	UpdateStatusIf(ctx context.Context, id string, change StatusChange) error

	// UpdateSlot moves the booking to a new slot, conditional on the snapshot.
	UpdateSlot(ctx context.Context, id string, prev Snapshot, newSlot time.Time, log models.StatusLog) error

	// SetConversation links a conversation to the booking.
	SetConversation(ctx context.Context, id, conversationID string) error

	// AppendRescheduleLog records an immutable slot-change audit entry.
	AppendRescheduleLog(ctx context.Context, rl *models.RescheduleLog) error
}
