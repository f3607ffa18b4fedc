package models

import "time"

// Booking statuses. Completed and cancelled are terminal.
const (
	StatusConfirmed = "confirmed"
	StatusAssigned  = "assigned"
	StatusOnWay     = "onway"
	StatusWorking   = "working"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Assignment modes.
const (
	AssignmentAuto   = "auto"
	AssignmentManual = "manual"
)

// Address is the service delivery location.
type Address struct {
	Line1    string `bson:"line1" json:"line1"`
	Line2    string `bson:"line2,omitempty" json:"line2,omitempty"`
	City     string `bson:"city" json:"city"`
	Pincode  string `bson:"pincode" json:"pincode"`
	Landmark string `bson:"landmark,omitempty" json:"landmark,omitempty"`
}

// StatusLog is one append-only audit entry on a booking. Entries are
// never rewritten or reordered.
type StatusLog struct {
	Status    string    `bson:"status" json:"status"`
	ActorRole string    `bson:"actorRole" json:"actorRole"`
	ActorID   string    `bson:"actorId" json:"actorId"`
	Note      string    `bson:"note,omitempty" json:"note,omitempty"`
	At        time.Time `bson:"at" json:"at"`
}

// Booking is the dispatch unit. Created on booking request, mutated only
// through the state machine, never deleted.
type Booking struct {
	ID               string      `bson:"id" json:"id"`
	UserID           string      `bson:"userId" json:"userId"`
	WorkerID         string      `bson:"workerId" json:"workerId"` // empty = unassigned
	ServiceID        string      `bson:"serviceId" json:"serviceId"`
	Category         string      `bson:"category" json:"category"`
	Address          Address     `bson:"address" json:"address"`
	SlotTime         time.Time   `bson:"slotTime" json:"slotTime"` // single instant, exclusive per worker
	Status           string      `bson:"status" json:"status"`
	AssignmentMode   string      `bson:"assignmentMode,omitempty" json:"assignmentMode,omitempty"`
	AssignmentReason string      `bson:"assignmentReason,omitempty" json:"assignmentReason,omitempty"`
	StatusLogs       []StatusLog `bson:"statusLogs" json:"statusLogs"`
	ConversationID   string      `bson:"conversationId,omitempty" json:"conversationId,omitempty"`
	TotalPrice       float64     `bson:"totalPrice" json:"totalPrice"`
	PaymentMethod    string      `bson:"paymentMethod,omitempty" json:"paymentMethod,omitempty"`
	CancellationFee  float64     `bson:"cancellationFee,omitempty" json:"cancellationFee,omitempty"`
	RebookOf         string      `bson:"rebookOf,omitempty" json:"rebookOf,omitempty"` // source booking id when this is a rebook
	ReportWindowEnds *time.Time  `bson:"reportWindowEnds,omitempty" json:"reportWindowEnds,omitempty"`
	CreatedAt        time.Time   `bson:"createdAt" json:"createdAt"`
	UpdatedAt        time.Time   `bson:"updatedAt" json:"updatedAt"`
}

// IsTerminal reports whether a status has no outgoing transitions.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusCancelled
}

// NonTerminalStatuses are the statuses that count for slot-conflict checks.
var NonTerminalStatuses = []string{StatusConfirmed, StatusAssigned, StatusOnWay, StatusWorking}

// RescheduleLog is an immutable audit record of a slot change.
type RescheduleLog struct {
	ID        string    `bson:"id" json:"id"`
	BookingID string    `bson:"bookingId" json:"bookingId"`
	OldSlot   time.Time `bson:"oldSlot" json:"oldSlot"`
	NewSlot   time.Time `bson:"newSlot" json:"newSlot"`
	Fee       float64   `bson:"fee" json:"fee"`
	PaidBy    string    `bson:"paidBy" json:"paidBy"`
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
}
