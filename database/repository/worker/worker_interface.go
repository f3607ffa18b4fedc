package workerRepo

import (
	"context"
	"errors"

	"serviq/models"
)

// ErrNotFound is returned when no worker matches the given id.
var ErrNotFound = errors.New("worker not found")

// EligibleCriteria defines the eligibility predicate for dispatch-time
// candidate queries. City matching is case-insensitive; a worker matches
// the area when either the city or the pincode matches.
type EligibleCriteria struct {
	Category string
	City     string
	Pincode  string
}

// WorkerRepository defines methods for worker data access.
type WorkerRepository interface {
	// GetByID retrieves a worker by its unique ID.
	GetByID(ctx context.Context, id string) (*models.WorkerProfile, error)
	// Create inserts a new worker record.
	Create(ctx context.Context, w *models.WorkerProfile) error
	// Eligible returns approved, fee-paid, online workers covering the
	// given category and area.
	Eligible(ctx context.Context, crit EligibleCriteria) ([]models.WorkerProfile, error)
	// UpdateCalendar replaces the worker's availability calendar.
	UpdateCalendar(ctx context.Context, id string, cal models.AvailabilityCalendar) error
	// SetOnline flips the worker's presence flag.
	SetOnline(ctx context.Context, id string, online bool) error
	// CreditEarnings atomically adds a payout amount to the worker's balance.
	CreditEarnings(ctx context.Context, id string, amount float64) error
}
