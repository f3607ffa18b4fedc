package dispatch

import (
	"errors"
	"fmt"

	bookingRepo "serviq/database/repository/booking"
)

// ErrPreconditionFailed surfaces a lost conditional-update race. Callers
// should retry or tell the user the booking was already taken.
var ErrPreconditionFailed = bookingRepo.ErrPreconditionFailed

// ErrNoCandidateFound means matching produced an empty set. Soft unless
// the caller forbids unassigning.
var ErrNoCandidateFound = errors.New("no eligible worker found")

// ErrNotReassignable rejects reassignment of working or terminal bookings.
var ErrNotReassignable = errors.New("booking is not in a reassignable status")

// ErrNotReschedulable rejects slot changes outside confirmed/assigned.
var ErrNotReschedulable = errors.New("booking is not in a reschedulable status")

// ErrWorkerUnavailable rejects a manual assignment to a worker whose
// calendar does not cover the booking slot.
var ErrWorkerUnavailable = errors.New("worker is not available at the requested slot")

// ErrSlotConflict rejects an assignment that would give the worker two
// non-terminal bookings at the same slot.
var ErrSlotConflict = errors.New("worker already holds a booking at this slot")

// InvalidTransitionError names the attempted from -> to pair.
type InvalidTransitionError struct {
	From string
	To   string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition: %s -> %s", e.From, e.To)
}
