package dispatch

import (
	"context"
	"fmt"
	"math"
	"time"

	bookingRepo "serviq/database/repository/booking"
	"serviq/models"
)

// transitions is the legal adjacency list of the booking state machine.
var transitions = map[string][]string{
	models.StatusConfirmed: {models.StatusAssigned, models.StatusCancelled},
	models.StatusAssigned:  {models.StatusOnWay, models.StatusCancelled},
	models.StatusOnWay:     {models.StatusWorking, models.StatusCancelled},
	models.StatusWorking:   {models.StatusCompleted, models.StatusCancelled},
	models.StatusCompleted: {},
	models.StatusCancelled: {},
}

// CanTransition reports whether from -> to is in the adjacency list.
func CanTransition(from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// decideTransition validates a transition and produces the conditional
// store update plus the side-effect events. It touches no collaborator:
// the fee for a cancellation is computed by the caller and passed in.
func decideTransition(b *models.Booking, target string, actor Actor, note string, now time.Time, cancellationFee float64, cfg Config) (bookingRepo.StatusChange, []Event, error) {
	if !CanTransition(b.Status, target) {
		return bookingRepo.StatusChange{}, nil, &InvalidTransitionError{From: b.Status, To: target}
	}

	change := bookingRepo.StatusChange{
		From: b.Status,
		To:   target,
		Log: models.StatusLog{
			Status:    target,
			ActorRole: actor.Role,
			ActorID:   actor.ID,
			Note:      note,
			At:        now,
		},
	}

	var events []Event
	events = append(events, Event{Audit: &AuditEvent{
		Actor:      actor,
		Action:     "booking." + target,
		TargetType: "booking",
		TargetID:   b.ID,
		Metadata:   map[string]string{"from": b.Status, "to": target},
	}})

	switch target {
	case models.StatusCompleted:
		// The engine owns the completion side effects: the worker payout
		// credit and the time-boxed report window.
		payout := round2(b.TotalPrice * (1 - cfg.PlatformFeePct/100))
		reportEnds := now.AddDate(0, 0, cfg.ReportWindowDays)
		change.ReportWindowEnds = &reportEnds
		if b.WorkerID != "" && payout > 0 {
			events = append(events, Event{Payout: &PayoutEvent{WorkerID: b.WorkerID, Amount: payout}})
			events = append(events, Event{Notify: &NotifyEvent{
				UserID: b.WorkerID,
				Role:   "worker",
				Type:   "payout_credited",
				Title:  "Payout credited",
				Body:   fmt.Sprintf("₹%.2f credited for booking %s", payout, b.ID),
				Href:   "/worker/bookings/" + b.ID,
			}})
		}
		events = append(events, Event{Notify: &NotifyEvent{
			UserID: b.UserID,
			Role:   "customer",
			Type:   "booking_completed",
			Title:  "Service completed",
			Body:   "Your booking is complete. You can report an issue until " + reportEnds.Format("Jan 2"),
			Href:   "/bookings/" + b.ID,
		}})

	case models.StatusCancelled:
		if cancellationFee > 0 {
			fee := round2(cancellationFee)
			change.CancellationFee = &fee
		}
		events = append(events, Event{Notify: &NotifyEvent{
			UserID: b.UserID,
			Role:   "customer",
			Type:   "booking_cancelled",
			Title:  "Booking cancelled",
			Body:   "Booking " + b.ID + " has been cancelled",
			Href:   "/bookings/" + b.ID,
		}})
		if b.WorkerID != "" {
			events = append(events, Event{Notify: &NotifyEvent{
				UserID: b.WorkerID,
				Role:   "worker",
				Type:   "job_cancelled",
				Title:  "Job cancelled",
				Body:   "Booking " + b.ID + " was cancelled",
				Href:   "/worker/bookings/" + b.ID,
			}})
		}
	}

	return change, events, nil
}

// Transition advances a booking to the target status. Illegal transitions
// are rejected naming the attempted pair; an accepted transition appends
// exactly one immutable status log entry.
func (e *Engine) Transition(ctx context.Context, bookingID, target string, actor Actor, note string) (*models.Booking, error) {
	b, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	now := e.now()

	var fee float64
	if target == models.StatusCancelled && e.Pricing != nil {
		fee = e.Pricing.CancellationFee(b.Status, b.TotalPrice)
	}

	change, events, err := decideTransition(b, target, actor, note, now, fee, e.Cfg)
	if err != nil {
		return nil, err
	}
	if err := e.Bookings.UpdateStatusIf(ctx, bookingID, change); err != nil {
		return nil, err
	}
	e.emit(ctx, events)
	return e.Bookings.GetByID(ctx, bookingID)
}

// ManualAssign commits a manual assignment (admin action or worker
// self-accept). Only legal while the booking is confirmed and unassigned;
// the write is an atomic conditional update so that of two concurrent
// acceptance attempts exactly one wins and the loser observes
// ErrPreconditionFailed.
func (e *Engine) ManualAssign(ctx context.Context, bookingID, workerID string, actor Actor) (*models.Booking, error) {
	b, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusConfirmed {
		return nil, &InvalidTransitionError{From: b.Status, To: models.StatusAssigned}
	}
	if b.WorkerID != "" {
		return nil, fmt.Errorf("%w: already assigned to %s", ErrPreconditionFailed, b.WorkerID)
	}

	w, err := e.Workers.GetByID(ctx, workerID)
	if err != nil {
		return nil, err
	}
	now := e.now()
	if !IsAvailable(w.Calendar, b.SlotTime, now, e.Cfg.AlwaysOpen) {
		return nil, ErrWorkerUnavailable
	}
	conflicts, err := e.Bookings.CountActiveAtSlot(ctx, w.ID, b.SlotTime, b.ID)
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		return nil, ErrSlotConflict
	}

	log := models.StatusLog{
		Status:    models.StatusAssigned,
		ActorRole: actor.Role,
		ActorID:   actor.ID,
		Note:      "manual assignment",
		At:        now,
	}
	if err := e.Bookings.AssignIfUnassigned(ctx, b.ID, w.ID, models.AssignmentManual, "manual", log); err != nil {
		return nil, err
	}

	e.emit(ctx, []Event{
		{Conversation: &ConversationEvent{BookingID: b.ID, UserID: b.UserID, WorkerID: w.ID}},
		{Notify: &NotifyEvent{
			UserID: w.ID, Role: "worker", Type: "job_assigned",
			Title: "New job assigned",
			Body:  fmt.Sprintf("%s at %s", b.Category, b.SlotTime.Format(time.RFC1123)),
			Href:  "/worker/bookings/" + b.ID,
		}},
		{Notify: &NotifyEvent{
			UserID: b.UserID, Role: "customer", Type: "worker_assigned",
			Title: "Worker assigned",
			Body:  w.Name + " will handle your booking",
			Href:  "/bookings/" + b.ID,
		}},
		{Audit: &AuditEvent{
			Actor: actor, Action: "booking.assign.manual",
			TargetType: "booking", TargetID: b.ID,
			Metadata: map[string]string{"workerId": w.ID},
		}},
	})

	return e.Bookings.GetByID(ctx, bookingID)
}

// Reschedule moves a confirmed or assigned booking to a new slot, records
// the immutable reschedule log and charges the fee supplied by the
// pricing collaborator.
func (e *Engine) Reschedule(ctx context.Context, bookingID string, newSlot time.Time, actor Actor) (*models.Booking, error) {
	b, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status != models.StatusConfirmed && b.Status != models.StatusAssigned {
		return nil, fmt.Errorf("%w: status %s", ErrNotReschedulable, b.Status)
	}
	now := e.now()
	newSlot = newSlot.UTC().Truncate(time.Minute)

	if b.WorkerID != "" {
		w, err := e.Workers.GetByID(ctx, b.WorkerID)
		if err != nil {
			return nil, err
		}
		if !IsAvailable(w.Calendar, newSlot, now, e.Cfg.AlwaysOpen) {
			return nil, ErrWorkerUnavailable
		}
		conflicts, err := e.Bookings.CountActiveAtSlot(ctx, b.WorkerID, newSlot, b.ID)
		if err != nil {
			return nil, err
		}
		if conflicts > 0 {
			return nil, ErrSlotConflict
		}
	}

	var fee float64
	if e.Pricing != nil {
		fee = e.Pricing.RescheduleFee(newSlot.Sub(b.SlotTime).Hours())
	}

	log := models.StatusLog{
		Status:    b.Status,
		ActorRole: actor.Role,
		ActorID:   actor.ID,
		Note:      fmt.Sprintf("rescheduled to %s", newSlot.Format(time.RFC3339)),
		At:        now,
	}
	prev := bookingRepo.Snapshot{Status: b.Status, WorkerID: b.WorkerID}
	if err := e.Bookings.UpdateSlot(ctx, b.ID, prev, newSlot, log); err != nil {
		return nil, err
	}

	rl := &models.RescheduleLog{
		ID:        b.ID + ":" + fmt.Sprintf("%d", now.Unix()),
		BookingID: b.ID,
		OldSlot:   b.SlotTime,
		NewSlot:   newSlot,
		Fee:       round2(fee),
		PaidBy:    actor.Role,
	}
	if err := e.Bookings.AppendRescheduleLog(ctx, rl); err != nil {
		e.Logger.Warn("reschedule log write failed: " + err.Error())
	}

	events := []Event{
		{Audit: &AuditEvent{
			Actor: actor, Action: "booking.reschedule",
			TargetType: "booking", TargetID: b.ID,
			Metadata: map[string]string{
				"oldSlot": b.SlotTime.Format(time.RFC3339),
				"newSlot": newSlot.Format(time.RFC3339),
			},
		}},
		{Notify: &NotifyEvent{
			UserID: b.UserID, Role: "customer", Type: "booking_rescheduled",
			Title: "Booking rescheduled",
			Body:  "New slot: " + newSlot.Format(time.RFC1123),
			Href:  "/bookings/" + b.ID,
		}},
	}
	if b.WorkerID != "" {
		events = append(events, Event{Notify: &NotifyEvent{
			UserID: b.WorkerID, Role: "worker", Type: "job_rescheduled",
			Title: "Job rescheduled",
			Body:  "New slot: " + newSlot.Format(time.RFC1123),
			Href:  "/worker/bookings/" + b.ID,
		}})
	}
	e.emit(ctx, events)

	return e.Bookings.GetByID(ctx, bookingID)
}
