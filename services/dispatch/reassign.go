package dispatch

import (
	"context"
	"errors"
	"fmt"

	bookingRepo "serviq/database/repository/booking"
	"serviq/models"

	"go.uber.org/zap"
)

// ReassignResult reports the outcome of an AutoReassign call.
type ReassignResult struct {
	Reassigned       bool   `json:"reassigned"`
	PreviousWorkerID string `json:"previousWorkerId,omitempty"`
	NextWorkerID     string `json:"nextWorkerId,omitempty"`
}

func reassignable(status string) bool {
	switch status {
	case models.StatusConfirmed, models.StatusAssigned, models.StatusOnWay:
		return true
	}
	return false
}

// AutoReassign moves a booking off its current worker: it matches a
// replacement excluding the previous worker and commits the change with
// the same conditional-update discipline as manual acceptance, keyed on
// the (status, workerId) snapshot captured at read time. On a lost race
// it re-reads and re-matches up to Cfg.MatchRetries times.
//
// When no candidate exists: with allowUnassign the booking reverts to
// confirmed/unassigned and operators are notified for manual follow-up;
// without it the call fails with ErrNoCandidateFound and nothing is
// mutated.
func (e *Engine) AutoReassign(ctx context.Context, bookingID string, actor Actor, reason string, allowUnassign bool) (*ReassignResult, error) {
	b, err := e.Bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		if !reassignable(b.Status) {
			return nil, fmt.Errorf("%w: status %s", ErrNotReassignable, b.Status)
		}
		prev := bookingRepo.Snapshot{Status: b.Status, WorkerID: b.WorkerID}
		now := e.now()

		var exclude []string
		if prev.WorkerID != "" {
			exclude = []string{prev.WorkerID}
		}
		cand, err := e.FindBestWorker(ctx, b.Category, b.Address.City, b.Address.Pincode, b.SlotTime, exclude)
		if err != nil {
			return nil, err
		}

		if cand == nil {
			if !allowUnassign {
				return nil, ErrNoCandidateFound
			}
			if prev.WorkerID == "" && prev.Status == models.StatusConfirmed {
				// Already unassigned; nothing to revert, just flag it.
				e.emitNoCandidate(ctx, b, actor, "")
				return &ReassignResult{Reassigned: false}, nil
			}
			log := models.StatusLog{
				Status:    models.StatusConfirmed,
				ActorRole: actor.Role,
				ActorID:   actor.ID,
				Note:      "no replacement worker found: " + reason,
				At:        now,
			}
			if err := e.Bookings.Unassign(ctx, b.ID, prev, log); err != nil {
				if errors.Is(err, ErrPreconditionFailed) && attempt < e.Cfg.MatchRetries {
					if b, err = e.Bookings.GetByID(ctx, bookingID); err != nil {
						return nil, err
					}
					continue
				}
				return nil, err
			}
			e.emitNoCandidate(ctx, b, actor, prev.WorkerID)
			return &ReassignResult{Reassigned: false, PreviousWorkerID: prev.WorkerID}, nil
		}

		assignmentReason := fmt.Sprintf("auto-reassign (score %.2f): %s", cand.Score, reason)
		log := models.StatusLog{
			Status:    models.StatusAssigned,
			ActorRole: actor.Role,
			ActorID:   actor.ID,
			Note:      assignmentReason,
			At:        now,
		}
		if err := e.Bookings.ReassignWorker(ctx, b.ID, prev, cand.Worker.ID, assignmentReason, log); err != nil {
			if errors.Is(err, ErrPreconditionFailed) && attempt < e.Cfg.MatchRetries {
				e.Logger.Info("reassignment lost the race, retrying against fresh state",
					zap.String("bookingId", bookingID))
				if b, err = e.Bookings.GetByID(ctx, bookingID); err != nil {
					return nil, err
				}
				continue
			}
			return nil, err
		}

		events := []Event{
			{Conversation: &ConversationEvent{BookingID: b.ID, UserID: b.UserID, WorkerID: cand.Worker.ID}},
			{Notify: &NotifyEvent{
				UserID: cand.Worker.ID, Role: "worker", Type: "job_assigned",
				Title: "New job assigned",
				Body:  fmt.Sprintf("%s in %s", b.Category, b.Address.City),
				Href:  "/worker/bookings/" + b.ID,
			}},
			{Notify: &NotifyEvent{
				UserID: b.UserID, Role: "customer", Type: "worker_reassigned",
				Title: "Worker reassigned",
				Body:  cand.Worker.Name + " will now handle your booking",
				Href:  "/bookings/" + b.ID,
			}},
			{Audit: &AuditEvent{
				Actor: actor, Action: "booking.reassign.auto",
				TargetType: "booking", TargetID: b.ID,
				Metadata: map[string]string{
					"previousWorkerId": prev.WorkerID,
					"nextWorkerId":     cand.Worker.ID,
					"score":            fmt.Sprintf("%.2f", cand.Score),
				},
			}},
		}
		if prev.WorkerID != "" {
			events = append(events, Event{Notify: &NotifyEvent{
				UserID: prev.WorkerID, Role: "worker", Type: "job_removed",
				Title: "Job removed",
				Body:  "Booking " + b.ID + " has been reassigned",
				Href:  "/worker/bookings",
			}})
		}
		e.emit(ctx, events)

		return &ReassignResult{
			Reassigned:       true,
			PreviousWorkerID: prev.WorkerID,
			NextWorkerID:     cand.Worker.ID,
		}, nil
	}
}

func (e *Engine) emitNoCandidate(ctx context.Context, b *models.Booking, actor Actor, prevWorkerID string) {
	events := []Event{
		{Notify: &NotifyEvent{
			UserID: b.UserID, Role: "customer", Type: "worker_search_continues",
			Title: "Finding you a new worker",
			Body:  "We are still searching for a worker for booking " + b.ID,
			Href:  "/bookings/" + b.ID,
		}},
		{Notify: &NotifyEvent{
			UserID: OperatorsInbox, Role: "admin", Type: "reassign_failed",
			Title: "Manual follow-up needed",
			Body:  "No replacement worker found for booking " + b.ID,
			Href:  "/admin/bookings/" + b.ID,
		}},
		{Audit: &AuditEvent{
			Actor: actor, Action: "booking.reassign.unassigned",
			TargetType: "booking", TargetID: b.ID,
			Metadata: map[string]string{"previousWorkerId": prevWorkerID},
		}},
	}
	if prevWorkerID != "" {
		events = append(events, Event{Notify: &NotifyEvent{
			UserID: prevWorkerID, Role: "worker", Type: "job_removed",
			Title: "Job removed",
			Body:  "Booking " + b.ID + " is back in search",
			Href:  "/worker/bookings",
		}})
	}
	e.emit(ctx, events)
}
