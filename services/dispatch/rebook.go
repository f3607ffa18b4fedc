package dispatch

import (
	"context"
	"errors"
	"strings"
	"time"

	workerRepo "serviq/database/repository/worker"
	"serviq/models"
)

// Typed reason codes for rebook rejection.
const (
	ReasonSourceStatusNotAllowed = "SOURCE_STATUS_NOT_ALLOWED"
	ReasonSourceSlotInvalid      = "SOURCE_SLOT_INVALID"
	ReasonSourceTooOld           = "SOURCE_TOO_OLD"
	ReasonMissingService         = "MISSING_SERVICE"
	ReasonAddressIncomplete      = "ADDRESS_INCOMPLETE"
)

// Non-blocking warning codes.
const (
	WarnSourceAgeHigh         = "SOURCE_AGE_WARNING"
	WarnMissingPreviousWorker = "MISSING_PREVIOUS_WORKER"
	WarnPaymentMethod         = "PAYMENT_METHOD_UNSUPPORTED"
	WarnChainedRebook         = "CHAINED_REBOOK"
)

// Same-worker availability reasons.
const (
	SameWorkerNotFound    = "WORKER_NOT_FOUND"
	SameWorkerIneligible  = "WORKER_NO_LONGER_ELIGIBLE"
	SameWorkerUnavailable = "SLOT_UNAVAILABLE"
	SameWorkerConflict    = "SLOT_CONFLICT"
)

// Payment methods that may not support instant rebook.
var instantRebookUnsupported = map[string]bool{
	"cod":    true,
	"wallet": true,
}

// RebookReport is the eligibility verdict for recreating a past booking.
type RebookReport struct {
	Eligible bool     `json:"eligible"`
	Reasons  []string `json:"reasons"`
	Warnings []string `json:"warnings"`
}

// EvaluateRebook decides whether a past booking may be recreated. Every
// violated rule appends its typed reason code; warnings never affect
// eligibility.
func (e *Engine) EvaluateRebook(b *models.Booking, now time.Time) RebookReport {
	report := RebookReport{Reasons: []string{}, Warnings: []string{}}

	if !models.IsTerminal(b.Status) {
		report.Reasons = append(report.Reasons, ReasonSourceStatusNotAllowed)
	}

	if b.SlotTime.IsZero() || !b.SlotTime.Before(now) {
		report.Reasons = append(report.Reasons, ReasonSourceSlotInvalid)
	} else {
		ageDays := int(now.Sub(b.SlotTime).Hours() / 24)
		if ageDays > e.Cfg.RebookMaxAgeDays {
			report.Reasons = append(report.Reasons, ReasonSourceTooOld)
		} else if ageDays >= e.Cfg.RebookWarnAgeDays {
			report.Warnings = append(report.Warnings, WarnSourceAgeHigh)
		}
	}

	if b.ServiceID == "" {
		report.Reasons = append(report.Reasons, ReasonMissingService)
	}
	if b.Address.Line1 == "" || b.Address.City == "" || b.Address.Pincode == "" {
		report.Reasons = append(report.Reasons, ReasonAddressIncomplete)
	}

	if b.WorkerID == "" {
		report.Warnings = append(report.Warnings, WarnMissingPreviousWorker)
	}
	if instantRebookUnsupported[b.PaymentMethod] {
		report.Warnings = append(report.Warnings, WarnPaymentMethod)
	}
	if b.RebookOf != "" {
		report.Warnings = append(report.Warnings, WarnChainedRebook)
	}

	report.Eligible = len(report.Reasons) == 0
	return report
}

// NextWeeklySlot advances the original slot's weekday/time in 7-day
// increments until it lands strictly in the future and clears the
// minimum-notice window.
func NextWeeklySlot(original, now time.Time, minNoticeMinutes int) time.Time {
	s := original.Truncate(time.Minute)
	earliest := now.Add(time.Duration(minNoticeMinutes) * time.Minute)
	for !s.After(now) || s.Before(earliest) {
		s = s.AddDate(0, 0, 7)
	}
	return s
}

// workerCovers reports whether the worker still offers the category,
// covers the address, and remains in dispatchable standing.
func workerCovers(w *models.WorkerProfile, category string, addr models.Address) bool {
	if w.VerificationStatus != models.VerificationApproved || !w.VerificationFeePaid {
		return false
	}
	found := false
	for _, c := range w.Categories {
		if c == category {
			found = true
			break
		}
	}
	if !found {
		return false
	}
	for _, a := range w.ServiceAreas {
		if strings.EqualFold(a.City, addr.City) || (addr.Pincode != "" && a.Pincode == addr.Pincode) {
			return true
		}
	}
	return false
}

// SameWorkerSuggestion is the same-worker rebook preview result.
type SameWorkerSuggestion struct {
	Available     bool      `json:"available"`
	Reason        string    `json:"reason,omitempty"`
	SuggestedSlot time.Time `json:"suggestedSlot"`
}

// EvaluateSameWorker checks whether the previous worker could take a
// rebook at the suggested next slot (the original slot advanced week by
// week into the future).
func (e *Engine) EvaluateSameWorker(ctx context.Context, workerID, category string, addr models.Address, originalSlot time.Time) (*SameWorkerSuggestion, error) {
	w, err := e.Workers.GetByID(ctx, workerID)
	if err != nil {
		if errors.Is(err, workerRepo.ErrNotFound) {
			return &SameWorkerSuggestion{Available: false, Reason: SameWorkerNotFound}, nil
		}
		return nil, err
	}

	if !workerCovers(w, category, addr) {
		return &SameWorkerSuggestion{Available: false, Reason: SameWorkerIneligible}, nil
	}

	now := e.now()
	suggested := NextWeeklySlot(originalSlot, now, w.Calendar.MinNoticeMinutes)

	if !IsAvailable(w.Calendar, suggested, now, e.Cfg.AlwaysOpen) {
		return &SameWorkerSuggestion{Available: false, Reason: SameWorkerUnavailable, SuggestedSlot: suggested}, nil
	}
	conflicts, err := e.Bookings.CountActiveAtSlot(ctx, w.ID, suggested, "")
	if err != nil {
		return nil, err
	}
	if conflicts > 0 {
		return &SameWorkerSuggestion{Available: false, Reason: SameWorkerConflict, SuggestedSlot: suggested}, nil
	}
	return &SameWorkerSuggestion{Available: true, SuggestedSlot: suggested}, nil
}
