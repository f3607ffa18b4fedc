package dispatch

import (
	"context"
	"strings"
	"sync"
	"time"

	bookingRepo "serviq/database/repository/booking"
	workerRepo "serviq/database/repository/worker"
	"serviq/models"

	"go.uber.org/zap"
)

// In-memory repository fakes. Conditional updates mirror the store's
// semantics: the mutation applies only while the expected prior state
// still holds, under one mutex, so concurrent callers race for real.

type fakeWorkerRepo struct {
	mu      sync.Mutex
	workers map[string]*models.WorkerProfile
}

func newFakeWorkerRepo(workers ...*models.WorkerProfile) *fakeWorkerRepo {
	r := &fakeWorkerRepo{workers: make(map[string]*models.WorkerProfile)}
	for _, w := range workers {
		cp := *w
		r.workers[w.ID] = &cp
	}
	return r
}

func (r *fakeWorkerRepo) GetByID(_ context.Context, id string) (*models.WorkerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return nil, workerRepo.ErrNotFound
	}
	cp := *w
	return &cp, nil
}

func (r *fakeWorkerRepo) Create(_ context.Context, w *models.WorkerProfile) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *w
	r.workers[w.ID] = &cp
	return nil
}

func (r *fakeWorkerRepo) Eligible(_ context.Context, crit workerRepo.EligibleCriteria) ([]models.WorkerProfile, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.WorkerProfile
	for _, w := range r.workers {
		if w.VerificationStatus != models.VerificationApproved || !w.VerificationFeePaid || !w.IsOnline {
			continue
		}
		hasCategory := false
		for _, c := range w.Categories {
			if c == crit.Category {
				hasCategory = true
				break
			}
		}
		if !hasCategory {
			continue
		}
		covers := false
		for _, a := range w.ServiceAreas {
			if strings.EqualFold(a.City, crit.City) || (crit.Pincode != "" && a.Pincode == crit.Pincode) {
				covers = true
				break
			}
		}
		if !covers {
			continue
		}
		out = append(out, *w)
	}
	return out, nil
}

func (r *fakeWorkerRepo) UpdateCalendar(_ context.Context, id string, cal models.AvailabilityCalendar) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return workerRepo.ErrNotFound
	}
	w.Calendar = cal
	return nil
}

func (r *fakeWorkerRepo) SetOnline(_ context.Context, id string, online bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return workerRepo.ErrNotFound
	}
	w.IsOnline = online
	return nil
}

func (r *fakeWorkerRepo) CreditEarnings(_ context.Context, id string, amount float64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	w, ok := r.workers[id]
	if !ok {
		return workerRepo.ErrNotFound
	}
	w.EarningsBalance += amount
	return nil
}

type fakeBookingRepo struct {
	mu             sync.Mutex
	bookings       map[string]*models.Booking
	rescheduleLogs []models.RescheduleLog
}

func newFakeBookingRepo(bookings ...*models.Booking) *fakeBookingRepo {
	r := &fakeBookingRepo{bookings: make(map[string]*models.Booking)}
	for _, b := range bookings {
		cp := *b
		r.bookings[b.ID] = &cp
	}
	return r
}

func (r *fakeBookingRepo) GetByID(_ context.Context, id string) (*models.Booking, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrNotFound
	}
	cp := *b
	cp.StatusLogs = append([]models.StatusLog(nil), b.StatusLogs...)
	return &cp, nil
}

func (r *fakeBookingRepo) Create(_ context.Context, b *models.Booking) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *b
	r.bookings[b.ID] = &cp
	return nil
}

func (r *fakeBookingRepo) CountActiveAtSlot(_ context.Context, workerID string, slot time.Time, excludeBookingID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	slot = slot.UTC().Truncate(time.Minute)
	var n int64
	for _, b := range r.bookings {
		if b.ID == excludeBookingID || b.WorkerID != workerID || models.IsTerminal(b.Status) {
			continue
		}
		if b.SlotTime.UTC().Truncate(time.Minute).Equal(slot) {
			n++
		}
	}
	return n, nil
}

func (r *fakeBookingRepo) AssignIfUnassigned(_ context.Context, id, workerID, mode, reason string, log models.StatusLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != models.StatusConfirmed || b.WorkerID != "" {
		return bookingRepo.ErrPreconditionFailed
	}
	b.WorkerID = workerID
	b.Status = models.StatusAssigned
	b.AssignmentMode = mode
	b.AssignmentReason = reason
	b.StatusLogs = append(b.StatusLogs, log)
	return nil
}

func (r *fakeBookingRepo) ReassignWorker(_ context.Context, id string, prev bookingRepo.Snapshot, nextWorkerID, reason string, log models.StatusLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != prev.Status || b.WorkerID != prev.WorkerID {
		return bookingRepo.ErrPreconditionFailed
	}
	b.WorkerID = nextWorkerID
	b.Status = models.StatusAssigned
	b.AssignmentMode = models.AssignmentAuto
	b.AssignmentReason = reason
	b.StatusLogs = append(b.StatusLogs, log)
	return nil
}

func (r *fakeBookingRepo) Unassign(_ context.Context, id string, prev bookingRepo.Snapshot, log models.StatusLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != prev.Status || b.WorkerID != prev.WorkerID {
		return bookingRepo.ErrPreconditionFailed
	}
	b.WorkerID = ""
	b.Status = models.StatusConfirmed
	b.ConversationID = ""
	b.StatusLogs = append(b.StatusLogs, log)
	return nil
}

func (r *fakeBookingRepo) UpdateStatusIf(_ context.Context, id string, change bookingRepo.StatusChange) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != change.From {
		return bookingRepo.ErrPreconditionFailed
	}
	b.Status = change.To
	if change.ReportWindowEnds != nil {
		t := *change.ReportWindowEnds
		b.ReportWindowEnds = &t
	}
	if change.CancellationFee != nil {
		b.CancellationFee = *change.CancellationFee
	}
	b.StatusLogs = append(b.StatusLogs, change.Log)
	return nil
}

func (r *fakeBookingRepo) UpdateSlot(_ context.Context, id string, prev bookingRepo.Snapshot, newSlot time.Time, log models.StatusLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	if b.Status != prev.Status || b.WorkerID != prev.WorkerID {
		return bookingRepo.ErrPreconditionFailed
	}
	b.SlotTime = newSlot
	b.StatusLogs = append(b.StatusLogs, log)
	return nil
}

func (r *fakeBookingRepo) SetConversation(_ context.Context, id, conversationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.bookings[id]
	if !ok {
		return bookingRepo.ErrNotFound
	}
	b.ConversationID = conversationID
	return nil
}

func (r *fakeBookingRepo) AppendRescheduleLog(_ context.Context, rl *models.RescheduleLog) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rescheduleLogs = append(r.rescheduleLogs, *rl)
	return nil
}

type fakeBoostRepo struct {
	mu     sync.Mutex
	boosts map[string][]models.ActiveBoost
}

func newFakeBoostRepo() *fakeBoostRepo {
	return &fakeBoostRepo{boosts: make(map[string][]models.ActiveBoost)}
}

func (r *fakeBoostRepo) Create(_ context.Context, b *models.ActiveBoost) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.boosts[b.WorkerID] = append(r.boosts[b.WorkerID], *b)
	return nil
}

func (r *fakeBoostRepo) ActiveForWorker(_ context.Context, workerID string, now time.Time) ([]models.ActiveBoost, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.ActiveBoost
	for _, b := range r.boosts[workerID] {
		if b.Status == models.BoostActive && !now.Before(b.StartAt) && !now.After(b.EndAt) {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBoostRepo) SetStatus(_ context.Context, id, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for workerID, list := range r.boosts {
		for i := range list {
			if list[i].ID == id {
				list[i].Status = status
				r.boosts[workerID] = list
				return nil
			}
		}
	}
	return nil
}

// recordingSink captures dispatched events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Dispatch(_ context.Context, events []Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, events...)
}

func (s *recordingSink) payouts() []PayoutEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []PayoutEvent
	for _, ev := range s.events {
		if ev.Payout != nil {
			out = append(out, *ev.Payout)
		}
	}
	return out
}

func (s *recordingSink) notifyTypes() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, ev := range s.events {
		if ev.Notify != nil {
			out = append(out, ev.Notify.Type)
		}
	}
	return out
}

func (s *recordingSink) auditActions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []string
	for _, ev := range s.events {
		if ev.Audit != nil {
			out = append(out, ev.Audit.Action)
		}
	}
	return out
}

// fixedPricing returns constant fees regardless of inputs.
type fixedPricing struct {
	cancellation float64
	reschedule   float64
}

func (p fixedPricing) CancellationFee(string, float64) float64 { return p.cancellation }
func (p fixedPricing) RescheduleFee(float64) float64           { return p.reschedule }

func testConfig() Config {
	return Config{
		BlockedSlotLimit:  120,
		PlatformFeePct:    15,
		ReportWindowDays:  14,
		RebookMaxAgeDays:  180,
		RebookWarnAgeDays: 90,
		MatchRetries:      1,
	}
}

func newTestEngine(workers *fakeWorkerRepo, bookings *fakeBookingRepo, boosts *fakeBoostRepo, now time.Time) (*Engine, *recordingSink) {
	sink := &recordingSink{}
	e := NewEngine(workers, bookings, boosts, fixedPricing{}, sink, zap.NewNop(), testConfig())
	e.Now = func() time.Time { return now }
	return e, sink
}

// approvedWorker builds a dispatchable worker covering the given city and
// category, with an always-open test calendar unless one is set later.
func approvedWorker(id, city, category string) *models.WorkerProfile {
	return &models.WorkerProfile{
		ID:                  id,
		Name:                "Worker " + id,
		VerificationStatus:  models.VerificationApproved,
		VerificationFeePaid: true,
		IsOnline:            true,
		Categories:          []string{category},
		ServiceAreas:        []models.ServiceArea{{City: city, Pincode: "560001"}},
		Calendar: models.AvailabilityCalendar{
			Weekly: allWeekWindows("00:00", "23:59"),
		},
	}
}

func allWeekWindows(start, end string) []models.WeeklyWindow {
	out := make([]models.WeeklyWindow, 7)
	for d := 0; d < 7; d++ {
		out[d] = models.WeeklyWindow{Day: d, Start: start, End: end}
	}
	return out
}
