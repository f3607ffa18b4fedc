package dispatch

import (
	"context"
	"fmt"
	"time"

	workerRepo "serviq/database/repository/worker"
	"serviq/models"

	"go.uber.org/zap"
)

// Candidate is one scored match result.
type Candidate struct {
	Worker models.WorkerProfile
	Score  float64
}

// FindBestWorker runs the matching pipeline for a job: eligibility query,
// exclusion list, availability filter, slot-conflict filter (always a
// fresh read against dispatch-time state), scoring, then best-candidate
// selection. Returns nil when the candidate set is empty after filtering.
//
// Equal scores resolve to the lexicographically lowest worker id so that
// matching stays reproducible.
func (e *Engine) FindBestWorker(ctx context.Context, category, city, pincode string, slot time.Time, excludeWorkerIDs []string) (*Candidate, error) {
	now := e.now()
	workers, err := e.Workers.Eligible(ctx, workerRepo.EligibleCriteria{
		Category: category,
		City:     city,
		Pincode:  pincode,
	})
	if err != nil {
		return nil, fmt.Errorf("eligible worker query failed: %w", err)
	}

	excluded := make(map[string]struct{}, len(excludeWorkerIDs))
	for _, id := range excludeWorkerIDs {
		if id != "" {
			excluded[id] = struct{}{}
		}
	}

	var best *Candidate
	for _, w := range workers {
		if _, skip := excluded[w.ID]; skip {
			continue
		}
		if !IsAvailable(w.Calendar, slot, now, e.Cfg.AlwaysOpen) {
			continue
		}
		conflicts, err := e.Bookings.CountActiveAtSlot(ctx, w.ID, slot, "")
		if err != nil {
			return nil, fmt.Errorf("slot conflict check failed for worker %s: %w", w.ID, err)
		}
		if conflicts > 0 {
			continue
		}
		boosts, err := e.Boosts.ActiveForWorker(ctx, w.ID, now)
		if err != nil {
			return nil, fmt.Errorf("boost lookup failed for worker %s: %w", w.ID, err)
		}
		score := WorkerScore(w, boosts, city, category, now)
		if best == nil || score > best.Score || (score == best.Score && w.ID < best.Worker.ID) {
			best = &Candidate{Worker: w, Score: score}
		}
	}

	if best == nil {
		e.Logger.Debug("matching produced no candidate",
			zap.String("category", category), zap.String("city", city), zap.Time("slot", slot))
		return nil, nil
	}
	return best, nil
}
