package dispatch

import (
	"time"

	"serviq/models"
)

// Penalty points per negative signal.
const (
	reportFlagPenalty = 15.0
	noShowPenalty     = 20.0
)

// PenaltyPoints converts a worker's penalty counters into score points.
func PenaltyPoints(p models.Penalties) float64 {
	return float64(p.ReportFlags)*reportFlagPenalty + float64(p.NoShows)*noShowPenalty
}

// Score is the fixed ranking formula. It must not change shape: ranking
// interoperates across services that reproduce the same numbers.
func Score(boostScore, ratingAvg, completionRate, cancelRate, responseTimeAvg, penalty float64) float64 {
	performance := completionRate*40 - cancelRate*25 - responseTimeAvg*0.1
	if performance < 0 {
		performance = 0
	}
	return boostScore + ratingAvg*20 + performance - penalty
}

// MaxApplicableBoost returns the highest boost score among boosts whose
// scope covers the job's city/category and whose window contains now.
func MaxApplicableBoost(boosts []models.ActiveBoost, city, category string, now time.Time) float64 {
	var max float64
	for _, b := range boosts {
		if !b.AppliesTo(city, category, now) {
			continue
		}
		if b.BoostScore > max {
			max = b.BoostScore
		}
	}
	return max
}

// WorkerScore computes the comparable score for one worker against a job.
// When historical completion stats are unavailable the completion rate is
// derived as 100 - cancelRate.
func WorkerScore(w models.WorkerProfile, boosts []models.ActiveBoost, city, category string, now time.Time) float64 {
	completion := w.CompletionRate
	if completion == 0 {
		completion = 100 - w.CancelRate
	}
	boost := MaxApplicableBoost(boosts, city, category, now)
	return Score(boost, w.RatingAvg, completion, w.CancelRate, w.ResponseTimeAvg, PenaltyPoints(w.Penalties))
}
