package dispatch

import (
	"testing"
	"time"

	"serviq/models"

	"github.com/stretchr/testify/assert"
)

func TestScoreFormula(t *testing.T) {
	// boost + rating*20 + (completion*40 - cancel*25 - response*0.1) - penalty
	assert.InDelta(t, 3965.5, Score(0, 4.8, 98, 2, 5, 0), 1e-9)
	assert.InDelta(t, 2761, Score(50, 3.0, 80, 20, 40, 45), 1e-9)
}

func TestScorePerformanceFloorsAtZero(t *testing.T) {
	// A catastrophic performance term never drags the score below the
	// boost + rating baseline.
	got := Score(10, 4.0, 0, 100, 1000, 0)
	assert.InDelta(t, 10+4.0*20, got, 1e-9)
}

func TestWorkerScoreOutranksBoostedLowPerformer(t *testing.T) {
	now := time.Now().UTC()
	a := models.WorkerProfile{ID: "a", RatingAvg: 4.8, CancelRate: 2, ResponseTimeAvg: 5}
	b := models.WorkerProfile{
		ID: "b", RatingAvg: 3.0, CancelRate: 20, ResponseTimeAvg: 40,
		Penalties: models.Penalties{ReportFlags: 3}, // 45 points
	}
	boostB := []models.ActiveBoost{{
		WorkerID: "b", Status: models.BoostActive,
		StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour),
		BoostScore: 50,
	}}

	scoreA := WorkerScore(a, nil, "Bengaluru", "plumbing", now)
	scoreB := WorkerScore(b, boostB, "Bengaluru", "plumbing", now)

	assert.InDelta(t, 3965.5, scoreA, 1e-9)
	assert.InDelta(t, 2761, scoreB, 1e-9)
	assert.Greater(t, scoreA, scoreB)
}

func TestWorkerScoreDerivesCompletionRate(t *testing.T) {
	now := time.Now().UTC()
	w := models.WorkerProfile{ID: "w", RatingAvg: 4.0, CancelRate: 10}

	// No completion history: completion = 100 - cancelRate.
	want := Score(0, 4.0, 90, 10, 0, 0)
	assert.InDelta(t, want, WorkerScore(w, nil, "", "", now), 1e-9)

	w.CompletionRate = 50
	want = Score(0, 4.0, 50, 10, 0, 0)
	assert.InDelta(t, want, WorkerScore(w, nil, "", "", now), 1e-9)
}

func TestPenaltyPoints(t *testing.T) {
	assert.Equal(t, 0.0, PenaltyPoints(models.Penalties{}))
	assert.Equal(t, 15.0, PenaltyPoints(models.Penalties{ReportFlags: 1}))
	assert.Equal(t, 20.0, PenaltyPoints(models.Penalties{NoShows: 1}))
	assert.Equal(t, 85.0, PenaltyPoints(models.Penalties{ReportFlags: 3, NoShows: 2}))
}

func TestMaxApplicableBoost(t *testing.T) {
	now := time.Date(2025, 6, 2, 12, 0, 0, 0, time.UTC)
	window := func(b models.ActiveBoost) models.ActiveBoost {
		b.Status = models.BoostActive
		b.StartAt = now.Add(-time.Hour)
		b.EndAt = now.Add(time.Hour)
		return b
	}
	boosts := []models.ActiveBoost{
		window(models.ActiveBoost{BoostScore: 30}),                                          // wildcard scope
		window(models.ActiveBoost{BoostScore: 80, Area: "Mumbai"}),                          // wrong city
		window(models.ActiveBoost{BoostScore: 60, Area: "bengaluru", Category: "plumbing"}), // matches, case-insensitive city
		{BoostScore: 90, Status: models.BoostActive, StartAt: now.Add(time.Hour), EndAt: now.Add(2 * time.Hour)}, // not started
		{BoostScore: 95, Status: models.BoostRevoked, StartAt: now.Add(-time.Hour), EndAt: now.Add(time.Hour)},   // revoked
	}

	assert.Equal(t, 60.0, MaxApplicableBoost(boosts, "Bengaluru", "plumbing", now))
	assert.Equal(t, 30.0, MaxApplicableBoost(boosts, "Delhi", "cleaning", now), "only the wildcard applies elsewhere")
}
