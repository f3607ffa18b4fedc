package dispatch

import (
	"context"
	"testing"
	"time"

	"serviq/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindBestWorkerPicksHighestScore(t *testing.T) {
	strong := approvedWorker("w-strong", "Bengaluru", "plumbing")
	strong.RatingAvg = 4.8
	strong.CancelRate = 2
	weak := approvedWorker("w-weak", "Bengaluru", "plumbing")
	weak.RatingAvg = 3.0
	weak.CancelRate = 20
	workers := newFakeWorkerRepo(strong, weak)
	e, _ := newTestEngine(workers, newFakeBookingRepo(), newFakeBoostRepo(), mondayAt(8, 0))

	cand, err := e.FindBestWorker(context.Background(), "plumbing", "Bengaluru", "560001", mondayAt(10, 0), nil)
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "w-strong", cand.Worker.ID)
}

func TestFindBestWorkerHonoursExcludeList(t *testing.T) {
	top := approvedWorker("w-top", "Bengaluru", "plumbing")
	top.RatingAvg = 5.0
	second := approvedWorker("w-second", "Bengaluru", "plumbing")
	second.RatingAvg = 3.5
	workers := newFakeWorkerRepo(top, second)
	e, _ := newTestEngine(workers, newFakeBookingRepo(), newFakeBoostRepo(), mondayAt(8, 0))

	cand, err := e.FindBestWorker(context.Background(), "plumbing", "Bengaluru", "560001", mondayAt(10, 0), []string{"w-top"})
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "w-second", cand.Worker.ID, "top scorer is excluded even when it would win")
}

func TestFindBestWorkerSkipsUnavailable(t *testing.T) {
	offSunday := approvedWorker("w-off", "Bengaluru", "plumbing")
	offSunday.Calendar = businessHoursCal()
	openAlways := approvedWorker("w-open", "Bengaluru", "plumbing")
	workers := newFakeWorkerRepo(offSunday, openAlways)
	e, _ := newTestEngine(workers, newFakeBookingRepo(), newFakeBoostRepo(), sunday.Add(-12*time.Hour))

	cand, err := e.FindBestWorker(context.Background(), "plumbing", "Bengaluru", "560001", sunday.Add(10*time.Hour), nil)
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "w-open", cand.Worker.ID)
}

func TestFindBestWorkerSkipsSlotConflicts(t *testing.T) {
	busy := approvedWorker("w-busy", "Bengaluru", "plumbing")
	busy.RatingAvg = 5.0
	free := approvedWorker("w-free", "Bengaluru", "plumbing")
	free.RatingAvg = 3.0
	workers := newFakeWorkerRepo(busy, free)

	slot := mondayAt(10, 0)
	held := &models.Booking{ID: "bk-held", WorkerID: "w-busy", SlotTime: slot, Status: models.StatusAssigned}
	bookings := newFakeBookingRepo(held)
	e, _ := newTestEngine(workers, bookings, newFakeBoostRepo(), mondayAt(8, 0))

	cand, err := e.FindBestWorker(context.Background(), "plumbing", "Bengaluru", "560001", slot, nil)
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "w-free", cand.Worker.ID, "the higher scorer already holds the slot")

	// A terminal booking at the slot does not block.
	held2 := &models.Booking{ID: "bk-done", WorkerID: "w-free", SlotTime: slot, Status: models.StatusCompleted}
	require.NoError(t, bookings.Create(context.Background(), held2))
	cand, err = e.FindBestWorker(context.Background(), "plumbing", "Bengaluru", "560001", slot, nil)
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "w-free", cand.Worker.ID)
}

func TestFindBestWorkerAppliesBoosts(t *testing.T) {
	now := mondayAt(8, 0)
	plain := approvedWorker("w-plain", "Bengaluru", "plumbing")
	plain.RatingAvg = 4.0
	boosted := approvedWorker("w-boosted", "Bengaluru", "plumbing")
	boosted.RatingAvg = 4.0
	workers := newFakeWorkerRepo(plain, boosted)
	boosts := newFakeBoostRepo()
	require.NoError(t, boosts.Create(context.Background(), &models.ActiveBoost{
		ID: "boost-1", WorkerID: "w-boosted", Area: "Bengaluru",
		StartAt: now.Add(-time.Hour), EndAt: now.Add(24 * time.Hour),
		BoostScore: 50, Status: models.BoostActive,
	}))
	e, _ := newTestEngine(workers, newFakeBookingRepo(), boosts, now)

	cand, err := e.FindBestWorker(context.Background(), "plumbing", "Bengaluru", "560001", mondayAt(10, 0), nil)
	require.NoError(t, err)
	require.NotNil(t, cand)
	assert.Equal(t, "w-boosted", cand.Worker.ID)
}

func TestFindBestWorkerTieBreaksOnLowestID(t *testing.T) {
	b := approvedWorker("w-b", "Bengaluru", "plumbing")
	a := approvedWorker("w-a", "Bengaluru", "plumbing")
	c := approvedWorker("w-c", "Bengaluru", "plumbing")
	workers := newFakeWorkerRepo(b, a, c)
	e, _ := newTestEngine(workers, newFakeBookingRepo(), newFakeBoostRepo(), mondayAt(8, 0))

	// Identical profiles score identically; selection must still be
	// deterministic over the unordered candidate set.
	for i := 0; i < 5; i++ {
		cand, err := e.FindBestWorker(context.Background(), "plumbing", "Bengaluru", "560001", mondayAt(10, 0), nil)
		require.NoError(t, err)
		require.NotNil(t, cand)
		assert.Equal(t, "w-a", cand.Worker.ID)
	}
}

func TestFindBestWorkerEmptyPool(t *testing.T) {
	offline := approvedWorker("w-offline", "Bengaluru", "plumbing")
	offline.IsOnline = false
	wrongCity := approvedWorker("w-mumbai", "Mumbai", "plumbing")
	wrongCity.ServiceAreas = []models.ServiceArea{{City: "Mumbai", Pincode: "400001"}}
	unverified := approvedWorker("w-pending", "Bengaluru", "plumbing")
	unverified.VerificationStatus = models.VerificationPendingReview
	workers := newFakeWorkerRepo(offline, wrongCity, unverified)
	e, _ := newTestEngine(workers, newFakeBookingRepo(), newFakeBoostRepo(), mondayAt(8, 0))

	cand, err := e.FindBestWorker(context.Background(), "plumbing", "Bengaluru", "560001", mondayAt(10, 0), nil)
	require.NoError(t, err)
	assert.Nil(t, cand)
}
