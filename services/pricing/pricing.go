package pricing

import "serviq/models"

// FlatFeePolicy is the default pricing collaborator: a flat cancellation
// fee once a worker is en route or on site, free cancellation before
// that, and a flat reschedule fee for moves under 24 hours' notice.
// Real fee policy lives in the billing service; this mirrors its shape.
type FlatFeePolicy struct {
	CancellationFlatFee float64
	RescheduleFlatFee   float64
}

func (p *FlatFeePolicy) CancellationFee(status string, totalPrice float64) float64 {
	switch status {
	case models.StatusOnWay, models.StatusWorking:
		return p.CancellationFlatFee
	}
	return 0
}

func (p *FlatFeePolicy) RescheduleFee(slotDeltaHours float64) float64 {
	if slotDeltaHours < 0 {
		slotDeltaHours = -slotDeltaHours
	}
	if slotDeltaHours < 24 {
		return p.RescheduleFlatFee
	}
	return 0
}
