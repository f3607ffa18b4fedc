package pricing

import (
	"testing"

	"serviq/models"

	"github.com/stretchr/testify/assert"
)

func TestCancellationFee(t *testing.T) {
	p := &FlatFeePolicy{CancellationFlatFee: 49}

	assert.Equal(t, 0.0, p.CancellationFee(models.StatusConfirmed, 1000))
	assert.Equal(t, 0.0, p.CancellationFee(models.StatusAssigned, 1000))
	assert.Equal(t, 49.0, p.CancellationFee(models.StatusOnWay, 1000))
	assert.Equal(t, 49.0, p.CancellationFee(models.StatusWorking, 1000))
}

func TestRescheduleFee(t *testing.T) {
	p := &FlatFeePolicy{RescheduleFlatFee: 29}

	assert.Equal(t, 29.0, p.RescheduleFee(2))
	assert.Equal(t, 29.0, p.RescheduleFee(-6), "moving a slot earlier still counts")
	assert.Equal(t, 0.0, p.RescheduleFee(48))
}
