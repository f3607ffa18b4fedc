package models

import "time"

// Boost statuses. Admin overrides only ever flip the status.
const (
	BoostActive  = "active"
	BoostRevoked = "revoked"
)

// ActiveBoost is a paid ranking boost. Empty Area/Category act as
// wildcards; otherwise the scope must match the job exactly.
type ActiveBoost struct {
	ID         string    `bson:"id" json:"id"`
	WorkerID   string    `bson:"workerId" json:"workerId"`
	Area       string    `bson:"area,omitempty" json:"area,omitempty"`         // city, or empty for all areas
	Category   string    `bson:"category,omitempty" json:"category,omitempty"` // or empty for all categories
	StartAt    time.Time `bson:"startAt" json:"startAt"`
	EndAt      time.Time `bson:"endAt" json:"endAt"`
	BoostScore float64   `bson:"boostScore" json:"boostScore"`
	Status     string    `bson:"status" json:"status"`
	CreatedAt  time.Time `bson:"createdAt" json:"createdAt"`
}

// AppliesTo reports whether the boost covers the given job scope at now.
func (b ActiveBoost) AppliesTo(city, category string, now time.Time) bool {
	if b.Status != BoostActive {
		return false
	}
	if now.Before(b.StartAt) || now.After(b.EndAt) {
		return false
	}
	if b.Area != "" && !equalFold(b.Area, city) {
		return false
	}
	if b.Category != "" && b.Category != category {
		return false
	}
	return true
}
