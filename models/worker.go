package models

import "time"

// Verification statuses a worker moves through during onboarding.
const (
	VerificationIncomplete    = "INCOMPLETE"
	VerificationPendingReview = "PENDING_REVIEW"
	VerificationApproved      = "APPROVED"
	VerificationRejected      = "REJECTED"
)

// ServiceArea is one geographic unit a worker serves.
type ServiceArea struct {
	City    string `bson:"city" json:"city"`
	Pincode string `bson:"pincode" json:"pincode"`
}

// WeeklyWindow is a single weekday entry in the availability template.
// Start and End are "HH:MM" local times; End is inclusive.
type WeeklyWindow struct {
	Day   int    `bson:"day" json:"day"` // 0 = Sunday .. 6 = Saturday
	Start string `bson:"start" json:"start"`
	End   string `bson:"end" json:"end"`
	IsOff bool   `bson:"isOff" json:"isOff"`
}

// AvailabilityCalendar describes when a worker is bookable.
type AvailabilityCalendar struct {
	Timezone         string         `bson:"timezone" json:"timezone"` // IANA identifier, e.g. "Asia/Kolkata"
	MinNoticeMinutes int            `bson:"minNoticeMinutes" json:"minNoticeMinutes"`
	Weekly           []WeeklyWindow `bson:"weekly" json:"weekly"`
	BlockedSlots     []time.Time    `bson:"blockedSlots" json:"blockedSlots"` // exact-minute day-off overrides
}

// Penalties aggregates the negative quality signals against a worker.
type Penalties struct {
	ReportFlags int `bson:"reportFlags" json:"reportFlags"`
	NoShows     int `bson:"noShows" json:"noShows"`
}

// WorkerProfile is one service provider. Created at signup, mutated by
// onboarding/admin actions and booking completion; never deleted.
type WorkerProfile struct {
	ID                  string               `bson:"id" json:"id"`
	Name                string               `bson:"name" json:"name"`
	Phone               string               `bson:"phone" json:"phone,omitempty"`
	VerificationStatus  string               `bson:"verificationStatus" json:"verificationStatus"`
	VerificationFeePaid bool                 `bson:"verificationFeePaid" json:"verificationFeePaid"`
	IsOnline            bool                 `bson:"isOnline" json:"isOnline"`
	Categories          []string             `bson:"categories" json:"categories"`
	ServiceAreas        []ServiceArea        `bson:"serviceAreas" json:"serviceAreas"`
	Calendar            AvailabilityCalendar `bson:"availabilityCalendar" json:"availabilityCalendar"`
	RatingAvg           float64              `bson:"ratingAvg" json:"ratingAvg"`
	CancelRate          float64              `bson:"cancelRate" json:"cancelRate"`
	CompletionRate      float64              `bson:"completionRate" json:"completionRate"` // 0 = unknown, derived as 100-cancelRate
	ResponseTimeAvg     float64              `bson:"responseTimeAvg" json:"responseTimeAvg"`
	Penalties           Penalties            `bson:"penalties" json:"penalties"`
	EarningsBalance     float64              `bson:"earningsBalance" json:"earningsBalance"`
	FCMToken            string               `bson:"fcmToken,omitempty" json:"-"`
	CreatedAt           time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt           time.Time            `bson:"updatedAt" json:"updatedAt"`
}
