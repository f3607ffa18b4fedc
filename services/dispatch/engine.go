package dispatch

import (
	"context"
	"time"

	"serviq/config"
	bookingRepo "serviq/database/repository/booking"
	boostRepo "serviq/database/repository/boost"
	workerRepo "serviq/database/repository/worker"

	"go.uber.org/zap"
)

// Config carries the platform tunables the engine honours.
type Config struct {
	AlwaysOpen        bool // 24x7 override: disables weekly/blocked-slot checks
	BlockedSlotLimit  int
	PlatformFeePct    float64
	ReportWindowDays  int
	RebookMaxAgeDays  int
	RebookWarnAgeDays int
	MatchRetries      int // extra matching attempts after a lost reassignment race
}

// ConfigFromApp builds the engine config from the loaded application config.
func ConfigFromApp() Config {
	c := config.AppConfig
	return Config{
		AlwaysOpen:        c.AlwaysOpenOverride,
		BlockedSlotLimit:  c.BlockedSlotLimit,
		PlatformFeePct:    c.PlatformFeePct,
		ReportWindowDays:  c.ReportWindowDays,
		RebookMaxAgeDays:  c.RebookMaxAgeDays,
		RebookWarnAgeDays: c.RebookWarnAgeDays,
		MatchRetries:      c.ReassignMatchRetries,
	}
}

// Engine is the booking dispatch and availability core. All decisions run
// synchronously inside the triggering request; the durable store's
// conditional updates are the only mutual-exclusion primitive.
type Engine struct {
	Workers  workerRepo.WorkerRepository
	Bookings bookingRepo.BookingRepository
	Boosts   boostRepo.BoostRepository
	Pricing  PricingService
	Effects  EffectSink
	Logger   *zap.Logger
	Cfg      Config

	// Now is the clock source, overridable in tests.
	Now func() time.Time
}

func NewEngine(
	workers workerRepo.WorkerRepository,
	bookings bookingRepo.BookingRepository,
	boosts boostRepo.BoostRepository,
	pricing PricingService,
	effects EffectSink,
	logger *zap.Logger,
	cfg Config,
) *Engine {
	return &Engine{
		Workers:  workers,
		Bookings: bookings,
		Boosts:   boosts,
		Pricing:  pricing,
		Effects:  effects,
		Logger:   logger,
		Cfg:      cfg,
		Now:      time.Now,
	}
}

func (e *Engine) now() time.Time {
	if e.Now != nil {
		return e.Now().UTC()
	}
	return time.Now().UTC()
}

func (e *Engine) emit(ctx context.Context, events []Event) {
	if e.Effects == nil || len(events) == 0 {
		return
	}
	e.Effects.Dispatch(ctx, events)
}
