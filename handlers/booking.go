package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"serviq/config"
	bookingRepo "serviq/database/repository/booking"
	workerRepo "serviq/database/repository/worker"
	"serviq/middleware"
	"serviq/models"
	"serviq/services/dispatch"
	"serviq/utils"
)

// BookingHandler exposes the dispatch engine over HTTP.
type BookingHandler struct {
	Engine   *dispatch.Engine
	Bookings bookingRepo.BookingRepository
	Workers  workerRepo.WorkerRepository
	Cache    *redis.Client
	Logger   *zap.Logger
}

func NewBookingHandler(engine *dispatch.Engine, bookings bookingRepo.BookingRepository, workers workerRepo.WorkerRepository, cache *redis.Client, logger *zap.Logger) *BookingHandler {
	return &BookingHandler{Engine: engine, Bookings: bookings, Workers: workers, Cache: cache, Logger: logger}
}

func actorFromCtx(c *gin.Context) dispatch.Actor {
	return dispatch.Actor{
		ID:   c.GetString(middleware.CtxActorID),
		Role: c.GetString(middleware.CtxActorRole),
	}
}

// respondDispatchError maps the engine's error taxonomy onto HTTP codes.
// Every rejection names the specific rule that failed.
func (h *BookingHandler) respondDispatchError(c *gin.Context, err error) {
	var invalid *dispatch.InvalidTransitionError
	switch {
	case errors.As(err, &invalid):
		utils.JSONError(c, http.StatusBadRequest, "Invalid transition", invalid.Error())
	case errors.Is(err, dispatch.ErrPreconditionFailed):
		utils.JSONError(c, http.StatusConflict, "Already assigned", err.Error())
	case errors.Is(err, dispatch.ErrNoCandidateFound):
		utils.JSONError(c, http.StatusConflict, "No replacement available", err.Error())
	case errors.Is(err, dispatch.ErrSlotConflict):
		utils.JSONError(c, http.StatusConflict, "Slot conflict", err.Error())
	case errors.Is(err, dispatch.ErrWorkerUnavailable):
		utils.JSONError(c, http.StatusBadRequest, "Worker unavailable", err.Error())
	case errors.Is(err, dispatch.ErrNotReassignable), errors.Is(err, dispatch.ErrNotReschedulable):
		utils.JSONError(c, http.StatusBadRequest, "Operation not allowed", err.Error())
	case errors.Is(err, bookingRepo.ErrNotFound), errors.Is(err, workerRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Not found", err.Error())
	default:
		h.Logger.Error("dispatch operation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", "operation failed")
	}
}

type createBookingInput struct {
	ServiceID     string         `json:"serviceId" binding:"required"`
	Category      string         `json:"category" binding:"required"`
	Address       models.Address `json:"address" binding:"required"`
	SlotTime      time.Time      `json:"slotTime" binding:"required"`
	TotalPrice    float64        `json:"totalPrice"`
	PaymentMethod string         `json:"paymentMethod"`
	RebookOf      string         `json:"rebookOf"`
	AutoAssign    bool           `json:"autoAssign"`
}

// CreateBooking records a new confirmed booking and optionally runs the
// initial automatic assignment.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	var input createBookingInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	actor := actorFromCtx(c)
	now := time.Now().UTC()
	slot := input.SlotTime.UTC().Truncate(time.Minute)

	if !slot.After(now) {
		utils.JSONError(c, http.StatusBadRequest, "invalid slot", "slot must be in the future")
		return
	}
	if gran := config.AppConfig.SlotGranularityMin; gran > 0 && slot.Minute()%gran != 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid slot", "slot does not match the booking granularity")
		return
	}
	if look := config.AppConfig.MaxLookaheadDays; look > 0 && slot.After(now.AddDate(0, 0, look)) {
		utils.JSONError(c, http.StatusBadRequest, "invalid slot", "slot is beyond the booking window")
		return
	}
	if input.Address.Line1 == "" || input.Address.City == "" || input.Address.Pincode == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid address", "line1, city and pincode are required")
		return
	}

	b := &models.Booking{
		ID:            uuid.New().String(),
		UserID:        actor.ID,
		ServiceID:     input.ServiceID,
		Category:      input.Category,
		Address:       input.Address,
		SlotTime:      slot,
		Status:        models.StatusConfirmed,
		TotalPrice:    input.TotalPrice,
		PaymentMethod: input.PaymentMethod,
		RebookOf:      input.RebookOf,
		StatusLogs: []models.StatusLog{{
			Status:    models.StatusConfirmed,
			ActorRole: actor.Role,
			ActorID:   actor.ID,
			Note:      "booking created",
			At:        now,
		}},
	}
	if err := h.Bookings.Create(c.Request.Context(), b); err != nil {
		h.respondDispatchError(c, err)
		return
	}

	var assignment *dispatch.ReassignResult
	if input.AutoAssign {
		res, err := h.Engine.AutoReassign(c.Request.Context(), b.ID, actor, "initial assignment", true)
		if err != nil {
			h.Logger.Warn("initial auto-assignment failed", zap.String("bookingId", b.ID), zap.Error(err))
		} else {
			assignment = res
		}
	}

	fresh, err := h.Bookings.GetByID(c.Request.Context(), b.ID)
	if err != nil {
		fresh = b
	}
	c.JSON(http.StatusCreated, gin.H{"booking": fresh, "assignment": assignment})
}

// GetBooking returns one booking with its full status log trail.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	b, err := h.Bookings.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AcceptBooking is worker self-accept: a manual assignment where the
// acting worker takes the job. Exactly one of two concurrent accepts
// wins; the loser receives a 409.
func (h *BookingHandler) AcceptBooking(c *gin.Context) {
	actor := actorFromCtx(c)
	b, err := h.Engine.ManualAssign(c.Request.Context(), c.Param("id"), actor.ID, actor)
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AssignBooking is an admin-directed manual assignment.
func (h *BookingHandler) AssignBooking(c *gin.Context) {
	var input struct {
		WorkerID string `json:"workerId" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	b, err := h.Engine.ManualAssign(c.Request.Context(), c.Param("id"), input.WorkerID, actorFromCtx(c))
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// AdvanceStatus moves a booking along onway -> working -> completed.
// Cancellation has its own endpoint so the fee path stays in one place.
func (h *BookingHandler) AdvanceStatus(c *gin.Context) {
	var input struct {
		Status string `json:"status" binding:"required"`
		Note   string `json:"note"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if input.Status == models.StatusCancelled {
		utils.JSONError(c, http.StatusBadRequest, "invalid status", "use the cancel endpoint")
		return
	}
	b, err := h.Engine.Transition(c.Request.Context(), c.Param("id"), input.Status, actorFromCtx(c), input.Note)
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking cancels from any non-terminal status; the fee comes from
// the pricing collaborator but the transition itself is unconditional.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	var input struct {
		Note string `json:"note"`
	}
	_ = c.ShouldBindJSON(&input)
	b, err := h.Engine.Transition(c.Request.Context(), c.Param("id"), models.StatusCancelled, actorFromCtx(c), input.Note)
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// Reassign runs automatic reassignment off the current worker.
func (h *BookingHandler) Reassign(c *gin.Context) {
	var input struct {
		Reason        string `json:"reason"`
		AllowUnassign *bool  `json:"allowUnassign"`
	}
	_ = c.ShouldBindJSON(&input)
	allowUnassign := true
	if input.AllowUnassign != nil {
		allowUnassign = *input.AllowUnassign
	}
	res, err := h.Engine.AutoReassign(c.Request.Context(), c.Param("id"), actorFromCtx(c), input.Reason, allowUnassign)
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

// Reschedule moves the booking slot and records the reschedule log.
func (h *BookingHandler) Reschedule(c *gin.Context) {
	var input struct {
		SlotTime time.Time `json:"slotTime" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	b, err := h.Engine.Reschedule(c.Request.Context(), c.Param("id"), input.SlotTime, actorFromCtx(c))
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type rebookPreviewResponse struct {
	dispatch.RebookReport
	SameWorker *dispatch.SameWorkerSuggestion `json:"sameWorker,omitempty"`
}

// RebookPreview evaluates rebook eligibility for a past booking and, when
// a previous worker exists, whether they could take the suggested slot.
// Responses are cached briefly; the underlying slot-conflict reads stay
// fresh because the cache expires well before any dispatch decision
// depends on it.
func (h *BookingHandler) RebookPreview(c *gin.Context) {
	id := c.Param("id")
	ctx := c.Request.Context()

	cacheKey := "rebook-preview:" + id
	if h.Cache != nil {
		if cached, err := h.Cache.Get(ctx, cacheKey).Result(); err == nil {
			var resp rebookPreviewResponse
			if json.Unmarshal([]byte(cached), &resp) == nil {
				c.JSON(http.StatusOK, resp)
				return
			}
		}
	}

	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		h.respondDispatchError(c, err)
		return
	}

	resp := rebookPreviewResponse{
		RebookReport: h.Engine.EvaluateRebook(b, time.Now().UTC()),
	}
	if b.WorkerID != "" {
		same, err := h.Engine.EvaluateSameWorker(ctx, b.WorkerID, b.Category, b.Address, b.SlotTime)
		if err != nil {
			h.respondDispatchError(c, err)
			return
		}
		resp.SameWorker = same
	}

	if h.Cache != nil {
		if buf, err := json.Marshal(resp); err == nil {
			h.Cache.Set(ctx, cacheKey, buf, 2*time.Minute)
		}
	}
	c.JSON(http.StatusOK, resp)
}
