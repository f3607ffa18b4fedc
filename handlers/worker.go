package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"serviq/config"
	boostRepo "serviq/database/repository/boost"
	workerRepo "serviq/database/repository/worker"
	"serviq/models"
	"serviq/services/dispatch"
	"serviq/utils"
)

// WorkerHandler covers the worker-facing surface the dispatch core needs:
// calendar, presence and boosts. Full onboarding/KYC lives elsewhere.
type WorkerHandler struct {
	Workers workerRepo.WorkerRepository
	Boosts  boostRepo.BoostRepository
	Logger  *zap.Logger
}

func NewWorkerHandler(workers workerRepo.WorkerRepository, boosts boostRepo.BoostRepository, logger *zap.Logger) *WorkerHandler {
	return &WorkerHandler{Workers: workers, Boosts: boosts, Logger: logger}
}

type registerWorkerInput struct {
	Name         string               `json:"name" binding:"required"`
	Phone        string               `json:"phone"`
	Categories   []string             `json:"categories" binding:"required"`
	ServiceAreas []models.ServiceArea `json:"serviceAreas" binding:"required"`
	Timezone     string               `json:"timezone"`
}

// RegisterWorker creates a worker profile in INCOMPLETE standing with the
// default calendar.
func (h *WorkerHandler) RegisterWorker(c *gin.Context) {
	var input registerWorkerInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	tz := input.Timezone
	if tz == "" {
		tz = "Asia/Kolkata"
	}
	if _, err := time.LoadLocation(tz); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid timezone", err.Error())
		return
	}

	w := &models.WorkerProfile{
		ID:                 uuid.New().String(),
		Name:               input.Name,
		Phone:              input.Phone,
		VerificationStatus: models.VerificationIncomplete,
		Categories:         input.Categories,
		ServiceAreas:       input.ServiceAreas,
		Calendar: models.AvailabilityCalendar{
			Timezone:         tz,
			MinNoticeMinutes: config.AppConfig.DefaultMinNoticeMin,
		},
	}
	if err := h.Workers.Create(c.Request.Context(), w); err != nil {
		h.Logger.Error("worker registration failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", "could not register worker")
		return
	}
	c.JSON(http.StatusCreated, w)
}

// UpdateCalendar persists the worker's availability calendar. Blocked
// slots always pass through sanitization so the stored list stays
// bounded, minute-granular and sorted.
func (h *WorkerHandler) UpdateCalendar(c *gin.Context) {
	var cal models.AvailabilityCalendar
	if err := c.ShouldBindJSON(&cal); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if cal.Timezone != "" {
		if _, err := time.LoadLocation(cal.Timezone); err != nil {
			utils.JSONError(c, http.StatusBadRequest, "invalid timezone", err.Error())
			return
		}
	}
	if len(cal.Weekly) > 7 {
		utils.JSONError(c, http.StatusBadRequest, "invalid calendar", "at most seven weekly entries")
		return
	}
	for _, w := range cal.Weekly {
		if w.Day < 0 || w.Day > 6 {
			utils.JSONError(c, http.StatusBadRequest, "invalid calendar", "weekday must be 0-6")
			return
		}
	}
	if cal.MinNoticeMinutes < 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid calendar", "minimum notice cannot be negative")
		return
	}
	cal.BlockedSlots = dispatch.SanitizeBlockedSlots(cal.BlockedSlots, time.Now().UTC(), config.AppConfig.BlockedSlotLimit)

	if err := h.Workers.UpdateCalendar(c.Request.Context(), c.Param("id"), cal); err != nil {
		if err == workerRepo.ErrNotFound {
			utils.JSONError(c, http.StatusNotFound, "Not found", "worker not found")
			return
		}
		h.Logger.Error("calendar update failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", "could not update calendar")
		return
	}
	c.JSON(http.StatusOK, gin.H{"calendar": cal})
}

// SetPresence flips the worker's online flag.
func (h *WorkerHandler) SetPresence(c *gin.Context) {
	var input struct {
		Online *bool `json:"online" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if err := h.Workers.SetOnline(c.Request.Context(), c.Param("id"), *input.Online); err != nil {
		if err == workerRepo.ErrNotFound {
			utils.JSONError(c, http.StatusNotFound, "Not found", "worker not found")
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", "could not update presence")
		return
	}
	c.JSON(http.StatusOK, gin.H{"online": *input.Online})
}

type createBoostInput struct {
	Area       string    `json:"area"`
	Category   string    `json:"category"`
	StartAt    time.Time `json:"startAt" binding:"required"`
	EndAt      time.Time `json:"endAt" binding:"required"`
	BoostScore float64   `json:"boostScore" binding:"required"`
}

// CreateBoost records a purchased ranking boost for a worker.
func (h *WorkerHandler) CreateBoost(c *gin.Context) {
	var input createBoostInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if !input.EndAt.After(input.StartAt) {
		utils.JSONError(c, http.StatusBadRequest, "invalid boost", "endAt must be after startAt")
		return
	}
	if input.BoostScore <= 0 {
		utils.JSONError(c, http.StatusBadRequest, "invalid boost", "boostScore must be positive")
		return
	}

	b := &models.ActiveBoost{
		ID:         uuid.New().String(),
		WorkerID:   c.Param("id"),
		Area:       input.Area,
		Category:   input.Category,
		StartAt:    input.StartAt.UTC(),
		EndAt:      input.EndAt.UTC(),
		BoostScore: input.BoostScore,
		Status:     models.BoostActive,
	}
	if err := h.Boosts.Create(c.Request.Context(), b); err != nil {
		h.Logger.Error("boost creation failed", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal error", "could not create boost")
		return
	}
	c.JSON(http.StatusCreated, b)
}
