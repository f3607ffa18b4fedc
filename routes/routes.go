package routes

import (
	"serviq/handlers"
	"serviq/middleware"

	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the dispatch API onto the router.
func RegisterRoutes(r *gin.Engine, bh *handlers.BookingHandler, wh *handlers.WorkerHandler) {
	api := r.Group("/api", middleware.JWTAuthMiddleware())

	bookings := api.Group("/bookings")
	{
		bookings.POST("", middleware.RequireRole("customer", "admin"), bh.CreateBooking)
		bookings.GET("/:id", bh.GetBooking)
		bookings.POST("/:id/accept", middleware.RequireRole("worker"), bh.AcceptBooking)
		bookings.POST("/:id/assign", middleware.RequireRole("admin"), bh.AssignBooking)
		bookings.POST("/:id/status", middleware.RequireRole("worker", "admin"), bh.AdvanceStatus)
		bookings.POST("/:id/cancel", bh.CancelBooking)
		bookings.POST("/:id/reassign", middleware.RequireRole("worker", "admin"), bh.Reassign)
		bookings.POST("/:id/reschedule", middleware.RequireRole("customer", "admin"), bh.Reschedule)
		bookings.GET("/:id/rebook-preview", bh.RebookPreview)
	}

	workers := api.Group("/workers")
	{
		workers.POST("", middleware.RequireRole("admin"), wh.RegisterWorker)
		workers.PUT("/:id/calendar", middleware.RequireRole("worker", "admin"), wh.UpdateCalendar)
		workers.PUT("/:id/presence", middleware.RequireRole("worker", "admin"), wh.SetPresence)
		workers.POST("/:id/boosts", middleware.RequireRole("admin"), wh.CreateBoost)
	}
}
