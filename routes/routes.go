package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/JCrossman/dats-booking-sub000/handlers"
	"github.com/JCrossman/dats-booking-sub000/middleware"
)

// RegisterRoutes wires every endpoint of the shell onto the router.
func RegisterRoutes(r *gin.Engine, api *handlers.API) {
	r.GET("/health", api.HealthHandler)

	public := r.Group("/api")
	{
		public.POST("/connect", api.ConnectHandler)
	}

	authed := r.Group("/api")
	authed.Use(middleware.JWTAuthMiddleware())
	{
		authed.POST("/disconnect", api.DisconnectHandler)
		authed.GET("/trips", api.ListTripsHandler)
		authed.POST("/trips/book", api.BookTripHandler)
		authed.POST("/trips/cancel", api.CancelTripHandler)
		authed.POST("/trips/availability", api.AvailabilityHandler)
	}
}
