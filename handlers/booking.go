package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/JCrossman/dats-booking-sub000/middleware"
	"github.com/JCrossman/dats-booking-sub000/models"
)

// BookTripHandler runs the full booking orchestration. Validation rejections
// and booking conflicts come back as 200 responses with success=false; only
// infrastructure problems become error statuses.
func (a *API) BookTripHandler(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var draft models.BookingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a booking draft is required"})
		return
	}

	result, err := a.Booking.Book(c.Request.Context(), ownerID, draft)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

type cancelRequest struct {
	BookingID  string `json:"bookingId" binding:"required"`
	PickupDate string `json:"pickupDate"`
	PickupTime string `json:"pickupTime"`
}

// CancelTripHandler checks the cancellation notice rules and forwards the
// cancellation. A rejection is a normal 200 outcome carrying the reason and
// the minutes until pickup.
func (a *API) CancelTripHandler(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "bookingId is required"})
		return
	}

	check, err := a.Booking.Cancel(c.Request.Context(), ownerID, req.BookingID, req.PickupDate, req.PickupTime)
	if err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"cancelled":         check.Valid,
		"error":             check.Error,
		"warning":           check.Warning,
		"minutesUntilEvent": check.MinutesUntilEvent,
	})
}
