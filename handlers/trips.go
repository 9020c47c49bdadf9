package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JCrossman/dats-booking-sub000/middleware"
	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/utils"
)

// ListTripsHandler returns the rider's trips. The from/to query parameters
// accept anything the flexible date parser understands; missing values
// default to today through the booking horizon.
func (a *API) ListTripsHandler(c *gin.Context) {
	ownerID := middleware.OwnerID(c)
	loc := a.Validator.Loc

	from := utils.ParseFlexible(c.DefaultQuery("from", "today"), loc)
	to := c.Query("to")
	if to == "" {
		to = utils.CurrentDateInfo(loc).Date
		if parsed := addDays(to, a.Validator.Policy.MaxAdvanceDays, loc); parsed != "" {
			to = parsed
		}
	} else {
		to = utils.ParseFlexible(to, loc)
	}

	records, err := a.Trips.List(c.Request.Context(), ownerID, from, to)
	if err != nil {
		a.writeError(c, err)
		return
	}
	if records == nil {
		records = []models.TripRecord{}
	}
	c.JSON(http.StatusOK, gin.H{"trips": records})
}

// AvailabilityHandler probes the remote scheduler for candidate pickup
// windows without committing to a booking.
func (a *API) AvailabilityHandler(c *gin.Context) {
	ownerID := middleware.OwnerID(c)

	var draft models.BookingDraft
	if err := c.ShouldBindJSON(&draft); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "a booking draft is required"})
		return
	}

	windows, err := a.Booking.CheckAvailability(c.Request.Context(), ownerID, draft)
	if err != nil {
		a.writeError(c, err)
		return
	}
	if windows == nil {
		windows = []models.PickupWindow{}
	}
	c.JSON(http.StatusOK, gin.H{"windows": windows})
}

func addDays(canonical string, days int, loc *time.Location) string {
	t, err := time.ParseInLocation(utils.CanonicalDateLayout, canonical, loc)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, days).Format(utils.CanonicalDateLayout)
}
