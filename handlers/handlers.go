package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/JCrossman/dats-booking-sub000/middleware"
	"github.com/JCrossman/dats-booking-sub000/models"
	"github.com/JCrossman/dats-booking-sub000/services/auth"
	"github.com/JCrossman/dats-booking-sub000/services/booking"
	"github.com/JCrossman/dats-booking-sub000/services/trips"
	"github.com/JCrossman/dats-booking-sub000/services/validation"
)

// API bundles the core services behind the HTTP shell. Everything is injected
// at startup; handlers hold no hidden state.
type API struct {
	Auth      *auth.Service
	Trips     *trips.Service
	Booking   *booking.Orchestrator
	Validator *validation.Validator
	Logger    *zap.Logger
}

// NewAPI wires the handler bundle.
func NewAPI(authSvc *auth.Service, tripsSvc *trips.Service, orchestrator *booking.Orchestrator, validator *validation.Validator, logger *zap.Logger) *API {
	return &API{
		Auth:      authSvc,
		Trips:     tripsSvc,
		Booking:   orchestrator,
		Validator: validator,
		Logger:    logger,
	}
}

// writeError maps error categories onto HTTP statuses. The message is safe
// for riders; the detail stays in the logs.
func (a *API) writeError(c *gin.Context, err error) {
	se, ok := err.(*models.ServiceError)
	if !ok {
		se = models.NewServiceError(models.CodeSystemError, "something went wrong").WithDetail(err.Error())
	}

	a.Logger.Warn("request failed",
		zap.String("requestId", middleware.RequestID(c)),
		zap.String("code", se.Code), zap.String("detail", se.Detail))

	status := http.StatusInternalServerError
	switch se.Code {
	case models.CodeAuthFailure, models.CodeSessionExpired:
		status = http.StatusUnauthorized
	case models.CodeValidationError:
		status = http.StatusUnprocessableEntity
	case models.CodeBookingConflict:
		status = http.StatusConflict
	case models.CodeRateLimited:
		status = http.StatusTooManyRequests
	case models.CodeNetworkError:
		status = http.StatusBadGateway
	case models.CodeStorageError:
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, gin.H{"code": se.Code, "message": se.Message})
}

// HealthHandler reports liveness.
func (a *API) HealthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
