package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/JCrossman/dats-booking-sub000/middleware"
	"github.com/JCrossman/dats-booking-sub000/utils"
)

type connectRequest struct {
	ClientID string `json:"clientId" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// ConnectHandler logs the rider into the remote service, persists the
// encrypted session, and issues the shell's bearer token.
func (a *API) ConnectHandler(c *gin.Context) {
	var req connectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "clientId and password are required"})
		return
	}

	sess, err := a.Auth.Connect(c.Request.Context(), req.ClientID, req.Password)
	if err != nil {
		a.writeError(c, err)
		return
	}

	token, err := utils.GenerateToken(sess.OwnerID, time.Until(sess.ExpiresAt))
	if err != nil {
		a.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":     token,
		"expiresAt": sess.ExpiresAt.Format(time.RFC3339),
	})
}

// DisconnectHandler tears the session down.
func (a *API) DisconnectHandler(c *gin.Context) {
	ownerID := middleware.OwnerID(c)
	if err := a.Auth.Disconnect(c.Request.Context(), ownerID); err != nil {
		a.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"disconnected": true})
}
