package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mberzonis/carelink/internal/common"
	"github.com/mberzonis/carelink/internal/server/auth"
	"github.com/mberzonis/carelink/internal/server/models"
)

type reminderRequest struct {
	Medication string    `json:"medication" binding:"required"`
	Dosage     string    `json:"dosage" binding:"required"`
	DueAt      time.Time `json:"due_at" binding:"required"`
}

type reminderResponse struct {
	ID         string    `json:"id"`
	Medication string    `json:"medication"`
	Dosage     string    `json:"dosage"`
	DueAt      time.Time `json:"due_at"`
	Sent       bool      `json:"sent"`
	CreatedAt  time.Time `json:"created_at"`
}

func toReminderResponse(r *models.Reminder) reminderResponse {
	return reminderResponse{
		ID:         r.ID,
		Medication: r.Medication,
		Dosage:     r.Dosage,
		DueAt:      r.DueAt,
		Sent:       r.Sent,
		CreatedAt:  r.CreatedAt,
	}
}

func (s *Server) pingHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

// connectHandler starts the OAuth flow. The state value is a short-lived
// signed token naming the owner, so the callback can be tied back to the
// account that initiated it without any server-side session.
func (s *Server) connectHandler(c *gin.Context) {
	owner := ownerFromContext(c)

	state, err := auth.GenerateToken(owner, s.jwtSecret, s.stateValidity)
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to sign state", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	req, err := s.calendar.BeginAuthorization(c.Request.Context(), owner, state)
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to build authorization URL", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "calendar integration is not configured"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"auth_url": req.URL})
}

// callbackHandler handles the provider redirect. The owner identity comes
// from the state token, not from a bearer header.
func (s *Server) callbackHandler(c *gin.Context) {
	state := c.Query("state")
	code := c.Query("code")

	owner, err := auth.GetUserIDFromToken(state, s.jwtSecret)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid state"})
		return
	}

	if code == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing authorization code"})
		return
	}

	if _, err := s.calendar.CompleteAuthorization(c.Request.Context(), owner, code); err != nil {
		if errors.Is(err, common.ErrExchangeFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "could not exchange authorization code"})
			return
		}
		s.logger.Error(c.Request.Context(), "failed to complete authorization", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "connected"})
}

// tokenHandler returns a valid access token for the owner, refreshing it
// behind the scenes when expired. 204 means no calendar is connected.
func (s *Server) tokenHandler(c *gin.Context) {
	owner := ownerFromContext(c)

	token, err := s.calendar.GetValidAccessToken(c.Request.Context(), owner)
	if err != nil {
		if errors.Is(err, common.ErrRefreshFailed) {
			c.JSON(http.StatusBadGateway, gin.H{"error": "token refresh failed, try again"})
			return
		}
		s.logger.Error(c.Request.Context(), "failed to get access token", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	if token == "" {
		c.Status(http.StatusNoContent)
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token})
}

// disconnectHandler revokes the grant with the provider and clears the
// stored tokens. It succeeds even when nothing was connected.
func (s *Server) disconnectHandler(c *gin.Context) {
	owner := ownerFromContext(c)

	if err := s.calendar.Revoke(c.Request.Context(), owner); err != nil {
		s.logger.Error(c.Request.Context(), "failed to revoke connection", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (s *Server) createReminderHandler(c *gin.Context) {
	owner := ownerFromContext(c)

	var req reminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	reminder, err := s.reminders.Create(c.Request.Context(), owner, req.Medication, req.Dosage, req.DueAt)
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to create reminder", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	c.JSON(http.StatusCreated, toReminderResponse(reminder))
}

func (s *Server) listRemindersHandler(c *gin.Context) {
	owner := ownerFromContext(c)

	items, err := s.reminders.ListForOwner(c.Request.Context(), owner)
	if err != nil {
		s.logger.Error(c.Request.Context(), "failed to list reminders", "owner", owner, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		return
	}

	out := make([]reminderResponse, 0, len(items))
	for _, r := range items {
		out = append(out, toReminderResponse(r))
	}
	c.JSON(http.StatusOK, out)
}
