package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"streams-service/internal/service"
)

// UserHandler manages profile, notification and stats endpoints.
type UserHandler struct {
	svc *service.Service
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(svc *service.Service) *UserHandler {
	return &UserHandler{svc: svc}
}

// Profile returns the public profile of a live or removed user.
func (h *UserHandler) Profile(c *gin.Context) {
	userID, ok := intParam(c, "user_id")
	if !ok {
		return
	}
	profile, err := h.svc.Profile(userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": profile})
}

// List lists every live user's profile.
func (h *UserHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"users": h.svc.UsersAll()})
}

// SetName updates the caller's display name.
func (h *UserHandler) SetName(c *gin.Context) {
	var req struct {
		NameFirst string `json:"name_first" binding:"required"`
		NameLast  string `json:"name_last" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SetName(c.GetInt("userID"), req.NameFirst, req.NameLast); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// SetEmail updates the caller's email address.
func (h *UserHandler) SetEmail(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SetEmail(c.GetInt("userID"), req.Email); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// SetHandle updates the caller's handle.
func (h *UserHandler) SetHandle(c *gin.Context) {
	var req struct {
		Handle string `json:"handle_str" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.SetHandle(c.GetInt("userID"), req.Handle); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Notifications returns the caller's 20 most recent notifications.
func (h *UserHandler) Notifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.svc.Notifications(c.GetInt("userID"))})
}

// Stats returns the caller's activity history.
func (h *UserHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"user_stats": h.svc.UserStats(c.GetInt("userID"))})
}

// WorkspaceStats returns the workspace-wide activity history.
func (h *UserHandler) WorkspaceStats(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"workspace_stats": h.svc.WorkspaceStats()})
}
