package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"streams-service/internal/models"
	"streams-service/internal/service"
)

// AdminHandler manages privileged user administration endpoints.
type AdminHandler struct {
	svc *service.Service
}

// NewAdminHandler builds an AdminHandler.
func NewAdminHandler(svc *service.Service) *AdminHandler {
	return &AdminHandler{svc: svc}
}

// RemoveUser removes a user from the platform.
func (h *AdminHandler) RemoveUser(c *gin.Context) {
	userID, ok := intParam(c, "user_id")
	if !ok {
		return
	}
	if err := h.svc.AdminRemoveUser(c.GetInt("userID"), userID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// ChangePermission sets a user's platform-wide permission level.
func (h *AdminHandler) ChangePermission(c *gin.Context) {
	userID, ok := intParam(c, "user_id")
	if !ok {
		return
	}
	var req struct {
		PermissionID int `json:"permission_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.AdminChangePermission(c.GetInt("userID"), userID, models.Permission(req.PermissionID)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Clear wipes the entire store. Intended for test environments.
func Clear(svc *service.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		svc.Clear()
		c.JSON(http.StatusOK, gin.H{})
	}
}
