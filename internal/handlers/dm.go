package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"streams-service/internal/models"
	"streams-service/internal/service"
)

// DMHandler manages direct-message endpoints.
type DMHandler struct {
	svc *service.Service
}

// NewDMHandler builds a DMHandler.
func NewDMHandler(svc *service.Service) *DMHandler {
	return &DMHandler{svc: svc}
}

// Create opens a dm between the caller and the listed users.
func (h *DMHandler) Create(c *gin.Context) {
	var req struct {
		UserIDs []int `json:"u_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.DMCreate(c.GetInt("userID"), req.UserIDs)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"dm_id": id})
}

// List lists the caller's dms.
func (h *DMHandler) List(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"dms": h.svc.DMList(c.GetInt("userID"))})
}

// Details returns a dm's roster.
func (h *DMHandler) Details(c *gin.Context) {
	dmID, ok := intParam(c, "dm_id")
	if !ok {
		return
	}
	details, err := h.svc.DMDetails(c.GetInt("userID"), dmID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Leave removes the caller from a dm.
func (h *DMHandler) Leave(c *gin.Context) {
	dmID, ok := intParam(c, "dm_id")
	if !ok {
		return
	}
	if err := h.svc.DMLeave(c.GetInt("userID"), dmID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Remove deletes a dm and all of its messages.
func (h *DMHandler) Remove(c *gin.Context) {
	dmID, ok := intParam(c, "dm_id")
	if !ok {
		return
	}
	if err := h.svc.DMRemove(c.GetInt("userID"), dmID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Messages returns one window of a dm's messages.
func (h *DMHandler) Messages(c *gin.Context) {
	dmID, ok := intParam(c, "dm_id")
	if !ok {
		return
	}
	start, err := strconv.Atoi(c.DefaultQuery("start", "0"))
	if err != nil || start < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return
	}
	page, err := h.svc.Messages(c.GetInt("userID"), models.LocationDM, dmID, start)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Send posts a message to a dm.
func (h *DMHandler) Send(c *gin.Context) {
	dmID, ok := intParam(c, "dm_id")
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.Send(c.GetInt("userID"), models.LocationDM, dmID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": id})
}

// SendLater schedules a dm message for future delivery.
func (h *DMHandler) SendLater(c *gin.Context) {
	dmID, ok := intParam(c, "dm_id")
	if !ok {
		return
	}
	var req struct {
		Message  string `json:"message"`
		TimeSent int64  `json:"time_sent" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.SendLater(c.GetInt("userID"), models.LocationDM, dmID, req.Message, req.TimeSent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": id})
}
