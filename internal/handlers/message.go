package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"streams-service/internal/service"
)

// MessageHandler manages operations addressed by message id.
type MessageHandler struct {
	svc *service.Service
}

// NewMessageHandler builds a MessageHandler.
func NewMessageHandler(svc *service.Service) *MessageHandler {
	return &MessageHandler{svc: svc}
}

// Edit replaces a message's body; an empty body deletes it.
func (h *MessageHandler) Edit(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
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
	if err := h.svc.Edit(c.GetInt("userID"), messageID, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Remove deletes a message.
func (h *MessageHandler) Remove(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
	if !ok {
		return
	}
	if err := h.svc.Remove(c.GetInt("userID"), messageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// React records the caller's reaction on a message.
func (h *MessageHandler) React(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
	if !ok {
		return
	}
	var req struct {
		ReactID int `json:"react_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.React(c.GetInt("userID"), messageID, req.ReactID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Unreact withdraws the caller's reaction from a message.
func (h *MessageHandler) Unreact(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
	if !ok {
		return
	}
	var req struct {
		ReactID int `json:"react_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.Unreact(c.GetInt("userID"), messageID, req.ReactID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Pin marks a message as pinned.
func (h *MessageHandler) Pin(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
	if !ok {
		return
	}
	if err := h.svc.Pin(c.GetInt("userID"), messageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Unpin clears a message's pinned flag.
func (h *MessageHandler) Unpin(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
	if !ok {
		return
	}
	if err := h.svc.Unpin(c.GetInt("userID"), messageID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Share cross-posts a message into another channel or dm. Exactly one
// of channel_id and dm_id must be set; the other is -1.
func (h *MessageHandler) Share(c *gin.Context) {
	messageID, ok := intParam(c, "message_id")
	if !ok {
		return
	}
	var req struct {
		Message   string `json:"message"`
		ChannelID *int   `json:"channel_id" binding:"required"`
		DMID      *int   `json:"dm_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id, err := h.svc.Share(c.GetInt("userID"), messageID, req.Message, *req.ChannelID, *req.DMID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"shared_message_id": id})
}

// Search finds messages containing the query across the caller's
// channels and dms.
func (h *MessageHandler) Search(c *gin.Context) {
	query := c.Query("query_str")
	views, err := h.svc.Search(c.GetInt("userID"), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"messages": views})
}
