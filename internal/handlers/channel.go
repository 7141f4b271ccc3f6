package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"streams-service/internal/models"
	"streams-service/internal/service"
)

// ChannelHandler manages channel endpoints, including channel messages
// and standups.
type ChannelHandler struct {
	svc *service.Service
}

// NewChannelHandler builds a ChannelHandler.
func NewChannelHandler(svc *service.Service) *ChannelHandler {
	return &ChannelHandler{svc: svc}
}

// Create makes a new channel owned by the caller.
func (h *ChannelHandler) Create(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		IsPublic *bool  `json:"is_public" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.svc.ChannelCreate(c.GetInt("userID"), req.Name, *req.IsPublic)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"channel_id": id})
}

// ListMine lists the caller's channels.
func (h *ChannelHandler) ListMine(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": h.svc.ChannelsListMine(c.GetInt("userID"))})
}

// ListAll lists every channel.
func (h *ChannelHandler) ListAll(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"channels": h.svc.ChannelsListAll()})
}

// Details returns a channel's rosters.
func (h *ChannelHandler) Details(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	details, err := h.svc.ChannelDetails(c.GetInt("userID"), channelID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, details)
}

// Join adds the caller to a channel.
func (h *ChannelHandler) Join(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	if err := h.svc.ChannelJoin(c.GetInt("userID"), channelID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Invite adds another user to a channel.
func (h *ChannelHandler) Invite(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	var req struct {
		UserID int `json:"u_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ChannelInvite(c.GetInt("userID"), channelID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Leave removes the caller from a channel.
func (h *ChannelHandler) Leave(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	if err := h.svc.ChannelLeave(c.GetInt("userID"), channelID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// AddOwner grants the channel owner role to a member.
func (h *ChannelHandler) AddOwner(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	var req struct {
		UserID int `json:"u_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ChannelAddOwner(c.GetInt("userID"), channelID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// RemoveOwner strips the channel owner role from a member.
func (h *ChannelHandler) RemoveOwner(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	var req struct {
		UserID int `json:"u_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.svc.ChannelRemoveOwner(c.GetInt("userID"), channelID, req.UserID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

// Messages returns one window of a channel's messages.
func (h *ChannelHandler) Messages(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	start, err := strconv.Atoi(c.DefaultQuery("start", "0"))
	if err != nil || start < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start"})
		return
	}
	page, err := h.svc.Messages(c.GetInt("userID"), models.LocationChannel, channelID, start)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Send posts a message to a channel.
func (h *ChannelHandler) Send(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
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
	id, err := h.svc.Send(c.GetInt("userID"), models.LocationChannel, channelID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": id})
}

// SendLater schedules a channel message for future delivery.
func (h *ChannelHandler) SendLater(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
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
	id, err := h.svc.SendLater(c.GetInt("userID"), models.LocationChannel, channelID, req.Message, req.TimeSent)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message_id": id})
}

// StandupStart opens a standup in a channel.
func (h *ChannelHandler) StandupStart(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	var req struct {
		Length *int `json:"length" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	finish, err := h.svc.StandupStart(c.GetInt("userID"), channelID, *req.Length)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"time_finish": finish})
}

// StandupActive reports the channel's standup state.
func (h *ChannelHandler) StandupActive(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
	if !ok {
		return
	}
	active, finish, err := h.svc.StandupActive(c.GetInt("userID"), channelID)
	if err != nil {
		respondError(c, err)
		return
	}
	resp := gin.H{"is_active": active, "time_finish": nil}
	if active {
		resp["time_finish"] = finish
	}
	c.JSON(http.StatusOK, resp)
}

// StandupSend queues a line onto the channel's active standup.
func (h *ChannelHandler) StandupSend(c *gin.Context) {
	channelID, ok := intParam(c, "channel_id")
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
	if err := h.svc.StandupSend(c.GetInt("userID"), channelID, req.Message); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}
