package handler

import (
	"net/http"
	"time"

	"ridechat/backend/internal/config"
	"ridechat/backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/lib/pq"
)

type createRoomRequest struct {
	RideID string `json:"ride_id" binding:"required"`
	Title  string `json:"title"`
}

// CreateRoom opens the chat room for a ride.
func (h *Handler) CreateRoom(c *gin.Context) {
	userID := c.GetString("user_id")

	var req createRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ride_id is required"})
		return
	}

	room := &models.RideRoom{
		RoomID:       uuid.New().String(),
		RideID:       req.RideID,
		Title:        req.Title,
		CreatorID:    userID,
		Participants: pq.StringArray{userID},
		IsActive:     true,
		StartedAt:    time.Now(),
	}
	if err := h.Storage.SaveRoom(room); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create room"})
		return
	}

	c.JSON(http.StatusCreated, room)
}

// JoinRoom adds the caller to the ride's participant list. Idempotent.
func (h *Handler) JoinRoom(c *gin.Context) {
	userID := c.GetString("user_id")
	roomID := c.Param("id")

	if err := h.Storage.AddParticipant(roomID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

// LeaveRoom removes the caller from the ride's participant list.
func (h *Handler) LeaveRoom(c *gin.Context) {
	userID := c.GetString("user_id")
	roomID := c.Param("id")

	if err := h.Storage.RemoveParticipant(roomID, userID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Room not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": roomID})
}

// GetHistory returns a room's persisted messages in send order, so a client
// joining mid-ride can back-fill its local store.
func (h *Handler) GetHistory(c *gin.Context) {
	roomID := c.Param("id")

	messages, err := h.Storage.GetChatHistory(roomID, config.HistoryPageSize)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load history"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"room_id": roomID, "messages": messages})
}

// RequireAuth is the gin middleware that resolves the bearer token into the
// user_id context key used by the room and report handlers.
func (h *Handler) RequireAuth(c *gin.Context) {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) < 8 || authHeader[:7] != "Bearer " {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization token missing"})
		return
	}
	userID, err := h.validateAndGetUserID(authHeader[7:])
	if err != nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token or expired"})
		return
	}
	c.Set("user_id", userID)
	c.Next()
}
