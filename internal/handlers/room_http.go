package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/thereayou/duetchat/internal/database"
	"github.com/thereayou/duetchat/internal/handlers/dto"
	"github.com/thereayou/duetchat/internal/turn"
	"github.com/thereayou/duetchat/internal/websocket"
)

type RoomHandler struct {
	db  *database.Database
	hub *websocket.Hub
}

func NewRoomHandler(db *database.Database, hub *websocket.Hub) *RoomHandler {
	return &RoomHandler{db: db, hub: hub}
}

// GetRoom отдает снимок комнаты
func (h *RoomHandler) GetRoom(c *gin.Context) {
	roomID := c.Param("id")

	room, err := h.db.GetRoom(roomID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           room.ID,
		"participants": room.Participants,
		"category":     room.Category,
		"active_user":  room.ActiveUser,
		"online":       h.hub.RoomSize(room.ID),
		"created_at":   room.CreatedAt,
	})
}

// GetRoomMessages отдает историю комнаты от старых к новым
func (h *RoomHandler) GetRoomMessages(c *gin.Context) {
	roomID := c.Param("id")

	limit := turn.HistoryLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		if parsed < limit {
			limit = parsed
		}
	}

	messages, err := h.db.GetChatHistory(roomID, limit)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to get messages"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"messages": dto.MessagesResponse(messages)})
}

// DeleteRoom сносит комнату вместе с сообщениями. Живую комнату
// удалить нельзя.
func (h *RoomHandler) DeleteRoom(c *gin.Context) {
	roomID := c.Param("id")

	if _, err := h.db.GetRoom(roomID); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "room not found"})
		return
	}

	if h.hub.RoomSize(roomID) > 0 {
		c.JSON(http.StatusConflict, gin.H{"error": "room has live connections"})
		return
	}

	if err := h.db.DeleteRoom(roomID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete room"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "room deleted"})
}
