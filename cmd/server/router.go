package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/thereayou/duetchat/internal/handlers"
	"github.com/thereayou/duetchat/internal/middleware"
	"github.com/thereayou/duetchat/pkg/auth"
)

func APIEndpoints(r *gin.Engine, authH *handlers.AuthHandler, roomH *handlers.RoomHandler, wsH *handlers.WebSocketHandler, jwtMgr *auth.JWTManager, rdb *redis.Client) {
	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Auth endpoints
	authGroup := r.Group("/auth")
	{
		authGroup.POST("/guest", authH.Guest)
		authGroup.POST("/logout", authH.Logout)
	}

	// API endpoints
	api := r.Group("/api/v1")
	{
		api.GET("/rooms/:id", roomH.GetRoom)
		api.GET("/rooms/:id/messages", roomH.GetRoomMessages)
		api.DELETE("/rooms/:id", middleware.RequireAuth(jwtMgr, rdb), roomH.DeleteRoom)
	}

	r.GET("/ws", middleware.WSAuth(jwtMgr, rdb), wsH.HandleWebSocket)
}
